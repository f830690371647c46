package config

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/vango-dev/injector/internal/errors"
)

const (
	// ConfigFileName is the base name of the configuration file.
	ConfigFileName = "injector"

	// ModuleKeyPrefix prefixes every module definition key.
	ModuleKeyPrefix = "inject."

	// EnvPrefix prefixes environment overrides.
	EnvPrefix = "INJECTOR"

	// DefaultDeployDir is the default artifact directory, relative to the web dir.
	DefaultDeployDir = "deploy"

	// DefaultURLPrefix is the default URL prefix for rendered references.
	DefaultURLPrefix = "/"

	// DefaultHost is the default HTTP front-end host.
	DefaultHost = "localhost"

	// DefaultPort is the default HTTP front-end port.
	DefaultPort = 8080

	// DefaultLessc is the default LESS compiler binary.
	DefaultLessc = "lessc"

	// OnErrorFail aborts a build when one file fails to transform.
	OnErrorFail = "fail"

	// OnErrorSkip drops the failing file and logs a warning.
	OnErrorSkip = "skip"
)

// configExts are the file extensions tried by Load, in order.
var configExts = []string{"yaml", "yml", "json", "toml"}

// Config represents the complete injector configuration.
type Config struct {
	// WebDir is the web root that module paths are relative to.
	WebDir string `mapstructure:"web_dir"`

	// DeployDir is where build artifacts are written. It must be inside WebDir.
	DeployDir string `mapstructure:"deploy_dir"`

	// URLPrefix is prepended to every rendered reference.
	URLPrefix string `mapstructure:"url_prefix"`

	// Injector contains pipeline defaults.
	Injector InjectorConfig `mapstructure:"injector"`

	// Server contains HTTP front-end settings.
	Server ServerConfig `mapstructure:"server"`

	// Publish contains artifact publishing settings.
	Publish PublishConfig `mapstructure:"publish"`

	// Modules maps module names to their root paths, from inject.* keys.
	Modules map[string]string `mapstructure:"-"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// InjectorConfig contains pipeline defaults.
type InjectorConfig struct {
	// Compile forces build mode for every request.
	Compile bool `mapstructure:"compile"`

	// Minify minifies every script build.
	Minify bool `mapstructure:"minify"`

	// OnError is the transform-error policy: "fail" or "skip".
	OnError string `mapstructure:"on_error"`

	// Lessc is the LESS compiler binary name or path.
	Lessc string `mapstructure:"lessc"`
}

// ServerConfig contains HTTP front-end settings.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// PublishConfig contains S3 publishing settings.
type PublishConfig struct {
	// Bucket is the destination bucket.
	Bucket string `mapstructure:"bucket"`

	// Prefix is the key prefix for uploaded artifacts.
	Prefix string `mapstructure:"prefix"`

	// Region overrides the AWS region from the environment.
	Region string `mapstructure:"region"`

	// CacheControl is sent with every uploaded artifact.
	CacheControl string `mapstructure:"cache_control"`
}

// New creates a Config with default values.
func New() *Config {
	return &Config{
		WebDir:    ".",
		DeployDir: DefaultDeployDir,
		URLPrefix: DefaultURLPrefix,
		Injector: InjectorConfig{
			OnError: OnErrorFail,
			Lessc:   DefaultLessc,
		},
		Server: ServerConfig{
			Host: DefaultHost,
			Port: DefaultPort,
		},
		Publish: PublishConfig{
			Prefix:       "assets/",
			CacheControl: "public, max-age=3600",
		},
		Modules: map[string]string{},
	}
}

// newViper returns a viper instance seeded with defaults and env overrides.
func newViper() *viper.Viper {
	d := New()
	v := viper.New()
	v.SetDefault("web_dir", d.WebDir)
	v.SetDefault("deploy_dir", d.DeployDir)
	v.SetDefault("url_prefix", d.URLPrefix)
	v.SetDefault("injector.compile", d.Injector.Compile)
	v.SetDefault("injector.minify", d.Injector.Minify)
	v.SetDefault("injector.on_error", d.Injector.OnError)
	v.SetDefault("injector.lessc", d.Injector.Lessc)
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("publish.bucket", d.Publish.Bucket)
	v.SetDefault("publish.prefix", d.Publish.Prefix)
	v.SetDefault("publish.region", d.Publish.Region)
	v.SetDefault("publish.cache_control", d.Publish.CacheControl)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads configuration from the specified directory.
func Load(dir string) (*Config, error) {
	path, ok := find(dir)
	if !ok {
		return nil, errors.New("E100").
			WithDetail("No injector.yaml, injector.json or injector.toml found in " + dir).
			WithSuggestion("Create injector.yaml with web_dir, deploy_dir and inject.<module> keys")
	}
	return LoadFile(path)
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E100").WithPath(path)
		}
		return nil, errors.New("E101").WithPath(path).Wrap(err)
	}

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.New("E101").
			WithPath(path).
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
			Wrap(err)
	}

	cfg, err := fromViper(v)
	if err != nil {
		return nil, err
	}
	cfg.configPath = path
	return cfg, nil
}

// FromSettings builds a Config from a flat key-value source such as a host
// application's container. Keys use dotted notation ("inject.app",
// "injector.compile"). Relative paths resolve against dir.
func FromSettings(dir string, settings map[string]any) (*Config, error) {
	v := newViper()
	for key, value := range settings {
		v.Set(key, value)
	}
	cfg, err := fromViper(v)
	if err != nil {
		return nil, err
	}
	if dir != "" {
		cfg.configPath = filepath.Join(dir, ConfigFileName+".yaml")
	}
	return cfg, nil
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := New()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.New("E101").Wrap(err)
	}

	flat := make(map[string]string)
	for _, key := range v.AllKeys() {
		if strings.HasPrefix(key, ModuleKeyPrefix) {
			flat[key] = v.GetString(key)
		}
	}
	cfg.Modules = ModuleDefinitions(flat)
	return cfg, nil
}

// ModuleDefinitions filters a flat key-value source down to the inject.*
// keys and returns module name → root path. Names are kept as given; note
// that viper folds keys read from files and the environment to lower case.
func ModuleDefinitions(flat map[string]string) map[string]string {
	defs := make(map[string]string)
	for key, value := range flat {
		if !strings.HasPrefix(key, ModuleKeyPrefix) {
			continue
		}
		name := strings.TrimPrefix(key, ModuleKeyPrefix)
		if name == "" {
			continue
		}
		defs[name] = value
	}
	return defs
}

// ModuleNames returns the configured module names in ascending order.
func (c *Config) ModuleNames() []string {
	names := make([]string, 0, len(c.Modules))
	for name := range c.Modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// Validate checks if the configuration is usable by the pipeline.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.WebDir) == "" {
		return errors.New("E102").
			WithSuggestion("Set web_dir to the directory your pages are served from")
	}
	if strings.TrimSpace(c.DeployDir) == "" {
		return errors.New("E103").
			WithDetail("deploy_dir is empty").
			WithSuggestion("Set deploy_dir, for example public/deploy")
	}
	rel, err := filepath.Rel(c.WebPath(), c.DeployPath())
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return errors.New("E103").
			WithDetail("deploy_dir " + c.DeployPath() + " is outside web_dir " + c.WebPath())
	}
	switch c.Injector.OnError {
	case OnErrorFail, OnErrorSkip:
	default:
		return errors.New("E104").
			WithDetail("injector.on_error must be \"fail\" or \"skip\", got \"" + c.Injector.OnError + "\"")
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.New("E104").
			WithDetail("server.port must be between 0 and 65535")
	}
	return nil
}

// resolve makes a configured path absolute relative to the config directory.
func (c *Config) resolve(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(c.Dir(), path)
}

// WebPath returns the path to the web directory.
func (c *Config) WebPath() string {
	return c.resolve(c.WebDir)
}

// DeployPath returns the path to the deploy directory. A relative deploy_dir
// that does not already start with web_dir is taken relative to web_dir.
func (c *Config) DeployPath() string {
	if filepath.IsAbs(c.DeployDir) {
		return filepath.Clean(c.DeployDir)
	}
	web := filepath.Clean(c.WebDir)
	deploy := filepath.Clean(c.DeployDir)
	if web != "." && (deploy == web || strings.HasPrefix(deploy, web+string(filepath.Separator))) {
		return c.resolve(deploy)
	}
	return filepath.Join(c.WebPath(), deploy)
}

// DeployURLPath returns the deploy directory relative to the web directory,
// slash-separated, as used in rendered references.
func (c *Config) DeployURLPath() string {
	rel, err := filepath.Rel(c.WebPath(), c.DeployPath())
	if err != nil {
		return filepath.ToSlash(c.DeployDir)
	}
	return filepath.ToSlash(rel)
}

// ServerAddress returns the listen address for the HTTP front end.
func (c *Config) ServerAddress() string {
	return c.Server.Host + ":" + strconv.Itoa(c.Server.Port)
}

// find returns the first config file present in dir.
func find(dir string) (string, bool) {
	for _, ext := range configExts {
		path := filepath.Join(dir, ConfigFileName+"."+ext)
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return "", false
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, ok := find(dir)
	return ok
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing the config file, or an error if not found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("E100").
				WithDetail("No injector configuration found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the current working directory
// or the nearest parent holding a config file.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		return nil, err
	}

	return Load(root)
}
