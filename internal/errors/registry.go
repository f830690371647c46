package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Configuration Errors (E100-E119)
	// ============================================

	"E100": {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
		Detail:   "The injector looks for injector.yaml (or .json/.toml) in the project root.",
	},
	"E101": {
		Category: CategoryConfig,
		Message:  "Invalid configuration file",
		Detail:   "The configuration file could not be parsed.",
	},
	"E102": {
		Category: CategoryConfig,
		Message:  "Web directory not configured",
		Detail:   "web_dir must name the directory that module paths are relative to.",
	},
	"E103": {
		Category: CategoryConfig,
		Message:  "Invalid deploy directory",
		Detail:   "deploy_dir must be set and must live inside web_dir so artifacts can be referenced from pages.",
	},
	"E104": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
	},
	"E110": {
		Category: CategoryConfig,
		Message:  "Module not defined",
		Detail:   "No inject.<module> key was found in the configuration for this module.",
	},
	"E111": {
		Category: CategoryConfig,
		Message:  "Unknown asset type",
		Detail:   "Asset types are script (js), style (css) and styleSource (less).",
	},
	"E112": {
		Category: CategoryConfig,
		Message:  "Ambiguous module name",
		Detail:   "Module names that differ only in case would write the same artifact on case-insensitive file systems.",
	},

	// ============================================
	// Resolution Errors (E120-E129)
	// ============================================

	"E120": {
		Category: CategoryResolution,
		Message:  "Module root not found",
		Detail:   "The configured module path does not exist under the web directory.",
	},
	"E121": {
		Category: CategoryResolution,
		Message:  "Module root unreadable",
	},

	// ============================================
	// Transform Errors (E130-E139)
	// ============================================

	"E130": {
		Category: CategoryTransform,
		Message:  "Source file unreadable",
	},
	"E131": {
		Category: CategoryTransform,
		Message:  "Style source compilation failed",
	},
	"E132": {
		Category: CategoryTransform,
		Message:  "Style compiler not available",
		Detail:   "LESS files are compiled with the lessc command line compiler.",
	},
	"E133": {
		Category: CategoryTransform,
		Message:  "Script minification failed",
	},

	// ============================================
	// Persistence Errors (E140-E149)
	// ============================================

	"E140": {
		Category: CategoryPersistence,
		Message:  "Artifact write failed",
		Detail:   "The build artifact could not be written to the deploy directory.",
	},
	"E141": {
		Category: CategoryPersistence,
		Message:  "Deploy directory unavailable",
		Detail:   "The deploy directory could not be created.",
	},
	"E142": {
		Category: CategoryPersistence,
		Message:  "Manifest write failed",
	},

	// ============================================
	// CLI Errors (E150-E159)
	// ============================================

	"E150": {
		Category: CategoryCLI,
		Message:  "Publish failed",
		Detail:   "An artifact could not be uploaded to the configured bucket.",
	},
	"E151": {
		Category: CategoryCLI,
		Message:  "Server error",
	},
	"E152": {
		Category: CategoryCLI,
		Message:  "Publish bucket not configured",
		Detail:   "Set publish.bucket in the configuration or pass --bucket.",
	},
}

// GetAllCodes returns all registered error codes in ascending order.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
