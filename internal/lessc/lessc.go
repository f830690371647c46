// Package lessc compiles LESS stylesheets by running the lessc command.
// Imports are resolved by lessc relative to the compiled file.
package lessc

import (
	"bytes"
	"context"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/vango-dev/injector/internal/errors"
)

// DefaultBinary is the compiler looked up on PATH when none is configured.
const DefaultBinary = "lessc"

// Compiler runs lessc once per file.
type Compiler struct {
	// Binary is the lessc executable name or path.
	Binary string

	// Args are extra arguments passed before the input file.
	Args []string

	path string
	mu   sync.Mutex
}

// New creates a Compiler for binary. An empty binary means DefaultBinary.
func New(binary string) *Compiler {
	if binary == "" {
		binary = DefaultBinary
	}
	return &Compiler{Binary: binary}
}

// Path returns the resolved executable path.
func (c *Compiler) Path() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.path != "" {
		return c.path, nil
	}

	path, err := exec.LookPath(c.Binary)
	if err != nil {
		return "", errors.New("E132").
			WithDetail("lessc executable " + strconv.Quote(c.Binary) + " was not found").
			WithSuggestion("Install it with: npm install -g less").
			Wrap(err)
	}
	c.path = path
	return path, nil
}

// Compile compiles file and returns the CSS written to stdout.
func (c *Compiler) Compile(ctx context.Context, file string) (string, error) {
	path, err := c.Path()
	if err != nil {
		return "", err
	}

	args := append([]string{"--no-color"}, c.Args...)
	args = append(args, file)

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", compileError(file, stderr.String(), err)
	}
	return stdout.String(), nil
}

// lessc reports errors as "... in <file> on line N, column M:".
var locationPattern = regexp.MustCompile(`in (.+?) on line (\d+), column (\d+)`)

func compileError(file, stderr string, runErr error) *errors.Error {
	msg := strings.TrimSpace(stderr)
	e := errors.New("E131").Wrap(runErr)
	if msg != "" {
		e.WithDetail(firstLine(msg))
	}

	if m := locationPattern.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[2])
		col, _ := strconv.Atoi(m[3])
		return e.WithLocation(m[1], line, col)
	}
	return e.WithPath(file)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
