package assets

import (
	"sort"
	"strings"
	"sync"

	"github.com/vango-dev/injector/internal/errors"
)

// ModuleDefinition names a module and its root path relative to the web
// directory. The root may be a directory or a single file.
type ModuleDefinition struct {
	Name     string
	RootPath string
}

// Registry maps module names to their definitions. A name that is not
// registered exactly is matched case-insensitively, as long as only one
// module folds to it. It is safe for concurrent use.
type Registry struct {
	entries map[string]ModuleDefinition
	folded  map[string][]string
	mu      sync.RWMutex
}

// NewRegistry creates a registry from a pre-filtered module name → root path
// mapping. Names are kept as given.
func NewRegistry(defs map[string]string) *Registry {
	r := &Registry{
		entries: make(map[string]ModuleDefinition, len(defs)),
		folded:  make(map[string][]string, len(defs)),
	}
	for name, root := range defs {
		r.entries[name] = ModuleDefinition{Name: name, RootPath: root}
		key := strings.ToLower(name)
		r.folded[key] = append(r.folded[key], name)
	}
	for _, names := range r.folded {
		sort.Strings(names)
	}
	return r
}

// Resolve returns the definition registered for name. An unknown or
// ambiguous name is a configuration error.
func (r *Registry) Resolve(name string) (ModuleDefinition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if def, ok := r.lookup(name); ok {
		return def, nil
	}
	if names := r.folded[strings.ToLower(name)]; len(names) > 1 {
		return ModuleDefinition{}, errors.New("E112").
			WithModule(name).
			WithDetail("matches " + strings.Join(names, ", "))
	}
	return ModuleDefinition{}, errors.New("E110").
		WithModule(name).
		WithSuggestion("Add inject." + name + " to the configuration")
}

// lookup matches name exactly, then case-insensitively when unambiguous.
func (r *Registry) lookup(name string) (ModuleDefinition, bool) {
	if def, ok := r.entries[name]; ok {
		return def, true
	}
	if names := r.folded[strings.ToLower(name)]; len(names) == 1 {
		return r.entries[names[0]], true
	}
	return ModuleDefinition{}, false
}

// Has returns true if name resolves to a module.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.lookup(name)
	return ok
}

// Conflicts returns the groups of names that differ only in case. Their
// artifacts would share a path on case-insensitive file systems.
func (r *Registry) Conflicts() [][]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out [][]string
	for _, names := range r.folded {
		if len(names) > 1 {
			out = append(out, append([]string(nil), names...))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}

// Names returns the registered module names in ascending order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered modules.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.entries)
}
