// Copyright © 2025 The Macex authors

package macro

import (
	"fmt"
	"sort"
)

// Module is a named set of macro definitions: an absolute module path
// identity plus exported transformer descriptors.
type Module struct {
	// Path is the module's absolute identity.
	Path string

	// Bindings holds the module's exported transformers by definition name.
	Bindings map[string]*Descriptor
}

// NewModule returns an empty module with the given absolute path.
func NewModule(path string) *Module {
	return &Module{Path: path, Bindings: make(map[string]*Descriptor)}
}

// Define records a transformer descriptor under name.  It returns the
// module for chained definition.
func (m *Module) Define(name string, desc *Descriptor) *Module {
	m.Bindings[name] = desc
	return m
}

// Names returns the module's exported names, sorted.
func (m *Module) Names() []string {
	names := make([]string, 0, len(m.Bindings))
	for name := range m.Bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ModuleLoader produces a module, running whatever collateral definition
// code the module carries.  Loading a macro definition module may itself
// trigger a nested expansion with an independent binding table.
type ModuleLoader func() (*Module, error)

// ModuleRegistry resolves absolute module paths to loaded modules.  Loaded
// modules are cached by identity so repeated use sites of the same module
// consistently bind to identical descriptor values; a loader is re-executed
// only on an explicit reload request.
type ModuleRegistry struct {
	loaders map[string]ModuleLoader
	cache   map[string]*Module
}

// NewModuleRegistry returns an empty registry.
func NewModuleRegistry() *ModuleRegistry {
	return &ModuleRegistry{
		loaders: make(map[string]ModuleLoader),
		cache:   make(map[string]*Module),
	}
}

// Register installs a loader for the module at path, replacing any previous
// loader.  A previously cached load of the path is discarded.
func (r *ModuleRegistry) Register(path string, loader ModuleLoader) {
	r.loaders[path] = loader
	delete(r.cache, path)
}

// RegisterModule installs an already-constructed module.
func (r *ModuleRegistry) RegisterModule(m *Module) {
	r.Register(m.Path, func() (*Module, error) { return m, nil })
}

// Load returns the module at path, running its loader on first use.  When
// reload is set the loader is re-executed, producing fresh descriptor
// identities; that is reserved for interactive sessions, since distinct use
// sites would otherwise bind to non-identical transformer values.
func (r *ModuleRegistry) Load(path string, reload bool) (*Module, error) {
	if !reload {
		if m, ok := r.cache[path]; ok {
			return m, nil
		}
	}
	loader, ok := r.loaders[path]
	if !ok {
		return nil, fmt.Errorf("no macro module registered at %q", path)
	}
	m, err := loader()
	if err != nil {
		return nil, fmt.Errorf("loading macro module %q: %w", path, err)
	}
	if m.Path == "" {
		m.Path = path
	}
	r.cache[path] = m
	return m, nil
}
