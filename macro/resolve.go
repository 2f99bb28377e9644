// Copyright © 2025 The Macex authors

package macro

import (
	"fmt"

	"github.com/luthersystems/macex/macro/modspec"
	"github.com/luthersystems/macex/syntax"
)

// ResolveOptions configure binding resolution.
type ResolveOptions struct {
	// Package is the dotted package identity of the file being expanded.
	// It anchors relative module specifiers; a file outside any package
	// leaves it empty, and relative specifiers then fail.
	Package string

	// Reload forces registered module loaders to re-execute instead of
	// serving cached modules.  Reserved for interactive sessions.
	Reload bool
}

// ResolveBindings scans program's top-level statements for macro-import
// declarations of the form
//
//	from module.path import macros, name [as alias], ...
//
// For each one it loads the named module from registry, binds the listed
// names (under their aliases where given), and rewrites the declaration in
// place to a plain absolute import so downstream consumers of the tree see
// only ordinary imports.  A declaration listing no names beyond "macros"
// binds nothing but still loads the module, for its side effects, and is
// still normalized.  A from-import whose first item is anything other than
// a bare "macros" is left untouched.
//
// Duplicate bindings resolve to the later declaration.  Returns the table
// of all resolved bindings.
func ResolveBindings(program *syntax.Node, registry *ModuleRegistry, opts ResolveOptions) (*BindingTable, error) {
	if program.Type != syntax.NModule {
		return nil, fmt.Errorf("cannot resolve macro bindings in %s node", program.Type)
	}
	table := NewBindingTable()
	for i, stmt := range program.Cells {
		if stmt.Type != syntax.NImportFrom {
			continue
		}
		items := stmt.Cells
		if len(items) == 0 || items[0].Str != "macros" || items[0].Alias() != "" {
			// An ordinary from-import, including "macros" imported under an
			// alias, which deliberately opts out of macro binding.
			continue
		}
		if stmt.Str == "" {
			return nil, locError(fmt.Errorf("macro-import declaration has no module specifier"), stmt)
		}
		abs, err := modspec.Resolve(stmt.Str, opts.Package)
		if err != nil {
			return nil, locError(err, stmt)
		}
		mod, err := registry.Load(abs, opts.Reload)
		if err != nil {
			return nil, locError(err, stmt)
		}
		for _, item := range items[1:] {
			desc, ok := mod.Bindings[item.Str]
			if !ok {
				err := fmt.Errorf("macro module %q does not define %q", abs, item.Str)
				return nil, locError(err, item)
			}
			name := item.Str
			if alias := item.Alias(); alias != "" {
				name = alias
			}
			table.Bind(name, desc)
		}
		program.Cells[i] = syntax.Import(abs).WithSource(stmt.Source)
	}
	return table, nil
}
