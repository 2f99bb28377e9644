// Copyright © 2025 The Macex authors

package macro

import (
	"testing"

	"github.com/luthersystems/macex/syntax"
	"github.com/luthersystems/macex/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRegistry() *ModuleRegistry {
	r := NewModuleRegistry()
	r.RegisterModule(NewModule("pkg.macros").
		Define("double", &Descriptor{Fn: doubleFn}).
		Define("anchor", &Descriptor{IdentCapable: true}))
	r.RegisterModule(NewModule("app.util.macros").
		Define("tag", &Descriptor{Parametric: true}))
	return r
}

func TestResolveBindings(t *testing.T) {
	decl := syntax.ImportFrom("pkg.macros",
		syntax.ImportItem("macros", ""),
		syntax.ImportItem("double", ""),
		syntax.ImportItem("anchor", "mark"),
	).WithSource(&token.Location{File: "prog.src", Line: 1})
	prog := syntax.Module(
		decl,
		syntax.ExprStmt(syntax.Subscript(syntax.Ident("double"), syntax.Ident("x"))),
	)
	table, err := ResolveBindings(prog, testRegistry(), ResolveOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"double", "mark"}, table.Names())
	desc, ok := table.Lookup("mark")
	require.True(t, ok)
	assert.True(t, desc.IdentCapable, "aliases bind the original descriptor")
	assert.False(t, table.IsBound("anchor"))

	// The declaration is rewritten to a plain absolute import in place,
	// keeping its location.
	require.Equal(t, syntax.NImport, prog.Cells[0].Type)
	assert.Equal(t, "pkg.macros", prog.Cells[0].Str)
	assert.Equal(t, decl.Source, prog.Cells[0].Source)
}

func TestResolveBindingsRelative(t *testing.T) {
	prog := syntax.Module(
		syntax.ImportFrom(".macros",
			syntax.ImportItem("macros", ""),
			syntax.ImportItem("double", ""),
		),
	)
	_, err := ResolveBindings(prog, testRegistry(), ResolveOptions{Package: "pkg"})
	require.NoError(t, err)
	assert.Equal(t, "pkg.macros", prog.Cells[0].Str)
}

func TestResolveBindingsRelativeClimb(t *testing.T) {
	prog := syntax.Module(
		syntax.ImportFrom("..util.macros",
			syntax.ImportItem("macros", ""),
			syntax.ImportItem("tag", ""),
		),
	)
	table, err := ResolveBindings(prog, testRegistry(), ResolveOptions{Package: "app.web"})
	require.NoError(t, err)
	assert.True(t, table.IsBound("tag"))
	assert.Equal(t, "app.util.macros", prog.Cells[0].Str)
}

func TestResolveBindingsRelativeWithoutPackage(t *testing.T) {
	prog := syntax.Module(
		syntax.ImportFrom(".macros",
			syntax.ImportItem("macros", ""),
			syntax.ImportItem("double", ""),
		),
	)
	_, err := ResolveBindings(prog, testRegistry(), ResolveOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outside any package")
}

func TestResolveBindingsOrdinaryImports(t *testing.T) {
	// from-imports that do not lead with a bare "macros" item are not
	// macro-import declarations and stay untouched.
	aliased := syntax.ImportFrom("pkg.macros",
		syntax.ImportItem("macros", "m"),
		syntax.ImportItem("double", ""),
	)
	plain := syntax.ImportFrom("pkg.other", syntax.ImportItem("f", ""))
	prog := syntax.Module(aliased, plain)

	table, err := ResolveBindings(prog, testRegistry(), ResolveOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, table.Len())
	assert.Same(t, aliased, prog.Cells[0])
	assert.Same(t, plain, prog.Cells[1])
}

func TestResolveBindingsBareMacrosImport(t *testing.T) {
	// "from M import macros" with no further names binds nothing but still
	// loads the module for its side effects and is normalized to a plain
	// absolute import like any other macro-import declaration.
	loads := 0
	registry := NewModuleRegistry()
	registry.Register("pkg.macros", func() (*Module, error) {
		loads++
		return NewModule("pkg.macros"), nil
	})

	decl := syntax.ImportFrom("pkg.macros", syntax.ImportItem("macros", "")).
		WithSource(&token.Location{File: "prog.src", Line: 1})
	prog := syntax.Module(decl)

	table, err := ResolveBindings(prog, registry, ResolveOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, table.Len())
	assert.Equal(t, 1, loads)
	require.Equal(t, syntax.NImport, prog.Cells[0].Type)
	assert.Equal(t, "pkg.macros", prog.Cells[0].Str)
	assert.Equal(t, decl.Source, prog.Cells[0].Source)
}

func TestResolveBindingsBareMacrosImportUnregistered(t *testing.T) {
	prog := syntax.Module(
		syntax.ImportFrom("nowhere", syntax.ImportItem("macros", "")),
	)
	_, err := ResolveBindings(prog, testRegistry(), ResolveOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no macro module registered")
}

func TestResolveBindingsUnknownName(t *testing.T) {
	prog := syntax.Module(
		syntax.ImportFrom("pkg.macros",
			syntax.ImportItem("macros", ""),
			syntax.ImportItem("missing", ""),
		),
	)
	_, err := ResolveBindings(prog, testRegistry(), ResolveOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `does not define "missing"`)
}

func TestResolveBindingsUnregisteredModule(t *testing.T) {
	prog := syntax.Module(
		syntax.ImportFrom("nowhere",
			syntax.ImportItem("macros", ""),
			syntax.ImportItem("f", ""),
		),
	)
	_, err := ResolveBindings(prog, testRegistry(), ResolveOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no macro module registered")
}

func TestResolveBindingsEmptySpecifier(t *testing.T) {
	prog := syntax.Module(
		syntax.ImportFrom("",
			syntax.ImportItem("macros", ""),
			syntax.ImportItem("f", ""),
		).WithSource(&token.Location{File: "prog.src", Line: 2}),
	)
	_, err := ResolveBindings(prog, testRegistry(), ResolveOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no module specifier")
	assert.Contains(t, err.Error(), "prog.src:2")
}

func TestResolveBindingsNonModule(t *testing.T) {
	_, err := ResolveBindings(syntax.Ident("x"), testRegistry(), ResolveOptions{})
	assert.Error(t, err)
}

// End to end: resolve then expand, the way a front end drives the engine.
func TestResolveAndExpand(t *testing.T) {
	prog := syntax.Module(
		syntax.ImportFrom("pkg.macros",
			syntax.ImportItem("macros", ""),
			syntax.ImportItem("double", ""),
		),
		syntax.ExprStmt(syntax.Subscript(syntax.Ident("double"), syntax.Ident("x"))),
	)
	table, err := ResolveBindings(prog, testRegistry(), ResolveOptions{})
	require.NoError(t, err)
	out, err := ExpandProgram(prog, table, "prog.src")
	require.NoError(t, err)
	want := syntax.Module(
		syntax.Import("pkg.macros"),
		syntax.ExprStmt(syntax.Binary("+", syntax.Ident("x"), syntax.Ident("x"))),
	)
	assert.True(t, want.Equal(out), "got %s", out)
}
