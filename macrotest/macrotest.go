// Copyright © 2025 The Macex authors

// Package macrotest provides helpers for testing macro transformers: a
// runner that resolves bindings and expands programs inside a test, and
// structural tree assertions with readable failure output.
package macrotest

import (
	"testing"

	"github.com/luthersystems/macex/diagnostic"
	"github.com/luthersystems/macex/macro"
	"github.com/luthersystems/macex/syntax"
)

// Runner drives expansion tests.  The zero value expands with an empty
// registry and no package identity.
type Runner struct {
	// Registry resolves macro-import declarations.  When nil an empty
	// registry is used, so any macro-import in the program fails the test.
	Registry *macro.ModuleRegistry

	// Package is the dotted package identity given to the binding resolver,
	// anchoring relative module specifiers.
	Package string

	// Options are passed through to every expander the runner constructs.
	Options []macro.Option
}

// Expand resolves program's macro-imports and fully expands it, failing the
// test on any error.  Expansion warnings render through the test log.
func (r *Runner) Expand(t testing.TB, file string, program *syntax.Node) *syntax.Node {
	t.Helper()
	registry := r.Registry
	if registry == nil {
		registry = macro.NewModuleRegistry()
	}
	table, err := macro.ResolveBindings(program, registry, macro.ResolveOptions{Package: r.Package})
	if err != nil {
		t.Fatalf("binding resolution: %v", err)
	}
	e := macro.NewExpander(table, file, r.Options...)
	out, err := e.Expand(program)
	if err != nil {
		t.Fatalf("expansion: %v", err)
	}
	logWarnings(t, e.Warnings())
	return out
}

// ExpandWith expands program against an explicit binding table, skipping
// binding resolution.  It fails the test on any error.
func (r *Runner) ExpandWith(t testing.TB, file string, program *syntax.Node, table *macro.BindingTable) *syntax.Node {
	t.Helper()
	e := macro.NewExpander(table, file, r.Options...)
	out, err := e.Expand(program)
	if err != nil {
		t.Fatalf("expansion: %v", err)
	}
	logWarnings(t, e.Warnings())
	return out
}

func logWarnings(t testing.TB, warnings []diagnostic.Diagnostic) {
	if len(warnings) == 0 {
		return
	}
	log := NewLogger(t)
	defer log.Flush()
	rend := &diagnostic.Renderer{}
	if err := rend.RenderAll(log, warnings); err != nil {
		t.Errorf("rendering warnings: %v", err)
	}
}

// AssertNodesEqual fails the test when got is not structurally equal to
// want.  Source locations are ignored.  It reports success.
func AssertNodesEqual(t testing.TB, want, got *syntax.Node) bool {
	t.Helper()
	if want == nil && got == nil {
		return true
	}
	if want == nil || got == nil || !want.Equal(got) {
		t.Errorf("trees differ:\nwant: %s\ngot:  %s", renderNode(want), renderNode(got))
		return false
	}
	return true
}

func renderNode(v *syntax.Node) string {
	if v == nil {
		return "<nil>"
	}
	return v.String()
}
