// Copyright © 2025 The Macex authors

package macro

import (
	"testing"

	"github.com/luthersystems/macex/diagnostic"
	"github.com/luthersystems/macex/syntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDetector(warn func(diagnostic.Diagnostic)) *detector {
	table := NewBindingTable()
	table.Bind("double", &Descriptor{})
	table.Bind("tag", &Descriptor{Parametric: true})
	table.Bind("anchor", &Descriptor{IdentCapable: true})
	return &detector{bindings: table, warn: warn}
}

func TestMatchSubscriptSimple(t *testing.T) {
	d := testDetector(nil)
	target := syntax.Binary("+", syntax.Ident("x"), syntax.Int(1))
	sub := syntax.Subscript(syntax.Ident("double"), target)
	m, err := d.matchSubscript(sub)
	require.NoError(t, err)
	require.NotNil(t, m.inv)
	assert.Equal(t, "double", m.inv.Name)
	assert.Equal(t, KindExpr, m.inv.Kind)
	assert.Empty(t, m.inv.Args)
	assert.Same(t, target, m.inv.Target)
}

func TestMatchSubscriptTupleTarget(t *testing.T) {
	// A comma tuple under a non-parametric binding is one tuple-valued
	// target, never an argument list.
	d := testDetector(nil)
	tup := syntax.Tuple(syntax.Ident("a"), syntax.Ident("b"))
	m, err := d.matchSubscript(syntax.Subscript(syntax.Ident("double"), tup))
	require.NoError(t, err)
	require.NotNil(t, m.inv)
	assert.Empty(t, m.inv.Args)
	assert.Same(t, tup, m.inv.Target)
}

func TestMatchSubscriptParametric(t *testing.T) {
	d := testDetector(nil)
	sub := syntax.Subscript(
		syntax.Subscript(syntax.Ident("tag"), syntax.Tuple(syntax.Ident("a"), syntax.Ident("b"))),
		syntax.Ident("body"),
	)
	m, err := d.matchSubscript(sub)
	require.NoError(t, err)
	require.NotNil(t, m.inv)
	assert.Equal(t, "tag", m.inv.Name)
	require.Len(t, m.inv.Args, 2)
	assert.Equal(t, "a", m.inv.Args[0].Str)
	assert.Equal(t, "body", m.inv.Target.Str)
}

func TestMatchSubscriptParametricSingleArg(t *testing.T) {
	d := testDetector(nil)
	sub := syntax.Subscript(
		syntax.Subscript(syntax.Ident("tag"), syntax.Ident("a")),
		syntax.Ident("body"),
	)
	m, err := d.matchSubscript(sub)
	require.NoError(t, err)
	require.NotNil(t, m.inv)
	require.Len(t, m.inv.Args, 1)
	assert.Equal(t, "a", m.inv.Args[0].Str)
}

func TestMatchSubscriptParametricMissingTarget(t *testing.T) {
	d := testDetector(nil)
	_, err := d.matchSubscript(syntax.Subscript(syntax.Ident("tag"), syntax.Ident("a")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bracketed target")
}

func TestMatchSubscriptLikelyMistake(t *testing.T) {
	var warnings []diagnostic.Diagnostic
	d := testDetector(func(diag diagnostic.Diagnostic) {
		warnings = append(warnings, diag)
	})
	sub := syntax.Subscript(
		syntax.Subscript(syntax.Ident("double"), syntax.Ident("a")),
		syntax.Ident("b"),
	)
	m, err := d.matchSubscript(sub)
	require.NoError(t, err)
	assert.Nil(t, m.inv)
	assert.True(t, m.ambiguous)
	require.Len(t, warnings, 1)
	assert.Equal(t, diagnostic.SeverityWarning, warnings[0].Severity)
	assert.Contains(t, warnings[0].Message, "double")
}

func TestMatchSubscriptUnbound(t *testing.T) {
	d := testDetector(nil)
	m, err := d.matchSubscript(syntax.Subscript(syntax.Ident("vec"), syntax.Int(0)))
	require.NoError(t, err)
	assert.Nil(t, m.inv)
	assert.False(t, m.ambiguous)

	// Unbound doubled brackets are ordinary chained indexing.
	m, err = d.matchSubscript(syntax.Subscript(
		syntax.Subscript(syntax.Ident("vec"), syntax.Int(0)),
		syntax.Int(1),
	))
	require.NoError(t, err)
	assert.Nil(t, m.inv)
	assert.False(t, m.ambiguous)
}

func TestMatchHead(t *testing.T) {
	d := testDetector(nil)

	inv := d.matchHead(syntax.Ident("double"), KindBlock)
	require.NotNil(t, inv)
	assert.Equal(t, KindBlock, inv.Kind)
	assert.Empty(t, inv.Args)

	inv = d.matchHead(syntax.Subscript(syntax.Ident("tag"), syntax.Ident("a")), KindDecorator)
	require.NotNil(t, inv)
	assert.Equal(t, KindDecorator, inv.Kind)
	require.Len(t, inv.Args, 1)

	assert.Nil(t, d.matchHead(syntax.Ident("unbound"), KindBlock))
	assert.Nil(t, d.matchHead(syntax.Int(1), KindBlock))
}

func TestMatchHeadNonParametricArgs(t *testing.T) {
	var warnings []diagnostic.Diagnostic
	d := testDetector(func(diag diagnostic.Diagnostic) {
		warnings = append(warnings, diag)
	})
	inv := d.matchHead(syntax.Subscript(syntax.Ident("double"), syntax.Ident("a")), KindBlock)
	assert.Nil(t, inv)
	assert.Len(t, warnings, 1)
}

func TestMatchIdent(t *testing.T) {
	d := testDetector(nil)

	inv := d.matchIdent(syntax.Ident("anchor"))
	require.NotNil(t, inv)
	assert.Equal(t, KindIdent, inv.Kind)

	// Bound but not identifier-capable.
	assert.Nil(t, d.matchIdent(syntax.Ident("double")))
	assert.Nil(t, d.matchIdent(syntax.Ident("unbound")))
}
