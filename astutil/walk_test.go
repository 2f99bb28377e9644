// Copyright © 2025 The Macex authors

package astutil

import (
	"testing"

	"github.com/luthersystems/macex/syntax"
	"github.com/luthersystems/macex/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalk(t *testing.T) {
	tree := syntax.Binary("+",
		syntax.Subscript(syntax.Ident("m"), syntax.Ident("x")),
		syntax.Int(1),
	)
	type visit struct {
		typ   syntax.NType
		depth int
	}
	var visits []visit
	Walk([]*syntax.Node{tree}, func(node, parent *syntax.Node, depth int) {
		visits = append(visits, visit{node.Type, depth})
		if depth == 0 {
			assert.Nil(t, parent)
		} else {
			require.NotNil(t, parent)
		}
	})
	want := []visit{
		{syntax.NBinary, 0},
		{syntax.NSubscript, 1},
		{syntax.NIdent, 2},
		{syntax.NIdent, 2},
		{syntax.NInt, 1},
	}
	assert.Equal(t, want, visits)
}

func TestWalkNil(t *testing.T) {
	calls := 0
	Walk([]*syntax.Node{nil}, func(node, parent *syntax.Node, depth int) {
		calls++
	})
	assert.Equal(t, 0, calls)
}

func TestHeadName(t *testing.T) {
	assert.Equal(t, "f", HeadName(syntax.Ident("f")))
	assert.Equal(t, "f", HeadName(syntax.Subscript(syntax.Ident("f"), syntax.Int(0))))
	assert.Equal(t, "", HeadName(syntax.Subscript(syntax.Int(1), syntax.Int(0))))
	assert.Equal(t, "", HeadName(syntax.Int(1)))
}

func TestSourceOf(t *testing.T) {
	loc := &token.Location{File: "prog.src", Line: 4}
	inner := syntax.Ident("x").WithSource(loc)
	tree := syntax.ExprStmt(syntax.Binary("+", inner, syntax.Int(1)))
	assert.Same(t, loc, SourceOf(tree), "falls back to the first child with a location")

	own := &token.Location{File: "prog.src", Line: 5}
	tree.Source = own
	assert.Same(t, own, SourceOf(tree))

	assert.Nil(t, SourceOf(nil))
	assert.Nil(t, SourceOf(syntax.Int(1)))
}
