// Copyright © 2025 The Macex authors

// Package astutil provides shared traversal utilities for macex syntax
// trees.
//
// These helpers are used by the marker query, the collector, and CLI
// tooling for walking parsed programs.
package astutil

import (
	"github.com/luthersystems/macex/syntax"
	"github.com/luthersystems/macex/token"
)

// Walk calls fn for every node in the tree, depth-first.
// parent is nil for top-level nodes.  Marker nodes are visited like any
// other node; callers that must not descend into finalized subtrees are
// expected to special-case them in fn (the expander does its own walking
// for exactly that reason).
func Walk(nodes []*syntax.Node, fn func(node *syntax.Node, parent *syntax.Node, depth int)) {
	for _, node := range nodes {
		walkNode(node, nil, 0, fn)
	}
}

func walkNode(node *syntax.Node, parent *syntax.Node, depth int, fn func(*syntax.Node, *syntax.Node, int)) {
	if node == nil {
		return
	}
	fn(node, parent, depth)
	for _, child := range node.Cells {
		walkNode(child, node, depth+1, fn)
	}
}

// HeadName returns the identifier at the base of a subscript expression, or
// the identifier's own name, or "".
func HeadName(v *syntax.Node) string {
	switch v.Type {
	case syntax.NIdent:
		return v.Str
	case syntax.NSubscript:
		if base := v.Cells[0]; base.Type == syntax.NIdent {
			return base.Str
		}
	}
	return ""
}

// SourceOf returns the best source location for a node.  Prefers the node's
// own source and falls back to the first child carrying one.
func SourceOf(v *syntax.Node) *token.Location {
	if v == nil {
		return nil
	}
	if v.Source != nil {
		return v.Source
	}
	for _, child := range v.Cells {
		if loc := SourceOf(child); loc != nil {
			return loc
		}
	}
	return nil
}
