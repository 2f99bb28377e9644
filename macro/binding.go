// Copyright © 2025 The Macex authors

// Package macro implements the macro expansion engine: invocation detection
// over four syntactic forms, the recursive expansion protocol, binding
// resolution for macro-import declarations, and the non-executing collector
// used by diagnostic tooling.
//
// A program tree is expanded in two steps.  ResolveBindings scans the
// program's top-level statements for declarations of the form
//
//	from module.path import macros, name [as alias], ...
//
// producing a BindingTable and normalizing each declaration to a plain
// absolute import.  An Expander then walks the tree with that table,
// calling bound transformer functions and splicing their results back until
// no invocations remain.  The table is threaded explicitly through every
// traversal; no ambient state is consulted, so independent expansions with
// different tables may nest freely in one call stack.
package macro

import "github.com/luthersystems/macex/syntax"

// Kind classifies a macro invocation by its syntactic form.
type Kind uint8

// Invocation kinds.
const (
	// KindExpr is an expression invocation, name[target].
	KindExpr Kind = iota
	// KindBlock is a block invocation, a block statement whose header
	// clause leads with a bound name.
	KindBlock
	// KindDecorator is a decorator invocation, a definition annotated with a
	// bound name.
	KindDecorator
	// KindIdent is an identifier invocation, a bare bound name in value
	// position.
	KindIdent
)

var kindStrings = []string{
	KindExpr:      "expr",
	KindBlock:     "block",
	KindDecorator: "decorator",
	KindIdent:     "ident",
}

func (k Kind) String() string {
	if int(k) >= len(kindStrings) {
		return "invalid-kind"
	}
	return kindStrings[k]
}

// Call carries everything a transformer receives for one invocation.
type Call struct {
	// Name is the binding name the invocation was resolved through.
	Name string

	// Kind is the invocation's syntactic form.
	Kind Kind

	// Target is the subtree the invocation applies to.  For block
	// invocations it is an NList of body statements (or of the residual
	// nested block when the header carried further clauses); for decorator
	// invocations it is the whole annotated definition.
	Target *syntax.Node

	// Args holds the bracketed argument nodes of a parametric invocation.
	// It is empty, never nil, when there were no arguments.
	Args []*syntax.Node

	// As is the bound-result pattern from a block invocation's "as ..."
	// clause, or nil.
	As *syntax.Node

	// Expander is the engine instance performing the call.  Transformers
	// may use it to request partial expansion of their own input.
	Expander *Expander
}

// Transformer is a macro implementation.  It returns the replacement for
// the invocation: a single node, an NList of nodes (legal only in positions
// that accept a node sequence), or nil meaning "delete this invocation and
// everything it produced".  Errors propagate unchanged to the caller of
// Expand.
type Transformer func(call *Call) (*syntax.Node, error)

// Descriptor binds a transformer function to its capability flags.  Both
// flags are declared once, at registration; the engine never infers them
// from call shape, which keeps ambiguous bracket sequences from being
// silently misinterpreted.
type Descriptor struct {
	// Fn is the transformer.  It may be nil only for tables used purely by
	// the collector, which reads bindings but never calls them.
	Fn Transformer

	// IdentCapable permits invocation as a bare identifier with no
	// surrounding syntax.
	IdentCapable bool

	// Parametric permits a leading bracketed argument list before the
	// invocation's main target.
	Parametric bool
}

// BindingTable is an ordered mapping from invocation name to transformer
// descriptor.  Entries are added by the binding resolver (or directly via
// Bind); the expander and collector only read.
type BindingTable struct {
	names []string
	descs map[string]*Descriptor
}

// NewBindingTable returns an empty binding table.
func NewBindingTable() *BindingTable {
	return &BindingTable{descs: make(map[string]*Descriptor)}
}

// Bind records desc under name, replacing any previous binding for the
// name.  Insertion order of first appearance is preserved.
func (t *BindingTable) Bind(name string, desc *Descriptor) {
	if _, ok := t.descs[name]; !ok {
		t.names = append(t.names, name)
	}
	t.descs[name] = desc
}

// Lookup returns the descriptor bound to name.
func (t *BindingTable) Lookup(name string) (*Descriptor, bool) {
	desc, ok := t.descs[name]
	return desc, ok
}

// IsBound reports whether name has a binding.
func (t *BindingTable) IsBound(name string) bool {
	_, ok := t.descs[name]
	return ok
}

// Names returns the bound names in first-bound order.
func (t *BindingTable) Names() []string {
	names := make([]string, len(t.names))
	copy(names, t.names)
	return names
}

// Len returns the number of bindings.
func (t *BindingTable) Len() int {
	return len(t.names)
}
