// Copyright © 2025 The Macex authors

// Package syntax defines the tree representation consumed and produced by the
// macro expansion engine.  The host language's parsed program is modeled as a
// tagged-union Node; the engine introduces no node kinds of its own except
// NMarker (and the unit-constant statements it injects for coverage).
package syntax

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/luthersystems/macex/token"
)

// NType is the type of a Node.
type NType uint

// Possible NType values.
const (
	// NInvalid (0) is not a valid node type.
	NInvalid NType = iota
	// NModule is a whole program.  Cells holds the top-level statements.
	NModule
	// NIdent is an identifier.  The name is stored in the Str field.
	NIdent
	// NInt values store an int in the Int field.
	NInt
	// NFloat values store a float64 in the Float field.
	NFloat
	// NString values store a string in the Str field.
	NString
	// NNone is the host language's unit constant.
	NNone
	// NTuple is a comma-joined expression sequence.  Elements are in Cells.
	NTuple
	// NList is a generic node sequence: statement bodies, pattern lists, and
	// multi-node transformer results.  Elements are in Cells.
	NList
	// NBinary is a binary expression.  The operator is stored in Str and
	// Cells holds the two operands.
	NBinary
	// NSubscript is a bracketed index expression.  Cells[0] is the base and
	// Cells[1] the index expression.
	NSubscript
	// NExprStmt is an expression in statement position.  Cells[0] is the
	// expression.
	NExprStmt
	// NBlock is a block statement.  Cells[0] is an NList of header clauses
	// and Cells[1] an NList of body statements.
	NBlock
	// NClause is one block-header clause.  Cells[0] is the lead expression;
	// Cells[1], when present, is the bound-result pattern from an "as ..."
	// clause (an identifier, tuple, or list pattern).
	NClause
	// NDef is a function- or type-like definition.  The defined name is in
	// Str, Cells[0] is an NList of leading annotations, and Cells[1] an
	// NList of body statements.
	NDef
	// NImportFrom is a from-import declaration.  The module specifier is in
	// Str and Cells holds NImportItem nodes.
	NImportFrom
	// NImportItem is one imported name.  The name is in Str; an alias, when
	// present, is an NIdent in Cells[0].
	NImportItem
	// NImport is a plain module import.  The absolute module path is in Str.
	NImport
	// NMarker is an engine-private wrapper used for out-of-band coordination
	// between the expander and transformers.  The tag is in Str and the
	// wrapped body in Cells[0].  Traversals must special-case markers; they
	// are never handed to the target compiler except the sanctioned
	// done/coverage pair.
	NMarker
	// NTypeMax is not a real type but is numerically greater than all valid
	// NType values.
	NTypeMax
)

var nodeTypeStrings = []string{
	NInvalid:    "INVALID",
	NModule:     "module",
	NIdent:      "ident",
	NInt:        "int",
	NFloat:      "float",
	NString:     "string",
	NNone:       "none",
	NTuple:      "tuple",
	NList:       "list",
	NBinary:     "binary",
	NSubscript:  "subscript",
	NExprStmt:   "expr-stmt",
	NBlock:      "block",
	NClause:     "clause",
	NDef:        "def",
	NImportFrom: "import-from",
	NImportItem: "import-item",
	NImport:     "import",
	NMarker:     "marker",
}

func (t NType) String() string {
	if t >= NType(len(nodeTypeStrings)) {
		return nodeTypeStrings[NInvalid]
	}
	return nodeTypeStrings[t]
}

// Node is a syntax tree node.
type Node struct {
	// Source is the node's originating location in source code.  Programs
	// should not modify the contents of Source as the reference may be
	// shared by multiple nodes.  A nil Source marks a synthetic node.
	Source *token.Location

	// Str is used by NIdent, NString, NBinary (operator), NImportFrom
	// (module specifier), NImportItem (name), NImport (absolute path),
	// NDef (defined name), and NMarker (tag).
	Str string

	// Cells holds child nodes.
	Cells []*Node

	// Type is the node kind.
	Type NType

	// Fields used for numeric literals.
	Int   int
	Float float64
}

// Module returns a program node with the given top-level statements.
func Module(stmts ...*Node) *Node {
	return &Node{Type: NModule, Cells: stmts}
}

// Ident returns an identifier node named s.
func Ident(s string) *Node {
	return &Node{Type: NIdent, Str: s}
}

// Int returns an integer literal node.
func Int(x int) *Node {
	return &Node{Type: NInt, Int: x}
}

// Float returns a floating point literal node.
func Float(x float64) *Node {
	return &Node{Type: NFloat, Float: x}
}

// String returns a string literal node.
func String(s string) *Node {
	return &Node{Type: NString, Str: s}
}

// None returns the unit constant node.
func None() *Node {
	return &Node{Type: NNone}
}

// Tuple returns a tuple expression with the given elements.
func Tuple(elems ...*Node) *Node {
	return &Node{Type: NTuple, Cells: elems}
}

// List returns a generic node sequence.  Provided cells are used as backing
// storage and are not copied.
func List(cells ...*Node) *Node {
	return &Node{Type: NList, Cells: cells}
}

// Binary returns a binary expression node.
func Binary(op string, lhs, rhs *Node) *Node {
	return &Node{Type: NBinary, Str: op, Cells: []*Node{lhs, rhs}}
}

// Subscript returns a bracketed index expression base[index].
func Subscript(base, index *Node) *Node {
	return &Node{Type: NSubscript, Cells: []*Node{base, index}}
}

// ExprStmt returns an expression statement wrapping expr.
func ExprStmt(expr *Node) *Node {
	return &Node{Type: NExprStmt, Cells: []*Node{expr}}
}

// Block returns a block statement with the given header clauses and body
// statements.
func Block(clauses []*Node, body []*Node) *Node {
	return &Node{Type: NBlock, Cells: []*Node{List(clauses...), List(body...)}}
}

// Clause returns a block-header clause.  The as argument may be nil when the
// clause binds no result.
func Clause(lead, as *Node) *Node {
	if as == nil {
		return &Node{Type: NClause, Cells: []*Node{lead}}
	}
	return &Node{Type: NClause, Cells: []*Node{lead, as}}
}

// Def returns a definition node with the given name, leading annotations,
// and body statements.
func Def(name string, annotations []*Node, body []*Node) *Node {
	return &Node{Type: NDef, Str: name, Cells: []*Node{List(annotations...), List(body...)}}
}

// ImportFrom returns a from-import declaration for the given module
// specifier and items.
func ImportFrom(module string, items ...*Node) *Node {
	return &Node{Type: NImportFrom, Str: module, Cells: items}
}

// ImportItem returns one imported name with an optional alias ("" for none).
func ImportItem(name, alias string) *Node {
	item := &Node{Type: NImportItem, Str: name}
	if alias != "" {
		item.Cells = []*Node{Ident(alias)}
	}
	return item
}

// Import returns a plain import of the given absolute module path.
func Import(path string) *Node {
	return &Node{Type: NImport, Str: path}
}

// Marker returns a marker node with the given tag wrapping body.
func Marker(tag string, body *Node) *Node {
	return &Node{Type: NMarker, Str: tag, Cells: []*Node{body}}
}

// Clauses returns the header clause list of a block statement.  Clauses
// panics if v is not an NBlock.
func (v *Node) Clauses() []*Node {
	if v.Type != NBlock {
		panic("not a block: " + v.Type.String())
	}
	return v.Cells[0].Cells
}

// Body returns the statement list of a block or definition.  Body panics for
// other node kinds.
func (v *Node) Body() []*Node {
	switch v.Type {
	case NBlock, NDef:
		return v.Cells[1].Cells
	}
	panic("node has no body: " + v.Type.String())
}

// Annotations returns the leading annotation list of a definition.
// Annotations panics if v is not an NDef.
func (v *Node) Annotations() []*Node {
	if v.Type != NDef {
		panic("not a definition: " + v.Type.String())
	}
	return v.Cells[0].Cells
}

// MarkerBody returns the node wrapped by a marker.  MarkerBody panics if v
// is not an NMarker.
func (v *Node) MarkerBody() *Node {
	if v.Type != NMarker {
		panic("not a marker: " + v.Type.String())
	}
	return v.Cells[0]
}

// Alias returns the alias of an import item, or "" when the item is not
// aliased.
func (v *Node) Alias() string {
	if v.Type != NImportItem || len(v.Cells) == 0 {
		return ""
	}
	return v.Cells[0].Str
}

// WithSource sets the node's source location and returns the node.
func (v *Node) WithSource(loc *token.Location) *Node {
	v.Source = loc
	return v
}

// CopySource copies the source location of src onto v, mirroring the host
// compiler's location propagation for synthesized nodes.  It returns v.
func (v *Node) CopySource(src *Node) *Node {
	if src != nil {
		v.Source = src.Source
	}
	return v
}

// Copy creates a deep copy of the receiver.  Source locations are shared,
// not copied.
func (v *Node) Copy() *Node {
	if v == nil {
		return nil
	}
	cp := &Node{}
	*cp = *v
	if len(v.Cells) > 0 {
		cp.Cells = make([]*Node, len(v.Cells))
		for i := range v.Cells {
			cp.Cells[i] = v.Cells[i].Copy()
		}
	}
	return cp
}

// Equal returns true if v and other are structurally equal.  Source
// locations are ignored.
func (v *Node) Equal(other *Node) bool {
	if v == nil || other == nil {
		return v == other
	}
	if v.Type != other.Type || v.Str != other.Str {
		return false
	}
	if v.Int != other.Int || v.Float != other.Float {
		return false
	}
	if len(v.Cells) != len(other.Cells) {
		return false
	}
	for i := range v.Cells {
		if !v.Cells[i].Equal(other.Cells[i]) {
			return false
		}
	}
	return true
}

// String renders an approximate textual form of the node.  The rendering is
// best-effort and intended for diagnostics; it is not a faithful unparser
// and the engine never emits it as compilable source.
func (v *Node) String() string {
	if v == nil {
		return "<nil>"
	}
	switch v.Type {
	case NModule:
		return joinNodes(v.Cells, "; ")
	case NIdent:
		return v.Str
	case NInt:
		return strconv.Itoa(v.Int)
	case NFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case NString:
		return fmt.Sprintf("%q", v.Str)
	case NNone:
		return "None"
	case NTuple:
		return "(" + joinNodes(v.Cells, ", ") + ")"
	case NList:
		return "[" + joinNodes(v.Cells, ", ") + "]"
	case NBinary:
		return fmt.Sprintf("(%s %s %s)", v.Cells[0], v.Str, v.Cells[1])
	case NSubscript:
		return fmt.Sprintf("%s[%s]", v.Cells[0], v.Cells[1])
	case NExprStmt:
		return v.Cells[0].String()
	case NBlock:
		return fmt.Sprintf("with %s: %s", joinNodes(v.Clauses(), ", "), joinNodes(v.Body(), "; "))
	case NClause:
		if len(v.Cells) > 1 {
			return fmt.Sprintf("%s as %s", v.Cells[0], v.Cells[1])
		}
		return v.Cells[0].String()
	case NDef:
		var buf bytes.Buffer
		for _, a := range v.Annotations() {
			fmt.Fprintf(&buf, "@%s ", a)
		}
		fmt.Fprintf(&buf, "def %s: %s", v.Str, joinNodes(v.Body(), "; "))
		return buf.String()
	case NImportFrom:
		return fmt.Sprintf("from %s import %s", v.Str, joinNodes(v.Cells, ", "))
	case NImportItem:
		if alias := v.Alias(); alias != "" {
			return fmt.Sprintf("%s as %s", v.Str, alias)
		}
		return v.Str
	case NImport:
		return "import " + v.Str
	case NMarker:
		return fmt.Sprintf("#<marker %s %s>", v.Str, v.Cells[0])
	default:
		return fmt.Sprintf("#<%s %#v>", v.Type, v)
	}
}

func joinNodes(cells []*Node, sep string) string {
	parts := make([]string, len(cells))
	for i, c := range cells {
		parts[i] = c.String()
	}
	return strings.Join(parts, sep)
}
