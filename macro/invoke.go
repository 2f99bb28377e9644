// Copyright © 2025 The Macex authors

package macro

import (
	"fmt"

	"github.com/luthersystems/macex/astutil"
	"github.com/luthersystems/macex/diagnostic"
	"github.com/luthersystems/macex/syntax"
)

// Invocation is the detector's ephemeral output: one recognized macro use.
// It is constructed per visit and consumed immediately by the expander (to
// build a transformer call) or the collector (to record a sighting); it is
// never persisted.
type Invocation struct {
	Name      string
	Kind      Kind
	Args      []*syntax.Node
	Target    *syntax.Node
	As        *syntax.Node
	Enclosing *syntax.Node
}

// detector performs structural pattern matching over the four invocation
// forms.  It is shared by the expander and the collector so the two can
// never disagree about what constitutes an invocation.  The warn callback
// is nil for the collector, which stays silent.
type detector struct {
	bindings *BindingTable
	warn     func(diagnostic.Diagnostic)
}

// splitHead destructures a candidate expression into a name and an optional
// bracketed argument list.  This is the destructuring step shared by all
// four forms; the capability gate is applied by the per-form matchers.
func (d *detector) splitHead(expr *syntax.Node) (name string, args []*syntax.Node, hasArgs bool, ok bool) {
	switch expr.Type {
	case syntax.NIdent:
		return expr.Str, nil, false, true
	case syntax.NSubscript:
		if base := expr.Cells[0]; base.Type == syntax.NIdent {
			return base.Str, argNodes(expr.Cells[1]), true, true
		}
	}
	return "", nil, false, false
}

// argNodes flattens a bracketed index expression into an argument list.  A
// comma tuple contributes its elements; any other expression is a single
// argument.
func argNodes(index *syntax.Node) []*syntax.Node {
	if index.Type == syntax.NTuple {
		return index.Cells
	}
	return []*syntax.Node{index}
}

// subscriptMatch is the outcome of expression-form detection at one
// subscript node.
type subscriptMatch struct {
	inv *Invocation

	// ambiguous marks the likely-mistake shape name[args][target] with a
	// non-parametric binding: neither subscript is an invocation and the
	// expression is left unchanged, but the enclosing walker must not
	// reattempt detection on the inner subscript.
	ambiguous bool
}

// matchSubscript detects an expression-form invocation at sub.  It returns
// a zero match when sub is not an invocation, in which case the caller
// falls through to ordinary structural recursion.
func (d *detector) matchSubscript(sub *syntax.Node) (subscriptMatch, error) {
	base, index := sub.Cells[0], sub.Cells[1]

	// name[args][target]: a doubled bracket group is an argument list plus
	// target for a parametric binding, and a likely mistake otherwise.
	if base.Type == syntax.NSubscript && base.Cells[0].Type == syntax.NIdent {
		name := base.Cells[0].Str
		desc, bound := d.bindings.Lookup(name)
		if bound && desc.Parametric {
			return subscriptMatch{inv: &Invocation{
				Name:      name,
				Kind:      KindExpr,
				Args:      argNodes(base.Cells[1]),
				Target:    index,
				Enclosing: sub,
			}}, nil
		}
		if bound {
			d.warnLikelyMistake(name, sub)
			return subscriptMatch{ambiguous: true}, nil
		}
		return subscriptMatch{}, nil
	}

	if base.Type != syntax.NIdent {
		return subscriptMatch{}, nil
	}
	name := base.Str
	desc, bound := d.bindings.Lookup(name)
	if !bound {
		return subscriptMatch{}, nil
	}
	if desc.Parametric {
		// The bracket group is always consumed as the argument list of a
		// parametric binding, so a target bracket must follow.
		err := &UsageError{Name: name, Kind: KindExpr,
			Msg: "argument list must be followed by a bracketed target"}
		return subscriptMatch{}, locError(err, sub)
	}
	// The whole index expression is the target; a comma tuple is a single
	// tuple-valued target, not an argument list.
	return subscriptMatch{inv: &Invocation{
		Name:      name,
		Kind:      KindExpr,
		Args:      []*syntax.Node{},
		Target:    index,
		Enclosing: sub,
	}}, nil
}

// matchHead detects a block-clause or decorator invocation head.  The kind
// argument selects the form for the resulting invocation; target, bound
// pattern, and enclosing node are filled in by the caller.
func (d *detector) matchHead(expr *syntax.Node, kind Kind) *Invocation {
	name, args, hasArgs, ok := d.splitHead(expr)
	if !ok {
		return nil
	}
	desc, bound := d.bindings.Lookup(name)
	if !bound {
		return nil
	}
	if hasArgs && !desc.Parametric {
		// Almost certainly meant a parametric invocation; continue treating
		// the head as an ordinary expression.
		d.warnLikelyMistake(name, expr)
		return nil
	}
	if args == nil {
		args = []*syntax.Node{}
	}
	return &Invocation{Name: name, Kind: kind, Args: args, Enclosing: expr}
}

// matchIdent detects an identifier-form invocation.  Almost every bare
// identifier is an ordinary reference, so recognition requires the binding
// to declare itself identifier-capable.
func (d *detector) matchIdent(id *syntax.Node) *Invocation {
	desc, bound := d.bindings.Lookup(id.Str)
	if !bound || !desc.IdentCapable {
		return nil
	}
	return &Invocation{
		Name:      id.Str,
		Kind:      KindIdent,
		Args:      []*syntax.Node{},
		Target:    id,
		Enclosing: id,
	}
}

func (d *detector) warnLikelyMistake(name string, node *syntax.Node) {
	if d.warn == nil {
		return
	}
	diag := diagnostic.New(
		diagnostic.SeverityWarning,
		fmt.Sprintf("non-parametric macro %q used with a bracketed argument list; treating as an ordinary expression", name),
		astutil.SourceOf(node),
		"",
	)
	diag.Notes = append(diag.Notes, approxText(node))
	d.warn(diag)
}
