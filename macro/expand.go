// Copyright © 2025 The Macex authors

package macro

import (
	"fmt"

	"github.com/luthersystems/macex/astutil"
	"github.com/luthersystems/macex/diagnostic"
	"github.com/luthersystems/macex/syntax"
	"github.com/luthersystems/macex/token"
)

// Tracer observes macro expansions.  Start is called when an invocation
// begins expanding and the returned func after its transformer has run and
// the result has been re-walked, so invocations emitted by a transformer
// register as nested start/stop pairs inside their producer's.  The
// macro/x/tracer package provides OpenTelemetry and OpenCensus
// implementations.
type Tracer interface {
	Start(inv *Invocation) func()
}

// Expander is the macro expansion engine.  An Expander holds the binding
// table for one expansion request and the mutable recursion toggle; it is
// not safe for concurrent use, but independent Expander instances may nest
// within one call stack since no process-wide state is consulted during
// expansion.
type Expander struct {
	bindings *BindingTable
	det      *detector
	file     string
	rec      []bool
	warnings []diagnostic.Diagnostic
	tracer   Tracer
}

// Option configures an Expander.
type Option func(*Expander)

// WithTracer attaches a tracer observing every transformer call.
func WithTracer(tr Tracer) Option {
	return func(e *Expander) { e.tracer = tr }
}

// NewExpander returns an expander over the given bindings.  The file
// argument identifies the program being expanded, for diagnostics.
func NewExpander(bindings *BindingTable, file string, opts ...Option) *Expander {
	e := &Expander{
		bindings: bindings,
		file:     file,
		rec:      []bool{true},
	}
	e.det = &detector{bindings: bindings, warn: e.recordWarning}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExpandProgram fully expands tree using bindings and performs global
// postprocessing.  It is the top-level entry point consumed by front ends;
// tree should be the parsed program of one source file.
func ExpandProgram(tree *syntax.Node, bindings *BindingTable, file string) (*syntax.Node, error) {
	return NewExpander(bindings, file).Expand(tree)
}

// Expand fully expands tree, then runs the global postprocessing pass: the
// one place that sees the completely expanded tree and asserts that no
// marker of a disallowed tag survived.
func (e *Expander) Expand(tree *syntax.Node) (*syntax.Node, error) {
	out, err := e.ExpandNode(tree)
	if err != nil {
		return nil, err
	}
	if err := e.postprocess(out); err != nil {
		return nil, err
	}
	return out, nil
}

// ExpandNode walks tree once, expanding every invocation found, without the
// global postprocessing pass.  Transformers use it (through Call.Expander)
// to request expansion of their own input.  The node must occupy a
// single-node position; use ExpandSeq for statement sequences.
func (e *Expander) ExpandNode(tree *syntax.Node) (*syntax.Node, error) {
	return e.expandChild(tree)
}

// ExpandSeq expands a statement sequence, splicing multi-node results and
// dropping deletions.
func (e *Expander) ExpandSeq(stmts []*syntax.Node) ([]*syntax.Node, error) {
	return e.expandSeq(stmts)
}

// Recursive reports whether expansion results are currently re-walked
// before being spliced into their parent.
func (e *Expander) Recursive() bool {
	return e.rec[len(e.rec)-1]
}

// WithRecursion sets the recursion toggle for a scoped section and returns
// the restore function, meant for defer.  Enter/leave pairs must nest
// correctly; unbalanced use is a bug in the engine or transformer, not a
// user-facing condition.
func (e *Expander) WithRecursion(enabled bool) func() {
	e.rec = append(e.rec, enabled)
	return func() {
		if len(e.rec) <= 1 {
			panic("unbalanced recursion scope")
		}
		e.rec = e.rec[:len(e.rec)-1]
	}
}

// File returns the identity of the file being expanded.
func (e *Expander) File() string {
	return e.file
}

// Warnings returns the non-fatal diagnostics recorded so far, in emission
// order.
func (e *Expander) Warnings() []diagnostic.Diagnostic {
	return e.warnings
}

func (e *Expander) recordWarning(d diagnostic.Diagnostic) {
	for i := range d.Spans {
		if d.Spans[i].File == "" {
			d.Spans[i].File = e.file
		}
	}
	e.warnings = append(e.warnings, d)
}

func (e *Expander) postprocess(tree *syntax.Node) error {
	return CheckMarkers(tree)
}

// expand returns the replacement sequence for node: empty for deletion, one
// node ordinarily, several when an expansion produced a statement splice.
func (e *Expander) expand(node *syntax.Node) ([]*syntax.Node, error) {
	if node == nil {
		return nil, nil
	}
	switch node.Type {
	case syntax.NMarker:
		if IsDone(node) {
			// Finalized result of an earlier expansion; never re-walked.
			return []*syntax.Node{node}, nil
		}
		body, err := e.expandChild(node.MarkerBody())
		if err != nil {
			return nil, err
		}
		node.Cells[0] = body
		return []*syntax.Node{node}, nil

	case syntax.NSubscript:
		return e.expandSubscript(node)

	case syntax.NIdent:
		return e.expandIdent(node)

	case syntax.NBlock:
		return e.expandBlock(node)

	case syntax.NDef:
		return e.expandDef(node)

	case syntax.NModule, syntax.NList:
		cells, err := e.expandSeq(node.Cells)
		if err != nil {
			return nil, err
		}
		node.Cells = cells
		return []*syntax.Node{node}, nil

	case syntax.NImportFrom, syntax.NImport:
		// Names inside import declarations are never invocation sites.
		return []*syntax.Node{node}, nil

	default:
		for i, cell := range node.Cells {
			out, err := e.expandChild(cell)
			if err != nil {
				return nil, err
			}
			node.Cells[i] = out
		}
		return []*syntax.Node{node}, nil
	}
}

// expandChild expands a node occupying a single-node position.  Deletion
// and splicing are usage errors there.
func (e *Expander) expandChild(node *syntax.Node) (*syntax.Node, error) {
	out, err := e.expand(node)
	if err != nil {
		return nil, err
	}
	switch len(out) {
	case 1:
		return out[0], nil
	case 0:
		return nil, locError(fmt.Errorf("macro expansion deleted a node in a position that requires one"), node)
	default:
		return nil, locError(fmt.Errorf("macro expansion produced %d nodes in a position that accepts one", len(out)), node)
	}
}

func (e *Expander) expandSeq(stmts []*syntax.Node) ([]*syntax.Node, error) {
	var out []*syntax.Node
	for _, stmt := range stmts {
		res, err := e.expand(stmt)
		if err != nil {
			return nil, err
		}
		out = append(out, res...)
	}
	return out, nil
}

func (e *Expander) expandSubscript(sub *syntax.Node) ([]*syntax.Node, error) {
	m, err := e.det.matchSubscript(sub)
	if err != nil {
		return nil, err
	}
	if m.inv != nil {
		results, err := e.expandInvocation(m.inv)
		if err != nil {
			return nil, err
		}
		return results, nil
	}
	if m.ambiguous {
		// name[args][target] with a non-parametric binding: leave the
		// expression unchanged but walk both index expressions, skipping
		// re-detection of the inner subscript.
		base := sub.Cells[0]
		inner, err := e.expandChild(base.Cells[1])
		if err != nil {
			return nil, err
		}
		base.Cells[1] = inner
		outer, err := e.expandChild(sub.Cells[1])
		if err != nil {
			return nil, err
		}
		sub.Cells[1] = outer
		return []*syntax.Node{sub}, nil
	}
	for i, cell := range sub.Cells {
		out, err := e.expandChild(cell)
		if err != nil {
			return nil, err
		}
		sub.Cells[i] = out
	}
	return []*syntax.Node{sub}, nil
}

// expandIdent handles identifier-form invocations.  Unlike the other three
// forms nothing is removed from the tree to guarantee termination, so the
// transformer may return the same identifier unchanged to mean "stop being
// a macro here"; recursion is disabled for the duration of the call so the
// transformer body can safely mention its own name.
func (e *Expander) expandIdent(id *syntax.Node) ([]*syntax.Node, error) {
	inv := e.det.matchIdent(id)
	if inv == nil {
		return []*syntax.Node{id}, nil
	}
	if e.tracer != nil {
		stop := e.tracer.Start(inv)
		defer stop()
	}
	restore := e.WithRecursion(false)
	results, err := e.invoke(inv)
	restore()
	if err != nil {
		return nil, err
	}
	e.stampRoots(results, inv.Enclosing)
	if len(results) == 1 {
		res := results[0]
		if res.Type == syntax.NIdent && res.Str == inv.Name {
			// Opted out of expansion.  Wrap so outer passes do not try
			// again; with recursion globally disabled the caller is doing
			// manual expansion and gets the bare identifier back.
			if e.Recursive() {
				return []*syntax.Node{Done(res)}, nil
			}
			return []*syntax.Node{res}, nil
		}
	}
	if e.Recursive() {
		return e.rewalk(results)
	}
	return results, nil
}

func (e *Expander) expandBlock(block *syntax.Node) ([]*syntax.Node, error) {
	clauses := block.Clauses()
	body := block.Cells[1]
	for i, clause := range clauses {
		inv := e.det.matchHead(clause.Cells[0], KindBlock)
		if inv == nil {
			continue
		}
		if len(clause.Cells) > 1 {
			inv.As = clause.Cells[1]
		}
		inv.Enclosing = block
		if i == len(clauses)-1 {
			inv.Target = body
		} else {
			// Later clauses are sugar for nesting: they become the header
			// of a residual block that is the transformer's target.
			residual := syntax.Block(clauses[i+1:], body.Cells).CopySource(block)
			inv.Target = syntax.List(residual).CopySource(block)
		}
		results, err := e.expandInvocation(inv)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			return results, nil
		}
		// Non-macro clauses before the invocation survive on the block;
		// their lead expressions are still subject to expression macros.
		prefix := clauses[:i]
		for _, pc := range prefix {
			lead, err := e.expandChild(pc.Cells[0])
			if err != nil {
				return nil, err
			}
			pc.Cells[0] = lead
		}
		block.Cells[0] = syntax.List(prefix...).CopySource(block.Cells[0])
		block.Cells[1] = syntax.List(results...).CopySource(body)
		return []*syntax.Node{block}, nil
	}
	// No macro clause; ordinary structural recursion.
	for _, clause := range clauses {
		lead, err := e.expandChild(clause.Cells[0])
		if err != nil {
			return nil, err
		}
		clause.Cells[0] = lead
	}
	cells, err := e.expandSeq(body.Cells)
	if err != nil {
		return nil, err
	}
	body.Cells = cells
	return []*syntax.Node{block}, nil
}

func (e *Expander) expandDef(def *syntax.Node) ([]*syntax.Node, error) {
	annotations := def.Annotations()
	// Only the innermost (last) recognized macro annotation expands per
	// pass; outer macro annotations still attached to the definition run on
	// later walks of the produced tree, and may inspect or edit the
	// remaining annotation list before they do.
	for j := len(annotations) - 1; j >= 0; j-- {
		inv := e.det.matchHead(annotations[j], KindDecorator)
		if inv == nil {
			continue
		}
		annNode := annotations[j]
		def.Cells[0].Cells = append(annotations[:j:j], annotations[j+1:]...)
		inv.Target = def
		inv.Enclosing = annNode
		return e.expandInvocation(inv)
	}
	for i, a := range annotations {
		out, err := e.expandChild(a)
		if err != nil {
			return nil, err
		}
		annotations[i] = out
	}
	cells, err := e.expandSeq(def.Cells[1].Cells)
	if err != nil {
		return nil, err
	}
	def.Cells[1].Cells = cells
	return []*syntax.Node{def}, nil
}

// invoke performs the transformer call for inv and normalizes the result to
// a replacement sequence, without re-walking it.
func (e *Expander) invoke(inv *Invocation) ([]*syntax.Node, error) {
	desc, ok := e.bindings.Lookup(inv.Name)
	if !ok {
		// Detection gates on the binding table, so reaching a call with an
		// unbound name is an engine bug.
		return nil, fmt.Errorf("internal error: no binding for macro %q", inv.Name)
	}
	if desc.Fn == nil {
		return nil, fmt.Errorf("internal error: binding for macro %q has no transformer", inv.Name)
	}
	args := inv.Args
	if args == nil {
		args = []*syntax.Node{}
	}
	call := &Call{
		Name:     inv.Name,
		Kind:     inv.Kind,
		Target:   inv.Target,
		Args:     args,
		As:       inv.As,
		Expander: e,
	}
	res, err := desc.Fn(call)
	if err != nil {
		// Transformer failures propagate unchanged; the engine adds no
		// retry and no suppression.
		return nil, err
	}
	switch {
	case res == nil:
		return nil, nil
	case res.Type == syntax.NList:
		return res.Cells, nil
	default:
		return []*syntax.Node{res}, nil
	}
}

// expandInvocation runs the full expansion protocol for expression, block,
// and decorator invocations: transformer call, bottom-up re-walk of the
// result, and coverage instrumentation for the statement forms.
func (e *Expander) expandInvocation(inv *Invocation) ([]*syntax.Node, error) {
	// The span closes after the re-walk so expansions of transformer output
	// nest inside the producing invocation's span.
	if e.tracer != nil {
		stop := e.tracer.Start(inv)
		defer stop()
	}
	results, err := e.invoke(inv)
	if err != nil {
		return nil, err
	}
	if inv.Kind == KindExpr {
		e.stampRoots(results, inv.Enclosing)
	}
	if e.Recursive() {
		results, err = e.rewalk(results)
		if err != nil {
			return nil, err
		}
	}
	if inv.Kind == KindBlock || inv.Kind == KindDecorator {
		// The line invoking the macro is compiled away; an injected no-op
		// statement lets statement-level coverage tools observe it.  The
		// invocation node must itself carry a location; a synthesized node
		// is skipped even when sourced code sits beneath it.
		if loc := inv.Enclosing.Source; loc != nil {
			results = append([]*syntax.Node{coverageStmt(inv.Name, loc)}, results...)
		}
	}
	return results, nil
}

// rewalk expands each result subtree with the same engine instance before
// it is spliced into the parent, so invocations produced by a transformer
// expand bottom-up relative to that transformer but before its caller sees
// the result.  Done-wrapped subtrees splice as-is.
func (e *Expander) rewalk(results []*syntax.Node) ([]*syntax.Node, error) {
	var out []*syntax.Node
	for _, r := range results {
		res, err := e.expand(r)
		if err != nil {
			return nil, err
		}
		out = append(out, res...)
	}
	return out, nil
}

// stampRoots fills missing root locations of expansion results from the
// invocation site.
func (e *Expander) stampRoots(results []*syntax.Node, site *syntax.Node) {
	loc := astutil.SourceOf(site)
	if loc == nil {
		return
	}
	for _, r := range results {
		if r.Source == nil {
			r.Source = loc
		}
	}
}

// coverageStmt builds the injected coverage-instrumentation statement: a
// constant expression statement carrying the invocation name, wrapped in a
// coverage marker and finalized with a done marker so outer passes leave it
// alone.
func coverageStmt(name string, loc *token.Location) *syntax.Node {
	lit := syntax.String(name).WithSource(loc)
	stmt := syntax.ExprStmt(lit).WithSource(loc)
	cov := syntax.Marker(TagCoverage, stmt).WithSource(loc)
	return Done(cov)
}
