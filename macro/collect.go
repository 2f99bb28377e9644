// Copyright © 2025 The Macex authors

package macro

import "github.com/luthersystems/macex/syntax"

// Sighting is one collected invocation occurrence, identified by binding
// name and syntactic form.
type Sighting struct {
	Name string
	Kind Kind
}

// Collector scans a tree for macro invocations with respect to a binding
// table, without executing anything.  It shares the expander's detector and
// reads — but never calls — the bindings, so the two can never disagree
// about what is an invocation.
//
// Collected sightings are deduplicated and kept in first-seen order.  The
// collected list being empty is the stop condition for one-step expansion
// drivers.
type Collector struct {
	det  *detector
	seen map[Sighting]bool
	ord  []Sighting
}

// NewCollector returns a collector reading bindings.  The table's
// descriptors may have nil transformer functions; only the capability flags
// are consulted.
func NewCollector(bindings *BindingTable) *Collector {
	c := &Collector{det: &detector{bindings: bindings}}
	c.Clear()
	return c
}

// Clear resets the collected set.
func (c *Collector) Clear() {
	c.seen = make(map[Sighting]bool)
	c.ord = nil
}

// Collected returns the sightings recorded so far, deduplicated, in
// first-seen order.
func (c *Collector) Collected() []Sighting {
	out := make([]Sighting, len(c.ord))
	copy(out, c.ord)
	return out
}

func (c *Collector) record(name string, kind Kind) {
	s := Sighting{Name: name, Kind: kind}
	if c.seen[s] {
		return
	}
	c.seen[s] = true
	c.ord = append(c.ord, s)
}

// Visit scans node and its descendants, recording invocation sightings.
// The tree is never mutated.
func (c *Collector) Visit(node *syntax.Node) {
	if node == nil {
		return
	}
	switch node.Type {
	case syntax.NMarker:
		if IsDone(node) {
			// Finalized; the expander will not revisit it either.
			return
		}
		c.Visit(node.MarkerBody())

	case syntax.NSubscript:
		c.visitSubscript(node)

	case syntax.NIdent:
		if inv := c.det.matchIdent(node); inv != nil {
			c.record(inv.Name, KindIdent)
		}

	case syntax.NBlock:
		for _, clause := range node.Clauses() {
			if inv := c.det.matchHead(clause.Cells[0], KindBlock); inv != nil {
				c.record(inv.Name, KindBlock)
				c.visitAll(inv.Args)
			} else {
				c.Visit(clause.Cells[0])
			}
		}
		c.visitAll(node.Body())

	case syntax.NDef:
		for _, a := range node.Annotations() {
			if inv := c.det.matchHead(a, KindDecorator); inv != nil {
				c.record(inv.Name, KindDecorator)
				c.visitAll(inv.Args)
			} else {
				c.Visit(a)
			}
		}
		c.visitAll(node.Body())

	case syntax.NImportFrom, syntax.NImport:
		// Never invocation sites.

	default:
		c.visitAll(node.Cells)
	}
}

// visitSubscript mirrors the expander's expression-form detection.  When a
// subscript is (or resembles) an invocation the base name must not be
// revisited, or it would be misread as an identifier invocation; recursion
// continues only where safe.
func (c *Collector) visitSubscript(sub *syntax.Node) {
	m, err := c.det.matchSubscript(sub)
	if err != nil {
		// A malformed parametric use; the expander will report it.  There
		// is still no invocation to record and no safe inner candidate.
		c.Visit(sub.Cells[1])
		return
	}
	if m.inv != nil {
		c.record(m.inv.Name, KindExpr)
		c.visitAll(m.inv.Args)
		c.Visit(m.inv.Target)
		return
	}
	if m.ambiguous {
		base := sub.Cells[0]
		c.Visit(base.Cells[1])
		c.Visit(sub.Cells[1])
		return
	}
	c.visitAll(sub.Cells)
}

func (c *Collector) visitAll(nodes []*syntax.Node) {
	for _, n := range nodes {
		c.Visit(n)
	}
}

// Collect enumerates the live invocations of tree with respect to
// bindings: the ordered, deduplicated list of (name, kind) sightings.
func Collect(tree *syntax.Node, bindings *BindingTable) []Sighting {
	c := NewCollector(bindings)
	c.Visit(tree)
	return c.Collected()
}
