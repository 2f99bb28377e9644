// Copyright © 2025 The Macex authors

package macro

import (
	"github.com/luthersystems/macex/astutil"
	"github.com/luthersystems/macex/syntax"
)

// Marker tags used by the engine itself.  Transformer families may define
// their own tags for coordination; any such private tag must be compiled
// away before expansion completes (see CheckMarkers).
const (
	// TagDone marks a subtree as the final result of some expansion.  The
	// expander never descends into a done marker; the wrapped body is
	// compiled as-is.
	TagDone = "done"

	// TagCoverage marks an injected coverage-instrumentation statement.  It
	// is the one marker kind sanctioned to survive to final output (inside
	// a done wrapper) so statement-level coverage tools can observe the
	// invocation's source line as executed.
	TagCoverage = "coverage"
)

// Done wraps body so that outer expansion passes will not re-walk it.
func Done(body *syntax.Node) *syntax.Node {
	return syntax.Marker(TagDone, body).CopySource(body)
}

// IsDone reports whether v is a done marker.
func IsDone(v *syntax.Node) bool {
	return v != nil && v.Type == syntax.NMarker && v.Str == TagDone
}

// Unwrap removes any number of marker layers from v, returning the
// underlying node.  Passes that need a marker's content (a coverage tool,
// the host compiler's final lowering) use Unwrap; structural traversal must
// recognize markers explicitly instead.
func Unwrap(v *syntax.Node) *syntax.Node {
	for v != nil && v.Type == syntax.NMarker {
		v = v.MarkerBody()
	}
	return v
}

// FindMarkers returns every marker node with the given tag in tree, in
// depth-first order.  An empty tag matches markers of any tag.  Callers use
// it as a postcondition check that their private markers were compiled
// away.
func FindMarkers(tree *syntax.Node, tag string) []*syntax.Node {
	var found []*syntax.Node
	astutil.Walk([]*syntax.Node{tree}, func(node, parent *syntax.Node, depth int) {
		if node.Type == syntax.NMarker && (tag == "" || node.Str == tag) {
			found = append(found, node)
		}
	})
	return found
}

// CheckMarkers verifies that no marker other than the sanctioned
// done/coverage pair survives in tree.  A violation indicates an authoring
// bug in some transformer, not bad input, and is reported as a
// *PostconditionError.
func CheckMarkers(tree *syntax.Node) error {
	var leftover []*syntax.Node
	for _, m := range FindMarkers(tree, "") {
		switch m.Str {
		case TagDone, TagCoverage:
		default:
			leftover = append(leftover, m)
		}
	}
	if len(leftover) > 0 {
		return &PostconditionError{Markers: leftover}
	}
	return nil
}
