// Copyright © 2025 The Macex authors

package macro

import (
	"bytes"
	"fmt"

	"github.com/luthersystems/macex/astutil"
	"github.com/luthersystems/macex/syntax"
	"github.com/luthersystems/macex/token"
)

// PostconditionError reports markers of disallowed tags left in a tree
// after a complete top-level expansion.  It indicates an authoring bug in
// some transformer rather than bad input, and is therefore reported
// distinctly from user-facing syntax errors.
type PostconditionError struct {
	Markers []*syntax.Node
}

func (e *PostconditionError) Error() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "expansion postcondition violated: %d marker(s) remain in tree:", len(e.Markers))
	for _, m := range e.Markers {
		fmt.Fprintf(&buf, " %s", m.Str)
		if loc := astutil.SourceOf(m); loc != nil {
			fmt.Fprintf(&buf, " (%s)", loc)
		}
	}
	return buf.String()
}

// UsageError reports a malformed macro invocation: the macro exists but the
// surrounding syntax cannot be given a meaning.  It is a compile-time
// failure for the enclosing expansion.
type UsageError struct {
	Name string
	Kind Kind
	Msg  string
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("%s macro %s: %s", e.Kind, e.Name, e.Msg)
}

// locError decorates err with a location and an approximate rendering of
// the offending node.  The rendering is best-effort; exact source text is
// unavailable when the node was synthesized by a transformer.
func locError(err error, node *syntax.Node) error {
	loc := astutil.SourceOf(node)
	if loc == nil {
		return fmt.Errorf("%w (in synthesized code near: %s)", err, approxText(node))
	}
	return &token.LocationError{Err: err, Source: loc}
}

func approxText(node *syntax.Node) string {
	const maxLen = 60
	s := node.String()
	if len(s) > maxLen {
		s = s[:maxLen-3] + "..."
	}
	return s
}
