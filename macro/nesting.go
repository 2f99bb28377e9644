// Copyright © 2025 The Macex authors

package macro

import "fmt"

// NestingLevelTracker tracks the nesting level in a set of co-operating,
// related macros.  It is a reusable primitive offered to transformer
// authors; the engine holds no instance of its own.
//
// A typical use is an identifier macro that is only syntactically valid
// inside the invocation of another macro: the outer macro brackets its
// expansion with ChangedBy(1), and the identifier macro rejects any use at
// level zero as a compile-time error.
//
// The scoped mutators return restore functions meant for defer:
//
//	defer tracker.ChangedBy(1)()
//
// which keeps the stack balanced even when the bracketed section exits
// early through a panic or error return.
type NestingLevelTracker struct {
	stack []int
}

// Value returns the current level.  The zero tracker starts at level 0.
func (t *NestingLevelTracker) Value() int {
	if len(t.stack) == 0 {
		return 0
	}
	return t.stack[len(t.stack)-1]
}

// SetTo runs the section of code until the returned restore function is
// called with the level set to value.  SetTo panics on a negative value;
// misuse is a programming error in the calling transformer, not input
// dependent.
func (t *NestingLevelTracker) SetTo(value int) func() {
	if value < 0 {
		panic(fmt.Sprintf("nesting level must be >= 0, got %d", value))
	}
	t.stack = append(t.stack, value)
	return func() {
		if len(t.stack) == 0 {
			panic("unbalanced nesting level scope")
		}
		t.stack = t.stack[:len(t.stack)-1]
	}
}

// ChangedBy runs the section of code until the returned restore function is
// called with the level incremented by delta.
func (t *NestingLevelTracker) ChangedBy(delta int) func() {
	return t.SetTo(t.Value() + delta)
}
