// Copyright © 2025 The Macex authors

package macro

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNestingLevelTracker(t *testing.T) {
	tracker := &NestingLevelTracker{}
	assert.Equal(t, 0, tracker.Value())

	restore := tracker.SetTo(2)
	assert.Equal(t, 2, tracker.Value())

	inner := tracker.ChangedBy(1)
	assert.Equal(t, 3, tracker.Value())
	inner()
	assert.Equal(t, 2, tracker.Value())

	restore()
	assert.Equal(t, 0, tracker.Value())
}

func TestNestingLevelTrackerPanicRestores(t *testing.T) {
	tracker := &NestingLevelTracker{}
	func() {
		defer func() {
			assert.NotNil(t, recover())
		}()
		defer tracker.ChangedBy(1)()
		panic("transformer failure")
	}()
	assert.Equal(t, 0, tracker.Value(), "deferred restore keeps the stack balanced")
}

func TestNestingLevelTrackerUnbalanced(t *testing.T) {
	tracker := &NestingLevelTracker{}
	restore := tracker.SetTo(1)
	restore()
	assert.PanicsWithValue(t, "unbalanced nesting level scope", func() { restore() })
	assert.Equal(t, 0, tracker.Value())
}

func TestNestingLevelTrackerNegative(t *testing.T) {
	tracker := &NestingLevelTracker{}
	assert.Panics(t, func() { tracker.SetTo(-1) })
	assert.Panics(t, func() { tracker.ChangedBy(-1) })
	assert.Equal(t, 0, tracker.Value())
}
