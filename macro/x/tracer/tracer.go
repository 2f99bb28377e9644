// Copyright © 2025 The Macex authors

// Package tracer provides macro.Tracer implementations that annotate
// macro expansions as spans in distributed tracing systems.  One span is
// opened per invocation and closed once its expansion is complete, so
// invocations produced by a transformer appear as child spans of the
// invocation that produced them.
package tracer

import (
	"github.com/luthersystems/macex/macro"
)

// SkipFilter reports whether an invocation should be excluded from tracing.
type SkipFilter func(inv *macro.Invocation) bool

// Labeler produces the span name for an invocation.  Returning "" falls
// back to the default label.
type Labeler func(inv *macro.Invocation) string

type config struct {
	skipFilter SkipFilter
	labeler    Labeler
}

// Option configures a tracer.
type Option func(*config)

// WithSkipFilter sets the filter deciding which invocations get spans.
func WithSkipFilter(skipFilter SkipFilter) Option {
	return func(c *config) {
		c.skipFilter = skipFilter
	}
}

// WithLabeler sets a custom span labeler.
func WithLabeler(labeler Labeler) Option {
	return func(c *config) {
		c.labeler = labeler
	}
}

func (c *config) applyConfigs(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
}

func (c *config) skipTrace(inv *macro.Invocation) bool {
	return c.skipFilter != nil && c.skipFilter(inv)
}

func (c *config) spanName(inv *macro.Invocation) string {
	if c.labeler != nil {
		if label := c.labeler(inv); label != "" {
			return label
		}
	}
	return inv.Name
}

func nop() {}
