// Copyright © 2025 The Macex authors

package tracer

import (
	"context"

	"github.com/luthersystems/macex/astutil"
	"github.com/luthersystems/macex/macro"
	"go.opencensus.io/trace"
)

var _ macro.Tracer = &ocTracer{}

type ocTracer struct {
	config
	currentContext context.Context
	currentSpan    *trace.Span
	contexts       []context.Context
}

// NewOpenCensus returns a tracer emitting one OpenCensus span per
// transformer call under parentContext.
func NewOpenCensus(parentContext context.Context, opts ...Option) macro.Tracer {
	if parentContext == nil {
		parentContext = context.Background()
	}
	t := &ocTracer{currentContext: parentContext}
	t.config.applyConfigs(opts...)
	return t
}

func (t *ocTracer) Start(inv *macro.Invocation) func() {
	if t.skipTrace(inv) {
		return nop
	}
	t.contexts = append(t.contexts, t.currentContext)
	t.currentContext, t.currentSpan = trace.StartSpan(t.currentContext, t.spanName(inv))
	return func() {
		if loc := astutil.SourceOf(inv.Enclosing); loc != nil {
			t.currentSpan.Annotate([]trace.Attribute{
				trace.StringAttribute("file", loc.File),
				trace.Int64Attribute("line", int64(loc.Line)),
			}, "source")
		}
		t.currentSpan.End()
		// And pop the current context back
		last := len(t.contexts) - 1
		t.currentContext = t.contexts[last]
		t.contexts = t.contexts[:last]
		t.currentSpan = trace.FromContext(t.currentContext)
	}
}
