// Copyright © 2025 The Macex authors

package tracer

import (
	"context"

	"github.com/luthersystems/macex/astutil"
	"github.com/luthersystems/macex/macro"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	// ContextOpenTelemetryTracerKey looks up a parent tracer name from a
	// context key.
	ContextOpenTelemetryTracerKey = "otelParentTracer"
)

var _ macro.Tracer = &otelTracer{}

type otelTracer struct {
	config
	currentContext context.Context
	currentSpan    trace.Span
}

// NewOpenTelemetry returns a tracer emitting one OpenTelemetry span per
// transformer call under parentContext.
func NewOpenTelemetry(parentContext context.Context, opts ...Option) macro.Tracer {
	if parentContext == nil {
		parentContext = context.Background()
	}
	t := &otelTracer{currentContext: parentContext}
	t.config.applyConfigs(opts...)
	return t
}

func contextTracer(ctx context.Context) trace.Tracer {
	tracerName, ok := ctx.Value(ContextOpenTelemetryTracerKey).(string)
	if !ok {
		tracerName = "macex"
	}
	return otel.GetTracerProvider().Tracer(tracerName)
}

func (t *otelTracer) Start(inv *macro.Invocation) func() {
	if t.skipTrace(inv) {
		return nop
	}
	oldContext := t.currentContext
	t.currentContext, t.currentSpan = contextTracer(t.currentContext).Start(t.currentContext, t.spanName(inv))
	t.addCodeAttributes(inv)
	return func() {
		t.currentSpan.End()
		// And pop the current context back
		t.currentContext = oldContext
		t.currentSpan = trace.SpanFromContext(t.currentContext)
	}
}

func (t *otelTracer) addCodeAttributes(inv *macro.Invocation) {
	attrs := []attribute.KeyValue{
		semconv.CodeFunction(inv.Name),
		attribute.String("macro.kind", inv.Kind.String()),
	}
	if loc := astutil.SourceOf(inv.Enclosing); loc != nil {
		attrs = append(attrs,
			semconv.CodeColumn(loc.Col),
			semconv.CodeFilepath(loc.File),
			semconv.CodeLineNumber(loc.Line),
		)
	}
	t.currentSpan.SetAttributes(attrs...)
}
