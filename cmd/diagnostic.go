// Copyright © 2025 The Macex authors

package cmd

import (
	"errors"
	"os"

	"github.com/luthersystems/macex/diagnostic"
	"github.com/luthersystems/macex/token"
)

func newRenderer() *diagnostic.Renderer {
	return &diagnostic.Renderer{Width: widthFlag, Color: colorMode()}
}

func colorMode() diagnostic.ColorMode {
	switch colorFlag {
	case "always":
		return diagnostic.ColorAlways
	case "never":
		return diagnostic.ColorNever
	default:
		return diagnostic.ColorAuto
	}
}

// errorToDiagnostic converts an engine error to a Diagnostic for display.
func errorToDiagnostic(err error) diagnostic.Diagnostic {
	d := diagnostic.Diagnostic{
		Severity: diagnostic.SeverityError,
		Message:  err.Error(),
	}

	var lerr *token.LocationError
	if errors.As(err, &lerr) && lerr.Source != nil {
		d.Message = lerr.Err.Error()
		span := diagnostic.Span{
			File: lerr.Source.File,
			Line: lerr.Source.Line,
			Col:  lerr.Source.Col,
		}
		// Prefer physical path for reading source
		if lerr.Source.Path != "" {
			span.File = lerr.Source.Path
		}
		d.Spans = append(d.Spans, span)
	}

	return d
}

// renderError renders an error with diagnostic formatting to stderr.
func renderError(err error) {
	r := newRenderer()
	_ = r.Render(os.Stderr, errorToDiagnostic(err))
}
