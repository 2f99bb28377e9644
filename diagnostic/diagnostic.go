// Copyright © 2025 The Macex authors

// Package diagnostic provides annotated error and warning rendering for
// macro expansion output.  It is intentionally independent of the macro/
// package so that it can be used by any CLI command without creating import
// cycles.
package diagnostic

import "github.com/luthersystems/macex/token"

// Severity indicates the severity level of a diagnostic.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityNote
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityNote:
		return "note"
	default:
		return "unknown"
	}
}

// Span identifies a region of source code to highlight in the diagnostic.
type Span struct {
	File   string // path for reading source; display name if unreadable
	Line   int    // 1-based line number
	Col    int    // 1-based start column
	EndCol int    // 1-based end column; 0 highlights the token at Col
	Label  string // text shown with the location
}

// Diagnostic represents a single error, warning, or note with optional
// source annotations and trailing notes.
type Diagnostic struct {
	Severity Severity
	Message  string
	Spans    []Span
	Notes    []string // "= note:" lines (approximate source renderings, etc.)
}

// New constructs a diagnostic anchored at loc.  A nil location produces a
// diagnostic with no span; label annotates the span when present.
func New(sev Severity, msg string, loc *token.Location, label string) Diagnostic {
	d := Diagnostic{Severity: sev, Message: msg}
	if loc != nil {
		d.Spans = append(d.Spans, Span{
			File:  loc.File,
			Line:  loc.Line,
			Col:   loc.Col,
			Label: label,
		})
	}
	return d
}
