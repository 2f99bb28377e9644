// Copyright © 2025 The Macex authors

// Package token defines source locations shared between the host front end
// and the macro expansion engine.  The engine never scans source text itself;
// locations are attached to syntax nodes by whatever parser produced them and
// are carried through expansion for diagnostics.
package token

import "fmt"

// Location identifies a position in a source stream.
type Location struct {
	File string // a name representing the source stream
	Path string // a physical location which may differ from File
	Pos  int
	Line int // line number (starting at 1 when tracked)
	Col  int // line column number (starting at 1 when tracked)
}

func (loc *Location) String() string {
	switch {
	case loc.Pos < 0:
		return loc.File
	case loc.Line == 0:
		return fmt.Sprintf("%s[%d]", loc.File, loc.Pos)
	case loc.Col == 0:
		return fmt.Sprintf("%s:%d", loc.File, loc.Line)
	default:
		return fmt.Sprintf("%s:%d:%d", loc.File, loc.Line, loc.Col)
	}
}

// LocationError decorates an error with the source location it concerns.
type LocationError struct {
	Err    error
	Source *Location
}

func (err *LocationError) Error() string {
	if err.Source == nil {
		return err.Err.Error()
	}
	return fmt.Sprintf("%s: %s", err.Source, err.Err)
}

func (err *LocationError) Unwrap() error {
	return err.Err
}
