// Copyright © 2025 The Macex authors

// Package modspec parses and resolves macro-module specifiers.
//
// A specifier is a dotted path with optional leading dots marking a
// relative import:
//
//	pkg.macros     absolute
//	.macros        relative to the importing file's package
//	..util.macros  relative to the enclosing package
//
// One leading dot anchors resolution at the importing file's own package;
// each additional dot climbs one package level.
package modspec

import (
	"fmt"
	"strings"

	parsec "github.com/prataprc/goparsec"
)

// Spec is a parsed module specifier.
type Spec struct {
	// Dots is the number of leading dots; zero for an absolute specifier.
	Dots int

	// Parts are the dotted path segments following the leading dots.
	Parts []string
}

// IsRelative reports whether the specifier must be resolved against a
// package identity.
func (s *Spec) IsRelative() bool {
	return s.Dots > 0
}

func (s *Spec) String() string {
	return strings.Repeat(".", s.Dots) + strings.Join(s.Parts, ".")
}

func newSpecParser() parsec.Parser {
	dots := parsec.Token(`[.]+`, "DOTS")
	ident := parsec.Token(`[A-Za-z_][A-Za-z0-9_]*`, "IDENT")
	dot := parsec.Atom(".", "DOT")
	tail := parsec.Kleene(nil, parsec.And(nil, dot, ident))
	return parsec.And(nil,
		parsec.Maybe(nil, dots),
		parsec.Maybe(nil, ident),
		tail,
	)
}

// Parse parses a module specifier.
func Parse(text string) (*Spec, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("empty module specifier")
	}
	s := parsec.NewScanner([]byte(text))
	root, s := newSpecParser()(s)
	if root == nil {
		return nil, fmt.Errorf("invalid module specifier: %q", text)
	}
	_, s = s.SkipWS()
	if !s.Endof() {
		return nil, fmt.Errorf("invalid module specifier: %q", text)
	}
	spec := &Spec{}
	nodes, ok := root.([]parsec.ParsecNode)
	if !ok || len(nodes) != 3 {
		return nil, fmt.Errorf("invalid module specifier: %q", text)
	}
	if term := maybeTerminal(nodes[0]); term != nil {
		spec.Dots = len(term.GetValue())
	}
	if term := maybeTerminal(nodes[1]); term != nil {
		spec.Parts = append(spec.Parts, term.GetValue())
	}
	if rest, ok := nodes[2].([]parsec.ParsecNode); ok {
		for _, pair := range rest {
			seg, ok := pair.([]parsec.ParsecNode)
			if !ok || len(seg) != 2 {
				return nil, fmt.Errorf("invalid module specifier: %q", text)
			}
			term, ok := seg[1].(*parsec.Terminal)
			if !ok {
				return nil, fmt.Errorf("invalid module specifier: %q", text)
			}
			spec.Parts = append(spec.Parts, term.GetValue())
		}
	}
	if spec.Dots == 0 && len(spec.Parts) == 0 {
		return nil, fmt.Errorf("invalid module specifier: %q", text)
	}
	return spec, nil
}

// maybeTerminal unwraps the result of a Maybe combinator with no callback,
// which yields either a MaybeNone or a one-element node list.
func maybeTerminal(n parsec.ParsecNode) *parsec.Terminal {
	if ns, ok := n.([]parsec.ParsecNode); ok && len(ns) == 1 {
		n = ns[0]
	}
	term, _ := n.(*parsec.Terminal)
	return term
}

// Resolve parses text and resolves it to an absolute module path.  The pkg
// argument is the importing file's package identity ("" when the file has
// no enclosing package); a relative specifier with no enclosing package is
// an error.
func Resolve(text, pkg string) (string, error) {
	spec, err := Parse(text)
	if err != nil {
		return "", err
	}
	if !spec.IsRelative() {
		return strings.Join(spec.Parts, "."), nil
	}
	if pkg == "" {
		return "", fmt.Errorf("relative module specifier %q used outside any package", text)
	}
	pkgParts := strings.Split(pkg, ".")
	climb := spec.Dots - 1
	if climb >= len(pkgParts) {
		return "", fmt.Errorf("relative module specifier %q reaches beyond top-level package %q", text, pkg)
	}
	base := pkgParts[:len(pkgParts)-climb]
	parts := append(append([]string{}, base...), spec.Parts...)
	return strings.Join(parts, "."), nil
}
