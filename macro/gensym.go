// Copyright © 2025 The Macex authors

package macro

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/luthersystems/macex/syntax"
)

// Gensym returns a fresh identifier node guaranteed not to collide with any
// name appearing in user source.  Transformers use it for hygienic helper
// bindings in the trees they synthesize.
func Gensym(prefix string) *syntax.Node {
	if prefix == "" {
		prefix = "gensym"
	}
	id := uuid.New()
	return syntax.Ident(fmt.Sprintf("%s_%x", prefix, id[:6]))
}
