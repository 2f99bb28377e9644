// Copyright © 2025 The Macex authors

package macro

import (
	"strings"
	"testing"

	"github.com/luthersystems/macex/syntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGensym(t *testing.T) {
	a := Gensym("tmp")
	b := Gensym("tmp")
	require.Equal(t, syntax.NIdent, a.Type)
	assert.True(t, strings.HasPrefix(a.Str, "tmp_"))
	assert.NotEqual(t, a.Str, b.Str)

	c := Gensym("")
	assert.True(t, strings.HasPrefix(c.Str, "gensym_"))
}
