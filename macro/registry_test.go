// Copyright © 2025 The Macex authors

package macro

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModule(t *testing.T) {
	m := NewModule("pkg.macros").
		Define("double", &Descriptor{}).
		Define("anchor", &Descriptor{IdentCapable: true})
	assert.Equal(t, []string{"anchor", "double"}, m.Names())
}

func TestRegistryLoadCaches(t *testing.T) {
	r := NewModuleRegistry()
	loads := 0
	r.Register("pkg.macros", func() (*Module, error) {
		loads++
		return NewModule("pkg.macros").Define("double", &Descriptor{}), nil
	})

	a, err := r.Load("pkg.macros", false)
	require.NoError(t, err)
	b, err := r.Load("pkg.macros", false)
	require.NoError(t, err)
	assert.Same(t, a, b, "cached loads share descriptor identities")
	assert.Equal(t, 1, loads)
}

func TestRegistryReload(t *testing.T) {
	r := NewModuleRegistry()
	loads := 0
	r.Register("pkg.macros", func() (*Module, error) {
		loads++
		return NewModule("pkg.macros"), nil
	})

	a, err := r.Load("pkg.macros", false)
	require.NoError(t, err)
	b, err := r.Load("pkg.macros", true)
	require.NoError(t, err)
	assert.NotSame(t, a, b)
	assert.Equal(t, 2, loads)

	// The reloaded module replaces the cache entry.
	c, err := r.Load("pkg.macros", false)
	require.NoError(t, err)
	assert.Same(t, b, c)
}

func TestRegistryRegisterDropsCache(t *testing.T) {
	r := NewModuleRegistry()
	r.RegisterModule(NewModule("pkg.macros"))
	a, err := r.Load("pkg.macros", false)
	require.NoError(t, err)

	replacement := NewModule("pkg.macros")
	r.RegisterModule(replacement)
	b, err := r.Load("pkg.macros", false)
	require.NoError(t, err)
	assert.NotSame(t, a, b)
	assert.Same(t, replacement, b)
}

func TestRegistryErrors(t *testing.T) {
	r := NewModuleRegistry()
	_, err := r.Load("missing", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no macro module registered at "missing"`)

	r.Register("broken", func() (*Module, error) {
		return nil, fmt.Errorf("collateral definition failed")
	})
	_, err = r.Load("broken", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collateral definition failed")
	assert.Contains(t, err.Error(), `"broken"`)
}

func TestRegistryFillsPath(t *testing.T) {
	r := NewModuleRegistry()
	r.Register("pkg.macros", func() (*Module, error) {
		return &Module{Bindings: map[string]*Descriptor{}}, nil
	})
	m, err := r.Load("pkg.macros", false)
	require.NoError(t, err)
	assert.Equal(t, "pkg.macros", m.Path)
}
