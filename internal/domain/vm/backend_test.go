package vm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/VMConsole/internal/shared/id"
	"github.com/GriffinCanCode/VMConsole/internal/shared/types"
)

func TestLocalBackend(t *testing.T) {
	b := NewLocalBackend()
	ctx := context.Background()
	os := types.OSOption{ID: "android"}

	s1, err := b.Create(ctx, os, "https://m.google.com")
	require.NoError(t, err)
	s2, err := b.Create(ctx, os, "https://m.google.com")
	require.NoError(t, err)

	assert.NotEqual(t, s1.ID, s2.ID)
	assert.Equal(t, "android", s1.OS)
	assert.Empty(t, s1.ViewURL)

	prefix, _, ok := id.Split(s1.ID)
	assert.True(t, ok)
	assert.Equal(t, id.SessionPrefix, prefix)

	assert.NoError(t, b.Navigate(ctx, s1, "https://example.com"))
	assert.NoError(t, b.Destroy(ctx, s1))
}

func TestLocalBackendHasNoToken(t *testing.T) {
	var b Backend = NewLocalBackend()
	_, ok := b.(tokenHolder)
	assert.False(t, ok)
}
