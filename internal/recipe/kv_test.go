package recipe

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileKV(t *testing.T) {
	ctx := context.Background()
	kv, err := NewFileKV(t.TempDir())
	require.NoError(t, err)

	t.Run("missing key", func(t *testing.T) {
		_, ok, err := kv.Get(ctx, "savedRecipes")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("set then get", func(t *testing.T) {
		require.NoError(t, kv.Set(ctx, "savedRecipes", `[{"recipeName":"Toast"}]`))
		value, ok, err := kv.Get(ctx, "savedRecipes")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, `[{"recipeName":"Toast"}]`, value)
	})

	t.Run("overwrite", func(t *testing.T) {
		require.NoError(t, kv.Set(ctx, "savedRecipes", "[]"))
		value, ok, err := kv.Get(ctx, "savedRecipes")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "[]", value)
	})

	t.Run("rejects path-like keys", func(t *testing.T) {
		err := kv.Set(ctx, "../escape", "x")
		assert.Error(t, err)
		_, _, err = kv.Get(ctx, "nested/slot")
		assert.Error(t, err)
	})
}
