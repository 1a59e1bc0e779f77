package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quotekeeper/internal/domain"
)

func TestOpen_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "quotes.db")

	s, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, "quotes", []byte(`[{"text":"x","category":"y"}]`)))
	require.NoError(t, s.Close())

	// Second open finds the schema already migrated.
	s, err = Open(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	got, err := s.Get(ctx, "quotes")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"text":"x","category":"y"}]`, string(got))
	assert.NoError(t, s.Ping(ctx))
}

func TestInMemory(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	_, err = s.Get(ctx, "selectedCategory")
	assert.True(t, domain.IsNotFound(err))

	require.NoError(t, s.Put(ctx, "selectedCategory", nil))

	got, err := s.Get(ctx, "selectedCategory")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open(context.Background(), "")
	assert.Error(t, err)
}
