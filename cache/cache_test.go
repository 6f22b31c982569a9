package cache

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()

	got, err := s.Get(ctx, "resources")
	require.NoError(t, err)
	assert.Nil(t, got, "missing key reads as nil")

	require.NoError(t, s.Set(ctx, "resources", []byte(`[{"id":"r1"}]`)))
	got, err = s.Get(ctx, "resources")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[{"id":"r1"}]`), got)

	// Set replaces the whole snapshot.
	require.NoError(t, s.Set(ctx, "resources", []byte(`[]`)))
	got, err = s.Get(ctx, "resources")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[]`), got)

	require.NoError(t, s.Delete(ctx, "resources"))
	got, err = s.Get(ctx, "resources")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLiteSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	ctx := context.Background()

	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "transactions", []byte(`[{"id":"t1"}]`)))
	require.NoError(t, s.Close())

	s2, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer s2.Close()
	got, err := s2.Get(ctx, "transactions")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[{"id":"t1"}]`), got)
}

func TestMemoryStoreIsolation(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	val := []byte(`[1,2,3]`)
	require.NoError(t, s.Set(ctx, "k", val))
	val[0] = 'x'

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[1,2,3]`), got)

	got[1] = 'y'
	again, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[1,2,3]`), again)
}
