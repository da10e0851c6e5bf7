package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestMirror(t *testing.T) *SQLMirror {
	t.Helper()
	mirror, err := OpenSQLMirror(context.Background(), "sqlite", filepath.Join(t.TempDir(), "catalogue.db"))
	require.NoError(t, err)
	t.Cleanup(func() { mirror.Close() })
	return mirror
}

func TestSQLMirror_Replace(t *testing.T) {
	mirror := openTestMirror(t)
	ctx := context.Background()

	require.NoError(t, mirror.Replace(ctx, "run-1", sampleItems()))

	n, err := mirror.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var season, brand *string
	var vegan bool
	err = mirror.db.QueryRowContext(ctx,
		"SELECT season, brand_owner, is_vegan FROM grocery_items WHERE id = ?", "1").Scan(&season, &brand, &vegan)
	require.NoError(t, err)
	require.NotNil(t, season)
	assert.Equal(t, "summer", *season)
	assert.Nil(t, brand)
	assert.True(t, vegan)
}

func TestSQLMirror_ReplaceOverwrites(t *testing.T) {
	mirror := openTestMirror(t)
	ctx := context.Background()

	require.NoError(t, mirror.Replace(ctx, "run-1", sampleItems()))
	require.NoError(t, mirror.Replace(ctx, "run-2", sampleItems()[1:]))

	n, err := mirror.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var runs int
	require.NoError(t, mirror.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM import_runs").Scan(&runs))
	assert.Equal(t, 2, runs)
}

func TestSQLMirror_DuplicateRunRollsBack(t *testing.T) {
	mirror := openTestMirror(t)
	ctx := context.Background()

	require.NoError(t, mirror.Replace(ctx, "run-1", sampleItems()))
	assert.Error(t, mirror.Replace(ctx, "run-1", sampleItems()[:1]))

	n, err := mirror.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestOpenSQLMirror_UnsupportedDriver(t *testing.T) {
	_, err := OpenSQLMirror(context.Background(), "oracle", "dsn")
	assert.Error(t, err)
}

func TestDialectPlaceholders(t *testing.T) {
	assert.Equal(t, "?", dialects["sqlite"].placeholder(3))
	assert.Equal(t, "$3", dialects["postgres"].placeholder(3))
}
