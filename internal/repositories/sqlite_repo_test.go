package repositories

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func openTestSQLite(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "measurebook.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, EnsureSQLiteSchema(context.Background(), db))
	return db
}

func TestSQLiteProjectRepo(t *testing.T) {
	db := openTestSQLite(t)
	repo := NewSQLiteProjectRepo(db)
	ctx := context.Background()

	_, err := repo.Get(ctx, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	p := sampleProject(1)
	require.NoError(t, repo.Put(ctx, p))
	got, err := repo.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, p, got)

	p.Name = "Updated"
	require.NoError(t, repo.Put(ctx, p))
	require.NoError(t, repo.Put(ctx, sampleProject(50)))

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Updated", all[0].Name)

	require.NoError(t, repo.Delete(ctx, 1))
	require.NoError(t, repo.Delete(ctx, 1))
	all, err = repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, int64(50), all[0].ID)
}

func TestSQLiteCatalogRepo(t *testing.T) {
	db := openTestSQLite(t)
	ctx := context.Background()

	_, err := db.Exec(`INSERT INTO catalog_products (sku, id, document) VALUES
		('10045', '1', '{"id": 1, "sku": 10045, "item": "Pendant"}'),
		('1', NULL, '{"sku": "1", "item": "Washer"}'),
		('AB-7', NULL, '{"sku": "AB-7", "item": "Sconce"}')`)
	require.NoError(t, err)

	repo := NewSQLiteCatalogRepo(db)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	// an id match wins over a sku match for the same key
	got, err := repo.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "Pendant", got["item"])

	got, err = repo.Get(ctx, "AB-7")
	require.NoError(t, err)
	assert.Equal(t, "Sconce", got["item"])

	_, err = repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
