package testhelpers

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"measurebook/internal/models"
	"measurebook/internal/repositories"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// TestDB holds the database connection for testing
type TestDB struct {
	Pool    *pgxpool.Pool
	Cleanup func()
}

// SetupTestDB connects to TEST_DATABASE_URL, creates the schema and empties
// both tables. The test is skipped when the variable is unset.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	connString := os.Getenv("TEST_DATABASE_URL")
	if connString == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := repositories.EnsurePostgresSchema(ctx, pool); err != nil {
		pool.Close()
		t.Fatalf("Failed to create schema: %v", err)
	}

	db := &TestDB{Pool: pool}
	truncate := func() {
		if _, err := pool.Exec(ctx, `TRUNCATE projects, catalog_products`); err != nil {
			t.Fatalf("Failed to truncate test tables: %v", err)
		}
	}
	truncate()
	db.Cleanup = func() {
		truncate()
		pool.Close()
	}
	return db
}

// SeedCatalog inserts catalog records the way the ingestion job stores them.
func SeedCatalog(t *testing.T, db *TestDB, products ...models.CatalogProduct) {
	t.Helper()

	for _, p := range products {
		doc, err := json.Marshal(p)
		if err != nil {
			t.Fatalf("Failed to encode catalog product: %v", err)
		}
		var id any
		if p.ID() != "" {
			id = p.ID()
		}
		_, err = db.Pool.Exec(context.Background(),
			`INSERT INTO catalog_products (sku, id, document) VALUES ($1, $2, $3)`,
			p.SKU(), id, doc)
		if err != nil {
			t.Fatalf("Failed to seed catalog product %s: %v", p.SKU(), err)
		}
	}
}

// FileStores is a file-backed repository pair rooted in a temp dir.
type FileStores struct {
	Dir      string
	Projects repositories.ProjectRepository
	Catalog  repositories.CatalogRepository
}

// SetupFileStores writes catalogJSON to products.json and returns file
// repositories over it and an empty projects.json.
func SetupFileStores(t *testing.T, catalogJSON string) *FileStores {
	t.Helper()

	dir := t.TempDir()
	catalogPath := filepath.Join(dir, "products.json")
	if catalogJSON != "" {
		if err := os.WriteFile(catalogPath, []byte(catalogJSON), 0o644); err != nil {
			t.Fatalf("Failed to write catalog fixture: %v", err)
		}
	}
	logger := zerolog.Nop()
	return &FileStores{
		Dir:      dir,
		Projects: repositories.NewFileProjectRepo(filepath.Join(dir, "projects.json"), logger),
		Catalog:  repositories.NewFileCatalogRepo(catalogPath, logger),
	}
}

// SampleProject builds a project with one space, one measurement and one
// embedded product. Ids are derived from id so fixtures never collide.
func SampleProject(id int64) *models.Project {
	qty := 2.0
	return &models.Project{
		ID:   id,
		Name: "Sample project",
		Spaces: []models.Space{{
			ID:   id*10 + 1,
			Name: "Kitchen",
			Measurements: []models.Measurement{{
				ID:       id*100 + 1,
				Name:     "North wall",
				Quantity: &qty,
				Products: []models.Product{models.NewProduct(models.NewSKU("SKU-1"), map[string]any{
					"item":  "Shelf",
					"price": json.Number("99.5"),
				})},
			}},
		}},
	}
}
