package repositories

import (
	"context"
	"errors"

	"measurebook/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned by Get when no document has the requested key.
var ErrNotFound = errors.New("not found")

// ProjectRepository persists whole project documents. There is no
// field-level update: every write replaces the full document.
type ProjectRepository interface {
	Get(ctx context.Context, id int64) (*models.Project, error)
	Put(ctx context.Context, project *models.Project) error
	// Delete is idempotent; deleting a missing id is not an error.
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]*models.Project, error)
}

// CatalogRepository reads the master product list. It is populated by an
// external ingestion process and never written by this service.
type CatalogRepository interface {
	List(ctx context.Context) ([]models.CatalogProduct, error)
	// Get matches key against the record's id or sku.
	Get(ctx context.Context, key string) (models.CatalogProduct, error)
}

// Database is the subset of *pgxpool.Pool the Postgres repositories use, so
// tests can substitute pgxmock.
type Database interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}
