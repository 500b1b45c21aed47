package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"measurebook/internal/models"

	"github.com/jackc/pgx/v5"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS projects (
		id       BIGINT PRIMARY KEY,
		document JSONB NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS catalog_products (
		sku      TEXT PRIMARY KEY,
		id       TEXT,
		document JSONB NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS catalog_products_id ON catalog_products (id)`,
}

// EnsurePostgresSchema creates the project and catalog tables if missing.
func EnsurePostgresSchema(ctx context.Context, db Database) error {
	for _, stmt := range postgresSchema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("create postgres schema: %w", err)
		}
	}
	return nil
}

type postgresProjectRepo struct {
	db Database
}

func NewPostgresProjectRepo(db Database) ProjectRepository {
	return &postgresProjectRepo{db: db}
}

func (r *postgresProjectRepo) Get(ctx context.Context, id int64) (*models.Project, error) {
	var doc []byte
	err := r.db.QueryRow(ctx, `SELECT document FROM projects WHERE id = $1`, id).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeProject(doc)
}

func (r *postgresProjectRepo) Put(ctx context.Context, project *models.Project) error {
	doc, err := json.Marshal(project)
	if err != nil {
		return fmt.Errorf("encode project %d: %w", project.ID, err)
	}
	query := `
		INSERT INTO projects (id, document)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET document = EXCLUDED.document
	`
	_, err = r.db.Exec(ctx, query, project.ID, doc)
	return err
}

func (r *postgresProjectRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	return err
}

func (r *postgresProjectRepo) List(ctx context.Context) ([]*models.Project, error) {
	rows, err := r.db.Query(ctx, `SELECT document FROM projects ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := []*models.Project{}
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		p, err := decodeProject(doc)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}
