package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"measurebook/internal/models"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS projects (
		id       INTEGER PRIMARY KEY,
		document TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS catalog_products (
		sku      TEXT PRIMARY KEY,
		id       TEXT,
		document TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS catalog_products_id ON catalog_products (id)`,
}

// EnsureSQLiteSchema creates the project and catalog tables if missing.
func EnsureSQLiteSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range sqliteSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create sqlite schema: %w", err)
		}
	}
	return nil
}

// sqliteProjectRepo stores one row per project with the document as JSON text.
type sqliteProjectRepo struct {
	db *sql.DB
}

func NewSQLiteProjectRepo(db *sql.DB) ProjectRepository {
	return &sqliteProjectRepo{db: db}
}

func (r *sqliteProjectRepo) Get(ctx context.Context, id int64) (*models.Project, error) {
	var doc string
	err := r.db.QueryRowContext(ctx, `SELECT document FROM projects WHERE id = ?`, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeProject([]byte(doc))
}

func (r *sqliteProjectRepo) Put(ctx context.Context, project *models.Project) error {
	doc, err := json.Marshal(project)
	if err != nil {
		return fmt.Errorf("encode project %d: %w", project.ID, err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO projects (id, document) VALUES (?, ?)
		ON CONFLICT (id) DO UPDATE SET document = excluded.document
	`, project.ID, string(doc))
	return err
}

func (r *sqliteProjectRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	return err
}

func (r *sqliteProjectRepo) List(ctx context.Context) ([]*models.Project, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT document FROM projects ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := []*models.Project{}
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		p, err := decodeProject([]byte(doc))
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func decodeProject(doc []byte) (*models.Project, error) {
	var p models.Project
	if err := json.Unmarshal(doc, &p); err != nil {
		return nil, fmt.Errorf("decode project: %w", err)
	}
	p.Normalize()
	return &p, nil
}
