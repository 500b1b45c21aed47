package repositories

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"measurebook/internal/models"
)

type sqliteCatalogRepo struct {
	db *sql.DB
}

func NewSQLiteCatalogRepo(db *sql.DB) CatalogRepository {
	return &sqliteCatalogRepo{db: db}
}

func (r *sqliteCatalogRepo) List(ctx context.Context) ([]models.CatalogProduct, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT document FROM catalog_products ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []models.CatalogProduct{}
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		p, err := decodeCatalogProduct([]byte(doc))
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *sqliteCatalogRepo) Get(ctx context.Context, key string) (models.CatalogProduct, error) {
	var doc string
	err := r.db.QueryRowContext(ctx,
		`SELECT document FROM catalog_products WHERE id = ? OR sku = ? ORDER BY id = ? DESC LIMIT 1`,
		key, key, key,
	).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeCatalogProduct([]byte(doc))
}

func decodeCatalogProduct(doc []byte) (models.CatalogProduct, error) {
	var p models.CatalogProduct
	dec := json.NewDecoder(bytes.NewReader(doc))
	dec.UseNumber()
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("decode catalog product: %w", err)
	}
	return p, nil
}
