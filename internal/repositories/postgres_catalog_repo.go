package repositories

import (
	"context"
	"errors"

	"measurebook/internal/models"

	"github.com/jackc/pgx/v5"
)

type postgresCatalogRepo struct {
	db Database
}

func NewPostgresCatalogRepo(db Database) CatalogRepository {
	return &postgresCatalogRepo{db: db}
}

func (r *postgresCatalogRepo) List(ctx context.Context) ([]models.CatalogProduct, error) {
	rows, err := r.db.Query(ctx, `SELECT document FROM catalog_products ORDER BY sku`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []models.CatalogProduct{}
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		p, err := decodeCatalogProduct(doc)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *postgresCatalogRepo) Get(ctx context.Context, key string) (models.CatalogProduct, error) {
	query := `
		SELECT document FROM catalog_products
		WHERE id = $1 OR sku = $1
		ORDER BY COALESCE(id = $1, false) DESC
		LIMIT 1
	`
	var doc []byte
	err := r.db.QueryRow(ctx, query, key).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeCatalogProduct(doc)
}
