package repositories

import (
	"bytes"
	"context"
	"encoding/json"

	"measurebook/internal/models"

	"github.com/rs/zerolog"
)

type fileCatalogRepo struct {
	path string
	log  zerolog.Logger
}

// NewFileCatalogRepo serves the master product list from the JSON array
// written by the spreadsheet ingestion.
func NewFileCatalogRepo(path string, logger zerolog.Logger) CatalogRepository {
	return &fileCatalogRepo{
		path: path,
		log:  logger.With().Str("repo", "file_catalog").Str("path", path).Logger(),
	}
}

func (r *fileCatalogRepo) readAll() []models.CatalogProduct {
	var products []models.CatalogProduct
	_, err := readJSONFile(r.path, func(data []byte) error {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		return dec.Decode(&products)
	})
	if err != nil {
		r.log.Error().Err(err).Msg("read error, using empty catalog")
		return []models.CatalogProduct{}
	}
	if products == nil {
		products = []models.CatalogProduct{}
	}
	return products
}

func (r *fileCatalogRepo) List(_ context.Context) ([]models.CatalogProduct, error) {
	return r.readAll(), nil
}

func (r *fileCatalogRepo) Get(_ context.Context, key string) (models.CatalogProduct, error) {
	for _, p := range r.readAll() {
		if p.Matches(key) {
			return p, nil
		}
	}
	return nil, ErrNotFound
}
