package caching

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"measurebook/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopCatalogCacheAlwaysMisses(t *testing.T) {
	cache := NewNoopCatalogCache()
	ctx := context.Background()

	require.NoError(t, cache.SetProduct(ctx, "1", models.CatalogProduct{"sku": "1"}, time.Minute))
	require.NoError(t, cache.SetAll(ctx, []models.CatalogProduct{{"sku": "1"}}, time.Minute))

	p, err := cache.GetProduct(ctx, "1")
	assert.NoError(t, err)
	assert.Nil(t, p)

	all, err := cache.GetAll(ctx)
	assert.NoError(t, err)
	assert.Nil(t, all)

	assert.NoError(t, cache.Invalidate(ctx))
	assert.NoError(t, cache.Ping(ctx))
}

func TestDecodeNumbersKeepsPrecision(t *testing.T) {
	var products []models.CatalogProduct
	require.NoError(t, decodeNumbers([]byte(`[{"sku": 900719925474099312, "price": 12.10}]`), &products))
	require.Len(t, products, 1)
	assert.Equal(t, json.Number("900719925474099312"), products[0]["sku"])
	assert.Equal(t, "900719925474099312", products[0].SKU())
	assert.Equal(t, json.Number("12.10"), products[0]["price"])
}
