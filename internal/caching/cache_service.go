package caching

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"measurebook/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	catalogPrefix  = "measurebook:catalog:"
	catalogAllKey  = catalogPrefix + "all"
	invalidateScan = 100
)

// CatalogCache is a read-through cache in front of the master catalog.
// Getters return nil with a nil error on a miss.
type CatalogCache interface {
	GetProduct(ctx context.Context, key string) (models.CatalogProduct, error)
	SetProduct(ctx context.Context, key string, product models.CatalogProduct, ttl time.Duration) error
	GetAll(ctx context.Context) ([]models.CatalogProduct, error)
	SetAll(ctx context.Context, products []models.CatalogProduct, ttl time.Duration) error
	Invalidate(ctx context.Context) error
	Ping(ctx context.Context) error
}

type redisCatalogCache struct {
	client *redis.Client
}

// NewRedisClient accepts either host:port or a redis:// / rediss:// address.
func NewRedisClient(addr, password string, db int, logger zerolog.Logger) *redis.Client {
	parsedAddr := addr
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		if hostPort := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://"); hostPort != addr {
			parsedAddr = hostPort
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Warn().Err(err).Str("addr", parsedAddr).Msg("redis ping failed on startup")
	} else {
		logger.Debug().Str("addr", parsedAddr).Msg("redis connection established")
	}
	return client
}

func NewRedisCatalogCache(client *redis.Client) CatalogCache {
	return &redisCatalogCache{client: client}
}

func (r *redisCatalogCache) GetProduct(ctx context.Context, key string) (models.CatalogProduct, error) {
	data, err := r.client.Get(ctx, catalogPrefix+"item:"+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var product models.CatalogProduct
	if err := decodeNumbers(data, &product); err != nil {
		return nil, err
	}
	return product, nil
}

func (r *redisCatalogCache) SetProduct(ctx context.Context, key string, product models.CatalogProduct, ttl time.Duration) error {
	data, err := json.Marshal(product)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, catalogPrefix+"item:"+key, data, ttl).Err()
}

func (r *redisCatalogCache) GetAll(ctx context.Context) ([]models.CatalogProduct, error) {
	data, err := r.client.Get(ctx, catalogAllKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	// An empty cached catalog decodes to a non-nil empty slice, so it is
	// still a hit.
	products := []models.CatalogProduct{}
	if err := decodeNumbers(data, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *redisCatalogCache) SetAll(ctx context.Context, products []models.CatalogProduct, ttl time.Duration) error {
	if products == nil {
		products = []models.CatalogProduct{}
	}
	data, err := json.Marshal(products)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, catalogAllKey, data, ttl).Err()
}

// Invalidate drops every catalog key. SCAN keeps it from blocking Redis on
// large keyspaces.
func (r *redisCatalogCache) Invalidate(ctx context.Context) error {
	var keys []string
	iter := r.client.Scan(ctx, 0, catalogPrefix+"*", invalidateScan).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return r.client.Del(ctx, keys...).Err()
}

func (r *redisCatalogCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func decodeNumbers(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

type noopCatalogCache struct{}

// NewNoopCatalogCache is used when Redis is not configured. Every read misses.
func NewNoopCatalogCache() CatalogCache {
	return noopCatalogCache{}
}

func (noopCatalogCache) GetProduct(context.Context, string) (models.CatalogProduct, error) {
	return nil, nil
}

func (noopCatalogCache) SetProduct(context.Context, string, models.CatalogProduct, time.Duration) error {
	return nil
}

func (noopCatalogCache) GetAll(context.Context) ([]models.CatalogProduct, error) { return nil, nil }

func (noopCatalogCache) SetAll(context.Context, []models.CatalogProduct, time.Duration) error {
	return nil
}

func (noopCatalogCache) Invalidate(context.Context) error { return nil }

func (noopCatalogCache) Ping(context.Context) error { return nil }
