package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"measurebook/internal/caching"
	"measurebook/internal/metrics"
	"measurebook/internal/models"
	"measurebook/internal/repositories"

	"github.com/rs/zerolog"
)

// CatalogService serves the read-only master product list.
type CatalogService interface {
	List(ctx context.Context) ([]models.CatalogProduct, error)
	Get(ctx context.Context, key string) (models.CatalogProduct, error)
	// Refresh drops the cached catalog and warms it from the repository.
	Refresh(ctx context.Context) (int, error)
}

type catalogService struct {
	repo    repositories.CatalogRepository
	cache   caching.CatalogCache
	ttl     time.Duration
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

func NewCatalogService(repo repositories.CatalogRepository, cache caching.CatalogCache, ttl time.Duration, m *metrics.Metrics, logger zerolog.Logger) CatalogService {
	if cache == nil {
		cache = caching.NewNoopCatalogCache()
	}
	return &catalogService{
		repo:    repo,
		cache:   cache,
		ttl:     ttl,
		metrics: m,
		logger:  logger.With().Str("component", "catalog").Logger(),
	}
}

func (s *catalogService) List(ctx context.Context) ([]models.CatalogProduct, error) {
	if cached, err := s.cache.GetAll(ctx); err != nil {
		// Cache errors never fail the request.
		s.metrics.CacheError()
		s.logger.Warn().Err(err).Msg("catalog cache read failed")
	} else if cached != nil {
		s.metrics.CacheHit()
		return cached, nil
	} else {
		s.metrics.CacheMiss()
	}

	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetAll(ctx, products, s.ttl); err != nil {
		s.logger.Warn().Err(err).Msg("failed to cache catalog")
	}
	return products, nil
}

func (s *catalogService) Get(ctx context.Context, key string) (models.CatalogProduct, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, ErrProductNotFound
	}

	if cached, err := s.cache.GetProduct(ctx, key); err != nil {
		s.metrics.CacheError()
		s.logger.Warn().Err(err).Str("key", key).Msg("catalog cache read failed")
	} else if cached != nil {
		s.metrics.CacheHit()
		return cached, nil
	} else {
		s.metrics.CacheMiss()
	}

	product, err := s.repo.Get(ctx, key)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetProduct(ctx, key, product, s.ttl); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to cache catalog product")
	}
	return product, nil
}

func (s *catalogService) Refresh(ctx context.Context) (int, error) {
	if err := s.cache.Invalidate(ctx); err != nil {
		return 0, fmt.Errorf("invalidate catalog cache: %w", err)
	}
	products, err := s.repo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("load catalog: %w", err)
	}
	if err := s.cache.SetAll(ctx, products, s.ttl); err != nil {
		return 0, fmt.Errorf("warm catalog cache: %w", err)
	}
	return len(products), nil
}
