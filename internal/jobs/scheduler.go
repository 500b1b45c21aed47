package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"measurebook/internal/metrics"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
)

const catalogRefreshJob = "catalog-refresh"

// CatalogRefresher is satisfied by services.CatalogService.
type CatalogRefresher interface {
	Refresh(ctx context.Context) (int, error)
}

// Scheduler runs the background jobs. The catalog is fed by an external
// ingestion process, so the cached copy is rebuilt on an interval.
type Scheduler struct {
	scheduler gocron.Scheduler
	catalog   CatalogRefresher
	metrics   *metrics.Metrics
	logger    zerolog.Logger
	jobs      map[string]gocron.Job
	mu        sync.RWMutex
}

func NewScheduler(catalog CatalogRefresher, interval time.Duration, m *metrics.Metrics, logger zerolog.Logger) (*Scheduler, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("catalog refresh interval must be positive, got %s", interval)
	}
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	s := &Scheduler{
		scheduler: scheduler,
		catalog:   catalog,
		metrics:   m,
		logger:    logger.With().Str("component", "scheduler").Logger(),
		jobs:      make(map[string]gocron.Job),
	}

	job, err := scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(s.RefreshCatalog, context.Background()),
		gocron.WithName(catalogRefreshJob),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		_ = scheduler.Shutdown()
		return nil, fmt.Errorf("failed to create catalog refresh job: %w", err)
	}
	s.jobs[catalogRefreshJob] = job
	return s, nil
}

func (s *Scheduler) Start() {
	s.logger.Info().Int("jobs", len(s.jobs)).Msg("starting background job scheduler")
	s.scheduler.Start()
}

func (s *Scheduler) Stop() error {
	s.logger.Info().Msg("stopping background job scheduler")
	return s.scheduler.Shutdown()
}

// JobNames lists the registered jobs.
func (s *Scheduler) JobNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	return names
}

// RefreshCatalog invalidates and re-warms the catalog cache.
func (s *Scheduler) RefreshCatalog(ctx context.Context) error {
	start := time.Now()
	n, err := s.catalog.Refresh(ctx)
	s.metrics.RefreshRun(err == nil)
	if err != nil {
		s.logger.Error().Err(err).Msg("catalog refresh failed")
		return err
	}
	s.logger.Info().Int("products", n).Dur("took", time.Since(start)).Msg("catalog cache refreshed")
	return nil
}
