package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	_ "measurebook/docs"
	"measurebook/internal/caching"
	"measurebook/internal/config"
	"measurebook/internal/handlers"
	"measurebook/internal/jobs"
	"measurebook/internal/logging"
	"measurebook/internal/metrics"
	"measurebook/internal/middleware"
	"measurebook/internal/services"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stdout)

	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}

func run(cfg *config.Config, logger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStorage(ctx, cfg.Storage, logger)
	if err != nil {
		return err
	}
	defer store.close()

	objects, err := openObjectStore(ctx, cfg.ObjectStore, logger)
	if err != nil {
		return err
	}

	checks := map[string]handlers.Check{"store": store.ping}

	cache := caching.NewNoopCatalogCache()
	if cfg.Cache.RedisAddr != "" {
		client := caching.NewRedisClient(cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB, logger)
		defer client.Close()
		cache = caching.NewRedisCatalogCache(client)
		checks["redis"] = cache.Ping
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	projectSvc := services.NewProjectService(store.projects, objects, services.TimestampIDs(), cfg.ObjectStore.UploadTTL)
	catalogSvc := services.NewCatalogService(store.catalog, cache, cfg.Cache.CatalogTTL, m, logger)

	if cfg.Cache.RedisAddr != "" && cfg.Cache.RefreshInterval > 0 {
		scheduler, err := jobs.NewScheduler(catalogSvc, cfg.Cache.RefreshInterval, m, logger)
		if err != nil {
			return err
		}
		scheduler.Start()
		defer func() {
			if err := scheduler.Stop(); err != nil {
				logger.Error().Err(err).Msg("scheduler shutdown")
			}
		}()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handlers.ErrorHandler(logger)

	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.BodyLimit("1M"))
	e.Pre(echoMiddleware.RemoveTrailingSlash())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLogger(logger))
	e.Use(middleware.Metrics(m))

	versionMiddleware := middleware.NewVersionMiddleware("v1")
	e.Use(versionMiddleware.VersionHeader())

	handlers.Register(e, handlers.Routes{
		Projects: handlers.NewProjectHandlers(projectSvc),
		Catalog:  handlers.NewCatalogHandlers(catalogSvc),
		Health:   handlers.NewHealthHandlers(version, checks),
		Gatherer: prometheus.DefaultGatherer,
		Swagger:  true,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str("version", version).
			Str("addr", addr).
			Str("storage", cfg.Storage.Driver).
			Str("object_store", cfg.ObjectStore.Driver).
			Msg("measurebook server starting")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
