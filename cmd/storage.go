package main

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/rs/zerolog"

	"measurebook/internal/config"
	"measurebook/internal/repositories"
	"measurebook/internal/services"
	"measurebook/pkg/database"
)

// storage bundles the repositories for the configured driver with a
// readiness probe and a release func.
type storage struct {
	projects repositories.ProjectRepository
	catalog  repositories.CatalogRepository
	ping     func(ctx context.Context) error
	close    func()
}

func openStorage(ctx context.Context, cfg config.StorageConfig, logger zerolog.Logger) (*storage, error) {
	switch cfg.Driver {
	case config.DriverFile:
		projects := repositories.NewFileProjectRepo(cfg.DataFile, logger)
		return &storage{
			projects: projects,
			catalog:  repositories.NewFileCatalogRepo(cfg.CatalogFile, logger),
			ping: func(ctx context.Context) error {
				_, err := projects.List(ctx)
				return err
			},
			close: func() {},
		}, nil

	case config.DriverSQLite:
		db, err := database.OpenSQLite(ctx, cfg.SQLitePath, logger)
		if err != nil {
			return nil, err
		}
		if err := repositories.EnsureSQLiteSchema(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		return &storage{
			projects: repositories.NewSQLiteProjectRepo(db),
			catalog:  repositories.NewSQLiteCatalogRepo(db),
			ping:     db.PingContext,
			close:    func() { db.Close() },
		}, nil

	case config.DriverPostgres:
		pool, err := database.NewPool(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return nil, err
		}
		if err := repositories.EnsurePostgresSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		return &storage{
			projects: repositories.NewPostgresProjectRepo(pool),
			catalog:  repositories.NewPostgresCatalogRepo(pool),
			ping:     pool.Ping,
			close:    pool.Close,
		}, nil

	case config.DriverDynamoDB:
		client, err := database.NewDynamoClient(ctx, cfg.AWSRegion, cfg.Endpoint)
		if err != nil {
			return nil, err
		}
		return &storage{
			projects: repositories.NewDynamoProjectRepo(client, cfg.ProjectsTable),
			catalog:  repositories.NewDynamoCatalogRepo(client, cfg.ProductsTable),
			ping: func(ctx context.Context) error {
				_, err := client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(cfg.ProjectsTable)})
				return err
			},
			close: func() {},
		}, nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}

type bucketEnsurer interface {
	EnsureBucket(ctx context.Context) error
}

func openObjectStore(ctx context.Context, cfg config.ObjectStoreConfig, logger zerolog.Logger) (services.ObjectStore, error) {
	switch cfg.Driver {
	case config.ObjectStoreNone:
		logger.Warn().Msg("no object store configured, image uploads are disabled")
		return services.NewDisabledObjectStore(), nil

	case config.ObjectStoreS3:
		return services.NewS3ObjectStore(ctx, services.S3Config{
			Bucket:    cfg.Bucket,
			Region:    cfg.Region,
			Endpoint:  cfg.Endpoint,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
		})

	case config.ObjectStoreMinio:
		store, err := services.NewMinioObjectStore(services.MinioConfig{
			Endpoint:  cfg.Endpoint,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			UseSSL:    cfg.UseSSL,
			Bucket:    cfg.Bucket,
			Region:    cfg.Region,
		})
		if err != nil {
			return nil, fmt.Errorf("minio: %w", err)
		}
		if b, ok := store.(bucketEnsurer); ok {
			if err := b.EnsureBucket(ctx); err != nil {
				logger.Warn().Err(err).Str("bucket", cfg.Bucket).Msg("could not ensure bucket")
			}
		}
		return store, nil
	}
	return nil, fmt.Errorf("unknown object store driver %q", cfg.Driver)
}
