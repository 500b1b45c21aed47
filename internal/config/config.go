package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverDynamoDB = "dynamodb"

	ObjectStoreNone  = "none"
	ObjectStoreS3    = "s3"
	ObjectStoreMinio = "minio"
)

// Config is the complete service configuration.
type Config struct {
	Server      ServerConfig      `toml:"server"`
	Storage     StorageConfig     `toml:"storage"`
	ObjectStore ObjectStoreConfig `toml:"object_store"`
	Cache       CacheConfig       `toml:"cache"`
	Log         LogConfig         `toml:"log"`
}

type ServerConfig struct {
	Port int `toml:"port"`
}

// StorageConfig selects the project and catalog backend.
type StorageConfig struct {
	Driver        string `toml:"driver"`
	DataFile      string `toml:"data_file"`
	CatalogFile   string `toml:"catalog_file"`
	SQLitePath    string `toml:"sqlite_path"`
	DatabaseURL   string `toml:"database_url"`
	AWSRegion     string `toml:"aws_region"`
	ProjectsTable string `toml:"projects_table"`
	ProductsTable string `toml:"products_table"`
	Endpoint      string `toml:"endpoint"` // optional DynamoDB endpoint, e.g. dynamodb-local
}

type ObjectStoreConfig struct {
	Driver    string        `toml:"driver"`
	Bucket    string        `toml:"bucket"`
	Region    string        `toml:"region"`
	Endpoint  string        `toml:"endpoint"`
	AccessKey string        `toml:"access_key"`
	SecretKey string        `toml:"secret_key"`
	UseSSL    bool          `toml:"use_ssl"`
	UploadTTL time.Duration `toml:"upload_ttl"`
}

// CacheConfig configures the Redis read-through cache for the catalog.
// An empty RedisAddr disables caching.
type CacheConfig struct {
	RedisAddr       string        `toml:"redis_addr"`
	RedisPassword   string        `toml:"redis_password"`
	RedisDB         int           `toml:"redis_db"`
	CatalogTTL      time.Duration `toml:"catalog_ttl"`
	RefreshInterval time.Duration `toml:"refresh_interval"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Default returns the configuration used when nothing is set: a file store
// under ./data and no object store.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: 3000},
		Storage: StorageConfig{
			Driver:        DriverFile,
			DataFile:      "./data/projects.json",
			CatalogFile:   "./data/products.json",
			SQLitePath:    "./data/measurebook.db",
			AWSRegion:     "us-east-2",
			ProjectsTable: "Projects",
			ProductsTable: "Products",
		},
		ObjectStore: ObjectStoreConfig{
			Driver:    ObjectStoreNone,
			Region:    "us-east-2",
			UploadTTL: 5 * time.Minute,
		},
		Cache: CacheConfig{
			CatalogTTL:      15 * time.Minute,
			RefreshInterval: 30 * time.Minute,
		},
		Log: LogConfig{Level: "info", Format: "json"},
	}
}

// Load builds the configuration from defaults, then the TOML file named by
// MEASUREBOOK_CONFIG (if any), then environment variables.
func Load() (*Config, error) {
	cfg := Default()
	if path := os.Getenv("MEASUREBOOK_CONFIG"); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile overlays the TOML file at path onto cfg.
func (c *Config) LoadFile(path string) error {
	if _, err := toml.DecodeFile(path, c); err != nil {
		return fmt.Errorf("failed to load config file: %w", err)
	}
	return nil
}

// ApplyEnv overlays environment variables read through getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	str := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	str("STORAGE_DRIVER", &c.Storage.Driver)
	str("DATA_FILE", &c.Storage.DataFile)
	str("CATALOG_FILE", &c.Storage.CatalogFile)
	str("SQLITE_PATH", &c.Storage.SQLitePath)
	str("DATABASE_URL", &c.Storage.DatabaseURL)
	str("AWS_REGION", &c.Storage.AWSRegion)
	str("PROJECTS_TABLE", &c.Storage.ProjectsTable)
	str("PRODUCTS_TABLE", &c.Storage.ProductsTable)
	str("DYNAMODB_ENDPOINT", &c.Storage.Endpoint)

	str("OBJECT_STORE_DRIVER", &c.ObjectStore.Driver)
	str("S3_IMAGES_BUCKET", &c.ObjectStore.Bucket)
	str("AWS_REGION", &c.ObjectStore.Region)
	str("MINIO_ENDPOINT", &c.ObjectStore.Endpoint)
	str("MINIO_ACCESS_KEY", &c.ObjectStore.AccessKey)
	str("MINIO_SECRET_KEY", &c.ObjectStore.SecretKey)

	str("REDIS_ADDR", &c.Cache.RedisAddr)
	str("REDIS_PASSWORD", &c.Cache.RedisPassword)

	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)

	if v := getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		c.Server.Port = port
	}
	if v := getenv("REDIS_DB"); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid REDIS_DB %q: %w", v, err)
		}
		c.Cache.RedisDB = db
	}
	if v := getenv("MINIO_USE_SSL"); v != "" {
		c.ObjectStore.UseSSL = strings.EqualFold(v, "true")
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"UPLOAD_URL_TTL", &c.ObjectStore.UploadTTL},
		{"CATALOG_CACHE_TTL", &c.Cache.CatalogTTL},
		{"CATALOG_REFRESH_INTERVAL", &c.Cache.RefreshInterval},
	}
	for _, d := range durations {
		v := getenv(d.key)
		if v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", d.key, v, err)
		}
		*d.dst = parsed
	}
	return nil
}

// Validate rejects unknown drivers and missing driver settings.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", c.Server.Port)
	}

	switch c.Storage.Driver {
	case DriverFile:
		if c.Storage.DataFile == "" {
			return fmt.Errorf("storage.data_file is required for the file driver")
		}
	case DriverSQLite:
		if c.Storage.SQLitePath == "" {
			return fmt.Errorf("storage.sqlite_path is required for the sqlite driver")
		}
	case DriverPostgres:
		if c.Storage.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres driver")
		}
	case DriverDynamoDB:
		if c.Storage.ProjectsTable == "" || c.Storage.ProductsTable == "" {
			return fmt.Errorf("projects and products tables are required for the dynamodb driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	switch c.ObjectStore.Driver {
	case ObjectStoreNone:
	case ObjectStoreS3, ObjectStoreMinio:
		if c.ObjectStore.Bucket == "" {
			return fmt.Errorf("object_store.bucket is required for the %s driver", c.ObjectStore.Driver)
		}
		if c.ObjectStore.Driver == ObjectStoreMinio && c.ObjectStore.Endpoint == "" {
			return fmt.Errorf("MINIO_ENDPOINT is required for the minio driver")
		}
	default:
		return fmt.Errorf("unknown object store driver %q", c.ObjectStore.Driver)
	}

	if c.ObjectStore.UploadTTL <= 0 {
		return fmt.Errorf("object_store.upload_ttl must be positive")
	}
	return nil
}
