package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tendant/site-console/pkg/sitecontent"
	"github.com/tendant/site-console/pkg/sitecontent/objectkey"
	"github.com/tendant/site-console/pkg/sitecontent/repo/memory"
	repopg "github.com/tendant/site-console/pkg/sitecontent/repo/postgres"
	fsstorage "github.com/tendant/site-console/pkg/sitecontent/storage/fs"
	memorystorage "github.com/tendant/site-console/pkg/sitecontent/storage/memory"
	s3storage "github.com/tendant/site-console/pkg/sitecontent/storage/s3"
	"github.com/tendant/site-console/pkg/sitecontent/urlstrategy"
)

// Upload limits.
const (
	DefaultMaxUploadBytes = 100 << 20
	DefaultMaxPDFBytes    = 10 << 20
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Port:           "8080",
		Environment:    "development",
		DatabaseType:   "memory",
		DBSchema:       "content",
		Storage:        StorageConfig{Type: "memory"},
		KeyGenerator:   "timestamp",
		MaxUploadBytes: DefaultMaxUploadBytes,
		MaxPDFBytes:    DefaultMaxPDFBytes,
		URLStrategy:    string(urlstrategy.TypeContentBased),
	}
}

// ServerConfig represents configuration for the site console server
type ServerConfig struct {
	Port        string
	Environment string // development, production, testing

	// Database configuration
	DatabaseURL    string
	DatabaseType   string // "memory", "postgres"
	DBSchema       string // Postgres schema to use (default: content)
	MigrateOnStart bool

	// Media storage configuration
	Storage      StorageConfig
	KeyGenerator string // "timestamp", "uuid"

	// Upload limits and public addressing
	MaxUploadBytes int64
	MaxPDFBytes    int64
	PublicBaseURL  string
	URLStrategy    string // "content-based", "cdn"
	CDNBaseURL     string
}

// StorageConfig selects and configures the media store
type StorageConfig struct {
	Type    string // "memory", "fs", "s3"
	BaseDir string // fs only
	S3      s3storage.Config
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	if c.DatabaseType != "memory" && c.DatabaseType != "postgres" {
		return errors.New("database_type must be 'memory' or 'postgres'")
	}

	if c.DatabaseType == "postgres" && c.DatabaseURL == "" {
		return errors.New("database_url is required when using postgres")
	}

	switch c.Storage.Type {
	case "memory":
	case "fs":
		if c.Storage.BaseDir == "" {
			return errors.New("storage base directory is required for fs storage")
		}
	case "s3":
		if c.Storage.S3.Bucket == "" {
			return errors.New("storage bucket is required for s3 storage")
		}
	default:
		return fmt.Errorf("unsupported storage type: %s", c.Storage.Type)
	}

	if c.KeyGenerator != "timestamp" && c.KeyGenerator != "uuid" {
		return fmt.Errorf("invalid object key generator: %s (valid: timestamp, uuid)", c.KeyGenerator)
	}

	if c.MaxUploadBytes <= 0 || c.MaxPDFBytes <= 0 {
		return errors.New("upload limits must be positive")
	}

	switch urlstrategy.Type(c.URLStrategy) {
	case urlstrategy.TypeContentBased:
	case urlstrategy.TypeCDN:
		if c.CDNBaseURL == "" {
			return errors.New("cdn base URL is required for the cdn URL strategy")
		}
	default:
		return fmt.Errorf("invalid URL strategy: %s (valid: content-based, cdn)", c.URLStrategy)
	}

	return nil
}

// IsProduction reports whether the server runs in production mode.
func (c *ServerConfig) IsProduction() bool {
	return c.Environment == "production"
}

// BuildURLStrategy creates the strategy upload responses address media with.
func (c *ServerConfig) BuildURLStrategy() (urlstrategy.Strategy, error) {
	return urlstrategy.New(urlstrategy.Config{
		Type:       urlstrategy.Type(c.URLStrategy),
		APIBaseURL: c.PublicBaseURL,
		CDNBaseURL: c.CDNBaseURL,
	})
}

// BuildService creates a Service instance from the server configuration. The
// returned cleanup releases database connections.
func (c *ServerConfig) BuildService(ctx context.Context) (sitecontent.Service, func(), error) {
	cleanup := func() {}

	repo, closeRepo, err := c.buildRepository(ctx)
	if err != nil {
		return nil, cleanup, fmt.Errorf("failed to build repository: %w", err)
	}
	cleanup = closeRepo

	store, err := c.buildBlobStore(ctx)
	if err != nil {
		cleanup()
		return nil, func() {}, fmt.Errorf("failed to build storage backend %s: %w", c.Storage.Type, err)
	}

	svc, err := sitecontent.New(
		sitecontent.WithRepository(repo),
		sitecontent.WithBlobStore(store),
		sitecontent.WithKeyGenerator(c.buildKeyGenerator()),
	)
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}
	return svc, cleanup, nil
}

// buildRepository creates a Repository based on the configuration
func (c *ServerConfig) buildRepository(ctx context.Context) (sitecontent.Repository, func(), error) {
	switch c.DatabaseType {
	case "memory":
		return memory.New(), func() {}, nil
	case "postgres":
		pool, err := newPool(ctx, c.DatabaseURL, c.DBSchema)
		if err != nil {
			return nil, nil, err
		}
		repo := repopg.NewWithPool(pool)
		if c.MigrateOnStart {
			if err := repo.Migrate(ctx); err != nil {
				pool.Close()
				return nil, nil, err
			}
		}
		return repo, pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}
}

func newPool(ctx context.Context, databaseURL, schema string) (*pgxpool.Pool, error) {
	if databaseURL == "" {
		return nil, errors.New("database_url is required for postgres")
	}
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DATABASE_URL: %w", err)
	}
	if schema != "" {
		cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
			_, err := conn.Exec(ctx, "SET search_path TO "+pgx.Identifier{schema}.Sanitize())
			return err
		}
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}
	return pool, nil
}

// PingPostgres verifies connectivity to Postgres with the schema's search_path set.
func PingPostgres(ctx context.Context, databaseURL, schema string) error {
	pool, err := newPool(ctx, databaseURL, schema)
	if err != nil {
		return err
	}
	defer pool.Close()
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// buildBlobStore creates a BlobStore based on the storage configuration
func (c *ServerConfig) buildBlobStore(ctx context.Context) (sitecontent.BlobStore, error) {
	switch c.Storage.Type {
	case "memory":
		return memorystorage.New(), nil
	case "fs":
		return fsstorage.New(fsstorage.Config{BaseDir: c.Storage.BaseDir})
	case "s3":
		return s3storage.New(ctx, c.Storage.S3)
	default:
		return nil, fmt.Errorf("unsupported storage backend type: %s", c.Storage.Type)
	}
}

func (c *ServerConfig) buildKeyGenerator() objectkey.Generator {
	if c.KeyGenerator == "uuid" {
		return objectkey.NewUUIDGenerator()
	}
	return objectkey.NewTimestampGenerator()
}
