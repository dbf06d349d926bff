package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

// environment lists the variables WithEnv reads. Unset variables leave the
// current configuration alone.
type environment struct {
	Port        string `env:"PORT" env-description:"HTTP listen port"`
	Environment string `env:"ENVIRONMENT" env-description:"development, production or testing"`

	DatabaseURL    string `env:"DATABASE_URL" env-description:"memory or postgres://... connection string"`
	DBSchema       string `env:"CONTENT_DB_SCHEMA" env-description:"Postgres schema holding the document table"`
	MigrateOnStart string `env:"DB_MIGRATE" env-description:"create the document table on start (true/false)"`

	StorageURL        string `env:"STORAGE_URL" env-description:"memory://, file:///path or s3://bucket?region=..."`
	S3Region          string `env:"S3_REGION" env-description:"S3 region"`
	S3Endpoint        string `env:"S3_ENDPOINT" env-description:"custom endpoint for S3-compatible services"`
	S3AccessKeyID     string `env:"S3_ACCESS_KEY_ID" env-description:"S3 access key"`
	S3SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY" env-description:"S3 secret key"`
	S3UsePathStyle    string `env:"S3_USE_PATH_STYLE" env-description:"use path-style addressing (true/false)"`
	S3Prefix          string `env:"S3_PREFIX" env-description:"key prefix inside the bucket"`

	KeyGenerator   string `env:"OBJECT_KEY_GENERATOR" env-description:"timestamp or uuid"`
	MaxUploadBytes int64  `env:"MAX_UPLOAD_BYTES" env-description:"largest accepted upload"`
	MaxPDFBytes    int64  `env:"MAX_PDF_BYTES" env-description:"largest accepted PDF upload"`
	PublicBaseURL  string `env:"PUBLIC_BASE_URL" env-description:"public origin used to build media URLs"`
	URLStrategy    string `env:"URL_STRATEGY" env-description:"content-based or cdn"`
	CDNBaseURL     string `env:"CDN_BASE_URL" env-description:"CDN origin serving the media store (cdn strategy)"`
}

// EnvUsage returns a description of the environment variables WithEnv reads.
func EnvUsage() string {
	var env environment
	usage, err := cleanenv.GetDescription(&env, nil)
	if err != nil {
		return ""
	}
	return usage
}

// WithEnv applies environment variable overrides.
func WithEnv() Option {
	return func(c *ServerConfig) error {
		var env environment
		if err := cleanenv.ReadEnv(&env); err != nil {
			return fmt.Errorf("failed to read environment: %w", err)
		}

		if env.Port != "" {
			c.Port = env.Port
		}
		if env.Environment != "" {
			c.Environment = env.Environment
		}
		if env.DBSchema != "" {
			c.DBSchema = env.DBSchema
		}
		if env.KeyGenerator != "" {
			c.KeyGenerator = env.KeyGenerator
		}
		if env.MaxUploadBytes != 0 {
			c.MaxUploadBytes = env.MaxUploadBytes
		}
		if env.MaxPDFBytes != 0 {
			c.MaxPDFBytes = env.MaxPDFBytes
		}
		if env.PublicBaseURL != "" {
			c.PublicBaseURL = strings.TrimSuffix(env.PublicBaseURL, "/")
		}
		if env.URLStrategy != "" {
			c.URLStrategy = env.URLStrategy
		}
		if env.CDNBaseURL != "" {
			c.CDNBaseURL = strings.TrimSuffix(env.CDNBaseURL, "/")
		}
		if env.MigrateOnStart != "" {
			v, err := strconv.ParseBool(env.MigrateOnStart)
			if err != nil {
				return fmt.Errorf("invalid boolean for DB_MIGRATE: %w", err)
			}
			c.MigrateOnStart = v
		}

		if err := applyDatabaseEnv(env.DatabaseURL, c); err != nil {
			return err
		}
		if err := applyStorageEnv(env.StorageURL, c); err != nil {
			return err
		}
		return applyS3Env(env, c)
	}
}

// applyDatabaseEnv applies database configuration from environment
func applyDatabaseEnv(dbURL string, c *ServerConfig) error {
	switch {
	case dbURL == "":
		return nil
	case dbURL == "memory":
		c.DatabaseType = "memory"
		c.DatabaseURL = ""
	case strings.HasPrefix(dbURL, "postgresql://"), strings.HasPrefix(dbURL, "postgres://"):
		c.DatabaseType = "postgres"
		c.DatabaseURL = dbURL
	default:
		return fmt.Errorf("unsupported DATABASE_URL format: %s (use 'memory' or 'postgresql://...')", dbURL)
	}
	return nil
}

// applyStorageEnv applies storage configuration from environment
func applyStorageEnv(storageURL string, c *ServerConfig) error {
	if storageURL == "" {
		return nil
	}
	if storageURL == "memory" || storageURL == "memory://" {
		c.Storage = StorageConfig{Type: "memory"}
		return nil
	}

	u, err := url.Parse(storageURL)
	if err != nil {
		return fmt.Errorf("invalid STORAGE_URL: %w", err)
	}

	switch u.Scheme {
	case "file":
		// file:///abs/path or file://./relative
		path := u.Host + u.Path
		if path == "" {
			return fmt.Errorf("filesystem path cannot be empty in STORAGE_URL")
		}
		c.Storage = StorageConfig{Type: "fs", BaseDir: path}
	case "s3":
		if u.Host == "" {
			return fmt.Errorf("S3 bucket name cannot be empty in STORAGE_URL")
		}
		q := u.Query()
		s3cfg := c.Storage.S3
		s3cfg.Bucket = u.Host
		s3cfg.Prefix = strings.TrimPrefix(u.Path, "/")
		if s3cfg.Prefix != "" && !strings.HasSuffix(s3cfg.Prefix, "/") {
			s3cfg.Prefix += "/"
		}
		if v := q.Get("region"); v != "" {
			s3cfg.Region = v
		}
		if v := q.Get("endpoint"); v != "" {
			s3cfg.Endpoint = v
		}
		if v := q.Get("path_style"); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid path_style in STORAGE_URL: %w", err)
			}
			s3cfg.UsePathStyle = b
		}
		c.Storage = StorageConfig{Type: "s3", S3: s3cfg}
	default:
		return fmt.Errorf("unsupported STORAGE_URL format: %s (use 'memory://', 'file://...', or 's3://...')", storageURL)
	}
	return nil
}

func applyS3Env(env environment, c *ServerConfig) error {
	s3cfg := &c.Storage.S3
	if env.S3Region != "" {
		s3cfg.Region = env.S3Region
	}
	if env.S3Endpoint != "" {
		s3cfg.Endpoint = env.S3Endpoint
	}
	if env.S3AccessKeyID != "" {
		s3cfg.AccessKeyID = env.S3AccessKeyID
	}
	if env.S3SecretAccessKey != "" {
		s3cfg.SecretAccessKey = env.S3SecretAccessKey
	}
	if env.S3Prefix != "" {
		s3cfg.Prefix = env.S3Prefix
	}
	if env.S3UsePathStyle != "" {
		b, err := strconv.ParseBool(env.S3UsePathStyle)
		if err != nil {
			return fmt.Errorf("invalid boolean for S3_USE_PATH_STYLE: %w", err)
		}
		s3cfg.UsePathStyle = b
	}
	return nil
}
