package config

import (
	"fmt"
	"strings"
)

// WithPort sets the server port
func WithPort(port string) Option {
	return func(c *ServerConfig) error {
		if port == "" {
			return fmt.Errorf("port cannot be empty")
		}
		c.Port = port
		return nil
	}
}

// WithEnvironment sets the environment (development, production, testing)
func WithEnvironment(env string) Option {
	return func(c *ServerConfig) error {
		if env == "" {
			return fmt.Errorf("environment cannot be empty")
		}
		c.Environment = env
		return nil
	}
}

// WithDatabase configures the database backend
func WithDatabase(dbType, url string) Option {
	return func(c *ServerConfig) error {
		if dbType != "memory" && dbType != "postgres" {
			return fmt.Errorf("database type must be 'memory' or 'postgres', got: %s", dbType)
		}
		if dbType == "postgres" && url == "" {
			return fmt.Errorf("database URL is required for postgres")
		}
		c.DatabaseType = dbType
		c.DatabaseURL = url
		return nil
	}
}

// WithDatabaseSchema sets the database schema (for Postgres)
func WithDatabaseSchema(schema string) Option {
	return func(c *ServerConfig) error {
		c.DBSchema = schema
		return nil
	}
}

// WithMigrateOnStart creates the document table when the service is built
func WithMigrateOnStart(enabled bool) Option {
	return func(c *ServerConfig) error {
		c.MigrateOnStart = enabled
		return nil
	}
}

// WithMemoryStorage keeps media in memory (for testing)
func WithMemoryStorage() Option {
	return func(c *ServerConfig) error {
		c.Storage = StorageConfig{Type: "memory"}
		return nil
	}
}

// WithFilesystemStorage keeps media as files under baseDir
func WithFilesystemStorage(baseDir string) Option {
	return func(c *ServerConfig) error {
		if baseDir == "" {
			return fmt.Errorf("filesystem base directory cannot be empty")
		}
		c.Storage = StorageConfig{Type: "fs", BaseDir: baseDir}
		return nil
	}
}

// WithS3Storage keeps media in an S3 bucket
func WithS3Storage(bucket, region string) Option {
	return func(c *ServerConfig) error {
		if bucket == "" {
			return fmt.Errorf("S3 bucket cannot be empty")
		}
		if region == "" {
			region = "us-east-1"
		}
		s3cfg := c.Storage.S3
		s3cfg.Bucket = bucket
		s3cfg.Region = region
		c.Storage = StorageConfig{Type: "s3", S3: s3cfg}
		return nil
	}
}

// WithS3Credentials sets static credentials for S3 storage
func WithS3Credentials(accessKeyID, secretAccessKey string) Option {
	return func(c *ServerConfig) error {
		c.Storage.S3.AccessKeyID = accessKeyID
		c.Storage.S3.SecretAccessKey = secretAccessKey
		return nil
	}
}

// WithS3Endpoint sets a custom S3 endpoint (for MinIO, LocalStack, etc.)
func WithS3Endpoint(endpoint string, usePathStyle bool) Option {
	return func(c *ServerConfig) error {
		c.Storage.S3.Endpoint = endpoint
		c.Storage.S3.UsePathStyle = usePathStyle
		return nil
	}
}

// WithObjectKeyGenerator sets the upload naming strategy ("timestamp" or "uuid")
func WithObjectKeyGenerator(generator string) Option {
	return func(c *ServerConfig) error {
		if generator != "timestamp" && generator != "uuid" {
			return fmt.Errorf("invalid object key generator: %s (valid: timestamp, uuid)", generator)
		}
		c.KeyGenerator = generator
		return nil
	}
}

// WithMaxUploadBytes sets the largest accepted upload
func WithMaxUploadBytes(n int64) Option {
	return func(c *ServerConfig) error {
		if n <= 0 {
			return fmt.Errorf("max upload bytes must be positive, got: %d", n)
		}
		c.MaxUploadBytes = n
		return nil
	}
}

// WithMaxPDFBytes sets the largest accepted PDF upload
func WithMaxPDFBytes(n int64) Option {
	return func(c *ServerConfig) error {
		if n <= 0 {
			return fmt.Errorf("max PDF bytes must be positive, got: %d", n)
		}
		c.MaxPDFBytes = n
		return nil
	}
}

// WithPublicBaseURL sets the origin media URLs are built against
func WithPublicBaseURL(baseURL string) Option {
	return func(c *ServerConfig) error {
		c.PublicBaseURL = strings.TrimSuffix(baseURL, "/")
		return nil
	}
}

// WithCDN serves media URLs straight from a CDN in front of the media store
func WithCDN(cdnBaseURL string) Option {
	return func(c *ServerConfig) error {
		if cdnBaseURL == "" {
			return fmt.Errorf("cdn base URL cannot be empty")
		}
		c.URLStrategy = "cdn"
		c.CDNBaseURL = strings.TrimSuffix(cdnBaseURL, "/")
		return nil
	}
}
