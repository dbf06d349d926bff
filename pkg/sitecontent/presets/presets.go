// Package presets builds ready-to-use services for local development and
// tests.
package presets

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/tendant/site-console/pkg/sitecontent"
	memoryrepo "github.com/tendant/site-console/pkg/sitecontent/repo/memory"
	fsstorage "github.com/tendant/site-console/pkg/sitecontent/storage/fs"
	memorystorage "github.com/tendant/site-console/pkg/sitecontent/storage/memory"
)

// DevelopmentOption customizes NewDevelopment.
type DevelopmentOption func(*devConfig)

type devConfig struct {
	storageDir string
	logger     *slog.Logger
}

// WithDevStorageDir changes where uploaded media is written (default ./dev-data).
func WithDevStorageDir(dir string) DevelopmentOption {
	return func(c *devConfig) { c.storageDir = dir }
}

// WithDevLogger sets the service logger.
func WithDevLogger(l *slog.Logger) DevelopmentOption {
	return func(c *devConfig) { c.logger = l }
}

// NewDevelopment creates a service with in-memory documents and media on
// the local filesystem. The cleanup function removes the media directory.
func NewDevelopment(opts ...DevelopmentOption) (sitecontent.Service, func(), error) {
	cfg := &devConfig{storageDir: "./dev-data"}
	for _, opt := range opts {
		opt(cfg)
	}

	fsBackend, err := fsstorage.New(fsstorage.Config{BaseDir: cfg.storageDir})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create filesystem storage: %w", err)
	}

	options := []sitecontent.Option{
		sitecontent.WithRepository(memoryrepo.New()),
		sitecontent.WithBlobStore(fsBackend),
	}
	if cfg.logger != nil {
		options = append(options, sitecontent.WithLogger(cfg.logger))
	}
	svc, err := sitecontent.New(options...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create service: %w", err)
	}

	cleanup := func() {
		os.RemoveAll(cfg.storageDir)
	}
	return svc, cleanup, nil
}

// TestingOption customizes NewTesting.
type TestingOption func(*[]sitecontent.Option)

// WithTestCollections replaces the default collection registry.
func WithTestCollections(collections map[string]sitecontent.CollectionKind) TestingOption {
	return func(o *[]sitecontent.Option) {
		*o = append(*o, sitecontent.WithCollections(collections))
	}
}

// NewTesting creates an isolated in-memory service for a test. Logs are
// discarded.
func NewTesting(t testing.TB, opts ...TestingOption) sitecontent.Service {
	t.Helper()
	options := []sitecontent.Option{
		sitecontent.WithRepository(memoryrepo.New()),
		sitecontent.WithBlobStore(memorystorage.New()),
		sitecontent.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	for _, opt := range opts {
		opt(&options)
	}
	svc, err := sitecontent.New(options...)
	if err != nil {
		t.Fatalf("failed to create test service: %v", err)
	}
	return svc
}
