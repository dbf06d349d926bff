// Package scan walks the stored documents of one or more collections and
// hands each to a processor.
package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/tendant/site-console/pkg/sitecontent"
)

// Scanner lists documents through the service and processes them.
type Scanner struct {
	service sitecontent.Service
	logger  *slog.Logger
}

// New creates a new Scanner instance.
func New(service sitecontent.Service, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{service: service, logger: logger}
}

// Options configures a scan.
type Options struct {
	// Collections to walk; empty means every registered collection.
	Collections []string

	// Processor is required unless DryRun is set.
	Processor DocumentProcessor

	// DryRun reports what would be processed without calling Processor.
	DryRun bool

	// OnProgress is called after each collection.
	OnProgress func(processed, total int64)
}

// Failure records one document the processor rejected.
type Failure struct {
	Collection string
	ID         string
	Err        error
}

// Result holds scan statistics.
type Result struct {
	TotalFound     int64
	TotalProcessed int64
	TotalFailed    int64
	Failures       []Failure
}

// Scan walks every requested collection in name order. A processor failure
// is recorded and the scan continues; listing failures and cancellation
// stop it.
func (s *Scanner) Scan(ctx context.Context, opts Options) (*Result, error) {
	result := &Result{}

	if !opts.DryRun && opts.Processor == nil {
		return result, errors.New("processor is required when DryRun is false")
	}

	collections := opts.Collections
	if len(collections) == 0 {
		collections = s.service.Collections()
	}
	collections = append([]string(nil), collections...)
	sort.Strings(collections)

	for _, collection := range collections {
		kind, err := s.service.KindOf(collection)
		if err != nil {
			return result, err
		}
		docs, err := s.service.ListDocuments(ctx, collection)
		if err != nil {
			return result, fmt.Errorf("failed to list %s: %w", collection, err)
		}
		result.TotalFound += int64(len(docs))

		for _, doc := range docs {
			if err := ctx.Err(); err != nil {
				return result, err
			}
			if opts.DryRun {
				s.logger.Info("Would process document", "collection", collection, "id", doc.ID, "kind", kind)
				result.TotalProcessed++
				continue
			}
			if err := opts.Processor.Process(ctx, kind, doc); err != nil {
				result.TotalFailed++
				result.Failures = append(result.Failures, Failure{Collection: collection, ID: doc.ID.String(), Err: err})
				s.logger.Warn("Document failed processing", "collection", collection, "id", doc.ID, "error", err)
				continue
			}
			result.TotalProcessed++
		}

		if opts.OnProgress != nil {
			opts.OnProgress(result.TotalProcessed+result.TotalFailed, result.TotalFound)
		}
	}

	return result, nil
}

// ForEach processes every document of collections with fn.
func (s *Scanner) ForEach(ctx context.Context, collections []string, fn ProcessorFunc) (*Result, error) {
	return s.Scan(ctx, Options{Collections: collections, Processor: fn})
}
