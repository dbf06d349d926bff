// Package urlstrategy decides the public address a media reference is
// served from.
package urlstrategy

import (
	"fmt"
	"strings"

	"github.com/tendant/site-console/pkg/sitecontent"
)

// Strategy builds the URL a browser fetches a stored media file from.
type Strategy interface {
	MediaURL(ref sitecontent.MediaRef) (string, error)
}

// Type names a URL strategy.
type Type string

const (
	// TypeContentBased routes media through the application's /uploads endpoint.
	TypeContentBased Type = "content-based"

	// TypeCDN points media straight at a CDN in front of the object store.
	TypeCDN Type = "cdn"
)

// Config holds configuration for strategy creation
type Config struct {
	Type       Type
	APIBaseURL string // content-based; empty yields relative URLs
	CDNBaseURL string // cdn
}

// New creates a strategy from config.
func New(config Config) (Strategy, error) {
	switch config.Type {
	case TypeContentBased, "":
		return NewContentBased(config.APIBaseURL), nil
	case TypeCDN:
		if config.CDNBaseURL == "" {
			return nil, fmt.Errorf("CDN base URL is required for CDN strategy")
		}
		return NewCDN(config.CDNBaseURL), nil
	default:
		return nil, fmt.Errorf("unknown URL strategy type: %s", config.Type)
	}
}

// NewRecommended picks the CDN in production when one is configured and
// application routing everywhere else.
func NewRecommended(environment, cdnURL, apiURL string) Strategy {
	if environment == "production" && cdnURL != "" {
		return NewCDN(cdnURL)
	}
	return NewContentBased(apiURL)
}

// ContentBased serves media from {BaseURL}/uploads/{filename}.
type ContentBased struct {
	BaseURL string
}

// NewContentBased creates a content-based strategy
func NewContentBased(baseURL string) *ContentBased {
	return &ContentBased{BaseURL: strings.TrimSuffix(baseURL, "/")}
}

func (s *ContentBased) MediaURL(ref sitecontent.MediaRef) (string, error) {
	if ref == "" {
		return "", fmt.Errorf("empty media reference")
	}
	return ref.URL(s.BaseURL), nil
}

// CDN serves media from {CDNBaseURL}/{object key}. Object keys are the
// reference names, so the CDN origin must be the media bucket or directory.
type CDN struct {
	CDNBaseURL string
}

// NewCDN creates a CDN strategy
func NewCDN(cdnBaseURL string) *CDN {
	return &CDN{CDNBaseURL: strings.TrimSuffix(cdnBaseURL, "/")}
}

func (s *CDN) MediaURL(ref sitecontent.MediaRef) (string, error) {
	if s.CDNBaseURL == "" {
		return "", fmt.Errorf("CDN base URL not configured")
	}
	if ref == "" {
		return "", fmt.Errorf("empty media reference")
	}
	return s.CDNBaseURL + "/" + ref.Name(), nil
}
