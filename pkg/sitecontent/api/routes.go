package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tendant/site-console/pkg/sitecontent"
	"github.com/tendant/site-console/pkg/sitecontent/urlstrategy"
)

// Server assembles the admin console HTTP surface.
type Server struct {
	service  sitecontent.Service
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *Metrics

	maxUploadBytes int64
	maxPDFBytes    int64
	urls           urlstrategy.Strategy
	timeout        time.Duration
	cors           bool
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRegistry sets the registry metrics are registered with and served from
func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) {
		if reg != nil {
			s.registry = reg
		}
	}
}

// WithUploadLimits sets the general and PDF upload ceilings in bytes
func WithUploadLimits(maxBytes, maxPDFBytes int64) Option {
	return func(s *Server) {
		if maxBytes > 0 {
			s.maxUploadBytes = maxBytes
		}
		if maxPDFBytes > 0 {
			s.maxPDFBytes = maxPDFBytes
		}
	}
}

// WithPublicBaseURL makes upload responses carry an absolute URL routed
// through this server
func WithPublicBaseURL(baseURL string) Option {
	return func(s *Server) {
		s.urls = urlstrategy.NewContentBased(baseURL)
	}
}

// WithURLStrategy sets how upload responses address stored media
func WithURLStrategy(strategy urlstrategy.Strategy) Option {
	return func(s *Server) {
		if strategy != nil {
			s.urls = strategy
		}
	}
}

// WithTimeout bounds request handling time
func WithTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithCORS allows cross-origin requests from any origin. Meant for
// development, where the console UI is served from another port.
func WithCORS(enabled bool) Option {
	return func(s *Server) {
		s.cors = enabled
	}
}

// NewServer creates a server around service.
func NewServer(service sitecontent.Service, opts ...Option) *Server {
	s := &Server{
		service:        service,
		logger:         slog.Default(),
		maxUploadBytes: DefaultMaxUploadBytes,
		maxPDFBytes:    DefaultMaxPDFBytes,
		urls:           urlstrategy.NewContentBased(""),
		timeout:        60 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
	}
	s.metrics = NewMetrics(s.registry)
	return s
}

// Routes builds the router.
//
//	GET    /health
//	GET    /metrics
//	GET    /uploads/{filename}
//	POST   /api/upload
//	GET    /api/collections
//	GET    /api/{collection}
//	POST   /api/{collection}
//	GET    /api/{collection}/summaries
//	GET    /api/{collection}/{id}
//	PUT    /api/{collection}/{id}
//	DELETE /api/{collection}/{id}
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger, s.metrics))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.timeout))
	if s.cors {
		r.Use(allowAllOrigins)
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	uploads := NewUploadHandler(s.service, s.metrics)
	uploads.maxBytes = s.maxUploadBytes
	uploads.maxPDFBytes = s.maxPDFBytes
	uploads.urls = s.urls

	documents := NewDocumentHandler(s.service)

	r.Get("/uploads/{filename}", uploads.Serve)
	r.Route("/api", func(r chi.Router) {
		r.Post("/upload", uploads.Upload)
		r.Get("/collections", documents.ListCollections)
		r.Mount("/{collection}", documents.Routes())
	})

	return r
}
