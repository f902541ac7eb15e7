package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/inputguard/pkg/clientip"
	"github.com/dmitrymomot/inputguard/pkg/guard"
	"github.com/dmitrymomot/inputguard/pkg/httpserver"
	"github.com/dmitrymomot/inputguard/pkg/logger"
	"github.com/dmitrymomot/inputguard/pkg/ratelimiter"
	"github.com/dmitrymomot/inputguard/pkg/requestid"
)

// FileField is the multipart field read by POST /v1/files.
const FileField = "file"

// Service exposes a Guard over HTTP.
type Service struct {
	guard         *guard.Guard
	log           *slog.Logger
	checks        []httpserver.Check
	healthTimeout time.Duration
	clientIP      clientip.Config
	limiter       *ratelimiter.Bucket
}

// Option configures a Service.
type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithReadinessChecks adds dependencies checked by GET /health/ready.
func WithReadinessChecks(checks ...httpserver.Check) Option {
	return func(s *Service) {
		s.checks = append(s.checks, checks...)
	}
}

// WithHealthTimeout bounds all readiness checks together.
func WithHealthTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.healthTimeout = d
		}
	}
}

// WithClientIP controls how the client address is resolved for logs and
// rate limiting.
func WithClientIP(cfg clientip.Config) Option {
	return func(s *Service) {
		s.clientIP = cfg
	}
}

// WithRateLimiter throttles /v1 routes per client address. Health routes
// are never throttled.
func WithRateLimiter(b *ratelimiter.Bucket) Option {
	return func(s *Service) {
		s.limiter = b
	}
}

func New(g *guard.Guard, opts ...Option) *Service {
	s := &Service{
		guard:         g,
		log:           logger.Discard(),
		healthTimeout: 2 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Component("api"))
	return s
}

// Handle returns the router:
//
//	POST /v1/pattern     JSON {pattern, flags, text, operation, replacement, timeout_ms}
//	POST /v1/structured  raw body, ?format=json|yaml
//	POST /v1/markup      raw body, ?format=html|markdown
//	POST /v1/files       multipart/form-data with a "file" part
//	GET  /health/live
//	GET  /health/ready
//
// With WithRateLimiter, /v1 routes answer 429 with a rate_limited rejection
// once a client address runs out of tokens.
func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(clientip.Middleware(s.clientIP))
	r.Use(middleware.Recoverer)

	r.Route("/v1", func(r chi.Router) {
		if s.limiter != nil {
			r.Use(ratelimiter.Middleware(s.limiter, ratelimiter.ByClientIP,
				ratelimiter.WithDeniedHandler(s.rateLimited),
				ratelimiter.WithLogger(s.log),
			))
		}
		r.Post("/pattern", s.testPattern)
		r.Post("/structured", s.parseStructured)
		r.Post("/markup", s.renderMarkup)
		r.Post("/files", s.ingestFile)
	})

	ready := s.checks
	if len(ready) == 0 {
		ready = []httpserver.Check{func(context.Context) error { return nil }}
	}
	r.Get("/health/live", httpserver.HealthCheckHandler(s.log, 0))
	r.Get("/health/ready", httpserver.HealthCheckHandler(s.log, s.healthTimeout, ready...))

	return r
}
