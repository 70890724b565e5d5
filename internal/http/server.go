// Package http serves the mock property-management REST backend: the same
// routes and payloads as the production API, backed by the in-memory
// gateway.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"propmanager/internal/gateway/memory"
	"propmanager/internal/log"
	"propmanager/internal/middleware/ratelimit"
	"propmanager/internal/middleware/security"
	"propmanager/internal/middleware/trace"
)

// Options tunes the mock server. The zero value is usable.
type Options struct {
	Logger *log.Logger
	// RateLimit enables per-client throttling when non-nil.
	RateLimit *ratelimit.Config
	// AllowedOrigins for CORS; empty allows any origin.
	AllowedOrigins []string
}

type Server struct {
	http.Server
	gw      *memory.Gateway
	logger  *log.Logger
	limiter *ratelimit.Limiter

	shutdownOnce sync.Once
}

// NewServer configures routes, returning a ready-to-run http.Server.
func NewServer(addr string, gw *memory.Gateway, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		gw:     gw,
		logger: logger,
	}
	if opts.RateLimit != nil {
		s.limiter = ratelimit.NewLimiter(*opts.RateLimit)
	}
	s.Handler = s.routes(opts)
	return s
}

func (s *Server) routes(opts Options) http.Handler {
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	ips := security.NewIPResolver()

	r := chi.NewRouter()
	r.Use(trace.Middleware)
	r.Use(log.Middleware(s.logger))
	r.Use(chimw.Recoverer)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", trace.HeaderRequestID},
		ExposedHeaders: []string{trace.HeaderRequestID},
		MaxAge:         300,
	}).Handler)
	if s.limiter != nil {
		r.Use(s.limiter.Middleware(ips.ClientIP, func(w http.ResponseWriter, _ *http.Request) {
			writeJSONError(w, http.StatusTooManyRequests, "Rate limit exceeded")
		}))
	}
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSONError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/healthz", s.handleHealth)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", s.handleLogin)
		r.Post("/register", s.handleRegister)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)

		r.Get("/auth/me", s.handleMe)

		r.Get("/properties", s.handleListProperties)
		r.Post("/properties", s.handleCreateProperty)
		r.Put("/properties/{id}", s.handleUpdateProperty)
		r.Delete("/properties/{id}", s.handleDeleteProperty)

		r.Get("/tenants", s.handleListTenants)
		r.Post("/tenants", s.handleCreateTenant)
		r.Delete("/tenants/{id}", s.handleDeleteTenant)

		r.Get("/payments", s.handleListPayments)
		r.Post("/payments", s.handleCreatePayment)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Shutdown gracefully shuts down the server and the rate limiter.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.limiter != nil {
			s.limiter.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
