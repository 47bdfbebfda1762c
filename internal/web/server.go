// Package web provides the HTTP API for bulk category and place imports.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ulule/limiter/v3"

	"github.com/JonMunkholm/placemap/internal/config"
	"github.com/JonMunkholm/placemap/internal/core"
	mw "github.com/JonMunkholm/placemap/internal/web/middleware"
)

// ImportService is the slice of core.Service the handlers use.
type ImportService interface {
	Import(ctx context.Context, kind core.Kind, fileName string, data []byte) (*core.Report, error)
	ListImportLogs(ctx context.Context, limit int) ([]core.ImportLogEntry, error)
}

// Pinger reports database reachability for /healthz.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server is the HTTP server for the import API.
type Server struct {
	cfg     *config.Config
	service ImportService
	db      Pinger
	router  *chi.Mux
	server  *http.Server

	rateStore limiter.Store
	closeRate func() error
}

// NewServer creates a Server. db may be nil, in which case /healthz only
// reports that the process is up.
func NewServer(cfg *config.Config, service ImportService, db Pinger) *Server {
	s := &Server{
		cfg:     cfg,
		service: service,
		db:      db,
		router:  chi.NewRouter(),
	}
	if cfg.Rate.Enabled {
		s.setupRateStore()
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupRateStore opens the shared counter store. A Redis store that cannot
// be reached falls back to process memory so the API still starts.
func (s *Server) setupRateStore() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	store, closeStore, err := mw.NewRateStore(ctx, s.cfg.Rate.RedisURL)
	if err != nil {
		slog.Warn("rate limit store unavailable, falling back to memory", "error", err)
		store, closeStore, _ = mw.NewRateStore(ctx, "")
	}
	s.rateStore, s.closeRate = store, closeStore
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(mw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(mw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(securityHeaders)

	if len(s.cfg.Security.AllowedOrigins) > 0 {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.cfg.Security.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-API-Key", "X-Request-Id"},
			MaxAge:         300,
		}))
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Route("/api/admin", func(r chi.Router) {
		r.Use(mw.APIKeyAuth(&s.cfg.Security))

		// Import endpoints get their own, stricter per-IP budget.
		r.Group(func(r chi.Router) {
			if s.cfg.Rate.Enabled {
				r.Use(mw.RateLimit(s.rateStore, "import", s.cfg.Rate.ImportLimit, writeRateLimited))
			}
			r.Post("/categories/import", s.handleImport(core.KindCategory))
			r.Post("/listings/import", s.handleImport(core.KindPlace))
		})

		r.Group(func(r chi.Router) {
			if s.cfg.Rate.Enabled {
				r.Use(mw.RateLimit(s.rateStore, "read", s.cfg.Rate.RequestsPerMinute, writeRateLimited))
			}
			r.Use(middleware.Compress(5))
			r.Get("/import-logs", s.handleImportLogs)
			r.Get("/categories/import/template", s.handleTemplate(core.KindCategory))
			r.Get("/listings/import/template", s.handleTemplate(core.KindPlace))
		})
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server and releases the rate limit store.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	if s.server != nil {
		err = s.server.Shutdown(ctx)
	}
	if s.closeRate != nil {
		if cerr := s.closeRate(); cerr != nil {
			slog.Warn("close rate limit store", "error", cerr)
		}
	}
	return err
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.db.Ping(ctx); err != nil {
			slog.Warn("health check failed", "error", err)
			writeJSONStatus(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Content-Security-Policy", "default-src 'none'")
		next.ServeHTTP(w, r)
	})
}

// writeJSON encodes v as a 200 JSON response.
func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

// writeJSONStatus encodes v as JSON with the given status.
// Encoding errors are logged since headers are already sent.
func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
