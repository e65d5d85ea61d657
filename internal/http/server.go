// Package http exposes the ledger as a JSON API: paged filtered record
// lists, the monthly summary and the mutation endpoints.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"ledger/internal/auth"
	"ledger/internal/log"
	"ledger/internal/middleware/trace"
	"ledger/internal/services"
)

type Server struct {
	http.Server
	ledgers     *services.Manager
	owner       auth.OwnerProvider
	rateLimiter *rateLimiter
	metrics     *securityMetrics

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, ledgers *services.Manager, owner auth.OwnerProvider) *Server {
	mux := http.NewServeMux()

	s := &Server{
		ledgers:     ledgers,
		owner:       owner,
		rateLimiter: newRateLimiter(),
		metrics:     &securityMetrics{},
	}
	s.Server = http.Server{
		Addr:    addr,
		Handler: trace.Middleware(mux),
	}

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)
	mux.HandleFunc("/api/records", s.secured(s.handleRecords))
	mux.HandleFunc("/api/records/", s.secured(s.handleRecordByID))
	mux.HandleFunc("/api/draft", s.secured(s.handleDraft))
	mux.HandleFunc("/api/summary", s.secured(s.handleSummary))
	mux.HandleFunc("/api/categories", s.secured(s.handleCategories))

	return s
}

// secured adds security headers and rate-limits mutating requests.
func (s *Server) secured(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientIP := trace.ClientIP(r)

		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP, s.metrics) {
			slog.WarnContext(r.Context(), "Rate limit exceeded",
				log.FieldClientIP, clientIP, log.FieldMethod, r.Method, log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		next(w, r)
	}
}

// Shutdown gracefully shuts down the server and its cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		if hits := s.metrics.rateLimitHits.Load(); hits > 0 {
			slog.Info("Security metrics at shutdown", "rate_limit_hits", hits)
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
