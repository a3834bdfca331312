// Package http exposes the JSON API over the services layer.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"contas/internal/cache"
	"contas/internal/services"
)

type Server struct {
	http.Server

	categories *services.CategoryService
	expenses   *services.ExpenseService
	incomes    *services.IncomeService
	reports    *services.ReportService

	rateLimiter *rateLimiter

	// Serialized report responses keyed by request URI. Any mutation
	// purges the whole cache, the keys are not enumerable.
	reportCache  *cache.LRUCache[[]byte]
	cacheManager *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a
// ready-to-run server.
func NewServer(addr string, categories *services.CategoryService, expenses *services.ExpenseService, incomes *services.IncomeService, reports *services.ReportService) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		categories:   categories,
		expenses:     expenses,
		incomes:      incomes,
		reports:      reports,
		rateLimiter:  newRateLimiter(),
		reportCache:  cache.NewLRUCache[[]byte](200, 5*time.Minute),
		cacheManager: cache.NewManager(),
	}

	s.cacheManager.Register(s.reportCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("GET /api/categories", s.with(s.handleListCategories))
	mux.HandleFunc("POST /api/categories", s.with(s.handleCreateCategory))
	mux.HandleFunc("PUT /api/categories/{id}", s.with(s.handleUpdateCategory))
	mux.HandleFunc("DELETE /api/categories/{id}", s.with(s.handleDeleteCategory))

	mux.HandleFunc("GET /api/expenses", s.with(s.handleListExpenses))
	mux.HandleFunc("POST /api/expenses", s.with(s.handleCreateExpense))
	mux.HandleFunc("GET /api/expenses/{id}", s.with(s.handleGetExpense))
	mux.HandleFunc("PUT /api/expenses/{id}", s.with(s.handleUpdateExpense))
	mux.HandleFunc("DELETE /api/expenses/{id}", s.with(s.handleDeleteExpense))
	mux.HandleFunc("POST /api/expenses/{id}/pay", s.with(s.handlePayExpense))
	mux.HandleFunc("GET /api/expenses/{id}/installments", s.with(s.handleListInstallments))
	mux.HandleFunc("POST /api/expenses/{id}/installments/{n}/pay", s.with(s.handlePayInstallment))

	mux.HandleFunc("GET /api/incomes", s.with(s.handleListIncomes))
	mux.HandleFunc("POST /api/incomes", s.with(s.handleCreateIncome))
	mux.HandleFunc("GET /api/incomes/{id}", s.with(s.handleGetIncome))
	mux.HandleFunc("PUT /api/incomes/{id}", s.with(s.handleUpdateIncome))
	mux.HandleFunc("DELETE /api/incomes/{id}", s.with(s.handleDeleteIncome))
	mux.HandleFunc("POST /api/incomes/{id}/receive", s.with(s.handleReceiveIncome))

	mux.HandleFunc("GET /api/reports/month", s.with(s.cached(s.handleMonthReport)))
	mux.HandleFunc("GET /api/reports/by-category", s.with(s.cached(s.handleByCategoryReport)))
	mux.HandleFunc("GET /api/reports/comparison", s.with(s.cached(s.handleComparisonReport)))
	mux.HandleFunc("GET /api/reports/evolution", s.with(s.cached(s.handleEvolutionReport)))
	mux.HandleFunc("GET /api/reports/dashboard", s.with(s.cached(s.handleDashboardReport)))
	mux.HandleFunc("GET /api/reports/recent", s.with(s.cached(s.handleRecentReport)))

	return s
}

// with adds security headers, request-ID logging and rate limiting on
// mutating methods.
func (s *Server) with(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP)

		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded",
				"client_ip", clientIP,
				"method", r.Method,
				"url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, r, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", clientIP)
	}
}

// cached serves report GETs from the LRU cache keyed by request URI.
func (s *Server) cached(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.RequestURI()
		if body, ok := s.reportCache.Get(key); ok {
			slog.DebugContext(r.Context(), "Report cache hit", "key", key)
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(body)
			return
		}

		rec := &recordingWriter{responseWriter: responseWriter{ResponseWriter: w, statusCode: http.StatusOK}}
		next(rec, r)

		if rec.statusCode == http.StatusOK {
			s.reportCache.Set(key, rec.body)
		}
	}
}

// invalidateReports drops all cached report responses. Called by every
// mutation handler.
func (s *Server) invalidateReports() {
	s.reportCache.Purge()
}

type requestIDKey struct{}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// recordingWriter also captures the body for caching.
type recordingWriter struct {
	responseWriter
	body []byte
}

func (rw *recordingWriter) Write(b []byte) (int, error) {
	rw.body = append(rw.body, b...)
	return rw.ResponseWriter.Write(b)
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// Shutdown stops the cleanup routines and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.cacheManager != nil {
			s.cacheManager.Stop()
		}
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
