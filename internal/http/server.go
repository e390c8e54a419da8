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

	"bilancio/internal/cache"
	"bilancio/internal/services"
)

// Options tunes the report caches and projection defaults.
type Options struct {
	SummaryCacheSize int
	SummaryCacheTTL  time.Duration
	DefaultHorizon   int
}

type Server struct {
	http.Server
	budget      *services.BudgetService
	summary     *services.SummaryService
	rateLimiter *rateLimiter

	defaultHorizon int

	// Report caches. Mutations clear them wholesale: any row change can
	// shift a month report or the net worth.
	monthCache    *cache.LRUCache[services.MonthReport]
	networthCache *cache.LRUCache[services.NetWorthReport]

	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once
}

// NewServer configures routes and report caches, returning a ready-to-run
// http.Server.
func NewServer(addr string, budget *services.BudgetService, summary *services.SummaryService, opts Options) *Server {
	if opts.SummaryCacheSize <= 0 {
		opts.SummaryCacheSize = 100
	}
	if opts.SummaryCacheTTL <= 0 {
		opts.SummaryCacheTTL = 5 * time.Minute
	}
	if opts.DefaultHorizon <= 0 {
		opts.DefaultHorizon = 120
	}

	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		budget:           budget,
		summary:          summary,
		rateLimiter:      newRateLimiter(),
		defaultHorizon:   opts.DefaultHorizon,
		monthCache:       cache.New[services.MonthReport](opts.SummaryCacheSize, opts.SummaryCacheTTL),
		networthCache:    cache.New[services.NetWorthReport](opts.SummaryCacheSize, opts.SummaryCacheTTL),
		stopCacheCleanup: make(chan struct{}),
	}

	go s.startCacheCleanup()

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	mux.HandleFunc("GET /api/profile", s.with(s.handleGetProfile))
	mux.HandleFunc("PUT /api/profile", s.with(s.handleUpdateProfile))

	mux.HandleFunc("GET /api/taxes", s.with(s.handleListTaxRates))
	mux.HandleFunc("POST /api/taxes", s.with(s.handleCreateTaxRate))
	mux.HandleFunc("PUT /api/taxes/{id}", s.with(s.handleUpdateTaxRate))
	mux.HandleFunc("DELETE /api/taxes/{id}", s.with(s.handleDeleteTaxRate))

	mux.HandleFunc("GET /api/categories", s.with(s.handleListCategories))
	mux.HandleFunc("POST /api/categories", s.with(s.handleCreateCategory))
	mux.HandleFunc("DELETE /api/categories/{id}", s.with(s.handleDeleteCategory))

	mux.HandleFunc("GET /api/items", s.with(s.handleListItems))
	mux.HandleFunc("POST /api/items", s.with(s.handleCreateItem))
	mux.HandleFunc("PUT /api/items/{id}", s.with(s.handleUpdateItem))
	mux.HandleFunc("DELETE /api/items/{id}", s.with(s.handleDeleteItem))

	mux.HandleFunc("GET /api/purchases", s.with(s.handleListPurchases))
	mux.HandleFunc("POST /api/purchases", s.with(s.handleCreatePurchase))
	mux.HandleFunc("DELETE /api/purchases/{id}", s.with(s.handleDeletePurchase))
	mux.HandleFunc("POST /api/purchases/{id}/restore", s.with(s.handleRestorePurchase))

	mux.HandleFunc("GET /api/accounts", s.with(s.handleListAccounts))
	mux.HandleFunc("POST /api/accounts", s.with(s.handleCreateAccount))
	mux.HandleFunc("GET /api/accounts/{id}", s.with(s.handleGetAccount))
	mux.HandleFunc("PUT /api/accounts/{id}", s.with(s.handleUpdateAccount))
	mux.HandleFunc("DELETE /api/accounts/{id}", s.with(s.handleDeleteAccount))
	mux.HandleFunc("GET /api/accounts/{id}/projection", s.with(s.handleAccountProjection))

	mux.HandleFunc("GET /api/income", s.with(s.handleIncome))
	mux.HandleFunc("GET /api/summary", s.with(s.handleMonthSummary))
	mux.HandleFunc("GET /api/networth", s.with(s.handleNetWorth))
	mux.HandleFunc("GET /api/networth/projection", s.with(s.handleNetWorthProjection))

	return s
}

// startCacheCleanup runs periodic cleanup for the report caches.
func (s *Server) startCacheCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			monthCleaned := s.monthCache.CleanExpired()
			networthCleaned := s.networthCache.CleanExpired()
			if monthCleaned > 0 || networthCleaned > 0 {
				slog.Debug("Cache cleanup completed",
					"month_entries_removed", monthCleaned,
					"networth_entries_removed", networthCleaned)
			}
		case <-s.stopCacheCleanup:
			return
		}
	}
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.stopCacheCleanup != nil {
			close(s.stopCacheCleanup)
		}
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// with adds security headers, rate limiting and request logging.
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

		if isMutating(r.Method) && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded",
				"client_ip", clientIP,
				"method", r.Method,
				"url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded"})
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds())
	}
}

type requestIDKey struct{}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// invalidateReports drops cached reports after a mutation.
func (s *Server) invalidateReports() {
	s.monthCache.Clear()
	s.networthCache.Clear()
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// generateRequestID creates a unique request ID for tracing.
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

func monthCacheKey(year int, month time.Month) string {
	return fmt.Sprintf("%04d-%02d", year, int(month))
}

func networthCacheKey(historyLimit int) string {
	return fmt.Sprintf("networth-%d", historyLimit)
}
