// Package http is the thin presentation shell over the facts and
// analytics layers: a JSON API mirroring the dashboard views. No
// aggregation logic lives here.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"koksgladje/internal/facts"
	"koksgladje/internal/log"
)

// DataSource is the accessor surface the handlers consume.
type DataSource interface {
	Transactions(ctx context.Context) ([]facts.Transaction, error)
	LineItems(ctx context.Context) ([]facts.LineItem, error)
	ProductsWithCategories(ctx context.Context) ([]facts.Product, error)
	Stores(ctx context.Context) ([]facts.Store, error)
	Customers(ctx context.Context) ([]facts.Customer, error)
	Categories(ctx context.Context) ([]facts.Category, error)
	SalesByCategory(ctx context.Context) ([]facts.CategorySales, error)
	MonthlySalesByCategory(ctx context.Context) ([]facts.MonthlyCategorySales, error)
}

// Server serves the analytics API.
type Server struct {
	http.Server
	data          DataSource
	heatmapMonths int
}

// NewServer configures routes, returning a ready-to-run server.
// heatmapMonths is the default window for the store×month grid.
func NewServer(addr string, data DataSource, heatmapMonths int, logger *log.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: log.Middleware(logger.WithComponent(log.ComponentHTTP))(mux),
		},
		data:          data,
		heatmapMonths: heatmapMonths,
	}

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", s.withRequestLog(s.handleReady))

	mux.HandleFunc("/api/status", s.withRequestLog(s.handleStatus))

	mux.HandleFunc("/api/categories", s.withRequestLog(s.handleCategories))
	mux.HandleFunc("/api/categories/sales", s.withRequestLog(s.handleCategorySales))
	mux.HandleFunc("/api/categories/monthly", s.withRequestLog(s.handleMonthlyCategorySales))

	mux.HandleFunc("/api/insights/categories", s.withRequestLog(s.handleInsightCategories))
	mux.HandleFunc("/api/insights/monthly", s.withRequestLog(s.handleInsightMonthly))
	mux.HandleFunc("/api/insights/weekdays", s.withRequestLog(s.handleInsightWeekdays))
	mux.HandleFunc("/api/insights/heatmap", s.withRequestLog(s.handleHeatmap))

	mux.HandleFunc("/api/products/top", s.withRequestLog(s.handleTopProducts))
	mux.HandleFunc("/api/products/table", s.withRequestLog(s.handleProductTable))

	mux.HandleFunc("/api/stores/sales", s.withRequestLog(s.handleStoreSales))

	mux.HandleFunc("/api/transactions/months", s.withRequestLog(s.handleMonths))
	mux.HandleFunc("/api/transactions/summary", s.withRequestLog(s.handleMonthSummary))

	return s
}

// withRequestLog adds security headers, a request-scoped logger carrying
// a request id, and a completion log around a handler.
func (s *Server) withRequestLog(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		logger := log.FromContext(r.Context()).With(
			log.FieldRequestID, generateRequestID(),
			log.FieldClientIP, clientIP,
		)
		ctx := context.WithValue(r.Context(), log.LoggerContextKey, logger)
		r = r.WithContext(ctx)

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		log.LogHTTPEnd(ctx, r, rw.statusCode, time.Since(start).Milliseconds())
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// generateRequestID creates a unique request ID for tracing
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		// Fallback to timestamp if random fails
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady verifies the storage round-trip works before reporting ready.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if _, err := s.data.Stores(ctx); err != nil {
		log.FromContext(ctx).ErrorContext(ctx, "Readiness check failed", log.FieldError, err.Error())
		http.Error(w, "not ready", http.StatusServiceUnavailable)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
