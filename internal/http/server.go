// Package http is the JSON surface of the client: transaction browsing
// and creation plus the receipt scan flow. It is the user-facing layer
// that the error taxonomy surfaces through.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"perfin/internal/scan"
	"perfin/internal/store"
)

type Server struct {
	http.Server

	store *store.Store
	scan  *scan.Service
}

// NewServer configures routes, returning a ready-to-run http.Server.
func NewServer(addr string, st *store.Store, sc *scan.Service) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: requestLogger(mux),
		},
		store: st,
		scan:  sc,
	}

	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("GET /api/transactions/options", s.handleFilterOptions)
	mux.HandleFunc("POST /api/scan/start", s.handleScanStart)
	mux.HandleFunc("POST /api/scan/capture", s.handleScanCapture)
	mux.HandleFunc("POST /api/scan/reset", s.handleScanReset)
	mux.HandleFunc("GET /api/scan", s.handleScanStatus)
	mux.HandleFunc("DELETE /api/scan", s.handleScanClose)

	return s
}

// statusWriter captures the status code for request logging.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		requestID := generateRequestID()

		next.ServeHTTP(sw, r)

		slog.InfoContext(r.Context(), "Request handled",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status_code", sw.status,
			"duration_ms", time.Since(start).Milliseconds())
	})
}
