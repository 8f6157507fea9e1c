package http

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"perfin/internal/core"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeError sends a human-readable notice; every taxonomy error
// surfaces to the user through this shape.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// parseCriteria builds filter criteria from the list endpoint's query
// parameters. Every field is independently optional.
func parseCriteria(r *http.Request) (core.Criteria, error) {
	q := r.URL.Query()
	var c core.Criteria

	if v := strings.TrimSpace(q.Get("start")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return core.Criteria{}, fmt.Errorf("start: %w", err)
		}
		c.Start = d
	}
	if v := strings.TrimSpace(q.Get("end")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return core.Criteria{}, fmt.Errorf("end: %w", err)
		}
		c.End = d
	}
	c.Store = strings.TrimSpace(q.Get("store"))
	c.Category = strings.TrimSpace(q.Get("category"))

	bucket := core.AmountBucket(strings.TrimSpace(q.Get("amount")))
	if !bucket.IsValid() {
		return core.Criteria{}, fmt.Errorf("amount: unknown bucket %q", bucket)
	}
	c.Bucket = bucket
	return c, nil
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}
