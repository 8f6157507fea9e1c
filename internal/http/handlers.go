package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"perfin/internal/capture"
	"perfin/internal/core"
	"perfin/internal/store"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	criteria, err := parseCriteria(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if r.URL.Query().Get("refresh") == "true" {
		if err := s.store.Load(r.Context()); err != nil {
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
	}

	txns := core.Filter(s.store.Transactions(), criteria)
	writeJSON(w, http.StatusOK, map[string]any{
		"transactions": txns,
		"count":        len(txns),
	})
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var draft core.Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	draft.Store = sanitizeInput(draft.Store)
	draft.Category = sanitizeInput(draft.Category)

	// A freshly uploaded receipt is attached automatically unless the
	// draft already carries a URL.
	if draft.ReceiptURL == "" && s.scan != nil {
		draft.ReceiptURL = s.scan.ReceiptURL()
	}

	created, err := s.store.Create(r.Context(), draft)
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// handleFilterOptions serves the dropdown values for the filter UI,
// derived from the loaded collection.
func (s *Server) handleFilterOptions(w http.ResponseWriter, r *http.Request) {
	txns := s.store.Transactions()
	writeJSON(w, http.StatusOK, map[string]any{
		"stores":     core.DistinctStores(txns),
		"categories": core.DistinctCategories(txns),
		"amounts":    []core.AmountBucket{core.BucketLow, core.BucketMid, core.BucketHigh},
	})
}

func (s *Server) handleScanStart(w http.ResponseWriter, r *http.Request) {
	if err := s.scan.Start(r.Context()); err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.scan.Status())
}

func (s *Server) handleScanCapture(w http.ResponseWriter, r *http.Request) {
	photo, _, err := s.scan.Capture(r.Context())
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{
		"captureId": photo.ID,
		"takenAt":   photo.TakenAt,
		"preview":   photo.DataURL,
		"status":    s.scan.Status(),
	})
}

func (s *Server) handleScanReset(w http.ResponseWriter, r *http.Request) {
	if err := s.scan.Reset(r.Context()); err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.scan.Status())
}

func (s *Server) handleScanStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.scan.Status())
}

func (s *Server) handleScanClose(w http.ResponseWriter, r *http.Request) {
	s.scan.Close()
	writeJSON(w, http.StatusOK, s.scan.Status())
}

// statusForError maps the domain error taxonomy onto HTTP statuses.
func statusForError(err error) int {
	switch {
	case errors.Is(err, store.ErrInvalidDraft):
		return http.StatusUnprocessableEntity
	case errors.Is(err, store.ErrFetchFailed),
		errors.Is(err, store.ErrSubmissionFailed):
		return http.StatusBadGateway
	case errors.Is(err, capture.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, capture.ErrNoDevice):
		return http.StatusNotFound
	case errors.Is(err, capture.ErrSessionActive),
		errors.Is(err, capture.ErrNotStreaming),
		errors.Is(err, capture.ErrNoPhoto):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
