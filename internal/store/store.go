// Package store owns the client-side transaction collection, the single
// source of truth for the filter engine and the submission flow.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"perfin/internal/backend"
	"perfin/internal/core"
	"perfin/internal/events"
)

var (
	// ErrFetchFailed wraps transport failures while loading the
	// collection. The prior collection is retained.
	ErrFetchFailed = errors.New("transaction fetch failed")

	// ErrInvalidDraft wraps local validation failures. The backend is
	// never contacted for an invalid draft.
	ErrInvalidDraft = errors.New("invalid draft")

	// ErrSubmissionFailed wraps backend rejections or transport failures
	// on create. The local collection is left unchanged.
	ErrSubmissionFailed = errors.New("transaction submission failed")
)

// Store keeps the in-memory transaction collection in sync with the
// backend: wholesale replace on Load, append on successful Create. Nothing
// else mutates the collection.
type Store struct {
	mu      sync.RWMutex
	backend backend.Client
	pub     *events.Publisher
	txns    []core.Transaction
}

// New creates a store backed by the given client. The publisher is
// optional; nil skips event publication.
func New(b backend.Client, pub *events.Publisher) *Store {
	return &Store{backend: b, pub: pub}
}

// Load fetches the full collection and replaces the local one wholesale.
// On failure the prior collection (possibly empty) is retained.
func (s *Store) Load(ctx context.Context) error {
	txns, err := s.backend.List(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	s.mu.Lock()
	s.txns = txns
	s.mu.Unlock()

	slog.InfoContext(ctx, "Loaded transaction collection",
		"count", len(txns),
		"component", "store",
		"operation", "load")
	return nil
}

// Create validates the draft locally, submits it and appends the
// backend-confirmed transaction. No optimistic insert: a backend failure
// leaves the collection unchanged.
func (s *Store) Create(ctx context.Context, draft core.Draft) (core.Transaction, error) {
	if err := draft.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("%w: %w", ErrInvalidDraft, err)
	}

	created, err := s.backend.Create(ctx, draft)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("%w: %v", ErrSubmissionFailed, err)
	}

	s.mu.Lock()
	s.txns = append(s.txns, created)
	s.mu.Unlock()

	slog.InfoContext(ctx, "Transaction created",
		"transaction_id", created.ID,
		"store", created.Store,
		"category", created.Category,
		"amount_cents", created.Amount.Cents,
		"component", "store",
		"operation", "create")

	s.publishCreated(ctx, created)
	return created, nil
}

// Transactions returns a snapshot copy of the collection in backend order.
func (s *Store) Transactions() []core.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Transaction(nil), s.txns...)
}

func (s *Store) publishCreated(ctx context.Context, t core.Transaction) {
	if s.pub == nil {
		return
	}
	if err := s.pub.PublishTransactionCreated(ctx, events.NewTransactionCreatedMessage(t)); err != nil {
		// The transaction is confirmed either way; event delivery is
		// best-effort.
		slog.ErrorContext(ctx, "Failed to publish transaction created event",
			"transaction_id", t.ID,
			"error", err)
	}
}
