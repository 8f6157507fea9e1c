// Package memory is an in-process stand-in for the remote transaction
// service, used for demo wiring and tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"perfin/internal/core"
)

type Store struct {
	mu    sync.Mutex
	next  int
	items []core.Transaction
}

func New(seed []core.Transaction) *Store {
	s := &Store{next: len(seed) + 1}
	s.items = append(s.items, seed...)
	return s
}

// NewWithSamples seeds the store with a handful of demo purchases.
func NewWithSamples() *Store {
	return New([]core.Transaction{
		{ID: "1", Date: core.NewDate(2024, 1, 10), Store: "Amazon", Category: "Shopping", Amount: core.Money{Cents: 7500}},
		{ID: "2", Date: core.NewDate(2024, 1, 14), Store: "Walmart", Category: "Groceries", Amount: core.Money{Cents: 4230}},
		{ID: "3", Date: core.NewDate(2024, 1, 21), Store: "Shell", Category: "Gas", Amount: core.Money{Cents: 4810}},
		{ID: "4", Date: core.NewDate(2024, 2, 2), Store: "Netflix", Category: "Entertainment", Amount: core.Money{Cents: 1549}},
		{ID: "5", Date: core.NewDate(2024, 2, 11), Store: "Apple", Category: "Tech", Amount: core.Money{Cents: 129900}},
	})
}

// List returns a copy of the stored collection.
func (s *Store) List(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.items...), nil
}

// Create validates the draft, assigns an id and appends it, echoing what
// the real service does.
func (s *Store) Create(_ context.Context, draft core.Draft) (core.Transaction, error) {
	if err := draft.Validate(); err != nil {
		return core.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t := core.Transaction{
		ID:         fmt.Sprintf("mem:%d", s.next),
		Date:       draft.Date,
		Store:      draft.Store,
		Category:   draft.Category,
		Amount:     draft.Amount,
		ReceiptURL: draft.ReceiptURL,
	}
	s.next++
	s.items = append(s.items, t)
	return t, nil
}
