package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"perfin/internal/core"
)

func TestClientList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/transactions" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"1","date":"2024-01-10","store":"Amazon","category":"Shopping","amount":75}]`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	txns, err := c.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(txns) != 1 || txns[0].Store != "Amazon" || txns[0].Amount.Cents != 7500 {
		t.Fatalf("unexpected result: %+v", txns)
	}
}

func TestClientListServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	if _, err := New(srv.URL).List(context.Background()); err == nil {
		t.Fatalf("expected error on 500")
	}
}

func TestClientCreate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/transactions" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var draft core.Draft
		if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
			t.Fatalf("decode draft: %v", err)
		}
		created := core.Transaction{
			ID: "srv-7", Date: draft.Date, Store: draft.Store,
			Category: draft.Category, Amount: draft.Amount, ReceiptURL: draft.ReceiptURL,
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(created)
	}))
	defer srv.Close()

	draft := core.Draft{
		Date: core.NewDate(2024, 3, 1), Store: "Shell", Category: "Gas",
		Amount: core.Money{Cents: 4200},
	}
	created, err := New(srv.URL).Create(context.Background(), draft)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID != "srv-7" || created.Amount.Cents != 4200 {
		t.Fatalf("unexpected created record: %+v", created)
	}
}

func TestClientCreateRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad draft", http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := New(srv.URL).Create(context.Background(), core.Draft{
		Date: core.NewDate(2024, 3, 1), Store: "a", Category: "b", Amount: core.Money{Cents: 1},
	})
	if err == nil {
		t.Fatalf("expected error on 400")
	}
}
