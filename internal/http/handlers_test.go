package http

import (
	"context"
	"encoding/json"
	"image"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"perfin/internal/backend/memory"
	"perfin/internal/capture"
	"perfin/internal/scan"
	"perfin/internal/store"
	"perfin/internal/upload"
)

type stubStream struct{}

func (stubStream) ReadFrame(_ context.Context) (image.Image, error) {
	return image.NewRGBA(image.Rect(0, 0, 4, 4)), nil
}
func (stubStream) Close() error { return nil }

type stubCamera struct{ err error }

func (c stubCamera) Open(_ context.Context, _ capture.Facing) (capture.Stream, error) {
	if c.err != nil {
		return nil, c.err
	}
	return stubStream{}, nil
}

type stubWriter struct{}

func (stubWriter) Put(_ context.Context, key string, _ []byte, _ string) (string, error) {
	return "https://bucket.s3.us-east-1.amazonaws.com/" + key, nil
}

func newTestServer(t *testing.T, camera capture.Camera) (*Server, *store.Store) {
	t.Helper()
	st := store.New(memory.NewWithSamples(), nil)
	if err := st.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	sc := scan.New(camera, stubWriter{})
	t.Cleanup(sc.Close)
	return NewServer(":0", st, sc), st
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestListTransactions_Filtered(t *testing.T) {
	srv, _ := newTestServer(t, stubCamera{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/transactions?category=Groceries&amount=0-50", nil)
	srv.Server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Count        int `json:"count"`
		Transactions []struct {
			Store string `json:"store"`
		} `json:"transactions"`
	}
	decodeBody(t, rec, &body)
	if body.Count != 1 || body.Transactions[0].Store != "Walmart" {
		t.Fatalf("expected the single Walmart groceries purchase, got %+v", body)
	}
}

func TestListTransactions_BadBucket(t *testing.T) {
	srv, _ := newTestServer(t, stubCamera{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/transactions?amount=50-100", nil)
	srv.Server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCreateTransaction(t *testing.T) {
	srv, st := newTestServer(t, stubCamera{})

	payload := `{"date":"2024-03-01","store":"Target","category":"Shopping","amount":12.50}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/transactions", strings.NewReader(payload))
	srv.Server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created struct {
		ID     string  `json:"id"`
		Amount float64 `json:"amount"`
	}
	decodeBody(t, rec, &created)
	if created.ID == "" {
		t.Fatalf("expected backend-assigned id")
	}
	if created.Amount != 12.50 {
		t.Fatalf("expected amount 12.50, got %v", created.Amount)
	}
	if len(st.Transactions()) != 6 {
		t.Fatalf("expected 6 transactions after create, got %d", len(st.Transactions()))
	}
}

func TestCreateTransaction_InvalidDraft(t *testing.T) {
	srv, st := newTestServer(t, stubCamera{})

	payload := `{"date":"2024-03-01","store":"  ","category":"Shopping","amount":12.50}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/transactions", strings.NewReader(payload))
	srv.Server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(st.Transactions()) != 5 {
		t.Fatalf("invalid draft must not reach the collection")
	}
}

func TestCreateTransaction_AttachesReceipt(t *testing.T) {
	srv, _ := newTestServer(t, stubCamera{})

	doScan := func(method, path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		srv.Server.Handler.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
		return rec
	}
	if rec := doScan("POST", "/api/scan/start"); rec.Code != http.StatusOK {
		t.Fatalf("scan start: %d %s", rec.Code, rec.Body.String())
	}
	if rec := doScan("POST", "/api/scan/capture"); rec.Code != http.StatusAccepted {
		t.Fatalf("scan capture: %d %s", rec.Code, rec.Body.String())
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		rec := doScan("GET", "/api/scan")
		var status struct {
			Uploading  bool   `json:"uploading"`
			ReceiptURL string `json:"receiptUrl"`
		}
		decodeBody(t, rec, &status)
		if !status.Uploading && status.ReceiptURL != "" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("upload never resolved: %+v", status)
		}
		time.Sleep(5 * time.Millisecond)
	}

	payload := `{"date":"2024-03-02","store":"Shell","category":"Gas","amount":30}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/transactions", strings.NewReader(payload))
	srv.Server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created struct {
		ReceiptURL string `json:"receiptUrl"`
	}
	decodeBody(t, rec, &created)
	if !strings.HasPrefix(created.ReceiptURL, "https://bucket.s3.us-east-1.amazonaws.com/receipts/receipt-") {
		t.Fatalf("expected attached receipt URL, got %q", created.ReceiptURL)
	}
}

func TestFilterOptions(t *testing.T) {
	srv, _ := newTestServer(t, stubCamera{})

	rec := httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/transactions/options", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Stores     []string `json:"stores"`
		Categories []string `json:"categories"`
		Amounts    []string `json:"amounts"`
	}
	decodeBody(t, rec, &body)
	if len(body.Stores) != 5 || body.Stores[0] != "Amazon" {
		t.Fatalf("unexpected stores: %v", body.Stores)
	}
	if len(body.Amounts) != 3 {
		t.Fatalf("expected 3 amount buckets, got %v", body.Amounts)
	}
}

func TestScanLifecycleStatuses(t *testing.T) {
	srv, _ := newTestServer(t, stubCamera{})

	do := func(method, path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		srv.Server.Handler.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
		return rec
	}

	// Capture before start is a state conflict.
	if rec := do("POST", "/api/scan/capture"); rec.Code != http.StatusConflict {
		t.Fatalf("capture while idle: expected 409, got %d", rec.Code)
	}
	if rec := do("POST", "/api/scan/start"); rec.Code != http.StatusOK {
		t.Fatalf("start: expected 200, got %d", rec.Code)
	}
	// Double start is a state conflict too.
	if rec := do("POST", "/api/scan/start"); rec.Code != http.StatusConflict {
		t.Fatalf("double start: expected 409, got %d", rec.Code)
	}
	// Reset without a photo.
	if rec := do("POST", "/api/scan/reset"); rec.Code != http.StatusConflict {
		t.Fatalf("reset without photo: expected 409, got %d", rec.Code)
	}
	if rec := do("DELETE", "/api/scan"); rec.Code != http.StatusOK {
		t.Fatalf("close: expected 200, got %d", rec.Code)
	}
	// Closing released the camera, so start works again.
	if rec := do("POST", "/api/scan/start"); rec.Code != http.StatusOK {
		t.Fatalf("restart after close: expected 200, got %d", rec.Code)
	}
}

func TestScanStart_PermissionDenied(t *testing.T) {
	srv, _ := newTestServer(t, stubCamera{err: capture.ErrPermissionDenied})

	rec := httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, httptest.NewRequest("POST", "/api/scan/start", nil))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestScanStart_NoDevice(t *testing.T) {
	srv, _ := newTestServer(t, stubCamera{err: capture.ErrNoDevice})

	rec := httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, httptest.NewRequest("POST", "/api/scan/start", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

var _ upload.ObjectWriter = stubWriter{}
