// Package rest is the JSON-over-HTTP adapter for the remote transaction
// service.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"perfin/internal/core"
)

const defaultTimeout = 10 * time.Second

// Client talks to the transaction service at baseURL. It implements
// backend.Client.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// List fetches the full transaction collection.
func (c *Client) List(ctx context.Context) ([]core.Transaction, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/transactions", nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get transactions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get transactions: unexpected status %d", resp.StatusCode)
	}

	var txns []core.Transaction
	if err := json.NewDecoder(resp.Body).Decode(&txns); err != nil {
		return nil, fmt.Errorf("decode transactions: %w", err)
	}
	return txns, nil
}

// Create submits a draft and decodes the confirmed record.
func (c *Client) Create(ctx context.Context, draft core.Draft) (core.Transaction, error) {
	body, err := json.Marshal(draft)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("encode draft: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transactions", bytes.NewReader(body))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("post transaction: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return core.Transaction{}, fmt.Errorf("post transaction: status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var created core.Transaction
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return core.Transaction{}, fmt.Errorf("decode created transaction: %w", err)
	}
	return created, nil
}
