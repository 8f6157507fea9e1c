package events

import (
	"encoding/json"
	"time"

	"perfin/internal/core"
)

// TransactionCreatedMessage announces a backend-confirmed transaction.
// Consumers needing the full record fetch it from the backend by id.
type TransactionCreatedMessage struct {
	TransactionID string    `json:"transaction_id"`
	Store         string    `json:"store"`
	Category      string    `json:"category"`
	AmountCents   int64     `json:"amount_cents"`
	Timestamp     time.Time `json:"timestamp"`
}

func NewTransactionCreatedMessage(t core.Transaction) *TransactionCreatedMessage {
	return &TransactionCreatedMessage{
		TransactionID: t.ID,
		Store:         t.Store,
		Category:      t.Category,
		AmountCents:   t.Amount.Cents,
		Timestamp:     time.Now(),
	}
}

func (m *TransactionCreatedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func TransactionCreatedMessageFromJSON(data []byte) (*TransactionCreatedMessage, error) {
	var msg TransactionCreatedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
