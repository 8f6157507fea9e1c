package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// FilterLocation is the single reference timezone for calendar-date
// handling. Wire instants are truncated to their calendar date in this
// zone, never in the zone the process happens to run in.
var FilterLocation = time.UTC

type (
	// Date is a calendar date with no time-of-day semantics, pinned to
	// midnight in FilterLocation.
	Date struct {
		time.Time
	}

	// Money is an amount in integer cents.
	Money struct {
		Cents int64
	}

	// Transaction is a backend-confirmed purchase record. Immutable in
	// this client once confirmed.
	Transaction struct {
		ID         string `json:"id,omitempty"`
		Date       Date   `json:"date"`
		Store      string `json:"store"`
		Category   string `json:"category"`
		Amount     Money  `json:"amount"`
		ReceiptURL string `json:"receiptUrl,omitempty"`
	}

	// Draft is a user-entered transaction not yet confirmed by the
	// backend.
	Draft struct {
		Date       Date   `json:"date"`
		Store      string `json:"store"`
		Category   string `json:"category"`
		Amount     Money  `json:"amount"`
		ReceiptURL string `json:"receiptUrl,omitempty"`
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrEmptyStore    = errors.New("empty store")
	ErrEmptyCategory = errors.New("empty category")
	ErrInvalidDate   = errors.New("invalid date")
)

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, FilterLocation)}
}

// DateOf truncates an instant to its calendar date in FilterLocation.
func DateOf(t time.Time) Date {
	y, m, d := t.In(FilterLocation).Date()
	return NewDate(y, int(m), d)
}

// IsEmpty reports whether the date is unset, for optional criteria fields.
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Before reports whether d falls on an earlier calendar day than other.
// Both operands are midnight in FilterLocation, so the underlying instant
// comparison is exact.
func (d Date) Before(other Date) bool { return d.Time.Before(other.Time) }

// After reports whether d falls on a later calendar day than other.
func (d Date) After(other Date) bool { return d.Time.After(other.Time) }

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format("2006-01-02")
}

// ParseDate accepts a plain calendar date (2006-01-02) or an RFC3339
// instant, which gets truncated in FilterLocation.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.ParseInLocation("2006-01-02", s, FilterLocation); err == nil {
		return Date{Time: t}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return DateOf(t), nil
	}
	return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// MarshalJSON emits the amount as a plain decimal number, matching the
// backend's wire format.
func (m Money) MarshalJSON() ([]byte, error) {
	neg := ""
	cents := m.Cents
	if cents < 0 {
		neg = "-"
		cents = -cents
	}
	return []byte(fmt.Sprintf("%s%d.%02d", neg, cents/100, cents%100)), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	cents, err := ParseDecimalToCents(s)
	if err != nil {
		return err
	}
	m.Cents = cents
	return nil
}

func (t Transaction) Validate() error {
	return validateFields(t.Date, t.Store, t.Category, t.Amount)
}

func (d Draft) Validate() error {
	return validateFields(d.Date, d.Store, d.Category, d.Amount)
}

func validateFields(date Date, store, category string, amount Money) error {
	if err := date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(store) == "" {
		return ErrEmptyStore
	}
	if strings.TrimSpace(category) == "" {
		return ErrEmptyCategory
	}
	return amount.Validate()
}
