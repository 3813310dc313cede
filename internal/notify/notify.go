// Package notify publishes materialized-occurrence events so downstream
// consumers (alerts, exports) can react without polling the ledger.
package notify

import (
	"context"
	"encoding/json"
	"time"
)

// OccurrenceMessage describes one expense materialized from a recurring
// template. Consumers fetch the full records by ID.
type OccurrenceMessage struct {
	UserID             string    `json:"user_id"`
	ExpenseID          string    `json:"expense_id"`
	RecurringExpenseID string    `json:"recurring_expense_id"`
	Description        string    `json:"description"`
	Amount             float64   `json:"amount"`
	Currency           string    `json:"currency"`
	Timestamp          time.Time `json:"timestamp"`
}

// ToJSON converts the message to JSON bytes.
func (m *OccurrenceMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// OccurrenceMessageFromJSON creates a message from JSON bytes.
func OccurrenceMessageFromJSON(data []byte) (*OccurrenceMessage, error) {
	var msg OccurrenceMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// Publisher delivers occurrence messages to some transport.
type Publisher interface {
	PublishOccurrence(ctx context.Context, msg OccurrenceMessage) error
	Close() error
}

// NopPublisher discards every message. Used when no broker is configured.
type NopPublisher struct{}

// PublishOccurrence discards the message.
func (NopPublisher) PublishOccurrence(context.Context, OccurrenceMessage) error { return nil }

// Close is a no-op.
func (NopPublisher) Close() error { return nil }
