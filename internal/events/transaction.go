package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	TopicTransactionCreated = "transactions.created"
	TopicTransactionUpdated = "transactions.updated"
	TopicTransactionDeleted = "transactions.deleted"
)

type EventType string

const (
	Created EventType = "CREATED"
	Updated EventType = "UPDATED"
	Deleted EventType = "DELETED"
)

// Topic returns the transaction topic for t.
func (t EventType) Topic() string {
	switch t {
	case Created:
		return TopicTransactionCreated
	case Updated:
		return TopicTransactionUpdated
	default:
		return TopicTransactionDeleted
	}
}

type TransactionEvent struct {
	EventID         string          `json:"eventId"`
	EventType       EventType       `json:"eventType"`
	TransactionID   int64           `json:"transactionId"`
	UserID          int64           `json:"userId"`
	Type            string          `json:"type"`
	Category        string          `json:"category"`
	Description     string          `json:"description"`
	Amount          decimal.Decimal `json:"amount"`
	TransactionDate string          `json:"transactionDate"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// NewTransactionEvent stamps a fresh event id and creation time.
func NewTransactionEvent(eventType EventType) TransactionEvent {
	return TransactionEvent{
		EventID:   uuid.NewString(),
		EventType: eventType,
		CreatedAt: time.Now().UTC(),
	}
}
