package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// OutboxKind selects how a queued side effect is delivered.
type OutboxKind string

const (
	OutboxKindEmail    OutboxKind = "email"
	OutboxKindRefund   OutboxKind = "refund"
	OutboxKindTransfer OutboxKind = "transfer"
)

// OutboxMessage is a side effect committed together with the state change that caused it.
type OutboxMessage struct {
	ID            uuid.UUID
	Kind          OutboxKind
	Payload       json.RawMessage
	Attempts      int
	NextAttemptAt time.Time
	LastError     string
	Dead          bool
	CreatedAt     time.Time
	ProcessedAt   *time.Time
}

// RefundPayload asks the relay to return a booking charge to the customer.
type RefundPayload struct {
	OrderID         int64  `json:"order_id"`
	OrderNumber     string `json:"order_number"`
	PaymentIntentID string `json:"payment_intent_id"`
	AmountCents     int64  `json:"amount_cents"`
}

// TransferPayload asks the relay to pay a tip out to the celebrity.
type TransferPayload struct {
	OrderID     int64  `json:"order_id"`
	OrderNumber string `json:"order_number"`
	TipID       int64  `json:"tip_id"`
	CelebrityID int64  `json:"celebrity_id"`
	Destination string `json:"destination"`
	AmountCents int64  `json:"amount_cents"`
}

// NewOutboxMessage encodes payload into a message ready for immediate delivery.
func NewOutboxMessage(kind OutboxKind, payload any) (OutboxMessage, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return OutboxMessage{}, fmt.Errorf("encode %s payload: %w", kind, err)
	}
	return OutboxMessage{
		ID:            uuid.New(),
		Kind:          kind,
		Payload:       data,
		NextAttemptAt: time.Now(),
	}, nil
}

// Decode unmarshals the payload into dst.
func (m OutboxMessage) Decode(dst any) error {
	if err := json.Unmarshal(m.Payload, dst); err != nil {
		return fmt.Errorf("decode %s payload: %w", m.Kind, err)
	}
	return nil
}
