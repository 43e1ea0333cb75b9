package model

import "time"

// Payment metadata keys attached to processor objects.
const (
	MetadataKind        = "kind"
	MetadataOrderNumber = "order_number"
	MetadataTipID       = "tip_id"

	PaymentKindBooking = "booking"
	PaymentKindTip     = "tip"
)

// PaymentIntent is the processor charge created at checkout or for a tip.
type PaymentIntent struct {
	ID           string
	ClientSecret string
	Status       string
}

// TransferResult is the processor answer to a transfer request.
type TransferResult struct {
	ID        string
	Status    TransferStatus
	Simulated bool
}

// PaymentEventType is the normalised kind of processor notification.
type PaymentEventType string

const (
	PaymentEventSucceeded       PaymentEventType = "payment_succeeded"
	PaymentEventFailed          PaymentEventType = "payment_failed"
	PaymentEventTransferChanged PaymentEventType = "transfer_changed"
	PaymentEventIgnored         PaymentEventType = "ignored"
)

// PaymentEvent is a verified processor notification.
type PaymentEvent struct {
	ID              string
	Type            PaymentEventType
	RawType         string
	PaymentIntentID string
	AmountCents     int64
	TransferID      string
	TransferStatus  TransferStatus
	FailureReason   string
	Metadata        map[string]string
}

// Kind returns the payment kind stored in metadata.
func (e PaymentEvent) Kind() string {
	if e.Metadata == nil {
		return ""
	}
	return e.Metadata[MetadataKind]
}

// WebhookEvent records a processed notification for deduplication.
type WebhookEvent struct {
	Provider        string
	EventID         string
	Type            string
	ReceivedAt      time.Time
	ProcessingError string
}

// IdempotentResponse is the stored outcome of a mutating request.
type IdempotentResponse struct {
	Completed   bool   `json:"completed"`
	Status      int    `json:"status,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body,omitempty"`
}

// PaymentRequest asks the processor to collect money from a customer.
type PaymentRequest struct {
	AmountCents    int64
	Currency       string
	Description    string
	Metadata       map[string]string
	IdempotencyKey string
}

// RefundRequest returns a collected charge in full.
type RefundRequest struct {
	PaymentIntentID string
	IdempotencyKey  string
}

// TransferRequest moves money from the platform balance to a connected account.
type TransferRequest struct {
	AmountCents    int64
	Currency       string
	Destination    string
	TransferGroup  string
	Metadata       map[string]string
	IdempotencyKey string
}
