package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CheckoutRequest books a celebrity.
type CheckoutRequest struct {
	CelebritySlug string `json:"celebrity_slug" binding:"required,notblank"`
	RecipientName string `json:"recipient_name" binding:"required,notblank"`
	Occasion      string `json:"occasion"`
	Instructions  string `json:"instructions"`
}

// CheckoutResponse carries the new order and the payment client secret.
type CheckoutResponse struct {
	Order        OrderResponse `json:"order"`
	ClientSecret string        `json:"client_secret"`
}

// OrderResponse is an order with its derived statuses.
type OrderResponse struct {
	ID                int64      `json:"id"`
	Number            string     `json:"number"`
	State             string     `json:"state"`
	PaymentStatus     string     `json:"payment_status"`
	FulfillmentStatus string     `json:"fulfillment_status"`
	ApprovalStatus    string     `json:"approval_status"`
	CancelReason      string     `json:"cancel_reason,omitempty"`
	RefundStatus      string     `json:"refund_status,omitempty"`
	TransferStatus    string     `json:"transfer_status,omitempty"`
	RecipientName     string     `json:"recipient_name"`
	Occasion          string     `json:"occasion,omitempty"`
	Instructions      string     `json:"instructions,omitempty"`
	Total             string     `json:"total"`
	CelebrityAmount   string     `json:"celebrity_amount"`
	PlatformFee       string     `json:"platform_fee"`
	Tips              string     `json:"tips"`
	RevisionCount     int        `json:"revision_count"`
	HasVideo          bool       `json:"has_video"`
	CreatedAt         time.Time  `json:"created_at"`
	ApprovedAt        *time.Time `json:"approved_at,omitempty"`
}

// BookingDecisionRequest accepts or declines a booking request.
type BookingDecisionRequest struct {
	Action string `json:"action" binding:"required"`
}

// ApproveRequest approves a delivery, optionally tipping and reviewing in one go.
type ApproveRequest struct {
	TipAmount  *decimal.Decimal `json:"tip_amount"`
	TipMessage string           `json:"tip_message"`
	Rating     *int             `json:"rating"`
	Comment    string           `json:"comment"`
}

// ApproveResponse reports the payout and any extras created.
type ApproveResponse struct {
	Order           OrderResponse   `json:"order"`
	CelebrityAmount string          `json:"celebrity_amount"`
	PlatformFee     string          `json:"platform_fee"`
	TransferID      string          `json:"transfer_id,omitempty"`
	Simulated       bool            `json:"simulated"`
	Tip             *TipResponse    `json:"tip,omitempty"`
	Review          *ReviewResponse `json:"review,omitempty"`
	Warnings        []string        `json:"warnings,omitempty"`
}

// DeclineRequest rejects a delivery.
type DeclineRequest struct {
	Reasons  []string `json:"reasons"`
	Feedback string   `json:"feedback"`
}

// VideoURLResponse is a download link for the delivered video.
type VideoURLResponse struct {
	URL string `json:"url"`
}
