package dto

import "github.com/shopspring/decimal"

// TipRequest adds a tip to an approved order.
type TipRequest struct {
	OrderNumber string          `json:"order_number" binding:"required,notblank"`
	Amount      decimal.Decimal `json:"amount"`
	Message     string          `json:"message"`
}

// TipResponse describes a tip and how to pay for it.
type TipResponse struct {
	ID            int64  `json:"id"`
	Amount        string `json:"amount"`
	PaymentStatus string `json:"payment_status"`
	ClientSecret  string `json:"client_secret,omitempty"`
}
