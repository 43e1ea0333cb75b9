package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OnboardRequest creates the caller's celebrity profile.
type OnboardRequest struct {
	DisplayName string          `json:"display_name" binding:"required,notblank"`
	Price       decimal.Decimal `json:"price"`
}

// PayoutAccountRequest links a connected account for transfers.
type PayoutAccountRequest struct {
	AccountID string `json:"account_id" binding:"required,notblank"`
}

// CelebrityResponse is the public view of a profile.
type CelebrityResponse struct {
	ID             int64  `json:"id"`
	Slug           string `json:"slug"`
	DisplayName    string `json:"display_name"`
	Price          string `json:"price"`
	AcceptsPayouts bool   `json:"accepts_payouts"`
}

// ReviewResponse is a published rating.
type ReviewResponse struct {
	ID        int64     `json:"id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ReviewRequest rates an approved order.
type ReviewRequest struct {
	Rating  int    `json:"rating" binding:"required"`
	Comment string `json:"comment"`
}
