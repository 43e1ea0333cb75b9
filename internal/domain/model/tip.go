package model

import "time"

// Tip is a gratuity added to an approved order. The celebrity keeps all of it.
type Tip struct {
	ID               int64
	OrderID          int64
	UserID           int64
	CelebrityID      int64
	AmountCents      int64
	CelebrityCents   int64
	PlatformFeeCents int64
	Message          string
	PaymentStatus    PaymentStatus
	PaymentIntentID  string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewTip builds a pending tip for order.
func NewTip(order Order, userID, amountCents int64, message string) Tip {
	return Tip{
		OrderID:          order.ID,
		UserID:           userID,
		CelebrityID:      order.CelebrityID,
		AmountCents:      amountCents,
		CelebrityCents:   amountCents,
		PlatformFeeCents: 0,
		Message:          message,
		PaymentStatus:    PaymentPending,
	}
}
