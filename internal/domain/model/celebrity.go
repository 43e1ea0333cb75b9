package model

import "time"

// Celebrity is the public profile of a talent account.
type Celebrity struct {
	ID              int64
	UserID          int64
	Slug            string
	DisplayName     string
	PriceCents      int64
	PayoutAccountID string
	CreatedAt       time.Time
}

// CanReceivePayouts reports whether transfers can be attempted to the celebrity.
func (c Celebrity) CanReceivePayouts() bool {
	return c.PayoutAccountID != ""
}
