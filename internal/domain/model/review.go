package model

import "time"

const (
	MinRating = 1
	MaxRating = 5
)

// Review is a customer's rating of a completed order.
type Review struct {
	ID          int64
	OrderID     int64
	UserID      int64
	CelebrityID int64
	Rating      int
	Comment     string
	CreatedAt   time.Time
}
