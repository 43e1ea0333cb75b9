package model

import "time"

// Payout is money owed to a celebrity for an approved order or a tip.
type Payout struct {
	ID               int64
	OrderID          int64
	TipID            *int64
	CelebrityID      int64
	AmountCents      int64
	PlatformFeeCents int64
	Status           TransferStatus
	Simulated        bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Transfer mirrors the processor transfer backing a payout.
type Transfer struct {
	ID            int64
	PayoutID      int64
	ExternalID    string
	Destination   string
	AmountCents   int64
	Status        TransferStatus
	Simulated     bool
	FailureReason string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
