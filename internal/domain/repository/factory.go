package repository

import "context"

// Factory describes access to different domain repositories.
type Factory interface {
	Users() UserRepository
	Celebrities() CelebrityRepository
	Orders() OrderRepository
	Tips() TipRepository
	Payouts() PayoutRepository
	Reviews() ReviewRepository
	Outbox() OutboxRepository
	WebhookEvents() WebhookEventRepository
}

// Transactor runs fn against repositories bound to a single database transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
type Transactor interface {
	InTransaction(ctx context.Context, fn func(Factory) error) error
}
