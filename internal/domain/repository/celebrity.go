package repository

import (
	"context"

	"github.com/polkiloo/shoutout/internal/domain/model"
)

// CelebrityRepository describes persistence operations for celebrity profiles.
type CelebrityRepository interface {
	Create(ctx context.Context, celebrity model.Celebrity) (*model.Celebrity, error)
	GetByID(ctx context.Context, id int64) (*model.Celebrity, error)
	GetBySlug(ctx context.Context, slug string) (*model.Celebrity, error)
	GetByUserID(ctx context.Context, userID int64) (*model.Celebrity, error)
	UpdatePayoutAccount(ctx context.Context, id int64, accountID string) error
	List(ctx context.Context, limit, offset int) ([]model.Celebrity, error)
}
