package repository

import (
	"context"

	"github.com/polkiloo/shoutout/internal/domain/model"
)

// ReviewRepository stores customer ratings.
type ReviewRepository interface {
	Create(ctx context.Context, review model.Review) (*model.Review, error)
	ListByCelebrity(ctx context.Context, celebrityID int64, limit int) ([]model.Review, error)
}
