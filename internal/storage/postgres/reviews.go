package postgres

import (
	"context"

	"github.com/polkiloo/shoutout/internal/domain/model"
)

type reviewRepository struct {
	q querier
}

func (r *reviewRepository) Create(ctx context.Context, review model.Review) (*model.Review, error) {
	const query = `INSERT INTO reviews (order_id, user_id, celebrity_id, rating, comment)
                   VALUES ($1, $2, $3, $4, $5)
                   RETURNING id, created_at`
	err := r.q.QueryRow(ctx, query, review.OrderID, review.UserID, review.CelebrityID, review.Rating, review.Comment).
		Scan(&review.ID, &review.CreatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return &review, nil
}

func (r *reviewRepository) ListByCelebrity(ctx context.Context, celebrityID int64, limit int) ([]model.Review, error) {
	const query = `SELECT id, order_id, user_id, celebrity_id, rating, comment, created_at
                   FROM reviews WHERE celebrity_id=$1 ORDER BY created_at DESC LIMIT $2`
	rows, err := r.q.Query(ctx, query, celebrityID, limit)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(row scanner, rv *model.Review) error {
		return row.Scan(&rv.ID, &rv.OrderID, &rv.UserID, &rv.CelebrityID, &rv.Rating, &rv.Comment, &rv.CreatedAt)
	})
}
