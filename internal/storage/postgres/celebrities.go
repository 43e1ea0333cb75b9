package postgres

import (
	"context"

	domainErrors "github.com/polkiloo/shoutout/internal/domain/errors"
	"github.com/polkiloo/shoutout/internal/domain/model"
)

type celebrityRepository struct {
	q querier
}

const celebrityColumns = `id, user_id, slug, display_name, price_cents, payout_account_id, created_at`

func scanCelebrity(row scanner, c *model.Celebrity) error {
	return row.Scan(&c.ID, &c.UserID, &c.Slug, &c.DisplayName, &c.PriceCents, &c.PayoutAccountID, &c.CreatedAt)
}

func (r *celebrityRepository) Create(ctx context.Context, celebrity model.Celebrity) (*model.Celebrity, error) {
	const query = `INSERT INTO celebrities (user_id, slug, display_name, price_cents, payout_account_id)
                   VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`
	err := r.q.QueryRow(ctx, query, celebrity.UserID, celebrity.Slug, celebrity.DisplayName,
		celebrity.PriceCents, celebrity.PayoutAccountID).Scan(&celebrity.ID, &celebrity.CreatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return &celebrity, nil
}

func (r *celebrityRepository) getOne(ctx context.Context, where string, arg any) (*model.Celebrity, error) {
	query := `SELECT ` + celebrityColumns + ` FROM celebrities WHERE ` + where
	var c model.Celebrity
	if err := scanCelebrity(r.q.QueryRow(ctx, query, arg), &c); err != nil {
		return nil, mapError(err)
	}
	return &c, nil
}

func (r *celebrityRepository) GetByID(ctx context.Context, id int64) (*model.Celebrity, error) {
	return r.getOne(ctx, `id=$1`, id)
}

func (r *celebrityRepository) GetBySlug(ctx context.Context, slug string) (*model.Celebrity, error) {
	return r.getOne(ctx, `slug=$1`, slug)
}

func (r *celebrityRepository) GetByUserID(ctx context.Context, userID int64) (*model.Celebrity, error) {
	return r.getOne(ctx, `user_id=$1`, userID)
}

func (r *celebrityRepository) UpdatePayoutAccount(ctx context.Context, id int64, accountID string) error {
	const query = `UPDATE celebrities SET payout_account_id=$1 WHERE id=$2`
	tag, err := r.q.Exec(ctx, query, accountID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func (r *celebrityRepository) List(ctx context.Context, limit, offset int) ([]model.Celebrity, error) {
	const query = `SELECT ` + celebrityColumns + ` FROM celebrities ORDER BY display_name, id LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanCelebrity)
}
