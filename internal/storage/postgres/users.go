package postgres

import (
	"context"

	"github.com/polkiloo/shoutout/internal/domain/model"
)

type userRepository struct {
	q querier
}

const userColumns = `id, login, email, password_hash, role, created_at`

func scanUser(row scanner, u *model.User) error {
	return row.Scan(&u.ID, &u.Login, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)
}

func (r *userRepository) Create(ctx context.Context, user model.User) (*model.User, error) {
	const query = `INSERT INTO users (login, email, password_hash, role) VALUES ($1, $2, $3, $4) RETURNING id, created_at`
	err := r.q.QueryRow(ctx, query, user.Login, user.Email, user.PasswordHash, user.Role).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return &user, nil
}

func (r *userRepository) GetByLogin(ctx context.Context, login string) (*model.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE login=$1`
	var u model.User
	if err := scanUser(r.q.QueryRow(ctx, query, login), &u); err != nil {
		return nil, mapError(err)
	}
	return &u, nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	var u model.User
	if err := scanUser(r.q.QueryRow(ctx, query, id), &u); err != nil {
		return nil, mapError(err)
	}
	return &u, nil
}
