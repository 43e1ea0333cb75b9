package usecase

import (
	"context"
	"errors"
	"strings"

	domainErrors "github.com/polkiloo/shoutout/internal/domain/errors"
	"github.com/polkiloo/shoutout/internal/domain/model"
	"github.com/polkiloo/shoutout/internal/domain/repository"
)

const adminListLimit = 500

// OrderUseCase answers read-only questions about orders.
type OrderUseCase struct {
	repos repository.Factory
}

// NewOrderUseCase constructs OrderUseCase.
func NewOrderUseCase(repos repository.Factory) *OrderUseCase {
	return &OrderUseCase{repos: repos}
}

// ListForCustomer returns the customer's orders, newest first.
func (u *OrderUseCase) ListForCustomer(ctx context.Context, customerID int64) ([]model.Order, error) {
	return u.repos.Orders().ListByCustomer(ctx, customerID)
}

// ListForCelebrity returns booking requests addressed to the celebrity account userID.
func (u *OrderUseCase) ListForCelebrity(ctx context.Context, userID int64) ([]model.Order, error) {
	celeb, err := u.repos.Celebrities().GetByUserID(ctx, userID)
	if errors.Is(err, domainErrors.ErrNotFound) {
		return nil, domainErrors.WithMessage(domainErrors.ErrNotFound, "create a celebrity profile first")
	}
	if err != nil {
		return nil, err
	}
	return u.repos.Orders().ListByCelebrity(ctx, celeb.ID)
}

// ListByState returns orders in state for administrators.
func (u *OrderUseCase) ListByState(ctx context.Context, state string) ([]model.Order, error) {
	s := model.OrderState(strings.ToUpper(strings.TrimSpace(state)))
	if !s.Valid() {
		return nil, domainErrors.WithMessage(domainErrors.ErrInvalidInput, "unknown order state")
	}
	return u.repos.Orders().ListByState(ctx, s, adminListLimit)
}

// Get returns order number if who may see it: the customer, the booked celebrity or an admin.
func (u *OrderUseCase) Get(ctx context.Context, who model.Identity, number string) (*model.Order, error) {
	order, err := u.repos.Orders().GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}

	switch {
	case who.Role == model.RoleAdmin, order.CustomerID == who.UserID:
		return order, nil
	case who.Role == model.RoleCelebrity:
		celeb, err := u.repos.Celebrities().GetByUserID(ctx, who.UserID)
		if err == nil && celeb.ID == order.CelebrityID {
			return order, nil
		}
		if err != nil && !errors.Is(err, domainErrors.ErrNotFound) {
			return nil, err
		}
	}
	return nil, domainErrors.WithMessage(domainErrors.ErrForbidden, "you do not have access to this order")
}
