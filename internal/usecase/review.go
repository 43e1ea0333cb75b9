package usecase

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	domainErrors "github.com/polkiloo/shoutout/internal/domain/errors"
	"github.com/polkiloo/shoutout/internal/domain/model"
	"github.com/polkiloo/shoutout/internal/domain/repository"
)

const maxReviewCommentLength = 2000

// ReviewUseCase stores ratings of completed orders.
type ReviewUseCase struct {
	repos repository.Factory
}

// NewReviewUseCase constructs ReviewUseCase.
func NewReviewUseCase(repos repository.Factory) *ReviewUseCase {
	return &ReviewUseCase{repos: repos}
}

func validateRating(rating int) error {
	if rating < model.MinRating || rating > model.MaxRating {
		return domainErrors.WithMessage(domainErrors.ErrInvalidInput, "rating must be between 1 and 5")
	}
	return nil
}

// Create rates an approved order once per customer.
func (u *ReviewUseCase) Create(ctx context.Context, customerID int64, number string, rating int, comment string) (*model.Review, error) {
	if err := validateRating(rating); err != nil {
		return nil, err
	}
	comment = strings.TrimSpace(comment)
	if utf8.RuneCountInString(comment) > maxReviewCommentLength {
		return nil, domainErrors.WithMessage(domainErrors.ErrInvalidInput, "comment is too long")
	}

	order, err := u.repos.Orders().GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if order.CustomerID != customerID {
		return nil, domainErrors.WithMessage(domainErrors.ErrForbidden, "only the customer who placed the order can review it")
	}
	if err := order.CheckReviewAllowed(); err != nil {
		return nil, err
	}

	review, err := u.repos.Reviews().Create(ctx, model.Review{
		OrderID:     order.ID,
		UserID:      customerID,
		CelebrityID: order.CelebrityID,
		Rating:      rating,
		Comment:     comment,
	})
	if errors.Is(err, domainErrors.ErrAlreadyExists) {
		return nil, domainErrors.WithMessage(domainErrors.ErrAlreadyExists, "you already reviewed this order")
	}
	return review, err
}
