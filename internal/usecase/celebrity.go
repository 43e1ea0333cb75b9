package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gosimple/slug"

	domainErrors "github.com/polkiloo/shoutout/internal/domain/errors"
	"github.com/polkiloo/shoutout/internal/domain/model"
	"github.com/polkiloo/shoutout/internal/domain/repository"
)

const (
	minPriceCents       = 100
	maxSlugAttempts     = 20
	defaultSlug         = "celebrity"
	payoutAccountPrefix = "acct_"
	defaultListLimit    = 50
	maxListLimit        = 200
)

// CelebrityUseCase manages celebrity profiles.
type CelebrityUseCase struct {
	repos repository.Factory
}

// NewCelebrityUseCase constructs CelebrityUseCase.
func NewCelebrityUseCase(repos repository.Factory) *CelebrityUseCase {
	return &CelebrityUseCase{repos: repos}
}

// Onboard creates the public profile of a celebrity account.
func (u *CelebrityUseCase) Onboard(ctx context.Context, userID int64, displayName string, priceCents int64) (*model.Celebrity, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, domainErrors.WithMessage(domainErrors.ErrInvalidInput, "display name is required")
	}
	if priceCents < minPriceCents {
		return nil, domainErrors.WithMessage(domainErrors.ErrInvalidAmount, "price must be at least 1.00")
	}

	if _, err := u.repos.Celebrities().GetByUserID(ctx, userID); err == nil {
		return nil, domainErrors.WithMessage(domainErrors.ErrAlreadyExists, "profile already exists")
	} else if !errors.Is(err, domainErrors.ErrNotFound) {
		return nil, err
	}

	base := slug.Make(displayName)
	if base == "" {
		base = defaultSlug
	}

	candidate := base
	for attempt := 1; attempt <= maxSlugAttempts; attempt++ {
		celeb, err := u.repos.Celebrities().Create(ctx, model.Celebrity{
			UserID:      userID,
			Slug:        candidate,
			DisplayName: displayName,
			PriceCents:  priceCents,
		})
		if err == nil {
			return celeb, nil
		}
		if !errors.Is(err, domainErrors.ErrAlreadyExists) {
			return nil, err
		}
		candidate = fmt.Sprintf("%s-%d", base, attempt+1)
	}

	return nil, domainErrors.WithMessage(domainErrors.ErrAlreadyExists, "could not find a free profile handle")
}

// SetPayoutAccount links the processor connected account receiving transfers.
func (u *CelebrityUseCase) SetPayoutAccount(ctx context.Context, userID int64, accountID string) (*model.Celebrity, error) {
	accountID = strings.TrimSpace(accountID)
	if !strings.HasPrefix(accountID, payoutAccountPrefix) || len(accountID) == len(payoutAccountPrefix) {
		return nil, domainErrors.WithMessage(domainErrors.ErrInvalidPayoutAccount,
			"payout account must be a connected account id starting with acct_")
	}

	celeb, err := u.repos.Celebrities().GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := u.repos.Celebrities().UpdatePayoutAccount(ctx, celeb.ID, accountID); err != nil {
		return nil, err
	}
	celeb.PayoutAccountID = accountID
	return celeb, nil
}

// Profile returns a celebrity by slug.
func (u *CelebrityUseCase) Profile(ctx context.Context, handle string) (*model.Celebrity, error) {
	return u.repos.Celebrities().GetBySlug(ctx, handle)
}

// ByUser returns the profile owned by userID.
func (u *CelebrityUseCase) ByUser(ctx context.Context, userID int64) (*model.Celebrity, error) {
	return u.repos.Celebrities().GetByUserID(ctx, userID)
}

// List returns a page of celebrities.
func (u *CelebrityUseCase) List(ctx context.Context, limit, offset int) ([]model.Celebrity, error) {
	return u.repos.Celebrities().List(ctx, clampLimit(limit), max(offset, 0))
}

// Reviews returns the latest reviews of the celebrity behind handle.
func (u *CelebrityUseCase) Reviews(ctx context.Context, handle string, limit int) ([]model.Review, error) {
	celeb, err := u.repos.Celebrities().GetBySlug(ctx, handle)
	if err != nil {
		return nil, err
	}
	return u.repos.Reviews().ListByCelebrity(ctx, celeb.ID, clampLimit(limit))
}

// Payouts returns the earnings history of the celebrity owned by userID.
func (u *CelebrityUseCase) Payouts(ctx context.Context, userID int64) ([]model.Payout, error) {
	celeb, err := u.repos.Celebrities().GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return u.repos.Payouts().ListByCelebrity(ctx, celeb.ID)
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultListLimit
	case limit > maxListLimit:
		return maxListLimit
	default:
		return limit
	}
}
