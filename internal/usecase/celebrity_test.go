package usecase

import (
	"context"
	"errors"
	"testing"

	domainErrors "github.com/polkiloo/shoutout/internal/domain/errors"
	"github.com/polkiloo/shoutout/internal/domain/model"
	testhelpers "github.com/polkiloo/shoutout/internal/test"
)

func TestCelebrityOnboardPicksFreeSlug(t *testing.T) {
	store := testhelpers.NewMemoryStore()
	uc := NewCelebrityUseCase(store)
	ctx := context.Background()

	var slugs []string
	for i := 0; i < 3; i++ {
		user := store.SeedUser(model.User{Login: "u" + string(rune('a'+i)), Role: model.RoleCelebrity})
		celeb, err := uc.Onboard(ctx, user.ID, "Jane Star", 5000)
		if err != nil {
			t.Fatalf("onboard %d: %v", i, err)
		}
		slugs = append(slugs, celeb.Slug)
	}
	want := []string{"jane-star", "jane-star-2", "jane-star-3"}
	for i := range want {
		if slugs[i] != want[i] {
			t.Fatalf("expected slugs %v, got %v", want, slugs)
		}
	}
}

func TestCelebrityOnboardValidation(t *testing.T) {
	store := testhelpers.NewMemoryStore()
	uc := NewCelebrityUseCase(store)
	ctx := context.Background()
	user := store.SeedUser(model.User{Login: "star", Role: model.RoleCelebrity})

	if _, err := uc.Onboard(ctx, user.ID, "  ", 5000); !errors.Is(err, domainErrors.ErrInvalidInput) {
		t.Fatalf("blank name: expected ErrInvalidInput, got %v", err)
	}
	if _, err := uc.Onboard(ctx, user.ID, "Star", 99); !errors.Is(err, domainErrors.ErrInvalidAmount) {
		t.Fatalf("low price: expected ErrInvalidAmount, got %v", err)
	}
	if _, err := uc.Onboard(ctx, user.ID, "Star", 5000); err != nil {
		t.Fatalf("onboard: %v", err)
	}
	if _, err := uc.Onboard(ctx, user.ID, "Star Again", 5000); !errors.Is(err, domainErrors.ErrAlreadyExists) {
		t.Fatalf("second profile: expected ErrAlreadyExists, got %v", err)
	}
}

func TestCelebritySetPayoutAccount(t *testing.T) {
	store := testhelpers.NewMemoryStore()
	uc := NewCelebrityUseCase(store)
	ctx := context.Background()
	user := store.SeedUser(model.User{Login: "star", Role: model.RoleCelebrity})
	celeb := store.SeedCelebrity(model.Celebrity{UserID: user.ID, Slug: "star", DisplayName: "Star", PriceCents: 1000})

	for _, bad := range []string{"", "acct_", "ba_123", "123"} {
		if _, err := uc.SetPayoutAccount(ctx, user.ID, bad); !errors.Is(err, domainErrors.ErrInvalidPayoutAccount) {
			t.Fatalf("%q: expected ErrInvalidPayoutAccount, got %v", bad, err)
		}
	}
	got, err := uc.SetPayoutAccount(ctx, user.ID, " acct_1Abc ")
	if err != nil {
		t.Fatalf("set payout account: %v", err)
	}
	if got.PayoutAccountID != "acct_1Abc" || store.Celebrity(celeb.ID).PayoutAccountID != "acct_1Abc" {
		t.Fatalf("payout account not stored: %+v", got)
	}
	if _, err := uc.SetPayoutAccount(ctx, 999, "acct_x"); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("no profile: expected ErrNotFound, got %v", err)
	}
}
