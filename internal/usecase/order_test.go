package usecase

import (
	"context"
	"errors"
	"testing"

	domainErrors "github.com/polkiloo/shoutout/internal/domain/errors"
	"github.com/polkiloo/shoutout/internal/domain/model"
)

func TestOrderGetAccess(t *testing.T) {
	f := newFixture(t)
	order := f.order(model.OrderStatePaid)
	rivalUser, _ := f.otherCelebrity()
	uc := NewOrderUseCase(f.store)
	ctx := context.Background()

	allowed := []model.Identity{
		{UserID: f.customer.ID, Role: model.RoleCustomer},
		{UserID: f.celebUser.ID, Role: model.RoleCelebrity},
		{UserID: 999, Role: model.RoleAdmin},
	}
	for _, who := range allowed {
		got, err := uc.Get(ctx, who, order.Number)
		if err != nil || got.ID != order.ID {
			t.Fatalf("%+v: expected access, got %v", who, err)
		}
	}

	denied := []model.Identity{
		{UserID: rivalUser.ID, Role: model.RoleCelebrity},
		{UserID: 999, Role: model.RoleCustomer},
		{UserID: 998, Role: model.RoleCelebrity},
	}
	for _, who := range denied {
		if _, err := uc.Get(ctx, who, order.Number); !errors.Is(err, domainErrors.ErrForbidden) {
			t.Fatalf("%+v: expected ErrForbidden, got %v", who, err)
		}
	}

	if _, err := uc.Get(ctx, allowed[0], "missing"); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestOrderLists(t *testing.T) {
	f := newFixture(t)
	first := f.order(model.OrderStatePaid)
	second := f.order(model.OrderStateDelivered)
	uc := NewOrderUseCase(f.store)
	ctx := context.Background()

	mine, err := uc.ListForCustomer(ctx, f.customer.ID)
	if err != nil || len(mine) != 2 || mine[0].ID != second.ID {
		t.Fatalf("unexpected customer orders: %v %+v", err, mine)
	}
	requests, err := uc.ListForCelebrity(ctx, f.celebUser.ID)
	if err != nil || len(requests) != 2 {
		t.Fatalf("unexpected booking requests: %v %+v", err, requests)
	}
	if _, err := uc.ListForCelebrity(ctx, f.customer.ID); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound without profile, got %v", err)
	}

	paid, err := uc.ListByState(ctx, "paid")
	if err != nil || len(paid) != 1 || paid[0].ID != first.ID {
		t.Fatalf("unexpected paid orders: %v %+v", err, paid)
	}
	if _, err := uc.ListByState(ctx, "lost"); !errors.Is(err, domainErrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
