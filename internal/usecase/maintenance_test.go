package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/polkiloo/shoutout/internal/domain/model"
)

func TestExpireAbandonedOrders(t *testing.T) {
	f := newFixture(t)
	now := time.Now()
	stale := f.order(model.OrderStatePendingPayment, func(o *model.Order) { o.CreatedAt = now.Add(-time.Hour) })
	fresh := f.order(model.OrderStatePendingPayment, func(o *model.Order) { o.CreatedAt = now.Add(-time.Minute) })
	paid := f.order(model.OrderStatePaid, func(o *model.Order) { o.CreatedAt = now.Add(-time.Hour) })
	uc := NewMaintenanceUseCase(f.store, f.store, f.settings, f.logger)
	uc.now = func() time.Time { return now }

	n, err := uc.ExpireAbandoned(context.Background())
	if err != nil {
		t.Fatalf("expire: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected one expired order, got %d", n)
	}
	if got := f.store.Order(stale.ID); got.State != model.OrderStateCancelled || got.CancelReason != model.CancelReasonExpired {
		t.Fatalf("unexpected stale order: %+v", got)
	}
	if f.store.Order(fresh.ID).State != model.OrderStatePendingPayment || f.store.Order(paid.ID).State != model.OrderStatePaid {
		t.Fatalf("only stale unpaid orders expire")
	}
}

func TestPurgeRetention(t *testing.T) {
	f := newFixture(t)
	now := time.Now()
	old := now.Add(-48 * time.Hour)
	recent := now.Add(-time.Hour)

	done := mustMessage(t, model.OutboxKindEmail, model.Email{To: "a@b.c"})
	done.ProcessedAt = &old
	pending := mustMessage(t, model.OutboxKindEmail, model.Email{To: "a@b.c"})
	fresh := mustMessage(t, model.OutboxKindEmail, model.Email{To: "a@b.c"})
	fresh.ProcessedAt = &recent
	f.store.SeedOutbox(done, pending, fresh)

	ctx := context.Background()
	for _, e := range []model.WebhookEvent{
		{Provider: WebhookProvider, EventID: "old", ReceivedAt: old},
		{Provider: WebhookProvider, EventID: "new", ReceivedAt: recent},
	} {
		if err := f.store.WebhookEvents().Record(ctx, e); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	uc := NewMaintenanceUseCase(f.store, f.store, f.settings, f.logger)
	uc.now = func() time.Time { return now }
	messages, events, err := uc.Purge(ctx)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if messages != 1 || events != 1 {
		t.Fatalf("expected 1/1 purged, got %d/%d", messages, events)
	}
	if len(f.store.OutboxMessages()) != 2 || len(f.store.WebhookRecords()) != 1 {
		t.Fatalf("unexpected leftovers")
	}
}
