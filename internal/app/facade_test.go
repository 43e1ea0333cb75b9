package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/polkiloo/shoutout/internal/domain/model"
	testhelpers "github.com/polkiloo/shoutout/internal/test"
	"github.com/polkiloo/shoutout/internal/usecase"
)

type pingerStub struct{ err error }

func (p pingerStub) HealthCheck(context.Context) error { return p.err }

type facadeDeps struct {
	store     *testhelpers.MemoryStore
	processor *testhelpers.PaymentProcessorStub
	mailer    *testhelpers.MailerStub
}

func newFacade(db, cache error) (*MarketplaceFacade, facadeDeps) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	deps := facadeDeps{
		store:     testhelpers.NewMemoryStore(),
		processor: testhelpers.NewPaymentProcessorStub(),
		mailer:    &testhelpers.MailerStub{},
	}
	settings := usecase.Settings{Currency: "usd", MaxRevisions: 2, OutboxLease: time.Minute, OutboxMaxAttempts: 3, VideoURLTTL: time.Hour}
	objects := &testhelpers.ObjectStoreStub{}

	tips := usecase.NewTipUseCase(deps.store, deps.processor, settings, logger)
	reviews := usecase.NewReviewUseCase(deps.store)
	facade := NewMarketplaceFacade(FacadeParams{
		Auth:        usecase.NewAuthUseCase(deps.store.Users(), testhelpers.HasherStub{}, testhelpers.StrategyStub{}),
		Celebrities: usecase.NewCelebrityUseCase(deps.store),
		Checkout:    usecase.NewCheckoutUseCase(deps.store, deps.processor, &testhelpers.NumberGeneratorStub{Start: 100}, settings, logger),
		Bookings:    usecase.NewBookingUseCase(deps.store, deps.store, settings, logger),
		Delivery:    usecase.NewDeliveryUseCase(deps.store, deps.store, objects, settings, logger),
		Approval:    usecase.NewApprovalUseCase(deps.store, deps.store, deps.processor, tips, reviews, settings, logger),
		Tips:        tips,
		Reviews:     reviews,
		Orders:      usecase.NewOrderUseCase(deps.store),
		Webhooks:    usecase.NewWebhookUseCase(deps.store, deps.store, deps.processor, settings, logger),
		Outbox:      usecase.NewOutboxUseCase(deps.store, deps.store, deps.processor, deps.mailer, settings, logger),
		Maintenance: usecase.NewMaintenanceUseCase(deps.store, deps.store, settings, logger),
		Database:    pingerStub{err: db},
		Cache:       pingerStub{err: cache},
	})
	return facade, deps
}

func TestMarketplaceFacadeAuth(t *testing.T) {
	facade, _ := newFacade(nil, nil)
	ctx := context.Background()

	user, token, err := facade.Register(ctx, usecase.RegisterInput{Login: "star", Password: "pass", Role: model.RoleCelebrity})
	if err != nil {
		t.Fatalf("register returned error: %v", err)
	}
	identity, err := facade.ParseToken(token)
	if err != nil {
		t.Fatalf("parse token returned error: %v", err)
	}
	if identity.UserID != user.ID || identity.Role != model.RoleCelebrity {
		t.Fatalf("unexpected identity %+v", identity)
	}

	if _, _, err := facade.Authenticate(ctx, "star", "pass"); err != nil {
		t.Fatalf("authenticate returned error: %v", err)
	}
}

func TestMarketplaceFacadeBookingFlow(t *testing.T) {
	facade, deps := newFacade(nil, nil)
	ctx := context.Background()

	star, _, err := facade.Register(ctx, usecase.RegisterInput{Login: "star", Password: "pass", Role: model.RoleCelebrity})
	if err != nil {
		t.Fatalf("register celebrity: %v", err)
	}
	fan, _, err := facade.Register(ctx, usecase.RegisterInput{Login: "fan", Password: "pass"})
	if err != nil {
		t.Fatalf("register customer: %v", err)
	}
	celeb, err := facade.Onboard(ctx, star.ID, "Jane Star", 30000)
	if err != nil {
		t.Fatalf("onboard: %v", err)
	}

	result, err := facade.Checkout(ctx, fan.ID, celeb.Slug, model.OrderDetails{RecipientName: "Sam"})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if result.Order.Number != "101" || result.ClientSecret == "" {
		t.Fatalf("unexpected checkout result %+v", result)
	}

	order, err := facade.Order(ctx, model.Identity{UserID: star.ID, Role: model.RoleCelebrity}, "101")
	if err != nil || order.State != model.OrderStatePendingPayment {
		t.Fatalf("celebrity should see the order: %v %+v", err, order)
	}
	mine, err := facade.CustomerOrders(ctx, fan.ID)
	if err != nil || len(mine) != 1 {
		t.Fatalf("unexpected customer orders: %v %+v", err, mine)
	}
	if _, err := facade.DecideBooking(ctx, star.ID, order.ID, usecase.BookingAccept); err == nil {
		t.Fatalf("unpaid booking must not be accepted")
	}
	if intents, _, _ := deps.processor.Calls(); intents != 1 {
		t.Fatalf("expected one payment intent, got %d", intents)
	}
}

func TestMarketplaceFacadeOutbox(t *testing.T) {
	facade, deps := newFacade(nil, nil)
	ctx := context.Background()
	msg, err := model.NewOutboxMessage(model.OutboxKindEmail, model.Email{To: "fan@example.com", Subject: "hello"})
	if err != nil {
		t.Fatalf("new message: %v", err)
	}
	msg.NextAttemptAt = time.Now().Add(-time.Minute)
	deps.store.SeedOutbox(msg)

	claimed, err := facade.ClaimOutbox(ctx, 10)
	if err != nil || len(claimed) != 1 {
		t.Fatalf("claim: %v %+v", err, claimed)
	}
	if err := facade.DeliverOutbox(ctx, claimed[0]); err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if err := facade.CompleteOutbox(ctx, claimed[0]); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if len(deps.mailer.Emails()) != 1 {
		t.Fatalf("expected email to be sent")
	}

	if n, err := facade.ExpireUnpaidOrders(ctx); err != nil || n != 0 {
		t.Fatalf("expire: %d %v", n, err)
	}
}

func TestMarketplaceFacadeHealth(t *testing.T) {
	facade, _ := newFacade(nil, nil)
	report, healthy := facade.Health(context.Background())
	if !healthy || report["database"] != "ok" || report["redis"] != "ok" {
		t.Fatalf("unexpected health %v %v", healthy, report)
	}

	facade, _ = newFacade(nil, errors.New("connection refused"))
	report, healthy = facade.Health(context.Background())
	if healthy {
		t.Fatalf("expected unhealthy report")
	}
	if report["redis"] != "connection refused" || report["database"] != "ok" {
		t.Fatalf("unexpected report %v", report)
	}
}
