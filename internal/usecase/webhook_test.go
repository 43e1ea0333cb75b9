package usecase

import (
	"context"
	"errors"
	"strconv"
	"testing"

	domainErrors "github.com/polkiloo/shoutout/internal/domain/errors"
	"github.com/polkiloo/shoutout/internal/domain/model"
)

// webhook returns a use case whose processor yields events in order, one per call.
func (f *fixture) webhook(events ...*model.PaymentEvent) *WebhookUseCase {
	i := 0
	f.processor.ParseEventFn = func([]byte, string) (*model.PaymentEvent, error) {
		if i >= len(events) {
			return nil, errors.New("unexpected webhook")
		}
		e := events[i]
		i++
		return e, nil
	}
	return NewWebhookUseCase(f.store, f.store, f.processor, f.settings, f.logger)
}

func bookingEvent(id string, typ model.PaymentEventType, order model.Order) *model.PaymentEvent {
	return &model.PaymentEvent{
		ID:              id,
		Type:            typ,
		RawType:         "payment_intent." + string(typ),
		PaymentIntentID: "pi_live_" + order.Number,
		AmountCents:     order.TotalCents,
		Metadata: map[string]string{
			model.MetadataKind:        model.PaymentKindBooking,
			model.MetadataOrderNumber: order.Number,
		},
	}
}

func TestWebhookInvalidSignatureChangesNothing(t *testing.T) {
	f := newFixture(t)
	order := f.order(model.OrderStatePendingPayment)
	f.processor.ParseEventFn = func([]byte, string) (*model.PaymentEvent, error) {
		return nil, domainErrors.ErrInvalidSignature
	}
	uc := NewWebhookUseCase(f.store, f.store, f.processor, f.settings, f.logger)

	if err := uc.Handle(context.Background(), []byte(`{}`), "t=1,v1=bad"); !errors.Is(err, domainErrors.ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
	if f.store.Transactions != 0 || len(f.store.WebhookRecords()) != 0 {
		t.Fatalf("nothing must be recorded")
	}
	if f.store.Order(order.ID).State != model.OrderStatePendingPayment {
		t.Fatalf("order must not change")
	}
}

func TestWebhookBookingPaidOnce(t *testing.T) {
	f := newFixture(t)
	order := f.order(model.OrderStatePendingPayment)
	event := bookingEvent("evt_1", model.PaymentEventSucceeded, order)
	uc := f.webhook(event, event)
	ctx := context.Background()

	if err := uc.Handle(ctx, nil, "sig"); err != nil {
		t.Fatalf("handle: %v", err)
	}
	stored := f.store.Order(order.ID)
	if stored.State != model.OrderStatePaid || stored.PaymentIntentID != "pi_live_"+order.Number {
		t.Fatalf("unexpected order: %+v", stored)
	}
	if len(f.emailsTo("star@example.com")) != 1 || len(f.emailsTo("fan@example.com")) != 1 {
		t.Fatalf("expected booking request and receipt emails")
	}

	if err := uc.Handle(ctx, nil, "sig"); err != nil {
		t.Fatalf("duplicate: %v", err)
	}
	if n := len(f.store.OutboxMessages()); n != 2 {
		t.Fatalf("duplicate event must not queue anything, have %d messages", n)
	}
	records := f.store.WebhookRecords()
	if len(records) != 1 || records[0].EventID != "evt_1" || records[0].Provider != WebhookProvider {
		t.Fatalf("unexpected records: %+v", records)
	}
}

func TestWebhookLatePaymentIsRefundedOnce(t *testing.T) {
	f := newFixture(t)
	order := f.order(model.OrderStateCancelled, func(o *model.Order) {
		o.CancelReason = model.CancelReasonExpired
		o.PaymentIntentID = ""
	})
	uc := f.webhook(
		bookingEvent("evt_1", model.PaymentEventSucceeded, order),
		bookingEvent("evt_2", model.PaymentEventSucceeded, order),
	)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := uc.Handle(ctx, nil, "sig"); err != nil {
			t.Fatalf("handle %d: %v", i, err)
		}
	}
	stored := f.store.Order(order.ID)
	if stored.State != model.OrderStateCancelled || stored.RefundStatus != model.RefundRequested {
		t.Fatalf("unexpected order: %+v", stored)
	}
	refunds := f.store.OutboxOfKind(model.OutboxKindRefund)
	if len(refunds) != 1 {
		t.Fatalf("expected one refund, got %d", len(refunds))
	}
	var payload model.RefundPayload
	if err := refunds[0].Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.PaymentIntentID != "pi_live_"+order.Number || payload.AmountCents != order.TotalCents {
		t.Fatalf("unexpected refund payload: %+v", payload)
	}
}

func TestWebhookBookingPaymentFailed(t *testing.T) {
	f := newFixture(t)
	order := f.order(model.OrderStatePendingPayment)
	uc := f.webhook(bookingEvent("evt_f", model.PaymentEventFailed, order))

	if err := uc.Handle(context.Background(), nil, "sig"); err != nil {
		t.Fatalf("handle: %v", err)
	}
	stored := f.store.Order(order.ID)
	if stored.State != model.OrderStateCancelled || stored.CancelReason != model.CancelReasonPaymentFailed {
		t.Fatalf("unexpected order: %+v", stored)
	}
	if len(f.emailsTo("fan@example.com")) != 1 {
		t.Fatalf("expected customer notification")
	}
}

func TestWebhookDomainFailuresAreRecorded(t *testing.T) {
	f := newFixture(t)
	paid := f.order(model.OrderStatePaid)
	ghost := model.Order{Number: "ghost", TotalCents: 100}
	uc := f.webhook(
		bookingEvent("evt_late_fail", model.PaymentEventFailed, paid),
		bookingEvent("evt_ghost", model.PaymentEventSucceeded, ghost),
	)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := uc.Handle(ctx, nil, "sig"); err != nil {
			t.Fatalf("handle %d: domain failures must be acknowledged, got %v", i, err)
		}
	}
	if f.store.Order(paid.ID).State != model.OrderStatePaid {
		t.Fatalf("paid order must not be cancelled")
	}
	records := f.store.WebhookRecords()
	if len(records) != 2 {
		t.Fatalf("expected two records, got %+v", records)
	}
	for _, r := range records {
		if r.ProcessingError == "" {
			t.Fatalf("expected processing error on %s", r.EventID)
		}
	}
}

func TestWebhookInfrastructureFailureRollsBack(t *testing.T) {
	f := newFixture(t)
	order := f.order(model.OrderStatePendingPayment)
	f.store.EnqueueFn = func([]model.OutboxMessage) error { return errors.New("db down") }
	uc := f.webhook(bookingEvent("evt_1", model.PaymentEventSucceeded, order))

	if err := uc.Handle(context.Background(), nil, "sig"); err == nil {
		t.Fatalf("expected error so the processor retries")
	}
	if f.store.Order(order.ID).State != model.OrderStatePendingPayment || len(f.store.WebhookRecords()) != 0 {
		t.Fatalf("state and dedup row must roll back")
	}
}

func TestWebhookTipSucceeded(t *testing.T) {
	f := newFixture(t)
	order := f.order(model.OrderStateApproved)
	tip := f.store.SeedTip(model.NewTip(order, f.customer.ID, 1500, "bravo"))
	event := &model.PaymentEvent{
		Type:            model.PaymentEventSucceeded,
		RawType:         "payment_intent.succeeded",
		PaymentIntentID: "pi_tip",
		AmountCents:     1500,
		Metadata: map[string]string{
			model.MetadataKind:        model.PaymentKindTip,
			model.MetadataTipID:       strconv.FormatInt(tip.ID, 10),
			model.MetadataOrderNumber: order.Number,
		},
	}
	first, second := *event, *event
	first.ID, second.ID = "evt_tip_1", "evt_tip_2"
	uc := f.webhook(&first, &second)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := uc.Handle(ctx, nil, "sig"); err != nil {
			t.Fatalf("handle %d: %v", i, err)
		}
	}
	if got := f.store.Tip(tip.ID); got.PaymentStatus != model.PaymentSucceeded {
		t.Fatalf("expected tip SUCCEEDED, got %s", got.PaymentStatus)
	}
	if got := f.store.Order(order.ID); got.TipCents != 1500 {
		t.Fatalf("expected order tip total 1500, got %d", got.TipCents)
	}
	transfers := f.store.OutboxOfKind(model.OutboxKindTransfer)
	if len(transfers) != 1 {
		t.Fatalf("expected one tip transfer, got %d", len(transfers))
	}
	var payload model.TransferPayload
	if err := transfers[0].Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.AmountCents != 1500 || payload.TipID != tip.ID || payload.Destination != "acct_jane" {
		t.Fatalf("unexpected transfer payload: %+v", payload)
	}
	if len(f.emailsTo("star@example.com")) != 1 {
		t.Fatalf("expected celebrity notification")
	}
}

func TestWebhookTipFailed(t *testing.T) {
	f := newFixture(t)
	order := f.order(model.OrderStateApproved)
	tip := f.store.SeedTip(model.NewTip(order, f.customer.ID, 500, ""))
	uc := f.webhook(&model.PaymentEvent{
		ID:       "evt_tf",
		Type:     model.PaymentEventFailed,
		Metadata: map[string]string{model.MetadataKind: model.PaymentKindTip, model.MetadataTipID: strconv.FormatInt(tip.ID, 10)},
	})

	if err := uc.Handle(context.Background(), nil, "sig"); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if got := f.store.Tip(tip.ID); got.PaymentStatus != model.PaymentFailed {
		t.Fatalf("expected tip FAILED, got %s", got.PaymentStatus)
	}
	if len(f.store.OutboxMessages()) != 0 {
		t.Fatalf("failed tip must not queue anything")
	}
}

func TestWebhookTransferChanged(t *testing.T) {
	f := newFixture(t)
	order := f.order(model.OrderStateApproved, func(o *model.Order) { o.TransferStatus = model.TransferPending })
	payout, _ := f.store.SeedPayout(
		model.Payout{OrderID: order.ID, CelebrityID: f.celeb.ID, AmountCents: 24000, Status: model.TransferPending},
		model.Transfer{ExternalID: "tr_booking", AmountCents: 24000, Status: model.TransferPending},
	)
	tipID := int64(77)
	f.store.SeedPayout(
		model.Payout{OrderID: order.ID, TipID: &tipID, CelebrityID: f.celeb.ID, AmountCents: 500, Status: model.TransferPending},
		model.Transfer{ExternalID: "tr_tip", AmountCents: 500, Status: model.TransferPending},
	)
	uc := f.webhook(
		&model.PaymentEvent{ID: "evt_t1", Type: model.PaymentEventTransferChanged, TransferID: "tr_booking", TransferStatus: model.TransferPaid},
		&model.PaymentEvent{ID: "evt_t2", Type: model.PaymentEventTransferChanged, TransferID: "tr_tip", TransferStatus: model.TransferFailed, FailureReason: "transfer.reversed"},
	)
	ctx := context.Background()

	if err := uc.Handle(ctx, nil, "sig"); err != nil {
		t.Fatalf("booking transfer: %v", err)
	}
	if got := f.store.Order(order.ID); got.TransferStatus != model.TransferPaid {
		t.Fatalf("expected order transfer PAID, got %s", got.TransferStatus)
	}

	if err := uc.Handle(ctx, nil, "sig"); err != nil {
		t.Fatalf("tip transfer: %v", err)
	}
	if got := f.store.Order(order.ID); got.TransferStatus != model.TransferPaid {
		t.Fatalf("tip transfers must not touch the order mirror, got %s", got.TransferStatus)
	}
	for _, p := range f.store.AllPayouts() {
		want := model.TransferPaid
		if p.ID != payout.ID {
			want = model.TransferFailed
		}
		if p.Status != want {
			t.Fatalf("payout %d: expected %s, got %s", p.ID, want, p.Status)
		}
	}
	for _, tr := range f.store.AllTransfers() {
		if tr.ExternalID == "tr_tip" && tr.FailureReason != "transfer.reversed" {
			t.Fatalf("expected failure reason, got %+v", tr)
		}
	}
}

func TestWebhookLateTransferEventDoesNotRegress(t *testing.T) {
	f := newFixture(t)
	order := f.order(model.OrderStateApproved, func(o *model.Order) { o.TransferStatus = model.TransferPending })
	f.store.SeedPayout(
		model.Payout{OrderID: order.ID, CelebrityID: f.celeb.ID, AmountCents: 24000, Status: model.TransferPending},
		model.Transfer{ExternalID: "tr_booking", AmountCents: 24000, Status: model.TransferPending},
	)
	uc := f.webhook(
		&model.PaymentEvent{ID: "evt_paid", Type: model.PaymentEventTransferChanged, TransferID: "tr_booking", TransferStatus: model.TransferPaid},
		&model.PaymentEvent{ID: "evt_late", Type: model.PaymentEventTransferChanged, TransferID: "tr_booking", TransferStatus: model.TransferInTransit},
	)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := uc.Handle(ctx, nil, "sig"); err != nil {
			t.Fatalf("event %d: %v", i, err)
		}
	}
	if got := f.store.Order(order.ID); got.TransferStatus != model.TransferPaid {
		t.Fatalf("expected order transfer to stay PAID, got %s", got.TransferStatus)
	}
	for _, p := range f.store.AllPayouts() {
		if p.Status != model.TransferPaid {
			t.Fatalf("expected payout to stay PAID, got %s", p.Status)
		}
	}
	for _, tr := range f.store.AllTransfers() {
		if tr.Status != model.TransferPaid {
			t.Fatalf("expected transfer to stay PAID, got %s", tr.Status)
		}
	}
	if records := f.store.WebhookRecords(); len(records) != 2 {
		t.Fatalf("expected both events recorded, got %d", len(records))
	}
}

func TestWebhookIgnoredEventIsRecorded(t *testing.T) {
	f := newFixture(t)
	uc := f.webhook(&model.PaymentEvent{ID: "evt_x", Type: model.PaymentEventIgnored, RawType: "customer.created"})

	if err := uc.Handle(context.Background(), nil, "sig"); err != nil {
		t.Fatalf("handle: %v", err)
	}
	records := f.store.WebhookRecords()
	if len(records) != 1 || records[0].Type != "customer.created" || records[0].ProcessingError != "" {
		t.Fatalf("unexpected records: %+v", records)
	}
}
