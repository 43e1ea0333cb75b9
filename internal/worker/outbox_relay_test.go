package worker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/polkiloo/shoutout/internal/adapter/payment"
	"github.com/polkiloo/shoutout/internal/domain/model"
	testhelpers "github.com/polkiloo/shoutout/internal/test"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func waitFor(t *testing.T, facade *testhelpers.OutboxFacadeStub, done func() bool) {
	t.Helper()
	deadline := time.After(time.Second)
	for {
		facade.Lock()
		ok := done()
		facade.Unlock()
		if ok {
			return
		}
		select {
		case <-deadline:
			t.Fatal("timeout waiting for outbox relay")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestNewOutboxRelayDefaults(t *testing.T) {
	relay := NewOutboxRelay(&testhelpers.OutboxFacadeStub{}, 0, 0, 0, discardLogger())
	if relay.batchSize != 1 || relay.workers != 1 {
		t.Fatalf("expected batch size and workers to default to 1, got %d and %d", relay.batchSize, relay.workers)
	}
	if relay.pollInterval != time.Second {
		t.Fatalf("expected poll interval default of 1s, got %s", relay.pollInterval)
	}
}

func TestOutboxRelayCompletesDeliveredMessages(t *testing.T) {
	first := model.OutboxMessage{Kind: model.OutboxKindEmail, Attempts: 0}
	second := model.OutboxMessage{Kind: model.OutboxKindRefund, Attempts: 2}
	facade := &testhelpers.OutboxFacadeStub{Batches: [][]model.OutboxMessage{{first, second}}}
	relay := NewOutboxRelay(facade, 5*time.Millisecond, 2, 2, discardLogger())

	relay.Start(context.Background())
	waitFor(t, facade, func() bool { return len(facade.Completed) == 2 })
	relay.Stop()

	facade.Lock()
	defer facade.Unlock()
	if len(facade.Failed) != 0 {
		t.Fatalf("expected no failures, got %+v", facade.Failed)
	}
}

func TestOutboxRelayBacksOffOnFailure(t *testing.T) {
	msg := model.OutboxMessage{Kind: model.OutboxKindEmail, Attempts: 2}
	facade := &testhelpers.OutboxFacadeStub{
		Batches:   [][]model.OutboxMessage{{msg}},
		DeliverFn: func(context.Context, model.OutboxMessage) error { return errors.New("smtp down") },
	}
	relay := NewOutboxRelay(facade, 10*time.Millisecond, 1, 1, discardLogger())

	relay.Start(context.Background())
	waitFor(t, facade, func() bool { return len(facade.Failed) == 1 })
	relay.Stop()

	facade.Lock()
	defer facade.Unlock()
	got := facade.Failed[0]
	// third attempt: 10ms * 2^3
	if got.RetryIn != 80*time.Millisecond {
		t.Fatalf("expected 80ms backoff, got %s", got.RetryIn)
	}
	if got.Cause == nil || got.Cause.Error() != "smtp down" {
		t.Fatalf("unexpected cause %v", got.Cause)
	}
	if len(facade.Completed) != 0 {
		t.Fatalf("failed message must not be completed")
	}
}

func TestOutboxRelayHonoursRateLimit(t *testing.T) {
	msg := model.OutboxMessage{Kind: model.OutboxKindTransfer}
	facade := &testhelpers.OutboxFacadeStub{
		Batches: [][]model.OutboxMessage{{msg}},
		DeliverFn: func(context.Context, model.OutboxMessage) error {
			return fmt.Errorf("create transfer: %w", payment.RateLimitedError{RetryAfter: 42 * time.Second})
		},
	}
	relay := NewOutboxRelay(facade, 5*time.Millisecond, 1, 1, discardLogger())

	relay.Start(context.Background())
	waitFor(t, facade, func() bool { return len(facade.Failed) == 1 })
	relay.Stop()

	facade.Lock()
	defer facade.Unlock()
	if facade.Failed[0].RetryIn != 42*time.Second {
		t.Fatalf("expected Retry-After to win, got %s", facade.Failed[0].RetryIn)
	}
}

func TestOutboxRelayBackoffIsCapped(t *testing.T) {
	relay := NewOutboxRelay(&testhelpers.OutboxFacadeStub{}, time.Minute, 1, 1, discardLogger())
	if got := relay.backoff(20, errors.New("boom")); got != maxBackoff {
		t.Fatalf("expected backoff capped at %s, got %s", maxBackoff, got)
	}
	if got := relay.backoff(1, errors.New("boom")); got != 2*time.Minute {
		t.Fatalf("expected 2m for first attempt, got %s", got)
	}
}

func TestOutboxRelayKeepsPollingAfterClaimError(t *testing.T) {
	calls := make(chan struct{}, 4)
	facade := &testhelpers.OutboxFacadeStub{
		ClaimFn: func(context.Context, int) ([]model.OutboxMessage, error) {
			select {
			case calls <- struct{}{}:
			default:
			}
			return nil, errors.New("db down")
		},
	}
	relay := NewOutboxRelay(facade, 5*time.Millisecond, 1, 1, discardLogger())
	relay.Start(context.Background())
	defer relay.Stop()

	for i := 0; i < 2; i++ {
		select {
		case <-calls:
		case <-time.After(time.Second):
			t.Fatalf("expected repeated claims, got %d", i)
		}
	}
}

func TestOutboxRelayStopIsIdempotent(t *testing.T) {
	relay := NewOutboxRelay(&testhelpers.OutboxFacadeStub{}, 5*time.Millisecond, 1, 1, discardLogger())
	relay.Start(context.Background())
	relay.Stop()
	relay.Stop()
}
