package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/polkiloo/shoutout/internal/adapter/payment"
	"github.com/polkiloo/shoutout/internal/domain/model"
)

const maxBackoff = time.Hour

// OutboxFacade exposes the subset of application functionality required by the relay.
type OutboxFacade interface {
	ClaimOutbox(ctx context.Context, limit int) ([]model.OutboxMessage, error)
	DeliverOutbox(ctx context.Context, msg model.OutboxMessage) error
	CompleteOutbox(ctx context.Context, msg model.OutboxMessage) error
	FailOutbox(ctx context.Context, msg model.OutboxMessage, cause error, retryIn time.Duration) error
}

// OutboxRelay polls the outbox and delivers queued side effects concurrently.
type OutboxRelay struct {
	facade       OutboxFacade
	pollInterval time.Duration
	batchSize    int
	workers      int
	logger       *slog.Logger

	jobs   chan model.OutboxMessage
	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewOutboxRelay constructs the relay worker pool.
func NewOutboxRelay(facade OutboxFacade, pollInterval time.Duration, batchSize, workers int, logger *slog.Logger) *OutboxRelay {
	if workers <= 0 {
		workers = 1
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	return &OutboxRelay{
		facade:       facade,
		pollInterval: pollInterval,
		batchSize:    batchSize,
		workers:      workers,
		logger:       logger,
		jobs:         make(chan model.OutboxMessage, batchSize*workers),
	}
}

// Start launches background processing.
func (r *OutboxRelay) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	for i := 0; i < r.workers; i++ {
		r.wg.Add(1)
		go r.worker(runCtx)
	}

	r.wg.Add(1)
	go r.dispatch(runCtx)
}

// Stop waits for all workers to finish.
func (r *OutboxRelay) Stop() {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.mu.Unlock()

	r.wg.Wait()
}

func (r *OutboxRelay) dispatch(ctx context.Context) {
	defer r.wg.Done()
	defer close(r.jobs)
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.fetchAndDispatch(ctx)
		}
	}
}

func (r *OutboxRelay) fetchAndDispatch(ctx context.Context) {
	messages, err := r.facade.ClaimOutbox(ctx, r.batchSize)
	if err != nil {
		r.logger.Error("claim outbox batch failed", slog.String("error", err.Error()))
		return
	}
	for _, msg := range messages {
		select {
		case <-ctx.Done():
			return
		case r.jobs <- msg:
		}
	}
}

func (r *OutboxRelay) worker(ctx context.Context) {
	defer r.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-r.jobs:
			if !ok {
				return
			}
			r.handleMessage(ctx, msg)
		}
	}
}

func (r *OutboxRelay) handleMessage(ctx context.Context, msg model.OutboxMessage) {
	err := r.facade.DeliverOutbox(ctx, msg)
	if err == nil {
		if err := r.facade.CompleteOutbox(ctx, msg); err != nil {
			r.logger.Error("mark outbox message processed failed", slog.String("id", msg.ID.String()), slog.String("error", err.Error()))
		}
		return
	}

	retryIn := r.backoff(msg.Attempts+1, err)
	if failErr := r.facade.FailOutbox(ctx, msg, err, retryIn); failErr != nil {
		r.logger.Error("record outbox failure failed", slog.String("id", msg.ID.String()), slog.String("error", failErr.Error()))
	}
}

// backoff doubles the poll interval per attempt, capped at an hour. Processor
// rate limits dictate their own delay.
func (r *OutboxRelay) backoff(attempt int, err error) time.Duration {
	var limited payment.RateLimitedError
	if errors.As(err, &limited) && limited.RetryAfter > 0 {
		r.logger.Warn("payment processor rate limited", slog.Duration("retry_after", limited.RetryAfter))
		return limited.RetryAfter
	}

	delay := r.pollInterval
	for i := 0; i < attempt; i++ {
		delay *= 2
		if delay >= maxBackoff {
			return maxBackoff
		}
	}
	return delay
}
