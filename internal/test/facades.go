package test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	domainErrors "github.com/polkiloo/shoutout/internal/domain/errors"
	"github.com/polkiloo/shoutout/internal/domain/model"
)

// OutboxFailCall stores information about FailOutbox invocations.
type OutboxFailCall struct {
	Message model.OutboxMessage
	Cause   error
	RetryIn time.Duration
}

// OutboxFacadeStub mimics relay interactions with the marketplace facade.
type OutboxFacadeStub struct {
	Batches   [][]model.OutboxMessage
	ClaimFn   func(context.Context, int) ([]model.OutboxMessage, error)
	DeliverFn func(context.Context, model.OutboxMessage) error
	Completed []model.OutboxMessage
	Failed    []OutboxFailCall
	mu        sync.Mutex
	claims    int32
}

// Lock exposes internal mutex for external synchronization.
func (s *OutboxFacadeStub) Lock() { s.mu.Lock() }

// Unlock releases previously acquired lock.
func (s *OutboxFacadeStub) Unlock() { s.mu.Unlock() }

// ClaimOutbox returns batches from configured queue.
func (s *OutboxFacadeStub) ClaimOutbox(ctx context.Context, limit int) ([]model.OutboxMessage, error) {
	if s.ClaimFn != nil {
		return s.ClaimFn(ctx, limit)
	}
	call := atomic.AddInt32(&s.claims, 1)
	if int(call) <= len(s.Batches) {
		return s.Batches[call-1], nil
	}
	return nil, nil
}

// DeliverOutbox runs the configured delivery, succeeding by default.
func (s *OutboxFacadeStub) DeliverOutbox(ctx context.Context, msg model.OutboxMessage) error {
	if s.DeliverFn != nil {
		return s.DeliverFn(ctx, msg)
	}
	return nil
}

// CompleteOutbox records processed messages.
func (s *OutboxFacadeStub) CompleteOutbox(_ context.Context, msg model.OutboxMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Completed = append(s.Completed, msg)
	return nil
}

// FailOutbox records failed deliveries.
func (s *OutboxFacadeStub) FailOutbox(_ context.Context, msg model.OutboxMessage, cause error, retryIn time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Failed = append(s.Failed, OutboxFailCall{Message: msg, Cause: cause, RetryIn: retryIn})
	return nil
}

// MaintenanceFacadeStub counts scheduled sweeps.
type MaintenanceFacadeStub struct {
	ExpireErr error
	expires   atomic.Int32
	purges    atomic.Int32
}

// ExpireUnpaidOrders counts invocations.
func (s *MaintenanceFacadeStub) ExpireUnpaidOrders(context.Context) (int, error) {
	s.expires.Add(1)
	return 0, s.ExpireErr
}

// PurgeRetention counts invocations.
func (s *MaintenanceFacadeStub) PurgeRetention(context.Context) (int64, int64, error) {
	s.purges.Add(1)
	return 0, 0, nil
}

// Expires returns how many expiry sweeps ran.
func (s *MaintenanceFacadeStub) Expires() int { return int(s.expires.Load()) }

// Purges returns how many purge sweeps ran.
func (s *MaintenanceFacadeStub) Purges() int { return int(s.purges.Load()) }

// TokenParserStub resolves every token to Identity unless Err is set.
type TokenParserStub struct {
	Identity model.Identity
	Err      error
}

// ParseToken returns configured identity or error.
func (s TokenParserStub) ParseToken(string) (model.Identity, error) {
	if s.Err != nil {
		return model.Identity{}, s.Err
	}
	return s.Identity, nil
}

// IdempotencyStoreStub is an in-memory idempotency store.
type IdempotencyStoreStub struct {
	ReserveErr error
	mu         sync.Mutex
	records    map[string]model.IdempotentResponse
}

// Reserve claims key unless it is already present.
func (s *IdempotencyStoreStub) Reserve(_ context.Context, key string, _ time.Duration) (bool, error) {
	if s.ReserveErr != nil {
		return false, s.ReserveErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.records == nil {
		s.records = make(map[string]model.IdempotentResponse)
	}
	if _, ok := s.records[key]; ok {
		return false, nil
	}
	s.records[key] = model.IdempotentResponse{}
	return true, nil
}

// Get returns the stored record.
func (s *IdempotencyStoreStub) Get(_ context.Context, key string) (*model.IdempotentResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[key]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return &rec, nil
}

// Complete stores the final response.
func (s *IdempotencyStoreStub) Complete(_ context.Context, key string, resp model.IdempotentResponse, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[key]; !ok {
		return errors.New("key was not reserved")
	}
	resp.Completed = true
	s.records[key] = resp
	return nil
}

// Release drops key.
func (s *IdempotencyStoreStub) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, key)
	return nil
}

// Keys returns how many keys are held.
func (s *IdempotencyStoreStub) Keys() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}
