package test

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/polkiloo/shoutout/internal/domain/model"
)

// PaymentProcessorStub records processor calls and answers through overrides.
type PaymentProcessorStub struct {
	CreatePaymentIntentFn func(context.Context, model.PaymentRequest) (*model.PaymentIntent, error)
	RefundFn              func(context.Context, model.RefundRequest) error
	CreateTransferFn      func(context.Context, model.TransferRequest) (*model.TransferResult, error)
	AvailableBalanceFn    func(context.Context, string) (int64, error)
	ParseEventFn          func([]byte, string) (*model.PaymentEvent, error)

	// Balance is returned when AvailableBalanceFn is nil.
	Balance int64

	mu        sync.Mutex
	Intents   []model.PaymentRequest
	Refunds   []model.RefundRequest
	Transfers []model.TransferRequest
	seq       int64
}

// NewPaymentProcessorStub returns a processor with a large platform balance.
func NewPaymentProcessorStub() *PaymentProcessorStub {
	return &PaymentProcessorStub{Balance: 1_000_000_00}
}

func (s *PaymentProcessorStub) next() int64 {
	return atomic.AddInt64(&s.seq, 1)
}

// CreatePaymentIntent records req and returns a deterministic intent.
func (s *PaymentProcessorStub) CreatePaymentIntent(ctx context.Context, req model.PaymentRequest) (*model.PaymentIntent, error) {
	s.mu.Lock()
	s.Intents = append(s.Intents, req)
	s.mu.Unlock()
	if s.CreatePaymentIntentFn != nil {
		return s.CreatePaymentIntentFn(ctx, req)
	}
	id := fmt.Sprintf("pi_%d", s.next())
	return &model.PaymentIntent{ID: id, ClientSecret: id + "_secret", Status: "requires_payment_method"}, nil
}

// Refund records req.
func (s *PaymentProcessorStub) Refund(ctx context.Context, req model.RefundRequest) error {
	s.mu.Lock()
	s.Refunds = append(s.Refunds, req)
	s.mu.Unlock()
	if s.RefundFn != nil {
		return s.RefundFn(ctx, req)
	}
	return nil
}

// CreateTransfer records req and returns a pending transfer.
func (s *PaymentProcessorStub) CreateTransfer(ctx context.Context, req model.TransferRequest) (*model.TransferResult, error) {
	s.mu.Lock()
	s.Transfers = append(s.Transfers, req)
	s.mu.Unlock()
	if s.CreateTransferFn != nil {
		return s.CreateTransferFn(ctx, req)
	}
	return &model.TransferResult{ID: fmt.Sprintf("tr_%d", s.next()), Status: model.TransferPending}, nil
}

// AvailableBalance returns the configured balance.
func (s *PaymentProcessorStub) AvailableBalance(ctx context.Context, currency string) (int64, error) {
	if s.AvailableBalanceFn != nil {
		return s.AvailableBalanceFn(ctx, currency)
	}
	return s.Balance, nil
}

// ParseEvent delegates to the override or fails.
func (s *PaymentProcessorStub) ParseEvent(payload []byte, signature string) (*model.PaymentEvent, error) {
	if s.ParseEventFn != nil {
		return s.ParseEventFn(payload, signature)
	}
	return nil, fmt.Errorf("no event configured")
}

// Calls returns how many refunds, transfers and intents were requested.
func (s *PaymentProcessorStub) Calls() (intents, refunds, transfers int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Intents), len(s.Refunds), len(s.Transfers)
}

// MailerStub collects sent emails.
type MailerStub struct {
	SendFn func(context.Context, model.Email) error

	mu   sync.Mutex
	Sent []model.Email
}

// Send stores email unless SendFn fails.
func (s *MailerStub) Send(ctx context.Context, email model.Email) error {
	if s.SendFn != nil {
		if err := s.SendFn(ctx, email); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Sent = append(s.Sent, email)
	return nil
}

// Emails returns a copy of sent emails.
func (s *MailerStub) Emails() []model.Email {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Email(nil), s.Sent...)
}

// ObjectStoreStub keeps uploaded objects in memory.
type ObjectStoreStub struct {
	PutFn func(context.Context, string, io.ReadSeeker, int64, string) error

	mu      sync.Mutex
	Objects map[string][]byte
}

// Put stores the object body.
func (s *ObjectStoreStub) Put(ctx context.Context, key string, body io.ReadSeeker, size int64, contentType string) error {
	if s.PutFn != nil {
		return s.PutFn(ctx, key, body, size, contentType)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Objects == nil {
		s.Objects = make(map[string][]byte)
	}
	s.Objects[key] = data
	return nil
}

// URL returns a fake signed link.
func (s *ObjectStoreStub) URL(_ context.Context, key string, ttl time.Duration) (string, error) {
	return fmt.Sprintf("https://videos.test/%s?ttl=%d", key, int(ttl.Seconds())), nil
}

// NumberGeneratorStub yields sequential order numbers starting at Start.
type NumberGeneratorStub struct {
	Start int64
	n     int64
}

// Next returns the next number.
func (g *NumberGeneratorStub) Next() string {
	return fmt.Sprintf("%d", g.Start+atomic.AddInt64(&g.n, 1))
}
