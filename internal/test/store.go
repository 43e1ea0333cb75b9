package test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/shoutout/internal/domain/errors"
	"github.com/polkiloo/shoutout/internal/domain/model"
	"github.com/polkiloo/shoutout/internal/domain/repository"
)

type memState struct {
	nextID      int64
	users       map[int64]model.User
	celebrities map[int64]model.Celebrity
	orders      map[int64]model.Order
	tips        map[int64]model.Tip
	payouts     map[int64]model.Payout
	transfers   map[int64]model.Transfer
	reviews     map[int64]model.Review
	outbox      map[uuid.UUID]model.OutboxMessage
	webhooks    map[string]model.WebhookEvent
}

func cloneMap[K comparable, V any](src map[K]V) map[K]V {
	dst := make(map[K]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func (s memState) clone() memState {
	return memState{
		nextID:      s.nextID,
		users:       cloneMap(s.users),
		celebrities: cloneMap(s.celebrities),
		orders:      cloneMap(s.orders),
		tips:        cloneMap(s.tips),
		payouts:     cloneMap(s.payouts),
		transfers:   cloneMap(s.transfers),
		reviews:     cloneMap(s.reviews),
		outbox:      cloneMap(s.outbox),
		webhooks:    cloneMap(s.webhooks),
	}
}

// MemoryStore is an in-memory repository.Factory and repository.Transactor.
// A transaction that returns an error restores the state it started from.
type MemoryStore struct {
	mu sync.Mutex
	st memState

	Now func() time.Time

	OrderUpdateFn  func(model.Order) error
	EnqueueFn      func([]model.OutboxMessage) error
	CreatePayoutFn func(model.Payout, model.Transfer) error

	Transactions int
	Rollbacks    int
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{st: memState{
		nextID:      1,
		users:       map[int64]model.User{},
		celebrities: map[int64]model.Celebrity{},
		orders:      map[int64]model.Order{},
		tips:        map[int64]model.Tip{},
		payouts:     map[int64]model.Payout{},
		transfers:   map[int64]model.Transfer{},
		reviews:     map[int64]model.Review{},
		outbox:      map[uuid.UUID]model.OutboxMessage{},
		webhooks:    map[string]model.WebhookEvent{},
	}}
}

func (s *MemoryStore) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *MemoryStore) id() int64 {
	id := s.st.nextID
	s.st.nextID++
	return id
}

// InTransaction runs fn and restores the previous state when it fails.
func (s *MemoryStore) InTransaction(ctx context.Context, fn func(repository.Factory) error) error {
	s.mu.Lock()
	snapshot := s.st.clone()
	s.Transactions++
	s.mu.Unlock()

	if err := fn(s); err != nil {
		s.mu.Lock()
		s.st = snapshot
		s.Rollbacks++
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *MemoryStore) Users() repository.UserRepository { return memUsers{s} }
func (s *MemoryStore) Celebrities() repository.CelebrityRepository { return memCelebrities{s} }
func (s *MemoryStore) Orders() repository.OrderRepository { return memOrders{s} }
func (s *MemoryStore) Tips() repository.TipRepository { return memTips{s} }
func (s *MemoryStore) Payouts() repository.PayoutRepository { return memPayouts{s} }
func (s *MemoryStore) Reviews() repository.ReviewRepository { return memReviews{s} }
func (s *MemoryStore) Outbox() repository.OutboxRepository { return memOutbox{s} }
func (s *MemoryStore) WebhookEvents() repository.WebhookEventRepository { return memWebhooks{s} }

// SeedUser stores user and returns it with an identifier.
func (s *MemoryStore) SeedUser(user model.User) model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.ID == 0 {
		user.ID = s.id()
	}
	s.st.users[user.ID] = user
	return user
}

// SeedCelebrity stores celebrity and returns it with an identifier.
func (s *MemoryStore) SeedCelebrity(celebrity model.Celebrity) model.Celebrity {
	s.mu.Lock()
	defer s.mu.Unlock()
	if celebrity.ID == 0 {
		celebrity.ID = s.id()
	}
	s.st.celebrities[celebrity.ID] = celebrity
	return celebrity
}

// SeedOrder stores order and returns it with an identifier.
func (s *MemoryStore) SeedOrder(order model.Order) model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	if order.ID == 0 {
		order.ID = s.id()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = s.now()
	}
	if order.RefundStatus == "" {
		order.RefundStatus = model.RefundNone
	}
	s.st.orders[order.ID] = order
	return order
}

// SeedTip stores tip and returns it with an identifier.
func (s *MemoryStore) SeedTip(tip model.Tip) model.Tip {
	s.mu.Lock()
	defer s.mu.Unlock()
	if tip.ID == 0 {
		tip.ID = s.id()
	}
	s.st.tips[tip.ID] = tip
	return tip
}

// SeedPayout stores payout with its transfer.
func (s *MemoryStore) SeedPayout(payout model.Payout, transfer model.Transfer) (model.Payout, model.Transfer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	payout.ID = s.id()
	transfer.ID = s.id()
	transfer.PayoutID = payout.ID
	s.st.payouts[payout.ID] = payout
	s.st.transfers[transfer.ID] = transfer
	return payout, transfer
}

// SeedOutbox stores messages as they are.
func (s *MemoryStore) SeedOutbox(messages ...model.OutboxMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range messages {
		s.st.outbox[m.ID] = m
	}
}

// Order returns the stored order, or a zero value when it is missing.
func (s *MemoryStore) Order(id int64) model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.orders[id]
}

// Tip returns the stored tip.
func (s *MemoryStore) Tip(id int64) model.Tip {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.tips[id]
}

// Celebrity returns the stored celebrity.
func (s *MemoryStore) Celebrity(id int64) model.Celebrity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.celebrities[id]
}

// AllTips returns tips ordered by identifier.
func (s *MemoryStore) AllTips() []model.Tip {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedValues(s.st.tips, func(a, b model.Tip) bool { return a.ID < b.ID })
}

// AllPayouts returns payouts ordered by identifier.
func (s *MemoryStore) AllPayouts() []model.Payout {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedValues(s.st.payouts, func(a, b model.Payout) bool { return a.ID < b.ID })
}

// AllTransfers returns transfers ordered by identifier.
func (s *MemoryStore) AllTransfers() []model.Transfer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedValues(s.st.transfers, func(a, b model.Transfer) bool { return a.ID < b.ID })
}

// AllReviews returns reviews ordered by identifier.
func (s *MemoryStore) AllReviews() []model.Review {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedValues(s.st.reviews, func(a, b model.Review) bool { return a.ID < b.ID })
}

// OutboxMessages returns queued messages, oldest first.
func (s *MemoryStore) OutboxMessages() []model.OutboxMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedValues(s.st.outbox, func(a, b model.OutboxMessage) bool { return a.CreatedAt.Before(b.CreatedAt) })
}

// OutboxMessage returns one stored message.
func (s *MemoryStore) OutboxMessage(id uuid.UUID) model.OutboxMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.outbox[id]
}

// OutboxOfKind returns queued messages of kind.
func (s *MemoryStore) OutboxOfKind(kind model.OutboxKind) []model.OutboxMessage {
	var out []model.OutboxMessage
	for _, m := range s.OutboxMessages() {
		if m.Kind == kind {
			out = append(out, m)
		}
	}
	return out
}

// WebhookRecords returns recorded webhook events.
func (s *MemoryStore) WebhookRecords() []model.WebhookEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedValues(s.st.webhooks, func(a, b model.WebhookEvent) bool { return a.EventID < b.EventID })
}

func sortedValues[K comparable, V any](m map[K]V, less func(a, b V) bool) []V {
	out := make([]V, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

type memUsers struct{ s *MemoryStore }

func (r memUsers) Create(_ context.Context, user model.User) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.st.users {
		if u.Login == user.Login {
			return nil, domainErrors.ErrAlreadyExists
		}
	}
	user.ID = r.s.id()
	user.CreatedAt = r.s.now()
	r.s.st.users[user.ID] = user
	return &user, nil
}

func (r memUsers) GetByLogin(_ context.Context, login string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.st.users {
		if u.Login == login {
			return &u, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

func (r memUsers) GetByID(_ context.Context, id int64) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u, ok := r.s.st.users[id]; ok {
		return &u, nil
	}
	return nil, domainErrors.ErrNotFound
}

type memCelebrities struct{ s *MemoryStore }

func (r memCelebrities) Create(_ context.Context, celebrity model.Celebrity) (*model.Celebrity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.st.celebrities {
		if c.Slug == celebrity.Slug || c.UserID == celebrity.UserID {
			return nil, domainErrors.ErrAlreadyExists
		}
	}
	celebrity.ID = r.s.id()
	celebrity.CreatedAt = r.s.now()
	r.s.st.celebrities[celebrity.ID] = celebrity
	return &celebrity, nil
}

func (r memCelebrities) find(match func(model.Celebrity) bool) (*model.Celebrity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.st.celebrities {
		if match(c) {
			return &c, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

func (r memCelebrities) GetByID(_ context.Context, id int64) (*model.Celebrity, error) {
	return r.find(func(c model.Celebrity) bool { return c.ID == id })
}

func (r memCelebrities) GetBySlug(_ context.Context, slug string) (*model.Celebrity, error) {
	return r.find(func(c model.Celebrity) bool { return c.Slug == slug })
}

func (r memCelebrities) GetByUserID(_ context.Context, userID int64) (*model.Celebrity, error) {
	return r.find(func(c model.Celebrity) bool { return c.UserID == userID })
}

func (r memCelebrities) UpdatePayoutAccount(_ context.Context, id int64, accountID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.st.celebrities[id]
	if !ok {
		return domainErrors.ErrNotFound
	}
	c.PayoutAccountID = accountID
	r.s.st.celebrities[id] = c
	return nil
}

func (r memCelebrities) List(_ context.Context, limit, offset int) ([]model.Celebrity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	all := sortedValues(r.s.st.celebrities, func(a, b model.Celebrity) bool { return a.DisplayName < b.DisplayName })
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

type memOrders struct{ s *MemoryStore }

func (r memOrders) Create(_ context.Context, order model.Order) (*model.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, o := range r.s.st.orders {
		if o.Number == order.Number {
			return nil, domainErrors.ErrAlreadyExists
		}
	}
	order.ID = r.s.id()
	order.CreatedAt = r.s.now()
	order.UpdatedAt = order.CreatedAt
	r.s.st.orders[order.ID] = order
	return &order, nil
}

func (r memOrders) find(match func(model.Order) bool) (*model.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, o := range r.s.st.orders {
		if match(o) {
			return &o, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

func (r memOrders) GetByID(_ context.Context, id int64) (*model.Order, error) {
	return r.find(func(o model.Order) bool { return o.ID == id })
}

func (r memOrders) GetByNumber(_ context.Context, number string) (*model.Order, error) {
	return r.find(func(o model.Order) bool { return o.Number == number })
}

func (r memOrders) GetByPaymentIntent(_ context.Context, paymentIntentID string) (*model.Order, error) {
	return r.find(func(o model.Order) bool { return o.PaymentIntentID != "" && o.PaymentIntentID == paymentIntentID })
}

func (r memOrders) LockByID(ctx context.Context, id int64) (*model.Order, error) {
	return r.GetByID(ctx, id)
}

func (r memOrders) LockByNumber(ctx context.Context, number string) (*model.Order, error) {
	return r.GetByNumber(ctx, number)
}

func (r memOrders) Update(_ context.Context, order *model.Order) error {
	if r.s.OrderUpdateFn != nil {
		if err := r.s.OrderUpdateFn(*order); err != nil {
			return err
		}
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.st.orders[order.ID]; !ok {
		return domainErrors.ErrNotFound
	}
	order.UpdatedAt = r.s.now()
	r.s.st.orders[order.ID] = *order
	return nil
}

func (r memOrders) AddTip(_ context.Context, orderID, cents int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.st.orders[orderID]
	if !ok {
		return domainErrors.ErrNotFound
	}
	o.TipCents += cents
	r.s.st.orders[orderID] = o
	return nil
}

func (r memOrders) list(match func(model.Order) bool, limit int) []model.Order {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Order
	for _, o := range sortedValues(r.s.st.orders, func(a, b model.Order) bool { return a.ID > b.ID }) {
		if match(o) {
			out = append(out, o)
		}
	}
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out
}

func (r memOrders) ListByCustomer(_ context.Context, customerID int64) ([]model.Order, error) {
	return r.list(func(o model.Order) bool { return o.CustomerID == customerID }, 0), nil
}

func (r memOrders) ListByCelebrity(_ context.Context, celebrityID int64) ([]model.Order, error) {
	return r.list(func(o model.Order) bool { return o.CelebrityID == celebrityID }, 0), nil
}

func (r memOrders) ListByState(_ context.Context, state model.OrderState, limit int) ([]model.Order, error) {
	return r.list(func(o model.Order) bool { return o.State == state }, limit), nil
}

func (r memOrders) ListUnpaidBefore(_ context.Context, before time.Time, limit int) ([]model.Order, error) {
	return r.list(func(o model.Order) bool {
		return o.State == model.OrderStatePendingPayment && o.CreatedAt.Before(before)
	}, limit), nil
}

type memTips struct{ s *MemoryStore }

func (r memTips) Create(_ context.Context, tip model.Tip) (*model.Tip, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	tip.ID = r.s.id()
	tip.CreatedAt = r.s.now()
	tip.UpdatedAt = tip.CreatedAt
	r.s.st.tips[tip.ID] = tip
	return &tip, nil
}

func (r memTips) GetByID(_ context.Context, id int64) (*model.Tip, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if tip, ok := r.s.st.tips[id]; ok {
		return &tip, nil
	}
	return nil, domainErrors.ErrNotFound
}

func (r memTips) SetPaymentIntent(_ context.Context, id int64, paymentIntentID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	tip, ok := r.s.st.tips[id]
	if !ok {
		return domainErrors.ErrNotFound
	}
	tip.PaymentIntentID = paymentIntentID
	r.s.st.tips[id] = tip
	return nil
}

func (r memTips) UpdatePaymentStatus(_ context.Context, id int64, from, to model.PaymentStatus) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	tip, ok := r.s.st.tips[id]
	if !ok || tip.PaymentStatus != from {
		return false, nil
	}
	tip.PaymentStatus = to
	r.s.st.tips[id] = tip
	return true, nil
}

func (r memTips) ListByOrder(_ context.Context, orderID int64) ([]model.Tip, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Tip
	for _, tip := range sortedValues(r.s.st.tips, func(a, b model.Tip) bool { return a.ID < b.ID }) {
		if tip.OrderID == orderID {
			out = append(out, tip)
		}
	}
	return out, nil
}

type memPayouts struct{ s *MemoryStore }

// Create writes the payout before the transfer, so a transfer conflict outside a
// transaction leaves the payout behind.
func (r memPayouts) Create(_ context.Context, payout model.Payout, transfer model.Transfer) (*model.Payout, *model.Transfer, error) {
	if r.s.CreatePayoutFn != nil {
		if err := r.s.CreatePayoutFn(payout, transfer); err != nil {
			return nil, nil, err
		}
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if payout.TipID != nil {
		for _, p := range r.s.st.payouts {
			if p.TipID != nil && *p.TipID == *payout.TipID {
				return nil, nil, domainErrors.ErrAlreadyExists
			}
		}
	}
	now := r.s.now()
	payout.ID = r.s.id()
	payout.CreatedAt, payout.UpdatedAt = now, now
	r.s.st.payouts[payout.ID] = payout

	for _, t := range r.s.st.transfers {
		if t.ExternalID == transfer.ExternalID {
			return nil, nil, domainErrors.ErrAlreadyExists
		}
	}
	transfer.ID = r.s.id()
	transfer.PayoutID = payout.ID
	transfer.CreatedAt, transfer.UpdatedAt = now, now
	r.s.st.transfers[transfer.ID] = transfer
	return &payout, &transfer, nil
}

func (r memPayouts) UpdateTransferStatus(_ context.Context, externalID string, status model.TransferStatus, failureReason string) (*model.Payout, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, t := range r.s.st.transfers {
		if t.ExternalID != externalID {
			continue
		}
		payout := r.s.st.payouts[t.PayoutID]
		if !status.Supersedes(t.Status) {
			return &payout, false, nil
		}
		t.Status = status
		t.FailureReason = failureReason
		t.UpdatedAt = r.s.now()
		r.s.st.transfers[id] = t

		payout.Status = status
		payout.UpdatedAt = t.UpdatedAt
		r.s.st.payouts[payout.ID] = payout
		return &payout, true, nil
	}
	return nil, false, domainErrors.ErrNotFound
}

func (r memPayouts) ListByCelebrity(_ context.Context, celebrityID int64) ([]model.Payout, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Payout
	for _, p := range sortedValues(r.s.st.payouts, func(a, b model.Payout) bool { return a.ID > b.ID }) {
		if p.CelebrityID == celebrityID {
			out = append(out, p)
		}
	}
	return out, nil
}

type memReviews struct{ s *MemoryStore }

func (r memReviews) Create(_ context.Context, review model.Review) (*model.Review, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.st.reviews {
		if existing.UserID == review.UserID && existing.OrderID == review.OrderID {
			return nil, domainErrors.ErrAlreadyExists
		}
	}
	review.ID = r.s.id()
	review.CreatedAt = r.s.now()
	r.s.st.reviews[review.ID] = review
	return &review, nil
}

func (r memReviews) ListByCelebrity(_ context.Context, celebrityID int64, limit int) ([]model.Review, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Review
	for _, review := range sortedValues(r.s.st.reviews, func(a, b model.Review) bool { return a.ID > b.ID }) {
		if review.CelebrityID == celebrityID {
			out = append(out, review)
		}
	}
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

type memOutbox struct{ s *MemoryStore }

func (r memOutbox) Enqueue(_ context.Context, messages ...model.OutboxMessage) error {
	if r.s.EnqueueFn != nil {
		if err := r.s.EnqueueFn(messages); err != nil {
			return err
		}
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range messages {
		m.CreatedAt = r.s.now()
		if m.NextAttemptAt.IsZero() {
			m.NextAttemptAt = m.CreatedAt
		}
		r.s.st.outbox[m.ID] = m
	}
	return nil
}

func (r memOutbox) ClaimBatch(_ context.Context, limit int, lease time.Duration) ([]model.OutboxMessage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := r.s.now()
	due := sortedValues(r.s.st.outbox, func(a, b model.OutboxMessage) bool { return a.NextAttemptAt.Before(b.NextAttemptAt) })
	var out []model.OutboxMessage
	for _, m := range due {
		if m.Dead || m.ProcessedAt != nil || m.NextAttemptAt.After(now) {
			continue
		}
		if limit > 0 && len(out) == limit {
			break
		}
		m.NextAttemptAt = now.Add(lease)
		r.s.st.outbox[m.ID] = m
		out = append(out, m)
	}
	return out, nil
}

func (r memOutbox) MarkProcessed(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.st.outbox[id]
	if !ok {
		return domainErrors.ErrNotFound
	}
	now := r.s.now()
	m.ProcessedAt = &now
	r.s.st.outbox[id] = m
	return nil
}

func (r memOutbox) MarkFailed(_ context.Context, id uuid.UUID, attempts int, nextAttempt time.Time, lastError string, dead bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.st.outbox[id]
	if !ok {
		return domainErrors.ErrNotFound
	}
	m.Attempts = attempts
	m.NextAttemptAt = nextAttempt
	m.LastError = lastError
	m.Dead = dead
	r.s.st.outbox[id] = m
	return nil
}

func (r memOutbox) PurgeProcessed(_ context.Context, before time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, m := range r.s.st.outbox {
		if m.ProcessedAt != nil && m.ProcessedAt.Before(before) {
			delete(r.s.st.outbox, id)
			n++
		}
	}
	return n, nil
}

type memWebhooks struct{ s *MemoryStore }

func webhookKey(e model.WebhookEvent) string {
	return e.Provider + "/" + e.EventID
}

func (r memWebhooks) Record(_ context.Context, event model.WebhookEvent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := webhookKey(event)
	if _, ok := r.s.st.webhooks[key]; ok {
		return domainErrors.ErrAlreadyExists
	}
	if event.ReceivedAt.IsZero() {
		event.ReceivedAt = r.s.now()
	}
	r.s.st.webhooks[key] = event
	return nil
}

func (r memWebhooks) RecordFailure(_ context.Context, event model.WebhookEvent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := webhookKey(event)
	existing, ok := r.s.st.webhooks[key]
	if !ok {
		if event.ReceivedAt.IsZero() {
			event.ReceivedAt = r.s.now()
		}
		existing = event
	}
	existing.ProcessingError = event.ProcessingError
	r.s.st.webhooks[key] = existing
	return nil
}

func (r memWebhooks) Purge(_ context.Context, before time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for key, e := range r.s.st.webhooks {
		if e.ReceivedAt.Before(before) {
			delete(r.s.st.webhooks, key)
			n++
		}
	}
	return n, nil
}

var (
	_ repository.Factory    = (*MemoryStore)(nil)
	_ repository.Transactor = (*MemoryStore)(nil)
)
