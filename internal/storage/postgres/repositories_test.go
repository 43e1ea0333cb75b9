package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmockv3 "github.com/pashagolub/pgxmock/v3"

	domainErrors "github.com/polkiloo/shoutout/internal/domain/errors"
	"github.com/polkiloo/shoutout/internal/domain/model"
)

var orderColumnNames = []string{
	"id", "number", "customer_id", "celebrity_id", "recipient_name", "occasion", "instructions",
	"total_cents", "celebrity_cents", "platform_fee_cents", "tip_cents", "state", "cancel_reason",
	"refund_status", "transfer_status", "revision_count", "transfer_attempts", "video_key", "payment_intent_id",
	"approved_at", "created_at", "updated_at",
}

func orderRow(rows *pgxmockv3.Rows, id int64, number string, state model.OrderState) *pgxmockv3.Rows {
	now := time.Now()
	return rows.AddRow(id, number, int64(10), int64(20), "Ann", "birthday", "sing",
		int64(10000), int64(8000), int64(2000), int64(0), state, model.CancelReasonNone,
		model.RefundNone, model.TransferNone, 0, 0, "", "pi_1",
		nil, now, now)
}

func TestUserRepository(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := storage.Users()
	ctx := context.Background()
	now := time.Now()

	user := model.User{Login: "user", Email: "u@example.com", PasswordHash: "hash", Role: model.RoleCustomer}
	mock.ExpectQuery("INSERT INTO users").WithArgs("user", "u@example.com", "hash", model.RoleCustomer).WillReturnRows(
		pgxmockv3.NewRows([]string{"id", "created_at"}).AddRow(int64(1), now),
	)
	created, err := repo.Create(ctx, user)
	if err != nil || created.ID != 1 || created.Login != "user" {
		t.Fatalf("unexpected create result: %+v err=%v", created, err)
	}

	mock.ExpectQuery("INSERT INTO users").WithArgs("user", "u@example.com", "hash", model.RoleCustomer).WillReturnError(&pgconn.PgError{Code: "23505"})
	if _, err := repo.Create(ctx, user); !errors.Is(err, domainErrors.ErrAlreadyExists) {
		t.Fatalf("expected already exists, got %v", err)
	}

	columns := []string{"id", "login", "email", "password_hash", "role", "created_at"}
	mock.ExpectQuery("SELECT id, login, email, password_hash, role, created_at FROM users WHERE login=").WithArgs("user").WillReturnRows(
		pgxmockv3.NewRows(columns).AddRow(int64(1), "user", "u@example.com", "hash", model.RoleCelebrity, now),
	)
	found, err := repo.GetByLogin(ctx, "user")
	if err != nil || found.Role != model.RoleCelebrity {
		t.Fatalf("unexpected user: %+v err=%v", found, err)
	}

	mock.ExpectQuery("FROM users WHERE login=").WithArgs("missing").WillReturnError(pgx.ErrNoRows)
	if _, err := repo.GetByLogin(ctx, "missing"); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	mock.ExpectQuery("FROM users WHERE id=").WithArgs(int64(1)).WillReturnRows(
		pgxmockv3.NewRows(columns).AddRow(int64(1), "user", "u@example.com", "hash", model.RoleCustomer, now),
	)
	if _, err := repo.GetByID(ctx, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectQuery("FROM users WHERE id=").WithArgs(int64(2)).WillReturnError(errors.New("boom"))
	if _, err := repo.GetByID(ctx, 2); err == nil || err.Error() != "boom" {
		t.Fatalf("expected passthrough error, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestCelebrityRepository(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := storage.Celebrities()
	ctx := context.Background()
	now := time.Now()

	mock.ExpectQuery("INSERT INTO celebrities").WithArgs(int64(5), "jane-doe", "Jane Doe", int64(5000), "").WillReturnRows(
		pgxmockv3.NewRows([]string{"id", "created_at"}).AddRow(int64(3), now),
	)
	celeb, err := repo.Create(ctx, model.Celebrity{UserID: 5, Slug: "jane-doe", DisplayName: "Jane Doe", PriceCents: 5000})
	if err != nil || celeb.ID != 3 {
		t.Fatalf("unexpected celebrity: %+v err=%v", celeb, err)
	}

	columns := []string{"id", "user_id", "slug", "display_name", "price_cents", "payout_account_id", "created_at"}
	mock.ExpectQuery("FROM celebrities WHERE slug=").WithArgs("jane-doe").WillReturnRows(
		pgxmockv3.NewRows(columns).AddRow(int64(3), int64(5), "jane-doe", "Jane Doe", int64(5000), "acct_1", now),
	)
	celeb, err = repo.GetBySlug(ctx, "jane-doe")
	if err != nil || !celeb.CanReceivePayouts() {
		t.Fatalf("unexpected celebrity: %+v err=%v", celeb, err)
	}

	mock.ExpectQuery("FROM celebrities WHERE user_id=").WithArgs(int64(9)).WillReturnError(pgx.ErrNoRows)
	if _, err := repo.GetByUserID(ctx, 9); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	mock.ExpectExec("UPDATE celebrities SET payout_account_id").WithArgs("acct_2", int64(3)).WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	if err := repo.UpdatePayoutAccount(ctx, 3, "acct_2"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectExec("UPDATE celebrities SET payout_account_id").WithArgs("acct_2", int64(4)).WillReturnResult(pgxmockv3.NewResult("UPDATE", 0))
	if err := repo.UpdatePayoutAccount(ctx, 4, "acct_2"); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	mock.ExpectQuery("FROM celebrities ORDER BY display_name").WithArgs(10, 0).WillReturnRows(
		pgxmockv3.NewRows(columns).
			AddRow(int64(3), int64(5), "jane-doe", "Jane Doe", int64(5000), "", now).
			AddRow(int64(4), int64(6), "john", "John", int64(7000), "", now),
	)
	list, err := repo.List(ctx, 10, 0)
	if err != nil || len(list) != 2 {
		t.Fatalf("unexpected list: %v err=%v", list, err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryCreateAndGet(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := storage.Orders()
	ctx := context.Background()
	now := time.Now()

	order := model.NewOrder("100", 10, model.Celebrity{ID: 20, PriceCents: 10000},
		model.OrderDetails{RecipientName: "Ann", Occasion: "birthday", Instructions: "sing"})
	order.PaymentIntentID = "pi_1"
	mock.ExpectQuery("INSERT INTO orders").WithArgs(
		"100", int64(10), int64(20), "Ann", "birthday", "sing",
		int64(10000), int64(8000), int64(2000), model.OrderStatePendingPayment, model.RefundNone, "pi_1",
	).WillReturnRows(pgxmockv3.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(1), now, now))
	created, err := repo.Create(ctx, order)
	if err != nil || created.ID != 1 {
		t.Fatalf("unexpected order: %+v err=%v", created, err)
	}

	mock.ExpectQuery("INSERT INTO orders").WillReturnError(&pgconn.PgError{Code: "23505"})
	if _, err := repo.Create(ctx, order); !errors.Is(err, domainErrors.ErrAlreadyExists) {
		t.Fatalf("expected already exists, got %v", err)
	}

	mock.ExpectQuery("FROM orders WHERE number=").WithArgs("100").WillReturnRows(
		orderRow(pgxmockv3.NewRows(orderColumnNames), 1, "100", model.OrderStatePaid),
	)
	got, err := repo.GetByNumber(ctx, "100")
	if err != nil || got.State != model.OrderStatePaid || got.RecipientName != "Ann" || got.ApprovedAt != nil {
		t.Fatalf("unexpected order: %+v err=%v", got, err)
	}

	mock.ExpectQuery("FROM orders WHERE payment_intent_id=").WithArgs("pi_missing").WillReturnError(pgx.ErrNoRows)
	if _, err := repo.GetByPaymentIntent(ctx, "pi_missing"); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	mock.ExpectQuery("FROM orders WHERE id=.+ FOR UPDATE").WithArgs(int64(1)).WillReturnRows(
		orderRow(pgxmockv3.NewRows(orderColumnNames), 1, "100", model.OrderStateConfirmed),
	)
	if _, err := repo.LockByID(ctx, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectQuery("FROM orders WHERE number=.+ FOR UPDATE").WithArgs("100").WillReturnRows(
		orderRow(pgxmockv3.NewRows(orderColumnNames), 1, "100", model.OrderStateDelivered),
	)
	if _, err := repo.LockByNumber(ctx, "100"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectQuery("FROM orders WHERE id=").WithArgs(int64(2)).WillReturnError(errors.New("fail"))
	if _, err := repo.GetByID(ctx, 2); err == nil {
		t.Fatal("expected error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryUpdate(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := storage.Orders()
	ctx := context.Background()
	now := time.Now()

	order := &model.Order{ID: 1, Number: "100", State: model.OrderStateApproved, RefundStatus: model.RefundNone,
		TransferStatus: model.TransferPending, CelebrityCents: 8000, PlatformFeeCents: 2000, ApprovedAt: &now,
		TransferAttempts: 2}
	mock.ExpectQuery("UPDATE orders SET state=").WithArgs(
		model.OrderStateApproved, model.CancelReasonNone, model.RefundNone, model.TransferPending,
		0, "", "", int64(8000), int64(2000), &now, 2, int64(1),
	).WillReturnRows(pgxmockv3.NewRows([]string{"updated_at"}).AddRow(now))
	if err := repo.Update(ctx, order); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !order.UpdatedAt.Equal(now) {
		t.Fatalf("expected updated_at to be refreshed")
	}

	mock.ExpectQuery("UPDATE orders SET state=").WillReturnError(pgx.ErrNoRows)
	if err := repo.Update(ctx, order); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	mock.ExpectExec("UPDATE orders SET tip_cents").WithArgs(int64(250), int64(1)).WillReturnError(errors.New("exec"))
	if err := repo.AddTip(ctx, 1, 250); err == nil {
		t.Fatal("expected error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryLists(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := storage.Orders()
	ctx := context.Background()

	mock.ExpectQuery("FROM orders WHERE customer_id=").WithArgs(int64(10)).WillReturnRows(
		orderRow(orderRow(pgxmockv3.NewRows(orderColumnNames), 1, "100", model.OrderStatePaid), 2, "101", model.OrderStateApproved),
	)
	list, err := repo.ListByCustomer(ctx, 10)
	if err != nil || len(list) != 2 || list[1].Number != "101" {
		t.Fatalf("unexpected list: %v err=%v", list, err)
	}

	mock.ExpectQuery("FROM orders WHERE celebrity_id=").WithArgs(int64(20)).WillReturnError(errors.New("query"))
	if _, err := repo.ListByCelebrity(ctx, 20); err == nil {
		t.Fatal("expected error")
	}

	mock.ExpectQuery("FROM orders WHERE state=").WithArgs(model.OrderStatePaid, 50).WillReturnRows(
		pgxmockv3.NewRows(orderColumnNames),
	)
	list, err = repo.ListByState(ctx, model.OrderStatePaid, 50)
	if err != nil || len(list) != 0 {
		t.Fatalf("expected empty list, got %v err=%v", list, err)
	}

	before := time.Now()
	mock.ExpectQuery("FOR UPDATE SKIP LOCKED").WithArgs(before, 100).WillReturnRows(
		orderRow(pgxmockv3.NewRows(orderColumnNames), 3, "102", model.OrderStatePendingPayment),
	)
	list, err = repo.ListUnpaidBefore(ctx, before, 100)
	if err != nil || len(list) != 1 {
		t.Fatalf("unexpected list: %v err=%v", list, err)
	}

	mock.ExpectQuery("FROM orders WHERE customer_id=").WithArgs(int64(11)).WillReturnRows(
		orderRow(pgxmockv3.NewRows(orderColumnNames), 1, "100", model.OrderStatePaid).RowError(0, errors.New("row")),
	)
	if _, err := repo.ListByCustomer(ctx, 11); err == nil {
		t.Fatal("expected row error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestTipRepository(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := storage.Tips()
	ctx := context.Background()
	now := time.Now()

	tip := model.NewTip(model.Order{ID: 1, CelebrityID: 20}, 10, 2500, "thanks")
	mock.ExpectQuery("INSERT INTO tips").WithArgs(
		int64(1), int64(10), int64(20), int64(2500), int64(2500), int64(0), "thanks", model.PaymentPending,
	).WillReturnRows(pgxmockv3.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(7), now, now))
	created, err := repo.Create(ctx, tip)
	if err != nil || created.ID != 7 {
		t.Fatalf("unexpected tip: %+v err=%v", created, err)
	}

	columns := []string{"id", "order_id", "user_id", "celebrity_id", "amount_cents", "celebrity_cents",
		"platform_fee_cents", "message", "payment_status", "payment_intent_id", "created_at", "updated_at"}
	mock.ExpectQuery("FROM tips WHERE id=").WithArgs(int64(7)).WillReturnRows(
		pgxmockv3.NewRows(columns).AddRow(int64(7), int64(1), int64(10), int64(20), int64(2500), int64(2500),
			int64(0), "thanks", model.PaymentSucceeded, "pi_tip", now, now),
	)
	got, err := repo.GetByID(ctx, 7)
	if err != nil || got.PaymentStatus != model.PaymentSucceeded {
		t.Fatalf("unexpected tip: %+v err=%v", got, err)
	}

	mock.ExpectExec("UPDATE tips SET payment_intent_id").WithArgs("pi_tip", int64(7)).WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	if err := repo.SetPaymentIntent(ctx, 7, "pi_tip"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectExec("UPDATE tips SET payment_status").WithArgs(model.PaymentSucceeded, int64(7), model.PaymentPending).WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	moved, err := repo.UpdatePaymentStatus(ctx, 7, model.PaymentPending, model.PaymentSucceeded)
	if err != nil || !moved {
		t.Fatalf("expected status change, got %v err=%v", moved, err)
	}

	mock.ExpectExec("UPDATE tips SET payment_status").WithArgs(model.PaymentSucceeded, int64(7), model.PaymentPending).WillReturnResult(pgxmockv3.NewResult("UPDATE", 0))
	moved, err = repo.UpdatePaymentStatus(ctx, 7, model.PaymentPending, model.PaymentSucceeded)
	if err != nil || moved {
		t.Fatalf("expected no-op, got %v err=%v", moved, err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestPayoutRepository(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := storage.Payouts()
	ctx := context.Background()
	now := time.Now()

	payout := model.Payout{OrderID: 1, CelebrityID: 20, AmountCents: 8000, PlatformFeeCents: 2000, Status: model.TransferPending}
	transfer := model.Transfer{ExternalID: "tr_1", Destination: "acct_1", AmountCents: 8000, Status: model.TransferPending}

	mock.ExpectQuery("INSERT INTO payouts").WithArgs(int64(1), (*int64)(nil), int64(20), int64(8000), int64(2000), model.TransferPending, false).
		WillReturnRows(pgxmockv3.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(4), now, now))
	mock.ExpectQuery("INSERT INTO transfers").WithArgs(int64(4), "tr_1", "acct_1", int64(8000), model.TransferPending, false, "").
		WillReturnRows(pgxmockv3.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(9), now, now))
	p, tr, err := repo.Create(ctx, payout, transfer)
	if err != nil || p.ID != 4 || tr.PayoutID != 4 || tr.ID != 9 {
		t.Fatalf("unexpected payout: %+v %+v err=%v", p, tr, err)
	}

	mock.ExpectQuery("INSERT INTO payouts").WillReturnRows(pgxmockv3.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(5), now, now))
	mock.ExpectQuery("INSERT INTO transfers").WillReturnError(&pgconn.PgError{Code: "23505"})
	if _, _, err := repo.Create(ctx, payout, transfer); !errors.Is(err, domainErrors.ErrAlreadyExists) {
		t.Fatalf("expected already exists, got %v", err)
	}

	payoutRowColumns := []string{"id", "order_id", "tip_id", "celebrity_id", "amount_cents", "platform_fee_cents", "status", "simulated", "created_at", "updated_at"}

	mock.ExpectQuery("SELECT payout_id, status FROM transfers WHERE external_id=.+ FOR UPDATE").WithArgs("tr_1").
		WillReturnRows(pgxmockv3.NewRows([]string{"payout_id", "status"}).AddRow(int64(4), model.TransferInTransit))
	mock.ExpectExec("UPDATE transfers SET status").WithArgs(model.TransferPaid, "", "tr_1").
		WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	mock.ExpectQuery("UPDATE payouts SET status").WithArgs(model.TransferPaid, int64(4)).WillReturnRows(
		pgxmockv3.NewRows(payoutRowColumns).
			AddRow(int64(4), int64(1), nil, int64(20), int64(8000), int64(2000), model.TransferPaid, false, now, now),
	)
	updated, applied, err := repo.UpdateTransferStatus(ctx, "tr_1", model.TransferPaid, "")
	if err != nil || !applied || updated.Status != model.TransferPaid || updated.TipID != nil {
		t.Fatalf("unexpected payout: %+v applied=%v err=%v", updated, applied, err)
	}

	// a late in-transit event leaves a paid transfer alone
	mock.ExpectQuery("SELECT payout_id, status FROM transfers WHERE external_id=.+ FOR UPDATE").WithArgs("tr_1").
		WillReturnRows(pgxmockv3.NewRows([]string{"payout_id", "status"}).AddRow(int64(4), model.TransferPaid))
	mock.ExpectQuery("FROM payouts WHERE id=").WithArgs(int64(4)).WillReturnRows(
		pgxmockv3.NewRows(payoutRowColumns).
			AddRow(int64(4), int64(1), nil, int64(20), int64(8000), int64(2000), model.TransferPaid, false, now, now),
	)
	stale, applied, err := repo.UpdateTransferStatus(ctx, "tr_1", model.TransferInTransit, "")
	if err != nil || applied || stale.Status != model.TransferPaid {
		t.Fatalf("expected stale update to be ignored: %+v applied=%v err=%v", stale, applied, err)
	}

	mock.ExpectQuery("SELECT payout_id, status FROM transfers").WithArgs("tr_x").WillReturnError(pgx.ErrNoRows)
	if _, _, err := repo.UpdateTransferStatus(ctx, "tr_x", model.TransferFailed, "reversed"); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	tipID := int64(7)
	mock.ExpectQuery("INSERT INTO payouts").WithArgs(int64(1), &tipID, int64(20), int64(1500), int64(0), model.TransferPending, false).
		WillReturnError(&pgconn.PgError{Code: "23505"})
	tipPayout := model.Payout{OrderID: 1, TipID: &tipID, CelebrityID: 20, AmountCents: 1500, Status: model.TransferPending}
	if _, _, err := repo.Create(ctx, tipPayout, model.Transfer{ExternalID: "tr_tip"}); !errors.Is(err, domainErrors.ErrAlreadyExists) {
		t.Fatalf("expected duplicate tip payout to be rejected, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestReviewRepository(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := storage.Reviews()
	ctx := context.Background()
	now := time.Now()

	review := model.Review{OrderID: 1, UserID: 10, CelebrityID: 20, Rating: 5, Comment: "great"}
	mock.ExpectQuery("INSERT INTO reviews").WithArgs(int64(1), int64(10), int64(20), 5, "great").
		WillReturnRows(pgxmockv3.NewRows([]string{"id", "created_at"}).AddRow(int64(2), now))
	if created, err := repo.Create(ctx, review); err != nil || created.ID != 2 {
		t.Fatalf("unexpected review: %+v err=%v", created, err)
	}

	mock.ExpectQuery("INSERT INTO reviews").WillReturnError(&pgconn.PgError{Code: "23505"})
	if _, err := repo.Create(ctx, review); !errors.Is(err, domainErrors.ErrAlreadyExists) {
		t.Fatalf("expected duplicate, got %v", err)
	}

	mock.ExpectQuery("FROM reviews WHERE celebrity_id=").WithArgs(int64(20), 5).WillReturnRows(
		pgxmockv3.NewRows([]string{"id", "order_id", "user_id", "celebrity_id", "rating", "comment", "created_at"}).
			AddRow(int64(2), int64(1), int64(10), int64(20), 5, "great", now),
	)
	list, err := repo.ListByCelebrity(ctx, 20, 5)
	if err != nil || len(list) != 1 || list[0].Rating != 5 {
		t.Fatalf("unexpected reviews: %v err=%v", list, err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOutboxRepository(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := storage.Outbox()
	ctx := context.Background()
	now := time.Now()

	msg, err := model.NewOutboxMessage(model.OutboxKindEmail, model.Email{To: "a@example.com", Subject: "hi"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mock.ExpectExec("INSERT INTO outbox").WithArgs(msg.ID, model.OutboxKindEmail, []byte(msg.Payload), msg.NextAttemptAt).
		WillReturnResult(pgxmockv3.NewResult("INSERT", 1))
	if err := repo.Enqueue(ctx, msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectExec("INSERT INTO outbox").WillReturnError(errors.New("insert"))
	if err := repo.Enqueue(ctx, msg); err == nil {
		t.Fatal("expected error")
	}

	payload, _ := json.Marshal(model.Email{To: "a@example.com"})
	id := uuid.New()
	mock.ExpectQuery("UPDATE outbox SET next_attempt_at").WithArgs(float64(30), 10).WillReturnRows(
		pgxmockv3.NewRows([]string{"id", "kind", "payload", "attempts", "next_attempt_at", "last_error", "dead", "created_at", "processed_at"}).
			AddRow(id, model.OutboxKindEmail, payload, 1, now, "smtp down", false, now, nil),
	)
	claimed, err := repo.ClaimBatch(ctx, 10, 30*time.Second)
	if err != nil || len(claimed) != 1 || claimed[0].ID != id || claimed[0].Attempts != 1 {
		t.Fatalf("unexpected claim: %+v err=%v", claimed, err)
	}
	var email model.Email
	if err := claimed[0].Decode(&email); err != nil || email.To != "a@example.com" {
		t.Fatalf("unexpected payload: %+v err=%v", email, err)
	}

	mock.ExpectExec("UPDATE outbox SET processed_at").WithArgs(id).WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	if err := repo.MarkProcessed(ctx, id); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectExec("UPDATE outbox SET attempts").WithArgs(2, now, "boom", true, id).WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	if err := repo.MarkFailed(ctx, id, 2, now, "boom", true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectExec("DELETE FROM outbox").WithArgs(now).WillReturnResult(pgxmockv3.NewResult("DELETE", 3))
	if n, err := repo.PurgeProcessed(ctx, now); err != nil || n != 3 {
		t.Fatalf("unexpected purge result: %d err=%v", n, err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestWebhookEventRepository(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := storage.WebhookEvents()
	ctx := context.Background()
	now := time.Now()

	event := model.WebhookEvent{Provider: "stripe", EventID: "evt_1", Type: "payment_intent.succeeded", ReceivedAt: now}
	mock.ExpectExec("INSERT INTO webhook_events").WithArgs("stripe", "evt_1", "payment_intent.succeeded", now).
		WillReturnResult(pgxmockv3.NewResult("INSERT", 1))
	if err := repo.Record(ctx, event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectExec("INSERT INTO webhook_events").WillReturnError(&pgconn.PgError{Code: "23505"})
	if err := repo.Record(ctx, event); !errors.Is(err, domainErrors.ErrAlreadyExists) {
		t.Fatalf("expected duplicate, got %v", err)
	}

	event.ProcessingError = "order not found"
	mock.ExpectExec("ON CONFLICT").WithArgs("stripe", "evt_1", "payment_intent.succeeded", now, "order not found").
		WillReturnResult(pgxmockv3.NewResult("INSERT", 1))
	if err := repo.RecordFailure(ctx, event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectExec("DELETE FROM webhook_events").WithArgs(now).WillReturnResult(pgxmockv3.NewResult("DELETE", 2))
	if n, err := repo.Purge(ctx, now); err != nil || n != 2 {
		t.Fatalf("unexpected purge result: %d err=%v", n, err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}
