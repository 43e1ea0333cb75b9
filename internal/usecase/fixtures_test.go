package usecase

import (
	"io"
	"log/slog"
	"strconv"
	"testing"
	"time"

	"github.com/polkiloo/shoutout/internal/domain/model"
	testhelpers "github.com/polkiloo/shoutout/internal/test"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

type fixture struct {
	store     *testhelpers.MemoryStore
	processor *testhelpers.PaymentProcessorStub
	objects   *testhelpers.ObjectStoreStub
	mailer    *testhelpers.MailerStub
	settings  Settings
	logger    *slog.Logger

	customer  model.User
	celebUser model.User
	celeb     model.Celebrity

	seq int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := testhelpers.NewMemoryStore()
	f := &fixture{
		store:     store,
		processor: testhelpers.NewPaymentProcessorStub(),
		objects:   &testhelpers.ObjectStoreStub{},
		mailer:    &testhelpers.MailerStub{},
		logger:    discardLogger(),
		settings: Settings{
			Currency:          "usd",
			MaxRevisions:      2,
			OutboxLease:       time.Minute,
			OutboxMaxAttempts: 3,
			OrderPaymentTTL:   30 * time.Minute,
			RetentionPeriod:   24 * time.Hour,
			VideoURLTTL:       time.Hour,
		},
	}
	f.customer = store.SeedUser(model.User{Login: "fan", Email: "fan@example.com", Role: model.RoleCustomer})
	f.celebUser = store.SeedUser(model.User{Login: "star", Email: "star@example.com", Role: model.RoleCelebrity})
	f.celeb = store.SeedCelebrity(model.Celebrity{
		UserID:          f.celebUser.ID,
		Slug:            "jane-star",
		DisplayName:     "Jane Star",
		PriceCents:      30000,
		PayoutAccountID: "acct_jane",
	})
	return f
}

// order seeds an order of the fixture customer in state.
func (f *fixture) order(state model.OrderState, mutate ...func(*model.Order)) model.Order {
	f.seq++
	o := model.NewOrder(strconv.Itoa(5000+f.seq), f.customer.ID, f.celeb, model.OrderDetails{
		RecipientName: "Sam",
		Occasion:      "birthday",
	})
	o.State = state
	if state != model.OrderStatePendingPayment {
		o.PaymentIntentID = "pi_seed_" + o.Number
	}
	for _, fn := range mutate {
		fn(&o)
	}
	return f.store.SeedOrder(o)
}

func (f *fixture) emailsTo(address string) []model.Email {
	var out []model.Email
	for _, msg := range f.store.OutboxOfKind(model.OutboxKindEmail) {
		var email model.Email
		if err := msg.Decode(&email); err != nil {
			continue
		}
		if email.To == address {
			out = append(out, email)
		}
	}
	return out
}

func (f *fixture) otherCelebrity() (model.User, model.Celebrity) {
	user := f.store.SeedUser(model.User{Login: "rival", Email: "rival@example.com", Role: model.RoleCelebrity})
	celeb := f.store.SeedCelebrity(model.Celebrity{UserID: user.ID, Slug: "rival", DisplayName: "Rival", PriceCents: 1000})
	return user, celeb
}

func (f *fixture) approval() *ApprovalUseCase {
	tips := NewTipUseCase(f.store, f.processor, f.settings, f.logger)
	return NewApprovalUseCase(f.store, f.store, f.processor, tips, NewReviewUseCase(f.store), f.settings, f.logger)
}
