package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/shoutout/internal/domain/errors"
	"github.com/polkiloo/shoutout/internal/domain/model"
	"github.com/polkiloo/shoutout/internal/domain/repository"
)

// ApproveInput carries the optional extras a customer can attach to an approval.
type ApproveInput struct {
	TipAmount  *decimal.Decimal
	TipMessage string
	Rating     *int
	Comment    string
}

// ApprovalResult describes the money moved by an approval.
type ApprovalResult struct {
	Order            *model.Order
	Payout           *model.Payout
	Transfer         *model.Transfer
	CelebrityCents   int64
	PlatformFeeCents int64
	Simulated        bool

	Tip             *model.Tip
	TipClientSecret string
	Review          *model.Review
	Warnings        []string
}

// ApprovalUseCase handles the customer's verdict on a delivered video.
type ApprovalUseCase struct {
	repos     repository.Factory
	tx        repository.Transactor
	processor PaymentProcessor
	tips      *TipUseCase
	reviews   *ReviewUseCase
	settings  Settings
	logger    *slog.Logger
	now       func() time.Time
}

// NewApprovalUseCase constructs ApprovalUseCase.
func NewApprovalUseCase(repos repository.Factory, tx repository.Transactor, processor PaymentProcessor, tips *TipUseCase, reviews *ReviewUseCase, settings Settings, logger *slog.Logger) *ApprovalUseCase {
	return &ApprovalUseCase{
		repos:     repos,
		tx:        tx,
		processor: processor,
		tips:      tips,
		reviews:   reviews,
		settings:  settings,
		logger:    logger,
		now:       time.Now,
	}
}

// Approve accepts the delivered video and pays the celebrity their share.
func (u *ApprovalUseCase) Approve(ctx context.Context, customerID int64, number string, in ApproveInput) (*ApprovalResult, error) {
	if in.TipAmount != nil {
		if _, err := tipCents(*in.TipAmount); err != nil {
			return nil, err
		}
	}
	if in.Rating != nil {
		if err := validateRating(*in.Rating); err != nil {
			return nil, err
		}
	}

	order, err := u.repos.Orders().GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if order.CustomerID != customerID {
		return nil, domainErrors.WithMessage(domainErrors.ErrForbidden, "only the customer who placed the order can approve it")
	}
	if err := order.CheckReviewable(); err != nil {
		return nil, err
	}

	celeb, err := u.repos.Celebrities().GetByID(ctx, order.CelebrityID)
	if err != nil {
		return nil, err
	}
	if !celeb.CanReceivePayouts() {
		return nil, domainErrors.WithMessage(domainErrors.ErrPayoutAccountMissing,
			"the celebrity has not set up a payout account yet, please try again later")
	}

	celebrityCents, feeCents := model.SplitBooking(order.TotalCents)

	transfer, err := u.requestTransfer(ctx, order, celeb, celebrityCents)
	if err != nil {
		return nil, err
	}

	result := &ApprovalResult{
		CelebrityCents:   celebrityCents,
		PlatformFeeCents: feeCents,
		Simulated:        transfer.Simulated,
	}

	err = u.tx.InTransaction(ctx, func(repos repository.Factory) error {
		locked, err := repos.Orders().LockByNumber(ctx, number)
		if err != nil {
			return err
		}
		if err := locked.Approve(u.now()); err != nil {
			return err
		}
		locked.CelebrityCents = celebrityCents
		locked.PlatformFeeCents = feeCents
		locked.TransferStatus = transfer.Status

		payout, tr, err := repos.Payouts().Create(ctx,
			model.Payout{
				OrderID:          locked.ID,
				CelebrityID:      celeb.ID,
				AmountCents:      celebrityCents,
				PlatformFeeCents: feeCents,
				Status:           transfer.Status,
				Simulated:        transfer.Simulated,
			},
			model.Transfer{
				ExternalID:  transfer.ID,
				Destination: celeb.PayoutAccountID,
				AmountCents: celebrityCents,
				Status:      transfer.Status,
				Simulated:   transfer.Simulated,
			})
		if err != nil {
			return fmt.Errorf("record payout: %w", err)
		}

		if err := repos.Orders().Update(ctx, locked); err != nil {
			return err
		}

		subject, body := deliveryApprovedEmail(locked, celebrityCents, transfer.Simulated, u.settings.Currency)
		if err := notify(ctx, repos, celeb.UserID, subject, body); err != nil {
			return err
		}

		result.Order, result.Payout, result.Transfer = locked, payout, tr
		return nil
	})
	if err != nil {
		u.logger.Error("approval failed after transfer request",
			slog.String("order", number),
			slog.String("transfer_id", transfer.ID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	u.logger.Info("order approved",
		slog.String("order", number),
		slog.String("transfer_id", transfer.ID),
		slog.Int64("celebrity_cents", celebrityCents),
		slog.Int64("platform_fee_cents", feeCents),
		slog.Bool("simulated", transfer.Simulated),
	)

	u.applyExtras(ctx, customerID, number, in, result)
	return result, nil
}

// applyExtras creates the optional tip and review. Their failures never undo the approval.
func (u *ApprovalUseCase) applyExtras(ctx context.Context, customerID int64, number string, in ApproveInput, result *ApprovalResult) {
	if in.TipAmount != nil {
		tip, err := u.tips.Create(ctx, customerID, number, *in.TipAmount, in.TipMessage)
		if err != nil {
			u.logger.Warn("tip after approval failed", slog.String("order", number), slog.String("error", err.Error()))
			result.Warnings = append(result.Warnings, "tip was not created: "+domainErrors.Message(err))
		} else {
			result.Tip, result.TipClientSecret = tip.Tip, tip.ClientSecret
		}
	}

	if in.Rating != nil {
		review, err := u.reviews.Create(ctx, customerID, number, *in.Rating, in.Comment)
		if err != nil {
			u.logger.Warn("review after approval failed", slog.String("order", number), slog.String("error", err.Error()))
			result.Warnings = append(result.Warnings, "review was not saved: "+domainErrors.Message(err))
		} else {
			result.Review = review
		}
	}
}

func (u *ApprovalUseCase) requestTransfer(ctx context.Context, order *model.Order, celeb *model.Celebrity, amount int64) (*model.TransferResult, error) {
	balance, err := u.processor.AvailableBalance(ctx, u.settings.Currency)
	switch {
	case err != nil:
		u.logger.Warn("platform balance check failed", slog.String("order", order.Number), slog.String("error", err.Error()))
	case balance < amount:
		return u.simulateOr(order, domainErrors.WithMessage(domainErrors.ErrInsufficientPlatformBalance,
			"the platform balance is too low to pay the celebrity right now, please try again later"))
	}

	transfer, err := u.processor.CreateTransfer(ctx, model.TransferRequest{
		AmountCents:   amount,
		Currency:      u.settings.Currency,
		Destination:   celeb.PayoutAccountID,
		TransferGroup: order.Number,
		Metadata: map[string]string{
			model.MetadataKind:        model.PaymentKindBooking,
			model.MetadataOrderNumber: order.Number,
		},
		IdempotencyKey: transferKey(order, celeb.PayoutAccountID),
	})
	if err != nil {
		res, err := u.simulateOr(order, err)
		if err != nil && transferRejected(err) {
			u.recordRejectedTransfer(ctx, order.Number)
		}
		return res, err
	}
	return transfer, nil
}

// transferKey moves on with the destination and every rejected attempt: the
// processor replays a stored failure for a reused key.
func transferKey(order *model.Order, destination string) string {
	return fmt.Sprintf("transfer-%s-%s-%d", order.Number, destination, order.TransferAttempts)
}

func transferRejected(err error) bool {
	return errors.Is(err, domainErrors.ErrInsufficientPlatformBalance) ||
		errors.Is(err, domainErrors.ErrInvalidPayoutAccount) ||
		errors.Is(err, domainErrors.ErrTransfersNotPermitted)
}

func (u *ApprovalUseCase) recordRejectedTransfer(ctx context.Context, number string) {
	err := u.tx.InTransaction(ctx, func(repos repository.Factory) error {
		order, err := repos.Orders().LockByNumber(ctx, number)
		if err != nil {
			return err
		}
		order.TransferAttempts++
		return repos.Orders().Update(ctx, order)
	})
	if err != nil {
		u.logger.Warn("record rejected transfer failed", slog.String("order", number), slog.String("error", err.Error()))
	}
}

// simulateOr fakes a pending transfer in sandbox mode for failures caused by
// the state of test accounts, and returns err otherwise.
func (u *ApprovalUseCase) simulateOr(order *model.Order, err error) (*model.TransferResult, error) {
	res, simErr := sandboxTransfer(u.settings.Sandbox, order.Number, err)
	if simErr != nil {
		return nil, simErr
	}
	u.logger.Warn("sandbox transfer simulated", slog.String("order", order.Number), slog.String("cause", err.Error()))
	return res, nil
}

func sandboxTransfer(sandbox bool, ref string, err error) (*model.TransferResult, error) {
	if !sandbox {
		return nil, err
	}
	if !errors.Is(err, domainErrors.ErrInsufficientPlatformBalance) && !errors.Is(err, domainErrors.ErrTransfersNotPermitted) {
		return nil, err
	}
	return &model.TransferResult{ID: "sim_" + ref, Status: model.TransferPending, Simulated: true}, nil
}

// Decline rejects the delivered video. While revisions remain the celebrity is
// asked for a new take, afterwards the order is declined for manual review.
func (u *ApprovalUseCase) Decline(ctx context.Context, customerID int64, number string, reasons []string, feedback string) (*model.Order, error) {
	cleaned := make([]string, 0, len(reasons))
	for _, r := range reasons {
		if r = strings.TrimSpace(r); r != "" {
			cleaned = append(cleaned, r)
		}
	}
	if len(cleaned) == 0 {
		return nil, domainErrors.WithMessage(domainErrors.ErrDeclineReasonMissing, "at least one decline reason is required")
	}
	feedback = strings.TrimSpace(feedback)

	var result *model.Order
	err := u.tx.InTransaction(ctx, func(repos repository.Factory) error {
		order, err := repos.Orders().LockByNumber(ctx, number)
		if err != nil {
			return err
		}
		if order.CustomerID != customerID {
			return domainErrors.WithMessage(domainErrors.ErrForbidden, "only the customer who placed the order can decline it")
		}
		if err := order.DeclineDelivery(u.settings.MaxRevisions); err != nil {
			return err
		}
		if err := repos.Orders().Update(ctx, order); err != nil {
			return err
		}

		celeb, err := repos.Celebrities().GetByID(ctx, order.CelebrityID)
		if err != nil {
			return err
		}
		subject, body := deliveryDeclinedEmail(order, cleaned, feedback)
		if err := notify(ctx, repos, celeb.UserID, subject, body); err != nil {
			return err
		}
		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.logger.Info("delivery declined",
		slog.String("order", number),
		slog.String("state", string(result.State)),
		slog.Int("revision", result.RevisionCount),
	)
	return result, nil
}
