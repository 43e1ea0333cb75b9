package model

import (
	"fmt"
	"time"

	domainErrors "github.com/polkiloo/shoutout/internal/domain/errors"
)

// OrderState is the single lifecycle state of an order.
type OrderState string

const (
	OrderStatePendingPayment    OrderState = "PENDING_PAYMENT"
	OrderStatePaid              OrderState = "PAID"
	OrderStateConfirmed         OrderState = "CONFIRMED"
	OrderStateDelivered         OrderState = "DELIVERED"
	OrderStateRevisionRequested OrderState = "REVISION_REQUESTED"
	OrderStateApproved          OrderState = "APPROVED"
	OrderStateDeclined          OrderState = "DECLINED"
	OrderStateCancelled         OrderState = "CANCELLED"
)

// Valid reports whether s is a known state.
func (s OrderState) Valid() bool {
	_, ok := orderTransitions[s]
	return ok
}

var orderTransitions = map[OrderState][]OrderState{
	OrderStatePendingPayment:    {OrderStatePaid, OrderStateCancelled},
	OrderStatePaid:              {OrderStateConfirmed, OrderStateCancelled},
	OrderStateConfirmed:         {OrderStateDelivered},
	OrderStateDelivered:         {OrderStateApproved, OrderStateRevisionRequested, OrderStateDeclined},
	OrderStateRevisionRequested: {OrderStateDelivered},
	OrderStateApproved:          nil,
	OrderStateDeclined:          nil,
	OrderStateCancelled:         nil,
}

// CanTransitionTo reports whether next directly follows s.
func (s OrderState) CanTransitionTo(next OrderState) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// FulfillmentStatus is the production view of an order.
type FulfillmentStatus string

const (
	FulfillmentPending   FulfillmentStatus = "PENDING"
	FulfillmentConfirmed FulfillmentStatus = "CONFIRMED"
	FulfillmentCancelled FulfillmentStatus = "CANCELLED"
	FulfillmentCompleted FulfillmentStatus = "COMPLETED"
)

// PaymentStatus describes a charge lifecycle. Used by orders and tips.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentSucceeded PaymentStatus = "SUCCEEDED"
	PaymentFailed    PaymentStatus = "FAILED"
)

// ApprovalStatus is the customer's sign-off on delivered content.
type ApprovalStatus string

const (
	ApprovalPending           ApprovalStatus = "PENDING_APPROVAL"
	ApprovalApproved          ApprovalStatus = "APPROVED"
	ApprovalDeclined          ApprovalStatus = "DECLINED"
	ApprovalRevisionRequested ApprovalStatus = "REVISION_REQUESTED"
)

// CancelReason tells why an order reached CANCELLED.
type CancelReason string

const (
	CancelReasonNone              CancelReason = ""
	CancelReasonPaymentFailed     CancelReason = "PAYMENT_FAILED"
	CancelReasonCelebrityDeclined CancelReason = "CELEBRITY_DECLINED"
	CancelReasonExpired           CancelReason = "EXPIRED"
)

// RefundStatus tracks the refund of a cancelled, paid order.
type RefundStatus string

const (
	RefundNone      RefundStatus = "NONE"
	RefundRequested RefundStatus = "REQUESTED"
	RefundSucceeded RefundStatus = "SUCCEEDED"
	RefundFailed    RefundStatus = "FAILED"
)

// TransferStatus mirrors the processor transfer lifecycle.
type TransferStatus string

const (
	TransferNone      TransferStatus = ""
	TransferPending   TransferStatus = "PENDING"
	TransferInTransit TransferStatus = "IN_TRANSIT"
	TransferPaid      TransferStatus = "PAID"
	TransferFailed    TransferStatus = "FAILED"
)

var transferRank = map[TransferStatus]int{
	TransferNone:      0,
	TransferPending:   1,
	TransferInTransit: 2,
	TransferPaid:      3,
	TransferFailed:    4,
}

// Supersedes reports whether s may replace current. Transfer statuses only move
// forward; a reversal after payment is the one way out of PAID.
func (s TransferStatus) Supersedes(current TransferStatus) bool {
	return transferRank[s] > transferRank[current]
}

// OrderDetails is what the customer asks the celebrity to record.
type OrderDetails struct {
	RecipientName string
	Occasion      string
	Instructions  string
}

// Order is the canonical purchase record.
type Order struct {
	ID          int64
	Number      string
	CustomerID  int64
	CelebrityID int64
	OrderDetails

	TotalCents       int64
	CelebrityCents   int64
	PlatformFeeCents int64
	TipCents         int64

	State           OrderState
	CancelReason    CancelReason
	RefundStatus    RefundStatus
	TransferStatus  TransferStatus
	RevisionCount   int
	VideoKey        string
	PaymentIntentID string
	ApprovedAt      *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// TransferAttempts counts payout transfers the processor rejected.
	TransferAttempts int
}

// NewOrder builds an order awaiting payment priced at the celebrity's rate.
func NewOrder(number string, customerID int64, celebrity Celebrity, details OrderDetails) Order {
	celebrityCents, fee := SplitBooking(celebrity.PriceCents)
	return Order{
		Number:           number,
		CustomerID:       customerID,
		CelebrityID:      celebrity.ID,
		OrderDetails:     details,
		TotalCents:       celebrity.PriceCents,
		CelebrityCents:   celebrityCents,
		PlatformFeeCents: fee,
		State:            OrderStatePendingPayment,
		RefundStatus:     RefundNone,
	}
}

// FulfillmentStatus derives the fulfillment dimension from the state.
func (o *Order) FulfillmentStatus() FulfillmentStatus {
	switch o.State {
	case OrderStatePendingPayment, OrderStatePaid:
		return FulfillmentPending
	case OrderStateApproved:
		return FulfillmentCompleted
	case OrderStateCancelled:
		return FulfillmentCancelled
	default:
		return FulfillmentConfirmed
	}
}

// PaymentStatus derives the payment dimension from the state.
func (o *Order) PaymentStatus() PaymentStatus {
	switch o.State {
	case OrderStatePendingPayment:
		return PaymentPending
	case OrderStateCancelled:
		if o.CancelReason == CancelReasonPaymentFailed {
			return PaymentFailed
		}
		// a refund only exists for money that was actually collected
		if o.RefundStatus != RefundNone && o.RefundStatus != "" {
			return PaymentSucceeded
		}
		return PaymentPending
	default:
		return PaymentSucceeded
	}
}

// ApprovalStatus derives the approval dimension from the state.
func (o *Order) ApprovalStatus() ApprovalStatus {
	switch o.State {
	case OrderStateApproved:
		return ApprovalApproved
	case OrderStateDeclined:
		return ApprovalDeclined
	case OrderStateRevisionRequested:
		return ApprovalRevisionRequested
	default:
		return ApprovalPending
	}
}

func (o *Order) moveTo(next OrderState) error {
	if !o.State.CanTransitionTo(next) {
		return domainErrors.WithMessage(domainErrors.ErrInvalidTransition,
			fmt.Sprintf("order %s cannot move from %s to %s", o.Number, o.State, next))
	}
	o.State = next
	return nil
}

// MarkPaid records a successful booking charge.
func (o *Order) MarkPaid(paymentIntentID string) error {
	if err := o.moveTo(OrderStatePaid); err != nil {
		return err
	}
	if paymentIntentID != "" {
		o.PaymentIntentID = paymentIntentID
	}
	return nil
}

// MarkPaymentFailed cancels an order whose charge failed.
func (o *Order) MarkPaymentFailed() error {
	if err := o.moveTo(OrderStateCancelled); err != nil {
		return err
	}
	o.CancelReason = CancelReasonPaymentFailed
	return nil
}

// Expire cancels an order that was never paid.
func (o *Order) Expire() error {
	if o.State != OrderStatePendingPayment {
		return domainErrors.WithMessage(domainErrors.ErrInvalidTransition,
			fmt.Sprintf("order %s is %s and cannot expire", o.Number, o.State))
	}
	o.State = OrderStateCancelled
	o.CancelReason = CancelReasonExpired
	return nil
}

// RefundLatePayment handles money that arrived after the order was cancelled.
// It reports false when a refund is already underway.
func (o *Order) RefundLatePayment(paymentIntentID string) (bool, error) {
	if o.State != OrderStateCancelled {
		return false, domainErrors.WithMessage(domainErrors.ErrInvalidTransition,
			fmt.Sprintf("order %s is %s, not cancelled", o.Number, o.State))
	}
	if o.RefundStatus != RefundNone && o.RefundStatus != "" {
		return false, nil
	}
	if paymentIntentID != "" {
		o.PaymentIntentID = paymentIntentID
	}
	o.RefundStatus = RefundRequested
	return true, nil
}

// Accept confirms a paid booking on behalf of the celebrity.
func (o *Order) Accept() error {
	if o.PaymentStatus() != PaymentSucceeded {
		return domainErrors.WithMessage(domainErrors.ErrPaymentNotCompleted,
			"the booking cannot be accepted until the customer's payment has succeeded")
	}
	if err := o.moveTo(OrderStateConfirmed); err != nil {
		return err
	}
	o.TransferStatus = TransferPending
	return nil
}

// DeclineByCelebrity cancels a booking. It reports whether the customer's
// payment has to be refunded.
func (o *Order) DeclineByCelebrity() (bool, error) {
	paid := o.State == OrderStatePaid
	if err := o.moveTo(OrderStateCancelled); err != nil {
		return false, err
	}
	o.CancelReason = CancelReasonCelebrityDeclined
	if paid && o.PaymentIntentID != "" {
		o.RefundStatus = RefundRequested
		return true, nil
	}
	return false, nil
}

// Deliver attaches the recorded video and hands it to the customer for review.
func (o *Order) Deliver(videoKey string) error {
	if videoKey == "" {
		return domainErrors.WithMessage(domainErrors.ErrInvalidInput, "video is required")
	}
	if err := o.moveTo(OrderStateDelivered); err != nil {
		return err
	}
	o.VideoKey = videoKey
	return nil
}

// CheckReviewable verifies the customer can approve or decline the delivery now.
func (o *Order) CheckReviewable() error {
	if status := o.ApprovalStatus(); status != ApprovalPending {
		return domainErrors.WithMessage(domainErrors.ErrInvalidTransition,
			fmt.Sprintf("order %s is already %s", o.Number, status))
	}
	switch o.State {
	case OrderStateDelivered:
		return nil
	case OrderStateCancelled:
		return domainErrors.WithMessage(domainErrors.ErrInvalidTransition,
			fmt.Sprintf("order %s was cancelled", o.Number))
	default:
		return domainErrors.WithMessage(domainErrors.ErrVideoNotDelivered,
			"the video has not been delivered yet")
	}
}

// Approve completes the order after the customer accepted the video.
func (o *Order) Approve(now time.Time) error {
	if err := o.CheckReviewable(); err != nil {
		return err
	}
	if err := o.moveTo(OrderStateApproved); err != nil {
		return err
	}
	o.ApprovedAt = &now
	return nil
}

// DeclineDelivery asks for another take while revisions remain, otherwise the
// delivery is declined for good.
func (o *Order) DeclineDelivery(maxRevisions int) error {
	if err := o.CheckReviewable(); err != nil {
		return err
	}
	if o.RevisionCount < maxRevisions {
		if err := o.moveTo(OrderStateRevisionRequested); err != nil {
			return err
		}
		o.RevisionCount++
		return nil
	}
	return o.moveTo(OrderStateDeclined)
}

// CheckTippable explains what has to happen before a tip can be added.
func (o *Order) CheckTippable() error {
	const prefix = "tipping requires an approved video: "
	var msg string
	switch o.State {
	case OrderStateApproved:
		if o.FulfillmentStatus() == FulfillmentCompleted {
			return nil
		}
		msg = prefix + "the order is not completed"
	case OrderStatePendingPayment:
		msg = prefix + "this order is still awaiting payment"
	case OrderStatePaid:
		msg = prefix + "the celebrity has not accepted the booking yet"
	case OrderStateConfirmed:
		msg = prefix + "the video has not been delivered yet"
	case OrderStateDelivered:
		msg = prefix + "approve the delivered video first"
	case OrderStateRevisionRequested:
		msg = prefix + "a revision is in progress"
	case OrderStateDeclined:
		msg = "tipping is not available for declined videos"
	case OrderStateCancelled:
		msg = "tipping is not available for cancelled orders"
	default:
		msg = prefix + "unknown order state"
	}
	return domainErrors.WithMessage(domainErrors.ErrTipNotAllowed, msg)
}

// CheckReviewAllowed verifies a rating can be left for the order.
func (o *Order) CheckReviewAllowed() error {
	if o.ApprovalStatus() != ApprovalApproved {
		return domainErrors.WithMessage(domainErrors.ErrReviewNotAllowed,
			"reviews can only be left for approved videos")
	}
	return nil
}
