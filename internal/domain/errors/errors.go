package errors

import "errors"

var (
	ErrAlreadyExists      = errors.New("already exists")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidAction      = errors.New("invalid action")

	ErrInvalidTransition    = errors.New("invalid order state transition")
	ErrPaymentNotCompleted  = errors.New("payment not completed")
	ErrVideoNotDelivered    = errors.New("video not delivered")
	ErrTipNotAllowed        = errors.New("tip not allowed")
	ErrReviewNotAllowed     = errors.New("review not allowed")
	ErrDeclineReasonMissing = errors.New("decline reasons required")

	ErrPayoutAccountMissing        = errors.New("celebrity payout account missing")
	ErrInvalidPayoutAccount        = errors.New("invalid payout account")
	ErrInsufficientPlatformBalance = errors.New("insufficient platform balance")
	ErrTransfersNotPermitted       = errors.New("transfers not permitted")
	ErrPaymentProvider             = errors.New("payment provider error")

	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrRequestInFlight  = errors.New("request already in progress")
)

// MessageError decorates a sentinel with a message safe to show to API clients.
type MessageError struct {
	Err     error
	Message string
}

func (e *MessageError) Error() string {
	return e.Message
}

func (e *MessageError) Unwrap() error {
	return e.Err
}

// WithMessage attaches a client-facing message to err.
func WithMessage(err error, message string) error {
	return &MessageError{Err: err, Message: message}
}

// Message returns the client-facing message attached to err, or the error text itself.
func Message(err error) string {
	var msgErr *MessageError
	if errors.As(err, &msgErr) {
		return msgErr.Message
	}
	return err.Error()
}
