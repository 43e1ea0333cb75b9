package payment

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"

	domainErrors "github.com/polkiloo/shoutout/internal/domain/errors"
	"github.com/polkiloo/shoutout/internal/domain/model"
)

// Stripe event types the marketplace reacts to.
const (
	eventPaymentSucceeded = "payment_intent.succeeded"
	eventPaymentFailed    = "payment_intent.payment_failed"
	eventTransferCreated  = "transfer.created"
	eventTransferUpdated  = "transfer.updated"
	eventTransferPaid     = "transfer.paid"
	eventTransferFailed   = "transfer.failed"
	eventTransferReversed = "transfer.reversed"
)

// ParseEvent verifies the signature header and normalises the event.
// Without a configured secret the payload is accepted unsigned.
func (g *Gateway) ParseEvent(payload []byte, signature string) (*model.PaymentEvent, error) {
	var (
		event stripe.Event
		err   error
	)

	if g.webhookSecret == "" {
		err = json.Unmarshal(payload, &event)
		if err != nil {
			return nil, domainErrors.WithMessage(domainErrors.ErrInvalidSignature, "malformed event payload")
		}
	} else {
		event, err = webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret,
			webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
		if err != nil {
			g.logger.Warn("webhook signature rejected", slog.String("error", err.Error()))
			return nil, domainErrors.WithMessage(domainErrors.ErrInvalidSignature, "invalid webhook signature")
		}
	}

	if event.ID == "" {
		return nil, domainErrors.WithMessage(domainErrors.ErrInvalidSignature, "event id is missing")
	}

	out := &model.PaymentEvent{ID: event.ID, RawType: string(event.Type), Type: model.PaymentEventIgnored}
	if event.Data == nil {
		return out, nil
	}

	switch string(event.Type) {
	case eventPaymentSucceeded, eventPaymentFailed:
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("decode payment intent: %w", err)
		}
		out.PaymentIntentID = pi.ID
		out.AmountCents = pi.Amount
		out.Metadata = pi.Metadata
		out.Type = model.PaymentEventSucceeded
		if string(event.Type) == eventPaymentFailed {
			out.Type = model.PaymentEventFailed
			if pi.LastPaymentError != nil {
				out.FailureReason = pi.LastPaymentError.Msg
			}
		}
	case eventTransferCreated, eventTransferUpdated, eventTransferPaid, eventTransferFailed, eventTransferReversed:
		var tr stripe.Transfer
		if err := json.Unmarshal(event.Data.Raw, &tr); err != nil {
			return nil, fmt.Errorf("decode transfer: %w", err)
		}
		out.Type = model.PaymentEventTransferChanged
		out.TransferID = tr.ID
		out.AmountCents = tr.Amount
		out.Metadata = tr.Metadata
		out.TransferStatus = transferStatus(string(event.Type), tr.Reversed)
		if out.TransferStatus == model.TransferFailed {
			out.FailureReason = string(event.Type)
		}
	}

	return out, nil
}

func transferStatus(eventType string, reversed bool) model.TransferStatus {
	switch eventType {
	case eventTransferPaid:
		return model.TransferPaid
	case eventTransferFailed, eventTransferReversed:
		return model.TransferFailed
	default:
		if reversed {
			return model.TransferFailed
		}
		return model.TransferInTransit
	}
}
