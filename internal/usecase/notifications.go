package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	domainErrors "github.com/polkiloo/shoutout/internal/domain/errors"
	"github.com/polkiloo/shoutout/internal/domain/model"
	"github.com/polkiloo/shoutout/internal/domain/repository"
)

func money(cents int64, currency string) string {
	return model.DecimalFromCents(cents).StringFixed(2) + " " + strings.ToUpper(currency)
}

// notify queues an email for userID in the same transaction as repos.
// Users without an address on file are skipped.
func notify(ctx context.Context, repos repository.Factory, userID int64, subject, body string) error {
	user, err := repos.Users().GetByID(ctx, userID)
	if errors.Is(err, domainErrors.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load email recipient: %w", err)
	}
	if user.Email == "" {
		return nil
	}

	msg, err := model.NewOutboxMessage(model.OutboxKindEmail, model.Email{To: user.Email, Subject: subject, Body: body})
	if err != nil {
		return err
	}
	return repos.Outbox().Enqueue(ctx, msg)
}

func bookingRequestEmail(order *model.Order, currency string) (string, string) {
	return fmt.Sprintf("New booking request #%s", order.Number),
		fmt.Sprintf("You have a new paid booking request for %s (%s).\nOccasion: %s\nInstructions: %s\nYou will earn %s once the customer approves the video.\nAccept or decline it from your dashboard.",
			order.RecipientName, money(order.TotalCents, currency), order.Occasion, order.Instructions,
			money(order.CelebrityCents, currency))
}

func paymentReceiptEmail(order *model.Order, celebrity *model.Celebrity, currency string) (string, string) {
	return fmt.Sprintf("Payment received for order #%s", order.Number),
		fmt.Sprintf("We received your payment of %s. %s has been asked to record a video for %s.",
			money(order.TotalCents, currency), celebrity.DisplayName, order.RecipientName)
}

func paymentFailedEmail(order *model.Order) (string, string) {
	return fmt.Sprintf("Payment failed for order #%s", order.Number),
		"Your payment could not be completed and the order was cancelled. You can book again at any time."
}

func bookingAcceptedEmail(order *model.Order, celebrity *model.Celebrity) (string, string) {
	return fmt.Sprintf("Your booking #%s was accepted", order.Number),
		fmt.Sprintf("%s accepted your request and will record the video for %s.", celebrity.DisplayName, order.RecipientName)
}

func bookingDeclinedEmail(order *model.Order, celebrity *model.Celebrity, refund bool, currency string) (string, string) {
	body := fmt.Sprintf("%s is unable to take your request for %s.", celebrity.DisplayName, order.RecipientName)
	if refund {
		body += fmt.Sprintf(" A full refund of %s is on its way.", money(order.TotalCents, currency))
	}
	return fmt.Sprintf("Your booking #%s was declined", order.Number), body
}

func videoDeliveredEmail(order *model.Order, celebrity *model.Celebrity) (string, string) {
	return fmt.Sprintf("Your video for order #%s is ready", order.Number),
		fmt.Sprintf("%s delivered the video for %s. Watch it and approve it, or ask for a revision.",
			celebrity.DisplayName, order.RecipientName)
}

func deliveryApprovedEmail(order *model.Order, amountCents int64, simulated bool, currency string) (string, string) {
	body := fmt.Sprintf("The customer approved your video for order #%s. A transfer of %s is on its way.",
		order.Number, money(amountCents, currency))
	if simulated {
		body += " (sandbox: the transfer was simulated)"
	}
	return fmt.Sprintf("Order #%s approved", order.Number), body
}

func deliveryDeclinedEmail(order *model.Order, reasons []string, feedback string) (string, string) {
	var b strings.Builder
	if order.State == model.OrderStateRevisionRequested {
		fmt.Fprintf(&b, "The customer asked for a new take of order #%s (revision %d).\n", order.Number, order.RevisionCount)
	} else {
		fmt.Fprintf(&b, "The customer declined the video for order #%s. The order was flagged for manual review.\n", order.Number)
	}
	b.WriteString("Reasons:\n")
	for _, r := range reasons {
		fmt.Fprintf(&b, "- %s\n", r)
	}
	if feedback != "" {
		fmt.Fprintf(&b, "Feedback: %s\n", feedback)
	}
	return fmt.Sprintf("Changes requested for order #%s", order.Number), b.String()
}

func tipReceivedEmail(order *model.Order, tip *model.Tip, currency string) (string, string) {
	body := fmt.Sprintf("You received a tip of %s for order #%s.", money(tip.AmountCents, currency), order.Number)
	if tip.Message != "" {
		body += fmt.Sprintf("\nMessage: %s", tip.Message)
	}
	return fmt.Sprintf("You received a tip on order #%s", order.Number), body
}
