package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/shoutout/internal/domain/errors"
	"github.com/polkiloo/shoutout/internal/domain/model"
	"github.com/polkiloo/shoutout/internal/domain/repository"
)

// VideoUpload is a recorded video sent by a celebrity.
type VideoUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.ReadSeeker
}

// DeliveryUseCase stores recorded videos and hands them out to customers.
type DeliveryUseCase struct {
	repos    repository.Factory
	tx       repository.Transactor
	store    ObjectStore
	settings Settings
	logger   *slog.Logger
}

// NewDeliveryUseCase constructs DeliveryUseCase.
func NewDeliveryUseCase(repos repository.Factory, tx repository.Transactor, store ObjectStore, settings Settings, logger *slog.Logger) *DeliveryUseCase {
	return &DeliveryUseCase{repos: repos, tx: tx, store: store, settings: settings, logger: logger}
}

func videoKey(number, filename string) string {
	return fmt.Sprintf("orders/%s/%s%s", number, uuid.NewString(), strings.ToLower(path.Ext(filename)))
}

// Deliver uploads the video for orderID and moves the order to DELIVERED.
func (u *DeliveryUseCase) Deliver(ctx context.Context, celebUserID, orderID int64, video VideoUpload) (*model.Order, error) {
	if video.Body == nil || video.Size <= 0 {
		return nil, domainErrors.WithMessage(domainErrors.ErrInvalidInput, "video file is required")
	}
	if !strings.HasPrefix(video.ContentType, "video/") {
		return nil, domainErrors.WithMessage(domainErrors.ErrInvalidInput, "only video files can be delivered")
	}

	celeb, err := u.repos.Celebrities().GetByUserID(ctx, celebUserID)
	if errors.Is(err, domainErrors.ErrNotFound) {
		return nil, domainErrors.WithMessage(domainErrors.ErrForbidden, "only the booked celebrity can deliver this order")
	}
	if err != nil {
		return nil, err
	}

	order, err := u.repos.Orders().GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.CelebrityID != celeb.ID {
		return nil, domainErrors.WithMessage(domainErrors.ErrForbidden, "only the booked celebrity can deliver this order")
	}
	if !order.State.CanTransitionTo(model.OrderStateDelivered) {
		return nil, domainErrors.WithMessage(domainErrors.ErrInvalidTransition,
			fmt.Sprintf("order %s is %s and cannot be delivered", order.Number, order.State))
	}

	key := videoKey(order.Number, video.Filename)
	if err := u.store.Put(ctx, key, video.Body, video.Size, video.ContentType); err != nil {
		return nil, fmt.Errorf("store video: %w", err)
	}

	var result *model.Order
	err = u.tx.InTransaction(ctx, func(repos repository.Factory) error {
		locked, err := repos.Orders().LockByID(ctx, orderID)
		if err != nil {
			return err
		}
		if err := locked.Deliver(key); err != nil {
			return err
		}
		if err := repos.Orders().Update(ctx, locked); err != nil {
			return err
		}
		subject, body := videoDeliveredEmail(locked, celeb)
		if err := notify(ctx, repos, locked.CustomerID, subject, body); err != nil {
			return err
		}
		result = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.logger.Info("video delivered",
		slog.String("order", result.Number),
		slog.String("key", key),
		slog.Int("revision", result.RevisionCount),
	)
	return result, nil
}

// VideoURL returns a time-limited link to the delivered video of order number.
func (u *DeliveryUseCase) VideoURL(ctx context.Context, customerID int64, number string) (string, error) {
	order, err := u.repos.Orders().GetByNumber(ctx, number)
	if err != nil {
		return "", err
	}
	if order.CustomerID != customerID {
		return "", domainErrors.WithMessage(domainErrors.ErrForbidden, "only the customer who placed the order can watch the video")
	}
	if order.VideoKey == "" {
		return "", domainErrors.WithMessage(domainErrors.ErrVideoNotDelivered, "the video has not been delivered yet")
	}
	return u.store.URL(ctx, order.VideoKey, u.settings.VideoURLTTL)
}
