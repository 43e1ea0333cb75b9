package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/shoutout/internal/domain/errors"
	"github.com/polkiloo/shoutout/internal/domain/model"
	"github.com/polkiloo/shoutout/internal/server/http/dto"
	"github.com/polkiloo/shoutout/internal/server/http/middleware"
)

// CurrentIdentity extracts the authenticated caller from context.
func CurrentIdentity(c *gin.Context) model.Identity {
	identity, _ := middleware.Identity(c)
	return identity
}

var errorStatuses = []struct {
	err    error
	status int
}{
	{domainErrors.ErrNotFound, http.StatusNotFound},
	{domainErrors.ErrForbidden, http.StatusForbidden},
	{domainErrors.ErrInvalidCredentials, http.StatusUnauthorized},
	{domainErrors.ErrAlreadyExists, http.StatusConflict},
	{domainErrors.ErrRequestInFlight, http.StatusConflict},
	{domainErrors.ErrPaymentProvider, http.StatusBadGateway},
	{domainErrors.ErrInvalidInput, http.StatusBadRequest},
	{domainErrors.ErrInvalidAmount, http.StatusBadRequest},
	{domainErrors.ErrInvalidAction, http.StatusBadRequest},
	{domainErrors.ErrInvalidTransition, http.StatusBadRequest},
	{domainErrors.ErrPaymentNotCompleted, http.StatusBadRequest},
	{domainErrors.ErrVideoNotDelivered, http.StatusBadRequest},
	{domainErrors.ErrTipNotAllowed, http.StatusBadRequest},
	{domainErrors.ErrReviewNotAllowed, http.StatusBadRequest},
	{domainErrors.ErrDeclineReasonMissing, http.StatusBadRequest},
	{domainErrors.ErrPayoutAccountMissing, http.StatusBadRequest},
	{domainErrors.ErrInvalidPayoutAccount, http.StatusBadRequest},
	{domainErrors.ErrInsufficientPlatformBalance, http.StatusBadRequest},
	{domainErrors.ErrTransfersNotPermitted, http.StatusBadRequest},
	{domainErrors.ErrInvalidSignature, http.StatusBadRequest},
}

// statusFor maps a domain error to its HTTP status. Unknown errors are 500.
func statusFor(err error) int {
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, err error) {
	_ = c.Error(err)
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": domainErrors.Message(err)})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}

func idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid id")
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, name string, def, max int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil || v < 0 {
		return def
	}
	if max > 0 && v > max {
		return max
	}
	return v
}

func money(cents int64) string {
	return model.DecimalFromCents(cents).StringFixed(2)
}

func toOrderResponse(order model.Order) dto.OrderResponse {
	return dto.OrderResponse{
		ID:                order.ID,
		Number:            order.Number,
		State:             string(order.State),
		PaymentStatus:     string(order.PaymentStatus()),
		FulfillmentStatus: string(order.FulfillmentStatus()),
		ApprovalStatus:    string(order.ApprovalStatus()),
		CancelReason:      string(order.CancelReason),
		RefundStatus:      string(order.RefundStatus),
		TransferStatus:    string(order.TransferStatus),
		RecipientName:     order.RecipientName,
		Occasion:          order.Occasion,
		Instructions:      order.Instructions,
		Total:             money(order.TotalCents),
		CelebrityAmount:   money(order.CelebrityCents),
		PlatformFee:       money(order.PlatformFeeCents),
		Tips:              money(order.TipCents),
		RevisionCount:     order.RevisionCount,
		HasVideo:          order.VideoKey != "",
		CreatedAt:         order.CreatedAt,
		ApprovedAt:        order.ApprovedAt,
	}
}

func toOrderResponses(orders []model.Order) []dto.OrderResponse {
	resp := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, toOrderResponse(o))
	}
	return resp
}

func toReviewResponse(r model.Review) dto.ReviewResponse {
	return dto.ReviewResponse{ID: r.ID, Rating: r.Rating, Comment: r.Comment, CreatedAt: r.CreatedAt}
}

func toTipResponse(t model.Tip, clientSecret string) dto.TipResponse {
	return dto.TipResponse{
		ID:            t.ID,
		Amount:        money(t.AmountCents),
		PaymentStatus: string(t.PaymentStatus),
		ClientSecret:  clientSecret,
	}
}

func toCelebrityResponse(c model.Celebrity) dto.CelebrityResponse {
	return dto.CelebrityResponse{
		ID:             c.ID,
		Slug:           c.Slug,
		DisplayName:    c.DisplayName,
		Price:          money(c.PriceCents),
		AcceptsPayouts: c.CanReceivePayouts(),
	}
}
