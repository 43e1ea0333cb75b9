package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/shoutout/internal/domain/model"
	"github.com/polkiloo/shoutout/internal/server/http/dto"
	"github.com/polkiloo/shoutout/internal/usecase"
)

// OrderHandler manages customer and admin order endpoints.
type OrderHandler struct {
	facade OrderFacade
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade OrderFacade) *OrderHandler {
	return &OrderHandler{facade: facade}
}

// Checkout handles POST /api/orders.
func (h *OrderHandler) Checkout(c *gin.Context) {
	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "celebrity_slug and recipient_name are required")
		return
	}

	result, err := h.facade.Checkout(c.Request.Context(), CurrentIdentity(c).UserID, req.CelebritySlug, model.OrderDetails{
		RecipientName: req.RecipientName,
		Occasion:      req.Occasion,
		Instructions:  req.Instructions,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.CheckoutResponse{Order: toOrderResponse(*result.Order), ClientSecret: result.ClientSecret})
}

// List handles GET /api/orders.
func (h *OrderHandler) List(c *gin.Context) {
	orders, err := h.facade.CustomerOrders(c.Request.Context(), CurrentIdentity(c).UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponses(orders))
}

// Get handles GET /api/orders/:orderNumber.
func (h *OrderHandler) Get(c *gin.Context) {
	order, err := h.facade.Order(c.Request.Context(), CurrentIdentity(c), c.Param("orderNumber"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*order))
}

// ListByState handles GET /api/admin/orders.
func (h *OrderHandler) ListByState(c *gin.Context) {
	state := c.Query("state")
	if state == "" {
		badRequest(c, "state query parameter is required")
		return
	}
	orders, err := h.facade.OrdersByState(c.Request.Context(), state)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponses(orders))
}

// Approve handles POST /api/orders/:orderNumber/approve.
func (h *OrderHandler) Approve(c *gin.Context) {
	// the body is optional
	var req dto.ApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, "malformed approval payload")
		return
	}

	result, err := h.facade.ApproveDelivery(c.Request.Context(), CurrentIdentity(c).UserID, c.Param("orderNumber"), usecase.ApproveInput{
		TipAmount:  req.TipAmount,
		TipMessage: req.TipMessage,
		Rating:     req.Rating,
		Comment:    req.Comment,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	resp := dto.ApproveResponse{
		Order:           toOrderResponse(*result.Order),
		CelebrityAmount: money(result.CelebrityCents),
		PlatformFee:     money(result.PlatformFeeCents),
		Simulated:       result.Simulated,
		Warnings:        result.Warnings,
	}
	if result.Transfer != nil {
		resp.TransferID = result.Transfer.ExternalID
	}
	if result.Tip != nil {
		tip := toTipResponse(*result.Tip, result.TipClientSecret)
		resp.Tip = &tip
	}
	if result.Review != nil {
		review := toReviewResponse(*result.Review)
		resp.Review = &review
	}
	c.JSON(http.StatusOK, resp)
}

// Decline handles POST /api/orders/:orderNumber/decline.
func (h *OrderHandler) Decline(c *gin.Context) {
	var req dto.DeclineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "reasons are required")
		return
	}

	order, err := h.facade.DeclineDelivery(c.Request.Context(), CurrentIdentity(c).UserID, c.Param("orderNumber"), req.Reasons, req.Feedback)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*order))
}

// Video handles GET /api/orders/:orderNumber/video.
func (h *OrderHandler) Video(c *gin.Context) {
	url, err := h.facade.VideoURL(c.Request.Context(), CurrentIdentity(c).UserID, c.Param("orderNumber"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.VideoURLResponse{URL: url})
}

// Review handles POST /api/orders/:orderNumber/reviews.
func (h *OrderHandler) Review(c *gin.Context) {
	var req dto.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "rating is required")
		return
	}

	review, err := h.facade.Review(c.Request.Context(), CurrentIdentity(c).UserID, c.Param("orderNumber"), req.Rating, req.Comment)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toReviewResponse(*review))
}

// Tip handles POST /api/tips.
func (h *OrderHandler) Tip(c *gin.Context) {
	var req dto.TipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "order_number and amount are required")
		return
	}

	result, err := h.facade.Tip(c.Request.Context(), CurrentIdentity(c).UserID, req.OrderNumber, req.Amount, req.Message)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toTipResponse(*result.Tip, result.ClientSecret))
}
