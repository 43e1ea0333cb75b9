package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/shoutout/internal/domain/model"
	"github.com/polkiloo/shoutout/internal/server/http/dto"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// CelebrityHandler serves public profiles and celebrity self-service.
type CelebrityHandler struct {
	facade CelebrityFacade
}

// NewCelebrityHandler constructs CelebrityHandler.
func NewCelebrityHandler(facade CelebrityFacade) *CelebrityHandler {
	return &CelebrityHandler{facade: facade}
}

// List handles GET /api/celebrities.
func (h *CelebrityHandler) List(c *gin.Context) {
	limit := queryInt(c, "limit", defaultPageSize, maxPageSize)
	offset := queryInt(c, "offset", 0, 0)
	celebs, err := h.facade.Celebrities(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	resp := make([]dto.CelebrityResponse, 0, len(celebs))
	for _, celeb := range celebs {
		resp = append(resp, toCelebrityResponse(celeb))
	}
	c.JSON(http.StatusOK, resp)
}

// Get handles GET /api/celebrities/:slug.
func (h *CelebrityHandler) Get(c *gin.Context) {
	celeb, err := h.facade.Celebrity(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCelebrityResponse(*celeb))
}

// Reviews handles GET /api/celebrities/:slug/reviews.
func (h *CelebrityHandler) Reviews(c *gin.Context) {
	limit := queryInt(c, "limit", defaultPageSize, maxPageSize)
	reviews, err := h.facade.CelebrityReviews(c.Request.Context(), c.Param("slug"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	resp := make([]dto.ReviewResponse, 0, len(reviews))
	for _, r := range reviews {
		resp = append(resp, toReviewResponse(r))
	}
	c.JSON(http.StatusOK, resp)
}

// Onboard handles POST /api/celebrity/profile.
func (h *CelebrityHandler) Onboard(c *gin.Context) {
	var req dto.OnboardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "display_name and price are required")
		return
	}
	if !model.HasCentPrecision(req.Price) {
		badRequest(c, "price must have at most two decimal places")
		return
	}

	celeb, err := h.facade.Onboard(c.Request.Context(), CurrentIdentity(c).UserID, req.DisplayName, model.CentsFromDecimal(req.Price))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toCelebrityResponse(*celeb))
}

// SetPayoutAccount handles PUT /api/celebrity/payout-account.
func (h *CelebrityHandler) SetPayoutAccount(c *gin.Context) {
	var req dto.PayoutAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "account_id is required")
		return
	}

	celeb, err := h.facade.SetPayoutAccount(c.Request.Context(), CurrentIdentity(c).UserID, req.AccountID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCelebrityResponse(*celeb))
}
