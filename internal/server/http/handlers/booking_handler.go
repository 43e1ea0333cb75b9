package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/shoutout/internal/server/http/dto"
	"github.com/polkiloo/shoutout/internal/usecase"
)

const videoFormField = "video"

// BookingHandler serves booking requests to celebrities.
type BookingHandler struct {
	facade BookingFacade
}

// NewBookingHandler constructs BookingHandler.
func NewBookingHandler(facade BookingFacade) *BookingHandler {
	return &BookingHandler{facade: facade}
}

// List handles GET /api/booking-requests.
func (h *BookingHandler) List(c *gin.Context) {
	orders, err := h.facade.BookingRequests(c.Request.Context(), CurrentIdentity(c).UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponses(orders))
}

// Decide handles PATCH /api/booking-requests/:id.
func (h *BookingHandler) Decide(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req dto.BookingDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "action is required")
		return
	}

	order, err := h.facade.DecideBooking(c.Request.Context(), CurrentIdentity(c).UserID, id, usecase.BookingAction(req.Action))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*order))
}

// UploadVideo handles POST /api/booking-requests/:id/video.
func (h *BookingHandler) UploadVideo(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	header, err := c.FormFile(videoFormField)
	if err != nil {
		badRequest(c, "multipart field \"video\" is required")
		return
	}
	file, err := header.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer file.Close()

	order, err := h.facade.DeliverVideo(c.Request.Context(), CurrentIdentity(c).UserID, id, usecase.VideoUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*order))
}
