package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/shoutout/internal/domain/errors"
	"github.com/polkiloo/shoutout/internal/domain/model"
	"github.com/polkiloo/shoutout/internal/server/http/dto"
	"github.com/polkiloo/shoutout/internal/server/http/middleware"
	"github.com/polkiloo/shoutout/internal/usecase"
)

// AuthHandler processes registration and login.
type AuthHandler struct {
	facade AuthFacade
}

// NewAuthHandler creates AuthHandler instance.
func NewAuthHandler(facade AuthFacade) *AuthHandler {
	return &AuthHandler{facade: facade}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "login and password are required")
		return
	}

	user, token, err := h.facade.Register(c.Request.Context(), usecase.RegisterInput{
		Login:    req.Login,
		Password: req.Password,
		Email:    req.Email,
		Role:     model.Role(req.Role),
	})
	if err != nil {
		if errors.Is(err, domainErrors.ErrInvalidCredentials) {
			badRequest(c, "login and password are required")
			return
		}
		if errors.Is(err, domainErrors.ErrAlreadyExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "login is already taken"})
			return
		}
		respondError(c, err)
		return
	}

	middleware.SetAuthCookie(c, token)
	c.JSON(http.StatusOK, dto.AuthResponse{Token: token, UserID: user.ID, Login: user.Login, Role: string(user.Role)})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "login and password are required")
		return
	}

	user, token, err := h.facade.Authenticate(c.Request.Context(), req.Login, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.SetAuthCookie(c, token)
	c.JSON(http.StatusOK, dto.AuthResponse{Token: token, UserID: user.ID, Login: user.Login, Role: string(user.Role)})
}
