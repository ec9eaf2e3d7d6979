package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"aurejet/internal/service"
)

// AuthHandler handles HTTP requests for the auth gateway.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// SignInRequest is the HTTP request body for signing in.
type SignInRequest struct {
	Method string `json:"method" binding:"required"`
}

// SignInResponse is the HTTP response for signing in.
type SignInResponse struct {
	GuestID    string    `json:"guest_id"`
	Token      string    `json:"token"`
	TokenType  string    `json:"token_type"`
	ExpiresAt  time.Time `json:"expires_at"`
	NextScreen string    `json:"next_screen"`
}

// SignIn handles POST /v1/auth/sessions
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "method is required"})
		return
	}

	method, err := service.ParseSignInMethod(req.Method)
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.auth.SignIn(method)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, SignInResponse{
		GuestID:    result.GuestID,
		Token:      result.Token,
		TokenType:  "Bearer",
		ExpiresAt:  result.ExpiresAt,
		NextScreen: string(result.NextScreen),
	})
}
