package http

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"cryptosim/internal/delivery/http/dto"
	"cryptosim/internal/middleware"
	"cryptosim/internal/usecase"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	ledger *usecase.LedgerService
	jwt    *middleware.JWTManager
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(ledger *usecase.LedgerService, jwt *middleware.JWTManager) *AuthHandler {
	return &AuthHandler{
		ledger: ledger,
		jwt:    jwt,
	}
}

// Register handles account registration
// POST /api/auth/register
func (h *AuthHandler) Register(c echo.Context) error {
	var req dto.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestResponse(c, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return BadRequestResponse(c, "Please fill in all fields")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	acct, err := h.ledger.Register(ctx, req.Username, req.Password)
	if err != nil {
		return LedgerErrorResponse(c, "Failed to register", err)
	}

	return CreatedResponse(c, dto.NewAccountOutput(acct))
}

// Login handles user login
// POST /api/auth/login
func (h *AuthHandler) Login(c echo.Context) error {
	var req dto.LoginRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestResponse(c, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return BadRequestResponse(c, "Username and password are required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	session, err := h.ledger.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		return LedgerErrorResponse(c, "Failed to log in", err)
	}

	token, expires, err := h.jwt.GenerateToken(session)
	if err != nil {
		return InternalServerErrorResponse(c, "Failed to generate token", err)
	}

	c.SetCookie(&http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Expires:  expires,
	})

	return SuccessResponse(c, dto.LoginResponse{
		Token:     token,
		ExpiresAt: expires,
		User: &dto.SessionOutput{
			Username: session.Username,
			Role:     string(session.Role),
		},
	})
}

// Logout handles user logout
// POST /api/auth/logout
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})

	return SuccessMessageResponse(c, "Logged out", nil)
}
