package http

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"cryptosim/internal/delivery/http/dto"
	"cryptosim/internal/domain"
	"cryptosim/internal/usecase"
)

// MarketRefresher defines the interface for the market snapshot owner
type MarketRefresher interface {
	Refresh(ctx context.Context) (*domain.Snapshot, error)
	ProviderName() string
}

// AdminHandler handles admin-related requests
type AdminHandler struct {
	ledger *usecase.LedgerService
	market MarketRefresher
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(ledger *usecase.LedgerService, market MarketRefresher) *AdminHandler {
	return &AdminHandler{
		ledger: ledger,
		market: market,
	}
}

// ListAccounts returns every account without passwords
// GET /api/admin/accounts
func (h *AdminHandler) ListAccounts(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	accounts, err := h.ledger.ListAccounts(ctx)
	if err != nil {
		return LedgerErrorResponse(c, "Failed to list accounts", err)
	}

	out := make([]dto.AccountOutput, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, dto.NewAccountOutput(a))
	}
	return SuccessResponse(c, out)
}

// ResetAll deletes every account. The body must be {"confirm": "RESET"}.
// POST /api/admin/reset
func (h *AdminHandler) ResetAll(c echo.Context) error {
	var req dto.ResetRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestResponse(c, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return BadRequestResponse(c, `Confirmation required: send {"confirm": "RESET"}`)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	if err := h.ledger.ResetAll(ctx); err != nil {
		return LedgerErrorResponse(c, "Failed to reset accounts", err)
	}

	return SuccessMessageResponse(c, "All user data has been reset", nil)
}

// RefreshMarket fetches a new market snapshot now
// POST /api/admin/market/refresh
func (h *AdminHandler) RefreshMarket(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 20*time.Second)
	defer cancel()

	snap, err := h.market.Refresh(ctx)
	if err != nil {
		return ErrorResponse(c, http.StatusBadGateway, "Failed to refresh market data", err.Error())
	}

	return SuccessResponse(c, dto.RefreshResponse{
		Provider: h.market.ProviderName(),
		Quotes:   snap.Len(),
	})
}
