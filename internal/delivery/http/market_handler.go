package http

import (
	"context"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"cryptosim/internal/delivery/http/dto"
	"cryptosim/internal/domain"
	"cryptosim/internal/usecase"
)

// MarketHandler serves the market listing and the leaderboard
type MarketHandler struct {
	ledger *usecase.LedgerService
}

// NewMarketHandler creates a new MarketHandler
func NewMarketHandler(ledger *usecase.LedgerService) *MarketHandler {
	return &MarketHandler{ledger: ledger}
}

// ListMarket returns the quotes matching q, sorted by sort in order
// (asc or desc, default desc)
// GET /api/market?q=&sort=&order=
func (h *MarketHandler) ListMarket(c echo.Context) error {
	query := usecase.MarketQuery{Search: c.QueryParam("q")}

	if raw := c.QueryParam("sort"); raw != "" {
		field, err := domain.ParseSortField(raw)
		if err != nil {
			return BadRequestResponse(c, err.Error())
		}
		query.Sort = field
	}

	switch strings.ToLower(c.QueryParam("order")) {
	case "", "desc":
	case "asc":
		query.Ascending = true
	default:
		return BadRequestResponse(c, "order must be asc or desc")
	}

	listing, err := h.ledger.Market(query)
	if err != nil {
		return LedgerErrorResponse(c, "Failed to load market", err)
	}

	return SuccessResponse(c, dto.MarketResponse{
		Quotes:    listing.Quotes,
		Count:     len(listing.Quotes),
		FetchedAt: listing.FetchedAt,
	})
}

// GetQuote returns one quote for the trade form
// GET /api/market/:symbol
func (h *MarketHandler) GetQuote(c echo.Context) error {
	quote, err := h.ledger.Quote(c.Param("symbol"))
	if err != nil {
		return LedgerErrorResponse(c, "Failed to load quote", err)
	}
	return SuccessResponse(c, quote)
}

// GetLeaderboard ranks all users by net worth
// GET /api/leaderboard
func (h *MarketHandler) GetLeaderboard(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	entries, err := h.ledger.Leaderboard(ctx)
	if err != nil {
		return LedgerErrorResponse(c, "Failed to build leaderboard", err)
	}

	return SuccessResponse(c, dto.LeaderboardResponse{Entries: entries})
}
