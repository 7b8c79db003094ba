package http

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"

	"cryptosim/internal/delivery/http/dto"
	"cryptosim/internal/domain"
	"cryptosim/internal/middleware"
	"cryptosim/internal/usecase"
)

// AccountHandler handles balance and trading requests of the logged-in user
type AccountHandler struct {
	ledger *usecase.LedgerService
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(ledger *usecase.LedgerService) *AccountHandler {
	return &AccountHandler{ledger: ledger}
}

// GetAccount returns the balance, holdings, activity and net worth
// GET /api/account
func (h *AccountHandler) GetAccount(c echo.Context) error {
	session, err := middleware.GetSession(c)
	if err != nil {
		return UnauthorizedResponse(c, "Unauthorized")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	summary, err := h.ledger.Account(ctx, session)
	if err != nil {
		return LedgerErrorResponse(c, "Failed to load account", err)
	}

	out := dto.NewAccountOutput(summary.Account)
	if summary.Priced {
		netWorth := summary.NetWorthUSD
		out.NetWorthUSD = &netWorth
	}
	out.UnpricedSymbols = summary.UnpricedSymbols
	return SuccessResponse(c, out)
}

// Deposit credits USD to the balance
// POST /api/account/deposit
func (h *AccountHandler) Deposit(c echo.Context) error {
	return h.moveFunds(c, h.ledger.Deposit, "Failed to deposit")
}

// Withdraw debits USD from the balance
// POST /api/account/withdraw
func (h *AccountHandler) Withdraw(c echo.Context) error {
	return h.moveFunds(c, h.ledger.Withdraw, "Failed to withdraw")
}

type fundsFunc func(ctx context.Context, session usecase.Session, amount float64) (*domain.Account, error)

func (h *AccountHandler) moveFunds(c echo.Context, move fundsFunc, failure string) error {
	session, err := middleware.GetSession(c)
	if err != nil {
		return UnauthorizedResponse(c, "Unauthorized")
	}

	var req dto.AmountRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestResponse(c, "Please enter a valid number")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	acct, err := move(ctx, session, req.Amount)
	if err != nil {
		return LedgerErrorResponse(c, failure, err)
	}

	return SuccessResponse(c, dto.NewAccountOutput(acct))
}

// Trade executes a buy or sell at the current snapshot
// POST /api/account/trade
func (h *AccountHandler) Trade(c echo.Context) error {
	session, err := middleware.GetSession(c)
	if err != nil {
		return UnauthorizedResponse(c, "Unauthorized")
	}

	var req dto.TradeRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestResponse(c, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return BadRequestResponse(c, "Symbol and side (BUY or SELL) are required")
	}

	side, err := domain.ParseSide(req.Side)
	if err != nil {
		return BadRequestResponse(c, err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	result, acct, err := h.ledger.Trade(ctx, session, req.Symbol, domain.TradeOrder{
		Side:          side,
		PayAmount:     req.PayAmount,
		ReceiveAmount: req.ReceiveAmount,
	})
	if err != nil {
		return LedgerErrorResponse(c, "Failed to execute trade", err)
	}

	return SuccessResponse(c, dto.TradeResponse{
		Trade:   dto.NewTradeOutput(result),
		Account: dto.NewAccountOutput(acct),
	})
}
