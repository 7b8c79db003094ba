package dto

import (
	"time"

	"cryptosim/internal/domain"
)

// AmountRequest represents a deposit or withdrawal
type AmountRequest struct {
	Amount float64 `json:"amount"`
}

// TradeRequest represents a buy or sell from the trade form. For a buy the
// pay amount is USD; for a sell it is the coin quantity.
type TradeRequest struct {
	Symbol        string  `json:"symbol" validate:"required"`
	Side          string  `json:"side" validate:"required,oneof=BUY SELL buy sell"`
	PayAmount     float64 `json:"pay_amount"`
	ReceiveAmount float64 `json:"receive_amount"`
}

// ActivityOutput represents one activity entry
type ActivityOutput struct {
	Description string `json:"description"`
	Kind        string `json:"kind"`
}

// AccountOutput represents an account in API responses. Passwords are
// never included.
type AccountOutput struct {
	ID              string             `json:"id"`
	Username        string             `json:"username"`
	BalanceUSD      float64            `json:"balance_usd"`
	Holdings        map[string]float64 `json:"holdings"`
	Activity        []ActivityOutput   `json:"activity"`
	NetWorthUSD     *float64           `json:"net_worth_usd,omitempty"`
	UnpricedSymbols []string           `json:"unpriced_symbols,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// TradeOutput represents an executed trade
type TradeOutput struct {
	Side        string  `json:"side"`
	Symbol      string  `json:"symbol"`
	Quantity    float64 `json:"quantity"`
	AmountUSD   float64 `json:"amount_usd"`
	Description string  `json:"description"`
}

// TradeResponse is returned after a successful trade
type TradeResponse struct {
	Trade   TradeOutput   `json:"trade"`
	Account AccountOutput `json:"account"`
}

// NewAccountOutput converts a domain account
func NewAccountOutput(a *domain.Account) AccountOutput {
	out := AccountOutput{
		ID:         a.ID.String(),
		Username:   a.Username,
		BalanceUSD: a.BalanceUSD,
		Holdings:   make(map[string]float64, len(a.Holdings)),
		Activity:   make([]ActivityOutput, 0, a.Activity.Len()),
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
	for sym, amount := range a.Holdings {
		out.Holdings[sym] = amount
	}
	for _, e := range a.Activity.Entries() {
		out.Activity = append(out.Activity, ActivityOutput{Description: e.Description, Kind: string(e.Kind)})
	}
	return out
}

// NewTradeOutput converts a trade result
func NewTradeOutput(r domain.TradeResult) TradeOutput {
	return TradeOutput{
		Side:        string(r.Side),
		Symbol:      r.Symbol,
		Quantity:    r.Quantity,
		AmountUSD:   r.AmountUSD,
		Description: r.Entry.Description,
	}
}
