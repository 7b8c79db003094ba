package domain

import (
	"fmt"
	"math"
	"strings"
)

// Side is the direction of a trade.
type Side string

// Side constants
const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// ParseSide accepts "buy"/"sell" in any case.
func ParseSide(s string) (Side, error) {
	switch side := Side(strings.ToUpper(strings.TrimSpace(s))); side {
	case SideBuy, SideSell:
		return side, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidSide, s)
	}
}

// TradeOrder is a pay/receive pair as entered on the trade form.
//
// For a buy, PayAmount is USD and ReceiveAmount is the coin quantity.
// For a sell, PayAmount is the coin quantity and ReceiveAmount is USD.
type TradeOrder struct {
	Side          Side
	PayAmount     float64
	ReceiveAmount float64
}

// TradeResult describes an applied trade.
type TradeResult struct {
	Side      Side
	Symbol    string
	Quantity  float64
	AmountUSD float64
	Entry     ActivityEntry
}

// TradeExecutor validates orders and applies them to an account.
//
// With PriceTolerance zero the executor trusts the caller's pay/receive
// pair as is. A positive PriceTolerance recomputes the USD side from the
// quote and rejects relative deviations above it.
type TradeExecutor struct {
	PriceTolerance float64
}

// Execute applies order to account at quote. On error the account is
// untouched.
func (e TradeExecutor) Execute(account *Account, quote Quote, order TradeOrder) (TradeResult, error) {
	if !positive(order.PayAmount) || !positive(order.ReceiveAmount) {
		return TradeResult{}, fmt.Errorf("%w: pay %v, receive %v", ErrInvalidAmount, order.PayAmount, order.ReceiveAmount)
	}

	symbol := quote.Symbol
	var result TradeResult

	switch order.Side {
	case SideBuy:
		usd, qty := order.PayAmount, order.ReceiveAmount
		if usd > account.BalanceUSD {
			return TradeResult{}, fmt.Errorf("%w: need $%.2f, have $%.2f", ErrInsufficientFunds, usd, account.BalanceUSD)
		}
		if err := e.checkPrice(quote, qty, usd); err != nil {
			return TradeResult{}, err
		}
		result = TradeResult{
			Side:      SideBuy,
			Symbol:    symbol,
			Quantity:  qty,
			AmountUSD: usd,
			Entry: ActivityEntry{
				Description: fmt.Sprintf("Bought %.6f %s for $%.2f USD", qty, symbol, usd),
				Kind:        ActivityDebit,
			},
		}
		if err := account.ApplyTrade(symbol, -usd, qty, result.Entry); err != nil {
			return TradeResult{}, err
		}

	case SideSell:
		qty, usd := order.PayAmount, order.ReceiveAmount
		owned := account.Holding(symbol)
		if qty > owned {
			return TradeResult{}, fmt.Errorf("%w: not enough %s to sell (have %.6f, want %.6f)", ErrInsufficientHoldings, symbol, owned, qty)
		}
		if err := e.checkPrice(quote, qty, usd); err != nil {
			return TradeResult{}, err
		}
		result = TradeResult{
			Side:      SideSell,
			Symbol:    symbol,
			Quantity:  qty,
			AmountUSD: usd,
			Entry: ActivityEntry{
				Description: fmt.Sprintf("Sold %.6f %s for $%.2f USD", qty, symbol, usd),
				Kind:        ActivityCredit,
			},
		}
		if err := account.ApplyTrade(symbol, usd, -qty, result.Entry); err != nil {
			return TradeResult{}, err
		}

	default:
		return TradeResult{}, fmt.Errorf("%w: %q", ErrInvalidSide, order.Side)
	}

	return result, nil
}

func (e TradeExecutor) checkPrice(quote Quote, qty, usd float64) error {
	if e.PriceTolerance <= 0 {
		return nil
	}
	expected := qty * quote.PriceUSD
	if math.Abs(usd-expected) > e.PriceTolerance*expected {
		return fmt.Errorf("%w: %.6f %s at $%.2f is $%.2f, got $%.2f",
			ErrPriceMismatch, qty, quote.Symbol, quote.PriceUSD, expected, usd)
	}
	return nil
}
