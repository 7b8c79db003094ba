package domain

import "errors"

// Ledger and market errors. Callers match them with errors.Is; the layers
// above wrap them with context.
var (
	ErrDuplicateUsername    = errors.New("username already exists")
	ErrInvalidUsername      = errors.New("username and password are required")
	ErrAuthFailure          = errors.New("incorrect username or password")
	ErrAccountNotFound      = errors.New("account not found")
	ErrInvalidAmount        = errors.New("amount must be positive")
	ErrInsufficientFunds    = errors.New("insufficient USD balance")
	ErrInsufficientHoldings = errors.New("insufficient holdings")
	ErrPriceMismatch        = errors.New("pay and receive amounts do not match the quoted price")
	ErrInvalidSide          = errors.New("trade side must be BUY or SELL")
	ErrQuoteUnavailable     = errors.New("quote unavailable")
	ErrSnapshotUnavailable  = errors.New("market snapshot unavailable")
	ErrDuplicateSymbol      = errors.New("duplicate symbol in snapshot")
	ErrInvalidQuote         = errors.New("invalid quote")
	ErrPersistence          = errors.New("account storage failure")
	ErrCorruptRecord        = errors.New("account record is corrupt")
)
