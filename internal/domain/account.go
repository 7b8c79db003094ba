package domain

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Account is the ledger of one registered user. The username is its identity
// and storage key; balance and holdings never go negative.
type Account struct {
	ID         uuid.UUID
	Username   string
	Password   string // sealed by the configured CredentialPolicy
	BalanceUSD float64
	Holdings   map[string]float64
	Activity   ActivityLog
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewAccount creates an empty account with a zero balance.
func NewAccount(username, password string, now time.Time) (*Account, error) {
	if strings.TrimSpace(username) == "" || strings.TrimSpace(password) == "" {
		return nil, ErrInvalidUsername
	}

	return &Account{
		ID:        uuid.New(),
		Username:  username,
		Password:  password,
		Holdings:  make(map[string]float64),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Holding returns the amount held of symbol, zero when not held.
func (a *Account) Holding(symbol string) float64 {
	return a.Holdings[symbol]
}

// Deposit credits amount USD to the balance.
func (a *Account) Deposit(amount float64) error {
	if !positive(amount) {
		return fmt.Errorf("%w: deposit of %v", ErrInvalidAmount, amount)
	}

	a.BalanceUSD += amount
	a.Activity.Record(ActivityEntry{
		Description: fmt.Sprintf("Deposited $%.2f USD", amount),
		Kind:        ActivityCredit,
	})
	return nil
}

// Withdraw debits amount USD from the balance.
func (a *Account) Withdraw(amount float64) error {
	if !positive(amount) {
		return fmt.Errorf("%w: withdrawal of %v", ErrInvalidAmount, amount)
	}
	if amount > a.BalanceUSD {
		return fmt.Errorf("%w: cannot withdraw $%.2f from $%.2f", ErrInsufficientFunds, amount, a.BalanceUSD)
	}

	a.BalanceUSD -= amount
	a.Activity.Record(ActivityEntry{
		Description: fmt.Sprintf("Withdrew $%.2f USD", amount),
		Kind:        ActivityDebit,
	})
	return nil
}

// ApplyTrade moves balanceDelta and holdingDelta and records entry as one
// unit. Nothing changes if either side would go negative. A holding that
// reaches exactly zero is removed.
func (a *Account) ApplyTrade(symbol string, balanceDelta, holdingDelta float64, entry ActivityEntry) error {
	newBalance := a.BalanceUSD + balanceDelta
	if newBalance < 0 {
		return fmt.Errorf("%w: balance would become %.2f", ErrInsufficientFunds, newBalance)
	}
	newHolding := a.Holding(symbol) + holdingDelta
	if newHolding < 0 {
		return fmt.Errorf("%w: %s would become %.6f", ErrInsufficientHoldings, symbol, newHolding)
	}

	if a.Holdings == nil {
		a.Holdings = make(map[string]float64)
	}
	a.BalanceUSD = newBalance
	if newHolding == 0 {
		delete(a.Holdings, symbol)
	} else {
		a.Holdings[symbol] = newHolding
	}
	a.Activity.Record(entry)
	return nil
}

// NetWorth values the account against snapshot. Held symbols missing from
// the snapshot contribute nothing and are returned as unpriced, sorted.
func (a *Account) NetWorth(snapshot *Snapshot) (netWorth float64, unpriced []string) {
	netWorth = a.BalanceUSD
	for _, symbol := range a.heldSymbols() {
		quote, ok := snapshot.Lookup(symbol)
		if !ok {
			unpriced = append(unpriced, symbol)
			continue
		}
		netWorth += a.Holdings[symbol] * quote.PriceUSD
	}
	return netWorth, unpriced
}

// Clone returns a deep copy.
func (a *Account) Clone() *Account {
	c := *a
	c.Holdings = make(map[string]float64, len(a.Holdings))
	for k, v := range a.Holdings {
		c.Holdings[k] = v
	}
	c.Activity = NewActivityLog(a.Activity.Entries()...)
	return &c
}

func (a *Account) heldSymbols() []string {
	symbols := make([]string, 0, len(a.Holdings))
	for symbol, amount := range a.Holdings {
		if amount != 0 {
			symbols = append(symbols, symbol)
		}
	}
	sort.Strings(symbols)
	return symbols
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}
