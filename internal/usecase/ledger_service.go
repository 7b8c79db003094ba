package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"cryptosim/internal/domain"
)

// Role is the authorization level carried in a session
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Session identifies the caller of a ledger operation
type Session struct {
	Username string
	Role     Role
}

// IsAdmin reports whether the session may use admin operations
func (s Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}

// SnapshotSource supplies the current market snapshot
type SnapshotSource interface {
	Snapshot() (*domain.Snapshot, error)
}

// AccountSummary is an account together with its valuation at the current
// snapshot. Priced is false when no snapshot was available.
type AccountSummary struct {
	Account         *domain.Account
	NetWorthUSD     float64
	UnpricedSymbols []string
	Priced          bool
}

// MarketQuery selects and orders the market listing. An empty Sort keeps
// the snapshot order.
type MarketQuery struct {
	Search    string
	Sort      domain.SortField
	Ascending bool
}

// MarketListing is a filtered and sorted view of one snapshot
type MarketListing struct {
	Quotes    []domain.Quote
	FetchedAt time.Time
}

// LedgerService handles account, trading and ranking operations
type LedgerService struct {
	repo     domain.AccountRepository
	market   SnapshotSource
	creds    domain.CredentialPolicy
	executor domain.TradeExecutor
	admins   map[string]bool
	logger   *zap.Logger
	now      func() time.Time

	// resetMu lets ResetAll wait for in-flight mutations
	resetMu sync.RWMutex
	locks   *keyedMutex
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(
	repo domain.AccountRepository,
	market SnapshotSource,
	creds domain.CredentialPolicy,
	executor domain.TradeExecutor,
	adminUsernames []string,
	logger *zap.Logger,
) *LedgerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	admins := make(map[string]bool, len(adminUsernames))
	for _, name := range adminUsernames {
		if name = strings.TrimSpace(name); name != "" {
			admins[name] = true
		}
	}
	return &LedgerService{
		repo:     repo,
		market:   market,
		creds:    creds,
		executor: executor,
		admins:   admins,
		logger:   logger.Named("ledger"),
		now:      time.Now,
		locks:    newKeyedMutex(),
	}
}

// Register creates an account with a zero balance
func (s *LedgerService) Register(ctx context.Context, username, password string) (*domain.Account, error) {
	username, password = strings.TrimSpace(username), strings.TrimSpace(password)

	acct, err := domain.NewAccount(username, password, s.now())
	if err != nil {
		return nil, err
	}

	sealed, err := s.creds.Seal(password)
	if err != nil {
		return nil, fmt.Errorf("failed to seal password: %w", err)
	}
	acct.Password = sealed

	s.resetMu.RLock()
	defer s.resetMu.RUnlock()

	if err := s.repo.Create(ctx, acct); err != nil {
		if !errors.Is(err, domain.ErrDuplicateUsername) {
			s.logger.Error("failed to create account", zap.String("username", username), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("account registered", zap.String("username", username))
	return acct, nil
}

// Authenticate checks credentials and opens a session. A missing account
// and a wrong password are indistinguishable to the caller.
func (s *LedgerService) Authenticate(ctx context.Context, username, password string) (Session, error) {
	username, password = strings.TrimSpace(username), strings.TrimSpace(password)
	if username == "" || password == "" {
		return Session{}, domain.ErrAuthFailure
	}

	acct, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return Session{}, domain.ErrAuthFailure
		}
		return Session{}, err
	}
	if !s.creds.Verify(acct.Password, password) {
		s.logger.Info("login rejected", zap.String("username", username))
		return Session{}, domain.ErrAuthFailure
	}

	return s.sessionFor(acct.Username), nil
}

func (s *LedgerService) sessionFor(username string) Session {
	role := RoleUser
	if s.admins[username] {
		role = RoleAdmin
	}
	return Session{Username: username, Role: role}
}

// Account returns the caller's account valued at the current snapshot
func (s *LedgerService) Account(ctx context.Context, session Session) (AccountSummary, error) {
	acct, err := s.repo.GetByUsername(ctx, session.Username)
	if err != nil {
		return AccountSummary{}, err
	}

	snap, err := s.market.Snapshot()
	if err != nil && !errors.Is(err, domain.ErrSnapshotUnavailable) {
		return AccountSummary{}, err
	}

	netWorth, unpriced := acct.NetWorth(snap)
	return AccountSummary{
		Account:         acct,
		NetWorthUSD:     netWorth,
		UnpricedSymbols: unpriced,
		Priced:          snap != nil,
	}, nil
}

// Deposit credits USD to the caller's balance
func (s *LedgerService) Deposit(ctx context.Context, session Session, amount float64) (*domain.Account, error) {
	acct, err := s.mutate(ctx, session.Username, func(a *domain.Account) error {
		return a.Deposit(amount)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("deposit", zap.String("username", session.Username), zap.Float64("amount", amount))
	return acct, nil
}

// Withdraw debits USD from the caller's balance
func (s *LedgerService) Withdraw(ctx context.Context, session Session, amount float64) (*domain.Account, error) {
	acct, err := s.mutate(ctx, session.Username, func(a *domain.Account) error {
		return a.Withdraw(amount)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("withdrawal", zap.String("username", session.Username), zap.Float64("amount", amount))
	return acct, nil
}

// Quote looks up one symbol in the current snapshot
func (s *LedgerService) Quote(symbol string) (domain.Quote, error) {
	symbol = normalizeSymbol(symbol)

	snap, err := s.market.Snapshot()
	if err != nil {
		return domain.Quote{}, fmt.Errorf("%w: %s: %v", domain.ErrQuoteUnavailable, symbol, err)
	}
	q, ok := snap.Lookup(symbol)
	if !ok {
		return domain.Quote{}, fmt.Errorf("%w: %s", domain.ErrQuoteUnavailable, symbol)
	}
	return q, nil
}

// Trade executes a buy or sell of symbol against the current snapshot and
// persists the account once
func (s *LedgerService) Trade(ctx context.Context, session Session, symbol string, order domain.TradeOrder) (domain.TradeResult, *domain.Account, error) {
	quote, err := s.Quote(symbol)
	if err != nil {
		return domain.TradeResult{}, nil, err
	}

	var result domain.TradeResult
	acct, err := s.mutate(ctx, session.Username, func(a *domain.Account) error {
		var execErr error
		result, execErr = s.executor.Execute(a, quote, order)
		return execErr
	})
	if err != nil {
		return domain.TradeResult{}, nil, err
	}

	s.logger.Info("trade executed",
		zap.String("username", session.Username),
		zap.String("side", string(result.Side)),
		zap.String("symbol", result.Symbol),
		zap.Float64("quantity", result.Quantity),
		zap.Float64("amount", result.AmountUSD),
	)
	return result, acct, nil
}

// Market returns the filtered and sorted market listing. The search always
// runs against the full snapshot, then the sort is applied.
func (s *LedgerService) Market(q MarketQuery) (MarketListing, error) {
	snap, err := s.market.Snapshot()
	if err != nil {
		return MarketListing{}, err
	}

	view := domain.NewMarketView(snap).Search(q.Search)
	if q.Sort != "" {
		view = view.Sort(q.Sort, q.Ascending)
	}
	return MarketListing{Quotes: view.Quotes(), FetchedAt: snap.FetchedAt()}, nil
}

// Leaderboard ranks every account by net worth. Without a snapshot all
// holdings are unpriced and only balances count.
func (s *LedgerService) Leaderboard(ctx context.Context) ([]domain.RankEntry, error) {
	accounts, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	snap, err := s.market.Snapshot()
	if err != nil && !errors.Is(err, domain.ErrSnapshotUnavailable) {
		return nil, err
	}
	return domain.Rank(accounts, snap), nil
}

// ListAccounts returns every account for the admin view
func (s *LedgerService) ListAccounts(ctx context.Context) ([]*domain.Account, error) {
	return s.repo.GetAll(ctx)
}

// ResetAll discards every account. It waits for in-flight mutations and
// blocks new ones until it is done.
func (s *LedgerService) ResetAll(ctx context.Context) error {
	s.resetMu.Lock()
	defer s.resetMu.Unlock()

	if err := s.repo.DeleteAll(ctx); err != nil {
		s.logger.Error("reset failed", zap.Error(err))
		return err
	}

	s.logger.Warn("all accounts reset")
	return nil
}

// mutate loads a fresh copy of the account, applies fn and saves the
// result. If fn or the save fails, the stored record is unchanged.
func (s *LedgerService) mutate(ctx context.Context, username string, fn func(*domain.Account) error) (*domain.Account, error) {
	s.resetMu.RLock()
	defer s.resetMu.RUnlock()

	unlock := s.locks.Lock(username)
	defer unlock()

	acct, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	if err := fn(acct); err != nil {
		return nil, err
	}
	acct.UpdatedAt = s.now()

	if err := s.repo.Save(ctx, acct); err != nil {
		s.logger.Error("failed to save account", zap.String("username", username), zap.Error(err))
		if !errors.Is(err, domain.ErrPersistence) && !errors.Is(err, domain.ErrAccountNotFound) {
			err = fmt.Errorf("%w: %v", domain.ErrPersistence, err)
		}
		return nil, err
	}

	return acct, nil
}

func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
