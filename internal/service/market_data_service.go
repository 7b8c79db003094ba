package service

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"cryptosim/internal/domain"
)

// MarketDataService owns the current quote snapshot. A refresh fetches from
// the provider and swaps the whole snapshot; readers load the pointer once
// per operation and never see a half-built one.
type MarketDataService struct {
	provider domain.QuoteProvider
	validate *validator.Validate
	logger   *zap.Logger
	now      func() time.Time

	snapshot atomic.Pointer[domain.Snapshot]
}

// NewMarketDataService creates a new MarketDataService
func NewMarketDataService(provider domain.QuoteProvider, logger *zap.Logger) *MarketDataService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MarketDataService{
		provider: provider,
		validate: validator.New(),
		logger:   logger.Named("market"),
		now:      time.Now,
	}
}

// ProviderName returns the name of the quote feed
func (s *MarketDataService) ProviderName() string {
	return s.provider.Name()
}

// Refresh fetches a new batch of quotes and publishes it as the current
// snapshot. Symbols are upper-cased. Quotes that fail validation and
// repeated symbols are dropped.
// On a fetch error the previous snapshot stays in place.
func (s *MarketDataService) Refresh(ctx context.Context) (*domain.Snapshot, error) {
	start := s.now()

	quotes, err := s.provider.FetchQuotes(ctx)
	if err != nil {
		s.logger.Error("quote fetch failed", zap.String("provider", s.provider.Name()), zap.Error(err))
		return nil, errors.Wrapf(err, "fetch quotes from %s", s.provider.Name())
	}

	accepted := make([]domain.Quote, 0, len(quotes))
	seen := make(map[string]struct{}, len(quotes))
	for _, q := range quotes {
		q.Symbol = strings.ToUpper(strings.TrimSpace(q.Symbol))
		if err := s.validate.Struct(q); err != nil {
			s.logger.Warn("dropping invalid quote", zap.String("symbol", q.Symbol), zap.Error(err))
			continue
		}
		if _, dup := seen[q.Symbol]; dup {
			s.logger.Warn("dropping duplicate quote", zap.String("symbol", q.Symbol))
			continue
		}
		seen[q.Symbol] = struct{}{}
		accepted = append(accepted, q)
	}

	snap, err := domain.NewSnapshot(accepted, s.now())
	if err != nil {
		return nil, err
	}
	s.snapshot.Store(snap)

	s.logger.Info("market snapshot refreshed",
		zap.String("provider", s.provider.Name()),
		zap.Int("quotes", snap.Len()),
		zap.Int("dropped", len(quotes)-snap.Len()),
		zap.Duration("took", s.now().Sub(start)),
	)
	return snap, nil
}

// Snapshot returns the current snapshot
func (s *MarketDataService) Snapshot() (*domain.Snapshot, error) {
	snap := s.snapshot.Load()
	if snap == nil {
		return nil, domain.ErrSnapshotUnavailable
	}
	return snap, nil
}
