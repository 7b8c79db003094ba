package domain

import (
	"fmt"
	"time"
)

// Quote is one market record supplied by a quote provider.
type Quote struct {
	Symbol       string  `json:"symbol" yaml:"symbol" validate:"required"`
	Name         string  `json:"name" yaml:"name"`
	PriceUSD     float64 `json:"price_usd" yaml:"price_usd" validate:"gte=0"`
	MarketCapUSD float64 `json:"market_cap_usd" yaml:"market_cap_usd"`
	Change24hPct float64 `json:"change_24h_pct" yaml:"change_24h_pct"`
}

// Snapshot is an immutable, point-in-time collection of quotes with unique
// symbols. Readers never see it change; a refresh builds a new Snapshot.
type Snapshot struct {
	quotes    []Quote
	index     map[string]int
	fetchedAt time.Time
}

// NewSnapshot validates quotes and freezes them into a Snapshot.
// Order is preserved; it is the "original order" used by Search.
func NewSnapshot(quotes []Quote, fetchedAt time.Time) (*Snapshot, error) {
	s := &Snapshot{
		quotes:    make([]Quote, 0, len(quotes)),
		index:     make(map[string]int, len(quotes)),
		fetchedAt: fetchedAt,
	}

	for _, q := range quotes {
		if q.Symbol == "" {
			return nil, fmt.Errorf("%w: empty symbol", ErrInvalidQuote)
		}
		if q.PriceUSD < 0 {
			return nil, fmt.Errorf("%w: %s has negative price", ErrInvalidQuote, q.Symbol)
		}
		if _, exists := s.index[q.Symbol]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateSymbol, q.Symbol)
		}
		s.index[q.Symbol] = len(s.quotes)
		s.quotes = append(s.quotes, q)
	}

	return s, nil
}

// Quotes returns a copy of the snapshot in its original order.
func (s *Snapshot) Quotes() []Quote {
	if s == nil {
		return []Quote{}
	}
	out := make([]Quote, len(s.quotes))
	copy(out, s.quotes)
	return out
}

// Lookup finds the quote for symbol.
func (s *Snapshot) Lookup(symbol string) (Quote, bool) {
	if s == nil {
		return Quote{}, false
	}
	i, ok := s.index[symbol]
	if !ok {
		return Quote{}, false
	}
	return s.quotes[i], true
}

// Len returns the number of quotes.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.quotes)
}

// FetchedAt is the time the quotes were captured.
func (s *Snapshot) FetchedAt() time.Time {
	if s == nil {
		return time.Time{}
	}
	return s.fetchedAt
}
