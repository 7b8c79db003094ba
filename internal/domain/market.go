package domain

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// SortField names a numeric quote attribute the market view can order by.
type SortField string

// SortField constants
const (
	SortByPrice     SortField = "price"
	SortByMarketCap SortField = "market_cap"
	SortByChange24h SortField = "change_24h"
)

// ParseSortField validates a user-supplied sort field.
func ParseSortField(s string) (SortField, error) {
	switch f := SortField(strings.ToLower(strings.TrimSpace(s))); f {
	case SortByPrice, SortByMarketCap, SortByChange24h:
		return f, nil
	default:
		return "", fmt.Errorf("unknown sort field %q (want %s, %s or %s)", s, SortByPrice, SortByMarketCap, SortByChange24h)
	}
}

func (f SortField) key(q Quote) float64 {
	var v float64
	switch f {
	case SortByPrice:
		v = q.PriceUSD
	case SortByMarketCap:
		v = q.MarketCapUSD
	case SortByChange24h:
		v = q.Change24hPct
	}
	if math.IsNaN(v) {
		return 0
	}
	return v
}

// Search returns the quotes whose name or symbol contains query, ignoring
// case. An empty query returns the whole snapshot in its original order.
// The result always derives from the snapshot, never from an earlier view.
func Search(snapshot *Snapshot, query string) []Quote {
	all := snapshot.Quotes()
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return all
	}

	out := make([]Quote, 0, len(all))
	for _, quote := range all {
		if strings.Contains(strings.ToLower(quote.Name), q) || strings.Contains(strings.ToLower(quote.Symbol), q) {
			out = append(out, quote)
		}
	}
	return out
}

// SortBy returns a stably sorted copy of view. Quotes with equal keys keep
// their input order in both directions.
func SortBy(view []Quote, field SortField, ascending bool) []Quote {
	out := make([]Quote, len(view))
	copy(out, view)

	sort.SliceStable(out, func(i, j int) bool {
		a, b := field.key(out[i]), field.key(out[j])
		if ascending {
			return a < b
		}
		return a > b
	})
	return out
}

// MarketView is the displayed list of one browsing session. Search resets it
// from the base snapshot; Sort reorders whatever is currently displayed.
type MarketView struct {
	base      *Snapshot
	displayed []Quote
}

// NewMarketView starts a view showing the full snapshot.
func NewMarketView(snapshot *Snapshot) *MarketView {
	return &MarketView{base: snapshot, displayed: snapshot.Quotes()}
}

// Search replaces the displayed quotes with Search(base, query).
func (v *MarketView) Search(query string) *MarketView {
	v.displayed = Search(v.base, query)
	return v
}

// Sort orders the displayed quotes.
func (v *MarketView) Sort(field SortField, ascending bool) *MarketView {
	v.displayed = SortBy(v.displayed, field, ascending)
	return v
}

// Quotes returns a copy of the displayed quotes.
func (v *MarketView) Quotes() []Quote {
	out := make([]Quote, len(v.displayed))
	copy(out, v.displayed)
	return out
}
