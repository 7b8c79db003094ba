package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"cryptosim/internal/domain"
	"cryptosim/mocks"
)

func TestMarketDataService_SnapshotBeforeRefresh(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := NewMarketDataService(mocks.NewMockQuoteProvider(ctrl), nil)

	_, err := svc.Snapshot()
	assert.ErrorIs(t, err, domain.ErrSnapshotUnavailable)
}

func TestMarketDataService_RefreshFiltersQuotes(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockQuoteProvider(ctrl)
	provider.EXPECT().Name().Return("fake").AnyTimes()
	provider.EXPECT().FetchQuotes(gomock.Any()).Return([]domain.Quote{
		{Symbol: "BTC", Name: "Bitcoin", PriceUSD: 60000},
		{Symbol: "", Name: "Nameless", PriceUSD: 1},
		{Symbol: "BAD", Name: "Negative", PriceUSD: -3},
		{Symbol: "NAN", Name: "Not a number", PriceUSD: math.NaN()},
		{Symbol: "BTC", Name: "Bitcoin again", PriceUSD: 1},
		{Symbol: "ETH", Name: "Ethereum", PriceUSD: 3000},
	}, nil)

	svc := NewMarketDataService(provider, nil)
	snap, err := svc.Refresh(context.Background())
	require.NoError(t, err)

	require.Equal(t, 2, snap.Len())
	quotes := snap.Quotes()
	assert.Equal(t, "Bitcoin", quotes[0].Name)
	assert.Equal(t, "ETH", quotes[1].Symbol)

	current, err := svc.Snapshot()
	require.NoError(t, err)
	assert.Same(t, snap, current)
}

func TestMarketDataService_FailedRefreshKeepsSnapshot(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockQuoteProvider(ctrl)
	provider.EXPECT().Name().Return("fake").AnyTimes()
	gomock.InOrder(
		provider.EXPECT().FetchQuotes(gomock.Any()).Return([]domain.Quote{{Symbol: "BTC", PriceUSD: 1}}, nil),
		provider.EXPECT().FetchQuotes(gomock.Any()).Return(nil, errors.New("feed down")),
	)

	svc := NewMarketDataService(provider, nil)
	first, err := svc.Refresh(context.Background())
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background())
	require.Error(t, err)

	current, err := svc.Snapshot()
	require.NoError(t, err)
	assert.Same(t, first, current)
}

func TestMarketDataService_RefreshReplacesWholesale(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockQuoteProvider(ctrl)
	provider.EXPECT().Name().Return("fake").AnyTimes()
	gomock.InOrder(
		provider.EXPECT().FetchQuotes(gomock.Any()).Return([]domain.Quote{{Symbol: "BTC", PriceUSD: 1}}, nil),
		provider.EXPECT().FetchQuotes(gomock.Any()).Return([]domain.Quote{{Symbol: "ETH", PriceUSD: 2}}, nil),
	)

	svc := NewMarketDataService(provider, nil)
	old, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	_, err = svc.Refresh(context.Background())
	require.NoError(t, err)

	current, err := svc.Snapshot()
	require.NoError(t, err)
	_, ok := current.Lookup("BTC")
	assert.False(t, ok)

	// readers holding the old snapshot still see it unchanged
	_, ok = old.Lookup("BTC")
	assert.True(t, ok)
}

func TestMarketDataService_RefreshNormalizesSymbols(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockQuoteProvider(ctrl)
	provider.EXPECT().Name().Return("fake").AnyTimes()
	provider.EXPECT().FetchQuotes(gomock.Any()).Return([]domain.Quote{
		{Symbol: "btc", Name: "Bitcoin", PriceUSD: 60000},
		{Symbol: " eth ", Name: "Ethereum", PriceUSD: 3000},
		{Symbol: "BTC", Name: "Bitcoin again", PriceUSD: 1},
		{Symbol: "   ", Name: "Blank", PriceUSD: 1},
	}, nil)

	svc := NewMarketDataService(provider, nil)
	snap, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, snap.Len())

	q, ok := snap.Lookup("BTC")
	require.True(t, ok)
	assert.Equal(t, "Bitcoin", q.Name)

	q, ok = snap.Lookup("ETH")
	require.True(t, ok)
	assert.Equal(t, 3000.0, q.PriceUSD)
}
