package ops

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"cryptosim/internal/domain"
	"cryptosim/internal/service"
	"cryptosim/mocks"
)

func TestHealth_DegradedWithoutSnapshot(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockQuoteProvider(ctrl)
	provider.EXPECT().Name().Return("fake").AnyTimes()

	h := NewRouter(service.NewMarketDataService(provider, nil), nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"degraded"`)
}

func TestRefreshThenHealth(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockQuoteProvider(ctrl)
	provider.EXPECT().Name().Return("fake").AnyTimes()
	provider.EXPECT().FetchQuotes(gomock.Any()).Return([]domain.Quote{
		{Symbol: "BTC", Name: "Bitcoin", PriceUSD: 1},
		{Symbol: "ETH", Name: "Ethereum", PriceUSD: 2},
	}, nil)

	h := NewRouter(service.NewMarketDataService(provider, nil), nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/market/refresh", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"quotes":2`)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"provider":"fake"`)
}

func TestRefresh_ProviderFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockQuoteProvider(ctrl)
	provider.EXPECT().Name().Return("fake").AnyTimes()
	provider.EXPECT().FetchQuotes(gomock.Any()).DoAndReturn(func(ctx context.Context) ([]domain.Quote, error) {
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		return nil, errors.New("timeout")
	})

	h := NewRouter(service.NewMarketDataService(provider, nil), nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/market/refresh", nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
