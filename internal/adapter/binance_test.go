package adapter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	binance "github.com/adshao/go-binance/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinanceQuoteProvider_FetchQuotes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/ticker/24hr", r.URL.Path)
		assert.Contains(t, r.URL.Query().Get("symbols"), "BTCUSDT")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"symbol": "ETHUSDT", "lastPrice": "3100.10000000", "priceChangePercent": "-0.850"},
			{"symbol": "BTCUSDT", "lastPrice": "64000.00000000", "priceChangePercent": "1.500"}
		]`))
	}))
	defer srv.Close()

	client := binance.NewClient("", "")
	client.BaseURL = srv.URL

	provider := NewBinanceQuoteProviderWithClient(client, []string{"BTC", "USDT", "ETH", "NOPE"})
	quotes, err := provider.FetchQuotes(context.Background())
	require.NoError(t, err)

	require.Len(t, quotes, 3)
	assert.Equal(t, "BTC", quotes[0].Symbol)
	assert.Equal(t, "Bitcoin", quotes[0].Name)
	assert.Equal(t, 64000.0, quotes[0].PriceUSD)
	assert.Equal(t, 1.5, quotes[0].Change24hPct)

	assert.Equal(t, "USDT", quotes[1].Symbol)
	assert.Equal(t, 1.0, quotes[1].PriceUSD)

	assert.Equal(t, "ETH", quotes[2].Symbol)
	assert.Equal(t, 3100.1, quotes[2].PriceUSD)
	assert.Equal(t, -0.85, quotes[2].Change24hPct)
}

func TestBinanceQuoteProvider_Error(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code": -1121, "msg": "Invalid symbol."}`))
	}))
	defer srv.Close()

	client := binance.NewClient("", "")
	client.BaseURL = srv.URL

	_, err := NewBinanceQuoteProviderWithClient(client, []string{"BTC"}).FetchQuotes(context.Background())
	assert.Error(t, err)
}
