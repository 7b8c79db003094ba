package adapter

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticQuoteProvider(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quotes.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
quotes:
  - symbol: BTC
    name: Bitcoin
    price_usd: 50000
    market_cap_usd: 1000000000
    change_24h_pct: -2.5
  - symbol: DOGE
    name: Dogecoin
    price_usd: 0.12
`), 0o644))

	quotes, err := NewStaticQuoteProvider(path).FetchQuotes(context.Background())
	require.NoError(t, err)

	require.Len(t, quotes, 2)
	assert.Equal(t, "BTC", quotes[0].Symbol)
	assert.Equal(t, 50000.0, quotes[0].PriceUSD)
	assert.Equal(t, -2.5, quotes[0].Change24hPct)
	assert.Equal(t, 0.12, quotes[1].PriceUSD)
	assert.Zero(t, quotes[1].MarketCapUSD)
}

func TestStaticQuoteProvider_MissingFile(t *testing.T) {
	_, err := NewStaticQuoteProvider(filepath.Join(t.TempDir(), "nope.yaml")).FetchQuotes(context.Background())
	assert.Error(t, err)
}

func TestParseAssets(t *testing.T) {
	assert.Equal(t, []string{"BTC", "ETH"}, ParseAssets(" btc, ETH,,btc "))
	assert.Equal(t, DefaultAssets, ParseAssets(""))
}
