package adapter

import (
	"context"

	binance "github.com/adshao/go-binance/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"cryptosim/internal/domain"
)

const quoteAsset = "USDT"

// BinanceQuoteProvider prices assets from Binance 24h ticker statistics
// against USDT. Binance has no market cap, so it is reported as 0.
type BinanceQuoteProvider struct {
	client *binance.Client
	assets []string
}

// NewBinanceQuoteProvider creates a new Binance quote feed. Keys are
// optional for the public ticker endpoint.
func NewBinanceQuoteProvider(apiKey, secretKey string, assets []string) *BinanceQuoteProvider {
	return NewBinanceQuoteProviderWithClient(binance.NewClient(apiKey, secretKey), assets)
}

// NewBinanceQuoteProviderWithClient wraps an existing client
func NewBinanceQuoteProviderWithClient(client *binance.Client, assets []string) *BinanceQuoteProvider {
	if len(assets) == 0 {
		assets = DefaultAssets
	}
	return &BinanceQuoteProvider{client: client, assets: assets}
}

func (p *BinanceQuoteProvider) Name() string {
	return "binance"
}

func (p *BinanceQuoteProvider) FetchQuotes(ctx context.Context) ([]domain.Quote, error) {
	pairs := make([]string, 0, len(p.assets))
	for _, asset := range p.assets {
		if asset == quoteAsset {
			continue
		}
		pairs = append(pairs, asset+quoteAsset)
	}

	stats := map[string]*binance.PriceChangeStats{}
	if len(pairs) > 0 {
		res, err := p.client.NewListPriceChangeStatsService().Symbols(pairs).Do(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "fetch binance 24h stats")
		}
		for _, s := range res {
			stats[s.Symbol] = s
		}
	}

	quotes := make([]domain.Quote, 0, len(p.assets))
	for _, asset := range p.assets {
		if asset == quoteAsset {
			quotes = append(quotes, domain.Quote{Symbol: asset, Name: assetName(asset), PriceUSD: 1})
			continue
		}

		s, ok := stats[asset+quoteAsset]
		if !ok {
			continue
		}
		price, err := decimal.NewFromString(s.LastPrice)
		if err != nil {
			return nil, errors.Wrapf(err, "parse %s last price %q", s.Symbol, s.LastPrice)
		}
		change, err := decimal.NewFromString(s.PriceChangePercent)
		if err != nil {
			change = decimal.Zero
		}

		quotes = append(quotes, domain.Quote{
			Symbol:       asset,
			Name:         assetName(asset),
			PriceUSD:     price.InexactFloat64(),
			Change24hPct: change.InexactFloat64(),
		})
	}

	return quotes, nil
}
