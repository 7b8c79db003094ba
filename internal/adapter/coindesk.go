package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"cryptosim/internal/domain"
)

const DefaultCoinDeskBaseURL = "https://data-api.coindesk.com"

// CoinDeskClient implements domain.QuoteProvider on the CoinDesk asset
// metadata endpoint
type CoinDeskClient struct {
	baseURL    string
	assets     []string
	httpClient *http.Client
}

// NewCoinDeskClient creates a new CoinDesk quote feed
func NewCoinDeskClient(baseURL string, assets []string) *CoinDeskClient {
	if baseURL == "" {
		baseURL = DefaultCoinDeskBaseURL
	}
	if len(assets) == 0 {
		assets = DefaultAssets
	}
	return &CoinDeskClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		assets:  assets,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// coinDeskAsset holds the fields we read from one entry of "Data".
// Absent or null numbers decode to zero.
type coinDeskAsset struct {
	Symbol       string          `json:"SYMBOL"`
	Name         string          `json:"NAME"`
	PriceUSD     decimal.Decimal `json:"PRICE_USD"`
	MarketCapUSD decimal.Decimal `json:"TOTAL_MKT_CAP_USD"`
	Change24hPct decimal.Decimal `json:"SPOT_MOVING_24_HOUR_CHANGE_PERCENTAGE_USD"`
}

type coinDeskResponse struct {
	Data map[string]coinDeskAsset `json:"Data"`
	Err  struct {
		Type    int    `json:"type"`
		Message string `json:"message"`
	} `json:"Err"`
}

func (c *CoinDeskClient) Name() string {
	return "coindesk"
}

// FetchQuotes fetches metadata for the configured assets. Quotes come back
// in the order of the asset list; anything extra follows alphabetically.
func (c *CoinDeskClient) FetchQuotes(ctx context.Context) ([]domain.Quote, error) {
	params := url.Values{}
	params.Set("asset_lookup_priority", "SYMBOL")
	params.Set("quote_asset", "USD")
	params.Set("asset_language", "en-US")
	params.Set("assets", strings.Join(c.assets, ","))
	params.Set("groups", "ID,PRICE,MKT_CAP,CHANGE,BASIC")

	endpoint := fmt.Sprintf("%s/asset/v2/metadata?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create coindesk request")
	}
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "call coindesk")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, errors.Errorf("coindesk returned error: status=%d, body=%s", resp.StatusCode, string(body))
	}

	var payload coinDeskResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, errors.Wrap(err, "decode coindesk response")
	}
	if len(payload.Data) == 0 && payload.Err.Message != "" {
		return nil, errors.Errorf("coindesk error: %s", payload.Err.Message)
	}

	return c.toQuotes(payload.Data), nil
}

func (c *CoinDeskClient) toQuotes(data map[string]coinDeskAsset) []domain.Quote {
	position := make(map[string]int, len(c.assets))
	for i, sym := range c.assets {
		position[sym] = i
	}

	quotes := make([]domain.Quote, 0, len(data))
	for key, asset := range data {
		symbol := asset.Symbol
		if symbol == "" {
			symbol = key
		}
		name := asset.Name
		if name == "" {
			name = assetName(symbol)
		}
		quotes = append(quotes, domain.Quote{
			Symbol:       symbol,
			Name:         name,
			PriceUSD:     asset.PriceUSD.InexactFloat64(),
			MarketCapUSD: asset.MarketCapUSD.InexactFloat64(),
			Change24hPct: asset.Change24hPct.InexactFloat64(),
		})
	}

	sort.Slice(quotes, func(i, j int) bool {
		pi, iok := position[quotes[i].Symbol]
		pj, jok := position[quotes[j].Symbol]
		switch {
		case iok && jok:
			return pi < pj
		case iok != jok:
			return iok
		default:
			return quotes[i].Symbol < quotes[j].Symbol
		}
	})
	return quotes
}
