package adapter

import "strings"

// DefaultAssets is the coin list shown by the market tab
var DefaultAssets = []string{
	"BTC", "ETH", "SOL", "USDT", "XRP", "BNB", "DOGE", "ADA", "SHIB", "TRX", "LINK", "AVAX",
}

var assetNames = map[string]string{
	"BTC":  "Bitcoin",
	"ETH":  "Ethereum",
	"SOL":  "Solana",
	"USDT": "Tether",
	"XRP":  "XRP",
	"BNB":  "BNB",
	"DOGE": "Dogecoin",
	"ADA":  "Cardano",
	"SHIB": "Shiba Inu",
	"TRX":  "TRON",
	"LINK": "Chainlink",
	"AVAX": "Avalanche",
}

// ParseAssets splits a comma separated asset list, upper-casing symbols and
// dropping blanks and repeats. An empty list yields DefaultAssets.
func ParseAssets(raw string) []string {
	seen := make(map[string]bool)
	var assets []string
	for _, part := range strings.Split(raw, ",") {
		sym := strings.ToUpper(strings.TrimSpace(part))
		if sym == "" || seen[sym] {
			continue
		}
		seen[sym] = true
		assets = append(assets, sym)
	}
	if len(assets) == 0 {
		return append([]string(nil), DefaultAssets...)
	}
	return assets
}

func assetName(symbol string) string {
	if name, ok := assetNames[symbol]; ok {
		return name
	}
	return symbol
}
