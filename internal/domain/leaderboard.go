package domain

import "sort"

// RankEntry is one row of the leaderboard.
type RankEntry struct {
	Rank            int      `json:"rank"`
	Username        string   `json:"username"`
	NetWorthUSD     float64  `json:"net_worth_usd"`
	UnpricedSymbols []string `json:"unpriced_symbols,omitempty"`
}

// Rank orders accounts by net worth against one snapshot, highest first.
// Ties are broken by username ascending. Holdings the snapshot cannot price
// count as zero and are listed in UnpricedSymbols. Neither the accounts nor
// the snapshot are modified.
func Rank(accounts []*Account, snapshot *Snapshot) []RankEntry {
	entries := make([]RankEntry, 0, len(accounts))
	for _, account := range accounts {
		if account == nil {
			continue
		}
		worth, unpriced := account.NetWorth(snapshot)
		entries = append(entries, RankEntry{
			Username:        account.Username,
			NetWorthUSD:     worth,
			UnpricedSymbols: unpriced,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].NetWorthUSD != entries[j].NetWorthUSD {
			return entries[i].NetWorthUSD > entries[j].NetWorthUSD
		}
		return entries[i].Username < entries[j].Username
	})

	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}
