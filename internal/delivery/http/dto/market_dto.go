package dto

import (
	"time"

	"cryptosim/internal/domain"
)

// MarketResponse represents the market listing
type MarketResponse struct {
	Quotes    []domain.Quote `json:"quotes"`
	Count     int            `json:"count"`
	FetchedAt time.Time      `json:"fetched_at"`
}

// LeaderboardResponse represents the net worth ranking
type LeaderboardResponse struct {
	Entries []domain.RankEntry `json:"entries"`
}
