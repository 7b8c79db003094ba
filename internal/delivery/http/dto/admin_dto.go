package dto

// ResetRequest must carry the literal confirmation word
type ResetRequest struct {
	Confirm string `json:"confirm" validate:"required,eq=RESET"`
}

// RefreshResponse reports a market refresh
type RefreshResponse struct {
	Provider string `json:"provider"`
	Quotes   int    `json:"quotes"`
}
