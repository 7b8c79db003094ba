package domain

import "context"

// QuoteProvider fetches the current market records from an external feed
type QuoteProvider interface {
	// Name identifies the feed in logs
	Name() string

	// FetchQuotes returns one finite batch of quotes
	FetchQuotes(ctx context.Context) ([]Quote, error)
}

// CredentialPolicy decides how passwords are stored and checked
type CredentialPolicy interface {
	// Seal turns a submitted password into its stored form
	Seal(password string) (string, error)

	// Verify reports whether password matches the stored form
	Verify(stored, password string) bool
}
