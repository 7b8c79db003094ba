package domain

import "context"

// AccountRepository persists whole account records keyed by username.
// Implementations hand out copies; mutating a returned account has no
// effect until it is passed back to Save.
type AccountRepository interface {
	// Create stores a new account, failing with ErrDuplicateUsername if the
	// username is taken
	Create(ctx context.Context, account *Account) error

	// GetByUsername loads one account. A missing record yields
	// ErrAccountNotFound, an unreadable one ErrCorruptRecord.
	GetByUsername(ctx context.Context, username string) (*Account, error)

	// Save replaces the stored record of an existing account atomically
	Save(ctx context.Context, account *Account) error

	// GetAll loads every readable account, ordered by username.
	// Corrupt records are skipped.
	GetAll(ctx context.Context) ([]*Account, error)

	// DeleteAll discards every account
	DeleteAll(ctx context.Context) error
}
