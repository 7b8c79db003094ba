package service

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"cryptosim/internal/domain"
)

// PlainCredentials stores passwords as submitted and compares them exactly.
// Records written by the desktop simulator only work with this policy.
type PlainCredentials struct{}

func (PlainCredentials) Seal(password string) (string, error) {
	return password, nil
}

func (PlainCredentials) Verify(stored, password string) bool {
	return stored == password
}

// BcryptCredentials stores bcrypt hashes
type BcryptCredentials struct {
	Cost int
}

func (b BcryptCredentials) Seal(password string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func (BcryptCredentials) Verify(stored, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
}

// NewCredentialPolicy maps a PASSWORD_STORAGE value to a policy
func NewCredentialPolicy(kind string) (domain.CredentialPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", "plain":
		return PlainCredentials{}, nil
	case "bcrypt":
		return BcryptCredentials{}, nil
	default:
		return nil, fmt.Errorf("unknown password storage %q", kind)
	}
}
