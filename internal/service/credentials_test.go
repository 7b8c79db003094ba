package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPlainCredentials(t *testing.T) {
	var p PlainCredentials

	sealed, err := p.Seal("pw")
	require.NoError(t, err)
	assert.Equal(t, "pw", sealed)
	assert.True(t, p.Verify(sealed, "pw"))
	assert.False(t, p.Verify(sealed, "PW"))
	assert.False(t, p.Verify(sealed, "pw "))
}

func TestBcryptCredentials(t *testing.T) {
	b := BcryptCredentials{Cost: bcrypt.MinCost}

	sealed, err := b.Seal("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", sealed)
	assert.True(t, b.Verify(sealed, "hunter2"))
	assert.False(t, b.Verify(sealed, "hunter3"))
	assert.False(t, b.Verify("hunter2", "hunter2"))
}

func TestNewCredentialPolicy(t *testing.T) {
	p, err := NewCredentialPolicy("")
	require.NoError(t, err)
	assert.IsType(t, PlainCredentials{}, p)

	p, err = NewCredentialPolicy("BCRYPT")
	require.NoError(t, err)
	assert.IsType(t, BcryptCredentials{}, p)

	_, err = NewCredentialPolicy("rot13")
	assert.Error(t, err)
}
