package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptosim/internal/domain"
)

func newTestAccount(t *testing.T, username string) *domain.Account {
	t.Helper()
	acct, err := domain.NewAccount(username, "secret", time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return acct
}

func newFileRepo(t *testing.T) *FileAccountRepository {
	t.Helper()
	repo, err := NewFileAccountRepository(filepath.Join(t.TempDir(), "accounts"), nil)
	require.NoError(t, err)
	return repo
}

func TestFileAccountRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := newFileRepo(t)

	acct := newTestAccount(t, "alice")
	require.NoError(t, acct.Deposit(250))
	require.NoError(t, repo.Create(ctx, acct))

	got, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, acct.ID, got.ID)
	assert.Equal(t, 250.0, got.BalanceUSD)
	assert.Equal(t, "secret", got.Password)
	require.Equal(t, 1, got.Activity.Len())
	assert.Equal(t, "Deposited $250.00 USD", got.Activity.Entries()[0].Description)
	assert.Equal(t, domain.ActivityCredit, got.Activity.Entries()[0].Kind)
}

func TestFileAccountRepository_CreateDuplicate(t *testing.T) {
	ctx := context.Background()
	repo := newFileRepo(t)

	require.NoError(t, repo.Create(ctx, newTestAccount(t, "bob")))
	err := repo.Create(ctx, newTestAccount(t, "bob"))
	assert.ErrorIs(t, err, domain.ErrDuplicateUsername)
}

func TestFileAccountRepository_GetMissing(t *testing.T) {
	_, err := newFileRepo(t).GetByUsername(context.Background(), "nobody")
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestFileAccountRepository_SaveRequiresExisting(t *testing.T) {
	ctx := context.Background()
	repo := newFileRepo(t)

	err := repo.Save(ctx, newTestAccount(t, "ghost"))
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)

	acct := newTestAccount(t, "carol")
	require.NoError(t, repo.Create(ctx, acct))
	acct.BalanceUSD = 10
	acct.Holdings["BTC"] = 0.5
	require.NoError(t, repo.Save(ctx, acct))

	got, err := repo.GetByUsername(ctx, "carol")
	require.NoError(t, err)
	assert.Equal(t, 10.0, got.BalanceUSD)
	assert.Equal(t, map[string]float64{"BTC": 0.5}, got.Holdings)
}

func TestFileAccountRepository_ZeroHoldingsNotStored(t *testing.T) {
	ctx := context.Background()
	repo := newFileRepo(t)

	acct := newTestAccount(t, "dan")
	acct.Holdings["ETH"] = 0
	require.NoError(t, repo.Create(ctx, acct))

	got, err := repo.GetByUsername(ctx, "dan")
	require.NoError(t, err)
	assert.Empty(t, got.Holdings)
}

func TestFileAccountRepository_UsernameIsEscaped(t *testing.T) {
	ctx := context.Background()
	repo := newFileRepo(t)

	acct := newTestAccount(t, "../evil/name")
	require.NoError(t, repo.Create(ctx, acct))

	entries, err := os.ReadDir(repo.Dir())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.False(t, entries[0].IsDir())

	got, err := repo.GetByUsername(ctx, "../evil/name")
	require.NoError(t, err)
	assert.Equal(t, "../evil/name", got.Username)
}

func TestFileAccountRepository_GetAllIncludesDotUsernames(t *testing.T) {
	ctx := context.Background()
	repo := newFileRepo(t)

	require.NoError(t, repo.Create(ctx, newTestAccount(t, ".alice")))
	require.NoError(t, repo.Create(ctx, newTestAccount(t, "bob")))
	require.NoError(t, os.WriteFile(filepath.Join(repo.Dir(), ".bob.json.tmp-42"), []byte("{}"), 0o644))

	accounts, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, ".alice", accounts[0].Username)
	assert.Equal(t, "bob", accounts[1].Username)
}

func TestFileAccountRepository_GetAllSkipsCorrupt(t *testing.T) {
	ctx := context.Background()
	repo := newFileRepo(t)

	require.NoError(t, repo.Create(ctx, newTestAccount(t, "zoe")))
	require.NoError(t, repo.Create(ctx, newTestAccount(t, "amy")))
	require.NoError(t, os.WriteFile(filepath.Join(repo.Dir(), "broken.json"), []byte("{not json"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(repo.Dir(), "empty.json"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(repo.Dir(), "notes.txt"), []byte("hi"), 0o644))

	accounts, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "amy", accounts[0].Username)
	assert.Equal(t, "zoe", accounts[1].Username)
}

func TestFileAccountRepository_DeleteAll(t *testing.T) {
	ctx := context.Background()
	repo := newFileRepo(t)

	require.NoError(t, repo.Create(ctx, newTestAccount(t, "a")))
	require.NoError(t, repo.Create(ctx, newTestAccount(t, "b")))
	require.NoError(t, os.WriteFile(filepath.Join(repo.Dir(), ".a.json.tmp-123"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(repo.Dir(), "keep.txt"), []byte("x"), 0o644))

	require.NoError(t, repo.DeleteAll(ctx))

	accounts, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, accounts)

	entries, err := os.ReadDir(repo.Dir())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "keep.txt", entries[0].Name())

	// usernames are free again
	require.NoError(t, repo.Create(ctx, newTestAccount(t, "a")))
}

func TestFileAccountRepository_NoTempFilesLeft(t *testing.T) {
	ctx := context.Background()
	repo := newFileRepo(t)

	acct := newTestAccount(t, "eve")
	require.NoError(t, repo.Create(ctx, acct))
	for i := 0; i < 5; i++ {
		require.NoError(t, acct.Deposit(1))
		require.NoError(t, repo.Save(ctx, acct))
	}

	entries, err := os.ReadDir(repo.Dir())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "eve.json", entries[0].Name())
}
