package repository

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"cryptosim/internal/domain"
)

const recordExt = ".json"

var _ domain.AccountRepository = (*FileAccountRepository)(nil)

// FileAccountRepository keeps one JSON document per account in a directory.
// Writes go to a temp file that is synced and renamed over the record, so a
// reader sees either the old or the new document, never a partial one.
type FileAccountRepository struct {
	dir    string
	logger *zap.Logger

	// mu makes Create's existence check and write one step
	mu sync.Mutex
}

// NewFileAccountRepository creates the data directory if needed.
func NewFileAccountRepository(dir string, logger *zap.Logger) (*FileAccountRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create account data dir")
	}
	return &FileAccountRepository{dir: dir, logger: logger}, nil
}

// Dir returns the data directory.
func (r *FileAccountRepository) Dir() string {
	return r.dir
}

func (r *FileAccountRepository) path(username string) string {
	return filepath.Join(r.dir, url.PathEscape(username)+recordExt)
}

// Create stores a new account.
func (r *FileAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	path := r.path(account.Username)
	if _, err := os.Stat(path); err == nil {
		return errors.Wrap(domain.ErrDuplicateUsername, account.Username)
	} else if !errors.Is(err, os.ErrNotExist) {
		return errors.Wrapf(domain.ErrPersistence, "stat %s: %v", path, err)
	}

	return r.write(path, account)
}

// GetByUsername loads one account.
func (r *FileAccountRepository) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	return r.read(r.path(username))
}

// Save replaces the record of an existing account.
func (r *FileAccountRepository) Save(ctx context.Context, account *domain.Account) error {
	path := r.path(account.Username)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return errors.Wrap(domain.ErrAccountNotFound, account.Username)
		}
		return errors.Wrapf(domain.ErrPersistence, "stat %s: %v", path, err)
	}

	return r.write(path, account)
}

// GetAll loads every readable account. Unreadable files are logged and skipped.
func (r *FileAccountRepository) GetAll(ctx context.Context) ([]*domain.Account, error) {
	names, err := r.recordFiles()
	if err != nil {
		return nil, err
	}

	accounts := make([]*domain.Account, 0, len(names))
	for _, name := range names {
		acct, err := r.read(filepath.Join(r.dir, name))
		if err != nil {
			r.logger.Warn("skipping unreadable account record", zap.String("file", name), zap.Error(err))
			continue
		}
		accounts = append(accounts, acct)
	}

	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Username < accounts[j].Username })
	return accounts, nil
}

// DeleteAll removes every account record and leftover temp file. It keeps
// going past individual failures and reports the first one.
func (r *FileAccountRepository) DeleteAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return errors.Wrapf(domain.ErrPersistence, "list %s: %v", r.dir, err)
	}

	var firstErr error
	removed := 0
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !(strings.HasSuffix(name, recordExt) || isTempFile(name)) {
			continue
		}
		if err := os.Remove(filepath.Join(r.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
			r.logger.Error("failed to delete account record", zap.String("file", name), zap.Error(err))
			if firstErr == nil {
				firstErr = errors.Wrapf(domain.ErrPersistence, "delete %s: %v", name, err)
			}
			continue
		}
		removed++
	}

	r.logger.Info("account records deleted", zap.Int("count", removed))
	return firstErr
}

func (r *FileAccountRepository) recordFiles() ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, errors.Wrapf(domain.ErrPersistence, "list %s: %v", r.dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || isTempFile(name) || !strings.HasSuffix(name, recordExt) {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

func (r *FileAccountRepository) read(path string) (*domain.Account, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, errors.Wrap(domain.ErrAccountNotFound, filepath.Base(path))
		}
		return nil, errors.Wrapf(domain.ErrPersistence, "read %s: %v", path, err)
	}
	if len(payload) == 0 {
		return nil, errors.Wrapf(domain.ErrCorruptRecord, "%s is empty", filepath.Base(path))
	}

	return decodeAccount(payload)
}

func (r *FileAccountRepository) write(path string, account *domain.Account) error {
	payload, err := encodeAccount(account)
	if err != nil {
		return errors.Wrap(domain.ErrPersistence, err.Error())
	}

	tmp, err := os.CreateTemp(r.dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.Wrapf(domain.ErrPersistence, "create temp file: %v", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		return errors.Wrapf(domain.ErrPersistence, "write temp file: %v", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Wrapf(domain.ErrPersistence, "sync temp file: %v", err)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(domain.ErrPersistence, "close temp file: %v", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return errors.Wrapf(domain.ErrPersistence, "replace %s: %v", filepath.Base(path), err)
	}

	committed = true
	return nil
}

func isTempFile(name string) bool {
	return strings.HasPrefix(name, ".") && strings.Contains(name, recordExt+".tmp-")
}
