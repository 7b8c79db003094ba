package repository

import (
	"context"
	"encoding/json"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"

	"cryptosim/internal/domain"
)

var accountColumns = []string{
	"id", "username", "password", "balance_usd", "holdings", "activity", "created_at", "updated_at",
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// DB is the subset of *pgxpool.Pool the repository needs
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresAccountRepository implements domain.AccountRepository on the
// accounts table. Holdings and activity are stored as JSONB so that every
// Save replaces the whole record in one statement.
type PostgresAccountRepository struct {
	db DB
}

var _ domain.AccountRepository = (*PostgresAccountRepository)(nil)

// NewPostgresAccountRepository creates a new PostgresAccountRepository
func NewPostgresAccountRepository(db DB) *PostgresAccountRepository {
	return &PostgresAccountRepository{db: db}
}

// Create inserts a new account
func (r *PostgresAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	holdings, activity, err := encodeColumns(account)
	if err != nil {
		return err
	}

	query, args, err := psql.Insert("accounts").
		Columns(accountColumns...).
		Values(account.ID, account.Username, account.Password, account.BalanceUSD,
			holdings, activity, account.CreatedAt, account.UpdatedAt).
		Suffix("ON CONFLICT (username) DO NOTHING").
		ToSql()
	if err != nil {
		return errors.Wrap(err, "build insert account")
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return errors.Wrapf(domain.ErrPersistence, "create account %s: %v", account.Username, err)
	}
	if tag.RowsAffected() == 0 {
		return errors.Wrap(domain.ErrDuplicateUsername, account.Username)
	}

	return nil
}

// GetByUsername retrieves an account by username
func (r *PostgresAccountRepository) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	query, args, err := psql.Select(accountColumns...).
		From("accounts").
		Where(sq.Eq{"username": username}).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build select account")
	}

	acct, err := scanAccount(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.Wrap(domain.ErrAccountNotFound, username)
		}
		return nil, err
	}

	return acct, nil
}

// Save replaces the stored balance, holdings and activity of an account
func (r *PostgresAccountRepository) Save(ctx context.Context, account *domain.Account) error {
	holdings, activity, err := encodeColumns(account)
	if err != nil {
		return err
	}

	query, args, err := psql.Update("accounts").
		Set("password", account.Password).
		Set("balance_usd", account.BalanceUSD).
		Set("holdings", holdings).
		Set("activity", activity).
		Set("updated_at", account.UpdatedAt).
		Where(sq.Eq{"username": account.Username}).
		ToSql()
	if err != nil {
		return errors.Wrap(err, "build update account")
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return errors.Wrapf(domain.ErrPersistence, "save account %s: %v", account.Username, err)
	}
	if tag.RowsAffected() == 0 {
		return errors.Wrap(domain.ErrAccountNotFound, account.Username)
	}

	return nil
}

// GetAll retrieves all accounts ordered by username
func (r *PostgresAccountRepository) GetAll(ctx context.Context) ([]*domain.Account, error) {
	query, args, err := psql.Select(accountColumns...).
		From("accounts").
		OrderBy("username ASC").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build select accounts")
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrapf(domain.ErrPersistence, "query accounts: %v", err)
	}
	defer rows.Close()

	var accounts []*domain.Account
	for rows.Next() {
		acct, err := scanAccount(rows)
		if err != nil {
			if errors.Is(err, domain.ErrCorruptRecord) {
				continue
			}
			return nil, err
		}
		accounts = append(accounts, acct)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(domain.ErrPersistence, "iterate accounts: %v", err)
	}

	return accounts, nil
}

// DeleteAll removes every account
func (r *PostgresAccountRepository) DeleteAll(ctx context.Context) error {
	query, args, err := psql.Delete("accounts").ToSql()
	if err != nil {
		return errors.Wrap(err, "build delete accounts")
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return errors.Wrapf(domain.ErrPersistence, "delete accounts: %v", err)
	}
	return nil
}

func encodeColumns(account *domain.Account) (holdings, activity []byte, err error) {
	rec := newAccountRecord(account)
	if holdings, err = json.Marshal(rec.Holdings); err != nil {
		return nil, nil, errors.Wrap(err, "encode holdings")
	}
	if activity, err = json.Marshal(rec.Activity); err != nil {
		return nil, nil, errors.Wrap(err, "encode activity")
	}
	return holdings, activity, nil
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var (
		rec                      accountRecord
		balance                  float64
		holdingsRaw, activityRaw []byte
	)

	err := row.Scan(
		&rec.ID,
		&rec.Username,
		&rec.Password,
		&balance,
		&holdingsRaw,
		&activityRaw,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, errors.Wrapf(domain.ErrPersistence, "scan account: %v", err)
	}
	rec.BalanceUSD = &balance

	if len(holdingsRaw) > 0 {
		if err := json.Unmarshal(holdingsRaw, &rec.Holdings); err != nil {
			return nil, errors.Wrapf(domain.ErrCorruptRecord, "%s holdings: %v", rec.Username, err)
		}
	}
	if len(activityRaw) > 0 {
		if err := json.Unmarshal(activityRaw, &rec.Activity); err != nil {
			return nil, errors.Wrapf(domain.ErrCorruptRecord, "%s activity: %v", rec.Username, err)
		}
	}

	return rec.toAccount()
}
