package repository

import (
	"encoding/json"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"cryptosim/internal/domain"
)

// accountRecord is the stored shape of an account. It also reads files
// written by the desktop simulator, which used "balance" and
// activity items of {"desc", "color"}.
type accountRecord struct {
	ID            uuid.UUID          `json:"id"`
	Username      string             `json:"username"`
	Password      string             `json:"password"`
	BalanceUSD    *float64           `json:"balance_usd,omitempty"`
	LegacyBalance *float64           `json:"balance,omitempty"`
	Holdings      map[string]float64 `json:"holdings"`
	Activity      []activityRecord   `json:"activity"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

type activityRecord struct {
	Description string `json:"description,omitempty"`
	Kind        string `json:"kind,omitempty"`
	LegacyDesc  string `json:"desc,omitempty"`
	LegacyColor string `json:"color,omitempty"`
}

// legacyNamespace seeds stable IDs for records written before accounts had one.
var legacyNamespace = uuid.MustParse("6f1c2a8e-3d4b-4c5a-9e7f-1a2b3c4d5e6f")

func newAccountRecord(a *domain.Account) accountRecord {
	balance := a.BalanceUSD
	rec := accountRecord{
		ID:         a.ID,
		Username:   a.Username,
		Password:   a.Password,
		BalanceUSD: &balance,
		Holdings:   make(map[string]float64, len(a.Holdings)),
		Activity:   make([]activityRecord, 0, a.Activity.Len()),
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
	for symbol, amount := range a.Holdings {
		if amount != 0 {
			rec.Holdings[symbol] = amount
		}
	}
	for _, e := range a.Activity.Entries() {
		rec.Activity = append(rec.Activity, activityRecord{Description: e.Description, Kind: string(e.Kind)})
	}
	return rec
}

func encodeAccount(a *domain.Account) ([]byte, error) {
	payload, err := json.MarshalIndent(newAccountRecord(a), "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "encode account record")
	}
	return payload, nil
}

func decodeAccount(payload []byte) (*domain.Account, error) {
	var rec accountRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return nil, errors.Wrapf(domain.ErrCorruptRecord, "decode account record: %v", err)
	}
	return rec.toAccount()
}

func (rec accountRecord) toAccount() (*domain.Account, error) {
	if rec.Username == "" {
		return nil, errors.Wrap(domain.ErrCorruptRecord, "missing username")
	}

	var balance float64
	switch {
	case rec.BalanceUSD != nil:
		balance = *rec.BalanceUSD
	case rec.LegacyBalance != nil:
		balance = *rec.LegacyBalance
	}
	if balance < 0 || math.IsNaN(balance) || math.IsInf(balance, 0) {
		return nil, errors.Wrapf(domain.ErrCorruptRecord, "%s: invalid balance %v", rec.Username, balance)
	}

	holdings := make(map[string]float64, len(rec.Holdings))
	for symbol, amount := range rec.Holdings {
		if amount < 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
			return nil, errors.Wrapf(domain.ErrCorruptRecord, "%s: invalid holding %s=%v", rec.Username, symbol, amount)
		}
		if amount != 0 {
			holdings[symbol] = amount
		}
	}

	entries := make([]domain.ActivityEntry, 0, len(rec.Activity))
	for _, item := range rec.Activity {
		entry, err := item.toEntry()
		if err != nil {
			return nil, errors.Wrap(err, rec.Username)
		}
		entries = append(entries, entry)
	}

	id := rec.ID
	if id == uuid.Nil {
		id = uuid.NewSHA1(legacyNamespace, []byte(rec.Username))
	}

	return &domain.Account{
		ID:         id,
		Username:   rec.Username,
		Password:   rec.Password,
		BalanceUSD: balance,
		Holdings:   holdings,
		Activity:   domain.NewActivityLog(entries...),
		CreatedAt:  rec.CreatedAt,
		UpdatedAt:  rec.UpdatedAt,
	}, nil
}

func (item activityRecord) toEntry() (domain.ActivityEntry, error) {
	desc := item.Description
	if desc == "" {
		desc = item.LegacyDesc
	}

	kind := domain.ActivityKind(item.Kind)
	if item.Kind == "" {
		switch item.LegacyColor {
		case "green":
			kind = domain.ActivityCredit
		case "red":
			kind = domain.ActivityDebit
		}
	}
	if !kind.Valid() {
		return domain.ActivityEntry{}, errors.Wrapf(domain.ErrCorruptRecord, "unknown activity kind %q", item.Kind+item.LegacyColor)
	}

	return domain.ActivityEntry{Description: desc, Kind: kind}, nil
}
