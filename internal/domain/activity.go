package domain

// MaxActivityEntries is the number of entries an account keeps.
const MaxActivityEntries = 5

// ActivityKind tells whether an event increased or decreased the account.
type ActivityKind string

// ActivityKind constants
const (
	ActivityCredit ActivityKind = "credit"
	ActivityDebit  ActivityKind = "debit"
)

// Valid reports whether k is a known kind.
func (k ActivityKind) Valid() bool {
	return k == ActivityCredit || k == ActivityDebit
}

// ActivityEntry is one human-readable account event.
type ActivityEntry struct {
	Description string       `json:"description"`
	Kind        ActivityKind `json:"kind"`
}

// ActivityLog is a bounded, most-recent-first event history.
// The zero value is an empty log.
type ActivityLog struct {
	entries []ActivityEntry
}

// NewActivityLog builds a log from entries already ordered most-recent-first.
// Entries past MaxActivityEntries are dropped.
func NewActivityLog(entries ...ActivityEntry) ActivityLog {
	if len(entries) > MaxActivityEntries {
		entries = entries[:MaxActivityEntries]
	}
	out := make([]ActivityEntry, len(entries))
	copy(out, entries)
	return ActivityLog{entries: out}
}

// Record inserts entry at the front, evicting the oldest entry when full.
func (l *ActivityLog) Record(entry ActivityEntry) {
	next := make([]ActivityEntry, 0, MaxActivityEntries)
	next = append(next, entry)
	next = append(next, l.entries...)
	if len(next) > MaxActivityEntries {
		next = next[:MaxActivityEntries]
	}
	l.entries = next
}

// Entries returns a copy of the log, most recent first.
func (l ActivityLog) Entries() []ActivityEntry {
	out := make([]ActivityEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of stored entries.
func (l ActivityLog) Len() int {
	return len(l.entries)
}
