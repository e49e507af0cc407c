package notify

import (
	"fmt"
	"time"

	"github.com/halfdome/confwatch/internal/store"
)

// ledgerKey is the persistence key holding the notified-deadlines ledger.
const ledgerKey = "notified-deadlines"

// Ledger records which (conference, threshold, deadline) reminders have been
// delivered. Entries are append-only: unsaving a conference leaves its
// entries behind, so re-saving cannot replay old reminders.
//
// Keys embed the deadline instant. When a conference's deadline changes, the
// new instant forms new keys and every threshold re-arms; entries for the
// old instant remain as inert history.
type Ledger struct {
	store   *store.Store
	entries map[string]time.Time
}

// LoadLedger reads the persisted ledger. A missing or unreadable ledger
// starts empty, which at worst re-delivers a reminder rather than losing
// one.
func LoadLedger(st *store.Store) *Ledger {
	l := &Ledger{
		store:   st,
		entries: make(map[string]time.Time),
	}
	st.Get(ledgerKey, &l.entries)
	return l
}

// Sent reports whether the reminder for this conference, threshold and
// deadline instant has already been delivered.
func (l *Ledger) Sent(conferenceID string, days int, deadlineKey string) bool {
	_, ok := l.entries[entryKey(conferenceID, days, deadlineKey)]
	return ok
}

// MarkSent records a delivery and persists the ledger immediately, before
// the caller moves on to the next reminder. The in-memory entry holds even
// when persistence fails, so a session never double-delivers.
func (l *Ledger) MarkSent(conferenceID string, days int, deadlineKey string, at time.Time) error {
	l.entries[entryKey(conferenceID, days, deadlineKey)] = at
	return l.store.Set(ledgerKey, l.entries)
}

// Len returns the number of recorded deliveries.
func (l *Ledger) Len() int {
	return len(l.entries)
}

// entryKey builds the composite ledger key. The deadline key is RFC 3339
// and never contains the separator.
func entryKey(conferenceID string, days int, deadlineKey string) string {
	return fmt.Sprintf("%s|%d|%s", conferenceID, days, deadlineKey)
}
