package favorites

import (
	"sort"
	"sync"
	"time"

	"github.com/halfdome/confwatch/internal/model"
	"github.com/halfdome/confwatch/internal/store"
)

// storeKey is the persistence key holding the full saved-conference set.
const storeKey = "saved-conferences"

// Manager owns the user's saved conferences. It is the only writer of the
// saved-conferences record set; the reminder scanner and the exporter read
// through List.
//
// All methods are safe for concurrent use.
type Manager struct {
	store *store.Store

	mu       sync.Mutex
	saved    map[string]model.SavedConference
	onChange []func(count int)
}

// NewManager loads the persisted saved-conference set from st. A missing or
// unreadable record set starts empty.
func NewManager(st *store.Store) *Manager {
	m := &Manager{
		store: st,
		saved: make(map[string]model.SavedConference),
	}

	var records []model.SavedConference
	if st.Get(storeKey, &records) {
		for _, r := range records {
			m.saved[r.ID] = r
		}
	}
	return m
}

// OnChange registers an observer called with the new count after every
// mutation. Observers run on the mutating goroutine after the store write.
func (m *Manager) OnChange(fn func(count int)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = append(m.onChange, fn)
}

// Add saves a conference. Adding an already-saved ID refreshes the stored
// conference fields but keeps the original SavedAt stamp, so a save is
// never double-counted.
//
// The new set is persisted before observers fire; a persistence error is
// returned after the in-memory set has already been updated, so the save
// still holds for the session.
func (m *Manager) Add(c model.Conference) error {
	m.mu.Lock()
	record := model.NewSavedConference(c, time.Now())
	if prev, ok := m.saved[c.ID]; ok {
		record.SavedAt = prev.SavedAt
	}
	m.saved[c.ID] = record
	err := m.persistLocked()
	count, observers := m.snapshotObserversLocked()
	m.mu.Unlock()

	notify(observers, count)
	return err
}

// Remove unsaves a conference by ID. Removing an ID that is not saved is a
// no-op and fires no observers.
func (m *Manager) Remove(id string) error {
	m.mu.Lock()
	if _, ok := m.saved[id]; !ok {
		m.mu.Unlock()
		return nil
	}
	delete(m.saved, id)
	err := m.persistLocked()
	count, observers := m.snapshotObserversLocked()
	m.mu.Unlock()

	notify(observers, count)
	return err
}

// IsSaved reports whether the conference with the given ID is saved.
func (m *Manager) IsSaved(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.saved[id]
	return ok
}

// List returns the saved conferences sorted by ID. Callers wanting a
// different display order sort the returned slice themselves.
func (m *Manager) List() []model.SavedConference {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listLocked()
}

// Count returns the number of saved conferences.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.saved)
}

func (m *Manager) listLocked() []model.SavedConference {
	records := make([]model.SavedConference, 0, len(m.saved))
	for _, r := range m.saved {
		records = append(records, r)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records
}

func (m *Manager) persistLocked() error {
	return m.store.Set(storeKey, m.listLocked())
}

func (m *Manager) snapshotObserversLocked() (int, []func(count int)) {
	observers := make([]func(count int), len(m.onChange))
	copy(observers, m.onChange)
	return len(m.saved), observers
}

// notify runs outside the manager lock so observers may call back in.
func notify(observers []func(count int), count int) {
	for _, fn := range observers {
		fn(count)
	}
}
