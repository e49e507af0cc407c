package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/halfdome/confwatch/internal/countdown"
	"github.com/halfdome/confwatch/internal/favorites"
	"github.com/halfdome/confwatch/internal/model"
	"github.com/halfdome/confwatch/internal/store"
)

// QuickCheckInterval is the minimum spacing between quick-list scans. The
// quick path exists for ad-hoc marks, not as a second full scheduler, so it
// is throttled hard.
const QuickCheckInterval = time.Hour

// quickCheckKey is the persistence key holding the last quick-scan time.
const quickCheckKey = "last-quick-check"

// ToastFunc delivers the in-app channel. The TUI backs it with its notice
// overlay; the CLI backs it with a printed line.
type ToastFunc func(title, body string)

// Scanner walks conferences against the reminder thresholds and delivers
// what is due. One Scanner serves a whole process; its internal guard
// collapses overlapping scans so the at-most-once ledger invariant holds
// even when the watch daemon and a manual rescan collide.
type Scanner struct {
	store     *store.Store
	favorites *favorites.Manager
	notifier  Notifier
	toast     ToastFunc
	onEvent   func(Event)

	now      func() time.Time
	scanning sync.Mutex
}

// NewScanner creates a Scanner over the given collaborators. notifier,
// toast and onEvent may each be nil when a caller has no use for that
// channel.
func NewScanner(st *store.Store, fav *favorites.Manager, notifier Notifier, toast ToastFunc, onEvent func(Event)) *Scanner {
	return &Scanner{
		store:     st,
		favorites: fav,
		notifier:  notifier,
		toast:     toast,
		onEvent:   onEvent,
		now:       time.Now,
	}
}

// CheckUpcoming scans every saved conference and delivers the reminders
// that are due now. It returns the number delivered.
//
// A scan already in progress makes this call a no-op; settings are read
// fresh on every run so edits apply without a restart.
func (s *Scanner) CheckUpcoming(ctx context.Context) (int, error) {
	if !s.scanning.TryLock() {
		s.event(Event{Message: "Scan already in progress, skipping", Level: LevelVerbose})
		return 0, nil
	}
	defer s.scanning.Unlock()

	settings := LoadSettings(s.store)
	if !settings.Enabled {
		s.event(Event{Message: "Reminders are disabled", Level: LevelVerbose})
		return 0, nil
	}

	saved := s.favorites.List()
	s.event(Event{Message: fmt.Sprintf("Checking %d saved conferences", len(saved)), Level: LevelVerbose})

	confs := make([]model.Conference, len(saved))
	for i, record := range saved {
		confs[i] = record.Conference
	}
	return s.scan(ctx, confs, settings)
}

// CheckListed scans caller-supplied conferences (the session's quick-list
// marks) through the same ledger and thresholds as CheckUpcoming, throttled
// to at most one run per QuickCheckInterval. Throttled calls deliver
// nothing and leave the ledger untouched.
func (s *Scanner) CheckListed(ctx context.Context, confs []model.Conference) (int, error) {
	if !s.scanning.TryLock() {
		s.event(Event{Message: "Scan already in progress, skipping", Level: LevelVerbose})
		return 0, nil
	}
	defer s.scanning.Unlock()

	settings := LoadSettings(s.store)
	if !settings.Enabled {
		s.event(Event{Message: "Reminders are disabled", Level: LevelVerbose})
		return 0, nil
	}

	now := s.now()
	var last time.Time
	if s.store.Get(quickCheckKey, &last) && now.Sub(last) < QuickCheckInterval {
		s.event(Event{Message: "Quick check ran recently, skipping", Level: LevelVerbose})
		return 0, nil
	}
	if err := s.store.Set(quickCheckKey, now); err != nil {
		s.event(Event{Message: fmt.Sprintf("Could not persist quick-check time: %v", err), Level: LevelWarning})
	}

	s.event(Event{Message: fmt.Sprintf("Quick check over %d conferences", len(confs)), Level: LevelVerbose})
	return s.scan(ctx, confs, settings)
}

// scan is the shared pass: for each conference with a live deadline, fire
// every threshold that matches today exactly and is not in the ledger yet.
// Each delivery is persisted before the pass moves on.
func (s *Scanner) scan(ctx context.Context, confs []model.Conference, settings Settings) (int, error) {
	ledger := LoadLedger(s.store)
	now := s.now()

	delivered := 0
	for _, conf := range confs {
		if err := ctx.Err(); err != nil {
			return delivered, err
		}
		if !conf.CFP.Known() || countdown.Until(conf.CFP, now).Past {
			continue
		}

		days := countdown.DaysUntil(conf.CFP, now)
		for _, threshold := range settings.Days {
			if days != threshold || ledger.Sent(conf.ID, threshold, conf.CFP.Key()) {
				continue
			}

			s.deliver(conf, threshold)
			if err := ledger.MarkSent(conf.ID, threshold, conf.CFP.Key(), now); err != nil {
				s.event(Event{Message: fmt.Sprintf("Could not persist reminder ledger: %v", err), Level: LevelWarning})
			}
			delivered++
		}
	}

	if delivered > 0 {
		s.event(Event{Message: fmt.Sprintf("Delivered %d reminder(s)", delivered), Level: LevelSuccess})
	} else {
		s.event(Event{Message: "No reminders due", Level: LevelVerbose})
	}
	return delivered, nil
}

// deliver pushes one reminder through both channels. Desktop delivery is
// skipped without permission and degrades to a warning on failure; the
// in-app channel always fires.
func (s *Scanner) deliver(conf model.Conference, days int) {
	title := conf.Name
	body := fmt.Sprintf("CFP closes in %d days", days)
	if days == 1 {
		body = "CFP closes in 1 day"
	}

	if s.notifier != nil && s.notifier.Permission() == PermissionGranted {
		if err := s.notifier.Send(title, body); err != nil {
			s.event(Event{Message: fmt.Sprintf("Desktop notification failed for %s: %v", conf.Name, err), Level: LevelWarning})
		}
	}
	if s.toast != nil {
		s.toast(title, body)
	}

	s.event(Event{Message: fmt.Sprintf("Reminder: %s, %s", conf.Name, body), Level: LevelInfo})
}

func (s *Scanner) event(e Event) {
	if s.onEvent != nil {
		s.onEvent(e)
	}
}
