package notify

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
)

// Watcher re-runs the reminder scan on a cron schedule, for daemon use.
// The scanner's own guard already collapses overlaps; the cron chain skips
// a tick outright when the previous one is still running.
type Watcher struct {
	scanner *Scanner
	onEvent func(Event)
	cron    *cron.Cron
}

// NewWatcher creates a Watcher around an existing scanner.
func NewWatcher(scanner *Scanner, onEvent func(Event)) *Watcher {
	return &Watcher{
		scanner: scanner,
		onEvent: onEvent,
		cron: cron.New(
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
	}
}

// Run scans once immediately, then on every tick of the schedule until ctx
// is cancelled. The schedule accepts five-field cron expressions and
// descriptors like "@hourly"; an invalid schedule fails here, before
// anything runs.
func (w *Watcher) Run(ctx context.Context, schedule string) error {
	_, err := w.cron.AddFunc(schedule, func() {
		if _, err := w.scanner.CheckUpcoming(ctx); err != nil {
			w.event(Event{Message: fmt.Sprintf("Scheduled scan aborted: %v", err), Level: LevelWarning})
		}
	})
	if err != nil {
		return fmt.Errorf("watch schedule %q: %w", schedule, err)
	}

	w.event(Event{Message: fmt.Sprintf("Watching saved conferences on schedule %q", schedule), Level: LevelInfo})

	if _, err := w.scanner.CheckUpcoming(ctx); err != nil {
		return err
	}

	w.cron.Start()
	if entries := w.cron.Entries(); len(entries) > 0 {
		w.event(Event{Message: fmt.Sprintf("Next scan at %s", entries[0].Next.Format("2006-01-02 15:04:05")), Level: LevelVerbose})
	}

	<-ctx.Done()

	stop := w.cron.Stop()
	<-stop.Done()
	w.event(Event{Message: "Watch stopped", Level: LevelInfo})
	return nil
}

func (w *Watcher) event(e Event) {
	if w.onEvent != nil {
		w.onEvent(e)
	}
}
