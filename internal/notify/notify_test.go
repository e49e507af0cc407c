package notify

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/halfdome/confwatch/internal/countdown"
	"github.com/halfdome/confwatch/internal/favorites"
	"github.com/halfdome/confwatch/internal/model"
	"github.com/halfdome/confwatch/internal/store"
)

// fakeNotifier records desktop sends and can be scripted to fail.
type fakeNotifier struct {
	perm Permission
	sent []string
	fail bool
}

func (f *fakeNotifier) Permission() Permission { return f.perm }

func (f *fakeNotifier) RequestPermission() (Permission, error) {
	if f.fail {
		f.perm = PermissionDenied
		return f.perm, ErrPermissionUnavailable
	}
	f.perm = PermissionGranted
	return f.perm, nil
}

func (f *fakeNotifier) Send(title, body string) error {
	if f.perm != PermissionGranted {
		return ErrPermissionUnavailable
	}
	if f.fail {
		return errors.New("bus gone")
	}
	f.sent = append(f.sent, title+": "+body)
	return nil
}

// harness wires a scanner over a real store and favorites manager with a
// frozen clock and recording channels.
type harness struct {
	dir      string
	store    *store.Store
	fav      *favorites.Manager
	notifier *fakeNotifier
	toasts   []string
	events   []Event
	scanner  *Scanner
	now      time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		dir:      t.TempDir(),
		notifier: &fakeNotifier{perm: PermissionGranted},
		now:      time.Date(2026, 2, 1, 9, 30, 0, 0, time.UTC),
	}
	h.store = store.Open(h.dir)
	h.fav = favorites.NewManager(h.store)
	h.scanner = h.newScanner()
	return h
}

func (h *harness) newScanner() *Scanner {
	s := NewScanner(h.store, h.fav,
		h.notifier,
		func(title, body string) { h.toasts = append(h.toasts, title+": "+body) },
		func(e Event) { h.events = append(h.events, e) },
	)
	s.now = func() time.Time { return h.now }
	return s
}

// confDueIn builds a conference whose CFP deadline is the given number of
// whole days (plus two hours of slack) ahead of the harness clock.
func (h *harness) confDueIn(t *testing.T, id string, days int) model.Conference {
	t.Helper()
	at := h.now.Add(time.Duration(days)*24*time.Hour + 2*time.Hour)
	raw := at.UTC().Format("2006-01-02 15:04:05")
	d, err := countdown.Parse(raw, "UTC")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	return model.Conference{ID: id, Name: id, CFP: d, CFPRaw: raw, Timezone: "UTC"}
}

func (h *harness) warnings() []Event {
	var out []Event
	for _, e := range h.events {
		if e.Level == LevelWarning {
			out = append(out, e)
		}
	}
	return out
}

func TestScanner_DeliversOncePerThreshold(t *testing.T) {
	h := newHarness(t)
	h.fav.Add(h.confDueIn(t, "gophercon-2026", 7))

	delivered, err := h.scanner.CheckUpcoming(context.Background())
	if err != nil {
		t.Fatalf("CheckUpcoming error: %v", err)
	}
	if delivered != 1 {
		t.Fatalf("delivered = %d, want 1", delivered)
	}
	if len(h.notifier.sent) != 1 {
		t.Errorf("desktop sends = %d, want 1", len(h.notifier.sent))
	}
	if len(h.toasts) != 1 {
		t.Errorf("toasts = %d, want 1", len(h.toasts))
	}
	if want := "gophercon-2026: CFP closes in 7 days"; h.toasts[0] != want {
		t.Errorf("toast = %q, want %q", h.toasts[0], want)
	}

	// The same scan run again delivers nothing new.
	delivered, err = h.scanner.CheckUpcoming(context.Background())
	if err != nil {
		t.Fatalf("second CheckUpcoming error: %v", err)
	}
	if delivered != 0 {
		t.Errorf("second scan delivered = %d, want 0", delivered)
	}
	if len(h.notifier.sent) != 1 || len(h.toasts) != 1 {
		t.Error("repeat scan must not re-deliver")
	}
}

func TestScanner_LedgerSurvivesRestart(t *testing.T) {
	h := newHarness(t)
	h.fav.Add(h.confDueIn(t, "rustconf-2026", 3))

	if _, err := h.scanner.CheckUpcoming(context.Background()); err != nil {
		t.Fatalf("CheckUpcoming error: %v", err)
	}
	if len(h.toasts) != 1 {
		t.Fatalf("toasts = %d, want 1", len(h.toasts))
	}

	// Reload everything from disk, same profile: nothing re-fires.
	h.store = store.Open(h.dir)
	h.fav = favorites.NewManager(h.store)
	h.scanner = h.newScanner()

	delivered, err := h.scanner.CheckUpcoming(context.Background())
	if err != nil {
		t.Fatalf("CheckUpcoming after restart error: %v", err)
	}
	if delivered != 0 {
		t.Errorf("delivered after restart = %d, want 0", delivered)
	}
	if len(h.toasts) != 1 {
		t.Errorf("toasts after restart = %d, want still 1", len(h.toasts))
	}
}

func TestScanner_ExactDayEqualityOnly(t *testing.T) {
	tests := []struct {
		name string
		days int
		want int
	}{
		{"eight days out", 8, 0},
		{"exactly seven", 7, 1},
		{"six days out", 6, 0},
		{"exactly one", 1, 1},
		{"exactly fourteen", 14, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.fav.Add(h.confDueIn(t, "conf", tt.days))

			delivered, err := h.scanner.CheckUpcoming(context.Background())
			if err != nil {
				t.Fatalf("CheckUpcoming error: %v", err)
			}
			if delivered != tt.want {
				t.Errorf("delivered = %d, want %d", delivered, tt.want)
			}
		})
	}
}

func TestScanner_SkipsUnknownAndPassedDeadlines(t *testing.T) {
	h := newHarness(t)

	past, err := countdown.Parse(h.now.Add(-48*time.Hour).UTC().Format("2006-01-02 15:04:05"), "UTC")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	h.fav.Add(model.Conference{ID: "tba-conf", Name: "tba-conf", CFP: countdown.Deadline{TBA: true}})
	h.fav.Add(model.Conference{ID: "broken-conf", Name: "broken-conf", CFP: countdown.Deadline{Invalid: true}})
	h.fav.Add(model.Conference{ID: "closed-conf", Name: "closed-conf", CFP: past})

	delivered, err := h.scanner.CheckUpcoming(context.Background())
	if err != nil {
		t.Fatalf("CheckUpcoming error: %v", err)
	}
	if delivered != 0 {
		t.Errorf("delivered = %d, want 0", delivered)
	}
	if len(h.toasts) != 0 {
		t.Errorf("toasts = %d, want 0", len(h.toasts))
	}
}

func TestScanner_DisabledSettingsScanNothing(t *testing.T) {
	h := newHarness(t)
	h.fav.Add(h.confDueIn(t, "conf", 7))

	if _, err := SaveSettings(h.store, Settings{Enabled: false, Days: DefaultDays}); err != nil {
		t.Fatalf("SaveSettings error: %v", err)
	}

	delivered, err := h.scanner.CheckUpcoming(context.Background())
	if err != nil {
		t.Fatalf("CheckUpcoming error: %v", err)
	}
	if delivered != 0 || len(h.toasts) != 0 {
		t.Error("disabled settings must suppress all delivery")
	}
}

func TestScanner_WithoutPermissionFallsBackToToast(t *testing.T) {
	for _, perm := range []Permission{PermissionDefault, PermissionDenied} {
		t.Run(perm.String(), func(t *testing.T) {
			h := newHarness(t)
			h.notifier.perm = perm
			h.fav.Add(h.confDueIn(t, "conf", 7))

			delivered, err := h.scanner.CheckUpcoming(context.Background())
			if err != nil {
				t.Fatalf("CheckUpcoming error: %v", err)
			}
			if delivered != 1 {
				t.Fatalf("delivered = %d, want 1", delivered)
			}
			if len(h.notifier.sent) != 0 {
				t.Error("desktop channel must stay silent without permission")
			}
			if len(h.toasts) != 1 {
				t.Errorf("toasts = %d, want 1", len(h.toasts))
			}
		})
	}
}

func TestScanner_DesktopFailureStillDeliversToast(t *testing.T) {
	h := newHarness(t)
	h.notifier.fail = true
	h.fav.Add(h.confDueIn(t, "conf", 7))

	delivered, err := h.scanner.CheckUpcoming(context.Background())
	if err != nil {
		t.Fatalf("CheckUpcoming error: %v", err)
	}
	if delivered != 1 {
		t.Fatalf("delivered = %d, want 1", delivered)
	}
	if len(h.toasts) != 1 {
		t.Errorf("toasts = %d, want 1", len(h.toasts))
	}
	if len(h.warnings()) == 0 {
		t.Error("a failed desktop send should surface a warning event")
	}

	// The failed delivery still counts as sent; no retry next scan.
	delivered, _ = h.scanner.CheckUpcoming(context.Background())
	if delivered != 0 {
		t.Errorf("delivered on rescan = %d, want 0", delivered)
	}
}

func TestScanner_DeadlineChangeRearmsThresholds(t *testing.T) {
	h := newHarness(t)
	conf := h.confDueIn(t, "conf", 7)
	h.fav.Add(conf)

	if _, err := h.scanner.CheckUpcoming(context.Background()); err != nil {
		t.Fatalf("CheckUpcoming error: %v", err)
	}
	if len(h.toasts) != 1 {
		t.Fatalf("toasts = %d, want 1", len(h.toasts))
	}

	// The organizers move the deadline; it is again exactly 7 days out a
	// week later.
	h.now = h.now.Add(7 * 24 * time.Hour)
	moved := h.confDueIn(t, "conf", 7)
	h.fav.Add(moved)

	delivered, err := h.scanner.CheckUpcoming(context.Background())
	if err != nil {
		t.Fatalf("CheckUpcoming error: %v", err)
	}
	if delivered != 1 {
		t.Errorf("delivered = %d, want 1 for the new deadline value", delivered)
	}

	// Unchanged deadline stays sent across an unsave/save cycle.
	h.fav.Remove("conf")
	h.fav.Add(moved)
	delivered, _ = h.scanner.CheckUpcoming(context.Background())
	if delivered != 0 {
		t.Errorf("delivered = %d, want 0 after unsave/save with same deadline", delivered)
	}
}

func TestScanner_GuardCollapsesOverlappingScans(t *testing.T) {
	h := newHarness(t)
	h.fav.Add(h.confDueIn(t, "conf", 7))

	h.scanner.scanning.Lock()
	delivered, err := h.scanner.CheckUpcoming(context.Background())
	h.scanner.scanning.Unlock()

	if err != nil {
		t.Fatalf("CheckUpcoming error: %v", err)
	}
	if delivered != 0 {
		t.Errorf("delivered = %d, want 0 while another scan runs", delivered)
	}
	if len(h.toasts) != 0 {
		t.Error("no delivery may happen while the guard is held")
	}
}

func TestScanner_CancelledContextStopsScan(t *testing.T) {
	h := newHarness(t)
	h.fav.Add(h.confDueIn(t, "conf", 7))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	delivered, err := h.scanner.CheckUpcoming(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if delivered != 0 {
		t.Errorf("delivered = %d, want 0", delivered)
	}
}

func TestScanner_QuickCheckSharesLedger(t *testing.T) {
	h := newHarness(t)
	conf := h.confDueIn(t, "conf", 7)
	h.fav.Add(conf)

	if _, err := h.scanner.CheckUpcoming(context.Background()); err != nil {
		t.Fatalf("CheckUpcoming error: %v", err)
	}

	// The quick path sees the full scan's ledger entry.
	delivered, err := h.scanner.CheckListed(context.Background(), []model.Conference{conf})
	if err != nil {
		t.Fatalf("CheckListed error: %v", err)
	}
	if delivered != 0 {
		t.Errorf("quick check delivered = %d, want 0 for an already-sent key", delivered)
	}
}

func TestScanner_QuickCheckThrottles(t *testing.T) {
	h := newHarness(t)
	first := h.confDueIn(t, "first", 7)
	second := h.confDueIn(t, "second", 3)

	delivered, err := h.scanner.CheckListed(context.Background(), []model.Conference{first})
	if err != nil {
		t.Fatalf("CheckListed error: %v", err)
	}
	if delivered != 1 {
		t.Fatalf("first quick check delivered = %d, want 1", delivered)
	}

	// Within the interval the quick path is a no-op, even for new marks.
	h.now = h.now.Add(10 * time.Minute)
	delivered, err = h.scanner.CheckListed(context.Background(), []model.Conference{second})
	if err != nil {
		t.Fatalf("throttled CheckListed error: %v", err)
	}
	if delivered != 0 {
		t.Errorf("throttled quick check delivered = %d, want 0", delivered)
	}
	if LoadLedger(h.store).Len() != 1 {
		t.Error("throttled quick check must not touch the ledger")
	}

	// Past the interval it runs again.
	h.now = h.now.Add(QuickCheckInterval)
	delivered, err = h.scanner.CheckListed(context.Background(), []model.Conference{second})
	if err != nil {
		t.Fatalf("CheckListed after interval error: %v", err)
	}
	if delivered != 1 {
		t.Errorf("quick check after interval delivered = %d, want 1", delivered)
	}
}

func TestSettings_Normalize(t *testing.T) {
	tests := []struct {
		name string
		in   []int
		want []int
	}{
		{"sorted descending", []int{1, 7, 3}, []int{7, 3, 1}},
		{"duplicates collapsed", []int{7, 7, 3}, []int{7, 3}},
		{"non-positive dropped", []int{-2, 0, 5}, []int{5}},
		{"empty stays empty", nil, []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Settings{Enabled: true, Days: tt.in}.Normalize()
			if !reflect.DeepEqual(got.Days, tt.want) {
				t.Errorf("Normalize().Days = %v, want %v", got.Days, tt.want)
			}
		})
	}
}

func TestSettings_LoadDefaultsWhenMissing(t *testing.T) {
	st := store.Open(t.TempDir())

	s := LoadSettings(st)
	if !s.Enabled {
		t.Error("default settings should be enabled")
	}
	if !reflect.DeepEqual(s.Days, DefaultDays) {
		t.Errorf("Days = %v, want %v", s.Days, DefaultDays)
	}
}

func TestSettings_SaveNormalizesAndRoundTrips(t *testing.T) {
	st := store.Open(t.TempDir())

	saved, err := SaveSettings(st, Settings{Enabled: true, Days: []int{3, 30, 3}})
	if err != nil {
		t.Fatalf("SaveSettings error: %v", err)
	}
	if want := []int{30, 3}; !reflect.DeepEqual(saved.Days, want) {
		t.Errorf("saved.Days = %v, want %v", saved.Days, want)
	}

	loaded := LoadSettings(st)
	if !reflect.DeepEqual(loaded, saved) {
		t.Errorf("LoadSettings = %+v, want %+v", loaded, saved)
	}
}

func TestLedger_Persistence(t *testing.T) {
	dir := t.TempDir()
	st := store.Open(dir)
	at := time.Date(2026, 2, 1, 9, 30, 0, 0, time.UTC)

	l := LoadLedger(st)
	if l.Sent("conf", 7, "2026-02-08T09:30:00Z") {
		t.Error("fresh ledger should have no entries")
	}
	if err := l.MarkSent("conf", 7, "2026-02-08T09:30:00Z", at); err != nil {
		t.Fatalf("MarkSent error: %v", err)
	}

	reloaded := LoadLedger(store.Open(dir))
	if !reloaded.Sent("conf", 7, "2026-02-08T09:30:00Z") {
		t.Error("ledger entry should survive reload")
	}
	if reloaded.Sent("conf", 14, "2026-02-08T09:30:00Z") {
		t.Error("different threshold must be a different key")
	}
	if reloaded.Sent("conf", 7, "2026-03-01T09:30:00Z") {
		t.Error("different deadline value must be a different key")
	}
	if reloaded.Len() != 1 {
		t.Errorf("Len = %d, want 1", reloaded.Len())
	}
}

func TestPermission_WireForms(t *testing.T) {
	tests := []struct {
		perm Permission
		wire string
	}{
		{PermissionDefault, "default"},
		{PermissionGranted, "granted"},
		{PermissionDenied, "denied"},
	}

	for _, tt := range tests {
		t.Run(tt.wire, func(t *testing.T) {
			if got := tt.perm.String(); got != tt.wire {
				t.Errorf("String() = %q, want %q", got, tt.wire)
			}
			if got := ParsePermission(tt.wire); got != tt.perm {
				t.Errorf("ParsePermission(%q) = %v, want %v", tt.wire, got, tt.perm)
			}
		})
	}

	if got := ParsePermission("garbage"); got != PermissionDefault {
		t.Errorf("ParsePermission(garbage) = %v, want PermissionDefault", got)
	}
}

func TestDesktopNotifier_SendRequiresGrant(t *testing.T) {
	n := NewDesktopNotifier(PermissionDefault)
	if err := n.Send("t", "b"); !errors.Is(err, ErrPermissionUnavailable) {
		t.Errorf("Send error = %v, want ErrPermissionUnavailable", err)
	}

	n = NewDesktopNotifier(PermissionDenied)
	if err := n.Send("t", "b"); !errors.Is(err, ErrPermissionUnavailable) {
		t.Errorf("Send error = %v, want ErrPermissionUnavailable", err)
	}

	if NewDesktopNotifier(PermissionGranted).Permission() != PermissionGranted {
		t.Error("Permission() should echo the constructed state")
	}
}

func TestScanner_ReminderMessageForms(t *testing.T) {
	h := newHarness(t)
	h.fav.Add(h.confDueIn(t, "oneday", 1))

	if _, err := h.scanner.CheckUpcoming(context.Background()); err != nil {
		t.Fatalf("CheckUpcoming error: %v", err)
	}
	if len(h.toasts) != 1 {
		t.Fatalf("toasts = %d, want 1", len(h.toasts))
	}
	if want := "oneday: CFP closes in 1 day"; h.toasts[0] != want {
		t.Errorf("toast = %q, want %q", h.toasts[0], want)
	}
}

func TestWatcher_RejectsBadScheduleUpfront(t *testing.T) {
	h := newHarness(t)
	w := NewWatcher(h.scanner, nil)

	err := w.Run(context.Background(), "every now and then")
	if err == nil {
		t.Fatal("Run should reject an invalid schedule before scanning")
	}
	if len(h.toasts) != 0 {
		t.Error("nothing may be delivered under an invalid schedule")
	}
}

func TestWatcher_RunsInitialScanAndStopsOnCancel(t *testing.T) {
	h := newHarness(t)
	h.fav.Add(h.confDueIn(t, "conf", 7))

	toasts := make(chan string, 8)
	scanner := NewScanner(h.store, h.fav, h.notifier, func(title, body string) { toasts <- title }, nil)
	scanner.now = func() time.Time { return h.now }
	w := NewWatcher(scanner, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, "@hourly") }()

	// The initial scan delivers before the first cron tick.
	select {
	case <-toasts:
	case <-time.After(5 * time.Second):
		t.Fatal("initial scan never delivered")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after cancellation")
	}
}

func TestParseDays(t *testing.T) {
	tests := []struct {
		raw     string
		want    []int
		wantErr bool
	}{
		{"14, 7, 3, 1", []int{14, 7, 3, 1}, false},
		{"7", []int{7}, false},
		{" 3 ,1 ", []int{3, 1}, false},
		{"0", nil, true},
		{"-2", nil, true},
		{"soon", nil, true},
		{"", nil, true},
	}

	for _, tt := range tests {
		got, err := ParseDays(tt.raw)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseDays(%q) should fail", tt.raw)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseDays(%q) error: %v", tt.raw, err)
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParseDays(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestFormatDays(t *testing.T) {
	if got := FormatDays([]int{14, 7, 3, 1}); got != "14, 7, 3, 1" {
		t.Errorf("FormatDays = %q, want 14, 7, 3, 1", got)
	}
	if got := FormatDays(nil); got != "" {
		t.Errorf("FormatDays(nil) = %q, want empty", got)
	}
}
