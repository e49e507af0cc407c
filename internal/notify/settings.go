package notify

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/halfdome/confwatch/internal/store"
)

// settingsKey is the persistence key holding the reminder settings.
const settingsKey = "notification-settings"

// DefaultDays are the reminder thresholds used until the user edits them.
var DefaultDays = []int{14, 7, 3, 1}

// Settings controls when reminders fire. Edits replace the whole value;
// there are no partial updates.
type Settings struct {
	// Enabled gates all reminder delivery. Off means scans do nothing.
	Enabled bool `json:"enabled"`

	// Days are the whole-day thresholds to remind at. A reminder fires
	// while exactly that many whole days remain before the deadline.
	Days []int `json:"days"`
}

// DefaultSettings returns the settings used when nothing is persisted yet.
func DefaultSettings() Settings {
	return Settings{Enabled: true, Days: append([]int(nil), DefaultDays...)}
}

// Normalize returns a copy with the thresholds cleaned up: non-positive
// values dropped, duplicates collapsed, sorted largest first. Empty
// thresholds stay empty; an all-off value is legitimate.
func (s Settings) Normalize() Settings {
	seen := make(map[int]bool, len(s.Days))
	days := make([]int, 0, len(s.Days))
	for _, d := range s.Days {
		if d <= 0 || seen[d] {
			continue
		}
		seen[d] = true
		days = append(days, d)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(days)))

	return Settings{Enabled: s.Enabled, Days: days}
}

// LoadSettings reads the persisted reminder settings, falling back to
// defaults when nothing usable is stored. Scans call this afresh every run
// so edits apply without a restart.
func LoadSettings(st *store.Store) Settings {
	var s Settings
	if !st.Get(settingsKey, &s) {
		return DefaultSettings()
	}
	return s.Normalize()
}

// SaveSettings normalizes and persists the reminder settings, returning the
// value actually stored. The error is the store's; callers surface it only
// on this explicit save path.
func SaveSettings(st *store.Store, s Settings) (Settings, error) {
	s = s.Normalize()
	return s, st.Set(settingsKey, s)
}

// ParseDays parses a comma-separated threshold list ("14, 7, 3, 1") as
// entered in the settings UI or on the command line. Every field must be a
// positive whole number of days and at least one is required.
func ParseDays(raw string) ([]int, error) {
	var days []int
	for _, field := range strings.Split(raw, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		n, err := strconv.Atoi(field)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("thresholds must be positive whole days, got %q", field)
		}
		days = append(days, n)
	}
	if len(days) == 0 {
		return nil, fmt.Errorf("at least one threshold is required")
	}
	return days, nil
}

// FormatDays renders thresholds in the form ParseDays accepts.
func FormatDays(days []int) string {
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, ", ")
}
