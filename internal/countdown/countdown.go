package countdown

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidDeadline is returned by Parse for deadline strings that are
// neither a recognized timestamp nor the TBA sentinel. Callers render an
// explicit error state for these — never a silent zero countdown.
var ErrInvalidDeadline = errors.New("invalid deadline")

// AoE is the "anywhere on Earth" reference offset (UTC−12), used when a
// record carries no usable timezone. A deadline resolved against AoE has not
// passed until it has passed in every timezone on the planet.
var AoE = time.FixedZone("AoE", -12*60*60)

// deadlineFormats are the accepted timestamp layouts, tried in order.
// Date-only values are handled separately (see Parse).
var deadlineFormats = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
}

const dateOnlyFormat = "2006-01-02"

// Deadline is a CFP deadline resolved to a concrete instant, together with
// how the resolution went. The zero value is an invalid deadline.
//
// Deadlines are parsed exactly once, at the ingestion boundary; every other
// component consumes the resolved value.
type Deadline struct {
	// At is the resolved instant. Zero when TBA or Invalid.
	At time.Time `json:"at"`

	// TBA marks a deadline the source has not announced yet. TBA deadlines
	// render as a placeholder and never enter past/future computation.
	TBA bool `json:"tba,omitempty"`

	// Invalid marks a deadline string that did not parse. Invalid deadlines
	// render an error state and are excluded from countdown ticks and scans.
	Invalid bool `json:"invalid,omitempty"`

	// ZoneFallback is true when the record named a timezone that could not
	// be loaded and AoE was used instead. Missing timezones fall back to AoE
	// silently; only a malformed one sets this flag, so callers can warn.
	ZoneFallback bool `json:"zone_fallback,omitempty"`
}

// Known reports whether the deadline carries a usable instant.
func (d Deadline) Known() bool {
	return !d.TBA && !d.Invalid
}

// Key returns the canonical string form of the deadline instant, used to
// scope notification ledger entries to a specific deadline value.
func (d Deadline) Key() string {
	if !d.Known() {
		return ""
	}
	return d.At.UTC().Format(time.RFC3339)
}

// Parse resolves a raw deadline string against an optional IANA timezone.
//
// Accepted forms:
//   - "2006-01-02 15:04:05" and "2006-01-02T15:04:05"
//   - "2006-01-02 15:04"
//   - "2006-01-02" — date-only deadlines mean end of that day (23:59:59)
//   - "" or "TBA" (any case) — the to-be-announced sentinel
//
// Timezone resolution: an empty timezone falls back to AoE (UTC−12); a
// non-empty timezone that fails to load also falls back to AoE, but marks
// the Deadline with ZoneFallback so the caller can surface a warning.
//
// Any other raw value returns a Deadline with Invalid set alongside an
// error wrapping ErrInvalidDeadline.
func Parse(raw, timezone string) (Deadline, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "tba") {
		return Deadline{TBA: true}, nil
	}

	loc := AoE
	var fallback bool
	if timezone != "" {
		l, err := time.LoadLocation(timezone)
		if err != nil {
			fallback = true
		} else {
			loc = l
		}
	}

	for _, format := range deadlineFormats {
		if t, err := time.ParseInLocation(format, raw, loc); err == nil {
			return Deadline{At: t, ZoneFallback: fallback}, nil
		}
	}

	// Date-only deadlines are good through the end of that day.
	if t, err := time.ParseInLocation(dateOnlyFormat, raw, loc); err == nil {
		end := time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, loc)
		return Deadline{At: end, ZoneFallback: fallback}, nil
	}

	return Deadline{Invalid: true}, fmt.Errorf("%w: %q", ErrInvalidDeadline, raw)
}

// Remaining is the decomposed duration until a deadline at one instant.
// All display forms derive from one Remaining value; nothing recomputes the
// split elsewhere.
type Remaining struct {
	Days    int
	Hours   int
	Minutes int
	Seconds int

	// Total is the exact remaining duration (negative once passed).
	Total time.Duration

	// Past is true once the remaining duration has reached zero.
	Past bool
}

// Until computes the time remaining until d at the given instant.
//
// For a fixed deadline the result is monotonically non-increasing as now
// advances, and Past flips to true exactly when the duration crosses zero.
// Callers must check d.Known() first; Until on a TBA or Invalid deadline
// returns a zero Remaining marked Past to keep misuse visible.
func Until(d Deadline, now time.Time) Remaining {
	if !d.Known() {
		return Remaining{Past: true}
	}

	total := d.At.Sub(now)
	if total <= 0 {
		return Remaining{Total: total, Past: true}
	}

	r := Remaining{Total: total}
	r.Days = int(total / (24 * time.Hour))
	total -= time.Duration(r.Days) * 24 * time.Hour
	r.Hours = int(total / time.Hour)
	total -= time.Duration(r.Hours) * time.Hour
	r.Minutes = int(total / time.Minute)
	total -= time.Duration(r.Minutes) * time.Minute
	r.Seconds = int(total / time.Second)
	return r
}

// DaysUntil returns the number of whole days remaining until d, rounded
// down. This is the only days figure threshold comparison may use: a
// reminder threshold of N fires while exactly N whole days remain.
func DaysUntil(d Deadline, now time.Time) int {
	if !d.Known() {
		return 0
	}
	total := d.At.Sub(now)
	days := total / (24 * time.Hour)
	if total < 0 && total%(24*time.Hour) != 0 {
		days--
	}
	return int(days)
}

// FormatLong renders a Remaining in the verbose form: "12 days 4h 7m 9s".
func FormatLong(r Remaining) string {
	if r.Past {
		return "CFP closed"
	}
	unit := "days"
	if r.Days == 1 {
		unit = "day"
	}
	return fmt.Sprintf("%d %s %dh %dm %ds", r.Days, unit, r.Hours, r.Minutes, r.Seconds)
}

// FormatCompact renders a Remaining in the dense form: "12d 04:07:09".
func FormatCompact(r Remaining) string {
	if r.Past {
		return "closed"
	}
	return fmt.Sprintf("%dd %02d:%02d:%02d", r.Days, r.Hours, r.Minutes, r.Seconds)
}
