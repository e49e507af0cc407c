package model

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/halfdome/confwatch/internal/countdown"
)

// Conference represents a single conference-directory listing with its
// call-for-papers metadata.
//
// Conference carries everything the countdown board, the favorites list and
// the reminder scanner need:
//   - ID for identity across loads and persisted records
//   - Name, URL and Place for display
//   - CFP, the deadline resolved once at the ingestion boundary
//   - CFPRaw, the original deadline text, kept for error display
//
// The CFP deadline is parsed exactly once when the record is loaded; every
// consumer works with the resolved countdown.Deadline and never re-parses
// the raw string.
//
// Example:
//
//	conf := model.Conference{
//	    ID:     "gophercon-2026",
//	    Name:   "GopherCon",
//	    CFP:    deadline,
//	    CFPRaw: "2026-02-15",
//	    Place:  "Denver, USA",
//	}
type Conference struct {
	// ID uniquely identifies the conference within any loaded or tracked
	// collection. Opaque; derived via DeriveID when the source record
	// carries none.
	ID string `json:"id"`

	// Name is the conference name, the only field a record must have.
	Name string `json:"name"`

	// URL is the conference home page. Empty when unknown.
	URL string `json:"url,omitempty"`

	// CFPURL is the call-for-papers page. Empty when unknown.
	CFPURL string `json:"cfpUrl,omitempty"`

	// CFP is the call-for-papers deadline, resolved at ingestion. It may be
	// the TBA sentinel or carry the Invalid flag; consumers check Known.
	CFP countdown.Deadline `json:"cfp"`

	// CFPRaw is the deadline exactly as the source record spelled it,
	// used when rendering an invalid-deadline error state.
	CFPRaw string `json:"cfpRaw,omitempty"`

	// Timezone is the IANA zone the deadline was resolved against.
	// Empty means the record carried none and AoE was used.
	Timezone string `json:"timezone,omitempty"`

	// Start and End bound the conference dates. Zero when unknown.
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`

	// Place is a human-readable location, "City, Country" or "Online".
	Place string `json:"place,omitempty"`
}

// Validate reports whether the conference satisfies the record invariants:
// a non-empty ID and a non-empty name. The directory loader derives missing
// IDs before validating, so a failure here always means a record worth
// dropping.
func (c Conference) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("conference %q: name is required", c.ID)
	}
	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("conference %q: id is required", c.Name)
	}
	return nil
}

// Year returns the year the conference is most usefully filed under: the
// start date's year when known, otherwise the CFP deadline's year, otherwise
// zero.
func (c Conference) Year() int {
	if !c.Start.IsZero() {
		return c.Start.Year()
	}
	if c.CFP.Known() {
		return c.CFP.At.Year()
	}
	return 0
}

// HasDates returns true when the conference has a known start date.
func (c Conference) HasDates() bool {
	return !c.Start.IsZero()
}

// SavedConference is a Conference the user has favorited, stamped with the
// time it was saved. Records are created on save and destroyed on unsave,
// never otherwise mutated.
type SavedConference struct {
	Conference

	// SavedAt is when the user favorited the conference.
	SavedAt time.Time `json:"savedAt"`
}

// NewSavedConference wraps a conference as a favorite saved at the given
// instant.
func NewSavedConference(c Conference, now time.Time) SavedConference {
	return SavedConference{Conference: c, SavedAt: now}
}

// DeriveID builds a stable identifier for a record that arrived without one.
//
// The name is slugged (lowercased, runs of non-alphanumerics collapsed to a
// single hyphen) and the year appended when known:
//
//	DeriveID("Strange Loop", 2026) // "strange-loop-2026"
//	DeriveID("!!Con", 0)           // "con"
func DeriveID(name string, year int) string {
	slug := slugify(name)
	if year == 0 {
		return slug
	}
	return fmt.Sprintf("%s-%d", slug, year)
}

// slugify lowercases a name and collapses every run of characters outside
// [a-z0-9] into a single hyphen, trimming hyphens from both ends.
func slugify(name string) string {
	name = strings.ToLower(name)
	name = regexp.MustCompile(`[^a-z0-9]+`).ReplaceAllString(name, "-")
	return strings.Trim(name, "-")
}

// SortByDeadline orders conferences for display: known deadlines first by
// closing time, then TBA, then invalid, ties broken by name. Both the board
// and the CLI listing use this order so a conference never moves between
// surfaces.
func SortByDeadline(confs []Conference) {
	sort.SliceStable(confs, func(i, j int) bool {
		a, b := confs[i], confs[j]
		ar, br := deadlineRank(a.CFP), deadlineRank(b.CFP)
		if ar != br {
			return ar < br
		}
		if ar == 0 && !a.CFP.At.Equal(b.CFP.At) {
			return a.CFP.At.Before(b.CFP.At)
		}
		return a.Name < b.Name
	})
}

func deadlineRank(d countdown.Deadline) int {
	switch {
	case d.Known():
		return 0
	case d.TBA:
		return 1
	default:
		return 2
	}
}
