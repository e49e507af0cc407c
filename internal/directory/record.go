package directory

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/halfdome/confwatch/internal/countdown"
	"github.com/halfdome/confwatch/internal/model"
)

// record is the wire shape of one conference entry in the site's YAML data.
// Unknown fields are ignored; everything except the name is optional.
type record struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	URL         string   `yaml:"url"`
	CFPURL      string   `yaml:"cfpUrl"`
	CFPDeadline string   `yaml:"cfpDeadline"`
	Timezone    string   `yaml:"timezone"`
	StartDate   flexDate `yaml:"startDate"`
	EndDate     flexDate `yaml:"endDate"`
	City        string   `yaml:"city"`
	Country     string   `yaml:"country"`
	Online      bool     `yaml:"online"`
}

// flexDate is a date that tolerates the formats seen in the wild data.
type flexDate struct {
	time.Time
}

// UnmarshalYAML parses the site's date shapes: "2026-09-12" plus a few
// spelled-out variants. An empty value stays the zero time.
func (d *flexDate) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		d.Time = time.Time{}
		return nil
	}

	formats := []string{
		"2006-01-02",      // "2026-09-12"
		time.RFC3339,      // "2026-09-12T00:00:00Z"
		"Jan 2, 2006",     // "Sep 12, 2026"
		"2 January 2006",  // "12 September 2026"
	}
	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			d.Time = t
			return nil
		}
	}

	return fmt.Errorf("unable to parse date: %s", s)
}

// toConference converts a wire record into a model conference, resolving the
// deadline once and collecting warnings for everything that had to degrade.
func (r record) toConference() (model.Conference, []string) {
	var warnings []string
	name := strings.TrimSpace(r.Name)

	deadline, err := countdown.Parse(r.CFPDeadline, r.Timezone)
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("%s: invalid CFP deadline %q", name, r.CFPDeadline))
	}
	if deadline.ZoneFallback {
		warnings = append(warnings, fmt.Sprintf("%s: unknown timezone %q, deadline treated as anywhere on Earth", name, r.Timezone))
	}

	conf := model.Conference{
		ID:       strings.TrimSpace(r.ID),
		Name:     name,
		URL:      r.URL,
		CFPURL:   r.CFPURL,
		CFP:      deadline,
		CFPRaw:   r.CFPDeadline,
		Timezone: r.Timezone,
		Start:    r.StartDate.Time,
		End:      r.EndDate.Time,
		Place:    r.place(),
	}
	if conf.ID == "" {
		conf.ID = model.DeriveID(name, conf.Year())
	}
	return conf, warnings
}

// place renders the location fields into one display string.
func (r record) place() string {
	switch {
	case r.City != "" && r.Country != "":
		return r.City + ", " + r.Country
	case r.City != "":
		return r.City
	case r.Country != "":
		return r.Country
	case r.Online:
		return "Online"
	default:
		return ""
	}
}
