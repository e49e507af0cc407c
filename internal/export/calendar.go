package export

import (
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/halfdome/confwatch/internal/model"
)

// CalendarWriter generates iCalendar documents from conferences.
//
// CalendarWriter takes a list of conferences and produces an .ics payload
// with one all-day event per known CFP deadline. The output is a string
// ready to be written to a file.
//
// Example:
//
//	writer := NewCalendarWriter(true)
//	content := writer.CreateCalendar(confs, time.Now())
//	os.WriteFile("deadlines.ics", []byte(content), 0644)
//
//	// Result (abridged):
//	// BEGIN:VEVENT
//	// UID:cfp-gophercon-2026@confwatch
//	// DTSTART;VALUE=DATE:20260215
//	// SUMMARY:GopherCon CFP deadline
//	// END:VEVENT
type CalendarWriter struct {
	includeDates bool // also emit one event per conference date range
}

// NewCalendarWriter creates a new CalendarWriter.
//
// Parameters:
//   - includeDates: whether to emit an additional all-day event spanning
//     each conference's start and end dates (skipped for conferences
//     without a known start date)
func NewCalendarWriter(includeDates bool) *CalendarWriter {
	return &CalendarWriter{
		includeDates: includeDates,
	}
}

// CreateCalendar builds the iCalendar document for the given conferences.
//
// Conferences whose CFP deadline is TBA or invalid contribute no deadline
// event. Events appear in input order with UIDs derived from conference
// IDs, and every DTSTAMP uses the given instant, so a fixed input produces
// byte-identical output.
//
// Example:
//
//	content := writer.CreateCalendar(favorites, time.Now())
//	err := os.WriteFile("/home/me/deadlines.ics", []byte(content), 0644)
func (w *CalendarWriter) CreateCalendar(confs []model.Conference, now time.Time) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//confwatch//calendar export//EN")

	stamp := now.UTC()
	for _, conf := range confs {
		if conf.CFP.Known() {
			w.addDeadlineEvent(cal, conf, stamp)
		}
		if w.includeDates && conf.HasDates() {
			w.addDatesEvent(cal, conf, stamp)
		}
	}

	return cal.Serialize()
}

// addDeadlineEvent emits the all-day event marking a CFP deadline. The
// event lands on the deadline's calendar day in its resolved timezone and
// is transparent so it never blocks free/busy time.
func (w *CalendarWriter) addDeadlineEvent(cal *ics.Calendar, conf model.Conference, stamp time.Time) {
	event := cal.AddEvent(fmt.Sprintf("cfp-%s@confwatch", conf.ID))
	event.SetDtStampTime(stamp)

	day := dayOf(conf.CFP.At)
	event.SetAllDayStartAt(day)
	event.SetAllDayEndAt(day.AddDate(0, 0, 1))

	event.SetSummary(fmt.Sprintf("%s CFP deadline", conf.Name))
	event.SetTimeTransparency(ics.TransparencyTransparent)

	if conf.Place != "" {
		event.SetLocation(conf.Place)
	}
	if url := linkFor(conf); url != "" {
		event.SetURL(url)
	}
	if conf.CFPRaw != "" {
		event.SetDescription(fmt.Sprintf("Call for papers closes %s", conf.CFPRaw))
	}
}

// addDatesEvent emits the all-day event spanning the conference itself.
func (w *CalendarWriter) addDatesEvent(cal *ics.Calendar, conf model.Conference, stamp time.Time) {
	event := cal.AddEvent(fmt.Sprintf("conf-%s@confwatch", conf.ID))
	event.SetDtStampTime(stamp)

	start := dayOf(conf.Start)
	end := conf.End
	if end.IsZero() {
		end = conf.Start
	}
	// DTEND is exclusive, so a one-day conference ends the following day.
	event.SetAllDayStartAt(start)
	event.SetAllDayEndAt(dayOf(end).AddDate(0, 0, 1))

	event.SetSummary(conf.Name)
	if conf.Place != "" {
		event.SetLocation(conf.Place)
	}
	if conf.URL != "" {
		event.SetURL(conf.URL)
	}
}

// linkFor picks the most useful link for a deadline event: the CFP page
// when known, the conference home page otherwise.
func linkFor(conf model.Conference) string {
	if conf.CFPURL != "" {
		return conf.CFPURL
	}
	return conf.URL
}

// dayOf strips a timestamp down to its calendar day in its own location.
func dayOf(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
