// Package export serializes conferences into an iCalendar document so CFP
// deadlines can live alongside the user's regular calendar.
//
// # Calendar Generation
//
// Use the CalendarWriter to build an .ics payload from a list of
// conferences:
//
//	writer := export.NewCalendarWriter(false)
//	content := writer.CreateCalendar(confs, time.Now())
//	os.WriteFile("deadlines.ics", []byte(content), 0644)
//
// Each conference with a known CFP deadline becomes one all-day VEVENT on
// the deadline's calendar day. TBA and invalid deadlines are skipped.
// Passing includeDates to the constructor additionally emits one event per
// conference date range.
//
// Output is deterministic: event order follows input order, UIDs derive
// from conference IDs, and the DTSTAMP comes from the caller's clock.
package export
