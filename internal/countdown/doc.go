// Package countdown implements the deadline clock: parsing CFP deadline
// strings into resolved instants and computing the time remaining until them.
//
// The package is pure — it holds no state and never reads the wall clock
// itself. Callers pass "now" explicitly, which keeps every computation
// reproducible in tests.
//
// # Parsing
//
// Deadlines arrive from conference records as loosely formatted strings,
// possibly with an IANA timezone:
//
//	d, err := countdown.Parse("2026-02-15 23:59:59", "America/Denver")
//	if err != nil {
//	    // errors.Is(err, countdown.ErrInvalidDeadline)
//	}
//
// When no timezone is given the deadline is resolved against UTC−12
// ("anywhere on Earth"), the most conservative reading: the deadline is not
// considered past until it has passed everywhere on the planet.
//
// "TBA" and empty strings are a sentinel, not an error:
//
//	d, _ := countdown.Parse("TBA", "")
//	d.TBA // true — render a placeholder, skip the clock entirely
//
// # Remaining time
//
// Until decomposes the remaining duration once; both display densities are
// formatted from that single result:
//
//	r := countdown.Until(d, time.Now())
//	countdown.FormatLong(r)    // "12 days 4h 7m 9s"
//	countdown.FormatCompact(r) // "12d 04:07:09"
package countdown
