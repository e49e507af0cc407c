package tui

import (
	"time"

	"github.com/halfdome/confwatch/internal/countdown"
	"github.com/halfdome/confwatch/internal/model"
)

// tbaPlaceholder renders for deadlines the source has not announced yet.
const tbaPlaceholder = "—"

// rowBinding associates one displayed conference with its parsed deadline.
// The invalid text is computed once and reused, and the passed latch only
// ever goes forward, so a backwards clock jump never revives a closed CFP.
type rowBinding struct {
	deadline countdown.Deadline
	invalid  string // rendered as-is when non-empty, no recomputation
	passed   bool
}

// bindingSet holds the countdown state for every conference the program
// has displayed. The visible rows are re-derived on each tick; the set
// itself lives for the life of the program so latches survive filtering
// and tab switches.
type bindingSet struct {
	rows map[string]*rowBinding
}

func newBindingSet() *bindingSet {
	return &bindingSet{rows: make(map[string]*rowBinding)}
}

// bind returns the binding for a conference, creating it on first sight.
func (b *bindingSet) bind(conf model.Conference) *rowBinding {
	if rb, ok := b.rows[conf.ID]; ok {
		return rb
	}

	rb := &rowBinding{deadline: conf.CFP}
	if conf.CFP.Invalid {
		rb.invalid = "invalid deadline: " + conf.CFPRaw
	}
	b.rows[conf.ID] = rb
	return rb
}

// cell renders the live countdown text for one conference row at the given
// instant.
func (b *bindingSet) cell(conf model.Conference, now time.Time, compact bool) string {
	rb := b.bind(conf)

	if rb.invalid != "" {
		return rb.invalid
	}
	if rb.deadline.TBA {
		return tbaPlaceholder
	}

	if !rb.passed {
		r := countdown.Until(rb.deadline, now)
		if !r.Past {
			if compact {
				return countdown.FormatCompact(r)
			}
			return countdown.FormatLong(r)
		}
		rb.passed = true
	}

	if compact {
		return countdown.FormatCompact(countdown.Remaining{Past: true})
	}
	return countdown.FormatLong(countdown.Remaining{Past: true})
}

// deadlineLabel renders the static deadline column: the resolved instant
// for known deadlines, the original text otherwise.
func deadlineLabel(conf model.Conference) string {
	switch {
	case conf.CFP.TBA:
		return "TBA"
	case conf.CFP.Invalid:
		return conf.CFPRaw
	default:
		return conf.CFP.At.Format("2006-01-02 15:04 MST")
	}
}
