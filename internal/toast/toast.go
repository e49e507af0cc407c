package toast

import "time"

// DefaultDuration is how long a notice stays visible unless dismissed.
const DefaultDuration = 5 * time.Second

// Severity classifies a notice for styling.
type Severity int

const (
	// SeverityInfo is a neutral notice.
	SeverityInfo Severity = iota

	// SeveritySuccess confirms a completed action.
	SeveritySuccess

	// SeverityWarning flags a degraded but working state.
	SeverityWarning

	// SeverityError reports a failed action.
	SeverityError
)

// Notice is one transient message. ID and ShownAt are assigned by Show.
type Notice struct {
	ID       int
	Title    string
	Body     string
	Severity Severity
	ShownAt  time.Time
}

// Presenter holds the currently visible notices.
//
// Presenter is not safe for concurrent use; it lives inside a single event
// loop and is touched only from there.
type Presenter struct {
	duration time.Duration
	nextID   int
	visible  []Notice
}

// NewPresenter returns a presenter with the default auto-dismiss duration.
func NewPresenter() *Presenter {
	return &Presenter{duration: DefaultDuration, nextID: 1}
}

// Show makes the notice visible as of now and returns its assigned ID.
// Notices stack in arrival order, newest last; identical payloads are shown
// separately, never merged.
func (p *Presenter) Show(n Notice, now time.Time) int {
	n.ID = p.nextID
	p.nextID++
	n.ShownAt = now
	p.visible = append(p.visible, n)
	return n.ID
}

// Visible returns the notices currently on screen, oldest first.
func (p *Presenter) Visible() []Notice {
	out := make([]Notice, len(p.visible))
	copy(out, p.visible)
	return out
}

// Dismiss removes the notice with the given ID immediately. Dismissing an
// unknown or already-expired ID is a no-op.
func (p *Presenter) Dismiss(id int) {
	for i, n := range p.visible {
		if n.ID == id {
			p.visible = append(p.visible[:i], p.visible[i+1:]...)
			return
		}
	}
}

// Expire removes every notice that has been visible for the auto-dismiss
// duration or longer, and reports whether anything was removed. Callers
// drive this from their clock tick.
func (p *Presenter) Expire(now time.Time) bool {
	kept := p.visible[:0]
	for _, n := range p.visible {
		if now.Sub(n.ShownAt) < p.duration {
			kept = append(kept, n)
		}
	}
	changed := len(kept) != len(p.visible)
	p.visible = kept
	return changed
}
