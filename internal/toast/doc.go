// Package toast manages transient in-app notices.
//
// # Presenter
//
// Presenter is a pure queue: callers push notices with Show, render whatever
// Visible returns, and drive expiry from their own clock tick. Nothing in the
// package sleeps or owns a timer.
//
//	p := toast.NewPresenter()
//	id := p.Show(toast.Notice{Title: "CFP reminder", Body: "7 days left"}, time.Now())
//
//	// on every UI tick
//	p.Expire(time.Now())
//	for _, n := range p.Visible() { render(n) }
//
//	// on user dismiss
//	p.Dismiss(id)
//
// Notices auto-dismiss a fixed interval after being shown. The presenter
// never coalesces or deduplicates; callers that need at-most-once delivery
// enforce it upstream.
package toast
