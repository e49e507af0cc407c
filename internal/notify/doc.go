// Package notify implements deadline reminders: which saved conferences are
// due, at-most-once delivery per threshold, and the two delivery channels.
//
// # Scanning
//
// Scanner walks the saved conferences against the user's reminder thresholds
// and delivers a reminder for every (conference, threshold) pair that is due
// and not yet in the ledger:
//
//	scanner := notify.NewScanner(st, fav, notifier, toastFn, onEvent)
//	delivered, err := scanner.CheckUpcoming(ctx)
//
// A reminder is due while exactly that many whole days remain. Every
// delivery is recorded in the notified-deadlines ledger before the scan
// moves on, so a crash mid-scan can never replay what was already sent.
//
// # Permission
//
// The desktop channel needs user consent. Permission is requested only from
// an explicit user action, never from a scan:
//
//	perm, err := notifier.RequestPermission()
//	if errors.Is(err, notify.ErrPermissionUnavailable) {
//	    // desktop channel unusable; reminders continue as in-app notices
//	}
//
// Scans read the current permission and fall back to the in-app channel
// alone when the desktop channel is not granted.
//
// # Events
//
// All progress and degradation is reported through an Event callback. The
// CLI prints events as level-prefixed lines; the TUI folds them into its
// notice overlay.
package notify
