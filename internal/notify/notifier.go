package notify

import (
	"errors"
	"fmt"

	"github.com/gen2brain/beeep"
)

// ErrPermissionUnavailable is returned when the desktop channel cannot be
// used: consent was never granted, was denied, or the platform has no
// notification service. Reminders degrade to the in-app channel.
var ErrPermissionUnavailable = errors.New("desktop notifications unavailable")

// Permission is the user's standing consent for the desktop channel.
type Permission int

const (
	// PermissionDefault means the user has never been asked.
	PermissionDefault Permission = iota

	// PermissionGranted means the desktop channel may be used.
	PermissionGranted

	// PermissionDenied means the user refused or the platform cannot
	// deliver; the desktop channel must not be retried silently.
	PermissionDenied
)

// String returns the persisted wire form of the permission.
func (p Permission) String() string {
	switch p {
	case PermissionGranted:
		return "granted"
	case PermissionDenied:
		return "denied"
	default:
		return "default"
	}
}

// ParsePermission maps a persisted wire form back to a Permission. Unknown
// values read as PermissionDefault so a corrupted config never fakes
// consent.
func ParsePermission(s string) Permission {
	switch s {
	case "granted":
		return PermissionGranted
	case "denied":
		return PermissionDenied
	default:
		return PermissionDefault
	}
}

// Notifier is the desktop delivery channel. Scans read Permission and send
// only when granted; RequestPermission runs only from an explicit user
// action.
type Notifier interface {
	// Permission returns the current consent state without side effects.
	Permission() Permission

	// RequestPermission asks for consent, returning the new state. The
	// error wraps ErrPermissionUnavailable when the channel cannot be used.
	RequestPermission() (Permission, error)

	// Send delivers one desktop notification. It fails with
	// ErrPermissionUnavailable unless permission is granted.
	Send(title, body string) error
}

// DesktopNotifier delivers reminders through the operating system's
// notification service.
//
// The consent state is handed in at construction (the caller persists it in
// the application config) and updated by RequestPermission. There is no
// platform permission API to query; granting is a live delivery probe, so a
// grant always reflects a notification the user actually saw.
type DesktopNotifier struct {
	perm Permission
}

// NewDesktopNotifier returns a desktop notifier in the given consent state.
func NewDesktopNotifier(perm Permission) *DesktopNotifier {
	return &DesktopNotifier{perm: perm}
}

// Permission returns the current consent state.
func (n *DesktopNotifier) Permission() Permission {
	return n.perm
}

// RequestPermission probes the notification service with a test
// notification. Success grants; a delivery failure denies and wraps
// ErrPermissionUnavailable. The caller persists the returned state.
func (n *DesktopNotifier) RequestPermission() (Permission, error) {
	if err := beeep.Notify("confwatch", "Deadline reminders are on.", ""); err != nil {
		n.perm = PermissionDenied
		return n.perm, fmt.Errorf("%w: %v", ErrPermissionUnavailable, err)
	}
	n.perm = PermissionGranted
	return n.perm, nil
}

// Send delivers one desktop notification.
func (n *DesktopNotifier) Send(title, body string) error {
	if n.perm != PermissionGranted {
		return ErrPermissionUnavailable
	}
	if err := beeep.Notify(title, body, ""); err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	return nil
}
