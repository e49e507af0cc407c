package ioutils

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// EnsureDir creates a directory, including any missing parents, with mode
// 0755 (rwxr-xr-x). An already-existing directory is not an error.
//
// Example:
//
//	err := EnsureDir("/home/user/.local/share/confwatch")
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0o755)
}

// WriteFileAtomic writes data to path via a temporary file plus rename, so a
// crash mid-write never leaves a torn file behind. The parent directory is
// created if missing.
//
// Parameters:
//   - path: Destination file path (will be created/replaced)
//   - data: Bytes to write
//   - perm: File mode for the destination
//
// Returns an error if:
//   - The parent directory cannot be created
//   - The temporary file cannot be written
//   - The rename fails (the temporary file is removed)
//
// Example:
//
//	err := WriteFileAtomic("/profile/notified-deadlines.json", blob, 0o644)
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, perm); err != nil {
		return err
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}

	return nil
}

// SanitizeFileName turns an arbitrary string into a name that is safe to use
// as a file or folder name on every supported platform.
//
// Store keys and conference-derived names pass through here before they touch
// the filesystem, so Windows' rules (the strictest) set the baseline:
//   - Reserved characters (<>:"/\|?* and control chars 0x00-0x1f) → underscore
//   - Trailing dots → removed (not allowed on Windows)
//   - Runs of whitespace → single space
//   - Trailing whitespace → removed
//
// Example:
//
//	SanitizeFileName("saved:conferences")  // Returns "saved_conferences"
//	SanitizeFileName("key...")             // Returns "key"
//	SanitizeFileName("name   with spaces") // Returns "name with spaces"
func SanitizeFileName(name string) string {
	// Reserved on Windows: < > : " / \ | ? * plus control characters.
	reserved := regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	name = reserved.ReplaceAllString(name, "_")

	// A trailing dot makes the name unusable on Windows.
	name = regexp.MustCompile(`\.+$`).ReplaceAllString(name, "")

	// Collapse whitespace runs.
	name = regexp.MustCompile(`\s+`).ReplaceAllString(name, " ")

	name = strings.TrimRight(name, " ")

	return name
}
