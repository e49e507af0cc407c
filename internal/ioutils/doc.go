// Package ioutils provides file system utilities shared by the persistence
// store, the config layer and the calendar exporter.
//
// # File Operations
//
//	// Ensure directory exists
//	err := ioutils.EnsureDir("/home/user/.config/confwatch")
//
//	// Write data without risking a torn file on crash
//	err := ioutils.WriteFileAtomic("/path/to/file.json", data, 0o644)
//
// # Filename Sanitization
//
// Use SanitizeFileName to map arbitrary key strings to valid filenames:
//
//	safe := ioutils.SanitizeFileName("saved:conferences") // "saved_conferences"
package ioutils
