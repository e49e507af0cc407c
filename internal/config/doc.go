// Package config loads and persists confwatch's settings.
//
// Settings live in a single JSON file inside the profile directory and
// cover:
//   - Where the conference YAML data is read from
//   - Where the profile (store, ledger) lives
//   - The watch daemon's scan schedule
//   - Display density and desktop-notification consent
//
// # Default Settings
//
// A fresh install needs no config file at all:
//
//	settings := config.DefaultSettings()
//	// Conference data read from ./conferences
//	// Profile stored under ~/.confwatch
//	// Watch daemon scans every 30 minutes
//
// # Loading from File
//
//	settings, err := config.Load(config.DefaultPath())
//	if err != nil {
//	    // Only real read/parse failures end up here; a missing
//	    // file silently falls back to DefaultSettings.
//	}
//
// # Saving Settings
//
//	settings.DataPath = "/home/me/confs.yaml"
//	err := settings.Save(config.DefaultPath())
//
// The persisted store (favorites, notification ledger) lives in its own
// subdirectory of the profile, see Settings.StoreDir.
package config
