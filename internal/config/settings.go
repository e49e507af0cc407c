package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/halfdome/confwatch/internal/ioutils"
	"github.com/halfdome/confwatch/internal/notify"
)

// Settings holds everything the binaries read at startup: where the
// conference data lives, where the profile lives, and how reminders behave.
type Settings struct {
	// Data settings
	DataPath string `json:"data_path"` // conference YAML file or directory

	// Profile settings
	ProfileDir string `json:"profile_dir"` // home of config, store and ledger

	// Watch daemon settings
	WatchSchedule string `json:"watch_schedule"` // cron expression, robfig/cron syntax

	// Display settings
	CompactCountdowns bool `json:"compact_countdowns"` // "12d 04:07:09" instead of "12 days 4h 7m 9s"

	// Desktop notification consent: default, granted or denied
	DesktopPermission string `json:"desktop_permission"`
}

// DefaultSettings returns the settings a fresh install runs with.
func DefaultSettings() *Settings {
	homeDir, _ := os.UserHomeDir()
	return &Settings{
		DataPath:          "conferences",
		ProfileDir:        filepath.Join(homeDir, ".confwatch"),
		WatchSchedule:     "@every 30m",
		CompactCountdowns: false,
		DesktopPermission: notify.PermissionDefault.String(),
	}
}

// DefaultPath returns the default location of the config file, inside the
// default profile directory.
func DefaultPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".confwatch", "config.json")
}

// Load reads settings from a JSON file. A missing file is not an error and
// yields DefaultSettings; fields absent from the file keep their defaults.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, err
	}

	return settings, nil
}

// Save writes settings to a JSON file, atomically, creating the profile
// directory if needed.
func (s *Settings) Save(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return ioutils.WriteFileAtomic(path, data, 0o644)
}

// StoreDir returns the directory the persisted store lives in. It is a
// subdirectory of the profile so clearing the store never touches the
// config file next to it.
func (s *Settings) StoreDir() string {
	return filepath.Join(s.ProfileDir, "store")
}

// ToPermission converts the persisted consent string to the notification
// package's permission type. Unknown strings map to the default state, so
// a hand-edited config can never fake consent.
func (s *Settings) ToPermission() notify.Permission {
	return notify.ParsePermission(s.DesktopPermission)
}

// SetPermission records a permission state for persisting.
func (s *Settings) SetPermission(p notify.Permission) {
	s.DesktopPermission = p.String()
}
