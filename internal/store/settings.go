package store

import (
	"strconv"
)

// Setting keys persisted in the settings record. Consumers read these at
// startup; the settings record is authoritative over any bootstrap file.
const (
	SettingPollIntervalMS  = "poll_interval_ms"
	SettingMaxHistoryItems = "max_history_items"
	SettingAutoCleanup     = "auto_cleanup_enabled"
	SettingClearOnExit     = "clear_on_exit"
	SettingSchemaVersion   = "schema_version"
)

// DefaultSettings returns the values seeded on first open. Existing keys
// are never overwritten, so upgrades only add.
func DefaultSettings() map[string]string {
	return map[string]string{
		SettingPollIntervalMS:  "500",
		SettingMaxHistoryItems: "1000",
		SettingAutoCleanup:     "true",
		SettingClearOnExit:     "false",
		SettingSchemaVersion:   "1",
	}
}

// GetInt reads an integer setting, falling back when the key is missing or
// malformed.
func GetInt(s SettingsStore, key string, fallback int) int {
	raw, err := s.Get(key)
	if err != nil {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// GetBool reads a boolean setting, falling back when the key is missing or
// malformed.
func GetBool(s SettingsStore, key string, fallback bool) bool {
	raw, err := s.Get(key)
	if err != nil {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return v
}
