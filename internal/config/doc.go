// Package config manages bingwall settings.
//
// Settings are stored as JSON and loaded with Load, falling back to
// DefaultSettings when no file exists:
//
//	settings, err := config.Load("/home/user/.config/bingwall/settings.json")
//
// For headless runs the collector also honors the automation environment
// contract (AUTO_MODE, TARGET_COUNTRY, COLLECT_DAYS, ...), applied with
// ApplyEnv after loading.
//
// All numeric bounds are clamped here — days to the archive's history
// window, concurrency to the request limit — so downstream components can
// assume a valid configuration.
package config
