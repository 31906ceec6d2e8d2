// Package config loads the daemon's config.toml and applies the
// soft-fallback rules of spec.md section 6: unknown keys are ignored with
// a warning, invalid values fall back to their defaults, and a missing or
// unreadable file is never fatal.
package config

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config mirrors spec.md section 6's configuration table exactly.
type Config struct {
	MaxEditDistance    int    `toml:"max_edit_distance"`
	EnabledByDefault   bool   `toml:"enabled_by_default"`
	UndoTimeoutSeconds int    `toml:"undo_timeout_seconds"`
	HotkeyToggle       string `toml:"hotkey_toggle"`
	AutoCheckUpdates   bool   `toml:"auto_check_updates"`
}

// Default returns the configuration defaults from spec.md section 6.
func Default() Config {
	return Config{
		MaxEditDistance:    2,
		EnabledByDefault:   true,
		UndoTimeoutSeconds: 5,
		HotkeyToggle:       "Ctrl+Shift+A",
		AutoCheckUpdates:   true,
	}
}

// ParseError wraps an underlying read or decode failure. It is always
// non-fatal: Load returns Default() alongside it.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("config: parsing %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

var knownKeys = map[string]bool{
	"max_edit_distance":    true,
	"enabled_by_default":   true,
	"undo_timeout_seconds": true,
	"hotkey_toggle":        true,
	"auto_check_updates":   true,
}

// Load reads path and returns a validated Config. A missing file is not an
// error: Default() is returned unchanged. A malformed file yields
// Default() and a *ParseError the caller may log; the daemon always has a
// usable configuration.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, &ParseError{Path: path, Err: err}
	}

	warnUnknownKeys(path, data)

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default(), &ParseError{Path: path, Err: err}
	}

	return validate(cfg), nil
}

// warnUnknownKeys logs (never errors on) any top-level key config.toml
// doesn't recognise, per spec.md's "unknown keys are ignored with a
// warning".
func warnUnknownKeys(path string, data []byte) {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return // the real Unmarshal below will surface this as a ParseError
	}
	for key := range raw {
		if !knownKeys[key] {
			slog.Warn("config: ignoring unknown key", "path", path, "key", key)
		}
	}
}

// validate falls back to defaults for any field outside its documented
// range, per spec.md: "Invalid values fall back to defaults."
func validate(cfg Config) Config {
	def := Default()
	if cfg.MaxEditDistance < 1 || cfg.MaxEditDistance > 3 {
		slog.Warn("config: max_edit_distance out of range, using default", "value", cfg.MaxEditDistance, "default", def.MaxEditDistance)
		cfg.MaxEditDistance = def.MaxEditDistance
	}
	if cfg.UndoTimeoutSeconds < 1 {
		slog.Warn("config: undo_timeout_seconds out of range, using default", "value", cfg.UndoTimeoutSeconds, "default", def.UndoTimeoutSeconds)
		cfg.UndoTimeoutSeconds = def.UndoTimeoutSeconds
	}
	if cfg.HotkeyToggle == "" {
		cfg.HotkeyToggle = def.HotkeyToggle
	}
	return cfg
}
