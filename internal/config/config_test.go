package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nonexistent.toml"))
	if err != nil {
		t.Fatalf("Load of a missing file must not error, got %v", err)
	}
	if cfg != Default() {
		t.Errorf("Load() = %+v, want Default()", cfg)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
max_edit_distance = 1
enabled_by_default = false
undo_timeout_seconds = 10
hotkey_toggle = "Ctrl+Alt+Z"
auto_check_updates = false
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Config{
		MaxEditDistance:    1,
		EnabledByDefault:   false,
		UndoTimeoutSeconds: 10,
		HotkeyToggle:       "Ctrl+Alt+Z",
		AutoCheckUpdates:   false,
	}
	if cfg != want {
		t.Errorf("Load() = %+v, want %+v", cfg, want)
	}
}

func TestLoadFallsBackOnInvalidMaxEditDistance(t *testing.T) {
	path := writeConfig(t, "max_edit_distance = 9\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MaxEditDistance != Default().MaxEditDistance {
		t.Errorf("MaxEditDistance = %d, want default %d", cfg.MaxEditDistance, Default().MaxEditDistance)
	}
}

func TestLoadFallsBackOnInvalidUndoTimeout(t *testing.T) {
	path := writeConfig(t, "undo_timeout_seconds = 0\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.UndoTimeoutSeconds != Default().UndoTimeoutSeconds {
		t.Errorf("UndoTimeoutSeconds = %d, want default %d", cfg.UndoTimeoutSeconds, Default().UndoTimeoutSeconds)
	}
}

func TestLoadIgnoresUnknownKeys(t *testing.T) {
	path := writeConfig(t, `
max_edit_distance = 3
some_future_option = "whatever"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load must not error on unknown keys, got %v", err)
	}
	if cfg.MaxEditDistance != 3 {
		t.Errorf("MaxEditDistance = %d, want 3", cfg.MaxEditDistance)
	}
}

func TestLoadMalformedFileReturnsParseError(t *testing.T) {
	path := writeConfig(t, "max_edit_distance = [this is not valid toml\n")
	cfg, err := Load(path)
	if err == nil {
		t.Fatal("expected a ParseError for malformed TOML")
	}
	var perr *ParseError
	if ok := errorsAs(err, &perr); !ok {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if cfg != Default() {
		t.Errorf("Load() on malformed input = %+v, want Default()", cfg)
	}
}

func errorsAs(err error, target **ParseError) bool {
	pe, ok := err.(*ParseError)
	if !ok {
		return false
	}
	*target = pe
	return true
}
