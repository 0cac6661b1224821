package internal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	pkgconfig "github.com/starford/stickies/pkg/config"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.Notes.Dir == "" || cfg.State.Dir == "" {
		t.Errorf("directories not set: %+v %+v", cfg.Notes, cfg.State)
	}
}

func TestPreferencesConfig_Range(t *testing.T) {
	cases := map[string]PreferencesConfig{
		"default below min": {FontSizeDefault: 6, FontSizeMin: 8, FontSizeMax: 40, Theme: "light"},
		"default above max": {FontSizeDefault: 50, FontSizeMin: 8, FontSizeMax: 40, Theme: "light"},
		"max below min":     {FontSizeDefault: 8, FontSizeMin: 8, FontSizeMax: 4, Theme: "light"},
		"unknown theme":     {FontSizeDefault: 16, FontSizeMin: 8, FontSizeMax: 40, Theme: "sepia"},
	}
	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestWindowConfig_RequiresSize(t *testing.T) {
	cfg := WindowConfig{DefaultWidth: 0, DefaultHeight: 400}
	if err := cfg.Validate(); err == nil {
		t.Error("zero width should fail")
	}
}

func TestInstallConfig_Root(t *testing.T) {
	cfg := InstallConfig{Path: "/opt/stickies"}
	if got := cfg.Root(); got != "/opt/stickies" {
		t.Errorf("Root = %q", got)
	}
	cfg.Path = ""
	if got := cfg.Root(); got == "" {
		t.Error("Root should fall back to the executable directory")
	}
}

func TestLoad_OverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("STICKIES_TEST_NOTES", filepath.Join(dir, "n"))
	path := filepath.Join(dir, "config.yaml")
	yaml := `app:
  log_level: debug
  http:
    port: 9191
notes:
  dir: ${STICKIES_TEST_NOTES}
  watch: false
window:
  cascade_offset: 25
preferences:
  theme: dark
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(path, cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.App.HTTP.Port != 9191 || cfg.App.LogLevel.String() != "DEBUG" {
		t.Errorf("app = %+v", cfg.App)
	}
	if cfg.Notes.Dir != filepath.Join(dir, "n") || cfg.Notes.Watch {
		t.Errorf("notes = %+v", cfg.Notes)
	}
	if cfg.Window.CascadeOffset != 25 || cfg.Window.DefaultWidth != 400 {
		t.Errorf("window = %+v", cfg.Window)
	}
	if cfg.Preferences.Theme != "dark" || cfg.Preferences.FontSizeDefault != 16 {
		t.Errorf("preferences = %+v", cfg.Preferences)
	}
}
