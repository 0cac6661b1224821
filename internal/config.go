package internal

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/stickies/internal/models"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App         ApplicationConfig `yaml:"app"`
	Notes       NotesConfig       `yaml:"notes"`
	State       StateConfig       `yaml:"state"`
	Window      WindowConfig      `yaml:"window"`
	Preferences PreferencesConfig `yaml:"preferences"`
	Install     InstallConfig     `yaml:"install"`
	Auth        AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Notes.Validate(); err != nil {
		return err
	}
	if err := c.State.Validate(); err != nil {
		return err
	}
	if err := c.Window.Validate(); err != nil {
		return err
	}
	if err := c.Preferences.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// NotesConfig locates the notes directory.
type NotesConfig struct {
	Dir string `yaml:"dir"`
	// Watch refreshes the list when notes change outside the application.
	Watch bool `yaml:"watch"`
}

// Validate validates the notes configuration.
func (c *NotesConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Dir, validation.Required),
	)
}

// StateConfig holds the directory for window geometry, the last session
// and the preferences database.
type StateConfig struct {
	Dir string `yaml:"dir"`
}

// Validate validates the state configuration.
func (c *StateConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Dir, validation.Required),
	)
}

// WindowConfig holds note window placement defaults.
type WindowConfig struct {
	DefaultWidth  int `yaml:"default_width"`
	DefaultHeight int `yaml:"default_height"`
	CascadeOffset int `yaml:"cascade_offset"`
}

// Validate validates the window configuration.
func (c *WindowConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.DefaultWidth, validation.Required, validation.Min(1)),
		validation.Field(&c.DefaultHeight, validation.Required, validation.Min(1)),
		validation.Field(&c.CascadeOffset, validation.Min(0)),
	)
}

// PreferencesConfig holds the defaults written to a fresh preferences
// database and the font size range.
type PreferencesConfig struct {
	FontSizeDefault int          `yaml:"font_size_default"`
	FontSizeMin     int          `yaml:"font_size_min"`
	FontSizeMax     int          `yaml:"font_size_max"`
	Theme           models.Theme `yaml:"theme"`
}

// Validate validates the preferences configuration.
func (c *PreferencesConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.FontSizeMin, validation.Required, validation.Min(1)),
		validation.Field(&c.FontSizeMax, validation.Required, validation.Min(c.FontSizeMin)),
		validation.Field(&c.FontSizeDefault, validation.Required,
			validation.Min(c.FontSizeMin), validation.Max(c.FontSizeMax)),
		validation.Field(&c.Theme, validation.Required, validation.In(models.ThemeLight, models.ThemeDark)),
	)
}

// InstallConfig locates the application's installed files. Legacy
// app-asset:/// image links resolve against it.
type InstallConfig struct {
	Path string `yaml:"path"`
}

// Root returns Path, or the directory of the running executable when
// Path is empty.
func (c *InstallConfig) Root() string {
	if c.Path != "" {
		return c.Path
	}
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// defaultDataDir is the per-user directory holding notes and state.
func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "stickies")
	}
	return ".stickies"
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	data := defaultDataDir()
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Notes: NotesConfig{
			Dir:   filepath.Join(data, "notes"),
			Watch: true,
		},
		State: StateConfig{
			Dir: data,
		},
		Window: WindowConfig{
			DefaultWidth:  400,
			DefaultHeight: 400,
			CascadeOffset: 40,
		},
		Preferences: PreferencesConfig{
			FontSizeDefault: 16,
			FontSizeMin:     8,
			FontSizeMax:     40,
			Theme:           models.ThemeLight,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
