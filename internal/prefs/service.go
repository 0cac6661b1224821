package prefs

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/stickies/internal/models"
	"github.com/starford/stickies/internal/sse"
)

// Keys in the kv table.
const (
	KeyTheme     = "theme"
	KeyFontSize  = "fontSize"
	KeyShortcuts = "shortcuts"
)

// Publisher broadcasts a signal to every UI surface.
type Publisher interface {
	Broadcast(typ string, data any)
}

// Limits bounds the font size.
type Limits struct {
	Default int
	Min     int
	Max     int
}

// Clamp forces n into [Min, Max].
func (l Limits) Clamp(n int) int {
	if n < l.Min {
		return l.Min
	}
	if n > l.Max {
		return l.Max
	}
	return n
}

// DefaultShortcuts returns the built-in key bindings.
func DefaultShortcuts() models.ShortcutMap {
	ctrl := []string{models.ModCtrl}
	ctrlShift := []string{models.ModCtrl, models.ModShift}
	return models.ShortcutMap{
		"preview":       {Key: "p", Modifiers: ctrl},
		"toggle-view":   {Key: "o", Modifiers: ctrl},
		"open-main":     {Key: "m", Modifiers: ctrl},
		"new-note":      {Key: "n", Modifiers: ctrl},
		"bold":          {Key: "b", Modifiers: ctrl},
		"italic":        {Key: "i", Modifiers: ctrl},
		"inline-code":   {Key: "`", Modifiers: ctrl},
		"code-block":    {Key: "k", Modifiers: ctrl},
		"quote":         {Key: "q", Modifiers: ctrl},
		"heading":       {Key: "h", Modifiers: ctrl},
		"strikethrough": {Key: "s", Modifiers: ctrlShift},
		"link":          {Key: "l", Modifiers: ctrl},
		"bullet-list":   {Key: "l", Modifiers: ctrlShift},
		"numbered-list": {Key: "o", Modifiers: ctrlShift},
		"focus-search":  {Key: "f", Modifiers: ctrl},
	}
}

// Service reads and updates preferences and announces changes.
type Service struct {
	store  *Store
	pub    Publisher
	limits Limits
	theme  models.Theme
	logger *slog.Logger

	mu sync.Mutex // serializes read-modify-write sequences
}

// NewService returns a service. defaultTheme seeds a first run.
func NewService(store *Store, pub Publisher, limits Limits, defaultTheme models.Theme, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if defaultTheme == "" {
		defaultTheme = models.ThemeLight
	}
	return &Service{
		store:  store,
		pub:    pub,
		limits: limits,
		theme:  defaultTheme,
		logger: logger,
	}
}

// EnsureDefaults writes a default for every missing key. Existing values
// are never overwritten.
func (s *Service) EnsureDefaults() error {
	defaults := map[string]any{
		KeyTheme:     s.theme,
		KeyFontSize:  s.limits.Clamp(s.limits.Default),
		KeyShortcuts: DefaultShortcuts(),
	}
	keys := make([]string, 0, len(defaults))
	for k := range defaults {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		raw, err := json.Marshal(defaults[k])
		if err != nil {
			return fmt.Errorf("prefs: encode %s: %w", k, err)
		}
		written, err := s.store.SetDefault(k, string(raw))
		if err != nil {
			return err
		}
		if written {
			s.logger.Debug("prefs: default applied", slog.String("key", k))
		}
	}
	return nil
}

// get decodes key into v. It reports false when the key is absent or the
// stored value does not decode.
func (s *Service) get(key string, v any) (bool, error) {
	raw, ok, err := s.store.Get(key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		s.logger.Warn("prefs: stored value unreadable, using default",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return false, nil
	}
	return true, nil
}

func (s *Service) set(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("prefs: encode %s: %w", key, err)
	}
	return s.store.Set(key, string(raw))
}

// Theme returns the current theme.
func (s *Service) Theme() (models.Theme, error) {
	var t models.Theme
	ok, err := s.get(KeyTheme, &t)
	if err != nil {
		return "", err
	}
	if !ok || (t != models.ThemeLight && t != models.ThemeDark) {
		return s.theme, nil
	}
	return t, nil
}

// ToggleTheme switches between light and dark and broadcasts the result.
func (s *Service) ToggleTheme() (models.Theme, error) {
	s.mu.Lock()
	cur, err := s.Theme()
	if err != nil {
		s.mu.Unlock()
		return "", err
	}
	next := cur.Toggle()
	if err := s.set(KeyTheme, next); err != nil {
		s.mu.Unlock()
		return "", err
	}
	s.mu.Unlock()

	s.pub.Broadcast(sse.TypeThemeChanged, map[string]models.Theme{"theme": next})
	s.logger.Info("prefs: theme changed", slog.String("theme", string(next)))
	return next, nil
}

// FontSize returns the current font size.
func (s *Service) FontSize() (int, error) {
	var n int
	ok, err := s.get(KeyFontSize, &n)
	if err != nil {
		return 0, err
	}
	if !ok {
		n = s.limits.Default
	}
	return s.limits.Clamp(n), nil
}

// SetFontSize stores n clamped to the limits and returns the stored value.
func (s *Service) SetFontSize(n int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n = s.limits.Clamp(n)
	if err := s.set(KeyFontSize, n); err != nil {
		return 0, err
	}
	return n, nil
}

// AdjustFontSize changes the font size by delta within the limits.
func (s *Service) AdjustFontSize(delta int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, err := s.FontSize()
	if err != nil {
		return 0, err
	}
	n := s.limits.Clamp(cur + delta)
	if err := s.set(KeyFontSize, n); err != nil {
		return 0, err
	}
	return n, nil
}

// Shortcuts returns the defaults overlaid with saved bindings.
func (s *Service) Shortcuts() (models.ShortcutMap, error) {
	out := DefaultShortcuts()
	var saved models.ShortcutMap
	if _, err := s.get(KeyShortcuts, &saved); err != nil {
		return nil, err
	}
	for action, sc := range saved {
		if _, known := out[action]; known && validateShortcut(sc) == nil {
			out[action] = sc
		}
	}
	return out, nil
}

// SaveShortcuts validates and stores bindings, then broadcasts the merged
// map.
func (s *Service) SaveShortcuts(m models.ShortcutMap) (models.ShortcutMap, error) {
	if err := ValidateShortcuts(m); err != nil {
		return nil, err
	}
	s.mu.Lock()
	merged, err := s.Shortcuts()
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	for action, sc := range m {
		merged[action] = sc
	}
	if err := s.set(KeyShortcuts, merged); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.mu.Unlock()

	s.pub.Broadcast(sse.TypeShortcutsUpdated, merged)
	return merged, nil
}

// Preferences returns the full preference document.
func (s *Service) Preferences() (models.Preferences, error) {
	theme, err := s.Theme()
	if err != nil {
		return models.Preferences{}, err
	}
	size, err := s.FontSize()
	if err != nil {
		return models.Preferences{}, err
	}
	shortcuts, err := s.Shortcuts()
	if err != nil {
		return models.Preferences{}, err
	}
	return models.Preferences{FontSize: size, Theme: theme, Shortcuts: shortcuts}, nil
}

func validateShortcut(sc models.Shortcut) error {
	return validation.ValidateStruct(&sc,
		validation.Field(&sc.Key, validation.Required, validation.RuneLength(1, 16)),
		validation.Field(&sc.Modifiers,
			validation.Required,
			validation.Each(validation.In(models.ModCtrl, models.ModShift, models.ModAlt)),
		),
	)
}

// ValidateShortcuts checks that every action is known and every binding
// has a key and at least one valid modifier.
func ValidateShortcuts(m models.ShortcutMap) error {
	known := DefaultShortcuts()
	errs := validation.Errors{}
	for action, sc := range m {
		if _, ok := known[action]; !ok {
			errs[action] = errors.New("unknown action")
			continue
		}
		if err := validateShortcut(sc); err != nil {
			errs[action] = err
		}
	}
	return errs.Filter()
}
