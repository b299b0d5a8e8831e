package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/matsen/citeshelf/internal/citation"
	"gopkg.in/yaml.v3"
)

// Preferences are the user's persisted formatting choices,
// stored in ~/.config/citeshelf/prefs.yml.
type Preferences struct {
	ShowISBN        bool   `yaml:"show_isbn" json:"show_isbn"`
	SkipMissingISBN bool   `yaml:"skip_missing_isbn" json:"skip_missing_isbn"`
	EscapeLaTeX     bool   `yaml:"escape_latex" json:"escape_latex"`
	DefaultStyle    string `yaml:"default_style" json:"default_style"`
}

const (
	// PrefsDir is the directory name under XDG_CONFIG_HOME.
	PrefsDir = "citeshelf"
	// PrefsFile is the preferences file name.
	PrefsFile = "prefs.yml"
)

// PrefKeys lists the keys accepted by Get and Set, in display order.
var PrefKeys = []string{"show-isbn", "skip-missing-isbn", "escape-latex", "default-style"}

// DefaultPreferences returns the preferences used when no file exists.
func DefaultPreferences() Preferences {
	return Preferences{
		ShowISBN:     true,
		DefaultStyle: citation.StyleProse.String(),
	}
}

// PreferencesPath returns the path to the preferences file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/citeshelf/prefs.yml.
func PreferencesPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, PrefsDir, PrefsFile)
}

// LoadPreferences reads preferences from path.
// Returns defaults (not an error) if the file doesn't exist. Keys missing
// from the file keep their default values.
func LoadPreferences(path string) (Preferences, error) {
	prefs := DefaultPreferences()
	if path == "" {
		return prefs, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return prefs, nil
		}
		return prefs, fmt.Errorf("reading preferences: %w", err)
	}

	if err := yaml.Unmarshal(data, &prefs); err != nil {
		return DefaultPreferences(), fmt.Errorf("parsing preferences: %w", err)
	}
	if prefs.DefaultStyle == "" {
		prefs.DefaultStyle = citation.StyleProse.String()
	}
	return prefs, nil
}

// Save writes preferences to path, creating the directory if needed.
func (p Preferences) Save(path string) error {
	if path == "" {
		return fmt.Errorf("no preferences path (home directory unknown)")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating preferences directory: %w", err)
	}

	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding preferences: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing preferences: %w", err)
	}
	return nil
}

// Options converts preferences to formatting options.
func (p Preferences) Options() citation.Options {
	return citation.Options{
		ShowISBN:        p.ShowISBN,
		SkipMissingISBN: p.SkipMissingISBN,
		EscapeLaTeX:     p.EscapeLaTeX,
	}
}

// Style returns the default style.
func (p Preferences) Style() (citation.Style, error) {
	return citation.ParseStyle(p.DefaultStyle)
}

// Get returns the value of a preference key as a string.
func (p Preferences) Get(key string) (string, error) {
	switch normalizePrefKey(key) {
	case "show-isbn":
		return strconv.FormatBool(p.ShowISBN), nil
	case "skip-missing-isbn":
		return strconv.FormatBool(p.SkipMissingISBN), nil
	case "escape-latex":
		return strconv.FormatBool(p.EscapeLaTeX), nil
	case "default-style":
		return p.DefaultStyle, nil
	default:
		return "", unknownPrefKey(key)
	}
}

// Set updates a preference key from its string value.
func (p *Preferences) Set(key, value string) error {
	k := normalizePrefKey(key)
	if k == "default-style" {
		style, err := citation.ParseStyle(value)
		if err != nil {
			return err
		}
		p.DefaultStyle = style.String()
		return nil
	}

	var target *bool
	switch k {
	case "show-isbn":
		target = &p.ShowISBN
	case "skip-missing-isbn":
		target = &p.SkipMissingISBN
	case "escape-latex":
		target = &p.EscapeLaTeX
	default:
		return unknownPrefKey(key)
	}

	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %q (want true or false)", k, value)
	}
	*target = b
	return nil
}

// normalizePrefKey accepts both show_isbn and show-isbn spellings.
func normalizePrefKey(key string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(key)), "_", "-")
}

func unknownPrefKey(key string) error {
	return fmt.Errorf("unknown preference: %s (valid: %s)", key, strings.Join(PrefKeys, ", "))
}
