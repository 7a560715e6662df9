package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// Theme is the single process-wide look of the terminal UI. It is loaded
// once at startup; panels only read it.
type Theme struct {
	Background string `yaml:"background"`
	Foreground string `yaml:"foreground"`
	Accent     string `yaml:"accent"`
	Muted      string `yaml:"muted"`
	Selection  string `yaml:"selection"`
	Alert      string `yaml:"alert"`
	Border     string `yaml:"border"`
	// BorderStyle is one of "normal", "thick", "double", "rounded".
	BorderStyle string `yaml:"border_style"`
	ListWidth   int    `yaml:"list_width"`
	InputWidth  int    `yaml:"input_width"`
}

// DefaultTheme mimics a classic 16-colour desktop: teal background,
// grey panels, navy selection.
func DefaultTheme() Theme {
	return Theme{
		Background:  "#008080",
		Foreground:  "#000000",
		Accent:      "#000080",
		Muted:       "#808080",
		Selection:   "#000080",
		Alert:       "#C0C0C0",
		Border:      "#C0C0C0",
		BorderStyle: "thick",
		ListWidth:   28,
		InputWidth:  30,
	}
}

var (
	themeOnce sync.Once
	theme     Theme
	themeErr  error
)

// LoadTheme reads path once per process. An empty or missing path yields
// DefaultTheme; keys absent from the file keep their defaults.
func LoadTheme(path string) (Theme, error) {
	themeOnce.Do(func() {
		theme, themeErr = readTheme(path)
	})
	return theme, themeErr
}

func readTheme(path string) (Theme, error) {
	t := DefaultTheme()
	if path == "" {
		return t, nil
	}
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return t, nil
	}
	if err != nil {
		return t, fmt.Errorf("read theme: %w", err)
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return DefaultTheme(), fmt.Errorf("parse theme %s: %w", path, err)
	}
	if t.ListWidth <= 0 {
		t.ListWidth = DefaultTheme().ListWidth
	}
	if t.InputWidth <= 0 {
		t.InputWidth = DefaultTheme().InputWidth
	}
	return t, nil
}
