// Package config loads the editor's settings from a TOML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// FileName is the name of the settings file looked up by the binary.
const FileName = "mdedit.toml"

// Config holds every tunable of the editor. Fields missing from a file
// keep their defaults.
type Config struct {
	Margin   Margin   `toml:"margin"`
	Viewport Viewport `toml:"viewport"`
	Fonts    Fonts    `toml:"fonts"`

	// Dark selects the dark palette.
	Dark bool `toml:"dark"`
	// StyleSheet is the path of a style sheet replacing the built-in one.
	StyleSheet string `toml:"stylesheet"`
	// ImageCache is the number of decoded images kept.
	ImageCache int `toml:"image_cache"`
	// Debug turns invariant violations into panics.
	Debug bool `toml:"debug"`
}

// Margin is the space around the page, in pixels.
type Margin struct {
	Left  int `toml:"left"`
	Right int `toml:"right"`
	Top   int `toml:"top"`
}

// Viewport tunes block materialization.
type Viewport struct {
	// Grow is how far beyond the visible area blocks are materialized.
	Grow int `toml:"grow"`
	// EvictScreens is how many viewport heights away a block must be
	// before it is released.
	EvictScreens int `toml:"evict_screens"`
	// DebounceMillis delays window updates after a burst of input.
	DebounceMillis int `toml:"debounce_ms"`
	// Batch is the number of blocks materialized per update.
	Batch int `toml:"batch"`
	// Wheel is how far one wheel click scrolls: a row count such as "3",
	// or a share of the window such as "50%". Empty defers to
	// $mousescrollsize, then to one row.
	Wheel string `toml:"wheel"`
}

// Fonts names the fonts to open. Empty names use the display's default
// font.
type Fonts struct {
	Regular    string   `toml:"regular"`
	Bold       string   `toml:"bold"`
	Italic     string   `toml:"italic"`
	BoldItalic string   `toml:"bold_italic"`
	Code       string   `toml:"code"`
	Heading    []string `toml:"heading"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Margin: Margin{Left: 12, Right: 12, Top: 8},
		Viewport: Viewport{
			Grow:           300,
			EvictScreens:   2,
			DebounceMillis: 10,
			Batch:          10,
		},
		ImageCache: 64,
	}
}

// ParseError reports a malformed settings file.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	var de *toml.DecodeError
	if errors.As(e.Err, &de) {
		row, col := de.Position()
		return fmt.Sprintf("parse error in %s at line %d, column %d: %v", e.Path, row, col, de)
	}
	return fmt.Sprintf("parse error in %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Load reads the settings at path over the defaults. A missing file is
// not an error.
func Load(path string) (*Config, error) {
	c := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return c, nil
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	if err := c.parse(path, data); err != nil {
		return nil, err
	}
	return c, nil
}

// Parse reads settings held in memory over the defaults.
func Parse(data []byte) (*Config, error) {
	c := Default()
	if err := c.parse("<config>", data); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) parse(source string, data []byte) error {
	if err := toml.Unmarshal(data, c); err != nil {
		return &ParseError{Path: source, Err: err}
	}
	if err := c.validate(); err != nil {
		return &ParseError{Path: source, Err: err}
	}
	return nil
}

func (c *Config) validate() error {
	v := &c.Viewport
	switch {
	case c.Margin.Left < 0 || c.Margin.Right < 0 || c.Margin.Top < 0:
		return errors.New("margins must not be negative")
	case v.Grow < 0:
		return fmt.Errorf("viewport grow margin %d is negative", v.Grow)
	case v.EvictScreens < 1:
		return fmt.Errorf("viewport evict_screens %d must be at least 1", v.EvictScreens)
	case v.Batch < 1:
		return fmt.Errorf("viewport batch %d must be at least 1", v.Batch)
	case v.DebounceMillis < 0:
		return fmt.Errorf("viewport debounce_ms %d is negative", v.DebounceMillis)
	case c.ImageCache < 0:
		return fmt.Errorf("image_cache %d is negative", c.ImageCache)
	}
	if len(c.Fonts.Heading) > 6 {
		return fmt.Errorf("%d heading fonts given, at most 6 allowed", len(c.Fonts.Heading))
	}
	return nil
}

// Debounce returns the update delay.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Viewport.DebounceMillis) * time.Millisecond
}

// HeadingFont returns the font named for headings of level, or "".
func (c *Config) HeadingFont(level int) string {
	if level < 1 || level > len(c.Fonts.Heading) {
		return ""
	}
	return c.Fonts.Heading[level-1]
}
