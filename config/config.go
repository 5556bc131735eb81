// Package config provides configuration loading for the particle network and
// its hosts.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"image/color"
	"os"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"

	"github.com/olivierh59500/particle-network/network"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Theme names accepted in config and on the command line.
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// Config holds all configuration.
type Config struct {
	Window   WindowConfig   `yaml:"window"`
	Theme    string         `yaml:"theme"`
	Network  NetworkConfig  `yaml:"network"`
	Palette  PaletteConfig  `yaml:"palette"`
	Terminal TerminalConfig `yaml:"terminal"`
	Render   RenderConfig   `yaml:"render"`
}

// WindowConfig holds desktop window settings.
type WindowConfig struct {
	Title     string `yaml:"title"`
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	TPS       int    `yaml:"tps"`
	Resizable bool   `yaml:"resizable"`
}

// NetworkConfig mirrors network.Params.
type NetworkConfig struct {
	ParticleCount      int     `yaml:"particle_count"`
	ConnectionDistance float64 `yaml:"connection_distance"`
	Speed              float64 `yaml:"speed"`
	ParticleRadius     float64 `yaml:"particle_radius"`
	LineWidth          float64 `yaml:"line_width"`
}

// ThemeColors holds the colors of one theme.
type ThemeColors struct {
	Accent        string  `yaml:"accent"`
	ParticleAlpha float64 `yaml:"particle_alpha"`
	LineAlpha     float64 `yaml:"line_alpha"`
	Background    string  `yaml:"background"` // page color behind the surface
}

// PaletteConfig holds both themes.
type PaletteConfig struct {
	Dark  ThemeColors `yaml:"dark"`
	Light ThemeColors `yaml:"light"`
}

// TerminalConfig holds terminal host settings.
type TerminalConfig struct {
	FPS     int     `yaml:"fps"`
	DotSize int     `yaml:"dot_size"`
	Gain    float64 `yaml:"gain"`
}

// RenderConfig holds headless render defaults.
type RenderConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	Frames int `yaml:"frames"`
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in the file.
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values the hosts cannot work around.
func (c *Config) Validate() error {
	var errs []error
	if c.Theme != ThemeDark && c.Theme != ThemeLight {
		errs = append(errs, fmt.Errorf("theme %q must be %q or %q", c.Theme, ThemeDark, ThemeLight))
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height))
	}
	if c.Window.TPS <= 0 {
		errs = append(errs, fmt.Errorf("window tps %d must be positive", c.Window.TPS))
	}
	if c.Terminal.FPS <= 0 {
		errs = append(errs, fmt.Errorf("terminal fps %d must be positive", c.Terminal.FPS))
	}
	if c.Terminal.DotSize <= 0 {
		errs = append(errs, fmt.Errorf("terminal dot size %d must be positive", c.Terminal.DotSize))
	}
	for name, tc := range map[string]ThemeColors{ThemeDark: c.Palette.Dark, ThemeLight: c.Palette.Light} {
		if _, err := colorful.Hex(tc.Background); err != nil {
			errs = append(errs, fmt.Errorf("palette %s background %q: %w", name, tc.Background, err))
		}
	}
	if _, err := c.Params(); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Dark reports whether the configured theme is dark.
func (c *Config) Dark() bool {
	return c.Theme == ThemeDark
}

// Params converts the network and palette sections into network.Params.
func (c *Config) Params() (network.Params, error) {
	p := network.Params{
		ParticleCount:      c.Network.ParticleCount,
		ConnectionDistance: c.Network.ConnectionDistance,
		Speed:              c.Network.Speed,
		ParticleRadius:     c.Network.ParticleRadius,
		LineWidth:          c.Network.LineWidth,
	}

	var err error
	if p.Dark, err = c.Palette.Dark.palette(); err != nil {
		return network.Params{}, err
	}
	if p.Light, err = c.Palette.Light.palette(); err != nil {
		return network.Params{}, err
	}
	if err := p.Validate(); err != nil {
		return network.Params{}, err
	}
	return p, nil
}

// Background returns the page color for the given theme.
func (c *Config) Background(dark bool) color.NRGBA {
	tc := c.Palette.Light
	if dark {
		tc = c.Palette.Dark
	}
	bg, err := parseHex(tc.Background)
	if err != nil {
		// Validate rejects this; fall back to an opaque black.
		return color.NRGBA{A: 255}
	}
	return bg
}

func (tc ThemeColors) palette() (network.Palette, error) {
	accent, err := parseHex(tc.Accent)
	if err != nil {
		return network.Palette{}, err
	}
	return network.Palette{
		Particle: network.Tint(accent, tc.ParticleAlpha),
		Line:     network.Tint(accent, tc.LineAlpha),
	}, nil
}

func parseHex(s string) (color.NRGBA, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("parsing color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}
