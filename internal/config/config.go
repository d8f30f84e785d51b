// Package config is the boundary between collaborators (CLI flags, the
// control socket, a config file) and the engine. Everything is clamped
// here; the engine assumes pre-validated values.
package config

import (
	"os"

	colorful "github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"

	"github.com/mauros/dxlight/internal/engine"
	"github.com/mauros/dxlight/internal/render"
)

// Config mirrors the UI's control surface. Percent fields are integers to
// match the sliders they come from.
type Config struct {
	Mode        engine.Mode `yaml:"mode" json:"mode"`
	Brightness  int         `yaml:"brightness" json:"brightness"` // percent, 0..100
	Smoothing   int         `yaml:"smoothing" json:"smoothing"`   // percent, 0..90
	FPS         int         `yaml:"fps" json:"fps"`
	Edge        int         `yaml:"edge" json:"edge"`   // percent, 2..20
	Speed       int         `yaml:"speed" json:"speed"` // percent, 0..100; 50 is 1.0x
	Mirror      bool        `yaml:"mirror" json:"mirror"`
	Aspect      string      `yaml:"aspect" json:"aspect"` // named preset, "" = full screen
	StaticColor string      `yaml:"static_color" json:"static_color"`
	Monitor     int         `yaml:"monitor" json:"monitor"`
}

// Default matches the original factory settings of the controller.
func Default() Config {
	return Config{
		Mode:        engine.ModeAmbilight,
		Brightness:  80,
		Smoothing:   25,
		FPS:         90,
		Edge:        6,
		Speed:       50,
		StaticColor: "#FF0050",
	}
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// Normalize clamps every field into its valid range and falls back to
// defaults for unusable values.
func (c *Config) Normalize() {
	switch c.Mode {
	case engine.ModeAmbilight, engine.ModeGaming, engine.ModeFilm,
		engine.ModeStatic, engine.ModeRainbow, engine.ModeBreathing, engine.ModeCycle:
	default:
		c.Mode = engine.ModeAmbilight
	}
	c.Brightness = clampInt(c.Brightness, 0, 100)
	c.Smoothing = clampInt(c.Smoothing, 0, 90)
	if c.FPS < 1 {
		c.FPS = 1
	}
	if c.FPS > 240 {
		c.FPS = 240
	}
	c.Edge = clampInt(c.Edge, 2, 20)
	c.Speed = clampInt(c.Speed, 0, 100)
	if c.Monitor < 0 {
		c.Monitor = 0
	}
	if _, err := colorful.Hex(c.StaticColor); err != nil {
		c.StaticColor = Default().StaticColor
	}
	if _, ok := aspects[c.Aspect]; !ok {
		c.Aspect = ""
	}
}

// ApplyModePreset overwrites smoothing/fps/edge for modes that carry a
// tuned preset (gaming: reactive and narrow, film: soft and wide). Other
// modes leave the sliders alone.
func (c *Config) ApplyModePreset() {
	switch c.Mode {
	case engine.ModeGaming:
		c.Smoothing, c.FPS, c.Edge = 10, 144, 4
	case engine.ModeFilm:
		c.Smoothing, c.FPS, c.Edge = 50, 60, 10
	}
}

// Snapshot converts the percent-based surface into the engine's immutable
// per-tick view. Monitor dimensions feed the aspect-preset crop math.
func (c *Config) Snapshot(monW, monH int) engine.Snapshot {
	base := render.Color{R: 255, G: 0, B: 80}
	if col, err := colorful.Hex(c.StaticColor); err == nil {
		r, g, b := col.RGB255()
		base = render.Color{R: r, G: g, B: b}
	}
	return engine.Snapshot{
		Mode:       c.Mode,
		Brightness: float64(c.Brightness) / 100.0,
		Alpha:      float64(c.Smoothing) / 100.0,
		FPS:        c.FPS,
		EdgePct:    float64(c.Edge) / 100.0,
		Speed:      float64(c.Speed) / 50.0,
		Mirror:     c.Mirror,
		Base:       base,
		Crop:       AspectCrop(c.Aspect, monW, monH),
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
