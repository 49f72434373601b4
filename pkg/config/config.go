// Package config loads viewer settings from YAML or TOML files and merges
// them with command-line flags.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/taigrr/facet/pkg/render"
	"github.com/taigrr/facet/pkg/scene"
	"gopkg.in/yaml.v3"
)

// Filename is the config file looked up in the user config directory.
const Filename = "config.yaml"

// Defaults applied when neither the file nor a flag sets a value.
const (
	DefaultFPS         = render.DefaultFPS
	MaxFPS             = render.MaxFPS
	DefaultBackground  = "51,51,51"
	DefaultSupersample = 1
	DefaultWidth       = 800
	DefaultHeight      = 600
	DefaultNormalize   = 2.0
	DefaultFrames      = 36
)

// ErrInvalidConfig is returned for values that cannot be applied.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the on-disk settings file. Pointer fields distinguish unset
// from zero.
type Config struct {
	FPS         int      `yaml:"fps" toml:"fps"`
	Background  string   `yaml:"background" toml:"background"` // "R,G,B"
	Supersample int      `yaml:"supersample" toml:"supersample"`
	Width       int      `yaml:"width" toml:"width"`
	Height      int      `yaml:"height" toml:"height"`
	Frames      int      `yaml:"frames" toml:"frames"`
	Normalize   *float64 `yaml:"normalize" toml:"normalize"` // Largest mesh dimension; 0 keeps the file's units
	Watch       *bool    `yaml:"watch" toml:"watch"`
	LogLevel    string   `yaml:"log_level" toml:"log_level"`
	View        View     `yaml:"view" toml:"view"`
}

// View holds the initial control values.
type View struct {
	Projection  string   `yaml:"projection" toml:"projection"`
	CameraAngle *float64 `yaml:"camera_angle" toml:"camera_angle"`
	CameraZoom  *float64 `yaml:"camera_zoom" toml:"camera_zoom"`
	X           *float64 `yaml:"x" toml:"x"`
	Y           *float64 `yaml:"y" toml:"y"`
	Z           *float64 `yaml:"z" toml:"z"`
	AngleX      *float64 `yaml:"angle_x" toml:"angle_x"`
	AngleY      *float64 `yaml:"angle_y" toml:"angle_y"`
	AngleZ      *float64 `yaml:"angle_z" toml:"angle_z"`
	Scale       *float64 `yaml:"scale" toml:"scale"`
}

// Flags are command-line overrides. Zero values are unset.
type Flags struct {
	FPS         int
	Background  string
	Projection  string
	Supersample int
	Width       int
	Height      int
	Frames      int
	NoWatch     bool
	LogLevel    string
}

// Settings are the resolved values the commands run with.
type Settings struct {
	FPS         int
	Background  render.Color
	Supersample int
	Width       int
	Height      int
	Frames      int
	Normalize   float64
	Watch       bool
	LogLevel    slog.Level
	Initial     scene.FrameParameters
}

// DefaultPath returns the config file in the user config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "facet", Filename), nil
}

// Load reads a YAML (.yaml, .yml) or TOML (.toml) config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &c)
	case ".toml":
		err = toml.Unmarshal(data, &c)
	default:
		return nil, fmt.Errorf("config %s: unsupported extension %q: %w", path, ext, ErrInvalidConfig)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &c, nil
}

// LoadDefault loads the config at DefaultPath. A missing file yields an
// empty config.
func LoadDefault() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return &Config{}, nil
	}
	c, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return &Config{}, nil
	}
	return c, err
}

// Resolve merges flags over c and fills defaults. c may be nil.
func (c *Config) Resolve(f Flags) (Settings, error) {
	if c == nil {
		c = &Config{}
	}
	s := Settings{
		FPS:         firstPositive(f.FPS, c.FPS, DefaultFPS),
		Supersample: firstPositive(f.Supersample, c.Supersample, DefaultSupersample),
		Width:       firstPositive(f.Width, c.Width, DefaultWidth),
		Height:      firstPositive(f.Height, c.Height, DefaultHeight),
		Frames:      firstPositive(f.Frames, c.Frames, DefaultFrames),
		Normalize:   DefaultNormalize,
		Watch:       true,
	}
	if s.FPS > MaxFPS {
		return s, fmt.Errorf("fps %d above %d: %w", s.FPS, MaxFPS, ErrInvalidConfig)
	}
	if c.Normalize != nil {
		if *c.Normalize < 0 {
			return s, fmt.Errorf("normalize %v: %w", *c.Normalize, ErrInvalidConfig)
		}
		s.Normalize = *c.Normalize
	}
	if c.Watch != nil {
		s.Watch = *c.Watch
	}
	if f.NoWatch {
		s.Watch = false
	}

	bg, err := ParseColor(firstNonEmpty(f.Background, c.Background, DefaultBackground))
	if err != nil {
		return s, err
	}
	s.Background = bg

	if err := s.LogLevel.UnmarshalText([]byte(firstNonEmpty(f.LogLevel, c.LogLevel, "info"))); err != nil {
		return s, fmt.Errorf("log level: %w", ErrInvalidConfig)
	}

	s.Initial, err = c.View.apply(scene.Defaults())
	if err != nil {
		return s, err
	}
	if f.Projection != "" {
		mode, err := scene.ParseProjectionMode(f.Projection)
		if err != nil {
			return s, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		s.Initial.Projection = mode
	}
	return s, nil
}

// apply overrides the set fields of v on p.
func (v View) apply(p scene.FrameParameters) (scene.FrameParameters, error) {
	if v.Projection != "" {
		mode, err := scene.ParseProjectionMode(v.Projection)
		if err != nil {
			return p, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		p.Projection = mode
	}
	for _, o := range []struct {
		src *float64
		dst *float64
	}{
		{v.CameraAngle, &p.CameraAngle},
		{v.CameraZoom, &p.CameraZoom},
		{v.X, &p.X},
		{v.Y, &p.Y},
		{v.Z, &p.Z},
		{v.AngleX, &p.AngleX},
		{v.AngleY, &p.AngleY},
		{v.AngleZ, &p.AngleZ},
		{v.Scale, &p.Scale},
	} {
		if o.src != nil {
			*o.dst = *o.src
		}
	}
	if p.CameraAngle < scene.UIMin || p.CameraAngle > scene.UIMax ||
		p.CameraZoom < scene.UIMin || p.CameraZoom > scene.UIMax {
		return p, fmt.Errorf("camera knobs must be in [%v, %v]: %w", scene.UIMin, scene.UIMax, ErrInvalidConfig)
	}
	if p.Scale <= 0 {
		return p, fmt.Errorf("scale %v must be positive: %w", p.Scale, ErrInvalidConfig)
	}
	return p, nil
}

// ParseColor parses "R,G,B" with 0-255 channels.
func ParseColor(s string) (render.Color, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return render.Color{}, fmt.Errorf("color %q: want R,G,B: %w", s, ErrInvalidConfig)
	}
	var ch [3]uint8
	for i, part := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(part), 10, 8)
		if err != nil {
			return render.Color{}, fmt.Errorf("color %q: %w", s, ErrInvalidConfig)
		}
		ch[i] = uint8(v)
	}
	return render.RGB(ch[0], ch[1], ch[2]), nil
}

func firstPositive(vs ...int) int {
	for _, v := range vs {
		if v > 0 {
			return v
		}
	}
	return 0
}

func firstNonEmpty(vs ...string) string {
	for _, v := range vs {
		if v != "" {
			return v
		}
	}
	return ""
}
