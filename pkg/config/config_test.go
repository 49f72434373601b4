package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taigrr/facet/pkg/render"
	"github.com/taigrr/facet/pkg/scene"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "facet.yaml", `
fps: 30
background: "0, 0, 0"
normalize: 0
watch: false
view:
  projection: oblique
  camera_zoom: 75
  angle_x: 0
`)
	c, err := Load(path)
	require.NoError(t, err)

	s, err := c.Resolve(Flags{})
	require.NoError(t, err)
	assert.Equal(t, 30, s.FPS)
	assert.Equal(t, render.RGB(0, 0, 0), s.Background)
	assert.Zero(t, s.Normalize)
	assert.False(t, s.Watch)
	assert.Equal(t, scene.Oblique, s.Initial.Projection)
	assert.Equal(t, 75.0, s.Initial.CameraZoom)
	assert.Zero(t, s.Initial.AngleX)
	assert.Equal(t, scene.Defaults().AngleY, s.Initial.AngleY)
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "facet.toml", `
fps = 24
supersample = 2
log_level = "debug"

[view]
projection = "orthographic"
scale = 1.5
`)
	c, err := Load(path)
	require.NoError(t, err)

	s, err := c.Resolve(Flags{})
	require.NoError(t, err)
	assert.Equal(t, 24, s.FPS)
	assert.Equal(t, 2, s.Supersample)
	assert.Equal(t, slog.LevelDebug, s.LogLevel)
	assert.Equal(t, scene.Orthographic, s.Initial.Projection)
	assert.Equal(t, 1.5, s.Initial.Scale)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(writeFile(t, "facet.ini", "fps=1"))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = Load(writeFile(t, "facet.yaml", "fps: [1, 2"))
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestResolveDefaults(t *testing.T) {
	var c *Config
	s, err := c.Resolve(Flags{})
	require.NoError(t, err)

	assert.Equal(t, DefaultFPS, s.FPS)
	assert.Equal(t, render.ClearColor, s.Background)
	assert.Equal(t, DefaultSupersample, s.Supersample)
	assert.Equal(t, DefaultWidth, s.Width)
	assert.Equal(t, DefaultHeight, s.Height)
	assert.Equal(t, DefaultFrames, s.Frames)
	assert.Equal(t, DefaultNormalize, s.Normalize)
	assert.True(t, s.Watch)
	assert.Equal(t, slog.LevelInfo, s.LogLevel)
	assert.Equal(t, scene.Defaults(), s.Initial)
}

func TestResolveFlagsWin(t *testing.T) {
	c := &Config{FPS: 30, Background: "1,2,3", View: View{Projection: "oblique"}}
	s, err := c.Resolve(Flags{FPS: 120, Background: "4,5,6", Projection: "orthographic", NoWatch: true, LogLevel: "warn"})
	require.NoError(t, err)

	assert.Equal(t, 120, s.FPS)
	assert.Equal(t, render.RGB(4, 5, 6), s.Background)
	assert.Equal(t, scene.Orthographic, s.Initial.Projection)
	assert.False(t, s.Watch)
	assert.Equal(t, slog.LevelWarn, s.LogLevel)
}

func TestResolveInvalid(t *testing.T) {
	neg := -1.0
	big := 150.0
	zero := 0.0
	tests := []struct {
		name  string
		cfg   Config
		flags Flags
	}{
		{"background", Config{Background: "red"}, Flags{}},
		{"background range", Config{}, Flags{Background: "0,0,300"}},
		{"projection flag", Config{}, Flags{Projection: "fisheye"}},
		{"projection file", Config{View: View{Projection: "fisheye"}}, Flags{}},
		{"log level", Config{LogLevel: "loud"}, Flags{}},
		{"normalize", Config{Normalize: &neg}, Flags{}},
		{"zoom range", Config{View: View{CameraZoom: &big}}, Flags{}},
		{"zero scale", Config{View: View{Scale: &zero}}, Flags{}},
		{"fps flag", Config{}, Flags{FPS: 2_000_000_000}},
		{"fps file", Config{FPS: MaxFPS + 1}, Flags{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.cfg.Resolve(tt.flags)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestResolveMaxFPS(t *testing.T) {
	s, err := (&Config{FPS: MaxFPS}).Resolve(Flags{})
	require.NoError(t, err)
	assert.Equal(t, MaxFPS, s.FPS)
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor(" 10,20 , 30")
	require.NoError(t, err)
	assert.Equal(t, render.RGB(10, 20, 30), c)

	_, err = ParseColor("1,2")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
