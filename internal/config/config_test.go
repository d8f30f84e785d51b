package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mauros/dxlight/internal/engine"
	"github.com/mauros/dxlight/internal/render"
)

func TestNormalizeClamps(t *testing.T) {
	c := Config{
		Mode:        "disco",
		Brightness:  140,
		Smoothing:   99,
		FPS:         -3,
		Edge:        0,
		Speed:       400,
		Aspect:      "13:37",
		StaticColor: "not-a-color",
		Monitor:     -1,
	}
	c.Normalize()

	assert.Equal(t, engine.ModeAmbilight, c.Mode)
	assert.Equal(t, 100, c.Brightness)
	assert.Equal(t, 90, c.Smoothing)
	assert.Equal(t, 1, c.FPS)
	assert.Equal(t, 2, c.Edge)
	assert.Equal(t, 100, c.Speed)
	assert.Equal(t, "", c.Aspect)
	assert.Equal(t, "#FF0050", c.StaticColor)
	assert.Equal(t, 0, c.Monitor)
}

func TestNormalizeKeepsValidValues(t *testing.T) {
	c := Default()
	c.Mode = engine.ModeBreathing
	c.Aspect = "21:9"
	before := c
	c.Normalize()
	assert.Equal(t, before, c)
}

func TestModePresets(t *testing.T) {
	c := Default()
	c.Mode = engine.ModeGaming
	c.ApplyModePreset()
	assert.Equal(t, 10, c.Smoothing)
	assert.Equal(t, 144, c.FPS)
	assert.Equal(t, 4, c.Edge)

	c.Mode = engine.ModeFilm
	c.ApplyModePreset()
	assert.Equal(t, 50, c.Smoothing)
	assert.Equal(t, 60, c.FPS)
	assert.Equal(t, 10, c.Edge)

	// Non-preset modes leave the sliders alone.
	c.Smoothing = 33
	c.Mode = engine.ModeStatic
	c.ApplyModePreset()
	assert.Equal(t, 33, c.Smoothing)
}

func TestSnapshotConversion(t *testing.T) {
	c := Default()
	c.StaticColor = "#FF0050"
	s := c.Snapshot(1920, 1080)

	assert.Equal(t, engine.ModeAmbilight, s.Mode)
	assert.InDelta(t, 0.8, s.Brightness, 1e-9)
	assert.InDelta(t, 0.25, s.Alpha, 1e-9)
	assert.Equal(t, 90, s.FPS)
	assert.InDelta(t, 0.06, s.EdgePct, 1e-9)
	assert.InDelta(t, 1.0, s.Speed, 1e-9, "50%% is the 1.0x midpoint")
	assert.Equal(t, render.Color{R: 255, G: 0, B: 80}, s.Base)
	assert.Equal(t, render.CropRegion{}, s.Crop)
}

func TestAspectCropLetterbox(t *testing.T) {
	// 2.35:1 content on a 16:9 monitor crops top and bottom equally.
	crop := AspectCrop("2.35:1", 1920, 1080)
	assert.Zero(t, crop.Left)
	assert.Zero(t, crop.Right)
	assert.Greater(t, crop.Top, 0.0)
	assert.InDelta(t, crop.Top, crop.Bottom, 1e-12)

	contentH := 1920.0 / 2.35
	want := (1080.0 - contentH) / 2.0 / 1080.0
	assert.InDelta(t, want, crop.Top, 1e-12)
	assert.Less(t, crop.Top+crop.Bottom, 1.0)
}

func TestAspectCropPillarbox(t *testing.T) {
	// 4:3 content on a 16:9 monitor crops left and right.
	crop := AspectCrop("4:3", 1920, 1080)
	assert.Zero(t, crop.Top)
	assert.Greater(t, crop.Left, 0.0)
	assert.InDelta(t, crop.Left, crop.Right, 1e-12)
}

func TestAspectCropMatchingRatio(t *testing.T) {
	assert.Equal(t, render.CropRegion{}, AspectCrop("16:9", 1920, 1080))
	assert.Equal(t, render.CropRegion{}, AspectCrop("", 1920, 1080))
	assert.Equal(t, render.CropRegion{}, AspectCrop("nonsense", 1920, 1080))
}

func TestAspectsListsFullScreenFirst(t *testing.T) {
	names := Aspects()
	require.NotEmpty(t, names)
	assert.Equal(t, "", names[0])
	assert.Contains(t, names, "21:9")
}

func TestLoadSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dxlight.yaml")
	c := Default()
	c.Mode = engine.ModeCycle
	c.Mirror = true
	c.Aspect = "32:9"

	require.NoError(t, Save(path, &c))
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, c, *got)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
