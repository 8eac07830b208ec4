package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidsqueeze/vidsqueeze/internal/plan"
)

func TestParseFlagsDefaults(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, ParseFlags(&cfg, []string{"in.mp4"}))

	assert.Equal(t, []string{"in.mp4"}, cfg.Inputs)
	assert.Equal(t, 70, cfg.Quality)
	assert.Equal(t, "speed", cfg.Preset)
	assert.Equal(t, 5, cfg.KillGraceSeconds)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.Overwrite)
}

func TestParseFlagsOverrides(t *testing.T) {
	cfg := DefaultConfig()
	args := []string{
		"-q", "90", "-p", "quality", "-f", "webm", "-o", "out.webm",
		"--rotate", "90", "--crop", "640x480:10:20", "--mute", "-y", "-v",
		"clip.mp4",
	}
	require.NoError(t, ParseFlags(&cfg, args))

	assert.Equal(t, 90, cfg.Quality)
	assert.Equal(t, "quality", cfg.Preset)
	assert.Equal(t, "webm", cfg.Format)
	assert.Equal(t, "out.webm", cfg.Output)
	assert.Equal(t, 90, cfg.Rotate)
	assert.True(t, cfg.Mute)
	assert.True(t, cfg.Overwrite)
	assert.Equal(t, "debug", cfg.LogLevel, "verbose selects debug logging")
	assert.Equal(t, []string{"clip.mp4"}, cfg.Inputs)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"ok", func(c *Config) {}, ""},
		{"no inputs", func(c *Config) { c.Inputs = nil }, "at least one input"},
		{"output with many inputs", func(c *Config) {
			c.Inputs = []string{"a.mp4", "b.mp4"}
			c.Output = "out.mp4"
		}, "exactly one input"},
		{"quality too high", func(c *Config) { c.Quality = 101 }, "out of range"},
		{"quality negative", func(c *Config) { c.Quality = -1 }, "out of range"},
		{"bad preset", func(c *Config) { c.Preset = "turbo" }, "preset"},
		{"bad format", func(c *Config) { c.Format = "ogv" }, "format"},
		{"bad crop", func(c *Config) { c.Crop = "nope" }, "crop"},
		{"zero grace", func(c *Config) { c.KillGraceSeconds = 0 }, "grace"},
		{"check mode skips input requirement", func(c *Config) {
			c.Inputs = nil
			c.CheckOnly = true
		}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Inputs = []string{"in.mp4"}
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestSettingsConversion(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Quality = 85
	cfg.Preset = "quality"
	cfg.Format = "mkv"
	cfg.Width = 1280
	cfg.Height = 720
	cfg.FPS = 30
	cfg.Rotate = -90
	cfg.Crop = "640x480:0:0"
	cfg.Mute = true

	s, err := cfg.Settings()
	require.NoError(t, err)

	assert.Equal(t, 85, s.Quality)
	assert.Equal(t, plan.PresetQuality, s.Preset)
	assert.Equal(t, plan.FormatMKV, s.Format)
	require.NotNil(t, s.Width)
	assert.Equal(t, 1280, *s.Width)
	require.NotNil(t, s.Rotate)
	assert.Equal(t, -90, *s.Rotate)
	require.NotNil(t, s.Crop)
	assert.Equal(t, plan.CropRect{Width: 640, Height: 480}, *s.Crop)
	assert.True(t, s.Mute)
}

func TestSettingsZeroMeansKeepSource(t *testing.T) {
	cfg := DefaultConfig()
	s, err := cfg.Settings()
	require.NoError(t, err)

	assert.Nil(t, s.Width)
	assert.Nil(t, s.Height)
	assert.Nil(t, s.FPS)
	assert.Nil(t, s.Rotate)
	assert.Nil(t, s.Crop)
	assert.Equal(t, plan.Format(""), s.Format)
}

func TestLoadFileOverlaysAndFlagsWin(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
ffmpeg_path: /opt/ffmpeg/bin/ffmpeg
verify_encoder: true
protected_dirs:
  - /srv/archive
quality: 40
log_level: warn
`), 0o644))

	cfg := DefaultConfig()
	require.NoError(t, LoadFile(&cfg, path))

	assert.Equal(t, "/opt/ffmpeg/bin/ffmpeg", cfg.FFmpegPath)
	assert.True(t, cfg.VerifyEncoder)
	assert.Equal(t, []string{"/srv/archive"}, cfg.ExtraProtectedDirs)
	assert.Equal(t, 40, cfg.Quality)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "speed", cfg.Preset, "unset file keys keep their defaults")

	// Flags layer after the file.
	require.NoError(t, ParseFlags(&cfg, []string{"-q", "95", "in.mp4"}))
	assert.Equal(t, 95, cfg.Quality)
	assert.Equal(t, "/opt/ffmpeg/bin/ffmpeg", cfg.FFmpegPath)
}

func TestConfigPathFromArgs(t *testing.T) {
	assert.Equal(t, "/x/y.yaml", ConfigPathFromArgs([]string{"--config", "/x/y.yaml", "in.mp4"}))
	assert.Equal(t, "/x/y.yaml", ConfigPathFromArgs([]string{"--config=/x/y.yaml"}))
	assert.Equal(t, "/x/y.yaml", ConfigPathFromArgs([]string{"-config", "/x/y.yaml"}))
}

func TestLoadFileMissing(t *testing.T) {
	cfg := DefaultConfig()
	assert.Error(t, LoadFile(&cfg, filepath.Join(t.TempDir(), "nope.yaml")))
}
