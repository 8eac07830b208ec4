// Package config holds runtime configuration: defaults, an optional YAML
// config file, CLI flag parsing, and validation.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/vidsqueeze/vidsqueeze/internal/plan"
)

// Config holds all runtime settings. It is populated by [DefaultConfig],
// optionally overlaid by [LoadFile], and then mutated by [ParseFlags] before
// being passed (by pointer) to packages that need it.
type Config struct {
	// Inputs (positional args): files and/or directories.
	Inputs []string
	// Output is the explicit output path; only valid with a single input.
	// Empty selects the default "<stem>_compressed.<ext>" beside each input.
	Output string

	// Encode settings.
	Quality int    // 0-100, default 70.
	Preset  string // "speed" (default) or "quality".
	Format  string // Empty: derive from output, then input extension.
	Width   int    // 0: keep source width.
	Height  int    // 0: keep source height.
	FPS     int    // 0: keep source frame rate.
	Mute    bool
	Rotate  int    // Degrees; 0 means no rotation.
	FlipH   bool
	FlipV   bool
	Crop    string // "WxH:X:Y", empty: no crop.

	// Behavior flags.
	Overwrite bool
	Info      bool // Probe and print metadata only.
	CheckOnly bool // Run encoder diagnostics and exit.
	JSON      bool // Machine-readable results on stdout.

	// Encoder resolution.
	FFmpegPath    string // Trusted path; fatal if set but unusable.
	VerifyEncoder bool   // Verify the bundled binary with -version.

	// Safety.
	ExtraProtectedDirs []string
	KillGraceSeconds   int // Default 5.

	// Logging.
	Verbose  bool
	LogLevel string // Default "info"; Verbose forces "debug".
	LogFile  string // Optional tee target.

	// ConfigFile is the YAML file the overrides came from (informational;
	// resolution happens before flag parsing).
	ConfigFile string
}

// DefaultConfig returns a Config with all defaults applied. Used as the base
// before [LoadFile] and [ParseFlags] layer their overrides.
func DefaultConfig() Config {
	return Config{
		Quality:          70,
		Preset:           string(plan.PresetSpeed),
		KillGraceSeconds: 5,
		LogLevel:         "info",
	}
}

// Validate checks cross-field constraints and everything Settings will need.
// It runs after all override layers so errors name the effective values.
func (c *Config) Validate() error {
	if c.CheckOnly {
		return nil
	}
	if len(c.Inputs) == 0 {
		return errors.New("need at least one input file or directory")
	}
	if c.Output != "" && len(c.Inputs) != 1 {
		return errors.New("an explicit output path requires exactly one input")
	}
	if c.Quality < 0 || c.Quality > 100 {
		return fmt.Errorf("quality %d out of range (0-100)", c.Quality)
	}
	if c.KillGraceSeconds <= 0 {
		return fmt.Errorf("kill grace must be positive, got %d", c.KillGraceSeconds)
	}
	if _, err := plan.ParsePreset(c.Preset); err != nil {
		return err
	}
	if c.Format != "" {
		if _, err := plan.ParseFormat(c.Format); err != nil {
			return err
		}
	}
	if c.Crop != "" {
		if _, err := plan.ParseCrop(c.Crop); err != nil {
			return err
		}
	}
	return nil
}

// Settings converts the flat flag values into the typed encode settings.
// Zero-valued optional fields become nil pointers (keep source behavior).
func (c *Config) Settings() (*plan.EncodeSettings, error) {
	preset, err := plan.ParsePreset(c.Preset)
	if err != nil {
		return nil, err
	}

	s := &plan.EncodeSettings{
		Quality: c.Quality,
		Preset:  preset,
		Mute:    c.Mute,
		FlipH:   c.FlipH,
		FlipV:   c.FlipV,
	}
	if c.Format != "" {
		f, err := plan.ParseFormat(c.Format)
		if err != nil {
			return nil, err
		}
		s.Format = f
	}
	if c.Width != 0 {
		s.Width = &c.Width
	}
	if c.Height != 0 {
		s.Height = &c.Height
	}
	if c.FPS != 0 {
		s.FPS = &c.FPS
	}
	if c.Rotate != 0 {
		s.Rotate = &c.Rotate
	}
	if c.Crop != "" {
		crop, err := plan.ParseCrop(c.Crop)
		if err != nil {
			return nil, err
		}
		s.Crop = crop
	}
	return s, nil
}

// KillGrace returns the termination grace period as a duration.
func (c *Config) KillGrace() time.Duration {
	return time.Duration(c.KillGraceSeconds) * time.Second
}
