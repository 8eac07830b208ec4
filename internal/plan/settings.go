// Package plan maps user-facing compression settings into concrete ffmpeg
// argument lists. All functions here are pure: validation and compilation
// happen before any process is spawned, so a bad setting can never leave a
// partial output behind.
package plan

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Preset selects the speed/efficiency trade-off bundle of encoder flags.
type Preset string

const (
	// PresetSpeed is the fastest encoding mode, tuned for playback decode speed.
	PresetSpeed Preset = "speed"
	// PresetQuality is the slowest, most compression-efficient mode with
	// pixel-format normalization and streaming-friendly container layout.
	PresetQuality Preset = "quality"
)

// ParsePreset converts a user string into a Preset.
func ParsePreset(s string) (Preset, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "speed", "fast":
		return PresetSpeed, nil
	case "quality", "best":
		return PresetQuality, nil
	default:
		return "", &ValidationError{Field: "preset", Reason: fmt.Sprintf("unknown preset %q (use 'speed' or 'quality')", s)}
	}
}

// Format is a supported output container format.
type Format string

const (
	FormatMP4  Format = "mp4"
	FormatMOV  Format = "mov"
	FormatWebM Format = "webm"
	FormatAVI  Format = "avi"
	FormatMKV  Format = "mkv"
)

// ParseFormat converts a user string or file extension into a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(s, "."))) {
	case "mp4":
		return FormatMP4, nil
	case "mov":
		return FormatMOV, nil
	case "webm":
		return FormatWebM, nil
	case "avi":
		return FormatAVI, nil
	case "mkv":
		return FormatMKV, nil
	default:
		return "", &ValidationError{Field: "format", Reason: fmt.Sprintf("unsupported format %q (supported: mp4, mov, webm, avi, mkv)", s)}
	}
}

// Extension returns the file extension without a leading dot.
func (f Format) Extension() string { return string(f) }

// Muxer returns the ffmpeg muxer name for the format. The encoder writes to
// a temporary path whose extension carries no format information, so the
// muxer is always passed explicitly.
func (f Format) Muxer() string {
	if f == FormatMKV {
		return "matroska"
	}
	return string(f)
}

// CropRect is a crop rectangle in source pixels.
type CropRect struct {
	Width  int
	Height int
	X      int
	Y      int
}

// ParseCrop parses "WxH:X:Y" or "W:H:X:Y".
func ParseCrop(s string) (*CropRect, error) {
	bad := func() (*CropRect, error) {
		return nil, &ValidationError{Field: "crop", Reason: fmt.Sprintf("invalid crop %q (use WxH:X:Y or W:H:X:Y)", s)}
	}

	parts := strings.Split(s, ":")
	var fields []string
	switch len(parts) {
	case 3:
		dims := strings.Split(parts[0], "x")
		if len(dims) != 2 {
			return bad()
		}
		fields = []string{dims[0], dims[1], parts[1], parts[2]}
	case 4:
		fields = parts
	default:
		return bad()
	}

	var vals [4]int
	for i, f := range fields {
		if _, err := fmt.Sscanf(f, "%d", &vals[i]); err != nil {
			return bad()
		}
	}
	return &CropRect{Width: vals[0], Height: vals[1], X: vals[2], Y: vals[3]}, nil
}

// validRotations is the closed set of accepted rotation values in degrees.
var validRotations = map[int]bool{
	0: true, 90: true, 180: true, 270: true,
	-90: true, -180: true, -270: true,
}

// EncodeSettings are the user-facing compression settings for one job.
// Optional fields use pointers; nil means "keep the source value".
type EncodeSettings struct {
	Quality int    // 0-100, clamped before mapping to the encoder parameter
	Preset  Preset
	Format  Format // empty: derive from output path, then input

	Width  *int
	Height *int
	FPS    *int

	Mute   bool
	Rotate *int // one of 0, ±90, ±180, ±270
	FlipH  bool
	FlipV  bool
	Crop   *CropRect
}

// Validate checks settings against the closed variant sets and, when source
// dimensions are known, against the input geometry. It never touches the
// filesystem.
func (s *EncodeSettings) Validate(srcWidth, srcHeight int) error {
	if s.Preset != PresetSpeed && s.Preset != PresetQuality {
		return &ValidationError{Field: "preset", Reason: fmt.Sprintf("unknown preset %q", s.Preset)}
	}

	if s.Rotate != nil && !validRotations[*s.Rotate] {
		return &ValidationError{Field: "rotate", Reason: fmt.Sprintf("rotation must be one of 0, ±90, ±180, ±270 (got %d)", *s.Rotate)}
	}

	if s.Width != nil && *s.Width <= 0 {
		return &ValidationError{Field: "width", Reason: fmt.Sprintf("width must be positive (got %d)", *s.Width)}
	}
	if s.Height != nil && *s.Height <= 0 {
		return &ValidationError{Field: "height", Reason: fmt.Sprintf("height must be positive (got %d)", *s.Height)}
	}
	if (s.Width == nil) != (s.Height == nil) {
		return &ValidationError{Field: "scale", Reason: "width and height must be set together"}
	}
	if s.FPS != nil && *s.FPS <= 0 {
		return &ValidationError{Field: "fps", Reason: fmt.Sprintf("fps must be positive (got %d)", *s.FPS)}
	}

	if c := s.Crop; c != nil {
		if c.Width <= 0 || c.Height <= 0 || c.X < 0 || c.Y < 0 {
			return &ValidationError{Field: "crop", Reason: "crop rectangle must have positive size and non-negative offsets"}
		}
		if srcWidth > 0 && srcHeight > 0 {
			if c.X+c.Width > srcWidth || c.Y+c.Height > srcHeight {
				return &ValidationError{
					Field:  "crop",
					Reason: fmt.Sprintf("crop %dx%d+%d+%d exceeds source %dx%d", c.Width, c.Height, c.X, c.Y, srcWidth, srcHeight),
				}
			}
		}
	}

	return nil
}

// ValidationError reports a malformed setting. It is raised before any
// encoder process is spawned or temporary file created.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// DefaultOutputPath derives the output path for an input when none was
// given: "<stem>_compressed.<ext>" in the input's directory. format may be
// empty, in which case the input's extension is kept.
func DefaultOutputPath(inputPath string, format Format) string {
	ext := strings.TrimPrefix(filepath.Ext(inputPath), ".")
	if format != "" {
		ext = format.Extension()
	}
	if ext == "" {
		ext = "mp4"
	}
	stem := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	return filepath.Join(filepath.Dir(inputPath), stem+"_compressed."+ext)
}
