package plan

import (
	"path/filepath"
	"strconv"

	"github.com/vidsqueeze/vidsqueeze/internal/probe"
)

// ArgumentPlan is the compiled encoder invocation for one job: the ordered
// argument list (without the output path, which is supplied by the output
// manager once a temporary file is staged), the resolved container format,
// and the input's total duration for progress percentages.
type ArgumentPlan struct {
	Args          []string
	Format        Format
	TotalDuration float64 // seconds
}

// ArgsFor returns the complete argument vector writing to outPath. The muxer
// is passed explicitly because the temporary path's extension carries no
// format information.
func (p *ArgumentPlan) ArgsFor(outPath string) []string {
	args := make([]string, 0, len(p.Args)+3)
	args = append(args, p.Args...)
	args = append(args, "-f", p.Format.Muxer(), outPath)
	return args
}

// Compile validates settings against the probed input and produces the
// encoder argument plan. It fails with *ValidationError before any process
// is spawned or temporary file created.
func Compile(s *EncodeSettings, inputPath, outputPath string, pr *probe.Result) (*ArgumentPlan, error) {
	if err := s.Validate(pr.Width, pr.Height); err != nil {
		return nil, err
	}

	format, err := resolveFormat(s, inputPath, outputPath)
	if err != nil {
		return nil, err
	}

	crf := strconv.Itoa(MapQuality(s.Quality))

	args := []string{
		"-hide_banner", "-nostdin", "-y",
		"-loglevel", "error",
		"-stats", "-stats_period", "1",
		"-i", inputPath,
	}

	// Codec and preset bundle. WebM always uses VP9; otherwise the preset
	// selects the x264 speed/efficiency trade-off.
	if format == FormatWebM {
		args = append(args, "-c:v", "libvpx-vp9", "-crf", crf, "-b:v", "0")
	} else {
		switch s.Preset {
		case PresetSpeed:
			args = append(args,
				"-c:v", "libx264",
				"-preset", "veryfast",
				"-tune", "fastdecode",
				"-crf", crf,
			)
		case PresetQuality:
			args = append(args,
				"-c:v", "libx264",
				"-preset", "slow",
				"-pix_fmt", "yuv420p",
				"-crf", crf,
			)
		}
	}

	args = append(args, "-vf", BuildVideoFilter(s))

	if s.Mute {
		// Drop the audio stream entirely rather than silencing it.
		args = append(args, "-an")
	}

	// Move the indexing metadata to the front for streaming playback.
	// Only the mov/mp4 muxer family understands this flag.
	if s.Preset == PresetQuality && (format == FormatMP4 || format == FormatMOV) {
		args = append(args, "-movflags", "+faststart")
	}

	return &ArgumentPlan{
		Args:          args,
		Format:        format,
		TotalDuration: pr.Duration,
	}, nil
}

// resolveFormat derives the output format: the explicit setting wins, then
// the output file's extension, then the input's extension, then mp4. An
// unsupported explicit format has already failed in ParseFormat; an
// unrecognized extension falls through rather than failing.
func resolveFormat(s *EncodeSettings, inputPath, outputPath string) (Format, error) {
	if s.Format != "" {
		return ParseFormat(string(s.Format))
	}
	if ext := filepath.Ext(outputPath); ext != "" {
		if f, err := ParseFormat(ext); err == nil {
			return f, nil
		}
	}
	if ext := filepath.Ext(inputPath); ext != "" {
		if f, err := ParseFormat(ext); err == nil {
			return f, nil
		}
	}
	return FormatMP4, nil
}
