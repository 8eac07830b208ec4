// Package probe extracts input metadata (duration, dimensions, frame rate)
// via a single ffprobe JSON call. The result sizes progress percentages and
// validates geometry transforms before any encode is started.
package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Probe runs one ffprobe JSON call against path using the given ffprobe
// binary and returns the parsed result.
func Probe(ctx context.Context, ffprobeBin, path string) (*Result, error) {
	cmd := exec.CommandContext(ctx, ffprobeBin,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format", "-show_streams",
		path,
	)

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe %q: %w", path, err)
	}

	return ParseJSON(out)
}

// ParseJSON converts raw ffprobe JSON output into a Result.
// Exported for testing without a real ffprobe binary.
func ParseJSON(data []byte) (*Result, error) {
	var raw ffprobeOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse ffprobe JSON: %w", err)
	}
	return buildResult(&raw), nil
}

// --- ffprobe JSON wire types ---

type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	FormatName string `json:"format_name"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
}

type ffprobeStream struct {
	CodecType    string         `json:"codec_type"`
	Width        int            `json:"width"`
	Height       int            `json:"height"`
	Duration     string         `json:"duration"`
	AvgFrameRate string         `json:"avg_frame_rate"`
	Disposition  map[string]int `json:"disposition"`
}

// buildResult picks the first non-attached-pic video stream (cover art is
// reported as a video stream but must not drive transform validation).
func buildResult(raw *ffprobeOutput) *Result {
	r := &Result{
		Duration:   parseFloat(raw.Format.Duration),
		FormatName: raw.Format.FormatName,
		Size:       parseInt64(raw.Format.Size),
	}

	for i := range raw.Streams {
		s := &raw.Streams[i]
		if s.CodecType != "video" || s.Disposition["attached_pic"] == 1 {
			continue
		}
		r.Width = s.Width
		r.Height = s.Height
		r.FrameRate = parseFrameRate(s.AvgFrameRate)
		if r.Duration == 0 {
			r.Duration = parseFloat(s.Duration)
		}
		break
	}
	return r
}

// parseFrameRate handles ffprobe's fractional rates ("24000/1001") as well
// as plain decimals ("23.976").
func parseFrameRate(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if num, den, ok := strings.Cut(s, "/"); ok {
		n := parseFloat(num)
		d := parseFloat(den)
		if d <= 0 {
			return 0
		}
		return n / d
	}
	return parseFloat(s)
}

// --- numeric parsing helpers (ffprobe returns numbers as strings) ---

func parseInt64(s string) int64 {
	n, _ := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return n
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}
