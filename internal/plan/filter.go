package plan

import (
	"fmt"
	"strings"
)

// evenPad keeps both output dimensions even; yuv420p-family pixel formats
// reject odd sizes, which otherwise surface as an opaque encoder failure
// after rotation or odd-sized crops.
const evenPad = "pad=ceil(iw/2)*2:ceil(ih/2)*2"

// BuildVideoFilter composes the geometry transforms into one comma-joined
// ffmpeg -vf expression. The sequence is order-significant and fixed:
// crop → rotate → flip → scale → pad → frame rate.
func BuildVideoFilter(s *EncodeSettings) string {
	var filters []string

	if c := s.Crop; c != nil {
		filters = append(filters, fmt.Sprintf("crop=%d:%d:%d:%d", c.Width, c.Height, c.X, c.Y))
	}

	if s.Rotate != nil {
		switch *s.Rotate % 360 {
		case 90, -270:
			filters = append(filters, "transpose=1")
		case -90, 270:
			filters = append(filters, "transpose=2")
		case 180, -180:
			filters = append(filters, "hflip", "vflip")
		}
	}

	if s.FlipH {
		filters = append(filters, "hflip")
	}
	if s.FlipV {
		filters = append(filters, "vflip")
	}

	if s.Width != nil && s.Height != nil {
		filters = append(filters, fmt.Sprintf("scale=%d:%d", *s.Width, *s.Height))
	}

	filters = append(filters, evenPad)

	if s.FPS != nil {
		filters = append(filters, fmt.Sprintf("fps=%d", *s.FPS))
	}

	return strings.Join(filters, ",")
}
