package probe

// Result is the fully parsed output of a single ffprobe JSON call against
// an input file. It carries exactly the metadata the compression pipeline
// needs: total duration (for progress percentages), dimensions and frame
// rate (for transform validation), and the container family.
type Result struct {
	Duration   float64 // seconds; 0 when the container does not report it
	Width      int
	Height     int
	FrameRate  float64 // frames per second; 0 when unknown
	FormatName string  // comma-separated ffprobe format list, e.g. "mov,mp4,m4a,3gp,3g2,mj2"
	Size       int64   // bytes, as reported by the container
}

// HasVideo reports whether a video stream with usable dimensions was found.
func (r *Result) HasVideo() bool {
	return r.Width > 0 && r.Height > 0
}
