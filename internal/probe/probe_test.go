package probe

import (
	"testing"
)

// Realistic ffprobe JSON for an MP4 file with:
//   - 1 H.264 video stream (1920x1080, 24000/1001 fps)
//   - 1 AAC stereo audio stream
//   - 1 attached pic (cover art, must be skipped as the primary video)
const sampleMP4 = `{
  "streams": [
    {
      "index": 0,
      "codec_name": "mjpeg",
      "codec_type": "video",
      "width": 600,
      "height": 900,
      "disposition": { "default": 0, "attached_pic": 1 }
    },
    {
      "index": 1,
      "codec_name": "h264",
      "codec_type": "video",
      "width": 1920,
      "height": 1080,
      "avg_frame_rate": "24000/1001",
      "disposition": { "default": 1, "attached_pic": 0 }
    },
    {
      "index": 2,
      "codec_name": "aac",
      "codec_type": "audio",
      "channels": 2,
      "sample_rate": "48000",
      "disposition": { "default": 1, "attached_pic": 0 }
    }
  ],
  "format": {
    "format_name": "mov,mp4,m4a,3gp,3g2,mj2",
    "duration": "3600.042000",
    "size": "1998123456"
  }
}`

func TestParseJSON(t *testing.T) {
	r, err := ParseJSON([]byte(sampleMP4))
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}

	if r.Width != 1920 || r.Height != 1080 {
		t.Errorf("dimensions = %dx%d, want 1920x1080 (attached pic must be skipped)", r.Width, r.Height)
	}
	if got, want := r.Duration, 3600.042; got != want {
		t.Errorf("Duration = %v, want %v", got, want)
	}
	if r.FrameRate < 23.97 || r.FrameRate > 23.98 {
		t.Errorf("FrameRate = %v, want ~23.976", r.FrameRate)
	}
	if r.FormatName != "mov,mp4,m4a,3gp,3g2,mj2" {
		t.Errorf("FormatName = %q", r.FormatName)
	}
	if r.Size != 1998123456 {
		t.Errorf("Size = %d", r.Size)
	}
	if !r.HasVideo() {
		t.Error("HasVideo() = false, want true")
	}
}

func TestParseJSONNoVideo(t *testing.T) {
	r, err := ParseJSON([]byte(`{"streams":[{"codec_type":"audio","channels":2}],"format":{"duration":"12.5"}}`))
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	if r.HasVideo() {
		t.Error("HasVideo() = true for audio-only input")
	}
	if r.Duration != 12.5 {
		t.Errorf("Duration = %v, want 12.5", r.Duration)
	}
}

func TestParseJSONStreamDurationFallback(t *testing.T) {
	// Matroska often omits format-level duration; the video stream value is used.
	r, err := ParseJSON([]byte(`{
	  "streams":[{"codec_type":"video","width":1280,"height":720,"duration":"60.0","avg_frame_rate":"30/1"}],
	  "format":{"format_name":"matroska,webm"}
	}`))
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	if r.Duration != 60.0 {
		t.Errorf("Duration = %v, want 60 (stream fallback)", r.Duration)
	}
	if r.FrameRate != 30 {
		t.Errorf("FrameRate = %v, want 30", r.FrameRate)
	}
}

func TestParseJSONMalformed(t *testing.T) {
	if _, err := ParseJSON([]byte("not json")); err == nil {
		t.Fatal("ParseJSON accepted malformed input")
	}
}

func TestParseFrameRate(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"30/1", 30},
		{"25", 25},
		{"0/0", 0},
		{"", 0},
		{"junk", 0},
	}
	for _, tt := range tests {
		if got := parseFrameRate(tt.in); got != tt.want {
			t.Errorf("parseFrameRate(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
