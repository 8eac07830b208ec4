package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intp(v int) *int { return &v }

func TestBuildVideoFilterOrder(t *testing.T) {
	s := &EncodeSettings{
		Quality: 70,
		Preset:  PresetSpeed,
		Crop:    &CropRect{Width: 1280, Height: 720, X: 10, Y: 20},
		Rotate:  intp(90),
		FlipH:   true,
		Width:   intp(640),
		Height:  intp(360),
		FPS:     intp(30),
	}

	got := BuildVideoFilter(s)
	want := "crop=1280:720:10:20,transpose=1,hflip,scale=640:360," + evenPad + ",fps=30"
	assert.Equal(t, want, got, "filter sequence must be crop, rotate, flip, scale, pad, fps")
}

func TestBuildVideoFilterRotations(t *testing.T) {
	tests := []struct {
		name   string
		rotate int
		want   string
	}{
		{"clockwise 90", 90, "transpose=1," + evenPad},
		{"counter 90", -90, "transpose=2," + evenPad},
		{"270 equals -90", 270, "transpose=2," + evenPad},
		{"minus 270 equals 90", -270, "transpose=1," + evenPad},
		{"180", 180, "hflip,vflip," + evenPad},
		{"minus 180", -180, "hflip,vflip," + evenPad},
		{"zero is a no-op", 0, evenPad},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &EncodeSettings{Preset: PresetSpeed, Rotate: intp(tt.rotate)}
			assert.Equal(t, tt.want, BuildVideoFilter(s))
		})
	}
}

func TestBuildVideoFilterNoTransforms(t *testing.T) {
	s := &EncodeSettings{Preset: PresetQuality}
	assert.Equal(t, evenPad, BuildVideoFilter(s), "the even-dimension pad is always present")
}
