package plan

// Quality maps to the encoder's CRF rate-control value through a breakpoint
// table. The relationship is inverse: a higher user quality yields a lower
// CRF. Values between breakpoints are linearly interpolated and truncated,
// so the mapping is deterministic, total over [0,100], and monotonically
// non-increasing.
//
// The breakpoints lie on the historical linear 24-36 mapping, and truncation
// matches its integer arithmetic, so every quality reproduces the CRF that
// existing outputs were encoded with.
var qualityTable = []struct {
	quality int
	crf     float64
}{
	{0, 36},
	{25, 33},
	{50, 30},
	{75, 27},
	{100, 24},
}

// MapQuality converts a user quality score to the encoder CRF parameter.
// Out-of-range input is clamped to [0,100] before mapping.
func MapQuality(quality int) int {
	if quality < 0 {
		quality = 0
	}
	if quality > 100 {
		quality = 100
	}

	for i := 1; i < len(qualityTable); i++ {
		lo, hi := qualityTable[i-1], qualityTable[i]
		if quality > hi.quality {
			continue
		}
		t := float64(quality-lo.quality) / float64(hi.quality-lo.quality)
		return int(lo.crf + t*(hi.crf-lo.crf))
	}
	return int(qualityTable[len(qualityTable)-1].crf)
}
