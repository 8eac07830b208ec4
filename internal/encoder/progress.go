package encoder

import (
	"regexp"
	"strconv"
	"time"
)

// PatternCache holds the compiled expressions for the encoder's stats lines.
// Built once at startup and shared read-only across jobs; Parser instances
// never compile patterns per line.
type PatternCache struct {
	time  *regexp.Regexp
	fps   *regexp.Regexp
	speed *regexp.Regexp
}

// NewPatternCache compiles the stats-line patterns.
func NewPatternCache() *PatternCache {
	return &PatternCache{
		time:  regexp.MustCompile(`time=(\d+):(\d{2}):(\d{2}(?:\.\d+)?)`),
		fps:   regexp.MustCompile(`fps=\s*([\d.]+)`),
		speed: regexp.MustCompile(`speed=\s*([\d.]+)x`),
	}
}

// Frame is one progress snapshot derived from a single stats line. Optional
// values carry a Has flag instead of sentinels.
type Frame struct {
	Elapsed time.Duration // media time encoded so far

	FPS    float64
	HasFPS bool

	Percent    float64 // 0..100, non-decreasing within a job
	HasPercent bool

	ETA    time.Duration
	HasETA bool
}

// Parser extracts Frames from one job's diagnostic stream. It keeps just
// enough state to make percent monotonic and to estimate ETA; one Parser per
// job, never shared.
type Parser struct {
	cache       *PatternCache
	total       time.Duration
	started     time.Time
	lastPercent float64
}

// NewParser returns a parser for a stream whose source media has the given
// total duration (zero when unknown; percent and ETA are then omitted).
func NewParser(cache *PatternCache, total time.Duration) *Parser {
	return &Parser{cache: cache, total: total, started: time.Now()}
}

// ParseLine extracts a Frame from one diagnostic line. Lines without a
// time= token are not stats lines and are ignored (ok=false), never errors.
func (p *Parser) ParseLine(line string) (Frame, bool) {
	m := p.cache.time.FindStringSubmatch(line)
	if m == nil {
		return Frame{}, false
	}

	hours, _ := strconv.Atoi(m[1])
	mins, _ := strconv.Atoi(m[2])
	secs, _ := strconv.ParseFloat(m[3], 64)
	elapsed := time.Duration(hours)*time.Hour +
		time.Duration(mins)*time.Minute +
		time.Duration(secs*float64(time.Second))

	f := Frame{Elapsed: elapsed}

	if fm := p.cache.fps.FindStringSubmatch(line); fm != nil {
		if v, err := strconv.ParseFloat(fm[1], 64); err == nil {
			f.FPS = v
			f.HasFPS = true
		}
	}

	var speed float64
	hasSpeed := false
	if sm := p.cache.speed.FindStringSubmatch(line); sm != nil {
		if v, err := strconv.ParseFloat(sm[1], 64); err == nil && v > 0 {
			speed = v
			hasSpeed = true
		}
	}

	if p.total > 0 {
		pct := float64(elapsed) / float64(p.total) * 100
		if pct < 0 {
			pct = 0
		}
		if pct > 100 {
			pct = 100
		}
		// Stats lines can repeat a timestamp after a flush; never go backwards.
		if pct < p.lastPercent {
			pct = p.lastPercent
		}
		p.lastPercent = pct
		f.Percent = pct
		f.HasPercent = true

		remaining := p.total - elapsed
		if remaining < 0 {
			remaining = 0
		}
		switch {
		case hasSpeed:
			f.ETA = time.Duration(float64(remaining) / speed)
			f.HasETA = true
		case pct > 0:
			// No speed token: scale the wall clock by the work left.
			wall := time.Since(p.started)
			f.ETA = time.Duration(float64(wall) * (100 - pct) / pct)
			f.HasETA = true
		}
	}

	return f, true
}
