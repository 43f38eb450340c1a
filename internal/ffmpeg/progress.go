package ffmpeg

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	durationPattern = regexp.MustCompile(`Duration:\s*(\d+):(\d{2}):(\d{2}(?:\.\d+)?)`)
	timePattern     = regexp.MustCompile(`time=\s*(-?\d+):(\d{2}):(\d{2}(?:\.\d+)?)`)
)

// Tracker turns ffmpeg output lines into a monotonic percentage. Values stay
// at or below 99; only the caller reports 100 after verifying the output.
type Tracker struct {
	total       float64
	sawDuration bool
	last        int
}

// NewTracker creates a tracker. fallbackTotal, usually the probed duration,
// is used until a "Duration:" marker appears. Zero means unknown.
func NewTracker(fallbackTotal float64) *Tracker {
	if fallbackTotal < 0 {
		fallbackTotal = 0
	}
	return &Tracker{total: fallbackTotal, last: -1}
}

// Feed consumes one output line. It returns the new percentage and true when
// the percentage increased.
func (t *Tracker) Feed(line string) (int, bool) {
	if !t.sawDuration {
		if m := durationPattern.FindStringSubmatch(line); m != nil {
			if total := clockSeconds(m[1], m[2], m[3]); total > 0 {
				t.total = total
			}
			t.sawDuration = true
			return t.Last(), false
		}
	}
	m := timePattern.FindStringSubmatch(line)
	if m == nil || t.total <= 0 {
		return t.Last(), false
	}
	current := clockSeconds(m[1], m[2], m[3])
	if current < 0 {
		current = 0
	}
	percent := int(current / t.total * 100)
	if percent > 99 {
		percent = 99
	}
	if percent <= t.last {
		return t.Last(), false
	}
	t.last = percent
	return percent, true
}

// Total returns the duration in seconds used as the denominator.
func (t *Tracker) Total() float64 {
	return t.total
}

// Last returns the highest percentage reported so far, or 0.
func (t *Tracker) Last() int {
	if t.last < 0 {
		return 0
	}
	return t.last
}

func clockSeconds(hours, minutes, seconds string) float64 {
	sign := 1.0
	if trimmed, ok := strings.CutPrefix(hours, "-"); ok {
		sign = -1
		hours = trimmed
	}
	h, err := strconv.Atoi(hours)
	if err != nil {
		return 0
	}
	m, err := strconv.Atoi(minutes)
	if err != nil {
		return 0
	}
	s, err := strconv.ParseFloat(seconds, 64)
	if err != nil {
		return 0
	}
	return sign * (float64(h)*3600 + float64(m)*60 + s)
}
