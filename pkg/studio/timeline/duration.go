package timeline

import (
	"fmt"
	"math"
	"regexp"
	"strconv"

	"github.com/himanishpuri/studiokit/pkg/models"
)

// FallbackTailSeconds is added to the last lyric timestamp when the track
// duration string cannot be parsed.
const FallbackTailSeconds = 5.0

var durationRe = regexp.MustCompile(`(?i)^\s*(\d+)\s*m\s*(\d+)\s*s\s*$`)

// ParseDuration parses "<minutes>m <seconds>s" (e.g. "3m 45s", "3M45S") into
// whole seconds. Anything else yields an error wrapping models.ErrFormat.
func ParseDuration(s string) (int, error) {
	m := durationRe.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("duration %q: %w", s, models.ErrFormat)
	}
	minutes, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, fmt.Errorf("duration %q minutes: %w", s, models.ErrFormat)
	}
	seconds, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, fmt.Errorf("duration %q seconds: %w", s, models.ErrFormat)
	}
	if minutes > (math.MaxInt-seconds)/60 {
		return 0, fmt.Errorf("duration %q out of range: %w", s, models.ErrFormat)
	}
	return minutes*60 + seconds, nil
}

// ResolveDuration picks the total track length used to close the timeline:
// the parsed duration string when valid, otherwise the last lyric timestamp
// plus FallbackTailSeconds. fallback reports which branch was taken.
func ResolveDuration(duration string, lines []models.LyricLine) (total float64, fallback bool) {
	if secs, err := ParseDuration(duration); err == nil {
		return float64(secs), false
	}
	if len(lines) == 0 {
		return FallbackTailSeconds, true
	}
	return lines[len(lines)-1].TimestampSeconds + FallbackTailSeconds, true
}

// FormatDuration renders whole seconds back into the "Xm Ys" form.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%dm %ds", seconds/60, seconds%60)
}
