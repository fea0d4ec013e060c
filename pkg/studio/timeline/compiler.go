package timeline

import (
	"fmt"
	"math"
	"strings"

	"github.com/himanishpuri/studiokit/pkg/models"
)

// MinSegmentDuration is the floor applied to any segment whose computed
// duration is zero or negative.
const MinSegmentDuration = 0.1

// ProgressFunc is called once per emitted segment, in timeline order.
type ProgressFunc func(index, total int, seg models.Segment)

type compileOptions struct {
	progress    ProgressFunc
	minDuration float64
}

// Option configures Compile.
type Option func(*compileOptions)

// WithProgress registers a per-segment hook.
func WithProgress(fn ProgressFunc) Option {
	return func(o *compileOptions) {
		o.progress = fn
	}
}

// WithMinDuration overrides MinSegmentDuration. Non-positive values are ignored.
func WithMinDuration(d float64) Option {
	return func(o *compileOptions) {
		if d > 0 {
			o.minDuration = d
		}
	}
}

// Compile turns timestamped lines into a gapless, start-ordered segment list
// closed by a synthetic (totalSeconds, "") line. One segment is emitted per
// input line; segment i lasts until line i+1 (or totalSeconds for the last).
//
// Durations that come out <= 0 (repeated timestamps, or totalSeconds not past
// the last line) are clamped to the minimum duration. When no clamping occurs
// the durations sum to totalSeconds - lines[0].TimestampSeconds.
//
// The input slice is not modified and the result is freshly allocated.
func Compile(lines []models.LyricLine, totalSeconds float64, opts ...Option) ([]models.Segment, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("compile timeline: no synced lyrics: %w", models.ErrNotFound)
	}
	if math.IsNaN(totalSeconds) || math.IsInf(totalSeconds, 0) {
		return nil, fmt.Errorf("compile timeline: total duration %v: %w", totalSeconds, models.ErrInvalidInput)
	}

	o := compileOptions{minDuration: MinSegmentDuration}
	for _, opt := range opts {
		opt(&o)
	}

	closed := make([]models.LyricLine, 0, len(lines)+1)
	closed = append(closed, lines...)
	closed = append(closed, models.LyricLine{TimestampSeconds: totalSeconds})

	segments := make([]models.Segment, 0, len(lines))
	for i := 0; i < len(closed)-1; i++ {
		cur, next := closed[i], closed[i+1]
		d := next.TimestampSeconds - cur.TimestampSeconds
		if d <= 0 {
			d = o.minDuration
		}
		seg := models.Segment{
			Text:            cur.Text,
			StartSeconds:    cur.TimestampSeconds,
			DurationSeconds: d,
		}
		segments = append(segments, seg)
		if o.progress != nil {
			o.progress(i, len(lines), seg)
		}
	}
	return segments, nil
}

// MaxPhraseWords is how many leading words of a lyric form its search phrase.
const MaxPhraseWords = 3

// SearchPhrase returns the asset-search phrase for a lyric: its first
// MaxPhraseWords whitespace-separated tokens. Empty text yields "".
func SearchPhrase(text string) string {
	fields := strings.Fields(text)
	if len(fields) > MaxPhraseWords {
		fields = fields[:MaxPhraseWords]
	}
	return strings.Join(fields, " ")
}

// TotalDuration sums segment durations.
func TotalDuration(segments []models.Segment) float64 {
	var sum float64
	for _, s := range segments {
		sum += s.DurationSeconds
	}
	return sum
}
