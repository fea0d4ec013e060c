package assets

import (
	"context"

	"github.com/himanishpuri/studiokit/pkg/models"
	"github.com/himanishpuri/studiokit/pkg/studio/timeline"
)

type Logger interface {
	Warnf(format string, args ...any)
	Debugf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Warnf(string, ...any)  {}
func (nopLogger) Debugf(string, ...any) {}

// ProgressFunc is called once per segment after its lookup finished,
// whether or not an asset was bound.
type ProgressFunc func(index, total int, seg models.BoundSegment)

// Resolver looks up one asset per segment, sequentially and in timeline
// order. A failed or empty search leaves the segment unbound; it never
// aborts the run and is never retried.
type Resolver struct {
	searcher Searcher
	log      Logger
}

func NewResolver(s Searcher, log Logger) *Resolver {
	if log == nil {
		log = nopLogger{}
	}
	return &Resolver{searcher: s, log: log}
}

// Resolve returns one BoundSegment per input segment, in the same order.
// A nil searcher binds nothing.
func (r *Resolver) Resolve(ctx context.Context, segments []models.Segment, hook ProgressFunc) []models.BoundSegment {
	out := make([]models.BoundSegment, len(segments))
	for i, seg := range segments {
		b := models.BoundSegment{Segment: seg, SearchPhrase: timeline.SearchPhrase(seg.Text)}

		if b.SearchPhrase != "" && r.searcher != nil && ctx.Err() == nil {
			urls, err := r.searcher.Search(ctx, b.SearchPhrase)
			switch {
			case err != nil:
				r.log.Warnf("asset search for %q failed, rendering plain text: %v", b.SearchPhrase, err)
			case len(urls) == 0:
				r.log.Debugf("no asset for %q", b.SearchPhrase)
			default:
				b.AssetURL = urls[0]
			}
		}

		out[i] = b
		if hook != nil {
			hook(i, len(segments), b)
		}
	}
	return out
}

// BoundCount reports how many segments carry an asset.
func BoundCount(segs []models.BoundSegment) int {
	n := 0
	for _, s := range segs {
		if s.Bound() {
			n++
		}
	}
	return n
}
