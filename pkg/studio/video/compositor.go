package video

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/himanishpuri/studiokit/pkg/models"
	"github.com/himanishpuri/studiokit/pkg/utils"
)

const maxAssetBytes = 32 << 20

type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Debugf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Infof(string, ...any)  {}
func (nopLogger) Warnf(string, ...any)  {}
func (nopLogger) Debugf(string, ...any) {}

// ProgressFunc reports each rendered clip.
type ProgressFunc func(index, total int, seg models.BoundSegment)

// Compositor turns bound segments into one video file.
type Compositor struct {
	cfg  Config
	run  Runner
	http *http.Client
	log  Logger

	maxAsset int64
}

type CompositorOption func(*Compositor)

// WithRunner replaces the process runner (ffmpeg/ffprobe).
func WithRunner(r Runner) CompositorOption {
	return func(c *Compositor) { c.run = r }
}

func WithHTTPClient(h *http.Client) CompositorOption {
	return func(c *Compositor) { c.http = h }
}

func WithLogger(l Logger) CompositorOption {
	return func(c *Compositor) {
		if l != nil {
			c.log = l
		}
	}
}

func NewCompositor(cfg Config, opts ...CompositorOption) *Compositor {
	c := &Compositor{
		cfg:  cfg.withDefaults(),
		run:  ExecRunner,
		http: &http.Client{Timeout: 30 * time.Second},
		log:  nopLogger{},

		maxAsset: maxAssetBytes,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RenderRequest is one render. AudioPath is optional.
type RenderRequest struct {
	Segments  []models.BoundSegment
	AudioPath string
	Output    string
}

// Render builds one clip per segment in timeline order, concatenates them
// and optionally muxes audio. Intermediate files live in a scratch directory
// that is removed whether or not the render succeeds. An asset that cannot
// be downloaded falls back to a plain card.
func (c *Compositor) Render(ctx context.Context, req RenderRequest, hook ProgressFunc) (*Metadata, error) {
	if len(req.Segments) == 0 {
		return nil, fmt.Errorf("render: no segments: %w", models.ErrInvalidInput)
	}
	if req.Output == "" {
		return nil, fmt.Errorf("render: no output path: %w", models.ErrInvalidInput)
	}

	ws, err := utils.NewWorkspace(c.cfg.TempDir, "studiokit-render-*")
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := ws.Cleanup(); err != nil {
			c.log.Warnf("removing %s: %v", ws.Dir, err)
		}
	}()

	clips := make([]string, 0, len(req.Segments))
	for i, seg := range req.Segments {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		spec := ClipSpec{
			Duration: seg.DurationSeconds,
			Output:   ws.Path(fmt.Sprintf("clip_%04d.mp4", i)),
		}
		if seg.Text != "" {
			spec.TextFile = ws.Path(fmt.Sprintf("text_%04d.txt", i))
			if err := os.WriteFile(spec.TextFile, []byte(seg.Text), 0o644); err != nil {
				return nil, fmt.Errorf("writing lyric text: %w", err)
			}
		}
		if seg.Bound() {
			asset := ws.Path(fmt.Sprintf("asset_%04d.gif", i))
			if err := c.download(ctx, seg.AssetURL, asset); err != nil {
				c.log.Warnf("segment %d: asset download failed, using plain card: %v", i, err)
			} else {
				spec.AssetPath = asset
			}
		}

		if _, err := c.run(ctx, c.cfg.FFmpeg, c.cfg.ClipArgs(spec)...); err != nil {
			return nil, fmt.Errorf("rendering segment %d: %w", i, err)
		}
		clips = append(clips, spec.Output)

		if hook != nil {
			hook(i, len(req.Segments), seg)
		}
	}

	listFile := ws.Path("concat.txt")
	if err := os.WriteFile(listFile, []byte(ConcatList(clips)), 0o644); err != nil {
		return nil, fmt.Errorf("writing concat list: %w", err)
	}

	joined := ws.Path("joined.mp4")
	if _, err := c.run(ctx, c.cfg.FFmpeg, c.cfg.ConcatArgs(listFile, joined)...); err != nil {
		return nil, fmt.Errorf("concatenating clips: %w", err)
	}

	final := joined
	if req.AudioPath != "" {
		final = ws.Path("final.mp4")
		if _, err := c.run(ctx, c.cfg.FFmpeg, c.cfg.MuxArgs(joined, req.AudioPath, final)...); err != nil {
			return nil, fmt.Errorf("muxing audio: %w", err)
		}
	}

	if err := utils.MoveFile(final, req.Output); err != nil {
		return nil, fmt.Errorf("moving render to %s: %w", req.Output, err)
	}

	meta, err := Probe(ctx, c.run, c.cfg.FFprobe, req.Output)
	if err != nil {
		c.log.Warnf("probing %s: %v", req.Output, err)
		return &Metadata{Filename: filepath.Base(req.Output)}, nil
	}
	c.log.Infof("rendered %s (%.1fs, %dx%d)", meta.Filename, meta.DurationSec, meta.Width, meta.Height)
	return meta, nil
}

func (c *Compositor) download(ctx context.Context, url, dst string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%v: %w", err, models.ErrTransport)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d: %w", resp.StatusCode, models.ErrTransport)
	}

	f, err := os.Create(dst)
	if err != nil {
		return err
	}

	n, err := io.Copy(f, io.LimitReader(resp.Body, c.maxAsset+1))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("%v: %w", err, models.ErrTransport)
	}
	if n > c.maxAsset {
		return fmt.Errorf("asset larger than %d bytes: %w", c.maxAsset, models.ErrTransport)
	}
	return nil
}
