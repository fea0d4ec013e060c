package video

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/himanishpuri/studiokit/pkg/models"
)

func argValue(args []string, flag string) string {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == flag {
			return args[i+1]
		}
	}
	return ""
}

func TestClipArgsGIF(t *testing.T) {
	cfg := Config{Width: 640, Height: 360, FPS: 24}
	args := cfg.ClipArgs(ClipSpec{AssetPath: "/tmp/a.gif", TextFile: "/tmp/t.txt", Duration: 2.5, Output: "/tmp/out.mp4"})

	if argValue(args, "-ignore_loop") != "0" || argValue(args, "-i") != "/tmp/a.gif" {
		t.Errorf("GIF input not looped: %v", args)
	}
	if argValue(args, "-t") != "2.500" {
		t.Errorf("Expected -t 2.500, got %q", argValue(args, "-t"))
	}
	vf := argValue(args, "-vf")
	for _, want := range []string{"scale=640:360", "pad=640:360", "fps=24", "drawtext=textfile='/tmp/t.txt'"} {
		if !strings.Contains(vf, want) {
			t.Errorf("Filter %q missing %q", vf, want)
		}
	}
	if args[len(args)-1] != "/tmp/out.mp4" {
		t.Errorf("Output should be last, got %v", args)
	}
}

func TestClipArgsPlainCard(t *testing.T) {
	args := DefaultConfig().ClipArgs(ClipSpec{Duration: 1, Output: "o.mp4"})

	if argValue(args, "-f") != "lavfi" {
		t.Errorf("Plain card should use lavfi source: %v", args)
	}
	if !strings.HasPrefix(argValue(args, "-i"), "color=c=black:s=1280x720") {
		t.Errorf("Unexpected colour source %q", argValue(args, "-i"))
	}
	if strings.Contains(argValue(args, "-vf"), "drawtext") {
		t.Error("Empty text must render a blank card")
	}
}

func TestFilterQuote(t *testing.T) {
	if got := filterQuote("/tmp/it's.txt"); got != `'/tmp/it'\''s.txt'` {
		t.Errorf("filterQuote = %s", got)
	}
}

func TestConcatAndMuxArgs(t *testing.T) {
	list := ConcatList([]string{"/a/clip_0.mp4", "/a/it's.mp4"})
	want := "file '/a/clip_0.mp4'\nfile '/a/it'\\''s.mp4'\n"
	if list != want {
		t.Errorf("ConcatList = %q, want %q", list, want)
	}

	cfg := DefaultConfig()
	cargs := cfg.ConcatArgs("list.txt", "out.mp4")
	if argValue(cargs, "-f") != "concat" || argValue(cargs, "-safe") != "0" || argValue(cargs, "-c") != "copy" {
		t.Errorf("Unexpected concat args %v", cargs)
	}

	margs := cfg.MuxArgs("v.mp4", "a.mp3", "o.mp4")
	if !strings.Contains(strings.Join(margs, " "), "-shortest") || argValue(margs, "-c:v") != "copy" {
		t.Errorf("Unexpected mux args %v", margs)
	}
}

func TestParseProbe(t *testing.T) {
	out := []byte(`{"format":{"filename":"x.mp4","duration":"12.340000","format_name":"mov,mp4"},
		"streams":[{"codec_type":"video","codec_name":"h264","width":1280,"height":720},{"codec_type":"audio","codec_name":"aac"}]}`)

	meta, err := parseProbe(out, "/out/x.mp4")
	if err != nil {
		t.Fatalf("parseProbe failed: %v", err)
	}
	if meta.Filename != "x.mp4" || meta.DurationSec != 12.34 || meta.Width != 1280 || !meta.HasAudio || meta.VideoCodec != "h264" {
		t.Errorf("Unexpected metadata %+v", meta)
	}

	if _, err := parseProbe([]byte(`{"streams":[{"codec_type":"audio"}]}`), "a.mp3"); err == nil {
		t.Error("Expected error when no video stream")
	}
}

// fakeRunner records ffmpeg invocations and creates their output files.
type fakeRunner struct {
	mu    sync.Mutex
	calls [][]string
	fail  string
}

func (f *fakeRunner) run(ctx context.Context, name string, args ...string) ([]byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, append([]string{name}, args...))
	f.mu.Unlock()

	if name == "ffprobe" {
		return []byte(`{"format":{"duration":"3.0","format_name":"mp4"},"streams":[{"codec_type":"video","width":1280,"height":720}]}`), nil
	}
	out := args[len(args)-1]
	if f.fail != "" && strings.Contains(out, f.fail) {
		return nil, errors.New("ffmpeg exploded")
	}
	return nil, os.WriteFile(out, []byte("video"), 0o644)
}

func TestCompositorRender(t *testing.T) {
	gif := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.gif" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte("GIF89a"))
	}))
	defer gif.Close()

	tmp := t.TempDir()
	runner := &fakeRunner{}
	c := NewCompositor(Config{TempDir: tmp}, WithRunner(runner.run))

	segs := []models.BoundSegment{
		{Segment: models.Segment{Text: "hello", DurationSeconds: 1}, AssetURL: gif.URL + "/ok.gif"},
		{Segment: models.Segment{Text: "", StartSeconds: 1, DurationSeconds: 1}},
		{Segment: models.Segment{Text: "bye", StartSeconds: 2, DurationSeconds: 1}, AssetURL: gif.URL + "/missing.gif"},
	}

	var rendered []int
	out := filepath.Join(t.TempDir(), "out", "video.mp4")
	meta, err := c.Render(context.Background(), RenderRequest{Segments: segs, AudioPath: "/music/a.mp3", Output: out},
		func(i, total int, seg models.BoundSegment) { rendered = append(rendered, i) })
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	if _, err := os.Stat(out); err != nil {
		t.Errorf("Output not written: %v", err)
	}
	if meta.Width != 1280 || meta.DurationSec != 3 {
		t.Errorf("Unexpected metadata %+v", meta)
	}
	if len(rendered) != 3 {
		t.Errorf("Expected 3 progress calls, got %v", rendered)
	}

	// 3 clips + concat + mux + probe
	if len(runner.calls) != 6 {
		t.Fatalf("Expected 6 process calls, got %d", len(runner.calls))
	}
	if argValue(runner.calls[0], "-ignore_loop") != "0" {
		t.Errorf("Bound segment should loop its GIF: %v", runner.calls[0])
	}
	if argValue(runner.calls[1], "-f") != "lavfi" || strings.Contains(argValue(runner.calls[1], "-vf"), "drawtext") {
		t.Errorf("Empty segment should be a blank card: %v", runner.calls[1])
	}
	if argValue(runner.calls[2], "-f") != "lavfi" {
		t.Errorf("Failed download should fall back to a plain card: %v", runner.calls[2])
	}
	if argValue(runner.calls[4], "-i") == "" || !strings.Contains(strings.Join(runner.calls[4], " "), "/music/a.mp3") {
		t.Errorf("Expected audio mux call, got %v", runner.calls[4])
	}

	entries, _ := os.ReadDir(tmp)
	if len(entries) != 0 {
		t.Errorf("Scratch directory not cleaned up: %v", entries)
	}
}

func TestDownloadRejectsOversizedAsset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("GIF89a"))
	}))
	defer srv.Close()

	c := NewCompositor(Config{TempDir: t.TempDir()})
	dst := filepath.Join(t.TempDir(), "asset.gif")

	c.maxAsset = 6
	if err := c.download(context.Background(), srv.URL, dst); err != nil {
		t.Fatalf("Asset at the limit should download: %v", err)
	}

	c.maxAsset = 4
	err := c.download(context.Background(), srv.URL, dst)
	if !errors.Is(err, models.ErrTransport) {
		t.Fatalf("Expected ErrTransport for oversized asset, got %v", err)
	}
}

func TestCompositorRenderFailureCleansUp(t *testing.T) {
	tmp := t.TempDir()
	runner := &fakeRunner{fail: "clip_0001"}
	c := NewCompositor(Config{TempDir: tmp}, WithRunner(runner.run))

	segs := []models.BoundSegment{
		{Segment: models.Segment{Text: "a", DurationSeconds: 1}},
		{Segment: models.Segment{Text: "b", DurationSeconds: 1}},
	}
	_, err := c.Render(context.Background(), RenderRequest{Segments: segs, Output: filepath.Join(t.TempDir(), "o.mp4")}, nil)
	if err == nil {
		t.Fatal("Expected render error")
	}

	entries, _ := os.ReadDir(tmp)
	if len(entries) != 0 {
		t.Errorf("Scratch directory not cleaned up after failure: %v", entries)
	}
}

func TestCompositorRejectsEmpty(t *testing.T) {
	_, err := NewCompositor(DefaultConfig()).Render(context.Background(), RenderRequest{Output: "x.mp4"}, nil)
	if !errors.Is(err, models.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}

func TestAudioQuery(t *testing.T) {
	if got := AudioQuery("Band", "Song"); got != "ytsearch1:Band - Song audio" {
		t.Errorf("AudioQuery = %q", got)
	}
	if got := AudioQuery("", "Song"); got != "ytsearch1:Song audio" {
		t.Errorf("AudioQuery = %q", got)
	}
}

func TestRenderWithFFmpeg(t *testing.T) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not available")
	}
	if _, err := exec.LookPath("ffprobe"); err != nil {
		t.Skip("ffprobe not available")
	}

	c := NewCompositor(Config{Width: 160, Height: 90, FPS: 10, TempDir: t.TempDir()})
	out := filepath.Join(t.TempDir(), "real.mp4")
	segs := []models.BoundSegment{
		{Segment: models.Segment{Text: "", DurationSeconds: 0.5}},
		{Segment: models.Segment{Text: "", StartSeconds: 0.5, DurationSeconds: 0.5}},
	}
	meta, err := c.Render(context.Background(), RenderRequest{Segments: segs, Output: out}, nil)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if meta.Width != 160 || meta.Height != 90 {
		t.Errorf("Unexpected size %dx%d", meta.Width, meta.Height)
	}
}
