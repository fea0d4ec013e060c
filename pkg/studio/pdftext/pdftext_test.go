package pdftext

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/himanishpuri/studiokit/pkg/models"
)

func TestParseMethod(t *testing.T) {
	tests := map[string]Method{
		"":           MethodDigital,
		"digital":    MethodDigital,
		"pdfplumber": MethodDigital,
		"OCR":        MethodOCR,
		"tesseract":  MethodOCR,
	}
	for in, want := range tests {
		got, err := ParseMethod(in)
		if err != nil || got != want {
			t.Errorf("ParseMethod(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseMethod("magic"); !errors.Is(err, models.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}

func TestParseLanguage(t *testing.T) {
	code, langs, err := ParseLanguage("eng+ben (English & Bengali)")
	if err != nil {
		t.Fatalf("ParseLanguage failed: %v", err)
	}
	if code != "eng+ben" || !reflect.DeepEqual(langs, []string{"eng", "ben"}) {
		t.Errorf("Got %q %v", code, langs)
	}

	code, _, _ = ParseLanguage("")
	if code != DefaultLanguage {
		t.Errorf("Empty language should default to %q, got %q", DefaultLanguage, code)
	}

	if _, _, err := ParseLanguage("fra"); !errors.Is(err, models.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for unsupported language, got %v", err)
	}
}

func TestNormalize(t *testing.T) {
	in := "cafe\u0301\r\nline\x00two\r"
	want := "caf\u00e9\nlinetwo\n"
	if got := Normalize(in); got != want {
		t.Errorf("Normalize = %q, want %q", got, want)
	}
	if got := Normalize("ok\xffok"); got != "okok" {
		t.Errorf("Invalid UTF-8 not dropped: %q", got)
	}
}

func TestJoinPages(t *testing.T) {
	pages := []string{"one", "", "three"}
	if got := joinPages(pages, true); got != "one\n\nthree\n\n" {
		t.Errorf("joinPages skip = %q", got)
	}
	if got := joinPages(pages, false); got != "one\n\n\n\nthree\n\n" {
		t.Errorf("joinPages keep = %q", got)
	}
}

func TestRasterArgs(t *testing.T) {
	got := RasterArgs("in.pdf", "/tmp/x/page", 0, 1, 1)
	want := []string{"-r", "300", "-png", "-f", "1", "-l", "1", "in.pdf", "/tmp/x/page"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("RasterArgs = %v, want %v", got, want)
	}
}

func TestPageImagesOrder(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"page-10.png", "page-02.png", "page-1.png", "page-x.png", "other-3.png"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	got, err := pageImages(filepath.Join(dir, "page"))
	if err != nil {
		t.Fatalf("pageImages failed: %v", err)
	}
	var names []string
	for _, p := range got {
		names = append(names, filepath.Base(p))
	}
	if !reflect.DeepEqual(names, []string{"page-1.png", "page-02.png", "page-10.png"}) {
		t.Errorf("pageImages = %v", names)
	}
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, h/2, color.Black)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func TestDownscale(t *testing.T) {
	out, err := Downscale(testPNG(t, 1800, 1200), 900)
	if err != nil {
		t.Fatalf("Downscale failed: %v", err)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("Output is not a PNG: %v", err)
	}
	if cfg.Width != 900 || cfg.Height != 600 {
		t.Errorf("Expected 900x600, got %dx%d", cfg.Width, cfg.Height)
	}

	out, _ = Downscale(testPNG(t, 300, 100), 900)
	cfg, _ = png.DecodeConfig(bytes.NewReader(out))
	if cfg.Width != 300 {
		t.Errorf("Small image should not be upscaled, got width %d", cfg.Width)
	}
}

// fakeRaster writes n page images the way pdftoppm names them.
func fakeRaster(t *testing.T, n int, calls *[][]string) Runner {
	return func(ctx context.Context, name string, args ...string) ([]byte, error) {
		*calls = append(*calls, append([]string{name}, args...))
		prefix := args[len(args)-1]
		for i := 1; i <= n; i++ {
			if err := os.WriteFile(prefix+"-"+string(rune('0'+i))+".png", testPNG(t, 40, 20), 0o644); err != nil {
				return nil, err
			}
		}
		return nil, nil
	}
}

type fakeEngine struct {
	langs [][]string
	texts []string
}

func (f *fakeEngine) Recognize(ctx context.Context, img []byte, languages []string) (string, error) {
	f.langs = append(f.langs, languages)
	txt := f.texts[0]
	f.texts = f.texts[1:]
	return txt, nil
}

func writeFakePDF(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "doc.pdf")
	if err := os.WriteFile(p, []byte("%PDF-1.4\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestExtractOCR(t *testing.T) {
	tmp := t.TempDir()
	var calls [][]string
	engine := &fakeEngine{texts: []string{"প্রথম", "second"}}
	x := NewExtractor(WithEngine(engine), WithRunner(fakeRaster(t, 2, &calls)), WithTempDir(tmp))

	var progress []string
	res, err := x.Extract(context.Background(), writeFakePDF(t), Options{Method: MethodOCR, Language: "eng+ben"},
		func(page, total int) { progress = append(progress, ProgressMessage(page, total)) })
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if res.Text != "প্রথম\n\nsecond\n\n" {
		t.Errorf("Unexpected text %q", res.Text)
	}
	if res.Pages != 2 || res.Language != "eng+ben" || res.Method != MethodOCR {
		t.Errorf("Unexpected result %+v", res)
	}
	if !reflect.DeepEqual(progress, []string{"Processing page 1/2...", "Processing page 2/2..."}) {
		t.Errorf("Progress = %v", progress)
	}
	if !reflect.DeepEqual(engine.langs[0], []string{"eng", "ben"}) {
		t.Errorf("Engine languages = %v", engine.langs[0])
	}
	if calls[0][0] != "pdftoppm" || calls[0][2] != "300" {
		t.Errorf("Unexpected raster call %v", calls[0])
	}

	entries, _ := os.ReadDir(tmp)
	if len(entries) != 0 {
		t.Errorf("OCR scratch dir not removed: %v", entries)
	}
}

func TestExtractOCRWithoutEngine(t *testing.T) {
	var calls [][]string
	x := NewExtractor(WithRunner(fakeRaster(t, 1, &calls)), WithTempDir(t.TempDir()))
	_, err := x.Extract(context.Background(), writeFakePDF(t), Options{Method: MethodOCR}, nil)
	if !errors.Is(err, ErrNoEngine) {
		t.Errorf("Expected ErrNoEngine, got %v", err)
	}
}

func TestExtractEmptyOCRIsNotAnError(t *testing.T) {
	var calls [][]string
	x := NewExtractor(WithEngine(&fakeEngine{texts: []string{"  "}}), WithRunner(fakeRaster(t, 1, &calls)), WithTempDir(t.TempDir()))
	res, err := x.Extract(context.Background(), writeFakePDF(t), Options{Method: MethodOCR}, nil)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if !res.Empty() {
		t.Errorf("Expected empty result, got %q", res.Text)
	}
}

func TestExtractDigitalRejectsGarbage(t *testing.T) {
	p := filepath.Join(t.TempDir(), "bad.pdf")
	os.WriteFile(p, []byte("definitely not a pdf"), 0o644)

	if _, err := NewExtractor().Extract(context.Background(), p, Options{Method: MethodDigital}, nil); err == nil {
		t.Error("Expected error for non-PDF input")
	}
}

func TestExtractMissingFile(t *testing.T) {
	_, err := NewExtractor().Extract(context.Background(), "/nonexistent/x.pdf", Options{}, nil)
	if err == nil || !strings.Contains(err.Error(), "x.pdf") {
		t.Errorf("Expected missing file error, got %v", err)
	}
}

func TestPreview(t *testing.T) {
	var calls [][]string
	x := NewExtractor(WithRunner(fakeRaster(t, 1, &calls)), WithTempDir(t.TempDir()))

	out, err := x.Preview(context.Background(), writeFakePDF(t), 20)
	if err != nil {
		t.Fatalf("Preview failed: %v", err)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(out))
	if err != nil || cfg.Width != 20 {
		t.Errorf("Unexpected preview %+v, %v", cfg, err)
	}
	if !reflect.DeepEqual(calls[0][1:8], []string{"-r", "100", "-png", "-f", "1", "-l", "1"}) {
		t.Errorf("Preview should rasterize only page 1: %v", calls[0])
	}
}
