package pdftext

import (
	"context"
	"errors"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/himanishpuri/studiokit/pkg/models"
	"github.com/himanishpuri/studiokit/pkg/utils"
)

type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Debugf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Infof(string, ...any)  {}
func (nopLogger) Warnf(string, ...any)  {}
func (nopLogger) Debugf(string, ...any) {}

// Extractor runs digital or OCR extraction over PDF files on disk.
type Extractor struct {
	engine   Engine
	run      Runner
	pdftoppm string
	tempDir  string
	log      Logger
}

type Option func(*Extractor)

// WithEngine sets the OCR engine. Without one, OCR extraction fails.
func WithEngine(e Engine) Option {
	return func(x *Extractor) { x.engine = e }
}

func WithRunner(r Runner) Option {
	return func(x *Extractor) { x.run = r }
}

func WithPdftoppm(path string) Option {
	return func(x *Extractor) {
		if path != "" {
			x.pdftoppm = path
		}
	}
}

func WithTempDir(dir string) Option {
	return func(x *Extractor) { x.tempDir = dir }
}

func WithLogger(l Logger) Option {
	return func(x *Extractor) {
		if l != nil {
			x.log = l
		}
	}
}

func NewExtractor(opts ...Option) *Extractor {
	x := &Extractor{
		run:      execRunner,
		pdftoppm: "pdftoppm",
		log:      nopLogger{},
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

var ErrNoEngine = errors.New("no OCR engine configured")

// Extract reads text from the PDF at path. hook, if set, is called before
// each OCR page.
func (x *Extractor) Extract(ctx context.Context, path string, opts Options, hook PageProgress) (*Result, error) {
	if opts.Method == "" {
		opts.Method = MethodDigital
	}
	lang, langs, err := ParseLanguage(opts.Language)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("pdf %s: %w", path, err)
	}

	var pages []string
	var text string
	switch opts.Method {
	case MethodDigital:
		pages, err = ReadDigitalPages(path)
		if err != nil {
			return nil, err
		}
		text = joinPages(pages, true)
		lang = DefaultLanguage
	case MethodOCR:
		pages, err = x.ocrPages(ctx, path, langs, opts.DPI, hook)
		if err != nil {
			return nil, err
		}
		text = joinPages(pages, false)
	default:
		return nil, fmt.Errorf("extraction method %q: %w", opts.Method, models.ErrInvalidInput)
	}

	text = Normalize(text)
	res := &Result{
		Text:     text,
		Method:   opts.Method,
		Language: lang,
		Pages:    len(pages),
		Chars:    utf8.RuneCountInString(text),
	}
	if res.Empty() {
		x.log.Warnf("%s: %s", path, EmptyWarning)
	} else {
		x.log.Infof("extracted %d chars from %d pages (%s)", res.Chars, res.Pages, res.Method)
	}
	return res, nil
}

func (x *Extractor) ocrPages(ctx context.Context, path string, langs []string, dpi int, hook PageProgress) ([]string, error) {
	if x.engine == nil {
		return nil, ErrNoEngine
	}

	ws, err := utils.NewWorkspace(x.tempDir, "studiokit-ocr-*")
	if err != nil {
		return nil, err
	}
	defer ws.Cleanup()

	images, err := x.rasterize(ctx, path, ws, dpi, 0, 0)
	if err != nil {
		return nil, err
	}

	pages := make([]string, 0, len(images))
	for i, img := range images {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if hook != nil {
			hook(i+1, len(images))
		}
		x.log.Debugf("%s", ProgressMessage(i+1, len(images)))

		data, err := os.ReadFile(img)
		if err != nil {
			return nil, fmt.Errorf("reading page %d image: %w", i+1, err)
		}
		txt, err := x.engine.Recognize(ctx, data, langs)
		if err != nil {
			return nil, fmt.Errorf("ocr page %d: %w", i+1, err)
		}
		pages = append(pages, txt)
	}
	return pages, nil
}

func (x *Extractor) rasterize(ctx context.Context, path string, ws *utils.Workspace, dpi, first, last int) ([]string, error) {
	prefix := ws.Path("page")
	if _, err := x.run(ctx, x.pdftoppm, RasterArgs(path, prefix, dpi, first, last)...); err != nil {
		return nil, fmt.Errorf("rasterizing pdf: %w", err)
	}
	images, err := pageImages(prefix)
	if err != nil {
		return nil, err
	}
	if len(images) == 0 {
		return nil, fmt.Errorf("rasterizing pdf: no pages produced")
	}
	return images, nil
}

// Preview renders the first page as a PNG no wider than maxWidth.
func (x *Extractor) Preview(ctx context.Context, path string, maxWidth int) ([]byte, error) {
	ws, err := utils.NewWorkspace(x.tempDir, "studiokit-preview-*")
	if err != nil {
		return nil, err
	}
	defer ws.Cleanup()

	images, err := x.rasterize(ctx, path, ws, PreviewDPI, 1, 1)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(images[0])
	if err != nil {
		return nil, err
	}
	if maxWidth <= 0 {
		maxWidth = PreviewMaxWidth
	}
	return Downscale(data, maxWidth)
}
