package pdftext

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

const DefaultDPI = 300

// Runner executes an external program and returns its combined output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return out, ctx.Err()
		}
		return out, fmt.Errorf("%s failed: %v (%s)", name, err, strings.TrimSpace(string(out)))
	}
	return out, nil
}

// RasterArgs builds pdftoppm arguments writing <prefix>-<page>.png files.
// first/last of 0 mean the whole document.
func RasterArgs(pdfPath, prefix string, dpi, first, last int) []string {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	args := []string{"-r", strconv.Itoa(dpi), "-png"}
	if first > 0 {
		args = append(args, "-f", strconv.Itoa(first))
	}
	if last > 0 {
		args = append(args, "-l", strconv.Itoa(last))
	}
	return append(args, pdfPath, prefix)
}

// pageImages lists the PNGs pdftoppm produced for prefix, ordered by page.
// pdftoppm zero-pads the page number depending on the document length.
func pageImages(prefix string) ([]string, error) {
	matches, err := filepath.Glob(prefix + "-*.png")
	if err != nil {
		return nil, err
	}
	type page struct {
		n    int
		path string
	}
	pages := make([]page, 0, len(matches))
	for _, m := range matches {
		num := strings.TrimSuffix(strings.TrimPrefix(m, prefix+"-"), ".png")
		n, err := strconv.Atoi(num)
		if err != nil {
			continue
		}
		pages = append(pages, page{n, m})
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].n < pages[j].n })

	out := make([]string, len(pages))
	for i, p := range pages {
		out[i] = p.path
	}
	return out, nil
}
