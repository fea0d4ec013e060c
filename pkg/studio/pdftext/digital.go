package pdftext

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ReadDigitalPages returns the text layer of every page, in order. Pages
// without a text layer yield "".
func ReadDigitalPages(path string) (pages []string, err error) {
	defer func() {
		// the parser panics on some malformed documents
		if r := recover(); r != nil {
			pages, err = nil, fmt.Errorf("reading %s: malformed pdf: %v", path, r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening pdf: %w", err)
	}
	defer f.Close()

	n := r.NumPage()
	pages = make([]string, 0, n)
	for i := 1; i <= n; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		txt, err := p.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		pages = append(pages, strings.TrimRight(txt, " \n"))
	}
	return pages, nil
}
