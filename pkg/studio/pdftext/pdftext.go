// Package pdftext extracts plain text from PDF documents, either from the
// embedded text layer or by rasterizing pages and running OCR.
package pdftext

import (
	"context"
	"fmt"
	"strings"

	"github.com/himanishpuri/studiokit/pkg/models"
)

type Method string

const (
	MethodDigital Method = "digital"
	MethodOCR     Method = "ocr"
)

// ParseMethod accepts the method names plus the engine aliases used by the
// web form ("pdfplumber", "tesseract").
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "digital", "text", "pdfplumber":
		return MethodDigital, nil
	case "ocr", "tesseract":
		return MethodOCR, nil
	}
	return "", fmt.Errorf("unknown extraction method %q: %w", s, models.ErrInvalidInput)
}

// Languages lists the OCR language codes offered to users.
var Languages = []LanguageOption{
	{Code: "eng", Label: "English"},
	{Code: "ben", Label: "Bengali"},
	{Code: "hin", Label: "Hindi"},
	{Code: "eng+ben", Label: "English & Bengali"},
}

type LanguageOption struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

const DefaultLanguage = "eng"

// ParseLanguage validates a language code and splits combined codes
// ("eng+ben") into the list the OCR engine expects.
func ParseLanguage(code string) (string, []string, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		code = DefaultLanguage
	}
	// "ben (Bengali)" as submitted by the form
	if i := strings.IndexByte(code, ' '); i > 0 {
		code = code[:i]
	}
	for _, l := range Languages {
		if l.Code == code {
			return code, strings.Split(code, "+"), nil
		}
	}
	return "", nil, fmt.Errorf("unsupported OCR language %q: %w", code, models.ErrInvalidInput)
}

// Engine recognizes text in one rasterized page image.
type Engine interface {
	Recognize(ctx context.Context, image []byte, languages []string) (string, error)
}

// Options for one extraction.
type Options struct {
	Method   Method
	Language string
	DPI      int
}

// Result of one extraction. Text is empty when nothing could be read.
type Result struct {
	Text     string `json:"text"`
	Method   Method `json:"method"`
	Language string `json:"language"`
	Pages    int    `json:"pages"`
	Chars    int    `json:"chars"`
}

// Empty reports whether no text was extracted.
func (r *Result) Empty() bool {
	return r == nil || strings.TrimSpace(r.Text) == ""
}

// PageProgress is called before each page is processed, 1-based.
type PageProgress func(page, total int)

// ProgressMessage is the user-facing progress line for a page.
func ProgressMessage(page, total int) string {
	return fmt.Sprintf("Processing page %d/%d...", page, total)
}

// EmptyWarning is shown when an extraction yields no text.
const EmptyWarning = "No text was extracted from the PDF. Try changing the extraction method or check if the PDF contains extractable text."

// DownloadName is the file name offered for the extracted text.
const DownloadName = "extracted_text.txt"
