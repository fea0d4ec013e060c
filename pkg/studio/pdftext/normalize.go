package pdftext

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Normalize converts text to NFC, unifies line endings and drops invalid
// UTF-8 and NUL bytes. Bengali and Devanagari output from OCR frequently
// arrives decomposed.
func Normalize(s string) string {
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.ReplaceAll(s, "\x00", "")
	return norm.NFC.String(s)
}

// joinPages appends each page followed by a blank line. skipEmpty drops
// pages without text.
func joinPages(pages []string, skipEmpty bool) string {
	var b strings.Builder
	for _, p := range pages {
		if skipEmpty && strings.TrimSpace(p) == "" {
			continue
		}
		b.WriteString(p)
		b.WriteString("\n\n")
	}
	return b.String()
}
