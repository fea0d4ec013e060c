package main

import (
	"bytes"
	_ "embed"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

//go:embed web/index.md
var indexMarkdown []byte

const pageHead = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>studiokit</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 920px; margin: 2rem auto; padding: 0 1rem; line-height: 1.5; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: .3rem .6rem; text-align: left; }
pre, textarea { width: 100%; background: #f6f6f6; }
code { background: #f2f2f2; padding: 0 .2rem; }
form { margin: 1rem 0; padding: 1rem; border: 1px solid #ddd; }
</style>
</head>
<body>
`

const pageTail = `</body>
</html>
`

// renderPage converts the embedded markdown (which carries the raw HTML
// forms) into the landing page.
func renderPage() ([]byte, error) {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)

	var buf bytes.Buffer
	buf.WriteString(pageHead)
	if err := md.Convert(indexMarkdown, &buf); err != nil {
		return nil, fmt.Errorf("render index page: %w", err)
	}
	buf.WriteString(pageTail)
	return buf.Bytes(), nil
}
