package utils

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.Table))

// RenderMarkdown converts a Markdown document (GFM tables enabled) to HTML.
func RenderMarkdown(src string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return buf.String(), nil
}

// EscapeTableCell makes s safe to place inside a Markdown table cell.
func EscapeTableCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
