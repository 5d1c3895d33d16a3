package site

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// markdown converts GitHub-flavoured Markdown to HTML. Raw HTML in the
// source is passed through, since page bodies commonly embed it.
//
//nolint:gochecknoglobals
var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	goldmark.WithRendererOptions(html.WithUnsafe()),
)

func toHTML(src string) (string, error) {
	var buf bytes.Buffer

	err := markdown.Convert([]byte(src), &buf)
	if err != nil {
		return "", ErrMarkdown.Wrap(err)
	}

	return buf.String(), nil
}
