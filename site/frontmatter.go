package site

import (
	"errors"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/stuart/lang"
)

// frontmatterMarker opens and closes a frontmatter block.
const frontmatterMarker = "---"

var errUnclosed = errors.New("missing closing " + frontmatterMarker)

// frontmatter is a Markdown source split at its frontmatter block.
type frontmatter struct {
	value lang.Value
	// body is the source after the closing marker.
	body string
	// padded is the whole source with the frontmatter block blanked out, so
	// tag positions in the body keep their file offsets and lines.
	padded string
}

// splitFrontmatter separates a leading frontmatter block from src. A source
// whose first line is not the marker has empty frontmatter.
func splitFrontmatter(src string) (frontmatter, error) {
	open := lang.Position{Line: 1, Column: 1}

	first, _, found := strings.Cut(src, "\n")
	if !found || strings.TrimRight(first, "\r") != frontmatterMarker {
		return frontmatter{value: lang.Object(nil), body: src, padded: src}, nil
	}

	start := len(first) + 1

	for off := start; off < len(src); {
		line, _, more := strings.Cut(src[off:], "\n")

		end := off + len(line)
		if more {
			end++
		}

		if strings.TrimRight(line, "\r") == frontmatterMarker {
			value, err := decodeFrontmatter(src[start:off])
			if err != nil {
				return frontmatter{}, ErrFrontmatter.WithPosition(open).Wrap(err)
			}

			return frontmatter{
				value:  value,
				body:   src[end:],
				padded: blank(src[:end]) + src[end:],
			}, nil
		}

		off = end
	}

	return frontmatter{}, ErrFrontmatter.WithPosition(open).Wrap(errUnclosed)
}

// decodeFrontmatter decodes a YAML mapping. An empty block is an empty
// object; any other document kind is an error.
func decodeFrontmatter(block string) (lang.Value, error) {
	if strings.TrimSpace(block) == "" {
		return lang.Object(nil), nil
	}

	var m map[string]any

	err := yaml.Unmarshal([]byte(block), &m)
	if err != nil {
		return lang.Value{}, err
	}

	return lang.FromNative(m)
}

// blank replaces every byte of s except newlines with a space.
func blank(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c != '\n' {
			b[i] = ' '
		}
	}

	return string(b)
}
