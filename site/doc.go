// Package site builds a content tree into static output.
//
// [LoadTree] reads a content directory and classifies each file:
//
//   - root.html and md.html are templates, resolved for each page by the
//     nearest one in the page's directory or an ancestor.
//   - *.html files are pages rendered against their root template.
//   - *.md files are Markdown pages: frontmatter, then a body that may use
//     template tags. The body is converted to HTML and the nearest md.html is
//     rendered with $self bound to the frontmatter, content, and markdown.
//   - *.json files are data for import() and for(), written to the output
//     only when save_data_files is set.
//   - files claimed by a plugin parser are transformed by it.
//   - everything else is copied as is.
//
// [Build] and [BuildFS] render every page concurrently and return a
// [Result] holding the output, the [Diagnostic] list, and phase timings.
package site
