package site

import "github.com/ardnew/stuart/lang"

// Predefined errors (sentinel values).
var (
	ErrNoRootTemplate      = lang.NewError("no root template")
	ErrMissingMdTemplate   = lang.NewError("no markdown template")
	ErrFrontmatter         = lang.NewError("invalid frontmatter")
	ErrDuplicateOutputPath = lang.NewError("duplicate output path")
	ErrConfig              = lang.NewError("invalid configuration")
	ErrRead                = lang.NewError("read failed")
	ErrWrite               = lang.NewError("write failed")
	ErrMarkdown            = lang.NewError("markdown conversion failed")
	ErrIndex               = lang.NewError("page index failed")
	ErrNotFound            = lang.NewError("no such file")
)
