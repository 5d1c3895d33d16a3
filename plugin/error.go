package plugin

import "github.com/ardnew/stuart/lang"

// Predefined errors (sentinel values).
var (
	ErrInvalidPlugin = lang.NewError("invalid plugin")
	ErrManifest      = lang.NewError("invalid plugin manifest")
	ErrCompile       = lang.NewError("plugin expression compile failed")
	ErrEvaluate      = lang.NewError("plugin expression failed")
	ErrCall          = lang.NewError("plugin function failed")
	ErrParse         = lang.NewError("plugin parser failed")
	ErrLoad          = lang.NewError("plugin load failed")
)
