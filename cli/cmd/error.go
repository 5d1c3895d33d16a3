package cmd

import "github.com/ardnew/stuart/lang"

var (
	ErrBuild       = lang.NewError("build failed")
	ErrOutputDir   = lang.NewError("unsafe output directory")
	ErrSource      = lang.NewError("cannot read template")
	ErrWriteOutput = lang.NewError("write output")
)
