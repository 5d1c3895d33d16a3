package render

import "github.com/ardnew/stuart/lang"

// Predefined errors (sentinel values). Compare with [errors.Is].
var (
	ErrSectionMismatch   = lang.NewError("section mismatch")
	ErrNestedSection     = lang.NewError("nested section")
	ErrUnclosedBlock     = lang.NewError("unclosed block")
	ErrUndefinedVariable = lang.NewError("undefined variable")
	ErrInvalidType       = lang.NewError("invalid type")
	ErrDateParse         = lang.NewError("unrecognized date")
	ErrImport            = lang.NewError("import failed")
	ErrVariableExists    = lang.NewError("variable already defined")
	ErrSectionNotFound   = lang.NewError("section not found")
	ErrInsertOutsideRoot = lang.NewError("insert outside root template")
	ErrArgument          = lang.NewError("invalid argument")
	ErrDuplicateFunction = lang.NewError("duplicate function")
)

// located attaches pos to err unless err already carries a position.
func located(err error, pos lang.Position) error {
	e := lang.WrapError(err)
	if _, ok := e.Position(); ok {
		return e
	}

	return e.WithPosition(pos)
}
