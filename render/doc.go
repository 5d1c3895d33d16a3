// Package render executes parsed templates.
//
// A page is rendered in two steps. [Sections] walks the page AST with a
// fresh [Context], capturing the output of each begin(name) ... end() block
// into a named [Section]. [Template.Render] then checks those names against
// the root template's insert() calls and renders the root template with each
// insert() replaced by its section. [Page] does both.
//
// Functions are dispatched by name through a [Registry], built once from
// [Builtins] and any plugin functions and never modified afterwards. Each
// render owns its Context, so pages may be rendered concurrently with a
// shared Registry and [Store].
package render
