// Package plugin defines the extension interface for template functions and
// file parsers.
//
// A [Plugin] is a named set of [Function] and [Parser] values. Its functions
// are registered with a render.Registry under "plugin::function" names via
// [Plugin.RenderFunctions]. Arguments arrive resolved; block functions also
// receive a callback that renders their body. The only state a plugin may
// share across pages is the build-scoped [Store].
//
// Script-backed plugins are declared in a YAML [Manifest]:
//
//	name: util
//	version: 1.0.0
//	functions:
//	  - name: upper
//	    args: 1
//	    expr: upper(args[0])
//	parsers:
//	  - extensions: [csv]
//	    output: .txt
//	    expr: upper(content)
//
// Each expr is compiled once with expr-lang. Function scripts see args,
// named, body, get, and set; parser scripts see path, content, get, and set.
// A [Loader] finds manifests in explicit paths and the [SearchPath].
package plugin
