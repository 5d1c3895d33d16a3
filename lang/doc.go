// Package lang implements the stuart template language: a lexer, a parser
// producing an AST of text, variable, and call nodes, and the JSON-shaped
// [Value] model those templates operate on.
//
// # Grammar
//
// Informal EBNF of a tag interior:
//
//	Tag       → Variable | Call
//	Variable  → '$' Segment ('.' Segment)*
//	Call      → Name '(' (Arg (',' Arg)*)? ')'
//	Name      → Identifier ('::' Identifier)?
//	Arg       → Value | Identifier '=' Value
//	Value     → String | Number | 'true' | 'false' | 'null' | Variable | Identifier
//
// Tags are delimited by "{{" and "}}". A `\{{` in text is a literal "{{".
// Positional arguments precede named ones. Calls are not valid arguments.
//
// # Blocks
//
// Whether a call opens a block is decided by the [Functions] table passed
// with [WithFunctions]. A block collects nodes until end(), end(name), or
// end(label):
//
//	{{ begin("body") }}
//	  {{ for($post, "posts/", sortby="date", order="desc", limit=2) }}
//	    <h2>{{ $post.title }}</h2>
//	  {{ end(for) }}
//	{{ end("body") }}
//
// Conditional blocks accept an else() divider. An else() directly after a
// closed conditional opens its own block closed by end(else):
//
//	{{ ifdefined($self.subtitle) }}{{ $self.subtitle }}{{ end(ifdefined) }}
//	{{ else() }}untitled{{ end(else) }}
//
// # Values
//
// [Value] is an immutable tagged union of null, bool, number, string, array,
// and object. [Lookup] navigates dot-paths through objects and arrays.
package lang
