package lang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
)

// Format writes the template in canonical tag syntax to the writer.
// Parsing the output again yields an equivalent AST.
func (ast *AST) Format(_ context.Context, w io.Writer) error {
	_, err := io.WriteString(w, ast.String())

	return err
}

// FormatJSON writes the AST structure as JSON to the writer.
func (ast *AST) FormatJSON(_ context.Context, w io.Writer, indent int) error {
	var (
		jsonData []byte
		err      error
	)

	tree := describe(ast.Nodes)

	if indent > 0 {
		jsonData, err = json.MarshalIndent(tree, "", strings.Repeat(" ", indent))
	} else {
		jsonData, err = json.Marshal(tree)
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(jsonData))

	return err
}

// FormatYAML writes the AST structure as YAML to the writer.
func (ast *AST) FormatYAML(_ context.Context, w io.Writer, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	data, err := yaml.MarshalWithOptions(describe(ast.Nodes), opts...)
	if err != nil {
		return err
	}

	_, err = w.Write(data)

	return err
}

func format(sb *strings.Builder, nodes []Node) {
	for _, n := range nodes {
		switch n := n.(type) {
		case *Text:
			sb.WriteString(strings.ReplaceAll(n.Text, tagOpen, tagEscape))

		case *Variable:
			sb.WriteString(tagOpen + n.Path.String() + tagClose)

		case *Call:
			sb.WriteString(tagOpen + formatCall(n.Name, n.Args) + tagClose)

			if !n.Block() {
				continue
			}

			format(sb, n.Body)

			if n.HasElse {
				sb.WriteString(tagOpen + ElseName + "()" + tagClose)
				format(sb, n.Else)
			}

			label := n.Name
			if n.Name == "begin" && n.Label() != "" {
				label = strconv.Quote(n.Label())
			}

			sb.WriteString(tagOpen + EndName + "(" + label + ")" + tagClose)
		}
	}
}

func formatCall(name string, args []Arg) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = formatArg(a)
	}

	return name + "(" + strings.Join(parts, ", ") + ")"
}

func formatArg(a Arg) string {
	var s string

	switch a.Kind {
	case ArgIdent:
		s = a.Ident
	case ArgVariable:
		s = a.Path.String()
	case ArgLiteral:
		s = formatLiteral(a.Value)
	}

	if a.Name != "" {
		return a.Name + "=" + s
	}

	return s
}

func formatLiteral(v Value) string {
	switch v.Kind() {
	case KindString:
		s, _ := v.AsString()

		return strconv.Quote(s)
	case KindNull:
		return "null"
	default:
		return v.String()
	}
}

// describe converts nodes into plain data for structured output.
func describe(nodes []Node) []map[string]any {
	out := make([]map[string]any, 0, len(nodes))

	for _, n := range nodes {
		m := map[string]any{
			"line":   n.Position().Line,
			"column": n.Position().Column,
		}

		switch n := n.(type) {
		case *Text:
			m["type"] = "text"
			m["text"] = n.Text

		case *Variable:
			m["type"] = "variable"
			m["path"] = n.Path.String()

		case *Call:
			m["type"] = "call"
			m["name"] = n.Name
			m["kind"] = n.Kind.String()

			args := make([]string, len(n.Args))
			for i, a := range n.Args {
				args[i] = formatArg(a)
			}

			m["args"] = args

			if n.Block() {
				m["body"] = describe(n.Body)
			}

			if n.HasElse {
				m["else"] = describe(n.Else)
			}
		}

		out = append(out, m)
	}

	return out
}
