package plugin

import (
	"bytes"
	"log/slog"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/stuart/lang"
)

// ManifestName is the file name a plugin directory is expected to contain.
const ManifestName = "plugin.yml"

// Manifest is the YAML declaration of a script-backed plugin.
type Manifest struct {
	Name      string             `yaml:"name"`
	Version   string             `yaml:"version"`
	Functions []FunctionManifest `yaml:"functions"`
	Parsers   []ParserManifest   `yaml:"parsers"`
}

// FunctionManifest declares one script function. Args fixes the arity;
// otherwise MinArgs and MaxArgs bound it, with no upper bound by default.
type FunctionManifest struct {
	Args    *int   `yaml:"args"`
	MinArgs *int   `yaml:"min_args"`
	MaxArgs *int   `yaml:"max_args"`
	Name    string `yaml:"name"`
	Expr    string `yaml:"expr"`
	Block   bool   `yaml:"block"`
}

// ParserManifest declares one script file parser.
type ParserManifest struct {
	Output     string   `yaml:"output"`
	Expr       string   `yaml:"expr"`
	Extensions []string `yaml:"extensions"`
}

func (f FunctionManifest) arity() (minArgs, maxArgs int) {
	if f.Args != nil {
		return *f.Args, *f.Args
	}

	minArgs, maxArgs = 0, -1

	if f.MinArgs != nil {
		minArgs = *f.MinArgs
	}

	if f.MaxArgs != nil {
		maxArgs = *f.MaxArgs
	}

	return minArgs, maxArgs
}

// ParseManifest decodes a manifest. Unknown fields are rejected.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest

	dec := yaml.NewDecoder(bytes.NewReader(data), yaml.DisallowUnknownField())

	err := dec.Decode(&m)
	if err != nil {
		return nil, ErrManifest.Wrap(err)
	}

	return &m, nil
}

// ReadManifest reads and decodes the manifest at path.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ErrManifest.Wrap(err).WithSource(path)
	}

	m, err := ParseManifest(data)
	if err != nil {
		return nil, lang.WrapError(err).WithSource(path)
	}

	return m, nil
}

// Compile compiles every expression in the manifest and returns the
// validated plugin.
func (m *Manifest) Compile() (*Plugin, error) {
	p := &Plugin{Name: m.Name, Version: m.Version}

	for _, fm := range m.Functions {
		minArgs, maxArgs := fm.arity()

		fn, err := ScriptFunction(fm.Name, fm.Expr, minArgs, maxArgs, fm.Block)
		if err != nil {
			return nil, ErrManifest.With(slog.String("plugin", m.Name)).Wrap(err)
		}

		p.Functions = append(p.Functions, fn)
	}

	for _, pm := range m.Parsers {
		ps, err := ScriptParser(pm.Extensions, pm.Output, pm.Expr)
		if err != nil {
			return nil, ErrManifest.With(slog.String("plugin", m.Name)).Wrap(err)
		}

		p.Parsers = append(p.Parsers, ps)
	}

	err := p.Validate()
	if err != nil {
		return nil, err
	}

	return p, nil
}
