package site

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/stuart/lang"
)

// ConfigName is the project configuration file name.
const ConfigName = "stuart.yml"

// Config holds the build settings read from [ConfigName].
type Config struct {
	Name            string   `yaml:"name"`
	Author          string   `yaml:"author"`
	Content         string   `yaml:"content"`
	Output          string   `yaml:"output"`
	ExcerptEllipsis string   `yaml:"excerpt_ellipsis"`
	Plugins         []string `yaml:"plugins"`
	Jobs            int      `yaml:"jobs"`
	WordsPerMinute  int      `yaml:"words_per_minute"`
	StripExtensions bool     `yaml:"strip_extensions"`
	SaveDataFiles   bool     `yaml:"save_data_files"`
	SaveMetadata    bool     `yaml:"save_metadata"`
	SaveIndex       bool     `yaml:"save_index"`
	ContinueOnError bool     `yaml:"continue_on_error"`
	Env             bool     `yaml:"env"`
}

// DefaultConfig returns the settings used for keys absent from the file.
func DefaultConfig() Config {
	return Config{
		Content:         "content",
		Output:          "dist",
		StripExtensions: true,
	}
}

// ParseConfig decodes data over [DefaultConfig]. Unknown keys are rejected.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()

	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data), yaml.DisallowUnknownField())

	err := dec.Decode(&cfg)
	if err != nil {
		return Config{}, ErrConfig.Wrap(err)
	}

	return cfg, nil
}

// LoadConfig reads [ConfigName] from the project directory dir. A missing
// file yields [DefaultConfig].
func LoadConfig(dir string) (Config, error) {
	path := filepath.Join(dir, ConfigName)

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultConfig(), nil
	}

	if err != nil {
		return Config{}, ErrConfig.Wrap(err).WithSource(path)
	}

	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, lang.WrapError(err).WithSource(path)
	}

	return cfg, nil
}
