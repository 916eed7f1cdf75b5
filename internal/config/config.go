package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	validator "github.com/go-playground/validator/v10"
	"go.uber.org/multierr"
	yaml "gopkg.in/yaml.v3"
)

// Config holds configuration options for parsing and printing
type Config struct {
	// Version of the configuration format, must be 1
	Version int `yaml:"version" validate:"eq=1"`

	Parser  ParserConfig  `yaml:"parser"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// ParserConfig controls grammar details that have more than one reasonable reading
type ParserConfig struct {
	// TrimKeywords removes trailing whitespace from CSS keyword values
	TrimKeywords bool `yaml:"trim_keywords"`
}

// OutputConfig selects how parsed results are printed
type OutputConfig struct {
	// HTMLFormat is "tree" (indented outline) or "html" (serialized markup)
	HTMLFormat string `yaml:"html_format" validate:"oneof=tree html"`

	// CSSFormat is "css" (stylesheet text) or "yaml"
	CSSFormat string `yaml:"css_format" validate:"oneof=css yaml"`
}

// Output formats.
const (
	FormatTree = "tree"
	FormatHTML = "html"
	FormatCSS  = "css"
	FormatYAML = "yaml"
)

// Default returns the configuration used when no file is given
func Default() Config {
	return Config{
		Version: 1,
		Parser: ParserConfig{
			TrimKeywords: false, // keep keyword values exactly as written
		},
		Output: OutputConfig{
			HTMLFormat: FormatTree,
			CSSFormat:  FormatCSS,
		},
		Logging: LoggingConfig{
			ConsoleLogger: LoggerConfig{Level: LevelNormal},
			FileLogger:    LoggerConfig{Level: LevelNone, Mode: ModeAppend},
		},
	}
}

// Load reads a YAML configuration file. Fields missing from the file keep
// their default values; unknown fields are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read configuration %s: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse configuration %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks field values against their validate tags. Every failing
// field is reported; the result combines them with multierr.
func (c Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(yamlFieldName)
	v.RegisterStructValidation(validateLogging, LoggingConfig{})

	err := v.Struct(c)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	var out error
	for _, fe := range verrs {
		out = multierr.Append(out, describeFieldError(fe))
	}
	return out
}

// yamlFieldName makes validation errors name fields the way they are
// spelled in the configuration file.
func yamlFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return f.Name
	}
	return name
}

func describeFieldError(fe validator.FieldError) error {
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	value := fmt.Sprintf("%v", fe.Value())
	if s, ok := fe.Value().(string); ok {
		value = fmt.Sprintf("%q", s)
	}
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s: value is required", field)
	case "required_unless":
		return fmt.Errorf("%s: required unless %s", field, fe.Param())
	case "oneof":
		return fmt.Errorf("%s: invalid value %s (valid: %s)", field, value, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "eq":
		return fmt.Errorf("%s: invalid value %s (must be %s)", field, value, fe.Param())
	default:
		return fmt.Errorf("%s: invalid value %s (%s=%s)", field, value, fe.Tag(), fe.Param())
	}
}
