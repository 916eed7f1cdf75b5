package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"webparse/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "webparse.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	require.NoError(t, cfg.Validate())
	assert.False(t, cfg.Parser.TrimKeywords)
	assert.Equal(t, config.FormatTree, cfg.Output.HTMLFormat)
	assert.Equal(t, config.FormatCSS, cfg.Output.CSSFormat)
}

func TestLoad_NoPath(t *testing.T) {
	t.Parallel()

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoad_EmptyFile(t *testing.T) {
	t.Parallel()

	cfg, err := config.Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoad_Overrides(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `version: 1
parser:
  trim_keywords: true
output:
  css_format: yaml
logging:
  console:
    level: debug
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Parser.TrimKeywords)
	assert.Equal(t, config.FormatYAML, cfg.Output.CSSFormat)
	assert.Equal(t, config.FormatTree, cfg.Output.HTMLFormat, "unset fields keep defaults")
	assert.Equal(t, config.LevelDebug, cfg.Logging.ConsoleLogger.Level)
	assert.Equal(t, config.LevelNone, cfg.Logging.FileLogger.Level)
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "unknown field", body: "parser:\n  strict: true\n", want: "field strict not found"},
		{name: "bad yaml", body: "parser: [\n", want: "failed to parse configuration"},
		{name: "bad version", body: "version: 2\n", want: "version: invalid value 2 (must be 1)"},
		{name: "bad format", body: "output:\n  html_format: xml\n", want: `output.html_format: invalid value "xml"`},
		{name: "file logger without destination", body: "logging:\n  file:\n    level: normal\n", want: "logging.file.destination: required unless level is none"},
		{name: "bad mode", body: "logging:\n  file:\n    mode: rotate\n", want: `logging.file.mode: invalid value "rotate" (valid: append, overwrite)`},
		{name: "empty level", body: "logging:\n  console:\n    level: \"\"\n", want: "logging.console.level: value is required"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := config.Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Version = 0
	cfg.Output.HTMLFormat = "xml"
	cfg.Output.CSSFormat = "json"
	cfg.Logging.ConsoleLogger.Level = "loud"

	err := cfg.Validate()
	require.Error(t, err)

	errs := multierr.Errors(err)
	require.Len(t, errs, 4)
	assert.EqualError(t, errs[0], "version: invalid value 0 (must be 1)")
	assert.EqualError(t, errs[1], `output.html_format: invalid value "xml" (valid: tree, html)`)
	assert.EqualError(t, errs[2], `output.css_format: invalid value "json" (valid: css, yaml)`)
	assert.EqualError(t, errs[3], `logging.console.level: invalid value "loud" (valid: none, debug, normal)`)
}

func TestPrepare(t *testing.T) {
	t.Parallel()

	t.Run("console only", func(t *testing.T) {
		t.Parallel()

		logging := config.Default().Logging
		logging.ConsoleLogger.Level = config.LevelNone
		log, err := logging.Prepare()
		require.NoError(t, err)
		require.NotNil(t, log)
		log.Info("discarded")
	})

	t.Run("file", func(t *testing.T) {
		t.Parallel()

		dest := filepath.Join(t.TempDir(), "webparse.log")
		logging := config.LoggingConfig{
			ConsoleLogger: config.LoggerConfig{Level: config.LevelNone},
			FileLogger:    config.LoggerConfig{Level: config.LevelDebug, Destination: dest, Mode: config.ModeOverwrite},
		}
		log, err := logging.Prepare()
		require.NoError(t, err)
		log.Debug("written to file")
		_ = log.Sync()

		data, err := os.ReadFile(dest)
		require.NoError(t, err)
		assert.Contains(t, string(data), "written to file")
	})

	t.Run("unwritable destination", func(t *testing.T) {
		t.Parallel()

		logging := config.LoggingConfig{
			ConsoleLogger: config.LoggerConfig{Level: config.LevelNone},
			FileLogger:    config.LoggerConfig{Level: config.LevelNormal, Destination: filepath.Join(t.TempDir(), "no", "such", "dir.log")},
		}
		_, err := logging.Prepare()
		assert.Error(t, err)
	})
}
