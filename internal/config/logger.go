package config

import (
	"fmt"
	"os"

	validator "github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

// Logging levels and file modes.
const (
	LevelNone   = "none"
	LevelNormal = "normal"
	LevelDebug  = "debug"

	ModeAppend    = "append"
	ModeOverwrite = "overwrite"
)

type LoggerConfig struct {
	Level       string `yaml:"level" validate:"required,oneof=none debug normal"`
	Destination string `yaml:"destination,omitempty" validate:"omitempty,filepath"`
	Mode        string `yaml:"mode,omitempty" validate:"omitempty,oneof=append overwrite"`
}

type LoggingConfig struct {
	FileLogger    LoggerConfig `yaml:"file"`
	ConsoleLogger LoggerConfig `yaml:"console"`
}

// validateLogging requires a destination for the file logger unless it is
// turned off.
func validateLogging(sl validator.StructLevel) {
	lc := sl.Current().Interface().(LoggingConfig)
	if lc.FileLogger.Level != LevelNone && lc.FileLogger.Destination == "" {
		sl.ReportError(lc.FileLogger.Destination, "file.destination", "Destination", "required_unless", "level is none")
	}
}

// EnableColorOutput reports whether f is a terminal that can show colored levels.
func EnableColorOutput(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Prepare returns the program logger. Console output goes to stderr so that
// parse results printed to stdout stay clean.
func (conf *LoggingConfig) Prepare() (*zap.Logger, error) {
	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeCaller = nil
	if EnableColorOutput(os.Stderr) {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		ec.TimeKey = zapcore.OmitKey
	} else {
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	consoleEncoder := zapcore.NewConsoleEncoder(ec)

	var consoleCore zapcore.Core
	switch conf.ConsoleLogger.Level {
	case LevelNormal:
		consoleCore = zapcore.NewCore(consoleEncoder, zapcore.Lock(os.Stderr), zap.InfoLevel)
	case LevelDebug:
		consoleCore = zapcore.NewCore(consoleEncoder, zapcore.Lock(os.Stderr), zap.DebugLevel)
	default:
		consoleCore = zapcore.NewNopCore()
	}

	var fileLevel zapcore.Level
	switch conf.FileLogger.Level {
	case LevelDebug:
		fileLevel = zap.DebugLevel
	case LevelNormal:
		fileLevel = zap.InfoLevel
	default:
		return zap.New(consoleCore).Named("webparse"), nil
	}

	flags := os.O_CREATE | os.O_WRONLY
	if conf.FileLogger.Mode == ModeOverwrite {
		flags |= os.O_TRUNC
	} else {
		flags |= os.O_APPEND
	}
	f, err := os.OpenFile(conf.FileLogger.Destination, flags, 0644)
	if err != nil {
		return nil, fmt.Errorf("unable to access file log destination (%s): %w", conf.FileLogger.Destination, err)
	}
	fileCore := zapcore.NewCore(zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()), zapcore.Lock(f), fileLevel)

	return zap.New(zapcore.NewTee(consoleCore, fileCore), zap.AddCaller()).Named("webparse"), nil
}
