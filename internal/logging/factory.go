package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Supported values for the log.format setting.
const (
	FormatText    = "text"
	FormatJSON    = "json"
	FormatConsole = "console"
)

var slogLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

var zapLevels = map[string]zapcore.Level{
	"debug": zapcore.DebugLevel,
	"info":  zapcore.InfoLevel,
	"warn":  zapcore.WarnLevel,
	"error": zapcore.ErrorLevel,
}

// New builds a Logger for the given level and format.
//
// "text" writes slog text records to w; "json" and "console" build a zap
// logger with the matching encoding writing to stderr.
func New(level, format string, w io.Writer) (Logger, error) {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "" {
		level = "info"
	}

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatText:
		lvl, ok := slogLevels[level]
		if !ok {
			return nil, fmt.Errorf("unsupported log level: %s", level)
		}
		return NewTextLogger(w, lvl), nil

	case FormatJSON, FormatConsole:
		lvl, ok := zapLevels[level]
		if !ok {
			return nil, fmt.Errorf("unsupported log level: %s", level)
		}
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(lvl)
		cfg.Encoding = strings.ToLower(format)
		if cfg.Encoding == FormatConsole {
			cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
		}
		l, err := cfg.Build()
		if err != nil {
			return nil, fmt.Errorf("build zap logger: %w", err)
		}
		return NewZapLogger(l), nil

	default:
		return nil, fmt.Errorf("unsupported log format: %s", format)
	}
}
