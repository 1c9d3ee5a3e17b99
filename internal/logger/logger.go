// Package logger builds the zap logger shared by the API, worker and CLI.
package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options picks the encoding and level. Service, when set, is attached to
// every entry so API, CLI and script output can be told apart.
type Options struct {
	JSON    bool
	Debug   bool
	Service string
}

// New returns a console logger with colored levels, or a JSON logger for
// log shippers.
func New(opts Options) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if opts.Debug {
		level = zapcore.DebugLevel
	}

	encoder := zapcore.EncoderConfig{
		MessageKey:   "msg",
		LevelKey:     "level",
		TimeKey:      "time",
		CallerKey:    "caller",
		EncodeCaller: zapcore.ShortCallerEncoder,
	}

	encoding := "console"
	if opts.JSON {
		encoding = "json"
		encoder.EncodeLevel = zapcore.LowercaseLevelEncoder
		encoder.EncodeTime = zapcore.RFC3339TimeEncoder
	} else {
		encoder.EncodeLevel = zapcore.CapitalColorLevelEncoder
		// same layout as the fiber request log
		encoder.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	}

	cfg := zap.Config{
		Encoding:         encoding,
		Level:            zap.NewAtomicLevelAt(level),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
		EncoderConfig:    encoder,
	}

	var buildOpts []zap.Option
	if opts.Service != "" {
		buildOpts = append(buildOpts, zap.Fields(zap.String("service", opts.Service)))
	}

	return cfg.Build(buildOpts...)
}

// TruncateForLog collapses whitespace so multi-line résumé text stays on one
// log line, then cuts it to limit runes with an ellipsis.
func TruncateForLog(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
