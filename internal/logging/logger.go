// Package logging builds the zap-backed logr.Logger shared by the hubben
// commands and the portal.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a zap-backed logr.Logger writing to stderr at the given level.
func New(level string) (logr.Logger, error) {
	return NewWithWriter(level, os.Stderr)
}

// NewWithWriter is New with an explicit destination. Debug switches to the
// human-readable console encoder; other levels emit JSON.
func NewWithWriter(level string, w io.Writer) (logr.Logger, error) {
	zapLevel, development, err := parseLevel(level)
	if err != nil {
		return logr.Logger{}, err
	}
	encCfg := zap.NewProductionEncoderConfig()
	if development {
		encCfg = zap.NewDevelopmentEncoderConfig()
	}
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	var enc zapcore.Encoder
	if development {
		enc = zapcore.NewConsoleEncoder(encCfg)
	} else {
		enc = zapcore.NewJSONEncoder(encCfg)
	}
	sink := zapcore.Lock(zapcore.AddSync(w))
	core := zapcore.NewCore(enc, sink, zap.NewAtomicLevelAt(zapLevel))
	opts := []zap.Option{zap.ErrorOutput(sink)}
	if development {
		opts = append(opts, zap.Development(), zap.AddCaller())
	}
	return zapr.NewLogger(zap.New(core, opts...)), nil
}

func parseLevel(level string) (zapcore.Level, bool, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel, true, nil
	case "info", "":
		return zapcore.InfoLevel, false, nil
	case "warn", "warning":
		return zapcore.WarnLevel, false, nil
	case "error":
		return zapcore.ErrorLevel, false, nil
	default:
		return 0, false, fmt.Errorf("unknown log level %q (expected debug, info, warn, or error)", level)
	}
}
