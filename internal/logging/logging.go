// Package logging builds the logr.Logger shared by every component, backed by zap.
package logging

import (
	"fmt"
	"io"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Output formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// New returns a logger writing to w. Verbosity n enables logr's V(n) and below;
// zap levels are the negated logr verbosity.
func New(w io.Writer, format string, verbosity int) (logr.Logger, error) {
	var enc zapcore.Encoder
	switch format {
	case FormatConsole, "":
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(cfg)
	case FormatJSON:
		enc = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	default:
		return logr.Discard(), fmt.Errorf("unknown log format %q (want %s or %s)", format, FormatConsole, FormatJSON)
	}
	if verbosity < 0 {
		verbosity = 0
	}
	level := zap.NewAtomicLevelAt(zapcore.Level(-verbosity))
	core := zapcore.NewCore(enc, zapcore.AddSync(w), level)
	return zapr.NewLogger(zap.New(core)), nil
}
