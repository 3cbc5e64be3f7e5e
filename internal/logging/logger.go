// Package logging builds the process logger: zap, writing to stdout, one line
// per event with a timestamp, the level and the message.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps a zap SugaredLogger with printf-style helpers.
type Logger struct {
	SugaredLogger *zap.SugaredLogger
}

// New builds a stdout logger. level is a zap level name ("debug", "info",
// ...); format is "console" (default) or "json".
func New(level, format string) (*Logger, error) {
	return NewWriter(os.Stdout, level, format)
}

// NewWriter is New with an explicit sink.
func NewWriter(w io.Writer, level, format string) (*Logger, error) {
	lvl := zapcore.InfoLevel
	if s := strings.TrimSpace(level); s != "" {
		parsed, err := zapcore.ParseLevel(s)
		if err != nil {
			return nil, fmt.Errorf("logging: %w", err)
		}
		lvl = parsed
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "console", "text":
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	case "json":
		enc = zapcore.NewJSONEncoder(encCfg)
	default:
		return nil, fmt.Errorf("logging: unknown format %q", format)
	}

	core := zapcore.NewCore(enc, zapcore.AddSync(w), zap.NewAtomicLevelAt(lvl))
	return &Logger{SugaredLogger: zap.New(core).Sugar()}, nil
}


func (l *Logger) Sync() {
	_ = l.SugaredLogger.Sync()
}

func (l *Logger) Debugf(format string, args ...any) { l.SugaredLogger.Debugf(format, args...) }
func (l *Logger) Infof(format string, args ...any)  { l.SugaredLogger.Infof(format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.SugaredLogger.Warnf(format, args...) }
func (l *Logger) Errorf(format string, args ...any) { l.SugaredLogger.Errorf(format, args...) }

// With returns a child logger carrying the given key/value pairs.
func (l *Logger) With(keysAndValues ...any) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.With(keysAndValues...)}
}
