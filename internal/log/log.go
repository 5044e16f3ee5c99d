// Package log is a thin wrapper around zap that keeps a replaceable
// package-level default logger and re-exports the field helpers used
// throughout the code base.
package log

import (
	"io"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"moul.io/zapfilter"
)

type (
	Level  = zapcore.Level
	Field  = zap.Field
	Option = zap.Option
)

const (
	DebugLevel = zapcore.DebugLevel
	InfoLevel  = zapcore.InfoLevel
	WarnLevel  = zapcore.WarnLevel
	ErrorLevel = zapcore.ErrorLevel
	FatalLevel = zapcore.FatalLevel
)

var (
	String   = zap.String
	Int      = zap.Int
	Int64    = zap.Int64
	Uint64   = zap.Uint64
	Float64  = zap.Float64
	Bool     = zap.Bool
	Any      = zap.Any
	Duration = zap.Duration
	Strings  = zap.Strings

	WithCaller    = zap.WithCaller
	AddCallerSkip = zap.AddCallerSkip
)

// ErrorField wraps err as the "error" field.
func ErrorField(err error) Field { return zap.Error(err) }

// Logger wraps a zap logger with a changeable level.
type Logger struct {
	l     *zap.Logger
	level zap.AtomicLevel
}

// ParseLevel converts a textual level (debug, info, ...).
func ParseLevel(text string) (Level, error) {
	return zapcore.ParseLevel(text)
}

// New creates a json logger writing to w.
func New(w io.Writer, level Level, opts ...Option) *Logger {
	return newLogger(w, level, zap.NewProductionEncoderConfig(), zapcore.NewJSONEncoder, opts...)
}

// DevLogger creates a human readable console logger writing to w.
func DevLogger(w io.Writer, level Level, opts ...Option) *Logger {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return newLogger(w, level, cfg, zapcore.NewConsoleEncoder, opts...)
}

func newLogger(
	w io.Writer,
	level Level,
	cfg zapcore.EncoderConfig,
	enc func(zapcore.EncoderConfig) zapcore.Encoder,
	opts ...Option,
) *Logger {
	if w == nil {
		w = os.Stderr
	}
	cfg.EncodeTime = zapcore.RFC3339TimeEncoder
	al := zap.NewAtomicLevelAt(level)
	core := zapcore.NewCore(enc(cfg), zapcore.AddSync(w), al)
	return &Logger{l: zap.New(core, opts...), level: al}
}

// FromZap wraps an existing zap logger, mostly zaptest loggers in tests.
func FromZap(l *zap.Logger) *Logger {
	return &Logger{l: l, level: zap.NewAtomicLevelAt(DebugLevel)}
}

// WithFilter applies zapfilter rules such as "*:* -debug:camera*" on top of
// the logger's core. Sub-loggers created via Named inherit the filter.
func (l *Logger) WithFilter(rules string) (*Logger, error) {
	if rules == "" {
		return l, nil
	}
	filter, err := zapfilter.ParseRules(rules)
	if err != nil {
		return nil, err
	}
	return &Logger{
		l: l.l.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
			return zapfilter.NewFilteringCore(c, filter)
		})),
		level: l.level,
	}, nil
}

func (l *Logger) Named(name string) *Logger {
	return &Logger{l: l.l.Named(name), level: l.level}
}

func (l *Logger) With(fields ...Field) *Logger {
	return &Logger{l: l.l.With(fields...), level: l.level}
}

func (l *Logger) SetLevel(level Level)              { l.level.SetLevel(level) }
func (l *Logger) Level() Level                      { return l.level.Level() }
func (l *Logger) Debug(msg string, fields ...Field) { l.l.Debug(msg, fields...) }
func (l *Logger) Info(msg string, fields ...Field)  { l.l.Info(msg, fields...) }
func (l *Logger) Warn(msg string, fields ...Field)  { l.l.Warn(msg, fields...) }
func (l *Logger) Error(msg string, fields ...Field) { l.l.Error(msg, fields...) }
func (l *Logger) Fatal(msg string, fields ...Field) { l.l.Fatal(msg, fields...) }
func (l *Logger) Sync() error                       { return l.l.Sync() }

// Zap exposes the underlying zap logger.
func (l *Logger) Zap() *zap.Logger { return l.l }

var (
	mu  sync.RWMutex
	std = DevLogger(os.Stderr, InfoLevel)
)

// Default returns the package-level logger.
func Default() *Logger {
	mu.RLock()
	defer mu.RUnlock()
	return std
}

// ResetDefault replaces the package-level logger. Loggers obtained from
// Default before the call keep writing to the old one.
func ResetDefault(l *Logger) {
	mu.Lock()
	defer mu.Unlock()
	std = l
}

func Debug(msg string, fields ...Field) { Default().l.Debug(msg, fields...) }
func Info(msg string, fields ...Field)  { Default().l.Info(msg, fields...) }
func Warn(msg string, fields ...Field)  { Default().l.Warn(msg, fields...) }
func Error(msg string, fields ...Field) { Default().l.Error(msg, fields...) }
func Fatal(msg string, fields ...Field) { Default().l.Fatal(msg, fields...) }
func Sync() error                       { return Default().Sync() }
