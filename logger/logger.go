// Package logger configures the structured logger shared by the experiment components.
package logger

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type sinks struct {
	info  zapcore.WriteSyncer
	error zapcore.WriteSyncer
}

// Option configures where a logger writes.
type Option func(*sinks)

// Output writes every level to w. Command line tools that print results to stdout log to stderr with this.
func Output(w io.Writer) Option {
	return func(s *sinks) {
		s.info = zapcore.Lock(zapcore.AddSync(w))
		s.error = s.info
	}
}

// New creates a logger writing JSON lines. By default errors are split to stderr and everything else goes to
// stdout. The level is one of debug, info, warn or error.
func New(level string, options ...Option) (*zap.Logger, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, errors.Wrapf(err, "invalid log level %q", level)
	}

	s := sinks{
		info:  zapcore.Lock(os.Stdout),
		error: zapcore.Lock(os.Stderr),
	}
	for _, option := range options {
		option(&s)
	}

	isErrorLevel := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return l >= zapcore.ErrorLevel && l >= lvl
	})
	isInfoLevel := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return l < zapcore.ErrorLevel && l >= lvl
	})

	config := zap.NewProductionEncoderConfig()
	config.EncodeTime = zapcore.RFC3339TimeEncoder
	encoder := zapcore.NewJSONEncoder(config)

	core := zapcore.NewTee(
		zapcore.NewCore(encoder, s.error, isErrorLevel),
		zapcore.NewCore(encoder, s.info, isInfoLevel),
	)
	return zap.New(core, zap.AddCaller()), nil
}

// OrNop returns l, or a logger that discards everything when l is nil.
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
