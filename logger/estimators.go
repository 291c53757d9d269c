package logger

import (
	"context"

	scigolog "github.com/YuminosukeSato/scigo/pkg/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Estimators routes the messages of the scigo estimators through l. Their progress messages are demoted to debug.
func Estimators(l *zap.Logger) {
	scigolog.SetLoggerProvider(&provider{log: OrNop(l).Named("estimator")})
}

type provider struct {
	log *zap.Logger
}

func (p *provider) GetLogger() scigolog.Logger {
	return &estimatorLogger{s: p.log.Sugar()}
}

func (p *provider) GetLoggerWithName(name string) scigolog.Logger {
	return &estimatorLogger{s: p.log.Named(name).Sugar()}
}

// SetLevel is a no-op; the level belongs to the zap core.
func (p *provider) SetLevel(scigolog.Level) {}

type estimatorLogger struct {
	s *zap.SugaredLogger
}

func (e *estimatorLogger) Debug(msg string, fields ...any) {
	e.s.Debugw(msg, fields...)
}

func (e *estimatorLogger) Info(msg string, fields ...any) {
	e.s.Debugw(msg, fields...)
}

func (e *estimatorLogger) Warn(msg string, fields ...any) {
	e.s.Warnw(msg, fields...)
}

func (e *estimatorLogger) Error(msg string, fields ...any) {
	e.s.Errorw(msg, fields...)
}

func (e *estimatorLogger) With(fields ...any) scigolog.Logger {
	return &estimatorLogger{s: e.s.With(fields...)}
}

func (e *estimatorLogger) Enabled(_ context.Context, level scigolog.Level) bool {
	return e.s.Desugar().Core().Enabled(zapLevel(level))
}

func zapLevel(level scigolog.Level) zapcore.Level {
	switch {
	case level >= scigolog.LevelError:
		return zapcore.ErrorLevel
	case level >= scigolog.LevelWarn:
		return zapcore.WarnLevel
	default:
		return zapcore.DebugLevel
	}
}
