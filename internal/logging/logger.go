package logging

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger struct {
	*zap.Logger
}

type requestIDKey struct{}

// NewLogger builds a JSON production logger at the given level.
func NewLogger(level string) (*Logger, error) {
	return build(zap.NewProductionConfig(), level)
}

// NewConsoleLogger builds a human readable logger for the CLI.
func NewConsoleLogger(level string) (*Logger, error) {
	config := zap.NewDevelopmentConfig()
	config.DisableStacktrace = true
	return build(config, level)
}

func build(config zap.Config, level string) (*Logger, error) {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}
	config.Level = zap.NewAtomicLevelAt(zapLevel)

	logger, err := config.Build()
	if err != nil {
		return nil, err
	}

	return &Logger{logger}, nil
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{zap.NewNop()}
}

// WithRequestID stores a request id on ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the request id stored on ctx, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// For returns the logger annotated with the request id carried by ctx.
func (l *Logger) For(ctx context.Context) *zap.Logger {
	if reqID := RequestID(ctx); reqID != "" {
		return l.With(zap.String("request_id", reqID))
	}
	return l.Logger
}
