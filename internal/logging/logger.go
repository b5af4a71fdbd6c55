package logging

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type requestIDKey struct{}

var base = zap.NewNop()

// Init builds the process-wide logger. Development environments get the
// console encoder, everything else gets JSON.
func Init(env, level string) (*zap.Logger, error) {
	var cfg zap.Config
	if env == "development" {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}

	lvl, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	base = l
	return l, nil
}

// Set replaces the process-wide logger. Tests use it with zaptest or observer cores.
func Set(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	base = l
}

func L() *zap.Logger {
	return base
}

// WithRequestID stores the request id on ctx so service code can log it.
func WithRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, rid)
}

// RequestID extracts the request ID from a standard context
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if rid, ok := ctx.Value(requestIDKey{}).(string); ok {
		return rid
	}
	return ""
}

// Logger provides structured logging for services
type Logger struct {
	z *zap.Logger
}

// FromContext creates a logger carrying the request id of ctx
func FromContext(ctx context.Context) *Logger {
	requestID := RequestID(ctx)
	if requestID == "" {
		requestID = "unknown"
	}
	return &Logger{z: base.With(zap.String("request_id", requestID))}
}

func (l *Logger) Zap() *zap.Logger {
	return l.z
}

// LogError logs an error with context
func (l *Logger) LogError(operation string, err error, fields ...zap.Field) {
	l.z.Error(operation, append(fields, zap.String("operation", operation), zap.Error(err))...)
}

// LogInfo logs an info message with context
func (l *Logger) LogInfo(operation string, message string, fields ...zap.Field) {
	l.z.Info(message, append(fields, zap.String("operation", operation))...)
}

// LogWarn logs a warning with context
func (l *Logger) LogWarn(operation string, message string, fields ...zap.Field) {
	l.z.Warn(message, append(fields, zap.String("operation", operation))...)
}
