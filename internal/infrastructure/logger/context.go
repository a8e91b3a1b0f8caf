package logger

import (
	"context"

	"go.uber.org/zap"
)

type contextKey string

const (
	LoggerKey    contextKey = "logger"
	RequestIDKey contextKey = "request_id"
	// ActorKey holds the email of the authenticated account
	ActorKey contextKey = "actor"
	// CommandKey holds the storectl command being run
	CommandKey contextKey = "command"
)

func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}

// FromContext returns the logger stored by WithContext, or a no-op logger
func FromContext(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(LoggerKey).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}

// WithCommand marks ctx as running a storectl command and returns the
// logger tagged with it
func WithCommand(ctx context.Context, logger *zap.Logger, command string) (context.Context, *zap.Logger) {
	tagged := logger.With(zap.String("command", command))
	ctx = context.WithValue(ctx, CommandKey, command)
	return WithContext(ctx, tagged), tagged
}

func GetRequestID(ctx context.Context) string {
	return stringValue(ctx, RequestIDKey)
}

func GetActor(ctx context.Context) string {
	return stringValue(ctx, ActorKey)
}

func GetCommand(ctx context.Context) string {
	return stringValue(ctx, CommandKey)
}

func stringValue(ctx context.Context, key contextKey) string {
	v, _ := ctx.Value(key).(string)
	return v
}

// ContextLogger writes through a zap logger and adds the request ID, actor
// and command found in its context to every entry. Services keep their own
// named logger and wrap it per call:
//
//	logger.WithLogger(ctx, s.logger).Info("Order and payment cancelled")
type ContextLogger struct {
	ctx    context.Context
	logger *zap.Logger
}

// L wraps the logger stored in ctx
func L(ctx context.Context) *ContextLogger {
	return &ContextLogger{ctx: ctx, logger: FromContext(ctx)}
}

// WithLogger wraps logger instead of the one stored in ctx
func WithLogger(ctx context.Context, logger *zap.Logger) *ContextLogger {
	return &ContextLogger{ctx: ctx, logger: logger}
}

func (cl *ContextLogger) enriched() *zap.Logger {
	l := cl.logger
	if l == nil {
		l = zap.NewNop()
	}
	var fields []zap.Field
	if v := GetRequestID(cl.ctx); v != "" {
		fields = append(fields, zap.String("request_id", v))
	}
	if v := GetActor(cl.ctx); v != "" {
		fields = append(fields, zap.String("actor", v))
	}
	if v := GetCommand(cl.ctx); v != "" {
		fields = append(fields, zap.String("command", v))
	}
	if len(fields) == 0 {
		return l
	}
	return l.With(fields...)
}

func (cl *ContextLogger) With(fields ...zap.Field) *ContextLogger {
	return &ContextLogger{ctx: cl.ctx, logger: cl.enriched().With(fields...)}
}

func (cl *ContextLogger) Debug(msg string, fields ...zap.Field) {
	cl.enriched().Debug(msg, fields...)
}

func (cl *ContextLogger) Info(msg string, fields ...zap.Field) {
	cl.enriched().Info(msg, fields...)
}

func (cl *ContextLogger) Warn(msg string, fields ...zap.Field) {
	cl.enriched().Warn(msg, fields...)
}

func (cl *ContextLogger) Error(msg string, fields ...zap.Field) {
	cl.enriched().Error(msg, fields...)
}

// Zap returns the enriched zap logger
func (cl *ContextLogger) Zap() *zap.Logger {
	return cl.enriched()
}
