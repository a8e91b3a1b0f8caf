package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func newBufferLogger() (*zap.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	encoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	core := zapcore.NewCore(encoder, zapcore.AddSync(&buf), zapcore.DebugLevel)
	return zap.New(core), &buf
}

func TestWithContext(t *testing.T) {
	logger, err := NewForEnvironment("development")
	require.NoError(t, err)

	ctx := WithContext(context.Background(), logger)

	assert.Same(t, logger, FromContext(ctx))
}

func TestFromContext_NotFound(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))
}

func TestWithCommand(t *testing.T) {
	base, buf := newBufferLogger()

	ctx, tagged := WithCommand(context.Background(), base, "sync-orders-payments")
	tagged.Info("hello")

	assert.Equal(t, "sync-orders-payments", GetCommand(ctx))
	assert.Same(t, tagged, FromContext(ctx))
	assert.Contains(t, buf.String(), `"command":"sync-orders-payments"`)
}

func TestGetters_Empty(t *testing.T) {
	ctx := context.Background()

	assert.Empty(t, GetRequestID(ctx))
	assert.Empty(t, GetActor(ctx))
	assert.Empty(t, GetCommand(ctx))
}

func TestContextLogger_EnrichesWithContextFields(t *testing.T) {
	base, buf := newBufferLogger()

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-aaa")
	ctx = context.WithValue(ctx, ActorKey, "staff-1")
	ctx = context.WithValue(ctx, CommandKey, "recalculate-order-totals")
	ctx = WithContext(ctx, base)

	L(ctx).Info("test message", zap.String("extra_field", "extra_value"))

	output := buf.String()
	assert.Contains(t, output, `"request_id":"req-aaa"`)
	assert.Contains(t, output, `"actor":"staff-1"`)
	assert.Contains(t, output, `"command":"recalculate-order-totals"`)
	assert.Contains(t, output, `"extra_field":"extra_value"`)
	assert.Contains(t, output, `"msg":"test message"`)
}

func TestContextLogger_EmptyContextFields(t *testing.T) {
	base, buf := newBufferLogger()

	WithLogger(context.Background(), base).Info("test")

	output := buf.String()
	assert.NotContains(t, output, `"request_id"`)
	assert.NotContains(t, output, `"actor"`)
	assert.NotContains(t, output, `"command"`)
}

func TestContextLogger_With(t *testing.T) {
	base, buf := newBufferLogger()

	cl := WithLogger(context.Background(), base).With(zap.String("order_number", "CMD20250101120000123"))
	cl.Warn("drift")

	assert.Contains(t, buf.String(), `"order_number":"CMD20250101120000123"`)
	assert.NotNil(t, cl.Zap())
}

func TestContextLogger_NilLogger(t *testing.T) {
	cl := &ContextLogger{ctx: context.Background()}

	assert.NotPanics(t, func() {
		cl.Info("test")
	})
}
