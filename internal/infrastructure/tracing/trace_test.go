package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/GriffinCanCode/modxel/internal/infrastructure/logging"
)

func TestSpansShareTrace(t *testing.T) {
	tracer := New(nil)

	root, ctx := tracer.StartSpan(context.Background(), "workflow open")
	child, childCtx := tracer.StartSpan(ctx, "element/getlistbyclass")

	assert.NotEmpty(t, root.TraceID)
	assert.Equal(t, root.TraceID, child.TraceID)
	assert.Equal(t, root.SpanID, child.ParentID)
	assert.Empty(t, root.ParentID)
	assert.Equal(t, child.SpanID, GetSpanID(childCtx))
	assert.Equal(t, root.TraceID, GetTraceID(childCtx))
}

func TestFinishLogs(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	tracer := New(&logging.Logger{Logger: zap.New(core)})

	span, _ := tracer.StartSpan(context.Background(), "element/chunk/update")
	span.SetTag("status", "500")
	span.SetError(errors.New("boom"))
	tracer.Finish(span)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "span failed", entry.Message)
	fields := entry.ContextMap()
	assert.Equal(t, "element/chunk/update", fields["operation"])
	assert.Equal(t, "500", fields["status"])
	assert.Equal(t, "boom", fields["error"])
}

func TestNilTracer(t *testing.T) {
	var tracer *Tracer

	span, ctx := tracer.StartSpan(context.Background(), "x")
	tracer.Finish(span)

	assert.NotEmpty(t, GetTraceID(ctx))
	assert.False(t, span.EndTime.IsZero())
}
