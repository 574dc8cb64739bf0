package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTestProvider(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp, err := NewProvider("library-test", sdktrace.WithSyncer(exporter))
	require.NoError(t, err)
	Install(tp)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return exporter
}

func TestStartSpan_ParentChild(t *testing.T) {
	exporter := newTestProvider(t)

	ctx, parent := StartSpan(context.Background(), "test", "lending.Borrow")
	traceID := ExtractTraceID(ctx)
	assert.Len(t, traceID, 32)
	assert.Len(t, ExtractSpanID(ctx), 16)

	childCtx, child := StartSpan(ctx, "test", "loan.RecordBorrow")
	assert.Equal(t, traceID, ExtractTraceID(childCtx))
	child.SetAttributes(attribute.Int64("book.id", 1))
	child.End()
	parent.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, "loan.RecordBorrow", spans[0].Name)
	assert.Equal(t, spans[1].SpanContext.SpanID(), spans[0].Parent.SpanID())
	assert.Contains(t, spans[0].Attributes, attribute.Int64("book.id", 1))
}

func TestNewProvider_ServiceName(t *testing.T) {
	exporter := newTestProvider(t)

	_, span := StartSpan(context.Background(), "test", "op")
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	name, ok := spans[0].Resource.Set().Value("service.name")
	require.True(t, ok)
	assert.Equal(t, "library-test", name.AsString())
}

func TestExtractIDs_NoSpan(t *testing.T) {
	assert.Empty(t, ExtractTraceID(context.Background()))
	assert.Empty(t, ExtractSpanID(context.Background()))
}

func TestInitTracer(t *testing.T) {
	// exporter惰性连接,没有Collector也能初始化
	shutdown, err := InitTracer("library-test", "127.0.0.1:4317")
	require.NoError(t, err)

	_, span := StartSpan(context.Background(), "test", "op")
	span.End()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = shutdown(ctx)
}
