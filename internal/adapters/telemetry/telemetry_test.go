package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/yasmramos/forge/internal/adapters/telemetry"
)

func recordingTracer(t *testing.T) (*telemetry.OTelTracer, *tracetest.SpanRecorder) {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})

	return telemetry.NewOTelTracer("forge-test"), recorder
}

func TestOTelSpan_RecordsAttributes(t *testing.T) {
	tracer, recorder := recordingTracer(t)

	_, span := tracer.Start(context.Background(), "compile_unit")
	span.SetAttribute("unit", "/src/App.java")
	span.SetAttribute("cache_hit", false)
	span.SetAttribute("files", 3)
	span.SetAttribute("score", 1.5)
	span.SetAttribute("roots", []string{"src/main/java"})
	span.SetAttribute("other", struct{ X int }{X: 1})
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "compile_unit", spans[0].Name())

	attrs := make(map[string]any, len(spans[0].Attributes()))
	for _, kv := range spans[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.AsInterface()
	}
	assert.Equal(t, "/src/App.java", attrs["unit"])
	assert.Equal(t, false, attrs["cache_hit"])
	assert.Equal(t, int64(3), attrs["files"])
	assert.Equal(t, 1.5, attrs["score"])
	assert.Equal(t, []string{"src/main/java"}, attrs["roots"])
	assert.Equal(t, "{1}", attrs["other"])
}

func TestOTelSpan_RecordErrorSetsStatus(t *testing.T) {
	tracer, recorder := recordingTracer(t)

	_, span := tracer.Start(context.Background(), "build")
	span.RecordError(errors.New("compilation failed"))
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "compilation failed", spans[0].Status().Description)
	require.Len(t, spans[0].Events(), 1)
}

func TestNoOpTracer(t *testing.T) {
	tracer := telemetry.NewNoOpTracer()

	ctx, span := tracer.Start(context.Background(), "anything")
	require.NotNil(t, ctx)
	require.NotNil(t, span)

	// All span operations are inert.
	span.SetAttribute("k", "v")
	span.RecordError(errors.New("ignored"))
	span.End()
}
