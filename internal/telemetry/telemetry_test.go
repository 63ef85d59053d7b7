package telemetry

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
)

func TestInitTracerDisabled(t *testing.T) {
	before := otel.GetTracerProvider()

	var buf bytes.Buffer
	shutdown, err := InitTracer(false, &buf, "extbuild", "dev")
	if err != nil {
		t.Fatalf("InitTracer: %v", err)
	}
	_, span := Tracer().Start(context.Background(), "fetch")
	span.End()
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	if otel.GetTracerProvider() != before {
		t.Error("disabled tracing should not replace the global provider")
	}
	if buf.Len() != 0 {
		t.Errorf("disabled tracing wrote output: %s", buf.String())
	}
}

func TestInitTracerExportsSpans(t *testing.T) {
	before := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(before) })

	var buf bytes.Buffer
	shutdown, err := InitTracer(true, &buf, "extbuild", "1.2.3")
	if err != nil {
		t.Fatalf("InitTracer: %v", err)
	}

	_, span := Tracer().Start(context.Background(), "deploy")
	span.End()

	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, `"Name": "deploy"`) {
		t.Errorf("span not exported:\n%s", out)
	}
	if !strings.Contains(out, "extbuild") {
		t.Errorf("service name missing from resource:\n%s", out)
	}
}
