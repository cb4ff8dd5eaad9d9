package observability

import "testing"

func TestOtlpHeaders(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "x-api-key=abc, broken, =nokey, tenant = qa ")
	got := otlpHeaders()
	if len(got) != 2 || got["x-api-key"] != "abc" || got["tenant"] != "qa" {
		t.Fatalf("otlpHeaders: got %v", got)
	}
}

func TestSampleRatioClamped(t *testing.T) {
	t.Setenv("OTEL_SAMPLER_RATIO", "4")
	if got := sampleRatio(); got != 1 {
		t.Fatalf("sampleRatio: got %v", got)
	}
	t.Setenv("OTEL_SAMPLER_RATIO", "-1")
	if got := sampleRatio(); got != 0 {
		t.Fatalf("sampleRatio: got %v", got)
	}
}
