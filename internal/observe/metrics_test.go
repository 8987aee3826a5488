// SPDX-License-Identifier: EPL-2.0

package observe

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// newTestMetrics returns a Metrics instance backed by a ManualReader.
func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func sum(t *testing.T, rm metricdata.ResourceMetrics, name string, attrs ...attribute.KeyValue) int64 {
	t.Helper()
	met := findMetric(rm, name)
	if met == nil {
		t.Fatalf("metric %q not found", name)
	}
	s, ok := met.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("metric %q is %T, not an int64 sum", name, met.Data)
	}
	want := attribute.NewSet(attrs...)
	var total int64
	for _, dp := range s.DataPoints {
		if dp.Attributes.Equals(&want) {
			total += dp.Value
		}
	}
	return total
}

func TestRecordDecode(t *testing.T) {
	t.Parallel()

	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordDecode(ctx, "wav", 3, 20*time.Millisecond)
	m.RecordDecode(ctx, "wav", 2, 10*time.Millisecond)
	m.RecordDecode(ctx, "flac", 7, time.Second)

	rm := collect(t, reader)
	if got := sum(t, rm, "audcodec.decode.packets", attribute.String("format", "wav")); got != 5 {
		t.Errorf("wav packets = %d, want 5", got)
	}
	if got := sum(t, rm, "audcodec.decode.packets", attribute.String("format", "flac")); got != 7 {
		t.Errorf("flac packets = %d, want 7", got)
	}

	met := findMetric(rm, "audcodec.decode.duration")
	if met == nil {
		t.Fatal("duration metric not found")
	}
	hist, ok := met.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatalf("duration is %T, not a histogram", met.Data)
	}
	var count uint64
	for _, dp := range hist.DataPoints {
		count += dp.Count
	}
	if count != 3 {
		t.Errorf("duration samples = %d, want 3", count)
	}
}

func TestRecordEncode(t *testing.T) {
	t.Parallel()

	m, reader := newTestMetrics(t)
	m.RecordEncode(context.Background(), 4096, 5*time.Millisecond)
	m.RecordEncode(context.Background(), 100, time.Millisecond)

	rm := collect(t, reader)
	if got := sum(t, rm, "audcodec.encode.bytes"); got != 4196 {
		t.Errorf("encode bytes = %d, want 4196", got)
	}
	if findMetric(rm, "audcodec.encode.duration") == nil {
		t.Error("encode duration not recorded")
	}
}

func TestRecordError(t *testing.T) {
	t.Parallel()

	m, reader := newTestMetrics(t)
	ctx := context.Background()
	m.RecordError(ctx, "decode", "unsupported_format")
	m.RecordError(ctx, "decode", "unsupported_format")
	m.RecordError(ctx, "encode", "invalid_parameter")

	rm := collect(t, reader)
	tests := []struct {
		op, kind string
		want     int64
	}{
		{"decode", "unsupported_format", 2},
		{"encode", "invalid_parameter", 1},
		{"decode", "io", 0},
	}
	for _, tt := range tests {
		got := sum(t, rm, "audcodec.errors", attribute.String("op", tt.op), attribute.String("kind", tt.kind))
		if got != tt.want {
			t.Errorf("errors{op=%s,kind=%s} = %d, want %d", tt.op, tt.kind, got, tt.want)
		}
	}
}

func TestDefaultMetrics_Singleton(t *testing.T) {
	t.Parallel()

	a, b := DefaultMetrics(), DefaultMetrics()
	if a == nil || a != b {
		t.Errorf("DefaultMetrics() = %p, %p; want the same non-nil instance", a, b)
	}
	// the global provider is a no-op, so recording must not panic
	a.RecordError(context.Background(), "decode", "io")
}
