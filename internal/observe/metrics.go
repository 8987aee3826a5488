// SPDX-License-Identifier: EPL-2.0

// Package observe holds the OpenTelemetry instruments recorded by the
// decode and encode pipelines.
//
// A package-level default [Metrics] ([DefaultMetrics]) reports to the
// global meter provider, which is a no-op until the application installs
// one. Tests should use [NewMetrics] with their own provider.
package observe

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope of every audcodec metric.
const meterName = "github.com/ik5/audcodec"

// Metrics holds the instruments. All fields are safe for concurrent use.
type Metrics struct {
	// DecodePackets counts back-end packets. Use with attribute:
	//   attribute.String("format", ...)
	DecodePackets metric.Int64Counter

	// DecodeDuration tracks the time of a whole Decode call.
	DecodeDuration metric.Float64Histogram

	// EncodeBytes counts Ogg bytes produced.
	EncodeBytes metric.Int64Counter

	// EncodeDuration tracks the time of a whole encode call.
	EncodeDuration metric.Float64Histogram

	// Errors counts failed calls. Use with attributes:
	//   attribute.String("op", ...), attribute.String("kind", ...)
	Errors metric.Int64Counter
}

// durationBuckets are histogram boundaries in seconds, from short clips
// decoded in memory up to long files.
var durationBuckets = []float64{
	0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 60,
}

// NewMetrics creates the instruments on mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.DecodePackets, err = m.Int64Counter("audcodec.decode.packets",
		metric.WithDescription("Packets pulled from decoder back-ends, by format."),
	); err != nil {
		return nil, err
	}
	if met.DecodeDuration, err = m.Float64Histogram("audcodec.decode.duration",
		metric.WithDescription("Duration of decode calls."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	); err != nil {
		return nil, err
	}
	if met.EncodeBytes, err = m.Int64Counter("audcodec.encode.bytes",
		metric.WithDescription("Bytes of Ogg/Vorbis output."),
		metric.WithUnit("By"),
	); err != nil {
		return nil, err
	}
	if met.EncodeDuration, err = m.Float64Histogram("audcodec.encode.duration",
		metric.WithDescription("Duration of encode calls."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	); err != nil {
		return nil, err
	}
	if met.Errors, err = m.Int64Counter("audcodec.errors",
		metric.WithDescription("Failed calls by operation and error kind."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics], created on first use
// from [otel.GetMeterProvider]. It panics if the instruments cannot be
// created.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// RecordDecode records a finished decode of n packets.
func (m *Metrics) RecordDecode(ctx context.Context, format string, packets int64, elapsed time.Duration) {
	attrs := metric.WithAttributes(attribute.String("format", format))
	m.DecodePackets.Add(ctx, packets, attrs)
	m.DecodeDuration.Record(ctx, elapsed.Seconds(), attrs)
}

// RecordEncode records a finished encode that wrote n bytes.
func (m *Metrics) RecordEncode(ctx context.Context, n int64, elapsed time.Duration) {
	m.EncodeBytes.Add(ctx, n)
	m.EncodeDuration.Record(ctx, elapsed.Seconds())
}

// RecordError counts a failed op ("decode", "encode") by error kind.
func (m *Metrics) RecordError(ctx context.Context, op, kind string) {
	m.Errors.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("op", op),
			attribute.String("kind", kind),
		),
	)
}
