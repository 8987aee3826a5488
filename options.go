// SPDX-License-Identifier: EPL-2.0

package audcodec

import (
	"log/slog"

	"github.com/ik5/audcodec/internal/observe"
	"go.opentelemetry.io/otel/metric"
)

// defaultChunkFrames is how many frames a transform stage is read in.
const defaultChunkFrames = 4096

// Metrics is the set of OpenTelemetry instruments the pipelines record.
type Metrics = observe.Metrics

// NewMetrics creates the instruments on mp, for use with WithMetrics and
// WithEncodeMetrics. Without either option the global provider is used.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	return observe.NewMetrics(mp)
}

type decodeConfig struct {
	logger      *slog.Logger
	metrics     *observe.Metrics
	sampleRate  int
	mono        bool
	chunkFrames int
	info        *Info
}

// DecodeOption configures Decode and DecodeBatch.
type DecodeOption func(*decodeConfig)

func newDecodeConfig(opts []DecodeOption) decodeConfig {
	cfg := decodeConfig{chunkFrames: defaultChunkFrames}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if cfg.metrics == nil {
		cfg.metrics = observe.DefaultMetrics()
	}
	return cfg
}

// WithLogger sets the logger for decode events. Defaults to slog.Default.
func WithLogger(l *slog.Logger) DecodeOption {
	return func(c *decodeConfig) { c.logger = l }
}

// WithMetrics records decode metrics on m instead of the global provider.
func WithMetrics(m *Metrics) DecodeOption {
	return func(c *decodeConfig) { c.metrics = m }
}

// WithSampleRate resamples the decoded stream to hz.
func WithSampleRate(hz int) DecodeOption {
	return func(c *decodeConfig) { c.sampleRate = hz }
}

// WithMono mixes all channels down to one.
func WithMono() DecodeOption {
	return func(c *decodeConfig) { c.mono = true }
}

// WithChunkFrames sets how many frames the resample and mix stages read
// at a time.
func WithChunkFrames(n int) DecodeOption {
	return func(c *decodeConfig) { c.chunkFrames = n }
}

// WithInfo stores a description of the source stream in dst when Decode
// succeeds. dst is left untouched on failure. Each concurrent Decode needs
// its own Info.
func WithInfo(dst *Info) DecodeOption {
	return func(c *decodeConfig) { c.info = dst }
}

type encodeConfig struct {
	logger   *slog.Logger
	metrics  *observe.Metrics
	comments []string
	serial   *uint32
}

// EncodeOption configures EncodeVorbis.
type EncodeOption func(*encodeConfig)

func newEncodeConfig(opts []EncodeOption) encodeConfig {
	var cfg encodeConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if cfg.metrics == nil {
		cfg.metrics = observe.DefaultMetrics()
	}
	return cfg
}

// WithComments adds Vorbis user comments of the form "KEY=value".
func WithComments(comments ...string) EncodeOption {
	return func(c *encodeConfig) { c.comments = append(c.comments, comments...) }
}

// WithSerial sets the Ogg stream serial number. The default is a fixed
// value so output stays reproducible.
func WithSerial(serial uint32) EncodeOption {
	return func(c *encodeConfig) { c.serial = &serial }
}

func WithEncodeLogger(l *slog.Logger) EncodeOption {
	return func(c *encodeConfig) { c.logger = l }
}

func WithEncodeMetrics(m *Metrics) EncodeOption {
	return func(c *encodeConfig) { c.metrics = m }
}
