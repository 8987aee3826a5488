// SPDX-License-Identifier: EPL-2.0

package audcodec

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/ik5/audcodec/formats/vorbis"
	"github.com/ik5/audcodec/internal/audiotest"
	"github.com/ik5/audcodec/sample"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func sine(t testing.TB, rate, channels, frames int) *sample.Buffer[float32] {
	t.Helper()
	src := audiotest.NewSineSource(rate, channels, frames, 440)
	data := make([]float32, frames*channels)
	_, _ = src.ReadSamples(data)
	buf, err := sample.NewBuffer(channels, rate, data)
	if err != nil {
		t.Fatal(err)
	}
	return buf
}

func TestEncodeVorbis_RoundTrip(t *testing.T) {
	t.Parallel()

	// two seconds of stereo
	in := sine(t, 44100, 2, 2*44100)
	out, err := EncodeVorbis(context.Background(), in, 128000, WithEncodeLogger(quiet))
	if err != nil {
		t.Fatalf("EncodeVorbis() error = %v", err)
	}
	if !bytes.HasPrefix(out, []byte("OggS")) {
		t.Fatalf("output starts with %q, want OggS", out[:min(4, len(out))])
	}

	back, rate, err := Decode[float32](context.Background(), bytes.NewReader(out), WithLogger(quiet))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if rate != 44100 || back.Channels() != 2 || back.Frames() != in.Frames() {
		t.Errorf("decoded %d frames, %d ch at %d Hz; want %d, 2 ch at 44100 Hz",
			back.Frames(), back.Channels(), rate, in.Frames())
	}
}

func TestEncodeVorbis_SampleTypes(t *testing.T) {
	t.Parallel()

	pcm := make([]int16, 8000)
	for i := range pcm {
		pcm[i] = int16((i % 100) * 300)
	}
	s16, err := sample.NewBuffer(1, 8000, pcm)
	if err != nil {
		t.Fatal(err)
	}
	u8 := sample.Convert[uint8](s16)

	a, err := EncodeVorbis(context.Background(), s16, 32000, WithEncodeLogger(quiet))
	if err != nil {
		t.Fatalf("int16: %v", err)
	}
	b, err := EncodeVorbis(context.Background(), u8, 32000, WithEncodeLogger(quiet))
	if err != nil {
		t.Fatalf("uint8: %v", err)
	}
	if len(a) == 0 || len(b) == 0 {
		t.Error("empty output")
	}
}

func TestEncodeVorbis_Deterministic(t *testing.T) {
	t.Parallel()

	in := sine(t, 22050, 1, 10000)
	a, err := EncodeVorbis(context.Background(), in, 64000, WithEncodeLogger(quiet))
	if err != nil {
		t.Fatal(err)
	}
	b, err := EncodeVorbis(context.Background(), in, 64000, WithEncodeLogger(quiet))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Error("two encodes of the same buffer differ")
	}
}

func TestEncodeVorbis_Options(t *testing.T) {
	t.Parallel()

	in := sine(t, 16000, 1, 4000)
	out, err := EncodeVorbis(context.Background(), in, 48000,
		WithEncodeLogger(quiet),
		WithSerial(0xdeadbeef),
		WithComments("TITLE=Greeting", "ARTIST=Nobody"),
	)
	if err != nil {
		t.Fatalf("EncodeVorbis() error = %v", err)
	}

	// serial number field of the first page header
	if got := binary.LittleEndian.Uint32(out[14:18]); got != 0xdeadbeef {
		t.Errorf("serial = %#x, want 0xdeadbeef", got)
	}
	for _, c := range []string{"TITLE=Greeting", "ARTIST=Nobody"} {
		if !bytes.Contains(out, []byte(c)) {
			t.Errorf("comment %q not in output", c)
		}
	}
}

func TestEncodeVorbis_Errors(t *testing.T) {
	t.Parallel()

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	empty, err := sample.NewBuffer[float32](2, 44100, nil)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		ctx     context.Context
		buf     *sample.Buffer[float32]
		bitrate int
		opts    []EncodeOption
		want    error
	}{
		{"nil buffer", context.Background(), nil, 96000, nil, ErrEncode},
		{"no frames", context.Background(), empty, 96000, nil, ErrEncode},
		{"empty beats bad bitrate", context.Background(), empty, 1, nil, ErrEncode},
		{"nine channels", context.Background(), sine(t, 44100, 9, 100), 96000, nil, ErrUnsupportedConfiguration},
		{"channels beat bitrate", context.Background(), sine(t, 44100, 9, 100), 1, nil, ErrUnsupportedConfiguration},
		{"rate too low", context.Background(), sine(t, 4000, 1, 100), 96000, nil, ErrUnsupportedConfiguration},
		{"rate too high", context.Background(), sine(t, 384000, 1, 100), 96000, nil, ErrUnsupportedConfiguration},
		{"bitrate too low", context.Background(), sine(t, 44100, 1, 100), vorbis.MinBitrate - 1, nil, ErrInvalidParameter},
		{"bitrate too high", context.Background(), sine(t, 44100, 1, 100), vorbis.MaxBitrate + 1, nil, ErrInvalidParameter},
		{"bad comment", context.Background(), sine(t, 44100, 1, 100), 96000, []EncodeOption{WithComments("no equals sign")}, ErrInvalidParameter},
		{"cancelled", cancelled, sine(t, 44100, 1, 100), 96000, nil, ErrCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			opts := append([]EncodeOption{WithEncodeLogger(quiet)}, tt.opts...)
			out, err := EncodeVorbis(tt.ctx, tt.buf, tt.bitrate, opts...)
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
			if out != nil {
				t.Error("output returned alongside an error")
			}
		})
	}
}

func TestPipelineMetrics(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	m, err := NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	ctx := context.Background()
	out, err := EncodeVorbis(ctx, sine(t, 8000, 1, 3000), 32000, WithEncodeLogger(quiet), WithEncodeMetrics(m))
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := Decode[int16](ctx, bytes.NewReader(out), WithLogger(quiet), WithMetrics(m)); err != nil {
		t.Fatal(err)
	}
	_, _, _ = Decode[int16](ctx, bytes.NewReader([]byte("junk")), WithLogger(quiet), WithMetrics(m))

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	totals := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, met := range sm.Metrics {
			if s, ok := met.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range s.DataPoints {
					totals[met.Name] += dp.Value
				}
			}
		}
	}

	if got := totals["audcodec.encode.bytes"]; got != int64(len(out)) {
		t.Errorf("encode bytes = %d, want %d", got, len(out))
	}
	if totals["audcodec.decode.packets"] < 1 {
		t.Error("no decode packets recorded")
	}
	if got := totals["audcodec.errors"]; got != 1 {
		t.Errorf("errors = %d, want 1", got)
	}
}

func BenchmarkEncodeVorbis(b *testing.B) {
	in := sine(b, 44100, 2, 44100)
	b.ReportAllocs()

	for b.Loop() {
		if _, err := EncodeVorbis(context.Background(), in, 128000, WithEncodeLogger(quiet)); err != nil {
			b.Fatal(err)
		}
	}
}
