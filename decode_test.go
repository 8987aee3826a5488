// SPDX-License-Identifier: EPL-2.0

package audcodec

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/ik5/audcodec/audio"
	"github.com/ik5/audcodec/internal/audiotest"
	"github.com/ik5/audcodec/sample"
)

var quiet = slog.New(slog.DiscardHandler)

// oggFixture encodes frames of a 440 Hz tone with the Vorbis encoder.
func oggFixture(t testing.TB, rate, channels, frames int) []byte {
	t.Helper()
	src := audiotest.NewSineSource(rate, channels, frames, 440)
	data := make([]float32, frames*channels)
	if _, err := src.ReadSamples(data); err != nil && err != io.EOF {
		t.Fatal(err)
	}
	buf, err := sample.NewBuffer(channels, rate, data)
	if err != nil {
		t.Fatal(err)
	}
	out, err := EncodeVorbis(context.Background(), buf, 96000, WithEncodeLogger(quiet))
	if err != nil {
		t.Fatalf("EncodeVorbis() error = %v", err)
	}
	return out
}

func ramp16(n int) []int16 {
	out := make([]int16, n)
	for i := range out {
		out[i] = int16(i*97 - 20000)
	}
	return out
}

func TestDecode_OneSecondWAV(t *testing.T) {
	t.Parallel()

	data := audiotest.WAV16(44100, 1, make([]int16, 44100))
	buf, rate, err := Decode[float32](context.Background(), bytes.NewReader(data), WithLogger(quiet))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if rate != 44100 || buf.Channels() != 1 || buf.Len() != 44100 {
		t.Errorf("got %d samples, %d ch at %d Hz; want 44100, 1 ch at 44100 Hz", buf.Len(), buf.Channels(), rate)
	}
	if buf.Kind() != sample.KindF32 {
		t.Errorf("Kind() = %v, want f32", buf.Kind())
	}
}

func TestDecode_Formats(t *testing.T) {
	t.Parallel()

	pcm := ramp16(600)
	ints := make([]int32, len(pcm))
	for i, s := range pcm {
		ints[i] = int32(s)
	}

	tests := []struct {
		name     string
		data     []byte
		rate     int
		channels int
		samples  int
		exact    bool // samples equal pcm
	}{
		{"wav", audiotest.WAV16(8000, 2, pcm), 8000, 2, 600, true},
		{"aiff", audiotest.AIFF(16000, 1, 16, ints), 16000, 1, 600, true},
		{"flac", audiotest.FLAC(44100, 2, 16, 128, ints, 300), 44100, 2, 600, true},
		{"mp3", audiotest.MP3Silence(4, true), 44100, 1, 4 * 1152, false},
		{"vorbis", oggFixture(t, 22050, 2, 5000), 22050, 2, 10000, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			buf, rate, err := Decode[int16](context.Background(), bytes.NewReader(tt.data), WithLogger(quiet))
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if rate != tt.rate || buf.Channels() != tt.channels || buf.Len() != tt.samples {
				t.Fatalf("got %d samples, %d ch at %d Hz; want %d, %d ch at %d Hz",
					buf.Len(), buf.Channels(), rate, tt.samples, tt.channels, tt.rate)
			}
			if tt.exact && !slices.Equal(buf.Samples(), pcm) {
				t.Error("samples differ from the encoded PCM")
			}
		})
	}
}

func TestDecode_NonSeekable(t *testing.T) {
	t.Parallel()

	pcm := ramp16(400)
	ints := make([]int32, len(pcm))
	for i, s := range pcm {
		ints[i] = int32(s)
	}
	inputs := map[string][]byte{
		"wav":    audiotest.WAV16(8000, 1, pcm),
		"aiff":   audiotest.AIFF(8000, 1, 16, ints),
		"flac":   audiotest.FLAC(8000, 1, 16, 64, ints, 400),
		"mp3":    audiotest.MP3Silence(2, false),
		"vorbis": oggFixture(t, 8000, 1, 1000),
	}

	for name, data := range inputs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			want, _, err := Decode[int16](context.Background(), bytes.NewReader(data), WithLogger(quiet))
			if err != nil {
				t.Fatalf("seekable Decode() error = %v", err)
			}
			got, _, err := Decode[int16](context.Background(), iotest.HalfReader(bytes.NewReader(data)), WithLogger(quiet))
			if err != nil {
				t.Fatalf("non-seekable Decode() error = %v", err)
			}
			if !slices.Equal(got.Samples(), want.Samples()) {
				t.Error("non-seekable input decoded differently")
			}
		})
	}
}

func TestDecode_Conversion(t *testing.T) {
	t.Parallel()

	data := audiotest.WAV16(8000, 1, []int16{0, 32767, -32768, 16384})
	ctx := context.Background()

	u8, _, err := Decode[uint8](ctx, bytes.NewReader(data), WithLogger(quiet))
	if err != nil {
		t.Fatal(err)
	}
	if got, want := u8.Samples(), []uint8{128, 255, 0, 192}; !slices.Equal(got, want) {
		t.Errorf("uint8 = %v, want %v", got, want)
	}

	s32, _, err := Decode[int32](ctx, bytes.NewReader(data), WithLogger(quiet))
	if err != nil {
		t.Fatal(err)
	}
	if got, want := s32.Samples(), []int32{0, 32767 << 16, -1 << 31, 1 << 30}; !slices.Equal(got, want) {
		t.Errorf("int32 = %v, want %v", got, want)
	}

	u16, _, err := Decode[uint16](ctx, bytes.NewReader(data), WithLogger(quiet))
	if err != nil {
		t.Fatal(err)
	}
	if got, want := u16.Samples(), []uint16{32768, 65535, 0, 49152}; !slices.Equal(got, want) {
		t.Errorf("uint16 = %v, want %v", got, want)
	}

	f64, _, err := Decode[float64](ctx, bytes.NewReader(data), WithLogger(quiet))
	if err != nil {
		t.Fatal(err)
	}
	if got, want := f64.Samples(), []float64{0, 32767.0 / 32768, -1, 0.5}; !slices.Equal(got, want) {
		t.Errorf("float64 = %v, want %v", got, want)
	}
}

func TestDecode_FloatWAV(t *testing.T) {
	t.Parallel()

	in := []float32{0, 0.5, -0.5, 1}
	data := audiotest.WAV(48000, 2, 32, audiotest.WAVFloat, audiotest.FloatBits(in))
	buf, rate, err := Decode[float32](context.Background(), bytes.NewReader(data), WithLogger(quiet))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if rate != 48000 || !slices.Equal(buf.Samples(), in) {
		t.Errorf("got %v at %d Hz, want %v at 48000", buf.Samples(), rate, in)
	}
}

func TestDecode_Transforms(t *testing.T) {
	t.Parallel()

	stereo := make([]int16, 2*16000)
	for i := range stereo {
		if i%2 == 0 {
			stereo[i] = 16384
		}
	}
	data := audiotest.WAV16(16000, 2, stereo)

	tests := []struct {
		name     string
		opts     []DecodeOption
		rate     int
		channels int
	}{
		{"mono", []DecodeOption{WithMono()}, 16000, 1},
		{"resample", []DecodeOption{WithSampleRate(8000)}, 8000, 2},
		{"both", []DecodeOption{WithSampleRate(8000), WithMono(), WithChunkFrames(100)}, 8000, 1},
		{"same rate", []DecodeOption{WithSampleRate(16000)}, 16000, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			opts := append([]DecodeOption{WithLogger(quiet)}, tt.opts...)
			buf, rate, err := Decode[float32](context.Background(), bytes.NewReader(data), opts...)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if rate != tt.rate || buf.Channels() != tt.channels {
				t.Fatalf("got %d ch at %d Hz, want %d ch at %d Hz", buf.Channels(), rate, tt.channels, tt.rate)
			}
			if frames := buf.Frames(); frames < tt.rate*95/100 || frames > tt.rate*105/100 {
				t.Errorf("got %d frames, want about %d", frames, tt.rate)
			}
			if tt.channels == 1 {
				// left at 0.5, right silent
				mid := buf.At(buf.Len() / 2)
				if mid < 0.24 || mid > 0.26 {
					t.Errorf("mixed sample = %v, want 0.25", mid)
				}
			}
		})
	}
}

func TestDecode_Info(t *testing.T) {
	t.Parallel()

	data := audiotest.WAV16(16000, 2, ramp16(2*16000))
	want := Info{
		Format:     "wav",
		SampleRate: 16000,
		Channels:   2,
		Frames:     16000,
		Bytes:      int64(len(data)),
		Bitrate:    len(data) * 8,
	}

	tests := []struct {
		name string
		r    func() io.Reader
		opts []DecodeOption
	}{
		{"seekable", func() io.Reader { return bytes.NewReader(data) }, nil},
		{"stream", func() io.Reader { return iotest.HalfReader(bytes.NewReader(data)) }, nil},
		{"resampled mono", func() io.Reader { return bytes.NewReader(data) }, []DecodeOption{WithSampleRate(8000), WithMono()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var info Info
			opts := append([]DecodeOption{WithLogger(quiet), WithInfo(&info)}, tt.opts...)
			if _, _, err := Decode[int16](context.Background(), tt.r(), opts...); err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if info.Packets < 1 {
				t.Errorf("Packets = %d, want at least 1", info.Packets)
			}
			info.Packets = 0
			if info != want {
				t.Errorf("Info = %+v, want %+v", info, want)
			}
		})
	}
}

func TestDecode_InfoUntouchedOnFailure(t *testing.T) {
	t.Parallel()

	info := Info{Format: "sentinel"}
	_, _, err := Decode[int16](context.Background(), strings.NewReader("not audio"), WithLogger(quiet), WithInfo(&info))
	if err == nil {
		t.Fatal("Decode() error = nil")
	}
	if info.Format != "sentinel" {
		t.Errorf("Info written on failure: %+v", info)
	}
}

func TestDecode_ConsumesInput(t *testing.T) {
	t.Parallel()

	r := bytes.NewReader(audiotest.WAV16(8000, 1, ramp16(100)))
	if _, _, err := Decode[int16](context.Background(), r, WithLogger(quiet)); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if r.Len() != 0 {
		t.Errorf("%d bytes left unread", r.Len())
	}
}

type cancelReader struct {
	r      io.Reader
	cancel context.CancelFunc
}

func (c *cancelReader) Read(p []byte) (int, error) {
	c.cancel()
	return c.r.Read(p)
}

func TestDecode_Errors(t *testing.T) {
	t.Parallel()

	wav := audiotest.WAV16(8000, 1, ramp16(4000))
	mpegWAV := slices.Clone(wav)
	mpegWAV[20] = 0x55 // MPEG Layer III format tag
	boom := errors.New("disk on fire")

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name   string
		ctx    context.Context
		r      io.Reader
		opts   []DecodeOption
		want   error
		format string // non-empty for a *DecodeError
	}{
		{"nil reader", context.Background(), nil, nil, ErrInvalidParameter, ""},
		{"negative rate", context.Background(), bytes.NewReader(wav), []DecodeOption{WithSampleRate(-1)}, ErrInvalidParameter, ""},
		{"zero chunk", context.Background(), bytes.NewReader(wav), []DecodeOption{WithChunkFrames(0)}, ErrInvalidParameter, ""},
		{"empty", context.Background(), bytes.NewReader(nil), nil, ErrUnsupportedFormat, ""},
		{"text", context.Background(), bytes.NewReader([]byte("hello, this is not audio")), nil, ErrUnsupportedFormat, ""},
		{"mp3 in wav", context.Background(), bytes.NewReader(mpegWAV), nil, ErrUnsupportedFormat, ""},
		{"cancelled", cancelled, bytes.NewReader(wav), nil, ErrCancelled, ""},
		{"failing reader", context.Background(), io.MultiReader(bytes.NewReader(wav[:100]), iotest.ErrReader(boom)), nil, ErrIO, ""},
		{"failing mid stream", context.Background(), io.MultiReader(bytes.NewReader(wav[:6000]), iotest.ErrReader(boom)), nil, ErrIO, ""},
		{"truncated wav", context.Background(), bytes.NewReader(wav[:len(wav)-100]), nil, ErrDecode, "wav"},
		{"truncated mp3", context.Background(), bytes.NewReader(audiotest.MP3Silence(3, false)[:1000]), nil, ErrDecode, "mp3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			opts := append([]DecodeOption{WithLogger(quiet)}, tt.opts...)
			buf, rate, err := Decode[float32](tt.ctx, tt.r, opts...)
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
			if buf != nil || rate != 0 {
				t.Errorf("got a result alongside error %v", err)
			}

			var de *DecodeError
			if ok := errors.As(err, &de); ok != (tt.format != "") {
				t.Fatalf("errors.As(*DecodeError) = %v for %v", ok, err)
			}
			if de != nil && (de.Format != tt.format || de.Offset <= 0) {
				t.Errorf("DecodeError{Format: %q, Offset: %d}, want format %q and a positive offset", de.Format, de.Offset, tt.format)
			}
			if errors.Is(err, ErrIO) && !errors.Is(err, boom) {
				t.Errorf("ErrIO does not wrap the reader error: %v", err)
			}
		})
	}
}

func TestDecode_CancelledMidStream(t *testing.T) {
	t.Parallel()

	ints := make([]int32, 4000)
	data := audiotest.FLAC(8000, 1, 16, 64, ints, len(ints))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r := &cancelReader{r: bytes.NewReader(data), cancel: cancel}

	_, _, err := Decode[int16](ctx, r, WithLogger(quiet))
	if !errors.Is(err, ErrCancelled) || !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want ErrCancelled wrapping context.Canceled", err)
	}
}

func TestDecodeBatch(t *testing.T) {
	t.Parallel()

	rates := []int{8000, 16000, 22050, 44100}
	inputs := make([]io.Reader, len(rates))
	for i, rate := range rates {
		inputs[i] = bytes.NewReader(audiotest.WAV16(rate, 1, ramp16(rate/10)))
	}

	bufs, got, err := DecodeBatch[int16](context.Background(), inputs, 2, WithLogger(quiet))
	if err != nil {
		t.Fatalf("DecodeBatch() error = %v", err)
	}
	if !slices.Equal(got, rates) {
		t.Errorf("rates = %v, want %v", got, rates)
	}
	for i, buf := range bufs {
		if buf.Len() != rates[i]/10 {
			t.Errorf("bufs[%d] has %d samples, want %d", i, buf.Len(), rates[i]/10)
		}
	}
}

func TestDecodeBatch_Failure(t *testing.T) {
	t.Parallel()

	inputs := []io.Reader{
		bytes.NewReader(audiotest.WAV16(8000, 1, ramp16(100))),
		bytes.NewReader([]byte("not audio at all")),
		bytes.NewReader(audiotest.WAV16(8000, 1, ramp16(100))),
	}

	bufs, rates, err := DecodeBatch[int16](context.Background(), inputs, 0, WithLogger(quiet))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("error = %v, want ErrUnsupportedFormat", err)
	}
	if bufs != nil || rates != nil {
		t.Error("partial results returned")
	}
	if got := err.Error(); !strings.HasPrefix(got, "input 1:") {
		t.Errorf("error %q does not name the failing input", got)
	}
}

func TestDecodeBatch_RejectsInfo(t *testing.T) {
	t.Parallel()

	var info Info
	inputs := []io.Reader{bytes.NewReader(audiotest.WAV16(8000, 1, ramp16(10)))}
	if _, _, err := DecodeBatch[int16](context.Background(), inputs, 1, WithLogger(quiet), WithInfo(&info)); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("error = %v, want ErrInvalidParameter", err)
	}
}

func BenchmarkDecode(b *testing.B) {
	data := audiotest.WAV16(44100, 2, ramp16(2*44100))
	b.SetBytes(int64(len(data)))
	b.ReportAllocs()

	for b.Loop() {
		if _, _, err := Decode[float32](context.Background(), bytes.NewReader(data), WithLogger(quiet)); err != nil {
			b.Fatal(err)
		}
	}
}

// rateless reports no sample rate and counts packet reads.
type rateless struct{ reads int }

func (*rateless) SampleRate() int       { return 0 }
func (*rateless) Channels() int         { return 2 }
func (*rateless) Format() sample.Format { return sample.S16 }
func (*rateless) Close() error          { return nil }
func (r *rateless) NextPacket() (audio.Packet, error) {
	r.reads++
	return audio.Packet{Ints: make([]int32, 4), Frames: 2}, nil
}

func TestPullSource_InvalidLayoutBeforeRead(t *testing.T) {
	t.Parallel()

	b := &rateless{}
	cfg := newDecodeConfig([]DecodeOption{WithMono()})
	var info Info
	_, err := pullSource[int16](context.Background(), b, cfg, &info)
	if !errors.Is(err, sample.ErrInvalidRate) {
		t.Fatalf("pullSource() error = %v, want ErrInvalidRate", err)
	}
	if b.reads != 0 || info.Packets != 0 {
		t.Errorf("read %d packets (info %d) before rejecting the layout", b.reads, info.Packets)
	}
}
