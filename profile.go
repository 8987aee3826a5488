// SPDX-License-Identifier: EPL-2.0

package audcodec

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ik5/audcodec/formats/vorbis"
	"gopkg.in/yaml.v3"
)

// Profile describes a transcode to Ogg/Vorbis:
//
//	bitrate: 96000
//	sample_rate: 48000
//	mono: true
//	comments:
//	  - TITLE=Greeting
//	serial: 42
//
// Only bitrate is required. A zero sample_rate keeps the source rate.
type Profile struct {
	Bitrate    int      `yaml:"bitrate"`
	SampleRate int      `yaml:"sample_rate"`
	Mono       bool     `yaml:"mono"`
	Comments   []string `yaml:"comments"`
	Serial     *uint32  `yaml:"serial"`
}

// LoadProfile reads and validates the YAML profile at path.
func LoadProfile(path string) (*Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("profile: open %q: %w", path, err)
	}
	defer f.Close()

	p, err := ParseProfile(f)
	if err != nil {
		return nil, fmt.Errorf("profile: parse %q: %w", path, err)
	}
	return p, nil
}

// ParseProfile decodes a YAML profile from r. Unknown fields are rejected
// and the result is validated.
func ParseProfile(r io.Reader) (*Profile, error) {
	var p Profile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("%w: decode yaml: %w", ErrInvalidParameter, err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate reports every out-of-range field at once. Each joined error
// matches ErrInvalidParameter.
func (p *Profile) Validate() error {
	var errs []error
	if p.Bitrate < vorbis.MinBitrate || p.Bitrate > vorbis.MaxBitrate {
		errs = append(errs, fmt.Errorf("%w: bitrate %d, want %d..%d",
			ErrInvalidParameter, p.Bitrate, vorbis.MinBitrate, vorbis.MaxBitrate))
	}
	if p.SampleRate != 0 && (p.SampleRate < vorbis.MinSampleRate || p.SampleRate > vorbis.MaxSampleRate) {
		errs = append(errs, fmt.Errorf("%w: sample_rate %d, want 0 or %d..%d",
			ErrInvalidParameter, p.SampleRate, vorbis.MinSampleRate, vorbis.MaxSampleRate))
	}
	for i, c := range p.Comments {
		if k, _, ok := strings.Cut(c, "="); !ok || k == "" {
			errs = append(errs, fmt.Errorf("%w: comments[%d] %q is not KEY=value", ErrInvalidParameter, i, c))
		}
	}
	return errors.Join(errs...)
}

// DecodeOptions returns the decode side of the profile.
func (p *Profile) DecodeOptions() []DecodeOption {
	var opts []DecodeOption
	if p.SampleRate > 0 {
		opts = append(opts, WithSampleRate(p.SampleRate))
	}
	if p.Mono {
		opts = append(opts, WithMono())
	}
	return opts
}

// EncodeOptions returns the encode side of the profile.
func (p *Profile) EncodeOptions() []EncodeOption {
	var opts []EncodeOption
	if len(p.Comments) > 0 {
		opts = append(opts, WithComments(p.Comments...))
	}
	if p.Serial != nil {
		opts = append(opts, WithSerial(*p.Serial))
	}
	return opts
}

// Transcode decodes src in any supported format and writes it to dst as
// Ogg/Vorbis following p. Nothing is written unless both stages succeed.
func Transcode(ctx context.Context, dst io.Writer, src io.Reader, p *Profile, opts ...DecodeOption) error {
	if p == nil {
		return fmt.Errorf("%w: nil profile", ErrInvalidParameter)
	}
	if err := p.Validate(); err != nil {
		return err
	}

	buf, _, err := Decode[float32](ctx, src, append(p.DecodeOptions(), opts...)...)
	if err != nil {
		return err
	}

	var eopts []EncodeOption
	cfg := newDecodeConfig(opts)
	eopts = append(eopts, WithEncodeLogger(cfg.logger), WithEncodeMetrics(cfg.metrics))
	out, err := EncodeVorbis(ctx, buf, p.Bitrate, append(eopts, p.EncodeOptions()...)...)
	if err != nil {
		return err
	}

	if _, err := dst.Write(out); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	return nil
}
