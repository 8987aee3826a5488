// SPDX-License-Identifier: EPL-2.0

package dsp

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// MDCT computes the forward modified discrete cosine transform of blocks of
// 2N samples into N coefficients:
//
//	X[k] = scale * sum_{n<2N} x[n] cos(pi/N (n + 1/2 + N/2)(k + 1/2))
//
// using a DCT-IV of the folded input evaluated with an N/2 point FFT.
// An MDCT keeps scratch space and must not be shared between goroutines.
type MDCT struct {
	n     int
	fft   *fourier.CmplxFFT
	pre   []complex128
	post  []complex128
	fold  []float64
	z     []complex128
	spec  []complex128
	scale float64
}

// NewMDCT prepares a transform for blocks of size samples. size must be a
// power of two of at least 8.
func NewMDCT(size int, scale float64) *MDCT {
	if size < 8 || size&(size-1) != 0 {
		panic("dsp: MDCT size must be a power of two >= 8")
	}
	n := size / 2
	m := &MDCT{
		n:     n,
		fft:   fourier.NewCmplxFFT(n / 2),
		pre:   make([]complex128, n/2),
		post:  make([]complex128, n/2),
		fold:  make([]float64, n),
		z:     make([]complex128, n/2),
		spec:  make([]complex128, n/2),
		scale: scale,
	}
	fn := float64(n)
	for i := range m.pre {
		m.pre[i] = cmplx.Rect(1, -math.Pi*float64(i)/fn)
		m.post[i] = cmplx.Rect(scale, -math.Pi*float64(4*i+1)/(4*fn))
	}
	return m
}

// Size returns the input block length.
func (m *MDCT) Size() int { return 2 * m.n }

// Forward transforms in (len 2N) into out (len N).
func (m *MDCT) Forward(in, out []float64) {
	n, h := m.n, m.n/2
	if len(in) != 2*n || len(out) != n {
		panic("dsp: MDCT buffer length mismatch")
	}

	// x = [a b c d] folds to (-c_r - d, a - b_r)
	a, b, c, d := in[:h], in[h:n], in[n:n+h], in[n+h:]
	for i := range h {
		m.fold[i] = -c[h-1-i] - d[i]
		m.fold[h+i] = a[i] - b[h-1-i]
	}

	u := m.fold
	for i := range m.z {
		m.z[i] = complex(u[2*i], u[n-1-2*i]) * m.pre[i]
	}
	m.spec = m.fft.Coefficients(m.spec, m.z)
	for k, z := range m.spec {
		w := z * m.post[k]
		out[2*k] = real(w)
		out[n-1-2*k] = -imag(w)
	}
}

// VorbisWindow returns the power-complementary window used by Vorbis for
// blocks of size samples.
func VorbisWindow(size int) []float64 {
	w := make([]float64, size)
	half := float64(size / 2)
	for i := range w {
		s := math.Sin((float64(i) + 0.5) / half * math.Pi / 2)
		w[i] = math.Sin(math.Pi / 2 * s * s)
	}
	return w
}
