// SPDX-License-Identifier: EPL-2.0

// Package dsp holds the numeric kernels shared by the stream transforms and
// the Vorbis encoder: spline interpolation and the MDCT.
package dsp
