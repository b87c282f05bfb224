// Package renderer holds the one interpolation primitive every animated
// property is built from: camera, fades, slides, transitions.
package renderer

import (
	"math"
	"sort"
)

// Extrapolation decides what happens outside the first/last control point.
type Extrapolation int

const (
	// Clamp holds the edge value. This is the default on both sides.
	Clamp Extrapolation = iota
	// Extend continues the edge segment linearly.
	Extend
)

type options struct {
	left, right Extrapolation
	easing      Easing
}

// Option customizes Interpolate.
type Option func(*options)

// WithEasing applies fn to the normalized position inside each segment.
func WithEasing(fn Easing) Option {
	return func(o *options) { o.easing = fn }
}

// ExtendLeft lets values before the first point extrapolate.
func ExtendLeft() Option {
	return func(o *options) { o.left = Extend }
}

// ExtendRight lets values past the last point extrapolate.
func ExtendRight() Option {
	return func(o *options) { o.right = Extend }
}

// Interpolate maps x through the piecewise-linear curve defined by the
// sorted control points in and their values out. Mismatched or empty inputs
// return 0; a single point returns its value. Zero-length segments never
// divide by zero.
func Interpolate(x float64, in, out []float64, opts ...Option) float64 {
	n := len(in)
	if n == 0 || n != len(out) {
		return 0
	}
	o := options{easing: Linear}
	for _, opt := range opts {
		opt(&o)
	}
	if n == 1 || math.IsNaN(x) {
		return out[0]
	}

	if x <= in[0] {
		if o.left == Clamp || x == in[0] {
			return out[0]
		}
		return segment(x, in[0], in[1], out[0], out[1], Linear)
	}
	if x >= in[n-1] {
		if o.right == Clamp || x == in[n-1] {
			return out[n-1]
		}
		return segment(x, in[n-2], in[n-1], out[n-2], out[n-1], Linear)
	}

	// First index whose point lies beyond x.
	i := sort.SearchFloat64s(in, x)
	if in[i] == x {
		return out[i]
	}
	return segment(x, in[i-1], in[i], out[i-1], out[i], o.easing)
}

func segment(x, x0, x1, y0, y1 float64, ease Easing) float64 {
	span := x1 - x0
	if span == 0 {
		return y1
	}
	t := (x - x0) / span
	return y0 + (y1-y0)*ease(t)
}

// Frames is Interpolate over integer frame control points.
func Frames(frame int, in []int, out []float64, opts ...Option) float64 {
	fin := make([]float64, len(in))
	for i, v := range in {
		fin[i] = float64(v)
	}
	return Interpolate(float64(frame), fin, out, opts...)
}

// Fade is the common two-point opacity ramp 0->1 across [from, to].
func Fade(frame, from, to int, opts ...Option) float64 {
	return Interpolate(float64(frame), []float64{float64(from), float64(to)}, []float64{0, 1}, opts...)
}

// Lerp blends a and b by t without clamping.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Clamp01 bounds v to [0,1] and maps NaN to 0.
func Clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
