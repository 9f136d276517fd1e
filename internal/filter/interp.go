package filter

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Interpolator is a polyphase FIR interpolator with complex input and real
// taps. It produces k output samples per input sample.
type Interpolator struct {
	proto Prototype
	k     int
	m     int
	beta  float64

	taps     []float64
	branches [][]float64 // per output phase, oldest input first
	n        int         // taps per branch

	// double-length delay lines; the window is [pos, pos+n)
	re, im []float64
	pos    int
}

// NewInterpolator designs a prototype and builds an interpolator around it
func NewInterpolator(proto Prototype, k, m int, beta, dt float64) (*Interpolator, error) {
	taps, err := Design(proto, k, m, beta, dt)
	if err != nil {
		return nil, err
	}

	f := &Interpolator{
		proto: proto,
		k:     k,
		m:     m,
		beta:  beta,
		taps:  taps,
		n:     (len(taps) + k - 1) / k,
	}

	f.branches = make([][]float64, k)
	for j := range f.branches {
		b := make([]float64, f.n)
		for w := 0; w < f.n; w++ {
			if i := j + k*(f.n-1-w); i < len(taps) {
				b[w] = taps[i]
			}
		}
		f.branches[j] = b
	}

	f.re = make([]float64, 2*f.n)
	f.im = make([]float64, 2*f.n)
	return f, nil
}

// Execute pushes one input sample and writes Factor() output samples into y
func (f *Interpolator) Execute(x complex64, y []complex64) {
	f.re[f.pos] = float64(real(x))
	f.re[f.pos+f.n] = float64(real(x))
	f.im[f.pos] = float64(imag(x))
	f.im[f.pos+f.n] = float64(imag(x))
	f.pos++
	if f.pos == f.n {
		f.pos = 0
	}

	re := f.re[f.pos : f.pos+f.n]
	im := f.im[f.pos : f.pos+f.n]
	for j, b := range f.branches {
		y[j] = complex(float32(floats.Dot(b, re)), float32(floats.Dot(b, im)))
	}
}

// Reset clears the delay line
func (f *Interpolator) Reset() {
	for i := range f.re {
		f.re[i] = 0
		f.im[i] = 0
	}
	f.pos = 0
}

// Factor returns the interpolation factor
func (f *Interpolator) Factor() int { return f.k }

// Taps returns a copy of the prototype taps
func (f *Interpolator) Taps() []float64 {
	return append([]float64(nil), f.taps...)
}

func (f *Interpolator) String() string {
	return fmt.Sprintf("<filter.Interpolator, proto=%s, k=%d, m=%d, beta=%.2f, taps=%d>",
		f.proto, f.k, f.m, f.beta, len(f.taps))
}
