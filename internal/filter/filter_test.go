package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

func TestDesign_Length(t *testing.T) {
	for _, p := range []Prototype{Kaiser, RRC, HammingRRC} {
		t.Run(p.String(), func(t *testing.T) {
			h, err := Design(p, 2, 7, 0.3, 0)
			require.NoError(t, err)
			assert.Len(t, h, 29)
			assert.InDelta(t, 2.0, floats.Sum(h), 1e-9)

			// linear phase
			for i := range h {
				assert.InDelta(t, h[i], h[len(h)-1-i], 1e-12, "tap %d", i)
			}
			assert.Equal(t, 14, floats.MaxIdx(h))
		})
	}
}

func TestDesign_MatchedResponse(t *testing.T) {
	testCases := []struct {
		desc string
		m    int
		beta float64
	}{
		{"default", 7, 0.3},
		{"wide", 5, 0.5},
		{"narrow", 10, 0.2},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			h, err := Design(Kaiser, 2, tC.m, tC.beta, 0)
			require.NoError(t, err)
			// h*h is close to zero at every non-zero symbol lag
			assert.Less(t, MatchedISI(h, 2), 0.005)
		})
	}

	kaiser, err := Design(Kaiser, 2, 7, 0.3, 0)
	require.NoError(t, err)
	rrc, err := Design(RRC, 2, 7, 0.3, 0)
	require.NoError(t, err)
	assert.Less(t, MatchedISI(kaiser, 2), MatchedISI(rrc, 2))
}

func TestMatchedISI(t *testing.T) {
	// a boxcar one symbol long is its own matched Nyquist pulse
	assert.Zero(t, MatchedISI([]float64{1, 1}, 2))
	assert.InDelta(t, 1.0/3, MatchedISI([]float64{1, 1, 1}, 2), 1e-12)
	assert.Zero(t, MatchedISI(make([]float64, 5), 2))
}

func TestDesign_Invalid(t *testing.T) {
	testCases := []struct {
		desc string
		k, m int
		beta float64
		dt   float64
	}{
		{"factor too small", 1, 7, 0.3, 0},
		{"zero delay", 2, 0, 0.3, 0},
		{"zero bandwidth", 2, 7, 0, 0},
		{"bandwidth above one", 2, 7, 1.5, 0},
		{"offset out of range", 2, 7, 0.3, 0.75},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			_, err := Design(RRC, tC.k, tC.m, tC.beta, tC.dt)
			assert.Error(t, err)
		})
	}

	_, err := Design(Prototype(42), 2, 7, 0.3, 0)
	assert.Error(t, err)
}

func TestParsePrototype(t *testing.T) {
	p, err := ParsePrototype(" Hamming-RRC ")
	require.NoError(t, err)
	assert.Equal(t, HammingRRC, p)

	_, err = ParsePrototype("gaussian")
	assert.Error(t, err)
}

func TestInterpolator_ImpulseResponse(t *testing.T) {
	for _, p := range []Prototype{Kaiser, RRC, HammingRRC} {
		t.Run(p.String(), func(t *testing.T) {
			f, err := NewInterpolator(p, 2, 7, 0.3, 0)
			require.NoError(t, err)
			taps := f.Taps()

			out := make([]complex64, 0, 2*20)
			y := make([]complex64, 2)
			for i := 0; i < 20; i++ {
				x := complex64(0)
				if i == 0 {
					x = complex(1, -1)
				}
				f.Execute(x, y)
				out = append(out, y...)
			}

			for i, s := range out {
				want := 0.0
				if i < len(taps) {
					want = taps[i]
				}
				assert.InDelta(t, want, float64(real(s)), 1e-6, "sample %d", i)
				assert.InDelta(t, -want, float64(imag(s)), 1e-6, "sample %d", i)
			}
		})
	}
}

func TestInterpolator_Reset(t *testing.T) {
	f, err := NewInterpolator(Kaiser, 2, 7, 0.3, 0)
	require.NoError(t, err)

	run := func() []complex64 {
		var out []complex64
		y := make([]complex64, 2)
		for i := 0; i < 40; i++ {
			f.Execute(complex(float32(i%3)-1, float32(i%5)-2), y)
			out = append(out, y...)
		}
		return out
	}

	first := run()
	f.Reset()
	assert.Equal(t, first, run())
}

func TestInterpolator_Factor(t *testing.T) {
	f, err := NewInterpolator(RRC, 4, 3, 0.5, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, f.Factor())
	assert.Len(t, f.Taps(), 25)

	_, err = NewInterpolator(RRC, 1, 3, 0.5, 0)
	assert.Error(t, err)
}
