package modem

import (
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModulateDemodulate(t *testing.T) {
	for _, s := range []Scheme{BPSK, QPSK} {
		t.Run(s.String(), func(t *testing.T) {
			for sym := uint(0); sym < 1<<uint(s.BitsPerSymbol()); sym++ {
				x := s.Modulate(sym)
				assert.InDelta(t, 1.0, cmplx.Abs(complex128(x)), 1e-6)
				assert.Equal(t, sym, s.Demodulate(x))
			}
		})
	}
}

func TestQPSK_GrayMapping(t *testing.T) {
	// adjacent constellation points differ in exactly one bit
	assert.Equal(t, uint(0), QPSK.Demodulate(complex(0.5, 0.5)))
	assert.Equal(t, uint(1), QPSK.Demodulate(complex(0.5, -0.5)))
	assert.Equal(t, uint(2), QPSK.Demodulate(complex(-0.5, 0.5)))
	assert.Equal(t, uint(3), QPSK.Demodulate(complex(-0.5, -0.5)))
}

func TestModulateBits_RoundTrip(t *testing.T) {
	bits := []bool{true, false, false, true, true, true, false, false, true}

	for _, s := range []Scheme{BPSK, QPSK} {
		t.Run(s.String(), func(t *testing.T) {
			sym := make([]complex64, s.SymbolCount(len(bits)))
			s.ModulateBits(bits, sym)
			assert.Equal(t, bits, s.DemodulateBits(sym, len(bits)))
		})
	}
}

func TestSymbolCount(t *testing.T) {
	assert.Equal(t, 600, QPSK.SymbolCount(1200))
	assert.Equal(t, 601, QPSK.SymbolCount(1201))
	assert.Equal(t, 1201, BPSK.SymbolCount(1201))
}

func TestParseScheme(t *testing.T) {
	s, err := ParseScheme("QPSK")
	require.NoError(t, err)
	assert.Equal(t, QPSK, s)

	_, err = ParseScheme("16qam")
	assert.Error(t, err)
}
