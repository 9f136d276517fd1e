// Package modem maps bits onto linear PSK constellations and back.
package modem

import (
	"fmt"
	"math"
	"strings"
)

// Scheme is a linear modulation scheme
type Scheme int

const (
	BPSK Scheme = iota
	QPSK
)

var schemeNames = map[Scheme]string{
	BPSK: "bpsk",
	QPSK: "qpsk",
}

const invSqrt2 = float32(math.Sqrt2 / 2)

// Gray-coded constellations, unit energy.
var constellations = map[Scheme][]complex64{
	BPSK: {1, -1},
	QPSK: {
		complex(invSqrt2, invSqrt2),
		complex(invSqrt2, -invSqrt2),
		complex(-invSqrt2, invSqrt2),
		complex(-invSqrt2, -invSqrt2),
	},
}

func (s Scheme) String() string {
	if name, ok := schemeNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Scheme(%d)", int(s))
}

// ParseScheme parses a modulation scheme name such as "qpsk"
func ParseScheme(name string) (Scheme, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for s, n := range schemeNames {
		if n == name {
			return s, nil
		}
	}
	return BPSK, fmt.Errorf("unknown modulation scheme %q", name)
}

// BitsPerSymbol returns the number of bits carried by one symbol
func (s Scheme) BitsPerSymbol() int {
	switch s {
	case QPSK:
		return 2
	default:
		return 1
	}
}

// Modulate maps a symbol index onto the constellation
func (s Scheme) Modulate(sym uint) complex64 {
	c := constellations[s]
	return c[sym%uint(len(c))]
}

// Demodulate makes a hard decision on a received sample
func (s Scheme) Demodulate(x complex64) uint {
	switch s {
	case QPSK:
		var sym uint
		if real(x) < 0 {
			sym |= 2
		}
		if imag(x) < 0 {
			sym |= 1
		}
		return sym
	default:
		if real(x) < 0 {
			return 1
		}
		return 0
	}
}

// SymbolCount returns the number of symbols needed for n bits
func (s Scheme) SymbolCount(n int) int {
	bps := s.BitsPerSymbol()
	return (n + bps - 1) / bps
}

// ModulateBits maps a bit stream onto sym, MSB first, zero padding the last symbol.
// len(sym) must be at least SymbolCount(len(bits)).
func (s Scheme) ModulateBits(bits []bool, sym []complex64) {
	bps := s.BitsPerSymbol()
	for i := 0; i < s.SymbolCount(len(bits)); i++ {
		var v uint
		for b := 0; b < bps; b++ {
			v <<= 1
			if j := i*bps + b; j < len(bits) && bits[j] {
				v |= 1
			}
		}
		sym[i] = s.Modulate(v)
	}
}

// DemodulateBits makes hard decisions on sym and returns n bits
func (s Scheme) DemodulateBits(sym []complex64, n int) []bool {
	bps := s.BitsPerSymbol()
	bits := make([]bool, s.SymbolCount(n)*bps)
	for i := 0; i < s.SymbolCount(n) && i < len(sym); i++ {
		v := s.Demodulate(sym[i])
		for b := 0; b < bps; b++ {
			bits[i*bps+b] = v&(1<<uint(bps-1-b)) != 0
		}
	}
	return bits[:n]
}
