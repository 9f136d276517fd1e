// Package msequence generates maximal-length pseudo-random binary sequences
// from a linear feedback shift register.
package msequence

import "fmt"

const (
	MinOrder = 2
	MaxOrder = 31
)

// Default primitive generator polynomials indexed by register order.
var defaultPolynomials = map[uint]uint32{
	2:  0x0007,
	3:  0x000b,
	4:  0x0013,
	5:  0x0025,
	6:  0x0043,
	7:  0x0089,
	8:  0x011d,
	9:  0x0211,
	10: 0x0409,
	11: 0x0805,
	12: 0x1053,
	13: 0x201b,
	14: 0x402b,
	15: 0x8003,
}

// Sequence is an m-sequence generator. It is not safe for concurrent use.
type Sequence struct {
	m     uint   // register order
	poly  uint32 // generator polynomial, including the x^m term
	taps  uint32 // feedback taps (poly >> 1)
	seed  uint32 // initial register state
	mask  uint32 // 2^m - 1
	state uint32 // shift register
}

// New creates a generator of order m with generator polynomial poly and
// initial register state seed.
func New(m uint, poly uint32, seed uint32) (*Sequence, error) {
	if m < MinOrder || m > MaxOrder {
		return nil, fmt.Errorf("invalid m-sequence order: got %d, want %d..%d", m, MinOrder, MaxOrder)
	}
	if poly>>m != 1 {
		return nil, fmt.Errorf("invalid m-sequence polynomial 0x%X for order %d", poly, m)
	}

	mask := uint32(1)<<m - 1
	if seed&mask == 0 {
		return nil, fmt.Errorf("invalid m-sequence seed 0x%X: register must not be all zeros", seed)
	}

	return &Sequence{
		m:     m,
		poly:  poly,
		taps:  poly >> 1,
		seed:  seed & mask,
		mask:  mask,
		state: seed & mask,
	}, nil
}

// NewDefault creates a generator of order m using the default primitive
// polynomial and a seed of 1.
func NewDefault(m uint) (*Sequence, error) {
	poly, ok := DefaultPolynomial(m)
	if !ok {
		return nil, fmt.Errorf("no default m-sequence polynomial for order %d", m)
	}
	return New(m, poly, 1)
}

// DefaultPolynomial returns the default primitive polynomial for order m.
func DefaultPolynomial(m uint) (uint32, bool) {
	poly, ok := defaultPolynomials[m]
	return poly, ok
}

// Advance shifts the register once and returns the output bit.
func (s *Sequence) Advance() uint {
	b := parity(s.state & s.taps)
	s.state = ((s.state << 1) | b) & s.mask
	return uint(b)
}

// GenerateSymbol packs the next bits outputs into an integer, first bit
// most significant.
func (s *Sequence) GenerateSymbol(bits uint) uint {
	var sym uint
	for i := uint(0); i < bits; i++ {
		sym = (sym << 1) | s.Advance()
	}
	return sym
}

// Reset rewinds the register to its seed.
func (s *Sequence) Reset() {
	s.state = s.seed
}

// Length returns the sequence period, 2^m - 1.
func (s *Sequence) Length() int {
	return int(s.mask)
}

// Order returns the register order m.
func (s *Sequence) Order() uint { return s.m }

// Polynomial returns the generator polynomial.
func (s *Sequence) Polynomial() uint32 { return s.poly }

// State returns the current register contents.
func (s *Sequence) State() uint32 { return s.state }

func (s *Sequence) String() string {
	return fmt.Sprintf("<msequence, m=%d, poly=0x%04X, seed=0x%X, state=0x%X>", s.m, s.poly, s.seed, s.state)
}

func parity(x uint32) uint32 {
	x ^= x >> 16
	x ^= x >> 8
	x ^= x >> 4
	x ^= x >> 2
	x ^= x >> 1
	return x & 1
}
