// Package packet encodes fixed-length messages into modulated symbol frames:
// error detection, two concatenated FEC stages, bit interleaving, whitening
// and constellation mapping.
package packet

import (
	"fmt"
	"math"

	"github.com/dbehnke/dsssgen/internal/correction"
	"github.com/dbehnke/dsssgen/internal/modem"
	"github.com/dbehnke/dsssgen/internal/msequence"
)

// whitening sequence order
const whiteningOrder = 7

// Encoder is a fixed-configuration packet encoder/modulator
type Encoder struct {
	payloadLen int
	check      correction.Check
	fec0       correction.FEC
	fec1       correction.FEC
	scheme     modem.Scheme

	msgBits   int // message + check value
	fec0Bits  int // after inner FEC
	codedBits int // after outer FEC
	frameLen  int // symbols
	stride    int // interleaver stride, coprime with codedBits
	whitening []bool
}

// New creates an encoder for payloadLen-byte messages
func New(payloadLen int, check correction.Check, fec0, fec1 correction.FEC, scheme modem.Scheme) (*Encoder, error) {
	if payloadLen <= 0 {
		return nil, fmt.Errorf("invalid packet payload length: %d", payloadLen)
	}

	e := &Encoder{
		payloadLen: payloadLen,
		check:      check,
		fec0:       fec0,
		fec1:       fec1,
		scheme:     scheme,
	}
	e.msgBits = (payloadLen + check.Len()) * 8
	e.fec0Bits = fec0.EncodedLen(e.msgBits)
	e.codedBits = fec1.EncodedLen(e.fec0Bits)
	e.frameLen = scheme.SymbolCount(e.codedBits)
	e.stride = interleaverStride(e.codedBits)

	ms, err := msequence.NewDefault(whiteningOrder)
	if err != nil {
		return nil, fmt.Errorf("failed to create whitening sequence: %w", err)
	}
	e.whitening = make([]bool, e.codedBits)
	for i := range e.whitening {
		e.whitening[i] = ms.Advance() == 1
	}

	return e, nil
}

// PayloadLen returns the message length in bytes
func (e *Encoder) PayloadLen() int { return e.payloadLen }

// FrameLen returns the number of modulated symbols per message
func (e *Encoder) FrameLen() int { return e.frameLen }

// Check returns the error-detection scheme
func (e *Encoder) Check() correction.Check { return e.check }

// Scheme returns the modulation scheme
func (e *Encoder) Scheme() modem.Scheme { return e.scheme }

// Encode encodes msg into sym. len(msg) must equal PayloadLen() and
// len(sym) must be at least FrameLen().
func (e *Encoder) Encode(msg []byte, sym []complex64) error {
	if len(msg) != e.payloadLen {
		return fmt.Errorf("invalid packet message length: got %d, want %d", len(msg), e.payloadLen)
	}
	if len(sym) < e.frameLen {
		return fmt.Errorf("packet symbol buffer too small: got %d, want %d", len(sym), e.frameLen)
	}

	bits := correction.BytesToBits(e.check.Append(make([]byte, 0, e.payloadLen+e.check.Len()), msg))
	bits = e.fec1.Encode(e.fec0.Encode(bits))

	coded := make([]bool, e.codedBits)
	for i := range coded {
		coded[i] = bits[(i*e.stride)%e.codedBits] != e.whitening[i]
	}

	e.scheme.ModulateBits(coded, sym[:e.frameLen])
	return nil
}

// Decode demodulates sym with hard decisions, decodes it into msg and
// reports whether the check value matched.
func (e *Encoder) Decode(sym []complex64, msg []byte) (bool, error) {
	if len(sym) < e.frameLen {
		return false, fmt.Errorf("packet symbol buffer too small: got %d, want %d", len(sym), e.frameLen)
	}
	if len(msg) < e.payloadLen {
		return false, fmt.Errorf("packet message buffer too small: got %d, want %d", len(msg), e.payloadLen)
	}

	coded := e.scheme.DemodulateBits(sym[:e.frameLen], e.codedBits)
	bits := make([]bool, e.codedBits)
	for i := range coded {
		bits[(i*e.stride)%e.codedBits] = coded[i] != e.whitening[i]
	}

	inner, _, ok1 := e.fec1.Decode(bits, e.fec0Bits)
	raw, _, ok0 := e.fec0.Decode(inner, e.msgBits)

	data := correction.BitsToBytes(raw)
	copy(msg, data[:e.payloadLen])
	return ok0 && ok1 && e.check.Verify(data), nil
}

func (e *Encoder) String() string {
	return fmt.Sprintf("<packet.Encoder, payload=%d, check=%s, fec0=%s, fec1=%s, mod=%s, frame=%d>",
		e.payloadLen, e.check, e.fec0, e.fec1, e.scheme, e.frameLen)
}

// interleaverStride returns the smallest stride >= sqrt(n) that is coprime with n
func interleaverStride(n int) int {
	s := int(math.Sqrt(float64(n)))
	if s < 1 {
		s = 1
	}
	for gcd(s, n) != 1 {
		s++
	}
	return s
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
