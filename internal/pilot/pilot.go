// Package pilot interleaves a known QPSK pilot sequence into a block of
// payload symbols and removes it again.
package pilot

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/dbehnke/dsssgen/internal/msequence"
)

// Generator inserts one pilot every spacing symbols, starting at index 0
type Generator struct {
	payloadLen int
	spacing    int
	numPilots  int
	frameLen   int
	pilots     []complex64
}

// New creates a pilot generator for payloadLen payload symbols
func New(payloadLen, spacing int) (*Generator, error) {
	if payloadLen <= 0 {
		return nil, fmt.Errorf("invalid pilot payload length: %d", payloadLen)
	}
	if spacing < 2 {
		return nil, fmt.Errorf("invalid pilot spacing: %d", spacing)
	}

	g := &Generator{
		payloadLen: payloadLen,
		spacing:    spacing,
		numPilots:  (payloadLen + spacing - 2) / (spacing - 1),
	}
	g.frameLen = g.payloadLen + g.numPilots

	order := nextpow2(g.numPilots)
	if order < 2 {
		order = 2
	}
	ms, err := msequence.NewDefault(order)
	if err != nil {
		return nil, fmt.Errorf("failed to create pilot sequence: %w", err)
	}

	g.pilots = make([]complex64, g.numPilots)
	for i := range g.pilots {
		s := ms.GenerateSymbol(2)
		g.pilots[i] = complex64(cmplx.Exp(complex(0, 2*math.Pi*float64(s)/4+math.Pi/4)))
	}

	return g, nil
}

// PayloadLen returns the number of payload symbols per frame
func (g *Generator) PayloadLen() int { return g.payloadLen }

// FrameLen returns the number of symbols per frame, pilots included
func (g *Generator) FrameLen() int { return g.frameLen }

// Pilots returns a copy of the pilot symbols
func (g *Generator) Pilots() []complex64 {
	return append([]complex64(nil), g.pilots...)
}

// Execute writes payload with pilots inserted into frame
func (g *Generator) Execute(payload, frame []complex64) error {
	if len(payload) < g.payloadLen {
		return fmt.Errorf("pilot payload buffer too small: got %d, want %d", len(payload), g.payloadLen)
	}
	if len(frame) < g.frameLen {
		return fmt.Errorf("pilot frame buffer too small: got %d, want %d", len(frame), g.frameLen)
	}

	n, p := 0, 0
	for i := 0; i < g.frameLen; i++ {
		if i%g.spacing == 0 {
			frame[i] = g.pilots[p]
			p++
		} else {
			frame[i] = payload[n]
			n++
		}
	}
	return nil
}

// Strip extracts the payload symbols from frame into payload
func (g *Generator) Strip(frame, payload []complex64) error {
	if len(frame) < g.frameLen {
		return fmt.Errorf("pilot frame buffer too small: got %d, want %d", len(frame), g.frameLen)
	}
	if len(payload) < g.payloadLen {
		return fmt.Errorf("pilot payload buffer too small: got %d, want %d", len(payload), g.payloadLen)
	}

	n := 0
	for i := 0; i < g.frameLen; i++ {
		if i%g.spacing != 0 {
			payload[n] = frame[i]
			n++
		}
	}
	return nil
}

func (g *Generator) String() string {
	return fmt.Sprintf("<pilot.Generator, payload=%d, spacing=%d, pilots=%d, frame=%d>",
		g.payloadLen, g.spacing, g.numPilots, g.frameLen)
}

// nextpow2 returns ceil(log2(n))
func nextpow2(n int) uint {
	var m uint
	for (1 << m) < n {
		m++
	}
	return m
}
