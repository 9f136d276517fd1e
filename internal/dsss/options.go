package dsss

import (
	"io"
	"log"

	"github.com/dbehnke/dsssgen/internal/filter"
)

// Option configures a Generator
type Option func(*Generator)

// WithRandom sets the byte source used to fill a missing header or payload
func WithRandom(r io.Reader) Option {
	return func(g *Generator) {
		g.random = r
	}
}

// WithFilter sets the pulse-shaping filter delay (symbols) and excess bandwidth
func WithFilter(m int, beta float64) Option {
	return func(g *Generator) {
		g.m = m
		g.beta = beta
	}
}

// WithPrototype sets the pulse-shaping filter prototype
func WithPrototype(p filter.Prototype) Option {
	return func(g *Generator) {
		g.proto = p
	}
}

// WithLogger sets the logger used for lifecycle messages
func WithLogger(l *log.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.log = l
		}
	}
}

// WithInterpolator replaces the pulse-shaping interpolator
func WithInterpolator(f Interpolator) Option {
	return func(g *Generator) {
		g.interp = f
	}
}

// WithPacketEncoder replaces the packet encoder
func WithPacketEncoder(e PacketEncoder) Option {
	return func(g *Generator) {
		g.enc = e
	}
}

// WithPilotInserter replaces the pilot inserter
func WithPilotInserter(p PilotInserter) Option {
	return func(g *Generator) {
		g.pilots = p
	}
}

// WithSpreadingSource replaces the spreading sequence source. The source is
// drained for the preamble at construction.
func WithSpreadingSource(s SpreadingSource) Option {
	return func(g *Generator) {
		g.ms = s
	}
}
