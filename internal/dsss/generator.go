// Package dsss assembles fixed-format direct-sequence spread-spectrum bursts:
// an 8-byte header and 64-byte payload are packet encoded, pilot interleaved,
// spread with 256 chips per symbol and pulse shaped at two samples per chip
// behind a fixed 1024-symbol preamble.
package dsss

import (
	"crypto/rand"
	"fmt"
	"io"
	"log"
	"math"

	"github.com/dbehnke/dsssgen/internal/correction"
	"github.com/dbehnke/dsssgen/internal/filter"
	"github.com/dbehnke/dsssgen/internal/modem"
	"github.com/dbehnke/dsssgen/internal/msequence"
	"github.com/dbehnke/dsssgen/internal/packet"
	"github.com/dbehnke/dsssgen/internal/pilot"
)

// Frame layout
const (
	HeaderLen    = 8
	PayloadLen   = 64
	MessageLen   = HeaderLen + PayloadLen
	PreambleLen  = 1024
	EncodedLen   = 600
	PilotSpacing = 21
	FrameSymbols = 630
	SpreadFactor = 256
	Interp       = 2

	DefaultDelay           = 7
	DefaultExcessBandwidth = 0.3
)

// Spreading sequence parameters
const (
	spreadOrder = 11
	spreadPoly  = 0x0805
	spreadSeed  = 1
)

// PacketEncoder turns a message into modulated symbols
type PacketEncoder interface {
	Encode(msg []byte, sym []complex64) error
	FrameLen() int
	PayloadLen() int
}

// PilotInserter interleaves pilot symbols into a block of payload symbols
type PilotInserter interface {
	Execute(payload, frame []complex64) error
	FrameLen() int
}

// SpreadingSource is a restartable pseudo-random bit source
type SpreadingSource interface {
	Advance() uint
	GenerateSymbol(bits uint) uint
	Reset()
}

// Interpolator is a pulse-shaping interpolator producing Factor() samples per input
type Interpolator interface {
	Execute(x complex64, y []complex64)
	Reset()
	Factor() int
}

type state int

const (
	stateCreated state = iota
	stateAssembled
	stateStreamed
	stateClosed
)

func (s state) String() string {
	switch s {
	case stateCreated:
		return "created"
	case stateAssembled:
		return "assembled"
	case stateStreamed:
		return "streamed"
	case stateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// chip rotations exp(i*2*pi*p/4)
var rotation = [4]complex64{1, 1i, -1, -1i}

// Generator assembles and streams DSSS bursts. It is not safe for concurrent use.
type Generator struct {
	m      int
	beta   float64
	proto  filter.Prototype
	random io.Reader
	log    *log.Logger

	enc    PacketEncoder
	pilots PilotInserter
	ms     SpreadingSource
	interp Interpolator

	preamble [PreambleLen]complex64
	message  [MessageLen]byte
	symbols  [EncodedLen]complex64
	frame    [FrameSymbols]complex64

	state state
}

// New creates a frame generator. Collaborators not supplied through options
// are built with the default frame configuration.
func New(opts ...Option) (*Generator, error) {
	g := &Generator{
		m:      DefaultDelay,
		beta:   DefaultExcessBandwidth,
		proto:  filter.Kaiser,
		random: rand.Reader,
		log:    log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(g)
	}

	if g.m < 1 {
		return nil, fmt.Errorf("%w: filter delay must be positive, got %d", ErrInvalidConfiguration, g.m)
	}
	if g.beta <= 0 || g.beta > 1 {
		return nil, fmt.Errorf("%w: excess bandwidth must be in (0,1], got %.3f", ErrInvalidConfiguration, g.beta)
	}
	if g.random == nil {
		return nil, fmt.Errorf("%w: no random source", ErrInvalidConfiguration)
	}

	if err := g.buildCollaborators(); err != nil {
		return nil, err
	}
	if err := g.validateCollaborators(); err != nil {
		return nil, err
	}

	for i := range g.preamble {
		g.preamble[i] = complex(preambleLevel(g.ms.Advance()), preambleLevel(g.ms.Advance()))
	}

	g.log.Printf("Created %s", g)
	return g, nil
}

func (g *Generator) buildCollaborators() error {
	var err error
	if g.ms == nil {
		if g.ms, err = msequence.New(spreadOrder, spreadPoly, spreadSeed); err != nil {
			return fmt.Errorf("%w: spreading sequence: %v", ErrInvalidConfiguration, err)
		}
	}
	if g.enc == nil {
		if g.enc, err = packet.New(MessageLen, correction.CheckCRC24, correction.FECNone, correction.FECGolay2412, modem.QPSK); err != nil {
			return fmt.Errorf("%w: packet encoder: %v", ErrInvalidConfiguration, err)
		}
	}
	if g.pilots == nil {
		if g.pilots, err = pilot.New(EncodedLen, PilotSpacing); err != nil {
			return fmt.Errorf("%w: pilot generator: %v", ErrInvalidConfiguration, err)
		}
	}
	if g.interp == nil {
		if g.interp, err = filter.NewInterpolator(g.proto, Interp, g.m, g.beta, 0); err != nil {
			return fmt.Errorf("%w: interpolator: %v", ErrInvalidConfiguration, err)
		}
	}
	return nil
}

func (g *Generator) validateCollaborators() error {
	if n := g.enc.PayloadLen(); n != MessageLen {
		return fmt.Errorf("%w: packet encoder payload length %d, want %d", ErrInvalidConfiguration, n, MessageLen)
	}
	if n := g.enc.FrameLen(); n != EncodedLen {
		return fmt.Errorf("%w: packet encoder frame length %d, want %d", ErrInvalidConfiguration, n, EncodedLen)
	}
	if n := g.pilots.FrameLen(); n != FrameSymbols {
		return fmt.Errorf("%w: pilot frame length %d, want %d", ErrInvalidConfiguration, n, FrameSymbols)
	}
	if k := g.interp.Factor(); k != Interp {
		return fmt.Errorf("%w: interpolation factor %d, want %d", ErrInvalidConfiguration, k, Interp)
	}
	return nil
}

func preambleLevel(bit uint) float32 {
	if bit != 0 {
		return float32(math.Sqrt2 / 2)
	}
	return -float32(math.Sqrt2 / 2)
}

// FrameLen returns the number of samples in one burst for filter delay m
func FrameLen(m int) int {
	return Interp * (PreambleLen + FrameSymbols*SpreadFactor + 2*m)
}

// FrameLen returns the number of samples Write produces
func (g *Generator) FrameLen() int {
	return FrameLen(g.m)
}

// Assemble prepares a burst from an 8-byte header and 64-byte payload. A nil
// header or payload is filled from the random source. On error any frame
// assembled earlier is left intact.
func (g *Generator) Assemble(header, payload []byte) error {
	if err := g.live("assemble"); err != nil {
		return err
	}
	if header != nil && len(header) != HeaderLen {
		return fmt.Errorf("%w: header length %d, want %d", ErrInvalidConfiguration, len(header), HeaderLen)
	}
	if payload != nil && len(payload) != PayloadLen {
		return fmt.Errorf("%w: payload length %d, want %d", ErrInvalidConfiguration, len(payload), PayloadLen)
	}

	var msg [MessageLen]byte
	if err := g.fill(msg[:HeaderLen], header); err != nil {
		return err
	}
	if err := g.fill(msg[HeaderLen:], payload); err != nil {
		return err
	}

	var sym [EncodedLen]complex64
	if err := g.enc.Encode(msg[:], sym[:]); err != nil {
		return fmt.Errorf("failed to encode packet: %w", err)
	}
	var frame [FrameSymbols]complex64
	if err := g.pilots.Execute(sym[:], frame[:]); err != nil {
		return fmt.Errorf("failed to insert pilots: %w", err)
	}

	g.message = msg
	g.symbols = sym
	g.frame = frame
	g.interp.Reset()
	g.ms.Reset()
	g.state = stateAssembled
	return nil
}

func (g *Generator) fill(dst, src []byte) error {
	if src != nil {
		copy(dst, src)
		return nil
	}
	if _, err := io.ReadFull(g.random, dst); err != nil {
		return fmt.Errorf("failed to read random fill: %w", err)
	}
	return nil
}

// Write streams the assembled burst into buf and returns the number of
// samples written, always FrameLen(). Each assembled frame can be written once.
func (g *Generator) Write(buf []complex64) (int, error) {
	if err := g.live("write"); err != nil {
		return 0, err
	}
	frameLen := g.FrameLen()
	if len(buf) < frameLen {
		return 0, fmt.Errorf("%w: got %d samples, want %d", ErrBufferTooSmall, len(buf), frameLen)
	}
	if g.state != stateAssembled {
		return 0, fmt.Errorf("%w: write called on a %s frame, assemble first", ErrStaleState, g.state)
	}

	n := 0
	for _, s := range g.preamble {
		g.interp.Execute(s, buf[n:n+Interp])
		n += Interp
	}

	for _, sym := range g.frame {
		for j := 0; j < SpreadFactor; j++ {
			p := g.ms.GenerateSymbol(2)
			g.interp.Execute(sym*rotation[p&3], buf[n:n+Interp])
			n += Interp
		}
	}

	for i := 0; i < 2*g.m; i++ {
		g.interp.Execute(0, buf[n:n+Interp])
		n += Interp
	}

	g.state = stateStreamed
	if n != frameLen {
		return n, fmt.Errorf("%w: wrote %d samples, want %d", ErrInvalidConfiguration, n, frameLen)
	}
	return n, nil
}

// Complete reports whether the most recently assembled frame has been written
func (g *Generator) Complete() bool {
	return g != nil && g.state == stateStreamed
}

// Header returns the header of the assembled frame
func (g *Generator) Header() []byte {
	return append([]byte(nil), g.message[:HeaderLen]...)
}

// Payload returns the payload of the assembled frame
func (g *Generator) Payload() []byte {
	return append([]byte(nil), g.message[HeaderLen:]...)
}

// Preamble returns the fixed preamble symbols
func (g *Generator) Preamble() []complex64 {
	return append([]complex64(nil), g.preamble[:]...)
}

// M returns the filter delay in symbols
func (g *Generator) M() int { return g.m }

// Beta returns the filter excess bandwidth
func (g *Generator) Beta() float64 { return g.beta }

// Clone is not supported
func (g *Generator) Clone() (*Generator, error) {
	if g == nil {
		return nil, fmt.Errorf("%w: cannot clone a nil generator", ErrInvalidConfiguration)
	}
	return nil, fmt.Errorf("%w: generator cannot be cloned", ErrUnsupportedOperation)
}

// Close releases the collaborators. Closing twice is a no-op.
func (g *Generator) Close() error {
	if g == nil {
		return fmt.Errorf("%w: cannot close a nil generator", ErrInvalidConfiguration)
	}
	if g.state == stateClosed {
		return nil
	}
	g.enc = nil
	g.pilots = nil
	g.ms = nil
	g.interp = nil
	g.state = stateClosed
	g.log.Printf("Closed %s", g)
	return nil
}

func (g *Generator) live(op string) error {
	if g == nil {
		return fmt.Errorf("%w: %s on a nil generator", ErrInvalidConfiguration, op)
	}
	if g.state == stateClosed {
		return fmt.Errorf("%w: %s on a closed generator", ErrInvalidConfiguration, op)
	}
	return nil
}

func (g *Generator) String() string {
	return fmt.Sprintf("<dsssframe64gen, m=%d, beta=%4.2f>", g.m, g.beta)
}

// Print writes a one-line description of the generator to w
func (g *Generator) Print(w io.Writer) error {
	_, err := fmt.Fprintln(w, g.String())
	return err
}
