package stream

import (
	"errors"
	"fmt"
	"io"
)

// ErrFull is returned when a burst does not fit in the buffer
var ErrFull = errors.New("stream buffer full")

// Source produces one burst per Assemble/Write cycle
type Source interface {
	Assemble(header, payload []byte) error
	Write(buf []complex64) (int, error)
	FrameLen() int
}

// Streamer queues bursts separated by a run of zero samples and hands
// them out in chunks of any size.
type Streamer struct {
	ring     *RingBuffer
	gap      int
	scratch  []complex64
	bursts   int
	samples  int64
	frameLen int
}

// NewStreamer creates a streamer with room for depth bursts of frameLen
// samples, each followed by gap zero samples.
func NewStreamer(frameLen, gap, depth int) (*Streamer, error) {
	if frameLen <= 0 {
		return nil, fmt.Errorf("invalid stream frame length: %d", frameLen)
	}
	if gap < 0 {
		return nil, fmt.Errorf("invalid stream gap: %d", gap)
	}
	if depth < 1 {
		depth = 1
	}

	return &Streamer{
		ring:     NewRingBuffer(depth*(frameLen+gap)+1, "Burst"),
		gap:      gap,
		frameLen: frameLen,
	}, nil
}

// Push queues a burst followed by the inter-burst gap
func (s *Streamer) Push(frame []complex64) error {
	if len(frame) != s.frameLen {
		return fmt.Errorf("invalid burst length: got %d, want %d", len(frame), s.frameLen)
	}
	if !s.ring.HasSpace(len(frame) + s.gap) {
		return fmt.Errorf("%w: %d samples pending, %d free", ErrFull, s.ring.DataSize(), s.ring.FreeSpace())
	}

	s.ring.AddData(frame)
	s.ring.AddZeros(s.gap)
	s.bursts++
	return nil
}

// Generate assembles a burst on src, streams it into an internal frame
// buffer and queues it.
func (s *Streamer) Generate(src Source, header, payload []byte) error {
	n := src.FrameLen()
	if n != s.frameLen {
		return fmt.Errorf("invalid burst length: got %d, want %d", n, s.frameLen)
	}
	if !s.ring.HasSpace(n + s.gap) {
		return fmt.Errorf("%w: %d samples pending, %d free", ErrFull, s.ring.DataSize(), s.ring.FreeSpace())
	}
	if cap(s.scratch) < n {
		s.scratch = make([]complex64, n)
	}

	if err := src.Assemble(header, payload); err != nil {
		return fmt.Errorf("failed to assemble burst: %w", err)
	}
	written, err := src.Write(s.scratch[:n])
	if err != nil {
		return fmt.Errorf("failed to write burst: %w", err)
	}
	return s.Push(s.scratch[:written])
}

// Read moves up to len(dst) queued samples into dst. It returns io.EOF once
// every queued sample has been read.
func (s *Streamer) Read(dst []complex64) (int, error) {
	if s.ring.IsEmpty() {
		return 0, io.EOF
	}
	n := s.ring.Read(dst)
	s.samples += int64(n)
	return n, nil
}

// Pending returns the number of queued samples
func (s *Streamer) Pending() int { return s.ring.DataSize() }

// Bursts returns the number of bursts queued so far
func (s *Streamer) Bursts() int { return s.bursts }

// Samples returns the number of samples read so far
func (s *Streamer) Samples() int64 { return s.samples }

// Gap returns the number of zero samples after each burst
func (s *Streamer) Gap() int { return s.gap }

// Reset drops any queued samples
func (s *Streamer) Reset() {
	s.ring.Clear()
}
