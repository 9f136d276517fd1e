// Package iqfile reads and writes complex baseband samples as interleaved
// little-endian float32 I/Q pairs (cf32), optionally zstd compressed.
package iqfile

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/klauspost/compress/zstd"
)

// SampleSize is the encoded size of one sample in bytes
const SampleSize = 8

var zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}

// Writer encodes samples to an underlying stream
type Writer struct {
	w       io.Writer
	closer  io.Closer
	zenc    *zstd.Encoder
	buf     []byte
	samples int64
}

// NewWriter writes samples to w, compressing them when compress is set
func NewWriter(w io.Writer, compress bool) (*Writer, error) {
	wr := &Writer{w: w}
	if compress {
		enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
		}
		wr.zenc = enc
		wr.w = enc
	}
	return wr, nil
}

// Create creates or truncates the file at path and returns a Writer for it
func Create(path string, compress bool) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create sample file %s: %w", path, err)
	}
	wr, err := NewWriter(f, compress)
	if err != nil {
		f.Close()
		return nil, err
	}
	wr.closer = f
	return wr, nil
}

// WriteSamples appends samples to the stream
func (w *Writer) WriteSamples(x []complex64) error {
	need := len(x) * SampleSize
	if cap(w.buf) < need {
		w.buf = make([]byte, need)
	}
	buf := w.buf[:need]
	for i, s := range x {
		binary.LittleEndian.PutUint32(buf[i*SampleSize:], math.Float32bits(real(s)))
		binary.LittleEndian.PutUint32(buf[i*SampleSize+4:], math.Float32bits(imag(s)))
	}
	if _, err := w.w.Write(buf); err != nil {
		return fmt.Errorf("failed to write samples: %w", err)
	}
	w.samples += int64(len(x))
	return nil
}

// Samples returns the number of samples written so far
func (w *Writer) Samples() int64 { return w.samples }

// Close flushes the compressor and closes the file, if any
func (w *Writer) Close() error {
	var firstErr error
	if w.zenc != nil {
		if err := w.zenc.Close(); err != nil {
			firstErr = fmt.Errorf("failed to flush zstd stream: %w", err)
		}
		w.zenc = nil
	}
	if w.closer != nil {
		if err := w.closer.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close sample file: %w", err)
		}
		w.closer = nil
	}
	return firstErr
}

// Reader decodes samples from a cf32 stream, detecting zstd compression
type Reader struct {
	r      io.Reader
	closer io.Closer
	zdec   *zstd.Decoder
	buf    []byte
}

// NewReader reads samples from r
func NewReader(r io.Reader) (*Reader, error) {
	br := bufio.NewReader(r)
	rd := &Reader{r: br}

	magic, err := br.Peek(len(zstdMagic))
	if err == nil && bytes.Equal(magic, zstdMagic) {
		dec, err := zstd.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
		}
		rd.zdec = dec
		rd.r = dec
	}
	return rd, nil
}

// Open opens the sample file at path
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sample file %s: %w", path, err)
	}
	rd, err := NewReader(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	rd.closer = f
	return rd, nil
}

// ReadSamples fills dst and returns the number of samples read. It returns
// io.EOF when no more samples are available and io.ErrUnexpectedEOF when the
// stream ends inside a sample.
func (r *Reader) ReadSamples(dst []complex64) (int, error) {
	need := len(dst) * SampleSize
	if cap(r.buf) < need {
		r.buf = make([]byte, need)
	}
	buf := r.buf[:need]

	n, err := io.ReadFull(r.r, buf)
	if err == io.ErrUnexpectedEOF && n%SampleSize == 0 {
		err = nil
	}
	count := n / SampleSize
	for i := 0; i < count; i++ {
		re := math.Float32frombits(binary.LittleEndian.Uint32(buf[i*SampleSize:]))
		im := math.Float32frombits(binary.LittleEndian.Uint32(buf[i*SampleSize+4:]))
		dst[i] = complex(re, im)
	}
	if count == 0 && err == nil {
		err = io.EOF
	}
	return count, err
}

// ReadAll reads every remaining sample
func (r *Reader) ReadAll() ([]complex64, error) {
	var out []complex64
	chunk := make([]complex64, 4096)
	for {
		n, err := r.ReadSamples(chunk)
		out = append(out, chunk[:n]...)
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
	}
}

// Close releases the decoder and closes the file, if any
func (r *Reader) Close() error {
	if r.zdec != nil {
		r.zdec.Close()
		r.zdec = nil
	}
	if r.closer != nil {
		err := r.closer.Close()
		r.closer = nil
		return err
	}
	return nil
}
