package stream

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ramp(n int, start float32) []complex64 {
	out := make([]complex64, n)
	for i := range out {
		out[i] = complex(start+float32(i), -start-float32(i))
	}
	return out
}

func TestRingBuffer_AddGet(t *testing.T) {
	rb := NewRingBuffer(8, "test")
	assert.True(t, rb.IsEmpty())
	assert.Equal(t, 8, rb.FreeSpace())

	require.True(t, rb.AddData(ramp(5, 1)))
	assert.Equal(t, 5, rb.DataSize())
	assert.True(t, rb.HasData())

	got, ok := rb.GetData(3)
	require.True(t, ok)
	assert.Equal(t, ramp(3, 1), got)

	// wraps around the end of the storage
	require.True(t, rb.AddData(ramp(5, 10)))
	assert.Equal(t, 7, rb.DataSize())

	peek, ok := rb.Peek(7)
	require.True(t, ok)
	got, ok = rb.GetData(7)
	require.True(t, ok)
	assert.Equal(t, peek, got)
	assert.Equal(t, append(ramp(2, 4), ramp(5, 10)...), got)
	assert.True(t, rb.IsEmpty())
}

func TestRingBuffer_Overflow(t *testing.T) {
	rb := NewRingBuffer(4, "test")
	assert.False(t, rb.AddData(ramp(4, 0)))
	assert.True(t, rb.IsEmpty())

	assert.True(t, rb.AddData(ramp(3, 0)))
	assert.False(t, rb.AddData(ramp(1, 0)))
	assert.False(t, rb.HasSpace(1))
	assert.Equal(t, 3, rb.DataSize())
}

func TestRingBuffer_Underflow(t *testing.T) {
	rb := NewRingBuffer(4, "test")
	rb.AddData(ramp(2, 0))

	_, ok := rb.GetData(3)
	assert.False(t, ok)
	_, ok = rb.Peek(3)
	assert.False(t, ok)
	assert.Equal(t, 2, rb.DataSize())
}

func TestRingBuffer_ZerosAndClear(t *testing.T) {
	rb := NewRingBuffer(6, "test")
	rb.AddData(ramp(3, 1))
	rb.GetData(3)
	require.True(t, rb.AddZeros(4))

	got, ok := rb.GetData(4)
	require.True(t, ok)
	assert.Equal(t, make([]complex64, 4), got)

	rb.AddData(ramp(2, 1))
	rb.Clear()
	assert.True(t, rb.IsEmpty())
	assert.Equal(t, "test", rb.GetName())
	assert.Equal(t, 6, rb.GetLength())
}

func TestRingBuffer_ZeroLengthPanics(t *testing.T) {
	assert.Panics(t, func() { NewRingBuffer(0, "bad") })
}

type fakeSource struct {
	frameLen  int
	assembled int
	fail      error
}

func (f *fakeSource) Assemble(header, payload []byte) error {
	if f.fail != nil {
		return f.fail
	}
	f.assembled++
	return nil
}

func (f *fakeSource) Write(buf []complex64) (int, error) {
	copy(buf, ramp(f.frameLen, float32(100*f.assembled)))
	return f.frameLen, nil
}

func (f *fakeSource) FrameLen() int { return f.frameLen }

func drain(t *testing.T, s *Streamer, chunk int) []complex64 {
	t.Helper()
	var out []complex64
	buf := make([]complex64, chunk)
	for {
		n, err := s.Read(buf)
		if errors.Is(err, io.EOF) {
			return out
		}
		require.NoError(t, err)
		out = append(out, buf[:n]...)
	}
}

func TestStreamer_ChunkedRead(t *testing.T) {
	testCases := []struct {
		desc  string
		chunk int
	}{
		{"single sample", 1},
		{"uneven chunks", 7},
		{"larger than queue", 1000},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			src := &fakeSource{frameLen: 10}
			s, err := NewStreamer(10, 3, 2)
			require.NoError(t, err)
			assert.Equal(t, 3, s.Gap())

			require.NoError(t, s.Generate(src, nil, nil))
			require.NoError(t, s.Generate(src, nil, nil))
			assert.Equal(t, 26, s.Pending())

			want := append(ramp(10, 100), make([]complex64, 3)...)
			want = append(want, ramp(10, 200)...)
			want = append(want, make([]complex64, 3)...)
			assert.Equal(t, want, drain(t, s, tC.chunk))
			assert.Equal(t, 2, s.Bursts())
			assert.Equal(t, int64(26), s.Samples())
		})
	}
}

func TestStreamer_Full(t *testing.T) {
	src := &fakeSource{frameLen: 10}
	s, err := NewStreamer(10, 0, 1)
	require.NoError(t, err)

	require.NoError(t, s.Generate(src, nil, nil))
	err = s.Generate(src, nil, nil)
	assert.ErrorIs(t, err, ErrFull)
	assert.Equal(t, 1, src.assembled)

	drain(t, s, 4)
	assert.NoError(t, s.Push(ramp(10, 0)))
}

func TestStreamer_Errors(t *testing.T) {
	_, err := NewStreamer(0, 0, 1)
	assert.Error(t, err)
	_, err = NewStreamer(10, -1, 1)
	assert.Error(t, err)

	s, err := NewStreamer(10, 0, 1)
	require.NoError(t, err)
	assert.Error(t, s.Push(ramp(9, 0)))
	assert.Error(t, s.Generate(&fakeSource{frameLen: 11}, nil, nil))

	boom := errors.New("boom")
	err = s.Generate(&fakeSource{frameLen: 10, fail: boom}, nil, nil)
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, s.Pending())

	_, err = s.Read(make([]complex64, 4))
	assert.ErrorIs(t, err, io.EOF)
}
