// Package stream buffers generated bursts and serves them in caller-sized
// chunks.
package stream

import (
	"log"
)

// RingBuffer is a fixed-capacity circular buffer of complex baseband samples.
// One slot is kept free to tell full from empty.
type RingBuffer struct {
	name   string
	buffer []complex64
	length int
	iPtr   int // Input pointer (where new data is written)
	oPtr   int // Output pointer (where data is read from)
}

// NewRingBuffer creates a new ring buffer with the specified length and name
func NewRingBuffer(length int, name string) *RingBuffer {
	if length <= 0 {
		panic("RingBuffer length must be > 0")
	}

	return &RingBuffer{
		name:   name,
		buffer: make([]complex64, length),
		length: length,
	}
}

// AddData adds samples to the ring buffer.
// Returns false, leaving the buffer untouched, if there's not enough space.
func (rb *RingBuffer) AddData(data []complex64) bool {
	n := len(data)

	if n >= rb.FreeSpace() {
		log.Printf("%s buffer overflow (%d >= %d)", rb.name, n, rb.FreeSpace())
		return false
	}

	first := copy(rb.buffer[rb.iPtr:], data)
	copy(rb.buffer, data[first:])
	rb.iPtr = (rb.iPtr + n) % rb.length

	return true
}

// AddZeros appends n zero samples
func (rb *RingBuffer) AddZeros(n int) bool {
	if n >= rb.FreeSpace() {
		log.Printf("%s buffer overflow (%d >= %d)", rb.name, n, rb.FreeSpace())
		return false
	}

	for i := 0; i < n; i++ {
		rb.buffer[rb.iPtr] = 0
		rb.iPtr++
		if rb.iPtr == rb.length {
			rb.iPtr = 0
		}
	}

	return true
}

// GetData removes and returns n samples.
// Returns false if there's not enough data (buffer underflow).
func (rb *RingBuffer) GetData(n int) ([]complex64, bool) {
	if rb.DataSize() < n {
		log.Printf("Underflow in %s ring buffer, %d < %d", rb.name, rb.DataSize(), n)
		return nil, false
	}

	result := make([]complex64, n)
	rb.Read(result)
	return result, true
}

// Read moves up to len(dst) samples into dst and returns the count
func (rb *RingBuffer) Read(dst []complex64) int {
	n := min(len(dst), rb.DataSize())

	first := copy(dst[:n], rb.buffer[rb.oPtr:])
	copy(dst[first:n], rb.buffer)
	rb.oPtr = (rb.oPtr + n) % rb.length

	return n
}

// Peek looks at data in the buffer without removing it
func (rb *RingBuffer) Peek(n int) ([]complex64, bool) {
	if rb.DataSize() < n {
		return nil, false
	}

	result := make([]complex64, n)
	first := copy(result, rb.buffer[rb.oPtr:])
	copy(result[first:], rb.buffer)
	return result, true
}

// Clear clears all data from the buffer
func (rb *RingBuffer) Clear() {
	rb.iPtr = 0
	rb.oPtr = 0
	clear(rb.buffer)
}

// FreeSpace returns the amount of free space in the buffer
func (rb *RingBuffer) FreeSpace() int {
	if rb.oPtr > rb.iPtr {
		return rb.oPtr - rb.iPtr
	}
	if rb.iPtr > rb.oPtr {
		return rb.length - (rb.iPtr - rb.oPtr)
	}
	return rb.length
}

// DataSize returns the amount of data currently in the buffer
func (rb *RingBuffer) DataSize() int {
	return rb.length - rb.FreeSpace()
}

// HasSpace checks if n more samples fit
func (rb *RingBuffer) HasSpace(n int) bool {
	return rb.FreeSpace() > n
}

// HasData checks if there's any data in the buffer
func (rb *RingBuffer) HasData() bool {
	return rb.oPtr != rb.iPtr
}

// IsEmpty checks if the buffer is empty
func (rb *RingBuffer) IsEmpty() bool {
	return rb.oPtr == rb.iPtr
}

// GetName returns the buffer name for debugging
func (rb *RingBuffer) GetName() string {
	return rb.name
}

// GetLength returns the buffer capacity
func (rb *RingBuffer) GetLength() int {
	return rb.length
}
