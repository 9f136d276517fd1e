package dsss

import "errors"

var (
	// ErrInvalidConfiguration is returned for a missing or inconsistent generator
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrUnsupportedOperation is returned for operations the generator does not provide
	ErrUnsupportedOperation = errors.New("unsupported operation")
	// ErrBufferTooSmall is returned when an output buffer cannot hold a full frame
	ErrBufferTooSmall = errors.New("buffer too small")
	// ErrStaleState is returned when Write is called without a freshly assembled frame
	ErrStaleState = errors.New("stale state")
)
