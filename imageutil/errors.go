package imageutil

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidKernel is returned for kernels that are not square with an
	// odd side of at least 3.
	ErrInvalidKernel = errors.New("invalid kernel")

	// ErrInvalidParameter is returned when a filter level is out of range.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrUnsupportedChannelLayout is returned for channel counts a
	// conversion cannot handle.
	ErrUnsupportedChannelLayout = errors.New("unsupported channel layout")

	// ErrDimensionMismatch is returned when two images must share a shape
	// and do not.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrInvalidBuffer is returned when a buffer cannot be constructed
	// from the given shape or pixels.
	ErrInvalidBuffer = errors.New("invalid pixel buffer")

	// ErrOutOfBounds is returned by the checked pixel accessors.
	ErrOutOfBounds = errors.New("pixel out of bounds")

	// ErrUnsupportedFormat is returned for unknown file formats.
	ErrUnsupportedFormat = errors.New("unsupported image format")
)

// DecodeError reports a byte stream that is not a recognized image.
type DecodeError struct {
	Source string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode image %s: %v", e.Source, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// EncodeError reports a buffer that cannot be written in a format.
type EncodeError struct {
	Format   Format
	Channels int
	Err      error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("failed to encode %d-channel image as %s: %v",
		e.Channels, e.Format, e.Err)
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}
