// Package imageutil provides the pure Go filtering core of imgfilter:
// an owned pixel buffer, a clamp-to-edge convolution engine, the filters
// built on it and byte-wise image comparison. Codec helpers for loading
// and saving buffers live alongside them but the filters never use them.
package imageutil

import "fmt"

// Channel layouts understood by the filters.
const (
	Gray      = 1
	GrayAlpha = 2
	RGB       = 3
	RGBA      = 4
)

// PixelBuffer is an 8-bit image with interleaved channels stored row-major.
// The length of the pixel slice is always Width*Height*Channels.
type PixelBuffer struct {
	width    int
	height   int
	channels int
	pix      []uint8
}

// NewPixelBuffer creates a zeroed buffer with the given shape.
func NewPixelBuffer(width, height, channels int) (*PixelBuffer, error) {
	if err := validateShape(width, height, channels); err != nil {
		return nil, err
	}
	return &PixelBuffer{
		width:    width,
		height:   height,
		channels: channels,
		pix:      make([]uint8, width*height*channels),
	}, nil
}

// PixelBufferFromPixels creates a buffer holding a copy of pix.
func PixelBufferFromPixels(width, height, channels int, pix []uint8) (*PixelBuffer, error) {
	if err := validateShape(width, height, channels); err != nil {
		return nil, err
	}
	if want := width * height * channels; len(pix) != want {
		return nil, fmt.Errorf("%w: %d bytes for %dx%dx%d, want %d",
			ErrInvalidBuffer, len(pix), width, height, channels, want)
	}
	buf := &PixelBuffer{
		width:    width,
		height:   height,
		channels: channels,
		pix:      make([]uint8, len(pix)),
	}
	copy(buf.pix, pix)
	return buf, nil
}

// newLike allocates a zeroed buffer with the same shape as img.
// The shape was validated when img was created.
func newLike(img *PixelBuffer) *PixelBuffer {
	return &PixelBuffer{
		width:    img.width,
		height:   img.height,
		channels: img.channels,
		pix:      make([]uint8, len(img.pix)),
	}
}

func validateShape(width, height, channels int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: dimensions %dx%d", ErrInvalidBuffer, width, height)
	}
	if channels < Gray || channels > RGBA {
		return fmt.Errorf("%w: %d channels", ErrInvalidBuffer, channels)
	}
	return nil
}

// Width returns the image width.
func (img *PixelBuffer) Width() int {
	return img.width
}

// Height returns the image height.
func (img *PixelBuffer) Height() int {
	return img.height
}

// Channels returns the number of interleaved channels per pixel.
func (img *PixelBuffer) Channels() int {
	return img.channels
}

// Pix returns the underlying pixel bytes. Callers that modify the slice
// modify the buffer.
func (img *PixelBuffer) Pix() []uint8 {
	return img.pix
}

// Len returns the number of bytes in the buffer.
func (img *PixelBuffer) Len() int {
	return len(img.pix)
}

// Stride returns the number of bytes per row.
func (img *PixelBuffer) Stride() int {
	return img.width * img.channels
}

// InBounds reports whether (x, y) is inside the image.
func (img *PixelBuffer) InBounds(x, y int) bool {
	return x >= 0 && x < img.width && y >= 0 && y < img.height
}

// Offset returns the index of channel c of pixel (x, y) in Pix.
// It does not check bounds.
func (img *PixelBuffer) Offset(x, y, c int) int {
	return (y*img.width+x)*img.channels + c
}

// At returns channel c of pixel (x, y).
func (img *PixelBuffer) At(x, y, c int) (uint8, error) {
	if !img.InBounds(x, y) || c < 0 || c >= img.channels {
		return 0, fmt.Errorf("%w: (%d,%d,%d) outside %dx%dx%d",
			ErrOutOfBounds, x, y, c, img.width, img.height, img.channels)
	}
	return img.pix[img.Offset(x, y, c)], nil
}

// Set stores v in channel c of pixel (x, y).
func (img *PixelBuffer) Set(x, y, c int, v uint8) error {
	if !img.InBounds(x, y) || c < 0 || c >= img.channels {
		return fmt.Errorf("%w: (%d,%d,%d) outside %dx%dx%d",
			ErrOutOfBounds, x, y, c, img.width, img.height, img.channels)
	}
	img.pix[img.Offset(x, y, c)] = v
	return nil
}

// SetPixel stores all channels of pixel (x, y) at once. Extra values are
// ignored and missing ones are left unchanged.
func (img *PixelBuffer) SetPixel(x, y int, values ...uint8) error {
	if !img.InBounds(x, y) {
		return fmt.Errorf("%w: (%d,%d) outside %dx%d",
			ErrOutOfBounds, x, y, img.width, img.height)
	}
	off := img.Offset(x, y, 0)
	n := min(len(values), img.channels)
	copy(img.pix[off:off+n], values[:n])
	return nil
}

// Clone creates a deep copy of the buffer.
func (img *PixelBuffer) Clone() *PixelBuffer {
	clone := newLike(img)
	copy(clone.pix, img.pix)
	return clone
}

// SameShape reports whether img and other have equal width, height and
// channel count.
func (img *PixelBuffer) SameShape(other *PixelBuffer) bool {
	return img.width == other.width &&
		img.height == other.height &&
		img.channels == other.channels
}

// String describes the buffer shape, e.g. "640x480x3".
func (img *PixelBuffer) String() string {
	return fmt.Sprintf("%dx%dx%d", img.width, img.height, img.channels)
}
