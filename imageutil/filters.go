package imageutil

import "fmt"

// Invert returns the negative of an image: every byte v becomes 255-v.
// Alpha is inverted like any other channel.
func Invert(img *PixelBuffer) *PixelBuffer {
	dst := newLike(img)
	for i, v := range img.pix {
		dst.pix[i] = 255 - v
	}
	return dst
}

// BoxBlur averages every pixel with its neighbors in a square of side
// 2*level+1.
func BoxBlur(img *PixelBuffer, level int) (*PixelBuffer, error) {
	kernel, err := BoxKernel(level)
	if err != nil {
		return nil, fmt.Errorf("blur: %w", err)
	}
	return Convolve(img, kernel)
}

// Sharpen applies an unsharp mask: the image plus the difference between
// the image and its box blur of the same level, clamped to [0, 255].
func Sharpen(img *PixelBuffer, level int) (*PixelBuffer, error) {
	if level < 1 {
		return nil, fmt.Errorf("sharpen: %w: level %d must be at least 1", ErrInvalidParameter, level)
	}
	blurred, err := BoxBlur(img, level)
	if err != nil {
		return nil, fmt.Errorf("sharpen: %w", err)
	}

	dst := newLike(img)
	for i, v := range img.pix {
		dst.pix[i] = uint8(min(max(2*int(v)-int(blurred.pix[i]), 0), 255))
	}
	return dst, nil
}
