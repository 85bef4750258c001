package imageutil

import (
	"fmt"
	"image"
	"image/draw"

	xdraw "golang.org/x/image/draw"
)

// Interpolation specifies the interpolation method for resizing.
type Interpolation int

const (
	// InterpolationArea uses Catmull-Rom for high-quality downscaling.
	InterpolationArea Interpolation = iota

	// InterpolationLinear uses bilinear interpolation.
	InterpolationLinear

	// InterpolationNearest uses nearest-neighbor interpolation.
	// Fastest but lowest quality.
	InterpolationNearest
)

func (interp Interpolation) scaler() xdraw.Scaler {
	switch interp {
	case InterpolationLinear:
		return xdraw.BiLinear
	case InterpolationNearest:
		return xdraw.NearestNeighbor
	default:
		return xdraw.CatmullRom
	}
}

// Resize scales an image to the specified dimensions. The channel count
// is preserved.
func Resize(img *PixelBuffer, width, height int, interp Interpolation) (*PixelBuffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("resize: %w: target %dx%d", ErrInvalidParameter, width, height)
	}
	if width == img.width && height == img.height {
		return img.Clone(), nil
	}

	src := ToImage(img)
	dstRect := image.Rect(0, 0, width, height)
	var dst draw.Image
	if img.channels == Gray {
		dst = image.NewGray(dstRect)
	} else {
		dst = image.NewNRGBA(dstRect)
	}
	interp.scaler().Scale(dst, dstRect, src, src.Bounds(), xdraw.Src, nil)
	return FromImageChannels(dst, img.channels), nil
}

// ResizeToWidth resizes an image to the specified width while maintaining
// aspect ratio.
func ResizeToWidth(img *PixelBuffer, width int, interp Interpolation) (*PixelBuffer, error) {
	aspectRatio := float64(img.width) / float64(img.height)
	height := max(int(float64(width)/aspectRatio+0.5), 1)
	return Resize(img, width, height, interp)
}
