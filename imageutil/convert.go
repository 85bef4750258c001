package imageutil

import (
	"fmt"
	"image"
	"image/color"
	"math"
)

// Grayscale converts an image to a single channel. RGB and RGBA use the
// standard luminance formula Y = 0.299*R + 0.587*G + 0.114*B, dropping
// alpha. Gray+alpha keeps the gray channel and gray is copied.
// The branch is chosen by the source channel count.
func Grayscale(img *PixelBuffer) (*PixelBuffer, error) {
	gray := &PixelBuffer{
		width:    img.width,
		height:   img.height,
		channels: Gray,
		pix:      make([]uint8, img.width*img.height),
	}
	ch := img.channels

	switch ch {
	case RGB, RGBA:
		for i := range gray.pix {
			p := img.pix[i*ch : i*ch+3]
			y := 0.299*float64(p[0]) + 0.587*float64(p[1]) + 0.114*float64(p[2])
			gray.pix[i] = uint8(math.Round(y))
		}
	case GrayAlpha:
		for i := range gray.pix {
			gray.pix[i] = img.pix[i*ch]
		}
	case Gray:
		copy(gray.pix, img.pix)
	default:
		return nil, fmt.Errorf("grayscale: %w: %d channels", ErrUnsupportedChannelLayout, ch)
	}
	return gray, nil
}

// ToImage converts a buffer to an image.Image for encoding or drawing.
// Gray becomes *image.Gray, RGB becomes an opaque *image.RGBA, and the
// alpha layouts become *image.NRGBA.
func ToImage(img *PixelBuffer) image.Image {
	rect := image.Rect(0, 0, img.width, img.height)
	ch := img.channels

	switch ch {
	case Gray:
		gray := image.NewGray(rect)
		copy(gray.Pix, img.pix)
		return gray
	case RGB:
		rgba := image.NewRGBA(rect)
		for i := 0; i < img.width*img.height; i++ {
			copy(rgba.Pix[i*4:i*4+3], img.pix[i*3:i*3+3])
			rgba.Pix[i*4+3] = 255
		}
		return rgba
	case GrayAlpha:
		nrgba := image.NewNRGBA(rect)
		for i := 0; i < img.width*img.height; i++ {
			v, a := img.pix[i*2], img.pix[i*2+1]
			nrgba.Pix[i*4], nrgba.Pix[i*4+1], nrgba.Pix[i*4+2], nrgba.Pix[i*4+3] = v, v, v, a
		}
		return nrgba
	default:
		nrgba := image.NewNRGBA(rect)
		copy(nrgba.Pix, img.pix)
		return nrgba
	}
}

// FromImage converts any image.Image to a buffer, choosing the channel
// count the source provides: gray models give 1 channel, opaque color
// images 3 and everything else 4.
func FromImage(src image.Image) *PixelBuffer {
	return FromImageChannels(src, detectChannels(src))
}

// FromImageChannels converts src to a buffer with the given channel
// count. Gray channels use the luminance the color model reports; an
// invalid channel count falls back to RGBA.
func FromImageChannels(src image.Image, channels int) *PixelBuffer {
	if channels < Gray || channels > RGBA {
		channels = RGBA
	}
	bounds := src.Bounds()
	// image.Image bounds are never negative in size; an empty image still
	// yields a 1x1 buffer so the shape invariant holds.
	width, height := max(bounds.Dx(), 1), max(bounds.Dy(), 1)
	dst := &PixelBuffer{
		width:    width,
		height:   height,
		channels: channels,
		pix:      make([]uint8, width*height*channels),
	}
	if bounds.Empty() {
		return dst
	}

	if g, ok := src.(*image.Gray); ok && channels == Gray {
		for y := 0; y < height; y++ {
			off := g.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			copy(dst.pix[y*width:(y+1)*width], g.Pix[off:off+width])
		}
		return dst
	}

	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := src.At(x, y)
			switch channels {
			case Gray:
				dst.pix[i] = color.GrayModel.Convert(c).(color.Gray).Y
			case GrayAlpha:
				n := color.NRGBAModel.Convert(c).(color.NRGBA)
				dst.pix[i] = color.GrayModel.Convert(color.NRGBA{R: n.R, G: n.G, B: n.B, A: 255}).(color.Gray).Y
				dst.pix[i+1] = n.A
			case RGB:
				n := color.NRGBAModel.Convert(c).(color.NRGBA)
				dst.pix[i], dst.pix[i+1], dst.pix[i+2] = n.R, n.G, n.B
			default:
				n := color.NRGBAModel.Convert(c).(color.NRGBA)
				dst.pix[i], dst.pix[i+1], dst.pix[i+2], dst.pix[i+3] = n.R, n.G, n.B, n.A
			}
			i += channels
		}
	}
	return dst
}

type opaquer interface {
	Opaque() bool
}

func detectChannels(src image.Image) int {
	switch src.ColorModel() {
	case color.GrayModel, color.Gray16Model:
		return Gray
	}
	if o, ok := src.(opaquer); ok {
		if o.Opaque() {
			return RGB
		}
		return RGBA
	}

	bounds := src.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if _, _, _, a := src.At(x, y).RGBA(); a != 0xffff {
				return RGBA
			}
		}
	}
	return RGB
}
