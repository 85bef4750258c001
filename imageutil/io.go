package imageutil

import (
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

// Format names an image container.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatGIF  Format = "gif"
	FormatBMP  Format = "bmp"
	FormatTIFF Format = "tiff"
	// FormatWebP can be decoded but not encoded.
	FormatWebP Format = "webp"
)

// JPEGQuality is the quality used when encoding JPEG.
const JPEGQuality = 95

func (f Format) String() string {
	return string(f)
}

// SupportsChannels reports whether the format can represent a buffer with
// the given channel count. GIF still quantizes color to a 256-entry
// palette and JPEG is lossy.
func (f Format) SupportsChannels(channels int) bool {
	switch f {
	case FormatPNG, FormatBMP, FormatTIFF:
		return channels >= Gray && channels <= RGBA
	case FormatJPEG, FormatGIF:
		return channels == Gray || channels == RGB
	default:
		return false
	}
}

// Writable reports whether Encode supports the format at all.
func (f Format) Writable() bool {
	return f.SupportsChannels(Gray)
}

// FormatFromPath determines the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return FormatPNG, nil
	case ".jpg", ".jpeg":
		return FormatJPEG, nil
	case ".gif":
		return FormatGIF, nil
	case ".bmp":
		return FormatBMP, nil
	case ".tif", ".tiff":
		return FormatTIFF, nil
	case ".webp":
		return FormatWebP, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// Decode reads an image container and returns its pixels. source names
// the stream in errors. Supports PNG, JPEG, GIF, BMP, TIFF and WebP.
func Decode(r io.Reader, source string) (*PixelBuffer, error) {
	img, _, err := DecodeFormat(r, source)
	return img, err
}

// DecodeFormat is like Decode and also returns the detected format.
func DecodeFormat(r io.Reader, source string) (*PixelBuffer, Format, error) {
	img, name, err := image.Decode(r)
	if err != nil {
		return nil, "", &DecodeError{Source: source, Err: err}
	}
	if b := img.Bounds(); b.Empty() {
		return nil, "", &DecodeError{Source: source, Err: fmt.Errorf("%w: empty image", ErrInvalidBuffer)}
	}
	return FromImage(img), Format(name), nil
}

// Encode writes img to w in the given format.
func Encode(w io.Writer, img *PixelBuffer, format Format) error {
	if format == FormatWebP {
		return &EncodeError{Format: format, Channels: img.channels,
			Err: fmt.Errorf("%w: no %s encoder", ErrUnsupportedFormat, format)}
	}
	if !format.SupportsChannels(img.channels) {
		return &EncodeError{Format: format, Channels: img.channels, Err: ErrUnsupportedChannelLayout}
	}

	m := ToImage(img)
	var err error
	switch format {
	case FormatPNG:
		err = png.Encode(w, m)
	case FormatJPEG:
		err = jpeg.Encode(w, m, &jpeg.Options{Quality: JPEGQuality})
	case FormatGIF:
		err = gif.Encode(w, m, nil)
	case FormatBMP:
		err = bmp.Encode(w, m)
	case FormatTIFF:
		err = tiff.Encode(w, m, &tiff.Options{Compression: tiff.Deflate})
	default:
		err = fmt.Errorf("%w: %q", ErrUnsupportedFormat, string(format))
	}
	if err != nil {
		return &EncodeError{Format: format, Channels: img.channels, Err: err}
	}
	return nil
}

// LoadImage loads an image from the specified path.
func LoadImage(path string) (*PixelBuffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	return Decode(f, path)
}

// SaveImage saves an image to the specified path.
// Format is determined by file extension. A partially written file is
// removed on failure.
func SaveImage(img *PixelBuffer, path string) (err error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	if !format.SupportsChannels(img.channels) {
		// Fail before creating the file.
		return Encode(io.Discard, img, format)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to close file: %w", cerr)
		}
		if err != nil {
			err = errors.Join(err, removeIfExists(path))
		}
	}()

	return Encode(f, img, format)
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
