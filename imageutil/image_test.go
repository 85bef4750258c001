package imageutil

import (
	"errors"
	"math/rand/v2"
	"testing"
)

// randomImage fills a buffer with deterministic pseudo-random bytes.
func randomImage(width, height, channels int, seed uint64) *PixelBuffer {
	img := mustBuffer(width, height, channels)
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	for i := range img.pix {
		img.pix[i] = uint8(r.IntN(256))
	}
	return img
}

func TestNewPixelBuffer(t *testing.T) {
	img, err := NewPixelBuffer(100, 50, RGB)
	if err != nil {
		t.Fatalf("NewPixelBuffer failed: %v", err)
	}
	if img.Width() != 100 {
		t.Errorf("Expected width 100, got %d", img.Width())
	}
	if img.Height() != 50 {
		t.Errorf("Expected height 50, got %d", img.Height())
	}
	if img.Channels() != RGB {
		t.Errorf("Expected 3 channels, got %d", img.Channels())
	}
	if img.Len() != 100*50*3 {
		t.Errorf("Expected %d bytes, got %d", 100*50*3, img.Len())
	}
	if img.String() != "100x50x3" {
		t.Errorf("Expected 100x50x3, got %s", img.String())
	}
}

func TestNewPixelBufferInvalid(t *testing.T) {
	tests := []struct {
		name                    string
		width, height, channels int
	}{
		{"zero width", 0, 10, 1},
		{"negative height", 10, -1, 1},
		{"no channels", 10, 10, 0},
		{"five channels", 10, 10, 5},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewPixelBuffer(tc.width, tc.height, tc.channels)
			if !errors.Is(err, ErrInvalidBuffer) {
				t.Errorf("Expected ErrInvalidBuffer, got %v", err)
			}
		})
	}
}

func TestPixelBufferFromPixels(t *testing.T) {
	pix := []uint8{1, 2, 3, 4, 5, 6}
	img, err := PixelBufferFromPixels(3, 1, GrayAlpha, pix)
	if err != nil {
		t.Fatalf("PixelBufferFromPixels failed: %v", err)
	}

	// The buffer owns a copy.
	pix[0] = 99
	if v, _ := img.At(0, 0, 0); v != 1 {
		t.Errorf("Buffer should not alias its input, got %d", v)
	}

	if _, err := PixelBufferFromPixels(3, 1, RGB, pix); !errors.Is(err, ErrInvalidBuffer) {
		t.Errorf("Expected ErrInvalidBuffer for short pixel slice, got %v", err)
	}
}

func TestPixelBufferAtSet(t *testing.T) {
	img := mustBuffer(10, 10, RGBA)
	if err := img.Set(5, 5, 2, 200); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	v, err := img.At(5, 5, 2)
	if err != nil {
		t.Fatalf("At failed: %v", err)
	}
	if v != 200 {
		t.Errorf("Expected 200, got %d", v)
	}
	if img.Pix()[img.Offset(5, 5, 2)] != 200 {
		t.Error("Offset should address the byte written by Set")
	}

	outside := [][3]int{{-1, 0, 0}, {10, 0, 0}, {0, 10, 0}, {0, 0, 4}, {0, 0, -1}}
	for _, p := range outside {
		if _, err := img.At(p[0], p[1], p[2]); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("At(%v): expected ErrOutOfBounds, got %v", p, err)
		}
		if err := img.Set(p[0], p[1], p[2], 1); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("Set(%v): expected ErrOutOfBounds, got %v", p, err)
		}
	}
}

func TestPixelBufferSetPixel(t *testing.T) {
	img := mustBuffer(2, 2, RGB)
	if err := img.SetPixel(1, 1, 10, 20, 30, 40); err != nil {
		t.Fatalf("SetPixel failed: %v", err)
	}
	for c, want := range []uint8{10, 20, 30} {
		if got, _ := img.At(1, 1, c); got != want {
			t.Errorf("Channel %d: expected %d, got %d", c, want, got)
		}
	}
	if err := img.SetPixel(2, 0, 1); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("Expected ErrOutOfBounds, got %v", err)
	}
}

func TestPixelBufferClone(t *testing.T) {
	img := CreateSolidImage(10, 10, 255, 0, 0)
	clone := img.Clone()
	if !Equal(img, clone) {
		t.Error("Clone should have same pixel values")
	}

	// Modify clone, original should be unchanged
	clone.Set(5, 5, 1, 255)
	if v, _ := img.At(5, 5, 1); v != 0 {
		t.Error("Modifying clone should not affect original")
	}
}

func TestClampCoord(t *testing.T) {
	tests := []struct {
		v, limit, want int
	}{
		{-3, 10, 0},
		{0, 10, 0},
		{5, 10, 5},
		{9, 10, 9},
		{12, 10, 9},
		{-1, 1, 0},
		{1, 1, 0},
	}
	for _, tc := range tests {
		if got := ClampCoord(tc.v, tc.limit); got != tc.want {
			t.Errorf("ClampCoord(%d, %d) = %d, want %d", tc.v, tc.limit, got, tc.want)
		}
	}
}
