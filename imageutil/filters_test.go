package imageutil

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestInvertTwiceIsIdentity(t *testing.T) {
	for channels := Gray; channels <= RGBA; channels++ {
		img := randomImage(13, 11, channels, uint64(100+channels))
		if !Equal(Invert(Invert(img)), img) {
			t.Errorf("Inverting a %d-channel image twice should restore it", channels)
		}
	}
}

func TestInvertIncludesAlpha(t *testing.T) {
	img := CreateSolidImage(2, 2, 10, 20, 30, 255)
	inv := Invert(img)
	want := []uint8{245, 235, 225, 0}
	for c, w := range want {
		if got, _ := inv.At(1, 1, c); got != w {
			t.Errorf("Channel %d: expected %d, got %d", c, w, got)
		}
	}
}

func TestInvertDoesNotMutateInput(t *testing.T) {
	img := CreateGradientImage(8, 8, RGB)
	before := img.Clone()
	_ = Invert(img)
	if !Equal(img, before) {
		t.Error("Invert should not modify its input")
	}
}

func TestGrayscale(t *testing.T) {
	tests := []struct {
		name  string
		pixel []uint8
		want  uint8
	}{
		{"white RGB", []uint8{255, 255, 255}, 255},
		{"black RGB", []uint8{0, 0, 0}, 0},
		{"red RGB", []uint8{255, 0, 0}, 76},
		{"green RGB", []uint8{0, 255, 0}, 150},
		{"blue RGB", []uint8{0, 0, 255}, 29},
		// Sums that land just under .5 in float64 round down.
		{"half tie 0,36,12", []uint8{0, 36, 12}, 22},
		{"half tie 0,80,110", []uint8{0, 80, 110}, 59},
		{"half tie 0,118,81", []uint8{0, 118, 81}, 78},
		{"red RGBA drops alpha", []uint8{255, 0, 0, 7}, 76},
		{"gray alpha keeps gray", []uint8{90, 3}, 90},
		{"gray copied", []uint8{42}, 42},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			img := CreateSolidImage(3, 2, tc.pixel...)
			gray, err := Grayscale(img)
			if err != nil {
				t.Fatalf("Grayscale failed: %v", err)
			}
			if gray.Channels() != Gray {
				t.Errorf("Expected 1 channel, got %d", gray.Channels())
			}
			if gray.Width() != 3 || gray.Height() != 2 {
				t.Errorf("Expected 3x2, got %dx%d", gray.Width(), gray.Height())
			}
			for i, v := range gray.Pix() {
				if v != tc.want {
					t.Fatalf("Byte %d: expected %d, got %d", i, tc.want, v)
				}
			}
		})
	}
}

func TestGrayscaleUnsupportedLayout(t *testing.T) {
	if _, err := Grayscale(&PixelBuffer{width: 1, height: 1, channels: 5, pix: make([]uint8, 5)}); !errors.Is(err, ErrUnsupportedChannelLayout) {
		t.Errorf("Expected ErrUnsupportedChannelLayout, got %v", err)
	}
}

func TestBoxBlurCenteredPixel(t *testing.T) {
	img := CreateCenteredPixelImage(3, 3)
	blurred, err := BoxBlur(img, 1)
	if err != nil {
		t.Fatalf("BoxBlur failed: %v", err)
	}
	// round(255/9) = 28
	if v, _ := blurred.At(1, 1, 0); v != 28 {
		t.Errorf("Expected center 28, got %d", v)
	}
	// Every neighborhood in a 3x3 image contains the center exactly once.
	for i, v := range blurred.Pix() {
		if v != 28 {
			t.Errorf("Byte %d: expected 28, got %d", i, v)
		}
	}
}

func TestBoxBlurSinglePixel(t *testing.T) {
	img := CreateSolidImage(1, 1, 10, 200, 30, 255)
	for level := 1; level <= 4; level++ {
		blurred, err := BoxBlur(img, level)
		if err != nil {
			t.Fatalf("BoxBlur(%d) failed: %v", level, err)
		}
		if !Equal(blurred, img) {
			t.Errorf("Level %d: expected %v, got %v", level, img.Pix(), blurred.Pix())
		}
	}
}

func TestBoxBlurInvalidLevel(t *testing.T) {
	img := CreateGradientImage(4, 4, Gray)
	for _, level := range []int{0, -1} {
		if _, err := BoxBlur(img, level); !errors.Is(err, ErrInvalidParameter) {
			t.Errorf("Level %d: expected ErrInvalidParameter, got %v", level, err)
		}
		if _, err := Sharpen(img, level); !errors.Is(err, ErrInvalidParameter) {
			t.Errorf("Sharpen level %d: expected ErrInvalidParameter, got %v", level, err)
		}
	}
}

func TestSharpen(t *testing.T) {
	// Every pixel of the 3x3 blur is 28, so 2*v-28 clamps back to 0 and 255.
	img := CreateCenteredPixelImage(3, 3)
	sharpened, err := Sharpen(img, 1)
	if err != nil {
		t.Fatalf("Sharpen failed: %v", err)
	}
	if !Equal(sharpened, img) {
		t.Errorf("Expected %v, got %v", img.Pix(), sharpened.Pix())
	}

	// A mid-gray step: the dark side darkens and the bright side brightens
	// next to the edge.
	step, _ := PixelBufferFromPixels(4, 1, Gray, []uint8{100, 100, 200, 200})
	out, err := Sharpen(step, 1)
	if err != nil {
		t.Fatalf("Sharpen failed: %v", err)
	}
	// blur row: 100, 133, 167, 200
	want := []uint8{100, 67, 233, 200}
	if diff := cmp.Diff(want, out.Pix()); diff != "" {
		t.Errorf("Unexpected sharpen (-want +got):\n%s", diff)
	}
}

func TestEdgeDetectFlatImage(t *testing.T) {
	img := CreateSolidImage(9, 7, 123, 45, 67)
	edges := EdgeDetect(img)
	for i, v := range edges.Pix() {
		if v != 0 {
			t.Fatalf("Byte %d: expected 0 gradient, got %d", i, v)
		}
	}
}

func TestEdgeDetectStep(t *testing.T) {
	img, _ := PixelBufferFromPixels(4, 1, Gray, []uint8{0, 0, 255, 255})
	edges := EdgeDetect(img)
	// Gx = 4*255 at the two center columns, zero at the clamped ends.
	want := []uint8{0, 255, 255, 0}
	if diff := cmp.Diff(want, edges.Pix()); diff != "" {
		t.Errorf("Unexpected edge map (-want +got):\n%s", diff)
	}
}

func TestEdgeDetectMagnitude(t *testing.T) {
	// A vertical step of 10: Gx = 40 at the boundary, Gy = 0.
	img, _ := PixelBufferFromPixels(4, 3, Gray, []uint8{
		0, 0, 10, 10,
		0, 0, 10, 10,
		0, 0, 10, 10,
	})
	edges := EdgeDetect(img)
	if v, _ := edges.At(1, 1, 0); v != 40 {
		t.Errorf("Expected 40, got %d", v)
	}

	// The single-direction maps agree: all of the gradient is horizontal.
	if v, _ := SobelX(img).At(1, 1, 0); v != 40 {
		t.Errorf("SobelX: expected 40, got %d", v)
	}
	if v, _ := SobelY(img).At(1, 1, 0); v != 0 {
		t.Errorf("SobelY: expected 0, got %d", v)
	}
}

func TestEdgeDetectDetectsEdges(t *testing.T) {
	img := CreateEdgeImage(64, 64, RGB)
	gray, _ := Grayscale(img)
	edges := EdgeDetect(gray)

	edgeCount := 0
	for _, v := range edges.Pix() {
		if v > 128 {
			edgeCount++
		}
	}
	if edgeCount == 0 {
		t.Error("EdgeDetect should find edges in edge test image")
	}
}

func TestSpatialFiltersPreserveShape(t *testing.T) {
	for channels := Gray; channels <= RGBA; channels++ {
		img := randomImage(21, 5, channels, uint64(channels)*31)

		blurred, err := BoxBlur(img, 2)
		if err != nil {
			t.Fatalf("BoxBlur failed: %v", err)
		}
		sharpened, err := Sharpen(img, 2)
		if err != nil {
			t.Fatalf("Sharpen failed: %v", err)
		}
		outputs := map[string]*PixelBuffer{
			"blur":    blurred,
			"sharpen": sharpened,
			"edges":   EdgeDetect(img),
			"invert":  Invert(img),
		}
		for name, out := range outputs {
			if !out.SameShape(img) {
				t.Errorf("%s changed shape %s -> %s", name, img, out)
			}
			if out.Len() != img.Len() {
				t.Errorf("%s changed length %d -> %d", name, img.Len(), out.Len())
			}
		}

		gray, err := Grayscale(img)
		if err != nil {
			t.Fatalf("Grayscale failed: %v", err)
		}
		if gray.Width() != img.Width() || gray.Height() != img.Height() || gray.Channels() != Gray {
			t.Errorf("Grayscale shape %s from %s", gray, img)
		}
	}
}

func TestFiltersDoNotMutateInput(t *testing.T) {
	img := randomImage(16, 16, RGBA, 5)
	before := img.Clone()

	BoxBlur(img, 1)
	Sharpen(img, 1)
	EdgeDetect(img)
	Grayscale(img)

	if !Equal(img, before) {
		t.Error("Filters should not modify their input")
	}
}

func TestSobelDirections(t *testing.T) {
	// A vertical gradient only varies along y.
	img := CreateVerticalGradientImage(12, 12, Gray)
	for i, v := range SobelX(img).Pix() {
		if v != 0 {
			t.Fatalf("SobelX byte %d: expected 0, got %d", i, v)
		}
	}
	if v, _ := SobelY(img).At(6, 6, 0); v == 0 {
		t.Error("SobelY should respond to a vertical gradient")
	}
}
