package imageutil

import (
	"errors"
	"testing"
)

// offsetImage returns a copy of img with delta added to every byte,
// saturating at 255.
func offsetImage(img *PixelBuffer, delta int) *PixelBuffer {
	out := img.Clone()
	for i, v := range out.pix {
		out.pix[i] = uint8(min(int(v)+delta, 255))
	}
	return out
}

func TestCountDifferencesSelf(t *testing.T) {
	img := randomImage(20, 10, RGB, 1)
	n, err := CountDifferences(img, img)
	if err != nil {
		t.Fatalf("CountDifferences failed: %v", err)
	}
	if n != 0 {
		t.Errorf("Expected 0 differences, got %d", n)
	}
}

func TestCountDifferences(t *testing.T) {
	a := CreateSolidImage(4, 4, 10)
	b := a.Clone()
	b.Set(0, 0, 0, 11)
	b.Set(3, 3, 0, 200)

	n, err := CountDifferences(a, b)
	if err != nil {
		t.Fatalf("CountDifferences failed: %v", err)
	}
	// Exact comparison: the off-by-one byte counts too.
	if n != 2 {
		t.Errorf("Expected 2 differences, got %d", n)
	}
}

func TestCountDifferencesMismatch(t *testing.T) {
	a := CreateSolidImage(4, 4, 10)
	tests := []struct {
		name string
		b    *PixelBuffer
	}{
		{"width", CreateSolidImage(5, 4, 10)},
		{"height", CreateSolidImage(4, 3, 10)},
		{"channels", CreateSolidImage(4, 4, 10, 10, 10)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := CountDifferences(a, tc.b); !errors.Is(err, ErrDimensionMismatch) {
				t.Errorf("Expected ErrDimensionMismatch, got %v", err)
			}
			if _, err := MaxDifference(a, tc.b); !errors.Is(err, ErrDimensionMismatch) {
				t.Errorf("MaxDifference: expected ErrDimensionMismatch, got %v", err)
			}
			if _, err := MSE(a, tc.b); !errors.Is(err, ErrDimensionMismatch) {
				t.Errorf("MSE: expected ErrDimensionMismatch, got %v", err)
			}
			if ApproximatelyEqual(a, tc.b) {
				t.Error("Images of different shape should not be approximately equal")
			}
		})
	}
}

func TestApproximatelyEqualTolerance(t *testing.T) {
	// Keep bytes below 254 so the offsets never saturate.
	img := randomImage(16, 16, RGBA, 2)
	for i, v := range img.pix {
		img.pix[i] = v % 250
	}

	if !ApproximatelyEqual(img, img.Clone()) {
		t.Error("Image should be approximately equal to its copy")
	}
	if !ApproximatelyEqual(img, offsetImage(img, 1)) {
		t.Error("Difference of 1 should be within tolerance")
	}
	if ApproximatelyEqual(img, offsetImage(img, 2)) {
		t.Error("Difference of 2 should exceed tolerance")
	}
	if Equal(img, offsetImage(img, 1)) {
		t.Error("Equal should have no tolerance")
	}
}

func TestApproximatelyEqualSymmetric(t *testing.T) {
	a := randomImage(8, 8, RGB, 3)
	cases := []*PixelBuffer{
		a.Clone(),
		offsetImage(a, 1),
		offsetImage(a, 2),
		randomImage(8, 8, RGB, 4),
		CreateSolidImage(8, 8, 0),
	}
	for i, b := range cases {
		if ApproximatelyEqual(a, b) != ApproximatelyEqual(b, a) {
			t.Errorf("Case %d: ApproximatelyEqual is not symmetric", i)
		}
	}
}

func TestToleranceBoundaryDisagreement(t *testing.T) {
	// Near the boundary the two comparison modes answer differently.
	a := CreateSolidImage(2, 2, 100)
	b := offsetImage(a, 1)
	n, err := CountDifferences(a, b)
	if err != nil {
		t.Fatalf("CountDifferences failed: %v", err)
	}
	if !ApproximatelyEqual(a, b) || n != 4 {
		t.Errorf("Expected approximately equal with 4 exact differences, got %v and %d",
			ApproximatelyEqual(a, b), n)
	}
}

func TestMaxDifferenceAndMSE(t *testing.T) {
	a := CreateSolidImage(10, 10, 0, 0, 0)
	b := CreateSolidImage(10, 10, 10, 10, 10)

	mse, err := MSE(a, a)
	if err != nil {
		t.Fatalf("MSE failed: %v", err)
	}
	if mse != 0 {
		t.Errorf("Identical images should have MSE=0, got %f", mse)
	}

	mse, _ = MSE(a, b)
	expected := 100.0 // 10^2 = 100
	if mse != expected {
		t.Errorf("Expected MSE=%f, got %f", expected, mse)
	}

	b.Set(2, 2, 1, 250)
	d, err := MaxDifference(a, b)
	if err != nil {
		t.Fatalf("MaxDifference failed: %v", err)
	}
	if d != 250 {
		t.Errorf("Expected max difference 250, got %d", d)
	}
}

func TestCalculateJaccardIndex(t *testing.T) {
	edges1 := mustBuffer(10, 10, Gray)
	edges2 := mustBuffer(10, 10, Gray)

	// No edges - should be 1 (both empty)
	if j := CalculateJaccardIndex(edges1, edges2); j != 1.0 {
		t.Errorf("Empty images should have Jaccard=1, got %f", j)
	}

	// Same edges
	for x := 0; x < 5; x++ {
		edges1.Set(x, 5, 0, 255)
		edges2.Set(x, 5, 0, 255)
	}
	if j := CalculateJaccardIndex(edges1, edges2); j != 1.0 {
		t.Errorf("Identical edges should have Jaccard=1, got %f", j)
	}

	// No overlap
	edges2 = mustBuffer(10, 10, Gray)
	for x := 5; x < 10; x++ {
		edges2.Set(x, 5, 0, 255)
	}
	if j := CalculateJaccardIndex(edges1, edges2); j != 0.0 {
		t.Errorf("Non-overlapping edges should have Jaccard=0, got %f", j)
	}
}
