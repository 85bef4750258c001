package imageutil

import "fmt"

// Tolerance is the largest per-byte difference ApproximatelyEqual accepts.
// It absorbs rounding differences between equivalent filter implementations.
const Tolerance = 1

// ApproximatelyEqual reports whether two images have the same shape and
// no byte differs by more than Tolerance.
func ApproximatelyEqual(a, b *PixelBuffer) bool {
	if !a.SameShape(b) {
		return false
	}
	for i, v := range a.pix {
		if absDiff(v, b.pix[i]) > Tolerance {
			return false
		}
	}
	return true
}

// Equal reports whether two images have the same shape and identical bytes.
func Equal(a, b *PixelBuffer) bool {
	if !a.SameShape(b) {
		return false
	}
	for i, v := range a.pix {
		if v != b.pix[i] {
			return false
		}
	}
	return true
}

// CountDifferences returns the number of byte positions where a and b
// differ exactly. Unlike ApproximatelyEqual it has no tolerance.
func CountDifferences(a, b *PixelBuffer) (int, error) {
	if err := checkShape(a, b); err != nil {
		return 0, err
	}
	n := 0
	for i, v := range a.pix {
		if v != b.pix[i] {
			n++
		}
	}
	return n, nil
}

// MaxDifference returns the largest per-byte difference between a and b.
func MaxDifference(a, b *PixelBuffer) (int, error) {
	if err := checkShape(a, b); err != nil {
		return 0, err
	}
	maxDiff := 0
	for i, v := range a.pix {
		maxDiff = max(maxDiff, absDiff(v, b.pix[i]))
	}
	return maxDiff, nil
}

// MSE calculates the Mean Squared Error between two images over all bytes.
func MSE(a, b *PixelBuffer) (float64, error) {
	if err := checkShape(a, b); err != nil {
		return 0, err
	}
	var sumSq float64
	for i, v := range a.pix {
		d := float64(v) - float64(b.pix[i])
		sumSq += d * d
	}
	return sumSq / float64(len(a.pix)), nil
}

// checkShape rejects images whose bytes cannot be compared position by
// position.
func checkShape(a, b *PixelBuffer) error {
	if a.width != b.width || a.height != b.height {
		return fmt.Errorf("%w: %dx%d vs %dx%d",
			ErrDimensionMismatch, a.width, a.height, b.width, b.height)
	}
	if a.channels != b.channels {
		return fmt.Errorf("%w: %d vs %d channels",
			ErrDimensionMismatch, a.channels, b.channels)
	}
	return nil
}

func absDiff(a, b uint8) int {
	d := int(a) - int(b)
	if d < 0 {
		return -d
	}
	return d
}
