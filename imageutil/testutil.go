package imageutil

// The generators below build synthetic images for tests and for the
// OpenCV comparison suite. They panic on an invalid shape.

func mustBuffer(width, height, channels int) *PixelBuffer {
	img, err := NewPixelBuffer(width, height, channels)
	if err != nil {
		panic(err)
	}
	return img
}

// fill sets every channel of pixel (x, y) to v, keeping alpha opaque.
func fill(img *PixelBuffer, x, y int, v uint8) {
	off := img.Offset(x, y, 0)
	for c := 0; c < img.channels; c++ {
		img.pix[off+c] = v
	}
	if img.channels == GrayAlpha || img.channels == RGBA {
		img.pix[off+img.channels-1] = 255
	}
}

// CreateGradientImage creates a horizontal gradient test image.
func CreateGradientImage(width, height, channels int) *PixelBuffer {
	img := mustBuffer(width, height, channels)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			fill(img, x, y, uint8(255*x/max(width-1, 1)))
		}
	}
	return img
}

// CreateVerticalGradientImage creates a vertical gradient test image.
func CreateVerticalGradientImage(width, height, channels int) *PixelBuffer {
	img := mustBuffer(width, height, channels)
	for y := 0; y < height; y++ {
		v := uint8(255 * y / max(height-1, 1))
		for x := 0; x < width; x++ {
			fill(img, x, y, v)
		}
	}
	return img
}

// CreateCheckerboardImage creates a checkerboard pattern for edge testing.
func CreateCheckerboardImage(width, height, channels, squareSize int) *PixelBuffer {
	img := mustBuffer(width, height, channels)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if ((x/squareSize)+(y/squareSize))%2 == 0 {
				fill(img, x, y, 255)
			} else {
				fill(img, x, y, 0)
			}
		}
	}
	return img
}

// CreateSolidImage creates an image where every pixel holds values.
func CreateSolidImage(width, height int, values ...uint8) *PixelBuffer {
	img := mustBuffer(width, height, len(values))
	for i := 0; i < len(img.pix); i += len(values) {
		copy(img.pix[i:], values)
	}
	return img
}

// CreateCenteredPixelImage creates a black grayscale image with a single
// white pixel in the center.
func CreateCenteredPixelImage(width, height int) *PixelBuffer {
	img := mustBuffer(width, height, Gray)
	img.pix[img.Offset(width/2, height/2, 0)] = 255
	return img
}

// CreateColorBarsImage creates an RGB color bars test pattern.
func CreateColorBarsImage(width, height int) *PixelBuffer {
	img := mustBuffer(width, height, RGB)
	colors := [][3]uint8{
		{255, 255, 255}, // White
		{255, 255, 0},   // Yellow
		{0, 255, 255},   // Cyan
		{0, 255, 0},     // Green
		{255, 0, 255},   // Magenta
		{255, 0, 0},     // Red
		{0, 0, 255},     // Blue
		{0, 0, 0},       // Black
	}

	barWidth := max(width/len(colors), 1)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			colorIdx := min(x/barWidth, len(colors)-1)
			c := colors[colorIdx]
			copy(img.pix[img.Offset(x, y, 0):], c[:])
		}
	}
	return img
}

// CreateEdgeImage creates an image with sharp edges for testing edge detection.
func CreateEdgeImage(width, height, channels int) *PixelBuffer {
	img := mustBuffer(width, height, channels)
	// Gray background
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			fill(img, x, y, 128)
		}
	}

	// White rectangle in center
	for y := height / 4; y < 3*height/4; y++ {
		for x := width / 4; x < 3*width/4; x++ {
			fill(img, x, y, 255)
		}
	}

	// Diagonal line
	for i := 0; i < min(width, height)/2; i++ {
		fill(img, i, i, 0)
	}
	return img
}

// CalculateJaccardIndex calculates the Jaccard similarity between two
// single-channel edge maps, counting values above 128 as edges.
// Returns a value between 0 (no overlap) and 1 (perfect overlap).
func CalculateJaccardIndex(edges1, edges2 *PixelBuffer) float64 {
	if !edges1.SameShape(edges2) {
		return 0
	}

	var intersection, union int
	for i, v := range edges1.pix {
		e1 := v > 128
		e2 := edges2.pix[i] > 128
		if e1 && e2 {
			intersection++
		}
		if e1 || e2 {
			union++
		}
	}

	if union == 0 {
		return 1.0 // Both empty
	}
	return float64(intersection) / float64(union)
}
