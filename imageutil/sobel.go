package imageutil

import "math"

// EdgeDetect computes the Sobel gradient magnitude of every channel.
// Each output byte is sqrt(Gx²+Gy²) rounded and clamped to [0, 255].
// The channel count is preserved; convert to grayscale first for a
// single-channel edge map.
func EdgeDetect(img *PixelBuffer) *PixelBuffer {
	gx, gy := sobelGradients(img)

	dst := newLike(img)
	for i := range dst.pix {
		dst.pix[i] = clampUint8(math.Sqrt(gx[i]*gx[i] + gy[i]*gy[i]))
	}
	return dst
}

// SobelX computes the horizontal Sobel gradient, clamped to [0, 255].
func SobelX(img *PixelBuffer) *PixelBuffer {
	dst, _ := Convolve(img, SobelXKernel())
	return dst
}

// SobelY computes the vertical Sobel gradient, clamped to [0, 255].
func SobelY(img *PixelBuffer) *PixelBuffer {
	dst, _ := Convolve(img, SobelYKernel())
	return dst
}

// sobelGradients computes horizontal and vertical Sobel gradients
// without clamping.
func sobelGradients(img *PixelBuffer) (gx, gy []float64) {
	// The Sobel kernels are fixed and valid.
	gx, _ = convolveRaw(img, SobelXKernel())
	gy, _ = convolveRaw(img, SobelYKernel())
	return gx, gy
}
