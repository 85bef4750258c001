package imageutil

import (
	"fmt"
	"math"
)

// Kernel represents a square convolution kernel with an odd side.
// Weights are stored row-major; the center is at Radius()*Size()+Radius().
type Kernel struct {
	size    int
	weights []float64
}

// NewKernel creates a new kernel from a 2D slice.
func NewKernel(values [][]float64) (*Kernel, error) {
	side := len(values)
	weights := make([]float64, 0, side*side)
	for i, row := range values {
		if len(row) != side {
			return nil, fmt.Errorf("%w: row %d has %d weights, want %d",
				ErrInvalidKernel, i, len(row), side)
		}
		weights = append(weights, row...)
	}
	return NewSquareKernel(side, weights)
}

// NewSquareKernel creates a kernel of the given side from row-major weights.
// The weights are copied.
func NewSquareKernel(side int, weights []float64) (*Kernel, error) {
	k := &Kernel{size: side, weights: append([]float64(nil), weights...)}
	if err := k.validate(); err != nil {
		return nil, err
	}
	return k, nil
}

func mustKernel(k *Kernel, err error) *Kernel {
	if err != nil {
		panic(err)
	}
	return k
}

func (k *Kernel) validate() error {
	if k == nil {
		return fmt.Errorf("%w: nil kernel", ErrInvalidKernel)
	}
	if k.size < 3 || k.size%2 == 0 {
		return fmt.Errorf("%w: side %d must be odd and at least 3", ErrInvalidKernel, k.size)
	}
	if len(k.weights) != k.size*k.size {
		return fmt.Errorf("%w: %d weights for side %d", ErrInvalidKernel, len(k.weights), k.size)
	}
	return nil
}

// Size returns the side length of the kernel.
func (k *Kernel) Size() int {
	return k.size
}

// Radius returns the distance from the center to an edge of the kernel.
func (k *Kernel) Radius() int {
	return k.size / 2
}

// At returns the weight at offset (kx, ky) from the center, with both
// offsets in [-Radius, Radius].
func (k *Kernel) At(kx, ky int) float64 {
	r := k.Radius()
	return k.weights[(ky+r)*k.size+kx+r]
}

// Sum returns the sum of all weights.
func (k *Kernel) Sum() float64 {
	var s float64
	for _, w := range k.weights {
		s += w
	}
	return s
}

// IdentityKernel returns the 3x3 kernel that reproduces its input.
func IdentityKernel() *Kernel {
	return mustKernel(NewKernel([][]float64{
		{0, 0, 0},
		{0, 1, 0},
		{0, 0, 0},
	}))
}

// BoxKernel returns the uniform averaging kernel of side 2*level+1.
func BoxKernel(level int) (*Kernel, error) {
	if level < 1 {
		return nil, fmt.Errorf("%w: box level %d must be at least 1", ErrInvalidParameter, level)
	}
	side := 2*level + 1
	weights := make([]float64, side*side)
	w := 1.0 / float64(side*side)
	for i := range weights {
		weights[i] = w
	}
	return NewSquareKernel(side, weights)
}

// SobelXKernel returns the horizontal Sobel operator.
func SobelXKernel() *Kernel {
	return mustKernel(NewKernel([][]float64{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}))
}

// SobelYKernel returns the vertical Sobel operator.
func SobelYKernel() *Kernel {
	return mustKernel(NewKernel([][]float64{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	}))
}

// ClampCoord maps a coordinate into [0, limit-1] by replicating the edge.
// This is the only border policy the spatial filters use.
func ClampCoord(v, limit int) int {
	return min(max(v, 0), limit-1)
}

// Convolve applies a kernel to every channel of every pixel. Channels are
// never mixed. Border pixels are handled by replicating edge values, and
// each result is rounded and clamped to [0, 255].
func Convolve(img *PixelBuffer, kernel *Kernel) (*PixelBuffer, error) {
	if err := kernel.validate(); err != nil {
		return nil, err
	}
	dst := newLike(img)
	cols := clampedColumns(img, kernel)
	stride := img.Stride()

	parallelRows(img.height, func(y0, y1 int) {
		acc := make([]float64, stride)
		for y := y0; y < y1; y++ {
			accumulateRow(img, kernel, cols, y, acc)
			out := dst.pix[y*stride : (y+1)*stride]
			for i, sum := range acc {
				out[i] = clampUint8(sum)
			}
		}
	})
	return dst, nil
}

// convolveRaw is Convolve without rounding or clamping. The result has
// one float per byte of img.
func convolveRaw(img *PixelBuffer, kernel *Kernel) ([]float64, error) {
	if err := kernel.validate(); err != nil {
		return nil, err
	}
	dst := make([]float64, len(img.pix))
	cols := clampedColumns(img, kernel)
	stride := img.Stride()

	parallelRows(img.height, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			accumulateRow(img, kernel, cols, y, dst[y*stride:(y+1)*stride])
		}
	})
	return dst, nil
}

// clampedColumns precomputes, for every kernel column kx and output x,
// the byte offset of the clamped source pixel within a row.
func clampedColumns(img *PixelBuffer, kernel *Kernel) []int {
	r := kernel.Radius()
	cols := make([]int, kernel.size*img.width)
	for kx := 0; kx < kernel.size; kx++ {
		for x := 0; x < img.width; x++ {
			cols[kx*img.width+x] = ClampCoord(x+kx-r, img.width) * img.channels
		}
	}
	return cols
}

// accumulateRow overwrites acc with the weighted sums for output row y.
func accumulateRow(img *PixelBuffer, kernel *Kernel, cols []int, y int, acc []float64) {
	clear(acc)
	ch := img.channels
	stride := img.Stride()
	r := kernel.Radius()

	for ky := 0; ky < kernel.size; ky++ {
		sy := ClampCoord(y+ky-r, img.height)
		row := img.pix[sy*stride : (sy+1)*stride]
		for kx := 0; kx < kernel.size; kx++ {
			w := kernel.weights[ky*kernel.size+kx]
			if w == 0 {
				continue
			}
			for x, sx := range cols[kx*img.width : (kx+1)*img.width] {
				base := x * ch
				for c := 0; c < ch; c++ {
					acc[base+c] += float64(row[sx+c]) * w
				}
			}
		}
	}
}

// clampUint8 rounds v and clamps it to [0, 255].
func clampUint8(v float64) uint8 {
	return uint8(math.Round(min(max(v, 0), 255)))
}
