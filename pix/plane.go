package pix

import (
	"fmt"

	"github.com/astrofold/shearkit/errs"
)

// Plane is a 2D pixel array addressed as [x, y].
//
// Storage is a flat slice with x fastest and a row stride, so a Plane can be
// either a compact array or a shared-memory view into a larger one
// (SubPlane). Views alias their parent: writes through either are visible in
// both. Clone produces a compact independent copy.
type Plane[T any] struct {
	width  int
	height int
	stride int
	pix    []T
}

// NewPlane creates a zero-valued width x height plane.
//
// Returns:
//   - *Plane[T]: The new plane
//   - error: errs.ErrInvalidShape when width or height < 1
func NewPlane[T any](width, height int) (*Plane[T], error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("%w: %dx%d", errs.ErrInvalidShape, width, height)
	}

	return &Plane[T]{
		width:  width,
		height: height,
		stride: width,
		pix:    make([]T, width*height),
	}, nil
}

// FullPlane creates a width x height plane with every pixel set to fill.
func FullPlane[T any](width, height int, fill T) (*Plane[T], error) {
	p, err := NewPlane[T](width, height)
	if err != nil {
		return nil, err
	}
	p.Fill(fill)

	return p, nil
}

// PlaneFromValues wraps a flat x-fastest slice as a width x height plane.
// The slice is adopted, not copied.
//
// Returns:
//   - *Plane[T]: The new plane
//   - error: errs.ErrInvalidShape when the dimensions are invalid or the
//     slice length does not equal width*height
func PlaneFromValues[T any](width, height int, values []T) (*Plane[T], error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("%w: %dx%d", errs.ErrInvalidShape, width, height)
	}

	if len(values) != width*height {
		return nil, fmt.Errorf("%w: %d values for %dx%d", errs.ErrInvalidShape, len(values), width, height)
	}

	return &Plane[T]{
		width:  width,
		height: height,
		stride: width,
		pix:    values,
	}, nil
}

// Width returns the x extent.
func (p *Plane[T]) Width() int {
	return p.width
}

// Height returns the y extent.
func (p *Plane[T]) Height() int {
	return p.height
}

// At returns the pixel at (x, y).
func (p *Plane[T]) At(x, y int) T {
	p.check(x, y)
	return p.pix[y*p.stride+x]
}

// Set stores the pixel at (x, y).
func (p *Plane[T]) Set(x, y int, v T) {
	p.check(x, y)
	p.pix[y*p.stride+x] = v
}

// Row returns row y as a shared-memory slice of length Width.
func (p *Plane[T]) Row(y int) []T {
	p.check(0, y)
	return p.pix[y*p.stride : y*p.stride+p.width]
}

// Fill sets every pixel to v.
func (p *Plane[T]) Fill(v T) {
	for y := 0; y < p.height; y++ {
		row := p.Row(y)
		for x := range row {
			row[x] = v
		}
	}
}

// Values returns the pixels as a fresh compact x-fastest slice.
func (p *Plane[T]) Values() []T {
	out := make([]T, 0, p.width*p.height)
	for y := 0; y < p.height; y++ {
		out = append(out, p.Row(y)...)
	}

	return out
}

// Clone returns a compact independent copy.
func (p *Plane[T]) Clone() *Plane[T] {
	return &Plane[T]{
		width:  p.width,
		height: p.height,
		stride: p.width,
		pix:    p.Values(),
	}
}

// SubPlane returns the [x0, x0+width) x [y0, y0+height) region as a
// shared-memory view.
//
// Returns:
//   - *Plane[T]: The view
//   - error: errs.ErrInvalidShape when the region has non-positive extent
//     or reaches outside the plane
func (p *Plane[T]) SubPlane(x0, y0, width, height int) (*Plane[T], error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("%w: %dx%d", errs.ErrInvalidShape, width, height)
	}

	if x0 < 0 || y0 < 0 || x0+width > p.width || y0+height > p.height {
		return nil, fmt.Errorf("%w: region [%d:%d,%d:%d] outside %dx%d plane",
			errs.ErrInvalidShape, x0, x0+width, y0, y0+height, p.width, p.height)
	}

	start := y0*p.stride + x0
	end := (y0+height-1)*p.stride + x0 + width

	return &Plane[T]{
		width:  width,
		height: height,
		stride: p.stride,
		pix:    p.pix[start:end],
	}, nil
}

// EqualPlanes reports whether two planes have the same shape and identical
// pixels. Nil planes compare equal only to nil.
func EqualPlanes[T comparable](a, b *Plane[T]) bool {
	if a == nil || b == nil {
		return a == b
	}

	if a.width != b.width || a.height != b.height {
		return false
	}

	for y := 0; y < a.height; y++ {
		ra, rb := a.Row(y), b.Row(y)
		for x := range ra {
			if ra[x] != rb[x] {
				return false
			}
		}
	}

	return true
}

// check panics for out-of-range coordinates. Pixel access is too hot for
// error returns, and a bad index is a programmer error in any case.
func (p *Plane[T]) check(x, y int) {
	if x < 0 || x >= p.width || y < 0 || y >= p.height {
		panic(fmt.Sprintf("pix: index (%d,%d) outside %dx%d plane", x, y, p.width, p.height))
	}
}
