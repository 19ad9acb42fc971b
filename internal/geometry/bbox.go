// Package geometry holds the bounding-box algebra used to place windows.
//
// All operations are pure value computations. Integer division always rounds
// toward zero and the rounding remainder is given to the last (or second)
// part of a split, so the parts of a split exactly cover the original box.
package geometry

import (
	"errors"
	"fmt"
)

// ErrInvalidGeometry is returned by the strict constructors and splits when a
// box has a negative size or is too small to be split as requested.
var ErrInvalidGeometry = errors.New("invalid geometry")

// BBox is an axis-aligned rectangle in pixel space.
type BBox struct {
	X      int32 `json:"x"`
	Y      int32 `json:"y"`
	Width  int32 `json:"width"`
	Height int32 `json:"height"`
}

// NewBBox creates a bounding box without validating it.
func NewBBox(x, y, width, height int32) BBox {
	return BBox{X: x, Y: y, Width: width, Height: height}
}

// NewBBoxStrict creates a bounding box and rejects negative sizes.
func NewBBoxStrict(x, y, width, height int32) (BBox, error) {
	b := NewBBox(x, y, width, height)
	if err := b.Validate(); err != nil {
		return BBox{}, err
	}
	return b, nil
}

// Validate reports whether the box has a non-negative width and height.
func (b BBox) Validate() error {
	if b.Width < 0 || b.Height < 0 {
		return fmt.Errorf("%w: negative size %dx%d", ErrInvalidGeometry, b.Width, b.Height)
	}
	return nil
}

// WithX returns a copy of b with X replaced.
func (b BBox) WithX(x int32) BBox {
	b.X = x
	return b
}

// WithY returns a copy of b with Y replaced.
func (b BBox) WithY(y int32) BBox {
	b.Y = y
	return b
}

// WithWidth returns a copy of b with Width replaced.
func (b BBox) WithWidth(width int32) BBox {
	b.Width = width
	return b
}

// WithHeight returns a copy of b with Height replaced.
func (b BBox) WithHeight(height int32) BBox {
	b.Height = height
	return b
}

// Empty reports whether the box covers no pixels.
func (b BBox) Empty() bool {
	return b.Width <= 0 || b.Height <= 0
}

// Contains reports whether the point lies inside b. The right and bottom
// edges are exclusive.
func (b BBox) Contains(x, y int32) bool {
	return x >= b.X && x < b.X+b.Width && y >= b.Y && y < b.Y+b.Height
}

// Intersects reports whether b and o share at least one pixel.
func (b BBox) Intersects(o BBox) bool {
	if b.Empty() || o.Empty() {
		return false
	}
	return b.X < o.X+o.Width && o.X < b.X+b.Width &&
		b.Y < o.Y+o.Height && o.Y < b.Y+b.Height
}

// String formats the box as {width}x{height}@(x,y).
func (b BBox) String() string {
	return fmt.Sprintf("%dx%d@(%d,%d)", b.Width, b.Height, b.X, b.Y)
}
