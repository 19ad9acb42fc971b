package geometry

import "fmt"

// SplitDirection is the axis a box is split along.
type SplitDirection int

const (
	// Horizontal splits a box into parts stacked on top of each other.
	Horizontal SplitDirection = iota
	// Vertical splits a box into parts placed side by side.
	Vertical
)

func (d SplitDirection) String() string {
	switch d {
	case Horizontal:
		return "Horizontal"
	case Vertical:
		return "Vertical"
	default:
		return fmt.Sprintf("SplitDirection(%d)", int(d))
	}
}

// HorizontalSplit is the result of splitting a box into an upper and a lower part.
type HorizontalSplit struct {
	Upper BBox `json:"upper"`
	Lower BBox `json:"lower"`
}

// VerticalSplit is the result of splitting a box into a left and a right part.
type VerticalSplit struct {
	Left  BBox `json:"left"`
	Right BBox `json:"right"`
}

// HorizontalSplit halves the box's height. The lower part absorbs an odd pixel.
func (b BBox) HorizontalSplit() HorizontalSplit {
	upper := b.WithHeight(b.Height / 2)
	lower := b.WithY(b.Y + upper.Height).WithHeight(b.Height - upper.Height)
	return HorizontalSplit{Upper: upper, Lower: lower}
}

// VerticalSplit halves the box's width. The right part absorbs an odd pixel.
func (b BBox) VerticalSplit() VerticalSplit {
	left := b.WithWidth(b.Width / 2)
	right := b.WithX(b.X + left.Width).WithWidth(b.Width - left.Width)
	return VerticalSplit{Left: left, Right: right}
}

// EqualSplit partitions root into n boxes along dir.
//
// Box i starts i*(size/n) pixels after the root origin on the split axis.
// Boxes 0..n-2 are size/n long and the last box takes whatever is left, so
// the boxes always cover root exactly. n <= 0 yields an empty slice. Neither
// root nor n is validated; see EqualSplitStrict.
func EqualSplit(root BBox, n int, dir SplitDirection) []BBox {
	if n <= 0 {
		return []BBox{}
	}

	boxes := make([]BBox, n)
	count := int32(n)

	switch dir {
	case Vertical:
		part := root.Width / count
		for i := int32(0); i < count; i++ {
			boxes[i] = root.WithX(root.X + i*part).WithWidth(part)
		}
		boxes[n-1].Width = root.Width - (count-1)*part
	default:
		part := root.Height / count
		for i := int32(0); i < count; i++ {
			boxes[i] = root.WithY(root.Y + i*part).WithHeight(part)
		}
		boxes[n-1].Height = root.Height - (count-1)*part
	}

	return boxes
}

// EqualSplitStrict behaves like EqualSplit but fails with ErrInvalidGeometry
// when root has a negative size or its split axis is shorter than n pixels.
func EqualSplitStrict(root BBox, n int, dir SplitDirection) ([]BBox, error) {
	if err := root.Validate(); err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("%w: negative part count %d", ErrInvalidGeometry, n)
	}

	size := root.Height
	if dir == Vertical {
		size = root.Width
	}
	if int64(size) < int64(n) {
		return nil, fmt.Errorf("%w: cannot split %d pixels into %d parts", ErrInvalidGeometry, size, n)
	}

	return EqualSplit(root, n, dir), nil
}
