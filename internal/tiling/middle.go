package tiling

import "github.com/1broseidon/twm/internal/geometry"

func init() {
	RegisterLayout(KindMiddle, func(opts Options) Layout {
		l := NewMiddleLayout()
		l.CenterTile = opts.SidedTile
		l.Strict = opts.Strict
		return l
	})
}

// MiddleLayout places one tile in a centre column covering half the
// workspace width. The remaining tiles alternate between a left and a right
// column, each a quarter of the width, and share their column equally.
type MiddleLayout struct {
	dirty bool

	// CenterTile selects the centred tile. The default picks the highest id.
	CenterTile SidedTilePolicy
	Strict     bool
}

var _ Layout = (*MiddleLayout)(nil)

// NewMiddleLayout returns a dirty middle layout.
func NewMiddleLayout() *MiddleLayout {
	return &MiddleLayout{dirty: true, CenterTile: SidedByNewest}
}

func (l *MiddleLayout) Metadata() Meta {
	return Meta{Name: "Middle Layout"}
}

func (l *MiddleLayout) Invalidate() {
	l.dirty = true
}

func (l *MiddleLayout) IsDirty() bool {
	return l.dirty
}

func (l *MiddleLayout) Layout(info *UpdateInfo) {
	if !l.dirty {
		return
	}

	if len(info.Tiles) == 0 {
		logger.Debug("middle layout: no tiles, marking clean")
		l.dirty = false
		return
	}

	if err := l.arrange(info); err != nil {
		logger.Warn("middle layout: skipped pass", "bbox", info.WorkspaceBBox.String(), "error", err)
		return
	}
	l.dirty = false
}

// columns splits b into a left quarter, a centre and a right quarter. The
// centre absorbs the rounding remainder.
func (l *MiddleLayout) columns(b geometry.BBox) (left, center, right geometry.BBox) {
	quarter := b.Width / 4
	left = b.WithWidth(quarter)
	center = b.WithX(b.X + quarter).WithWidth(b.Width - 2*quarter)
	right = b.WithX(center.X + center.Width).WithWidth(quarter)
	return left, center, right
}

func (l *MiddleLayout) arrange(info *UpdateInfo) error {
	tiles := info.Tiles
	if l.Strict {
		if err := info.WorkspaceBBox.Validate(); err != nil {
			return err
		}
	}

	left, center, right := l.columns(info.WorkspaceBBox)
	centerIdx := selectedIndex(tiles, info.FocusedTileID, l.CenterTile)

	var leftTiles, rightTiles []int
	for i := range tiles {
		if i == centerIdx {
			continue
		}
		if len(leftTiles) <= len(rightTiles) {
			leftTiles = append(leftTiles, i)
		} else {
			rightTiles = append(rightTiles, i)
		}
	}

	split := geometry.EqualSplit
	if l.Strict {
		split = func(root geometry.BBox, n int, dir geometry.SplitDirection) []geometry.BBox {
			boxes, err := geometry.EqualSplitStrict(root, n, dir)
			if err != nil {
				return nil
			}
			return boxes
		}
	}
	leftBoxes := split(left, len(leftTiles), geometry.Horizontal)
	rightBoxes := split(right, len(rightTiles), geometry.Horizontal)
	if len(leftBoxes) != len(leftTiles) || len(rightBoxes) != len(rightTiles) {
		return geometry.ErrInvalidGeometry
	}

	tiles[centerIdx].BBox = center
	for n, i := range leftTiles {
		tiles[i].BBox = leftBoxes[n]
	}
	for n, i := range rightTiles {
		tiles[i].BBox = rightBoxes[n]
	}

	logger.Debug("middle layout: placed tiles",
		"center", tiles[centerIdx].ID, "left", len(leftTiles), "right", len(rightTiles))
	return nil
}
