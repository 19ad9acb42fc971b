package tiling

import "github.com/1broseidon/twm/internal/geometry"

func init() {
	RegisterLayout(KindSided, func(opts Options) Layout {
		l := NewSidedLayout(opts.Side)
		l.SidedTile = opts.SidedTile
		l.Strict = opts.Strict
		return l
	})
}

// SidedLayout gives one half of the workspace to a single tile and shares the
// other half equally between the remaining tiles.
type SidedLayout struct {
	dirty bool

	// Side is the half of the workspace the sided tile occupies.
	Side geometry.Direction
	// SidedTile selects the sided tile. The default picks the highest id.
	SidedTile SidedTilePolicy
	// Strict rejects geometry that cannot be split instead of producing
	// zero or negative sized tiles.
	Strict bool
}

var _ Layout = (*SidedLayout)(nil)

// NewSidedLayout returns a dirty sided layout.
func NewSidedLayout(side geometry.Direction) *SidedLayout {
	return &SidedLayout{dirty: true, Side: side, SidedTile: SidedByNewest}
}

func (l *SidedLayout) Metadata() Meta {
	return Meta{Name: "Sided Layout"}
}

func (l *SidedLayout) Invalidate() {
	l.dirty = true
}

func (l *SidedLayout) IsDirty() bool {
	return l.dirty
}

// SetSide changes the side and invalidates the layout when it differs.
func (l *SidedLayout) SetSide(side geometry.Direction) {
	if l.Side == side {
		return
	}
	l.Side = side
	l.Invalidate()
}

func (l *SidedLayout) Layout(info *UpdateInfo) {
	if !l.dirty {
		return
	}

	if len(info.Tiles) == 0 {
		logger.Debug("sided layout: no tiles, marking clean")
		l.dirty = false
		return
	}

	if err := l.arrange(info); err != nil {
		logger.Warn("sided layout: skipped pass", "bbox", info.WorkspaceBBox.String(), "error", err)
		return
	}
	l.dirty = false
}

// regions splits boundary into the sided region and the rest.
func (l *SidedLayout) regions(boundary geometry.BBox) (sided, rest geometry.BBox) {
	switch l.Side {
	case geometry.Right:
		s := boundary.VerticalSplit()
		return s.Right, s.Left
	case geometry.Up:
		s := boundary.HorizontalSplit()
		return s.Upper, s.Lower
	case geometry.Down:
		s := boundary.HorizontalSplit()
		return s.Lower, s.Upper
	default:
		s := boundary.VerticalSplit()
		return s.Left, s.Right
	}
}

// restDirection is the axis the rest region is shared along: tiles stack
// vertically next to a Left/Right side and sit side by side next to Up/Down.
func (l *SidedLayout) restDirection() geometry.SplitDirection {
	if l.Side == geometry.Up || l.Side == geometry.Down {
		return geometry.Vertical
	}
	return geometry.Horizontal
}

func (l *SidedLayout) arrange(info *UpdateInfo) error {
	tiles := info.Tiles
	sided, rest := l.regions(info.WorkspaceBBox)
	logger.Debug("sided layout: regions",
		"tiles", len(tiles), "side", l.Side.String(), "sided", sided.String(), "rest", rest.String())

	others := len(tiles) - 1
	var children []geometry.BBox
	if l.Strict {
		if err := info.WorkspaceBBox.Validate(); err != nil {
			return err
		}
		var err error
		children, err = geometry.EqualSplitStrict(rest, others, l.restDirection())
		if err != nil {
			return err
		}
	} else {
		children = geometry.EqualSplit(rest, others, l.restDirection())
	}

	sidedIdx := selectedIndex(tiles, info.FocusedTileID, l.SidedTile)
	next := 0
	for i := range tiles {
		if i == sidedIdx {
			tiles[i].BBox = sided
			logger.Debug("sided layout: placed sided tile", "tile", tiles[i].ID, "bbox", sided.String())
			continue
		}
		tiles[i].BBox = children[next]
		next++
		logger.Debug("sided layout: placed tile", "tile", tiles[i].ID, "bbox", tiles[i].BBox.String())
	}
	return nil
}
