package tiling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/twm/internal/geometry"
)

var fullHD = geometry.NewBBox(0, 0, 1920, 1080)

func tilesWithIDs(ids ...TileID) []Tile {
	tiles := make([]Tile, 0, len(ids))
	for _, id := range ids {
		tiles = append(tiles, NewTile(id, Window{ID: WindowID(id), Handle: WindowHandle(100 + id)}))
	}
	return tiles
}

func bboxes(tiles []Tile) []geometry.BBox {
	out := make([]geometry.BBox, len(tiles))
	for i, t := range tiles {
		out[i] = t.BBox
	}
	return out
}

func TestSidedLayout_AssignsHighestIDToSide(t *testing.T) {
	l := NewSidedLayout(geometry.Left)
	info := &UpdateInfo{Tiles: tilesWithIDs(0, 1, 2), WorkspaceBBox: fullHD}

	l.Layout(info)

	assert.False(t, l.IsDirty())
	assert.Equal(t, []geometry.BBox{
		geometry.NewBBox(960, 0, 960, 540),
		geometry.NewBBox(960, 540, 960, 540),
		geometry.NewBBox(0, 0, 960, 1080),
	}, bboxes(info.Tiles))
}

func TestSidedLayout_SidedTileInMiddleOfSequence(t *testing.T) {
	l := NewSidedLayout(geometry.Left)
	info := &UpdateInfo{Tiles: tilesWithIDs(0, 5, 1), WorkspaceBBox: fullHD}

	l.Layout(info)

	assert.Equal(t, []geometry.BBox{
		geometry.NewBBox(960, 0, 960, 540),
		geometry.NewBBox(0, 0, 960, 1080),
		geometry.NewBBox(960, 540, 960, 540),
	}, bboxes(info.Tiles))
}

func TestSidedLayout_Sides(t *testing.T) {
	tests := []struct {
		side  geometry.Direction
		sided geometry.BBox
		rest  []geometry.BBox
	}{
		{
			side:  geometry.Right,
			sided: geometry.NewBBox(960, 0, 960, 1080),
			rest:  []geometry.BBox{geometry.NewBBox(0, 0, 960, 540), geometry.NewBBox(0, 540, 960, 540)},
		},
		{
			side:  geometry.Up,
			sided: geometry.NewBBox(0, 0, 1920, 540),
			rest:  []geometry.BBox{geometry.NewBBox(0, 540, 960, 540), geometry.NewBBox(960, 540, 960, 540)},
		},
		{
			side:  geometry.Down,
			sided: geometry.NewBBox(0, 540, 1920, 540),
			rest:  []geometry.BBox{geometry.NewBBox(0, 0, 960, 540), geometry.NewBBox(960, 0, 960, 540)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.side.String(), func(t *testing.T) {
			l := NewSidedLayout(tt.side)
			info := &UpdateInfo{Tiles: tilesWithIDs(0, 1, 2), WorkspaceBBox: fullHD}

			l.Layout(info)

			assert.Equal(t, tt.rest[0], info.Tiles[0].BBox)
			assert.Equal(t, tt.rest[1], info.Tiles[1].BBox)
			assert.Equal(t, tt.sided, info.Tiles[2].BBox)
		})
	}
}

func TestSidedLayout_SingleTileTakesSidedRegion(t *testing.T) {
	l := NewSidedLayout(geometry.Left)
	info := &UpdateInfo{Tiles: tilesWithIDs(7), WorkspaceBBox: fullHD}

	l.Layout(info)

	assert.Equal(t, geometry.NewBBox(0, 0, 960, 1080), info.Tiles[0].BBox)
	assert.False(t, l.IsDirty())
}

func TestSidedLayout_Idempotent(t *testing.T) {
	l := NewSidedLayout(geometry.Left)
	info := &UpdateInfo{Tiles: tilesWithIDs(0, 1, 2), WorkspaceBBox: fullHD}

	l.Layout(info)
	first := bboxes(info.Tiles)

	// A clean layout must not touch tiles, even when the input changed.
	info.WorkspaceBBox = geometry.NewBBox(0, 0, 100, 100)
	l.Layout(info)
	assert.Equal(t, first, bboxes(info.Tiles))

	l.Invalidate()
	l.Invalidate()
	assert.True(t, l.IsDirty())
	l.Layout(info)
	assert.NotEqual(t, first, bboxes(info.Tiles))
}

func TestSidedLayout_EmptyShortCircuit(t *testing.T) {
	l := NewSidedLayout(geometry.Left)
	require.True(t, l.IsDirty())

	info := &UpdateInfo{WorkspaceBBox: fullHD}
	l.Layout(info)

	assert.False(t, l.IsDirty())
	assert.Empty(t, info.Tiles)
}

func TestSidedLayout_FocusPolicy(t *testing.T) {
	l := NewSidedLayout(geometry.Left)
	l.SidedTile = SidedByFocus
	focused := TileID(0)
	info := &UpdateInfo{Tiles: tilesWithIDs(0, 1, 2), WorkspaceBBox: fullHD, FocusedTileID: &focused}

	l.Layout(info)

	assert.Equal(t, geometry.NewBBox(0, 0, 960, 1080), info.Tiles[0].BBox)
	assert.Equal(t, geometry.NewBBox(960, 0, 960, 540), info.Tiles[1].BBox)
	assert.Equal(t, geometry.NewBBox(960, 540, 960, 540), info.Tiles[2].BBox)

	// Without focus the policy falls back to the newest tile.
	l.Invalidate()
	info.FocusedTileID = nil
	l.Layout(info)
	assert.Equal(t, geometry.NewBBox(0, 0, 960, 1080), info.Tiles[2].BBox)
}

func TestSidedLayout_SetSideInvalidates(t *testing.T) {
	l := NewSidedLayout(geometry.Left)
	l.Layout(&UpdateInfo{Tiles: tilesWithIDs(0), WorkspaceBBox: fullHD})
	require.False(t, l.IsDirty())

	l.SetSide(geometry.Left)
	assert.False(t, l.IsDirty())

	l.SetSide(geometry.Up)
	assert.True(t, l.IsDirty())
}

func TestSidedLayout_StrictKeepsDirtyOnBadGeometry(t *testing.T) {
	l := NewSidedLayout(geometry.Left)
	l.Strict = true
	info := &UpdateInfo{Tiles: tilesWithIDs(0, 1, 2, 3), WorkspaceBBox: geometry.NewBBox(0, 0, 4, 2)}
	before := bboxes(info.Tiles)

	l.Layout(info)

	assert.True(t, l.IsDirty())
	assert.Equal(t, before, bboxes(info.Tiles))
}

func TestSidedLayout_NonStrictAcceptsBadGeometry(t *testing.T) {
	l := NewSidedLayout(geometry.Left)
	info := &UpdateInfo{Tiles: tilesWithIDs(0, 1, 2, 3), WorkspaceBBox: geometry.NewBBox(0, 0, 4, 2)}

	l.Layout(info)

	assert.False(t, l.IsDirty())
}

func TestMiddleLayout(t *testing.T) {
	l := NewMiddleLayout()
	info := &UpdateInfo{Tiles: tilesWithIDs(0, 1, 2, 3), WorkspaceBBox: fullHD}

	l.Layout(info)

	assert.False(t, l.IsDirty())
	assert.Equal(t, []geometry.BBox{
		geometry.NewBBox(0, 0, 480, 540),
		geometry.NewBBox(1440, 0, 480, 1080),
		geometry.NewBBox(0, 540, 480, 540),
		geometry.NewBBox(480, 0, 960, 1080),
	}, bboxes(info.Tiles))
}

func TestMiddleLayout_SingleTileCentred(t *testing.T) {
	l := NewMiddleLayout()
	info := &UpdateInfo{Tiles: tilesWithIDs(3), WorkspaceBBox: geometry.NewBBox(100, 0, 1002, 500)}

	l.Layout(info)

	assert.Equal(t, geometry.NewBBox(350, 0, 502, 500), info.Tiles[0].BBox)
}

func TestMiddleLayout_DirtyTracking(t *testing.T) {
	l := NewMiddleLayout()
	require.True(t, l.IsDirty())

	l.Layout(&UpdateInfo{WorkspaceBBox: fullHD})
	assert.False(t, l.IsDirty())

	info := &UpdateInfo{Tiles: tilesWithIDs(0, 1), WorkspaceBBox: fullHD}
	l.Layout(info)
	assert.Equal(t, geometry.BBox{}, info.Tiles[0].BBox)

	l.Invalidate()
	l.Layout(info)
	assert.Equal(t, geometry.NewBBox(480, 0, 960, 1080), info.Tiles[1].BBox)
	assert.Equal(t, geometry.NewBBox(0, 0, 480, 1080), info.Tiles[0].BBox)
}

func TestLayoutMetadata(t *testing.T) {
	assert.Equal(t, "Sided Layout", NewSidedLayout(geometry.Left).Metadata().Name)
	assert.Equal(t, "Middle Layout", NewMiddleLayout().Metadata().Name)
}

func TestLayoutRegistry(t *testing.T) {
	assert.Equal(t, []string{KindMiddle, KindSided}, LayoutKinds())

	l, err := NewLayout(" Sided ", Options{Side: geometry.Down, SidedTile: SidedByFocus, Strict: true})
	require.NoError(t, err)
	sided, ok := l.(*SidedLayout)
	require.True(t, ok)
	assert.Equal(t, geometry.Down, sided.Side)
	assert.Equal(t, SidedByFocus, sided.SidedTile)
	assert.True(t, sided.Strict)
	assert.True(t, sided.IsDirty())

	l, err = NewLayout(KindMiddle, Options{})
	require.NoError(t, err)
	assert.IsType(t, &MiddleLayout{}, l)

	_, err = NewLayout("spiral", Options{})
	assert.ErrorContains(t, err, "spiral")
}

func TestRegisterLayout_PanicsOnDuplicate(t *testing.T) {
	assert.Panics(t, func() {
		RegisterLayout(KindSided, func(Options) Layout { return NewSidedLayout(geometry.Left) })
	})
	assert.Panics(t, func() { RegisterLayout("", func(Options) Layout { return nil }) })
	assert.Panics(t, func() { RegisterLayout("nil-ctor", nil) })
}

func TestSidedTilePolicyValid(t *testing.T) {
	assert.True(t, SidedTilePolicy("").Valid())
	assert.True(t, SidedByNewest.Valid())
	assert.True(t, SidedByFocus.Valid())
	assert.False(t, SidedTilePolicy("oldest").Valid())
}
