package platform

import (
	"fmt"

	"github.com/1broseidon/twm/internal/tiling"
)

// DiscoverDisplay returns the display twm manages at startup. When no
// display is marked primary the first one the backend lists is used.
func DiscoverDisplay(b Backend) (tiling.Display, error) {
	d, err := b.PrimaryDisplay()
	if err == nil {
		return d, nil
	}
	displays, derr := b.Displays()
	if derr != nil || len(displays) == 0 {
		return tiling.Display{}, fmt.Errorf("discover display: %w", err)
	}
	return displays[0], nil
}

// WindowFromHandle describes the window behind handle as it is right now.
// The window id is the handle's numeric value, which the X server already
// keeps unique.
func WindowFromHandle(b Backend, handle tiling.WindowHandle) (tiling.Window, error) {
	bounds, err := b.WindowBounds(handle)
	if err != nil {
		return tiling.Window{}, fmt.Errorf("window 0x%x: %w", uint32(handle), err)
	}
	return tiling.Window{
		ID:           tiling.WindowID(handle),
		Handle:       handle,
		OriginalBBox: bounds,
	}, nil
}
