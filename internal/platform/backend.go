package platform

import (
	"github.com/1broseidon/twm/internal/geometry"
	"github.com/1broseidon/twm/internal/tiling"
)

// Backend abstracts window-system operations across platforms.
type Backend interface {
	// PrimaryDisplay returns the display new workspaces are bound to, with
	// bounds excluding space reserved by docks.
	PrimaryDisplay() (tiling.Display, error)
	Displays() ([]tiling.Display, error)
	ActiveWindow() (tiling.WindowHandle, error)
	// ListWindows returns the manageable windows whose centres lie on display.
	ListWindows(display tiling.Display) ([]tiling.WindowHandle, error)
	WindowBounds(handle tiling.WindowHandle) (geometry.BBox, error)
	MoveResize(handle tiling.WindowHandle, bounds geometry.BBox) error
	FocusWindow(handle tiling.WindowHandle) error
	SetDocksVisible(visible bool) error
}
