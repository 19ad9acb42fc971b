package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/1broseidon/twm/internal/geometry"
)

// MoveResizeWindow moves and resizes a window. Maximized windows are
// unmaximized first so the window manager honours the request.
func (c *Connection) MoveResizeWindow(windowID xproto.Window, b geometry.BBox) error {
	if _, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply(); err != nil {
		return fmt.Errorf("window 0x%x: %w", uint32(windowID), err)
	}

	// Best effort; some windows do not expose _NET_WM_STATE.
	_ = c.unmaximizeWindow(windowID)

	x, y, w, h := int(b.X), int(b.Y), int(b.Width), int(b.Height)
	if err := ewmh.MoveresizeWindow(c.XUtil, windowID, x, y, w, h); err != nil {
		// Fallback to direct window manipulation
		xwindow.New(c.XUtil, windowID).MoveResize(x, y, w, h)
	}
	return nil
}

// unmaximizeWindow removes maximized state from a window
func (c *Connection) unmaximizeWindow(windowID xproto.Window) error {
	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		return err
	}

	for _, state := range states {
		switch state {
		case "_NET_WM_STATE_MAXIMIZED_HORZ", "_NET_WM_STATE_MAXIMIZED_VERT":
			if err := ewmh.WmStateReq(c.XUtil, windowID, ewmh.StateRemove, state); err != nil {
				return err
			}
		}
	}
	return nil
}

// WindowGeometry returns a window's position in root coordinates.
func (c *Connection) WindowGeometry(windowID xproto.Window) (geometry.BBox, error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply()
	if err != nil {
		return geometry.BBox{}, fmt.Errorf("window 0x%x: %w", uint32(windowID), err)
	}

	translate, err := xproto.TranslateCoordinates(c.XUtil.Conn(), windowID, c.Root, 0, 0).Reply()
	if err != nil {
		return geometry.BBox{}, fmt.Errorf("window 0x%x: %w", uint32(windowID), err)
	}

	return geometry.NewBBox(int32(translate.DstX), int32(translate.DstY), int32(geom.Width), int32(geom.Height)), nil
}

// ClientWindows lists the normal, visible client windows on the current
// desktop in EWMH client-list order.
func (c *Connection) ClientWindows() ([]xproto.Window, error) {
	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return nil, fmt.Errorf("failed to get client list: %w", err)
	}

	currentDesktop, desktopErr := ewmh.CurrentDesktopGet(c.XUtil)

	windows := make([]xproto.Window, 0, len(clients))
	for _, win := range clients {
		if !c.IsNormalWindow(win) || c.isHidden(win) {
			continue
		}
		if desktopErr == nil {
			desktop, err := ewmh.WmDesktopGet(c.XUtil, win)
			// 0xFFFFFFFF is sticky.
			if err == nil && desktop != uint(0xFFFFFFFF) && desktop != currentDesktop {
				continue
			}
		}
		windows = append(windows, win)
	}
	return windows, nil
}

// IsNormalWindow checks if a window is a normal application window
func (c *Connection) IsNormalWindow(windowID xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		// If we can't determine type, assume it's normal
		return true
	}

	for _, t := range types {
		switch t {
		case "_NET_WM_WINDOW_TYPE_NORMAL":
			return true
		case "_NET_WM_WINDOW_TYPE_DESKTOP",
			"_NET_WM_WINDOW_TYPE_DOCK",
			"_NET_WM_WINDOW_TYPE_SPLASH",
			"_NET_WM_WINDOW_TYPE_NOTIFICATION":
			return false
		}
	}

	// If no specific type is set, assume it's normal
	return len(types) == 0
}

func (c *Connection) isHidden(windowID xproto.Window) bool {
	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		return false
	}
	for _, state := range states {
		if state == "_NET_WM_STATE_HIDDEN" || state == "_NET_WM_STATE_FULLSCREEN" {
			return true
		}
	}
	return false
}

// ActiveWindow returns the _NET_ACTIVE_WINDOW.
func (c *Connection) ActiveWindow() (xproto.Window, error) {
	return ewmh.ActiveWindowGet(c.XUtil)
}

// FocusWindow activates and raises a window using _NET_ACTIVE_WINDOW.
// The client message is built by hand because the xgbutil ewmh helper
// panics on this library version.
func (c *Connection) FocusWindow(windowID xproto.Window) error {
	atomReply, err := xproto.InternAtom(c.XUtil.Conn(), false,
		uint16(len("_NET_ACTIVE_WINDOW")), "_NET_ACTIVE_WINDOW").Reply()
	if err != nil {
		return fmt.Errorf("failed to intern _NET_ACTIVE_WINDOW: %w", err)
	}

	const sourceIndication = 2 // pager/direct action
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: windowID,
		Type:   atomReply.Atom,
		Data:   xproto.ClientMessageDataUnionData32New([]uint32{sourceIndication, 0, 0, 0, 0}),
	}

	return xproto.SendEventChecked(
		c.XUtil.Conn(),
		false,
		c.Root,
		xproto.EventMaskSubstructureRedirect|xproto.EventMaskSubstructureNotify,
		string(ev.Bytes()),
	).Check()
}
