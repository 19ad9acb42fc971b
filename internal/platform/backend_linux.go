//go:build linux

package platform

import (
	"fmt"
	"sort"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"

	"github.com/1broseidon/twm/internal/geometry"
	"github.com/1broseidon/twm/internal/tiling"
	"github.com/1broseidon/twm/internal/x11"
)

// LinuxBackend wraps an existing X11 connection behind the platform Backend interface.
type LinuxBackend struct {
	conn *x11.Connection
}

var _ Backend = (*LinuxBackend)(nil)

// NewLinuxBackend creates a Linux platform backend from an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection) *LinuxBackend {
	return &LinuxBackend{conn: conn}
}

// NewLinuxBackendFromDisplay opens a fresh X11 connection to display.
func NewLinuxBackendFromDisplay(display string) (*LinuxBackend, error) {
	conn, err := x11.NewConnection(display)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return &LinuxBackend{conn: conn}, nil
}

// Disconnect closes the underlying X11 connection.
func (b *LinuxBackend) Disconnect() {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
}

// EventLoop starts the X11 event loop (blocking).
func (b *LinuxBackend) EventLoop() {
	if b != nil && b.conn != nil {
		b.conn.EventLoop()
	}
}

// StopEventLoop makes a running EventLoop return.
func (b *LinuxBackend) StopEventLoop() {
	if b != nil && b.conn != nil {
		b.conn.Quit()
	}
}

// XUtil returns the underlying xgbutil connection for X11-specific operations.
func (b *LinuxBackend) XUtil() *xgbutil.XUtil {
	if b == nil || b.conn == nil {
		return nil
	}
	return b.conn.XUtil
}

// RootWindow returns the X11 root window ID.
func (b *LinuxBackend) RootWindow() xproto.Window {
	if b == nil || b.conn == nil {
		return 0
	}
	return b.conn.Root
}

// PrimaryDisplay returns the RandR primary monitor's usable area.
func (b *LinuxBackend) PrimaryDisplay() (tiling.Display, error) {
	conn, err := b.connection()
	if err != nil {
		return tiling.Display{}, err
	}

	mon, err := conn.PrimaryMonitor()
	if err != nil {
		return tiling.Display{}, err
	}
	return displayFromMonitor(mon), nil
}

// Displays returns all active displays.
func (b *LinuxBackend) Displays() ([]tiling.Display, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	monitors, err := conn.Monitors()
	if err != nil {
		return nil, err
	}

	displays := make([]tiling.Display, 0, len(monitors))
	for _, m := range monitors {
		m.Bounds = conn.UsableBounds(m.Bounds)
		displays = append(displays, displayFromMonitor(m))
	}

	sort.Slice(displays, func(i, j int) bool {
		return displays[i].ID < displays[j].ID
	})
	return displays, nil
}

// ActiveWindow returns the currently active/focused window.
func (b *LinuxBackend) ActiveWindow() (tiling.WindowHandle, error) {
	conn, err := b.connection()
	if err != nil {
		return 0, err
	}

	wid, err := conn.ActiveWindow()
	if err != nil {
		return 0, err
	}
	return tiling.WindowHandle(wid), nil
}

// ListWindows lists normal windows whose centres are inside the display.
func (b *LinuxBackend) ListWindows(display tiling.Display) ([]tiling.WindowHandle, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	clients, err := conn.ClientWindows()
	if err != nil {
		return nil, err
	}

	handles := make([]tiling.WindowHandle, 0, len(clients))
	for _, win := range clients {
		bounds, err := conn.WindowGeometry(win)
		if err != nil {
			continue
		}
		if !display.BBox.Contains(bounds.X+bounds.Width/2, bounds.Y+bounds.Height/2) {
			continue
		}
		handles = append(handles, tiling.WindowHandle(win))
	}
	return handles, nil
}

// WindowBounds returns a window's geometry in root coordinates.
func (b *LinuxBackend) WindowBounds(handle tiling.WindowHandle) (geometry.BBox, error) {
	conn, err := b.connection()
	if err != nil {
		return geometry.BBox{}, err
	}
	return conn.WindowGeometry(xproto.Window(handle))
}

// MoveResize moves and resizes a window to the specified bounds.
func (b *LinuxBackend) MoveResize(handle tiling.WindowHandle, bounds geometry.BBox) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.MoveResizeWindow(xproto.Window(handle), bounds)
}

// FocusWindow activates and raises a window.
func (b *LinuxBackend) FocusWindow(handle tiling.WindowHandle) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.FocusWindow(xproto.Window(handle))
}

// SetDocksVisible maps or unmaps panels and taskbars.
func (b *LinuxBackend) SetDocksVisible(visible bool) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	if visible {
		return conn.ShowDocks()
	}
	return conn.HideDocks()
}

func (b *LinuxBackend) connection() (*x11.Connection, error) {
	if b == nil || b.conn == nil {
		return nil, fmt.Errorf("x11 backend connection is nil")
	}
	return b.conn, nil
}

func displayFromMonitor(m x11.Monitor) tiling.Display {
	return tiling.Display{ID: tiling.DisplayID(m.ID), BBox: m.Bounds}
}
