package x11

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// Docks lists the windows typed _NET_WM_WINDOW_TYPE_DOCK (panels, taskbars).
func (c *Connection) Docks() ([]xproto.Window, error) {
	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return nil, fmt.Errorf("failed to get client list: %w", err)
	}

	var docks []xproto.Window
	for _, win := range clients {
		types, err := ewmh.WmWindowTypeGet(c.XUtil, win)
		if err != nil {
			continue
		}
		for _, t := range types {
			if t == "_NET_WM_WINDOW_TYPE_DOCK" {
				docks = append(docks, win)
				break
			}
		}
	}
	return docks, nil
}

// HideDocks unmaps every dock and remembers them for ShowDocks. Calling it
// again while docks are hidden is a no-op.
func (c *Connection) HideDocks() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.hiddenDocks) > 0 {
		return nil
	}

	docks, err := c.Docks()
	if err != nil {
		return err
	}

	var errs []error
	for _, win := range docks {
		if err := xproto.UnmapWindowChecked(c.XUtil.Conn(), win).Check(); err != nil {
			errs = append(errs, fmt.Errorf("unmap dock 0x%x: %w", uint32(win), err))
			continue
		}
		c.hiddenDocks = append(c.hiddenDocks, win)
	}
	return errors.Join(errs...)
}

// ShowDocks maps the docks hidden by HideDocks.
func (c *Connection) ShowDocks() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	for _, win := range c.hiddenDocks {
		if err := xproto.MapWindowChecked(c.XUtil.Conn(), win).Check(); err != nil {
			errs = append(errs, fmt.Errorf("map dock 0x%x: %w", uint32(win), err))
		}
	}
	c.hiddenDocks = nil
	return errors.Join(errs...)
}
