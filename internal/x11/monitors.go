package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"

	"github.com/1broseidon/twm/internal/geometry"
)

// Monitor represents a physical display
type Monitor struct {
	ID      int
	Name    string
	Primary bool
	Bounds  geometry.BBox
}

// Monitors retrieves all active monitors using XRandR.
func (c *Connection) Monitors() ([]Monitor, error) {
	conn := c.XUtil.Conn()
	if err := randr.Init(conn); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	resources, err := randr.GetScreenResources(conn, c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var primary randr.Output
	if reply, err := randr.GetOutputPrimary(conn, c.Root).Reply(); err == nil {
		primary = reply.Output
	}

	var monitors []Monitor
	for i, crtc := range resources.Crtcs {
		info, err := randr.GetCrtcInfo(conn, crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		// Disabled CRTC.
		if info.Width == 0 || info.Height == 0 || len(info.Outputs) == 0 {
			continue
		}

		name := fmt.Sprintf("Monitor%d", i)
		if out, err := randr.GetOutputInfo(conn, info.Outputs[0], resources.ConfigTimestamp).Reply(); err == nil {
			name = string(out.Name)
		}

		isPrimary := false
		for _, o := range info.Outputs {
			if primary != 0 && o == primary {
				isPrimary = true
			}
		}

		monitors = append(monitors, Monitor{
			ID:      i,
			Name:    name,
			Primary: isPrimary,
			Bounds:  geometry.NewBBox(int32(info.X), int32(info.Y), int32(info.Width), int32(info.Height)),
		})
	}

	return monitors, nil
}

// PrimaryMonitor returns the RandR primary monitor, or the first active one
// when no primary is set. Its bounds exclude the space reserved by docks.
func (c *Connection) PrimaryMonitor() (Monitor, error) {
	monitors, err := c.Monitors()
	if err != nil {
		return Monitor{}, err
	}
	if len(monitors) == 0 {
		return Monitor{}, fmt.Errorf("no monitors found")
	}

	mon := monitors[0]
	for _, m := range monitors {
		if m.Primary {
			mon = m
			break
		}
	}
	mon.Bounds = c.UsableBounds(mon.Bounds)
	return mon, nil
}

// UsableBounds shrinks bounds by the struts of visible docks. When no dock
// reserves space it falls back to the EWMH work area.
func (c *Connection) UsableBounds(bounds geometry.BBox) geometry.BBox {
	if adjusted, ok := c.applyDockStruts(bounds); ok {
		return adjusted
	}

	workArea, err := ewmh.WorkareaGet(c.XUtil)
	if err != nil || len(workArea) == 0 {
		return bounds
	}
	desktop := 0
	if current, err := ewmh.CurrentDesktopGet(c.XUtil); err == nil && int(current) < len(workArea) {
		desktop = int(current)
	}
	wa := workArea[desktop]
	area := geometry.NewBBox(int32(wa.X), int32(wa.Y), int32(wa.Width), int32(wa.Height))

	if isect, ok := intersection(bounds, area); ok {
		return isect
	}
	return bounds
}

type dockStruts struct {
	left, right, top, bottom int32
}

func (c *Connection) applyDockStruts(mon geometry.BBox) (geometry.BBox, bool) {
	rootGeom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(c.Root)).Reply()
	if err != nil {
		return mon, false
	}
	rootW := int32(rootGeom.Width)
	rootH := int32(rootGeom.Height)

	docks, err := c.Docks()
	if err != nil {
		return mon, false
	}

	var struts dockStruts
	for _, win := range docks {
		if sp, err := ewmh.WmStrutPartialGet(c.XUtil, win); err == nil {
			updateStruts(mon, rootW, rootH, sp, &struts)
			continue
		}

		// Some docks only set _NET_WM_STRUT (no partial ranges).
		if s, err := ewmh.WmStrutGet(c.XUtil, win); err == nil {
			sp := &ewmh.WmStrutPartial{
				Left: s.Left, Right: s.Right, Top: s.Top, Bottom: s.Bottom,
				LeftEndY:   uint(rootH - 1),
				RightEndY:  uint(rootH - 1),
				TopEndX:    uint(rootW - 1),
				BottomEndX: uint(rootW - 1),
			}
			updateStruts(mon, rootW, rootH, sp, &struts)
		}
	}

	if struts == (dockStruts{}) {
		return mon, false
	}

	out := geometry.NewBBox(
		mon.X+struts.left,
		mon.Y+struts.top,
		max(mon.Width-struts.left-struts.right, 1),
		max(mon.Height-struts.top-struts.bottom, 1),
	)
	return out, true
}

func updateStruts(mon geometry.BBox, rootW, rootH int32, sp *ewmh.WmStrutPartial, acc *dockStruts) {
	if sp.Top > 0 {
		r := geometry.NewBBox(int32(sp.TopStartX), 0, int32(sp.TopEndX)-int32(sp.TopStartX)+1, int32(sp.Top))
		if isect, ok := intersection(mon, r); ok {
			acc.top = max(acc.top, isect.Height)
		}
	}
	if sp.Bottom > 0 {
		r := geometry.NewBBox(int32(sp.BottomStartX), rootH-int32(sp.Bottom), int32(sp.BottomEndX)-int32(sp.BottomStartX)+1, int32(sp.Bottom))
		if isect, ok := intersection(mon, r); ok {
			acc.bottom = max(acc.bottom, isect.Height)
		}
	}
	if sp.Left > 0 {
		r := geometry.NewBBox(0, int32(sp.LeftStartY), int32(sp.Left), int32(sp.LeftEndY)-int32(sp.LeftStartY)+1)
		if isect, ok := intersection(mon, r); ok {
			acc.left = max(acc.left, isect.Width)
		}
	}
	if sp.Right > 0 {
		r := geometry.NewBBox(rootW-int32(sp.Right), int32(sp.RightStartY), int32(sp.Right), int32(sp.RightEndY)-int32(sp.RightStartY)+1)
		if isect, ok := intersection(mon, r); ok {
			acc.right = max(acc.right, isect.Width)
		}
	}
}

func intersection(a, b geometry.BBox) (geometry.BBox, bool) {
	if !a.Intersects(b) {
		return geometry.BBox{}, false
	}
	x1, y1 := max(a.X, b.X), max(a.Y, b.Y)
	x2, y2 := min(a.X+a.Width, b.X+b.Width), min(a.Y+a.Height, b.Y+b.Height)
	return geometry.NewBBox(x1, y1, x2-x1, y2-y1), true
}
