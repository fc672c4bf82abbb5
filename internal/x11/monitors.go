package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// Geometry is a rectangle in root window coordinates.
type Geometry struct {
	X      int
	Y      int
	Width  int
	Height int
}

func (g Geometry) contains(x, y int) bool {
	return x >= g.X && x < g.X+g.Width && y >= g.Y && y < g.Y+g.Height
}

func (g Geometry) intersect(o Geometry) (Geometry, bool) {
	x1 := max(g.X, o.X)
	y1 := max(g.Y, o.Y)
	x2 := min(g.X+g.Width, o.X+o.Width)
	y2 := min(g.Y+g.Height, o.Y+o.Height)
	if x2 <= x1 || y2 <= y1 {
		return Geometry{}, false
	}
	return Geometry{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}, true
}

// Monitor represents a physical display. Name is the RandR output name
// (e.g. "DP-1"), which stays stable across reconnects and is what layouts
// remember.
type Monitor struct {
	ID     int
	Name   string
	Bounds Geometry
	// Usable is Bounds clipped to the EWMH work area.
	Usable Geometry
}

// GetMonitors retrieves all active monitors using XRandR, in CRTC order.
func (c *Connection) GetMonitors() ([]Monitor, error) {
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	workArea, hasWorkArea := c.currentWorkArea()

	var monitors []Monitor
	for i, crtc := range resources.Crtcs {
		info, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		// Disabled CRTC.
		if info.Width == 0 || info.Height == 0 || len(info.Outputs) == 0 {
			continue
		}

		name := fmt.Sprintf("Monitor%d", i)
		if out, err := randr.GetOutputInfo(c.XUtil.Conn(), info.Outputs[0], resources.ConfigTimestamp).Reply(); err == nil {
			name = string(out.Name)
		}

		bounds := Geometry{
			X:      int(info.X),
			Y:      int(info.Y),
			Width:  int(info.Width),
			Height: int(info.Height),
		}
		usable := bounds
		if hasWorkArea {
			if clipped, ok := bounds.intersect(workArea); ok {
				usable = clipped
			}
		}

		monitors = append(monitors, Monitor{
			ID:     i,
			Name:   name,
			Bounds: bounds,
			Usable: usable,
		})
	}

	if len(monitors) == 0 {
		return nil, fmt.Errorf("no active monitors found")
	}
	return monitors, nil
}

func (c *Connection) currentWorkArea() (Geometry, bool) {
	areas, err := ewmh.WorkareaGet(c.XUtil)
	if err != nil || len(areas) == 0 {
		return Geometry{}, false
	}
	idx := 0
	if desktop, err := ewmh.CurrentDesktopGet(c.XUtil); err == nil && int(desktop) < len(areas) {
		idx = int(desktop)
	}
	wa := areas[idx]
	return Geometry{X: int(wa.X), Y: int(wa.Y), Width: int(wa.Width), Height: int(wa.Height)}, true
}

// MonitorForWindow returns the monitor containing the center of the window.
func (c *Connection) MonitorForWindow(windowID xproto.Window) (Monitor, error) {
	monitors, err := c.GetMonitors()
	if err != nil {
		return Monitor{}, err
	}
	geom, err := c.WindowGeometry(windowID)
	if err != nil {
		return Monitor{}, err
	}
	mon, ok := monitorAt(monitors, geom.X+geom.Width/2, geom.Y+geom.Height/2)
	if !ok {
		return Monitor{}, fmt.Errorf("window 0x%x is not on any monitor", windowID)
	}
	return mon, nil
}

func monitorAt(monitors []Monitor, x, y int) (Monitor, bool) {
	for _, m := range monitors {
		if m.Bounds.contains(x, y) {
			return m, true
		}
	}
	return Monitor{}, false
}
