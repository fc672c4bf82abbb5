package x11

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xwindow"
)

const (
	stateMaxHorz    = "_NET_WM_STATE_MAXIMIZED_HORZ"
	stateMaxVert    = "_NET_WM_STATE_MAXIMIZED_VERT"
	stateHidden     = "_NET_WM_STATE_HIDDEN"
	stateFullscreen = "_NET_WM_STATE_FULLSCREEN"
	stateAbove      = "_NET_WM_STATE_ABOVE"
)

// _NET_WM_STATE actions.
const (
	stateRemove = 0
	stateAdd    = 1
)

// WindowFlags is the decoded subset of _NET_WM_STATE and WM_STATE that
// layouts care about.
type WindowFlags struct {
	Hidden     bool
	Maximized  bool
	Fullscreen bool
}

func parseStates(states []string) WindowFlags {
	var f WindowFlags
	horz, vert := false, false
	for _, s := range states {
		switch s {
		case stateHidden:
			f.Hidden = true
		case stateFullscreen:
			f.Fullscreen = true
		case stateMaxHorz:
			horz = true
		case stateMaxVert:
			vert = true
		}
	}
	f.Maximized = horz && vert
	return f
}

// StackingOrder returns managed client windows from bottom to top.
func (c *Connection) StackingOrder() ([]xproto.Window, error) {
	clients, err := ewmh.ClientListStackingGet(c.XUtil)
	if err != nil {
		// Some window managers only maintain _NET_CLIENT_LIST.
		clients, err = ewmh.ClientListGet(c.XUtil)
		if err != nil {
			return nil, fmt.Errorf("failed to get client list: %w", err)
		}
	}
	return clients, nil
}

// IsNormalWindow checks if a window is a normal application window
func (c *Connection) IsNormalWindow(windowID xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
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
	return len(types) == 0
}

// WindowTitle returns _NET_WM_NAME, falling back to WM_NAME.
func (c *Connection) WindowTitle(windowID xproto.Window) string {
	if title, err := ewmh.WmNameGet(c.XUtil, windowID); err == nil {
		if title = strings.TrimSpace(title); title != "" {
			return title
		}
	}
	if title, err := icccm.WmNameGet(c.XUtil, windowID); err == nil {
		return strings.TrimSpace(title)
	}
	return ""
}

// WindowClass returns the WM_CLASS instance and class names.
func (c *Connection) WindowClass(windowID xproto.Window) (instance, class string) {
	wmClass, err := icccm.WmClassGet(c.XUtil, windowID)
	if err != nil {
		return "", ""
	}
	return strings.TrimSpace(wmClass.Instance), strings.TrimSpace(wmClass.Class)
}

// WindowPID returns _NET_WM_PID, or 0 when the client does not set it.
func (c *Connection) WindowPID(windowID xproto.Window) int {
	pid, err := ewmh.WmPidGet(c.XUtil, windowID)
	if err != nil {
		return 0
	}
	return int(pid)
}

// WindowGeometry returns the client area of a window in root coordinates.
func (c *Connection) WindowGeometry(windowID xproto.Window) (Geometry, error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply()
	if err != nil {
		return Geometry{}, fmt.Errorf("failed to get geometry of 0x%x: %w", windowID, err)
	}
	translate, err := xproto.TranslateCoordinates(c.XUtil.Conn(), windowID, c.Root, 0, 0).Reply()
	if err != nil {
		return Geometry{}, fmt.Errorf("failed to translate coordinates of 0x%x: %w", windowID, err)
	}
	return Geometry{
		X:      int(translate.DstX),
		Y:      int(translate.DstY),
		Width:  int(geom.Width),
		Height: int(geom.Height),
	}, nil
}

// WindowFlags reads the display-mode flags of a window. A window is hidden
// when either _NET_WM_STATE_HIDDEN or ICCCM IconicState is set.
func (c *Connection) WindowFlags(windowID xproto.Window) (WindowFlags, error) {
	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		// Property absent: the window has no special state.
		states = nil
	}
	f := parseStates(states)
	if !f.Hidden {
		if st, err := icccm.WmStateGet(c.XUtil, windowID); err == nil && st.State == icccm.StateIconic {
			f.Hidden = true
		}
	}
	return f, nil
}

// MoveResizeWindow places the client area of a window at the given root
// coordinates. Static gravity keeps the request in the same coordinate space
// WindowGeometry reports.
func (c *Connection) MoveResizeWindow(windowID xproto.Window, g Geometry) error {
	err := ewmh.MoveresizeWindowExtra(
		c.XUtil,
		windowID,
		g.X, g.Y, g.Width, g.Height,
		xproto.GravityStatic, 2, true, true,
	)
	if err != nil {
		// Fallback to direct window manipulation
		xwindow.New(c.XUtil, windowID).MoveResize(g.X, g.Y, g.Width, g.Height)
	}
	return nil
}

func (c *Connection) setState(windowID xproto.Window, action int, first, second string) error {
	a, err := c.atom(first)
	if err != nil {
		return err
	}
	var b xproto.Atom
	if second != "" {
		if b, err = c.atom(second); err != nil {
			return err
		}
	}
	const sourceIndication = 2
	return c.sendRootMessage(windowID, "_NET_WM_STATE", uint32(action), uint32(a), uint32(b), sourceIndication)
}

// SetFullscreen adds or removes _NET_WM_STATE_FULLSCREEN.
func (c *Connection) SetFullscreen(windowID xproto.Window, on bool) error {
	action := stateRemove
	if on {
		action = stateAdd
	}
	return c.setState(windowID, action, stateFullscreen, "")
}

// SetMaximized adds or removes both maximized states.
func (c *Connection) SetMaximized(windowID xproto.Window, on bool) error {
	action := stateRemove
	if on {
		action = stateAdd
	}
	return c.setState(windowID, action, stateMaxHorz, stateMaxVert)
}

// SetAbove adds or removes _NET_WM_STATE_ABOVE.
func (c *Connection) SetAbove(windowID xproto.Window, on bool) error {
	action := stateRemove
	if on {
		action = stateAdd
	}
	return c.setState(windowID, action, stateAbove, "")
}

// Iconify minimizes a window via WM_CHANGE_STATE.
func (c *Connection) Iconify(windowID xproto.Window) error {
	const iconicState = 3
	return c.sendRootMessage(windowID, "WM_CHANGE_STATE", iconicState)
}

// Deiconify maps a minimized window back. Most window managers also
// deiconify on activation, which Activate covers.
func (c *Connection) Deiconify(windowID xproto.Window) error {
	if err := xproto.MapWindowChecked(c.XUtil.Conn(), windowID).Check(); err != nil {
		return fmt.Errorf("failed to map 0x%x: %w", windowID, err)
	}
	return c.Activate(windowID)
}

// Activate activates and raises a window using _NET_ACTIVE_WINDOW.
func (c *Connection) Activate(windowID xproto.Window) error {
	const sourceIndication = 2 // pager/direct action
	return c.sendRootMessage(windowID, "_NET_ACTIVE_WINDOW", sourceIndication)
}

// Redraw asks the server to repaint the whole window.
func (c *Connection) Redraw(windowID xproto.Window) error {
	return xproto.ClearAreaChecked(c.XUtil.Conn(), true, windowID, 0, 0, 0, 0).Check()
}

// GetActiveWindow returns _NET_ACTIVE_WINDOW.
func (c *Connection) GetActiveWindow() (xproto.Window, error) {
	return ewmh.ActiveWindowGet(c.XUtil)
}
