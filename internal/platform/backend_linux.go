//go:build linux

package platform

import (
	"fmt"

	"github.com/1broseidon/winsnap/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
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

// NewLinuxBackendFromDisplay creates a new Linux backend by opening a fresh X11 connection.
func NewLinuxBackendFromDisplay() (*LinuxBackend, error) {
	conn, err := x11.NewConnection()
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

// Quit stops the event loop started by EventLoop.
func (b *LinuxBackend) Quit() {
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

// Displays returns all active displays in RandR order.
func (b *LinuxBackend) Displays() ([]Display, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	monitors, err := conn.GetMonitors()
	if err != nil {
		return nil, err
	}

	displays := make([]Display, 0, len(monitors))
	for _, m := range monitors {
		displays = append(displays, displayFromMonitor(m))
	}
	return displays, nil
}

// ActiveWindow returns the currently active/focused window ID.
func (b *LinuxBackend) ActiveWindow() (WindowID, error) {
	conn, err := b.connection()
	if err != nil {
		return 0, err
	}

	wid, err := conn.GetActiveWindow()
	if err != nil {
		return 0, err
	}
	return WindowID(wid), nil
}

// Describe returns identity metadata for a single window.
func (b *LinuxBackend) Describe(windowID WindowID) (Window, error) {
	conn, err := b.connection()
	if err != nil {
		return Window{}, err
	}
	return b.describe(conn, xproto.Window(windowID)), nil
}

// StackedWindows lists normal, titled windows on the current desktop,
// frontmost first.
func (b *LinuxBackend) StackedWindows() ([]Window, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	clients, err := conn.StackingOrder()
	if err != nil {
		return nil, err
	}

	windows := make([]Window, 0, len(clients))
	for i := len(clients) - 1; i >= 0; i-- {
		id := clients[i]
		if !conn.IsNormalWindow(id) || !conn.OnCurrentDesktop(id) {
			continue
		}
		w := b.describe(conn, id)
		if w.Title == "" {
			continue
		}
		windows = append(windows, w)
	}
	return windows, nil
}

func (b *LinuxBackend) describe(conn *x11.Connection, id xproto.Window) Window {
	instance, class := conn.WindowClass(id)
	pid := conn.WindowPID(id)

	name := ""
	if pid > 0 {
		if comm, err := readProcComm(pid); err == nil {
			name = comm
		}
	}
	if name == "" {
		name = instance
	}

	return Window{
		ID:          WindowID(id),
		PID:         pid,
		ProcessName: name,
		AppID:       class,
		Title:       conn.WindowTitle(id),
	}
}

// WindowRect returns the client area of a window in desktop coordinates.
func (b *LinuxBackend) WindowRect(windowID WindowID) (Rect, error) {
	conn, err := b.connection()
	if err != nil {
		return Rect{}, err
	}
	g, err := conn.WindowGeometry(xproto.Window(windowID))
	if err != nil {
		return Rect{}, err
	}
	return rectFromGeometry(g), nil
}

// WindowState reports whether a window is minimized, maximized or fullscreen.
func (b *LinuxBackend) WindowState(windowID WindowID) (WindowState, error) {
	conn, err := b.connection()
	if err != nil {
		return WindowState{}, err
	}
	f, err := conn.WindowFlags(xproto.Window(windowID))
	if err != nil {
		return WindowState{}, err
	}
	return WindowState{
		Minimized:  f.Hidden,
		Maximized:  f.Maximized,
		Fullscreen: f.Fullscreen,
	}, nil
}

// MonitorForWindow returns the display containing the window's center.
func (b *LinuxBackend) MonitorForWindow(windowID WindowID) (Display, error) {
	conn, err := b.connection()
	if err != nil {
		return Display{}, err
	}
	m, err := conn.MonitorForWindow(xproto.Window(windowID))
	if err != nil {
		return Display{}, err
	}
	return displayFromMonitor(m), nil
}

// SetStyle switches a window between fullscreen and decorated.
func (b *LinuxBackend) SetStyle(windowID WindowID, style Style) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.SetFullscreen(xproto.Window(windowID), style == StyleFullscreen)
}

// Show applies a show-state request.
func (b *LinuxBackend) Show(windowID WindowID, cmd ShowCommand) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	id := xproto.Window(windowID)

	switch cmd {
	case ShowRestore:
		f, err := conn.WindowFlags(id)
		if err != nil {
			return err
		}
		if f.Hidden {
			if err := conn.Deiconify(id); err != nil {
				return err
			}
		}
		if f.Maximized {
			return conn.SetMaximized(id, false)
		}
		return nil
	case ShowMaximize:
		f, err := conn.WindowFlags(id)
		if err != nil {
			return err
		}
		if f.Hidden {
			if err := conn.Deiconify(id); err != nil {
				return err
			}
		}
		return conn.SetMaximized(id, true)
	case ShowMinimize:
		return conn.Iconify(id)
	default:
		return fmt.Errorf("unsupported show command %v", cmd)
	}
}

// MoveResize moves and resizes a window to the specified bounds.
func (b *LinuxBackend) MoveResize(windowID WindowID, bounds Rect) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.MoveResizeWindow(xproto.Window(windowID), x11.Geometry{
		X:      bounds.X,
		Y:      bounds.Y,
		Width:  bounds.Width,
		Height: bounds.Height,
	})
}

// SetTopmost toggles _NET_WM_STATE_ABOVE.
func (b *LinuxBackend) SetTopmost(windowID WindowID, topmost bool) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.SetAbove(xproto.Window(windowID), topmost)
}

// Activate focuses and raises a window.
func (b *LinuxBackend) Activate(windowID WindowID) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.Activate(xproto.Window(windowID))
}

// Redraw forces an expose of the whole window.
func (b *LinuxBackend) Redraw(windowID WindowID) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.Redraw(xproto.Window(windowID))
}

func (b *LinuxBackend) connection() (*x11.Connection, error) {
	if b == nil || b.conn == nil {
		return nil, fmt.Errorf("x11 backend connection is nil")
	}
	return b.conn, nil
}

func rectFromGeometry(g x11.Geometry) Rect {
	return Rect{X: g.X, Y: g.Y, Width: g.Width, Height: g.Height}
}

func displayFromMonitor(m x11.Monitor) Display {
	return Display{
		ID:     m.ID,
		Name:   m.Name,
		Bounds: rectFromGeometry(m.Bounds),
		Usable: rectFromGeometry(m.Usable),
	}
}
