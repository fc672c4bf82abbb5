package platform

// WindowID is a platform-neutral window identifier. It is only meaningful
// within the session that produced it.
type WindowID uint32

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Display describes a physical display and its usable work area.
type Display struct {
	ID     int
	Name   string
	Bounds Rect
	Usable Rect
}

// Window contains identity metadata for a top-level window.
type Window struct {
	ID          WindowID
	PID         int
	ProcessName string
	AppID       string
	Title       string
}

// WindowState reports the display-mode flags of a window.
type WindowState struct {
	Minimized  bool
	Maximized  bool
	Fullscreen bool
}

// Style selects the decoration style of a window.
type Style int

const (
	// StyleNormal is a regular decorated (overlapped) window.
	StyleNormal Style = iota
	// StyleFullscreen is a borderless window covering its monitor.
	StyleFullscreen
)

// ShowCommand is a show-state request.
type ShowCommand int

const (
	ShowRestore ShowCommand = iota
	ShowMaximize
	ShowMinimize
)

func (c ShowCommand) String() string {
	switch c {
	case ShowRestore:
		return "restore"
	case ShowMaximize:
		return "maximize"
	case ShowMinimize:
		return "minimize"
	default:
		return "unknown"
	}
}

// Backend abstracts window-system operations across platforms.
type Backend interface {
	Displays() ([]Display, error)
	ActiveWindow() (WindowID, error)
	// StackedWindows lists eligible top-level windows, frontmost first.
	StackedWindows() ([]Window, error)
	WindowRect(windowID WindowID) (Rect, error)
	WindowState(windowID WindowID) (WindowState, error)
	MonitorForWindow(windowID WindowID) (Display, error)
	SetStyle(windowID WindowID, style Style) error
	Show(windowID WindowID, cmd ShowCommand) error
	MoveResize(windowID WindowID, bounds Rect) error
	SetTopmost(windowID WindowID, topmost bool) error
	Activate(windowID WindowID) error
	Redraw(windowID WindowID) error
}
