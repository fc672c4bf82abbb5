package daemon

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/1broseidon/winsnap/internal/platform"
)

type fakeWindow struct {
	win   platform.Window
	rect  platform.Rect
	state platform.WindowState
}

// fakeBackend is a single-monitor window system kept in memory.
type fakeBackend struct {
	displays  []platform.Display
	windows   []*fakeWindow
	active    platform.WindowID
	moves     int
	stackErr  error
	activated []platform.WindowID
}

var _ platform.Backend = (*fakeBackend)(nil)

func newFakeBackend() *fakeBackend {
	r := platform.Rect{Width: 1920, Height: 1080}
	return &fakeBackend{displays: []platform.Display{{ID: 0, Name: "DP-1", Bounds: r, Usable: r}}}
}

func (f *fakeBackend) add(id platform.WindowID, pid int, process, class, title string, rect platform.Rect) *fakeWindow {
	w := &fakeWindow{
		win:  platform.Window{ID: id, PID: pid, ProcessName: process, AppID: class, Title: title},
		rect: rect,
	}
	f.windows = append(f.windows, w)
	return w
}

func (f *fakeBackend) find(id platform.WindowID) (*fakeWindow, error) {
	for _, w := range f.windows {
		if w.win.ID == id {
			return w, nil
		}
	}
	return nil, fmt.Errorf("window %d not found", id)
}

func (f *fakeBackend) Displays() ([]platform.Display, error) { return f.displays, nil }

func (f *fakeBackend) ActiveWindow() (platform.WindowID, error) { return f.active, nil }

func (f *fakeBackend) StackedWindows() ([]platform.Window, error) {
	if f.stackErr != nil {
		return nil, f.stackErr
	}
	out := make([]platform.Window, 0, len(f.windows))
	for _, w := range f.windows {
		out = append(out, w.win)
	}
	return out, nil
}

func (f *fakeBackend) WindowRect(id platform.WindowID) (platform.Rect, error) {
	w, err := f.find(id)
	if err != nil {
		return platform.Rect{}, err
	}
	return w.rect, nil
}

func (f *fakeBackend) WindowState(id platform.WindowID) (platform.WindowState, error) {
	w, err := f.find(id)
	if err != nil {
		return platform.WindowState{}, err
	}
	return w.state, nil
}

func (f *fakeBackend) MonitorForWindow(id platform.WindowID) (platform.Display, error) {
	if _, err := f.find(id); err != nil {
		return platform.Display{}, err
	}
	return f.displays[0], nil
}

func (f *fakeBackend) SetStyle(id platform.WindowID, style platform.Style) error {
	w, err := f.find(id)
	if err != nil {
		return err
	}
	w.state.Fullscreen = style == platform.StyleFullscreen
	return nil
}

func (f *fakeBackend) Show(id platform.WindowID, cmd platform.ShowCommand) error {
	w, err := f.find(id)
	if err != nil {
		return err
	}
	w.state.Maximized = cmd == platform.ShowMaximize
	w.state.Minimized = cmd == platform.ShowMinimize
	return nil
}

func (f *fakeBackend) MoveResize(id platform.WindowID, r platform.Rect) error {
	w, err := f.find(id)
	if err != nil {
		return err
	}
	w.rect = r
	f.moves++
	return nil
}

func (f *fakeBackend) SetTopmost(platform.WindowID, bool) error { return nil }

func (f *fakeBackend) Activate(id platform.WindowID) error {
	if _, err := f.find(id); err != nil {
		return err
	}
	f.activated = append(f.activated, id)
	return nil
}

func (f *fakeBackend) Redraw(platform.WindowID) error { return nil }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
