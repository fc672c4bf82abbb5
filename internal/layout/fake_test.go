package layout

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/1broseidon/winsnap/internal/platform"
)

type fakeWindow struct {
	win     platform.Window
	rect    platform.Rect
	state   platform.WindowState
	monitor string
}

type call struct {
	op     string
	id     platform.WindowID
	detail string
}

// fakeBackend is an in-memory window system that records mutating calls.
type fakeBackend struct {
	displays []platform.Display
	windows  []*fakeWindow
	calls    []call
}

var _ platform.Backend = (*fakeBackend)(nil)

func newFakeBackend(displays ...platform.Display) *fakeBackend {
	return &fakeBackend{displays: displays}
}

func display(id int, name string, x, y, w, h int) platform.Display {
	r := platform.Rect{X: x, Y: y, Width: w, Height: h}
	return platform.Display{ID: id, Name: name, Bounds: r, Usable: r}
}

func (f *fakeBackend) add(w platform.Window, monitor string, rect platform.Rect, state platform.WindowState) *fakeWindow {
	fw := &fakeWindow{win: w, rect: rect, state: state, monitor: monitor}
	f.windows = append(f.windows, fw)
	return fw
}

func (f *fakeBackend) find(id platform.WindowID) (*fakeWindow, error) {
	for _, w := range f.windows {
		if w.win.ID == id {
			return w, nil
		}
	}
	return nil, fmt.Errorf("window %d not found", id)
}

func (f *fakeBackend) record(op string, id platform.WindowID, detail string) {
	f.calls = append(f.calls, call{op: op, id: id, detail: detail})
}

func (f *fakeBackend) ops(id platform.WindowID) []string {
	var out []string
	for _, c := range f.calls {
		if c.id != id {
			continue
		}
		if c.detail != "" {
			out = append(out, c.op+":"+c.detail)
		} else {
			out = append(out, c.op)
		}
	}
	return out
}

func (f *fakeBackend) count(op string) int {
	n := 0
	for _, c := range f.calls {
		if c.op == op {
			n++
		}
	}
	return n
}

func (f *fakeBackend) Displays() ([]platform.Display, error) {
	return f.displays, nil
}

func (f *fakeBackend) ActiveWindow() (platform.WindowID, error) {
	if len(f.windows) == 0 {
		return 0, fmt.Errorf("no windows")
	}
	return f.windows[0].win.ID, nil
}

func (f *fakeBackend) StackedWindows() ([]platform.Window, error) {
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
	w, err := f.find(id)
	if err != nil {
		return platform.Display{}, err
	}
	for _, d := range f.displays {
		if d.Name == w.monitor {
			return d, nil
		}
	}
	return platform.Display{}, fmt.Errorf("no monitor for window %d", id)
}

func (f *fakeBackend) SetStyle(id platform.WindowID, style platform.Style) error {
	w, err := f.find(id)
	if err != nil {
		return err
	}
	w.state.Fullscreen = style == platform.StyleFullscreen
	f.record("style", id, fmt.Sprint(int(style)))
	return nil
}

func (f *fakeBackend) Show(id platform.WindowID, cmd platform.ShowCommand) error {
	w, err := f.find(id)
	if err != nil {
		return err
	}
	switch cmd {
	case platform.ShowRestore:
		w.state.Maximized = false
		w.state.Minimized = false
	case platform.ShowMaximize:
		w.state.Maximized = true
		w.state.Minimized = false
	case platform.ShowMinimize:
		w.state.Minimized = true
	}
	f.record("show", id, cmd.String())
	return nil
}

func (f *fakeBackend) MoveResize(id platform.WindowID, r platform.Rect) error {
	w, err := f.find(id)
	if err != nil {
		return err
	}
	w.rect = r
	for _, d := range f.displays {
		cx, cy := r.X+r.Width/2, r.Y+r.Height/2
		if cx >= d.Bounds.X && cx < d.Bounds.X+d.Bounds.Width && cy >= d.Bounds.Y && cy < d.Bounds.Y+d.Bounds.Height {
			w.monitor = d.Name
			break
		}
	}
	f.record("move", id, fmt.Sprintf("%d,%d,%d,%d", r.X, r.Y, r.Width, r.Height))
	return nil
}

func (f *fakeBackend) SetTopmost(id platform.WindowID, topmost bool) error {
	f.record("topmost", id, fmt.Sprint(topmost))
	return nil
}

func (f *fakeBackend) Activate(id platform.WindowID) error {
	f.record("activate", id, "")
	return nil
}

func (f *fakeBackend) Redraw(id platform.WindowID) error {
	f.record("redraw", id, "")
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestManager(b platform.Backend) *Manager {
	return NewManager(b, Options{Logger: quietLogger(), ForegroundCorrection: true})
}
