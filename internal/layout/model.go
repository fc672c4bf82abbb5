package layout

import (
	"fmt"
	"strings"

	"github.com/1broseidon/winsnap/internal/platform"
)

// Mode is the display state of a window.
type Mode int

const (
	ModeNormal Mode = iota
	ModeFullscreen
	ModeMaximized
	ModeMinimized
)

var modeNames = [...]string{
	ModeNormal:     "normal",
	ModeFullscreen: "fullscreen",
	ModeMaximized:  "maximized",
	ModeMinimized:  "minimized",
}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("mode(%d)", int(m))
	}
	return modeNames[m]
}

// ParseMode parses a mode name as produced by String.
func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range modeNames {
		if name == s {
			return Mode(i), nil
		}
	}
	return ModeNormal, fmt.Errorf("unknown window mode %q", s)
}

func (m Mode) MarshalText() ([]byte, error) {
	if m < 0 || int(m) >= len(modeNames) {
		return nil, fmt.Errorf("invalid window mode %d", int(m))
	}
	return []byte(modeNames[m]), nil
}

func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ModeOf derives a mode from live state flags. Minimized and fullscreen take
// precedence over maximized.
func ModeOf(state platform.WindowState) Mode {
	switch {
	case state.Minimized:
		return ModeMinimized
	case state.Fullscreen:
		return ModeFullscreen
	case state.Maximized:
		return ModeMaximized
	default:
		return ModeNormal
	}
}

// Window is the remembered identity of an application window.
type Window struct {
	Title       string            `json:"title"`
	ProcessName string            `json:"process_name"`
	ProcessID   int               `json:"process_id"`
	Handle      platform.WindowID `json:"handle"`
	ZIndex      int               `json:"z_index"`
}

// Tile is a (mode, bounds) slot and the windows last seen in it.
type Tile struct {
	Mode    Mode      `json:"mode"`
	Bounds  Bounds    `json:"bounds"`
	Windows []*Window `json:"windows"`
}

// Layout is a persisted set of tiles keyed by id.
type Layout struct {
	ID    int     `json:"id"`
	Tiles []*Tile `json:"tiles"`
}

// NewLayout returns an empty layout.
func NewLayout(id int) *Layout {
	return &Layout{ID: id}
}

// tileFor returns the tile holding (mode, bounds), creating it if needed.
func (l *Layout) tileFor(mode Mode, bounds Bounds) *Tile {
	for _, t := range l.Tiles {
		if t.Mode == mode && t.Bounds.Equal(bounds) {
			return t
		}
	}
	t := &Tile{Mode: mode, Bounds: bounds}
	l.Tiles = append(l.Tiles, t)
	return t
}

// WindowCount returns the number of remembered windows across all tiles.
func (l *Layout) WindowCount() int {
	n := 0
	for _, t := range l.Tiles {
		n += len(t.Windows)
	}
	return n
}

// Clone returns a deep copy. Screens are shared since they are immutable.
func (l *Layout) Clone() *Layout {
	if l == nil {
		return nil
	}
	out := &Layout{ID: l.ID, Tiles: make([]*Tile, 0, len(l.Tiles))}
	for _, t := range l.Tiles {
		tc := &Tile{Mode: t.Mode, Bounds: t.Bounds, Windows: make([]*Window, 0, len(t.Windows))}
		for _, w := range t.Windows {
			wc := *w
			tc.Windows = append(tc.Windows, &wc)
		}
		out.Tiles = append(out.Tiles, tc)
	}
	return out
}
