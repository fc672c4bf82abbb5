package layout

import "github.com/1broseidon/winsnap/internal/platform"

// Space is a rectangle in absolute desktop coordinates.
type Space struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// SpaceFromRect converts a platform rectangle.
func SpaceFromRect(r platform.Rect) Space {
	return Space{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
}

// Rect converts the space back to a platform rectangle.
func (s Space) Rect() platform.Rect {
	return platform.Rect{X: s.X, Y: s.Y, Width: s.Width, Height: s.Height}
}

// Screen is a named monitor and its absolute desktop geometry. Screen values
// are never mutated once created; two screens are the same monitor iff their
// names match.
type Screen struct {
	Name   string `json:"name"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// ScreenFromDisplay builds a screen from a live display.
func ScreenFromDisplay(d platform.Display) *Screen {
	return &Screen{
		Name:   d.Name,
		X:      d.Bounds.X,
		Y:      d.Bounds.Y,
		Width:  d.Bounds.Width,
		Height: d.Bounds.Height,
	}
}

// ToDesktop converts screen-relative bounds into absolute desktop space.
func (s *Screen) ToDesktop(b Bounds) Space {
	return Space{
		X:      s.X + b.Left,
		Y:      s.Y + b.Top,
		Width:  b.Right - b.Left,
		Height: b.Bottom - b.Top,
	}
}

// FromDesktop converts absolute desktop space into bounds relative to s.
func (s *Screen) FromDesktop(sp Space) Bounds {
	left := sp.X - s.X
	top := sp.Y - s.Y
	return Bounds{
		Screen: s,
		Left:   left,
		Top:    top,
		Right:  left + sp.Width,
		Bottom: top + sp.Height,
	}
}

func (s *Screen) sameGeometry(o *Screen) bool {
	return s.X == o.X && s.Y == o.Y && s.Width == o.Width && s.Height == o.Height
}

// Bounds is a rectangle expressed as offsets from a screen's origin.
type Bounds struct {
	Screen *Screen `json:"screen"`
	Left   int     `json:"left"`
	Top    int     `json:"top"`
	Right  int     `json:"right"`
	Bottom int     `json:"bottom"`
}

// ScreenName returns the owning screen's name, or "" when unset.
func (b Bounds) ScreenName() string {
	if b.Screen == nil {
		return ""
	}
	return b.Screen.Name
}

// Equal reports whether both bounds sit on the same named screen with
// identical offsets. Screen identity is by name, never by pointer.
func (b Bounds) Equal(o Bounds) bool {
	return b.ScreenName() == o.ScreenName() &&
		b.Left == o.Left &&
		b.Top == o.Top &&
		b.Right == o.Right &&
		b.Bottom == o.Bottom
}

// ScreenRegistry maps monitor names to the most recently observed Screen.
// It belongs to a single Manager.
type ScreenRegistry struct {
	screens []*Screen
}

// NewScreenRegistry returns an empty registry.
func NewScreenRegistry() *ScreenRegistry {
	return &ScreenRegistry{}
}

// Lookup finds a screen by name.
func (r *ScreenRegistry) Lookup(name string) (*Screen, bool) {
	for _, s := range r.screens {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}

// Observe returns the registered screen for a live display. A monitor whose
// geometry changed gets a fresh Screen; bounds captured earlier keep the old
// instance.
func (r *ScreenRegistry) Observe(d platform.Display) *Screen {
	seen := ScreenFromDisplay(d)
	for i, s := range r.screens {
		if s.Name != seen.Name {
			continue
		}
		if s.sameGeometry(seen) {
			return s
		}
		r.screens[i] = seen
		return seen
	}
	r.screens = append(r.screens, seen)
	return seen
}

// Adopt links a screen decoded from storage to the registry: an already
// registered screen with the same name wins, otherwise s is registered.
func (r *ScreenRegistry) Adopt(s *Screen) *Screen {
	if s == nil {
		return nil
	}
	if existing, ok := r.Lookup(s.Name); ok {
		return existing
	}
	r.screens = append(r.screens, s)
	return s
}

// Screens returns the registered screens in registration order.
func (r *ScreenRegistry) Screens() []*Screen {
	out := make([]*Screen, len(r.screens))
	copy(out, r.screens)
	return out
}
