package layout

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/1broseidon/winsnap/internal/platform"
)

// MissingScreenPolicy decides what restore does with a tile whose monitor is
// not connected.
type MissingScreenPolicy string

const (
	// MissingScreenSkip leaves windows of such tiles untouched.
	MissingScreenSkip MissingScreenPolicy = "skip"
	// MissingScreenPrimary places the tile's offsets on the first live display.
	MissingScreenPrimary MissingScreenPolicy = "primary"
)

// WindowFilter reports whether a live window takes part in capture or restore.
type WindowFilter func(platform.Window) bool

// Options configures a Manager.
type Options struct {
	Logger *slog.Logger
	// ForegroundCorrection enables the topmost toggle and activation after a
	// window is placed.
	ForegroundCorrection bool
	MissingScreen        MissingScreenPolicy
	// Filter excludes live windows from both capture and restore.
	Filter WindowFilter
}

// Manager captures and restores layouts against a window-system backend.
// It is not safe for concurrent use; callers serialize SaveLayout and
// RestoreLayout.
type Manager struct {
	backend platform.Backend
	screens *ScreenRegistry
	layouts map[int]*Layout
	logger  *slog.Logger
	opts    Options
}

// NewManager creates a manager with its own screen registry and layout set.
func NewManager(backend platform.Backend, opts Options) *Manager {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.MissingScreen == "" {
		opts.MissingScreen = MissingScreenSkip
	}
	return &Manager{
		backend: backend,
		screens: NewScreenRegistry(),
		layouts: make(map[int]*Layout),
		logger:  logger,
		opts:    opts,
	}
}

// SetOptions replaces the manager options, keeping the current logger when
// none is given.
func (m *Manager) SetOptions(opts Options) {
	if opts.Logger == nil {
		opts.Logger = m.logger
	}
	if opts.MissingScreen == "" {
		opts.MissingScreen = MissingScreenSkip
	}
	m.logger = opts.Logger
	m.opts = opts
}

// Screens exposes the manager's screen registry.
func (m *Manager) Screens() *ScreenRegistry {
	return m.screens
}

// Layout returns the stored layout for id.
func (m *Manager) Layout(id int) (*Layout, bool) {
	l, ok := m.layouts[id]
	return l, ok
}

// IDs returns the ids of all known layouts in ascending order.
func (m *Manager) IDs() []int {
	ids := make([]int, 0, len(m.layouts))
	for id := range m.layouts {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Put installs a layout loaded from storage, re-linking its screens to the
// registry by name. An existing layout with the same id is replaced.
func (m *Manager) Put(l *Layout) {
	if l == nil {
		return
	}
	for _, t := range l.Tiles {
		t.Bounds.Screen = m.screens.Adopt(t.Bounds.Screen)
	}
	m.layouts[l.ID] = l
}

// Remove forgets a layout. It reports whether the id was known.
func (m *Manager) Remove(id int) bool {
	if _, ok := m.layouts[id]; !ok {
		return false
	}
	delete(m.layouts, id)
	return true
}

func (m *Manager) included(w platform.Window, extra WindowFilter) bool {
	if m.opts.Filter != nil && !m.opts.Filter(w) {
		return false
	}
	if extra != nil && !extra(w) {
		return false
	}
	return true
}

// SaveLayout captures every eligible live window into layout id, replacing
// whatever the layout held before.
func (m *Manager) SaveLayout(id int) error {
	return m.SaveLayoutMatching(id, nil)
}

// SaveLayoutMatching is SaveLayout restricted to live windows accepted by
// keep. A nil keep accepts everything.
func (m *Manager) SaveLayoutMatching(id int, keep WindowFilter) error {
	live, err := m.backend.StackedWindows()
	if err != nil {
		return fmt.Errorf("failed to enumerate windows: %w", err)
	}

	l, ok := m.layouts[id]
	if !ok {
		l = NewLayout(id)
		m.layouts[id] = l
	}
	l.Tiles = nil

	seen := make(map[platform.WindowID]bool, len(live))
	for zIndex, w := range live {
		if seen[w.ID] {
			m.logger.Warn("duplicate window in enumeration",
				"handle", w.ID, "title", w.Title, "process", w.ProcessName)
		}
		seen[w.ID] = true

		if !m.included(w, keep) {
			continue
		}

		mode, bounds, err := m.observe(w.ID)
		if err != nil {
			m.logger.Warn("skipping window during capture",
				"handle", w.ID, "process", w.ProcessName, "error", err)
			continue
		}

		tile := l.tileFor(mode, bounds)
		tile.Windows = append(tile.Windows, &Window{
			Title:       w.Title,
			ProcessName: w.ProcessName,
			ProcessID:   w.PID,
			Handle:      w.ID,
			ZIndex:      zIndex,
		})
	}

	m.logger.Info("layout saved", "id", id, "tiles", len(l.Tiles), "windows", l.WindowCount())
	return nil
}

// observe reads a live window's mode and its bounds on its current monitor.
func (m *Manager) observe(id platform.WindowID) (Mode, Bounds, error) {
	state, err := m.backend.WindowState(id)
	if err != nil {
		return ModeNormal, Bounds{}, fmt.Errorf("failed to read window state: %w", err)
	}
	rect, err := m.backend.WindowRect(id)
	if err != nil {
		return ModeNormal, Bounds{}, fmt.Errorf("failed to read window geometry: %w", err)
	}
	display, err := m.backend.MonitorForWindow(id)
	if err != nil {
		return ModeNormal, Bounds{}, fmt.Errorf("failed to resolve monitor: %w", err)
	}
	screen := m.screens.Observe(display)
	return ModeOf(state), screen.FromDesktop(SpaceFromRect(rect)), nil
}

// Preview reports, for every live window, the tile it would be restored to
// without changing the layout. Matching runs against a scratch copy with the
// same refresh RestoreLayout applies, so earlier matches steer later ones
// exactly as they would during a restore.
func (m *Manager) Preview(id int) ([]Assignment, error) {
	l, ok := m.layouts[id]
	if !ok {
		return nil, nil
	}
	live, err := m.backend.StackedWindows()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate windows: %w", err)
	}

	scratch := l.Clone()
	type pos struct{ tile, window int }
	index := make(map[*Window]pos, l.WindowCount())
	for ti, t := range scratch.Tiles {
		for wi, w := range t.Windows {
			index[w] = pos{ti, wi}
		}
	}

	var out []Assignment
	for _, w := range live {
		if !m.included(w, nil) {
			continue
		}
		match, ok := scratch.Search(QueryFor(w))
		if !ok {
			continue
		}
		p := index[match.Window]
		tile := l.Tiles[p.tile]
		out = append(out, Assignment{
			Window: w,
			Match:  Match{Level: match.Level, Tile: tile, Window: tile.Windows[p.window]},
		})
	}
	return out, nil
}

// Assignment pairs a live window with the remembered window it matched.
type Assignment struct {
	Window platform.Window
	Match  Match
}
