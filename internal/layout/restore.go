package layout

import (
	"fmt"
	"sort"

	"github.com/1broseidon/winsnap/internal/platform"
)

// RestoreLayout moves every live window that matches a window remembered in
// layout id back to its tile. An unknown id is a no-op. Windows are handled
// in descending captured z-order so the windows that were frontmost at
// capture time are raised last.
func (m *Manager) RestoreLayout(id int) error {
	l, ok := m.layouts[id]
	if !ok {
		m.logger.Debug("restore of unknown layout ignored", "id", id)
		return nil
	}

	live, err := m.backend.StackedWindows()
	if err != nil {
		return fmt.Errorf("failed to enumerate windows: %w", err)
	}
	screens, err := m.liveScreens()
	if err != nil {
		return err
	}

	plan := make([]Assignment, 0, len(live))
	for _, w := range live {
		if !m.included(w, nil) {
			continue
		}
		match, ok := l.Search(QueryFor(w))
		if !ok {
			continue
		}
		m.logger.Debug("window matched",
			"handle", w.ID, "process", w.ProcessName, "level", match.Level, "mode", match.Tile.Mode)
		plan = append(plan, Assignment{Window: w, Match: match})
	}
	sort.SliceStable(plan, func(i, j int) bool {
		return plan[i].Match.Window.ZIndex > plan[j].Match.Window.ZIndex
	})

	restored := 0
	for _, a := range plan {
		if err := m.reconcile(a.Window, a.Match.Tile, screens); err != nil {
			m.logger.Warn("skipping window during restore",
				"handle", a.Window.ID, "process", a.Window.ProcessName, "error", err)
			continue
		}
		restored++
	}

	m.logger.Info("layout restored", "id", id, "matched", len(plan), "restored", restored)
	return nil
}

// liveScreens returns the connected monitors with their current geometry, in
// display order. Target bounds are converted through these, so a monitor that
// moved on the desktop still receives its windows.
func (m *Manager) liveScreens() ([]*Screen, error) {
	displays, err := m.backend.Displays()
	if err != nil {
		return nil, fmt.Errorf("failed to list displays: %w", err)
	}
	out := make([]*Screen, 0, len(displays))
	for _, d := range displays {
		out = append(out, m.screens.Observe(d))
	}
	return out, nil
}

func (m *Manager) targetScreen(name string, live []*Screen) (*Screen, error) {
	for _, s := range live {
		if s.Name == name {
			return s, nil
		}
	}
	if m.opts.MissingScreen == MissingScreenPrimary && len(live) > 0 {
		return live[0], nil
	}
	return nil, fmt.Errorf("screen %q is not connected", name)
}

// reconcile drives one live window to its tile's mode and bounds.
func (m *Manager) reconcile(w platform.Window, tile *Tile, live []*Screen) error {
	screen, err := m.targetScreen(tile.Bounds.ScreenName(), live)
	if err != nil {
		return err
	}
	target := tile.Bounds
	target.Screen = screen

	current, bounds, err := m.observe(w.ID)
	if err != nil {
		return err
	}

	if current == tile.Mode && bounds.Equal(target) {
		if tile.Mode != ModeMinimized {
			m.raise(w.ID)
		}
		if tile.Mode == ModeMaximized {
			if err := m.backend.Show(w.ID, platform.ShowMaximize); err != nil {
				return fmt.Errorf("failed to reassert maximize: %w", err)
			}
		}
		return nil
	}

	if current != tile.Mode {
		done, err := m.transition(w.ID, current, tile.Mode)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}

	// A maximized window ignores geometry requests; drop to normal, place it
	// on the target screen, then maximize again.
	remaximize := false
	if tile.Mode == ModeMaximized {
		if err := m.backend.Show(w.ID, platform.ShowRestore); err != nil {
			return fmt.Errorf("failed to restore before move: %w", err)
		}
		remaximize = true
	}

	space := screen.ToDesktop(target)
	if err := m.backend.MoveResize(w.ID, space.Rect()); err != nil {
		return fmt.Errorf("failed to move window: %w", err)
	}

	if tile.Mode != ModeMinimized {
		m.raise(w.ID)
	}

	if remaximize {
		if err := m.backend.Show(w.ID, platform.ShowMaximize); err != nil {
			return fmt.Errorf("failed to maximize window: %w", err)
		}
	}

	if err := m.backend.Redraw(w.ID); err != nil {
		m.logger.Debug("redraw failed", "handle", w.ID, "error", err)
	}
	return nil
}

// transition issues the mode change from current to target. It reports done
// when no further geometry work applies (fullscreen windows size themselves).
func (m *Manager) transition(id platform.WindowID, current, target Mode) (bool, error) {
	switch target {
	case ModeNormal:
		if current == ModeFullscreen {
			if err := m.backend.SetStyle(id, platform.StyleNormal); err != nil {
				return false, fmt.Errorf("failed to leave fullscreen: %w", err)
			}
		}
		if err := m.backend.Show(id, platform.ShowRestore); err != nil {
			return false, fmt.Errorf("failed to restore window: %w", err)
		}
	case ModeFullscreen:
		if err := m.backend.SetStyle(id, platform.StyleFullscreen); err != nil {
			return false, fmt.Errorf("failed to enter fullscreen: %w", err)
		}
		return true, nil
	case ModeMaximized:
		if err := m.backend.SetStyle(id, platform.StyleNormal); err != nil {
			return false, fmt.Errorf("failed to reset window style: %w", err)
		}
		if err := m.backend.Show(id, platform.ShowMaximize); err != nil {
			return false, fmt.Errorf("failed to maximize window: %w", err)
		}
	case ModeMinimized:
		if err := m.backend.Show(id, platform.ShowMinimize); err != nil {
			return false, fmt.Errorf("failed to minimize window: %w", err)
		}
	default:
		return false, fmt.Errorf("unsupported target mode %v", target)
	}
	return false, nil
}

// raise works around focus-stealing prevention: a topmost toggle lifts the
// window above its peers before the activation request.
func (m *Manager) raise(id platform.WindowID) {
	if !m.opts.ForegroundCorrection {
		return
	}
	m.liftTopmost(id)
	if err := m.backend.Activate(id); err != nil {
		m.logger.Debug("activate failed", "handle", id, "error", err)
	}
}

func (m *Manager) liftTopmost(id platform.WindowID) {
	if err := m.backend.SetTopmost(id, true); err != nil {
		m.logger.Debug("set topmost failed", "handle", id, "error", err)
	}
	if err := m.backend.SetTopmost(id, false); err != nil {
		m.logger.Debug("clear topmost failed", "handle", id, "error", err)
	}
}
