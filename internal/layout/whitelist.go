package layout

import "github.com/1broseidon/winsnap/internal/platform"

type whitelistKey struct {
	handle platform.WindowID
	pid    int
}

// Whitelist narrows the next capture to hand-picked windows. The first
// Toggle switches it on; Reset switches it off once a save has used the
// selection.
type Whitelist struct {
	active  bool
	entries []whitelistKey
}

// Toggle adds the window to the selection, or removes it when already
// selected. It reports whether the window is selected afterwards.
func (w *Whitelist) Toggle(win platform.Window) bool {
	w.active = true
	key := whitelistKey{handle: win.ID, pid: win.PID}
	for i, e := range w.entries {
		if e == key {
			w.entries = append(w.entries[:i], w.entries[i+1:]...)
			return false
		}
	}
	w.entries = append(w.entries, key)
	return true
}

// Active reports whether a selection is in progress.
func (w *Whitelist) Active() bool {
	return w.active
}

// Len returns the number of selected windows.
func (w *Whitelist) Len() int {
	return len(w.entries)
}

// Contains reports whether win would be captured. With no selection in
// progress every window is.
func (w *Whitelist) Contains(win platform.Window) bool {
	if !w.active {
		return true
	}
	key := whitelistKey{handle: win.ID, pid: win.PID}
	for _, e := range w.entries {
		if e == key {
			return true
		}
	}
	return false
}

// Filter returns a filter for the current selection without resetting the
// whitelist. It returns nil when no selection is in progress.
func (w *Whitelist) Filter() WindowFilter {
	if !w.active {
		return nil
	}
	selected := make(map[whitelistKey]bool, len(w.entries))
	for _, e := range w.entries {
		selected[e] = true
	}
	return func(win platform.Window) bool {
		return selected[whitelistKey{handle: win.ID, pid: win.PID}]
	}
}

// Reset drops the selection and switches the whitelist off.
func (w *Whitelist) Reset() {
	w.active = false
	w.entries = nil
}
