package layout

import (
	"testing"

	"github.com/1broseidon/winsnap/internal/platform"
)

func TestWhitelistToggle(t *testing.T) {
	var wl Whitelist
	a := platform.Window{ID: 1, PID: 10}
	b := platform.Window{ID: 2, PID: 20}

	if wl.Active() || !wl.Contains(b) {
		t.Fatal("inactive whitelist should accept every window")
	}
	if !wl.Toggle(a) {
		t.Fatal("first toggle should select the window")
	}
	if !wl.Active() || wl.Len() != 1 {
		t.Fatalf("Active() = %v, Len() = %d", wl.Active(), wl.Len())
	}
	if wl.Contains(b) {
		t.Fatal("unselected window accepted while active")
	}
	if wl.Toggle(a) {
		t.Fatal("second toggle should deselect the window")
	}
	if !wl.Active() || wl.Len() != 0 {
		t.Fatal("whitelist should stay active with an empty selection")
	}
}

func TestWhitelistKeyIncludesPID(t *testing.T) {
	var wl Whitelist
	wl.Toggle(platform.Window{ID: 1, PID: 10})
	if wl.Contains(platform.Window{ID: 1, PID: 11}) {
		t.Fatal("reused handle with a different pid accepted")
	}
}

func TestWhitelistFilterAndReset(t *testing.T) {
	var wl Whitelist
	if wl.Filter() != nil {
		t.Fatal("Filter() on inactive whitelist returned a filter")
	}

	a := platform.Window{ID: 1, PID: 10}
	wl.Toggle(a)
	keep := wl.Filter()
	if keep == nil {
		t.Fatal("Filter() returned nil for an active whitelist")
	}
	if !wl.Active() || wl.Len() != 1 {
		t.Fatal("Filter() changed the selection")
	}
	wl.Reset()
	if wl.Active() || wl.Len() != 0 {
		t.Fatal("Reset() did not clear the whitelist")
	}
	if !keep(a) || keep(platform.Window{ID: 2, PID: 20}) {
		t.Fatal("filter does not reflect the selection taken before Reset")
	}

	b := newFakeBackend(display(0, "A", 0, 0, 1920, 1080))
	b.add(a, "A", rect(0, 0, 100, 100), normal)
	b.add(platform.Window{ID: 2, PID: 20}, "A", rect(0, 0, 100, 100), normal)
	m := newTestManager(b)
	if err := m.SaveLayoutMatching(0, keep); err != nil {
		t.Fatal(err)
	}
	l, _ := m.Layout(0)
	if l.WindowCount() != 1 {
		t.Fatalf("windows = %d, want only the selected one", l.WindowCount())
	}
}
