package hotkeys

import (
	"errors"
	"sort"
	"testing"

	"github.com/1broseidon/winsnap/internal/config"
	"github.com/1broseidon/winsnap/internal/daemon"
	"github.com/1broseidon/winsnap/internal/platform"
)

func TestBindingsFromDefaults(t *testing.T) {
	cfg := config.DefaultConfig()
	got := Bindings(cfg)

	if len(got) != 2*config.SlotCount+1 {
		t.Fatalf("got %d bindings, want %d", len(got), 2*config.SlotCount+1)
	}
	want := map[string]Binding{
		"Mod4-Control-KP_0":   {Keys: "Mod4-Control-KP_0", Action: ActionSave, Slot: 0},
		"Mod4-KP_0":           {Keys: "Mod4-KP_0", Action: ActionRestore, Slot: 0},
		"Mod4-Control-KP_9":   {Keys: "Mod4-Control-KP_9", Action: ActionSave, Slot: 9},
		"Mod4-KP_9":           {Keys: "Mod4-KP_9", Action: ActionRestore, Slot: 9},
		"Mod4-Control-KP_Add": {Keys: "Mod4-Control-KP_Add", Action: ActionToggleWhitelist, Slot: -1},
	}
	seen := make(map[string]bool)
	for _, b := range got {
		if seen[b.Keys] {
			t.Fatalf("duplicate key sequence %q", b.Keys)
		}
		seen[b.Keys] = true
		if w, ok := want[b.Keys]; ok && w != b {
			t.Fatalf("binding %q = %+v, want %+v", b.Keys, b, w)
		}
	}
	for keys := range want {
		if !seen[keys] {
			t.Fatalf("missing binding %q", keys)
		}
	}
}

func TestBindingsWithoutWhitelistKey(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.WhitelistHotkey = ""
	for _, b := range Bindings(cfg) {
		if b.Action == ActionToggleWhitelist {
			t.Fatal("whitelist binding created without a key")
		}
	}
}

func TestIgnoreMasks(t *testing.T) {
	got := ignoreMasks([]uint16{2, 16})
	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
	want := []uint16{0, 2, 16, 18}
	if len(got) != len(want) {
		t.Fatalf("ignoreMasks = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ignoreMasks = %v, want %v", got, want)
		}
	}
}

type recordingLayouts struct {
	saved    []int
	restored []int
	toggles  int
	err      error
}

func (r *recordingLayouts) Save(id int) (daemon.LayoutSummary, error) {
	r.saved = append(r.saved, id)
	return daemon.LayoutSummary{ID: id}, r.err
}

func (r *recordingLayouts) Restore(id int) (bool, error) {
	r.restored = append(r.restored, id)
	return true, r.err
}

func (r *recordingLayouts) ToggleWhitelist() (daemon.WhitelistResult, error) {
	r.toggles++
	return daemon.WhitelistResult{Window: platform.Window{ProcessName: "kitty"}}, r.err
}

func TestCallbacksDispatchToLayouts(t *testing.T) {
	rec := &recordingLayouts{}
	h := &Handler{layouts: rec}

	h.callback(Binding{Action: ActionSave, Slot: 3})()
	h.callback(Binding{Action: ActionRestore, Slot: 5})()
	h.callback(Binding{Action: ActionToggleWhitelist, Slot: -1})()

	if len(rec.saved) != 1 || rec.saved[0] != 3 {
		t.Fatalf("saved = %v", rec.saved)
	}
	if len(rec.restored) != 1 || rec.restored[0] != 5 {
		t.Fatalf("restored = %v", rec.restored)
	}
	if rec.toggles != 1 {
		t.Fatalf("toggles = %d", rec.toggles)
	}

	// Failures are logged, never propagated out of the event loop.
	rec.err = errors.New("boom")
	h.callback(Binding{Action: ActionSave, Slot: 1})()
	h.callback(Binding{Action: ActionRestore, Slot: 1})()
	h.callback(Binding{Action: ActionToggleWhitelist, Slot: -1})()
}

func TestRegisterAllRequiresX11(t *testing.T) {
	h := &Handler{layouts: &recordingLayouts{}}
	if err := h.RegisterAll(config.DefaultConfig()); err == nil {
		t.Fatal("expected error without an X connection")
	}
}
