package hotkeys

import (
	"fmt"
	"log"
	"sync"

	"github.com/1broseidon/winsnap/internal/config"
	"github.com/1broseidon/winsnap/internal/daemon"
	"github.com/1broseidon/winsnap/internal/platform"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// Layouts is the set of operations reachable from the keyboard.
type Layouts interface {
	Save(id int) (daemon.LayoutSummary, error)
	Restore(id int) (bool, error)
	ToggleWhitelist() (daemon.WhitelistResult, error)
}

// Action is what a binding does when pressed.
type Action int

const (
	ActionSave Action = iota
	ActionRestore
	ActionToggleWhitelist
)

func (a Action) String() string {
	switch a {
	case ActionSave:
		return "save"
	case ActionRestore:
		return "restore"
	case ActionToggleWhitelist:
		return "whitelist"
	default:
		return "unknown"
	}
}

// Binding maps a key sequence to an action. Slot is -1 for actions that are
// not tied to a layout slot.
type Binding struct {
	Keys   string
	Action Action
	Slot   int
}

// Bindings expands the configured prefixes and slot keys into the full set
// of key sequences to grab.
func Bindings(cfg *config.Config) []Binding {
	out := make([]Binding, 0, 2*len(cfg.SlotKeys)+1)
	for slot := range cfg.SlotKeys {
		out = append(out,
			Binding{Keys: cfg.SlotHotkey(cfg.SaveHotkey, slot), Action: ActionSave, Slot: slot},
			Binding{Keys: cfg.SlotHotkey(cfg.RestoreHotkey, slot), Action: ActionRestore, Slot: slot},
		)
	}
	if cfg.WhitelistHotkey != "" {
		out = append(out, Binding{Keys: cfg.WhitelistHotkey, Action: ActionToggleWhitelist, Slot: -1})
	}
	return out
}

// x11Accessor is an optional interface for backends that expose X11 internals.
type x11Accessor interface {
	XUtil() *xgbutil.XUtil
	RootWindow() xproto.Window
}

// Handler manages global keyboard shortcuts
type Handler struct {
	xu      *xgbutil.XUtil
	root    xproto.Window
	layouts Layouts
}

var ignoreModsOnce sync.Once

// NewHandler creates a new hotkey handler.
func NewHandler(backend platform.Backend, layouts Layouts) *Handler {
	var xu *xgbutil.XUtil
	var root xproto.Window
	if accessor, ok := backend.(x11Accessor); ok {
		xu = accessor.XUtil()
		root = accessor.RootWindow()
	}

	ignoreModsOnce.Do(func() {
		configureIgnoreMods(xu)
	})

	return &Handler{
		xu:      xu,
		root:    root,
		layouts: layouts,
	}
}

// RegisterAll grabs every binding derived from cfg. A binding that cannot be
// grabbed is logged and skipped; the error reports how many failed.
func (h *Handler) RegisterAll(cfg *config.Config) error {
	if h.xu == nil {
		return fmt.Errorf("hotkeys require an X11 backend")
	}
	failed := 0
	for _, b := range Bindings(cfg) {
		if err := h.RegisterFunc(b.Keys, h.callback(b)); err != nil {
			log.Printf("Failed to register %s hotkey %s: %v", b.Action, b.Keys, err)
			failed++
			continue
		}
		if b.Slot >= 0 {
			log.Printf("Registered %s hotkey for slot %d: %s", b.Action, b.Slot, b.Keys)
		} else {
			log.Printf("Registered %s hotkey: %s", b.Action, b.Keys)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d hotkeys could not be registered", failed)
	}
	return nil
}

// Unregister releases every grab made on the root window.
func (h *Handler) Unregister() {
	if h.xu == nil {
		return
	}
	keybind.Detach(h.xu, h.root)
}

func (h *Handler) callback(b Binding) func() {
	switch b.Action {
	case ActionSave:
		return func() {
			sum, err := h.layouts.Save(b.Slot)
			if err != nil {
				log.Printf("Save layout %d failed: %v", b.Slot, err)
				return
			}
			log.Printf("Saved layout %d (%d windows)", b.Slot, sum.Windows)
		}
	case ActionRestore:
		return func() {
			found, err := h.layouts.Restore(b.Slot)
			switch {
			case err != nil:
				log.Printf("Restore layout %d failed: %v", b.Slot, err)
			case !found:
				log.Printf("Layout %d is empty", b.Slot)
			}
		}
	default:
		return func() {
			res, err := h.layouts.ToggleWhitelist()
			if err != nil {
				log.Printf("Whitelist toggle failed: %v", err)
				return
			}
			log.Printf("Whitelist: %s selected=%v (%d windows)", res.Window.ProcessName, res.Selected, res.Count)
		}
	}
}

// RegisterFunc registers an arbitrary hotkey callback.
func (h *Handler) RegisterFunc(keySequence string, callback func()) error {
	return keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		callback()
	}).Connect(h.xu, h.root, keySequence, true)
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	if xu == nil {
		return
	}
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	xevent.IgnoreMods = ignoreMasks(base)
}

// ignoreMasks returns every combination of the given lock masks, including
// the empty one.
func ignoreMasks(base []uint16) []uint16 {
	out := make([]uint16, 0, 1<<len(base))
	for subset := 0; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		out = append(out, mask)
	}
	return out
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
