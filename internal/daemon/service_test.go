package daemon

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/1broseidon/winsnap/internal/config"
	"github.com/1broseidon/winsnap/internal/platform"
	"github.com/1broseidon/winsnap/internal/storage"
)

func newTestService(t *testing.T, b *fakeBackend, cfg *config.Config) (*Service, *storage.FileStore) {
	t.Helper()
	store := storage.NewFileStore(t.TempDir())
	return NewService(b, store, cfg, quietLogger()), store
}

func TestServiceSavePersists(t *testing.T) {
	b := newFakeBackend()
	b.add(1, 100, "kitty", "kitty", "shell", platform.Rect{X: 10, Y: 20, Width: 800, Height: 600})
	b.add(2, 200, "firefox", "firefox", "news", platform.Rect{X: 900, Y: 20, Width: 800, Height: 600})
	svc, store := newTestService(t, b, nil)

	sum, err := svc.Save(3)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if sum.ID != 3 || sum.Tiles != 2 || sum.Windows != 2 {
		t.Fatalf("summary = %+v", sum)
	}
	if len(sum.Screens) != 1 || sum.Screens[0] != "DP-1" {
		t.Fatalf("screens = %v", sum.Screens)
	}
	if _, err := os.Stat(filepath.Join(store.Dir(), "3.json")); err != nil {
		t.Fatalf("layout file not written: %v", err)
	}

	list := svc.List()
	if len(list) != 1 || list[0].ID != 3 {
		t.Fatalf("List() = %+v", list)
	}
}

func TestServiceSaveRejectsNegativeID(t *testing.T) {
	svc, _ := newTestService(t, newFakeBackend(), nil)
	if _, err := svc.Save(-1); err == nil {
		t.Fatal("expected error for negative id")
	}
}

func TestServiceRestore(t *testing.T) {
	b := newFakeBackend()
	home := platform.Rect{X: 10, Y: 20, Width: 800, Height: 600}
	w := b.add(1, 100, "kitty", "kitty", "shell", home)
	svc, _ := newTestService(t, b, nil)

	if _, err := svc.Save(0); err != nil {
		t.Fatalf("Save: %v", err)
	}
	w.rect = platform.Rect{X: 500, Y: 300, Width: 400, Height: 300}

	found, err := svc.Restore(0)
	if err != nil || !found {
		t.Fatalf("Restore = %v, %v", found, err)
	}
	if w.rect != home {
		t.Fatalf("rect = %+v, want %+v", w.rect, home)
	}

	found, err = svc.Restore(7)
	if err != nil || found {
		t.Fatalf("Restore(unknown) = %v, %v, want false, nil", found, err)
	}
}

func TestServiceLoadAllAcrossRestarts(t *testing.T) {
	b := newFakeBackend()
	home := platform.Rect{X: 0, Y: 0, Width: 960, Height: 1080}
	w := b.add(1, 100, "kitty", "kitty", "shell", home)
	store := storage.NewFileStore(t.TempDir())

	first := NewService(b, store, nil, quietLogger())
	if _, err := first.Save(4); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// The window comes back under a new process after a restart.
	w.win.ID = 9
	w.win.PID = 900
	w.rect = platform.Rect{X: 960, Y: 0, Width: 960, Height: 1080}

	second := NewService(b, store, nil, quietLogger())
	n, err := second.LoadAll()
	if err != nil || n != 1 {
		t.Fatalf("LoadAll = %d, %v", n, err)
	}
	if found, err := second.Restore(4); err != nil || !found {
		t.Fatalf("Restore = %v, %v", found, err)
	}
	if w.rect != home {
		t.Fatalf("rect = %+v, want %+v", w.rect, home)
	}

	l, err := second.Layout(4)
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	got := l.Tiles[0].Windows[0]
	if got.Handle != 9 || got.ProcessID != 900 {
		t.Fatalf("remembered window not refreshed: %+v", got)
	}
	stored, err := store.Read(4)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if stored.Tiles[0].Windows[0].Handle != 9 {
		t.Fatal("refreshed layout was not persisted")
	}
}

func TestServiceLoadAllSkipsCorruptLayouts(t *testing.T) {
	b := newFakeBackend()
	b.add(1, 100, "kitty", "kitty", "shell", platform.Rect{Width: 100, Height: 100})
	svc, store := newTestService(t, b, nil)
	if _, err := svc.Save(1); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := os.WriteFile(filepath.Join(store.Dir(), "2.json"), []byte("{"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	fresh := NewService(b, store, nil, quietLogger())
	n, err := fresh.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if n != 1 {
		t.Fatalf("loaded %d layouts, want 1", n)
	}
}

func TestServiceDelete(t *testing.T) {
	b := newFakeBackend()
	b.add(1, 100, "kitty", "kitty", "shell", platform.Rect{Width: 100, Height: 100})
	svc, store := newTestService(t, b, nil)
	if _, err := svc.Save(5); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := svc.Delete(5); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Read(5); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Read after delete = %v, want ErrNotFound", err)
	}
	if _, err := svc.Layout(5); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Layout after delete = %v, want ErrNotFound", err)
	}
	if err := svc.Delete(5); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("second Delete = %v, want ErrNotFound", err)
	}
}

func TestServiceWhitelistRestrictsSave(t *testing.T) {
	b := newFakeBackend()
	b.add(1, 100, "kitty", "kitty", "shell", platform.Rect{Width: 100, Height: 100})
	b.add(2, 200, "firefox", "firefox", "news", platform.Rect{X: 200, Width: 100, Height: 100})
	svc, _ := newTestService(t, b, nil)

	b.active = 2
	res, err := svc.ToggleWhitelist()
	if err != nil {
		t.Fatalf("ToggleWhitelist: %v", err)
	}
	if !res.Selected || res.Count != 1 || res.Window.ProcessName != "firefox" {
		t.Fatalf("toggle result = %+v", res)
	}
	if st := svc.Status(); !st.WhitelistActive || st.WhitelistCount != 1 {
		t.Fatalf("status = %+v", st)
	}

	sum, err := svc.Save(0)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if sum.Windows != 1 {
		t.Fatalf("saved %d windows, want 1", sum.Windows)
	}
	if svc.Status().WhitelistActive {
		t.Fatal("whitelist should be consumed by save")
	}

	// Without a selection every window is captured again.
	sum, err = svc.Save(0)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if sum.Windows != 2 {
		t.Fatalf("saved %d windows, want 2", sum.Windows)
	}
}

func TestServiceWhitelistSurvivesFailedSave(t *testing.T) {
	b := newFakeBackend()
	b.add(1, 100, "kitty", "kitty", "shell", platform.Rect{Width: 100, Height: 100})
	b.add(2, 200, "firefox", "firefox", "news", platform.Rect{X: 200, Width: 100, Height: 100})
	svc, _ := newTestService(t, b, nil)

	b.active = 2
	if _, err := svc.ToggleWhitelist(); err != nil {
		t.Fatalf("ToggleWhitelist: %v", err)
	}

	b.stackErr = errors.New("connection lost")
	if _, err := svc.Save(0); err == nil {
		t.Fatal("expected error when windows cannot be enumerated")
	}
	if st := svc.Status(); !st.WhitelistActive || st.WhitelistCount != 1 {
		t.Fatalf("selection lost after failed save: %+v", st)
	}

	b.stackErr = nil
	sum, err := svc.Save(0)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if sum.Windows != 1 {
		t.Fatalf("saved %d windows, want the 1 selected", sum.Windows)
	}
	if svc.Status().WhitelistActive {
		t.Fatal("whitelist should be consumed by a successful save")
	}
}

func TestServiceWhitelistRejectsIneligibleWindow(t *testing.T) {
	b := newFakeBackend()
	b.add(1, 100, "kitty", "kitty", "shell", platform.Rect{Width: 100, Height: 100})
	svc, _ := newTestService(t, b, nil)

	b.active = 42
	if _, err := svc.ToggleWhitelist(); err == nil {
		t.Fatal("expected error for window outside the stacking list")
	}
}

func TestServiceIgnoreClasses(t *testing.T) {
	b := newFakeBackend()
	b.add(1, 100, "polybar", "Polybar", "bar", platform.Rect{Width: 1920, Height: 30})
	b.add(2, 200, "kitty", "kitty", "shell", platform.Rect{Y: 30, Width: 800, Height: 600})
	cfg := config.DefaultConfig()
	cfg.IgnoreClasses = []string{"polybar"}
	svc, _ := newTestService(t, b, cfg)

	sum, err := svc.Save(0)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if sum.Windows != 1 {
		t.Fatalf("saved %d windows, want 1", sum.Windows)
	}

	cfg2 := config.DefaultConfig()
	svc.UpdateConfig(cfg2)
	sum, err = svc.Save(0)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if sum.Windows != 2 {
		t.Fatalf("after reload saved %d windows, want 2", sum.Windows)
	}
	if svc.Config() != cfg2 {
		t.Fatal("Config() did not return the reloaded config")
	}
}

func TestServicePreview(t *testing.T) {
	b := newFakeBackend()
	b.add(1, 100, "kitty", "kitty", "shell", platform.Rect{Width: 100, Height: 100})
	svc, _ := newTestService(t, b, nil)
	if _, err := svc.Save(2); err != nil {
		t.Fatalf("Save: %v", err)
	}
	b.add(2, 300, "gimp", "Gimp", "image", platform.Rect{Width: 100, Height: 100})

	plan, err := svc.Preview(2)
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if len(plan) != 1 || plan[0].Window.ID != 1 {
		t.Fatalf("Preview = %+v", plan)
	}
	if _, err := svc.Preview(8); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Preview(unknown) = %v, want ErrNotFound", err)
	}
	if b.moves != 0 {
		t.Fatal("preview moved windows")
	}
}

func TestServiceFindWindows(t *testing.T) {
	b := newFakeBackend()
	b.add(1, 100, "kitty", "kitty", "vim notes", platform.Rect{Width: 100, Height: 100})
	b.add(2, 200, "firefox", "firefox", "Mozilla Firefox", platform.Rect{Width: 100, Height: 100})
	b.add(3, 300, "code", "Code", "notes.md - Code", platform.Rect{Width: 100, Height: 100})
	svc, _ := newTestService(t, b, nil)

	found, err := svc.FindWindows("notes", 0)
	if err != nil {
		t.Fatalf("FindWindows: %v", err)
	}
	if len(found) != 2 || found[0].Window.ID != 3 || found[1].Window.ID != 1 {
		t.Fatalf("FindWindows(notes) = %+v", found)
	}

	found, err = svc.FindWindows("notes", 1)
	if err != nil {
		t.Fatalf("FindWindows: %v", err)
	}
	if len(found) != 1 || found[0].Window.ID != 3 {
		t.Fatalf("FindWindows(notes, 1) = %+v", found)
	}
}

func TestServiceFocus(t *testing.T) {
	b := newFakeBackend()
	b.add(1, 100, "kitty", "kitty", "shell", platform.Rect{Width: 100, Height: 100})
	fox := b.add(2, 200, "firefox", "firefox", "news", platform.Rect{Width: 100, Height: 100})
	fox.state.Minimized = true
	svc, _ := newTestService(t, b, nil)

	best, ok, err := svc.Focus("fire")
	if err != nil || !ok {
		t.Fatalf("Focus(fire) = %v, %v", ok, err)
	}
	if best.Window.ID != 2 {
		t.Fatalf("focused %d, want 2", best.Window.ID)
	}
	if fox.state.Minimized {
		t.Fatal("focused window is still minimized")
	}
	if len(b.activated) != 1 || b.activated[0] != 2 {
		t.Fatalf("activated = %v", b.activated)
	}

	_, ok, err = svc.Focus("emacs")
	if err != nil || ok {
		t.Fatalf("Focus(emacs) = %v, %v; want no match", ok, err)
	}
	if len(b.activated) != 1 {
		t.Fatal("activation without a match")
	}
}
