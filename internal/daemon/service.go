package daemon

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/1broseidon/winsnap/internal/config"
	"github.com/1broseidon/winsnap/internal/layout"
	"github.com/1broseidon/winsnap/internal/platform"
	"github.com/1broseidon/winsnap/internal/storage"
)

// LayoutSummary describes a stored layout without its windows.
type LayoutSummary struct {
	ID      int
	Tiles   int
	Windows int
	Screens []string
}

// WhitelistResult reports the outcome of a whitelist toggle.
type WhitelistResult struct {
	Window   platform.Window
	Selected bool
	Count    int
}

// Status is a snapshot of daemon state.
type Status struct {
	Layouts         int
	WhitelistActive bool
	WhitelistCount  int
	StorageBackend  string
	Uptime          time.Duration
}

// Service owns the layout manager and its storage. All methods are safe for
// concurrent use; hotkeys, IPC and the display watcher share one Service.
type Service struct {
	mu        sync.Mutex
	backend   platform.Backend
	manager   *layout.Manager
	store     storage.Store
	whitelist layout.Whitelist
	cfg       *config.Config
	logger    *slog.Logger
	started   time.Time
}

// NewService creates a service around an open store.
func NewService(backend platform.Backend, store storage.Store, cfg *config.Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Service{
		backend: backend,
		manager: layout.NewManager(backend, managerOptions(cfg, logger)),
		store:   store,
		cfg:     cfg,
		logger:  logger,
		started: time.Now(),
	}
}

func managerOptions(cfg *config.Config, logger *slog.Logger) layout.Options {
	opts := layout.Options{
		Logger:               logger,
		ForegroundCorrection: cfg.ForegroundCorrection,
		MissingScreen:        layout.MissingScreenPolicy(cfg.MissingScreen),
	}
	if len(cfg.IgnoreClasses) > 0 {
		opts.Filter = func(w platform.Window) bool {
			return !cfg.Ignored(w.AppID)
		}
	}
	return opts
}

// LoadAll installs every stored layout. Unreadable layouts are logged and
// skipped. It returns the number of layouts loaded.
func (s *Service) LoadAll() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.store.List()
	if err != nil {
		return 0, fmt.Errorf("failed to list stored layouts: %w", err)
	}
	loaded := 0
	for _, id := range ids {
		l, err := s.store.Read(id)
		if err != nil {
			s.logger.Warn("skipping unreadable layout", "id", id, "error", err)
			continue
		}
		s.manager.Put(l)
		loaded++
	}
	s.logger.Info("layouts loaded", "count", loaded)
	return loaded, nil
}

// Save captures layout id and persists it. A whitelist selection in progress
// restricts the capture and is consumed once the capture succeeds.
func (s *Service) Save(id int) (LayoutSummary, error) {
	if id < 0 {
		return LayoutSummary{}, fmt.Errorf("invalid layout id %d", id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.manager.SaveLayoutMatching(id, s.whitelist.Filter()); err != nil {
		return LayoutSummary{}, fmt.Errorf("failed to save layout %d: %w", id, err)
	}
	s.whitelist.Reset()
	l, _ := s.manager.Layout(id)
	if err := s.store.Write(l); err != nil {
		return LayoutSummary{}, fmt.Errorf("failed to persist layout %d: %w", id, err)
	}
	return summarize(l), nil
}

// Restore applies layout id. It reports false when the id is unknown, which
// is not an error.
func (s *Service) Restore(id int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.manager.Layout(id)
	if !ok {
		return false, nil
	}
	if err := s.manager.RestoreLayout(id); err != nil {
		return true, fmt.Errorf("failed to restore layout %d: %w", id, err)
	}
	// Matching refreshes remembered handles and titles; keep storage in step.
	if err := s.store.Write(l); err != nil {
		s.logger.Warn("failed to persist refreshed layout", "id", id, "error", err)
	}
	return true, nil
}

// Layout returns a copy of layout id.
func (s *Service) Layout(id int) (*layout.Layout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.manager.Layout(id)
	if !ok {
		return nil, storage.ErrNotFound
	}
	return l.Clone(), nil
}

// Preview reports which remembered window each live window would match.
func (s *Service) Preview(id int) ([]layout.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.manager.Layout(id); !ok {
		return nil, storage.ErrNotFound
	}
	return s.manager.Preview(id)
}

// List summarizes all known layouts in id order.
func (s *Service) List() []LayoutSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := s.manager.IDs()
	out := make([]LayoutSummary, 0, len(ids))
	for _, id := range ids {
		l, _ := s.manager.Layout(id)
		out = append(out, summarize(l))
	}
	return out
}

// Delete forgets layout id and removes it from storage.
func (s *Service) Delete(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	known := s.manager.Remove(id)
	if err := s.store.Delete(id); err != nil {
		if errors.Is(err, storage.ErrNotFound) && known {
			return nil
		}
		return err
	}
	return nil
}

// ToggleWhitelist adds or removes the active window from the capture
// selection.
func (s *Service) ToggleWhitelist() (WhitelistResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.backend.ActiveWindow()
	if err != nil {
		return WhitelistResult{}, fmt.Errorf("failed to get active window: %w", err)
	}
	windows, err := s.backend.StackedWindows()
	if err != nil {
		return WhitelistResult{}, fmt.Errorf("failed to enumerate windows: %w", err)
	}
	for _, w := range windows {
		if w.ID != id {
			continue
		}
		selected := s.whitelist.Toggle(w)
		s.logger.Info("whitelist toggled",
			"handle", w.ID, "process", w.ProcessName, "selected", selected, "count", s.whitelist.Len())
		return WhitelistResult{Window: w, Selected: selected, Count: s.whitelist.Len()}, nil
	}
	return WhitelistResult{}, fmt.Errorf("active window 0x%x is not eligible for layouts", id)
}

// FindWindows ranks the live windows against query, best first. A positive
// limit caps the number of results.
func (s *Service) FindWindows(query string, limit int) ([]layout.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	found, err := s.manager.FindWindows(query)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(found) > limit {
		found = found[:limit]
	}
	return found, nil
}

// Focus brings the best match for query to the foreground. It reports false
// when no window matches.
func (s *Service) Focus(query string) (layout.Candidate, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	found, err := s.manager.FindWindows(query)
	if err != nil {
		return layout.Candidate{}, false, err
	}
	if len(found) == 0 {
		return layout.Candidate{}, false, nil
	}
	best := found[0]
	if err := s.manager.Focus(best.Window.ID); err != nil {
		return best, true, fmt.Errorf("failed to focus window 0x%x: %w", best.Window.ID, err)
	}
	s.logger.Info("window focused",
		"query", query, "handle", best.Window.ID, "process", best.Window.ProcessName, "score", best.Score)
	return best, true, nil
}

// Monitors lists the connected displays.
func (s *Service) Monitors() ([]platform.Display, error) {
	return s.backend.Displays()
}

// Status returns a snapshot of the daemon state.
func (s *Service) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Status{
		Layouts:         len(s.manager.IDs()),
		WhitelistActive: s.whitelist.Active(),
		WhitelistCount:  s.whitelist.Len(),
		StorageBackend:  s.cfg.Storage.Backend,
		Uptime:          time.Since(s.started),
	}
}

// Config returns the active configuration.
func (s *Service) Config() *config.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// UpdateConfig applies reloaded settings. Storage and hotkey changes need a
// daemon restart.
func (s *Service) UpdateConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
	s.manager.SetOptions(managerOptions(cfg, s.logger))
}

func summarize(l *layout.Layout) LayoutSummary {
	sum := LayoutSummary{ID: l.ID, Tiles: len(l.Tiles), Windows: l.WindowCount()}
	seen := make(map[string]bool)
	for _, t := range l.Tiles {
		name := t.Bounds.ScreenName()
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		sum.Screens = append(sum.Screens, name)
	}
	return sum
}
