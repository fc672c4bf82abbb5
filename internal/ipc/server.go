package ipc

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"strings"
	"sync"

	"github.com/1broseidon/winsnap/internal/config"
	"github.com/1broseidon/winsnap/internal/daemon"
	"github.com/1broseidon/winsnap/internal/layout"
	"github.com/1broseidon/winsnap/internal/platform"
	"github.com/1broseidon/winsnap/internal/runtimepath"
	"github.com/1broseidon/winsnap/internal/storage"
)

// Handler executes layout commands. *daemon.Service implements it.
type Handler interface {
	Save(id int) (daemon.LayoutSummary, error)
	Restore(id int) (bool, error)
	List() []daemon.LayoutSummary
	Layout(id int) (*layout.Layout, error)
	Delete(id int) error
	Preview(id int) ([]layout.Assignment, error)
	Status() daemon.Status
	Monitors() ([]platform.Display, error)
	ToggleWhitelist() (daemon.WhitelistResult, error)
	FindWindows(query string, limit int) ([]layout.Candidate, error)
	Focus(query string) (layout.Candidate, bool, error)
	UpdateConfig(cfg *config.Config)
}

var _ Handler = (*daemon.Service)(nil)

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	handler      Handler
	loadConfig   func() (*config.Config, error)
	reloadChan   chan struct{}
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a new IPC server on the per-user socket.
func NewServer(handler Handler, reloadChan chan struct{}) (*Server, error) {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
	}
	return NewServerAt(socketPath, handler, reloadChan), nil
}

// NewServerAt creates a server listening on socketPath.
func NewServerAt(socketPath string, handler Handler, reloadChan chan struct{}) *Server {
	// Remove existing socket if present
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		handler:    handler,
		loadConfig: config.Load,
		reloadChan: reloadChan,
	}
}

// SocketPath returns the path the server listens on.
func (s *Server) SocketPath() string {
	return s.socketPath
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	// Set socket permissions
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	log.Printf("IPC server listening on %s", s.socketPath)

	// Accept connections
	go s.acceptLoop()

	return nil
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			log.Printf("IPC accept error: %v", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		log.Printf("IPC read error: %v", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	resp := s.handleCommand(req)

	respData, err := resp.Marshal()
	if err != nil {
		log.Printf("Failed to marshal response: %v", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		log.Printf("Failed to send response: %v", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	switch req.Command {
	case CommandSaveLayout:
		return s.withSlot(req.Payload, s.handleSaveLayout)
	case CommandRestoreLayout:
		return s.withSlot(req.Payload, s.handleRestoreLayout)
	case CommandListLayouts:
		return s.handleListLayouts()
	case CommandGetLayout:
		return s.withSlot(req.Payload, s.handleGetLayout)
	case CommandDeleteLayout:
		return s.withSlot(req.Payload, s.handleDeleteLayout)
	case CommandPreviewLayout:
		return s.withSlot(req.Payload, s.handlePreviewLayout)
	case CommandGetStatus:
		return s.handleGetStatus()
	case CommandGetMonitors:
		return s.handleGetMonitors()
	case CommandToggleWhitelist:
		return s.handleToggleWhitelist()
	case CommandFindWindows:
		return s.withQuery(req.Payload, s.handleFindWindows)
	case CommandFocusWindow:
		return s.withQuery(req.Payload, s.handleFocusWindow)
	case CommandReload:
		return s.handleReload()
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func (s *Server) withSlot(payload json.RawMessage, fn func(id int) *Response) *Response {
	if len(payload) == 0 {
		return NewErrorResponse("id is required")
	}
	var req SlotPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid slot payload: %v", err))
	}
	if req.ID < 0 {
		return NewErrorResponse(fmt.Sprintf("Invalid layout id: %d", req.ID))
	}
	return fn(req.ID)
}

func (s *Server) withQuery(payload json.RawMessage, fn func(SearchPayload) *Response) *Response {
	var req SearchPayload
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &req); err != nil {
			return NewErrorResponse(fmt.Sprintf("Invalid search payload: %v", err))
		}
	}
	if strings.TrimSpace(req.Query) == "" {
		return NewErrorResponse("query is required")
	}
	if req.Limit < 0 {
		return NewErrorResponse(fmt.Sprintf("Invalid limit: %d", req.Limit))
	}
	return fn(req)
}

func (s *Server) handleSaveLayout(id int) *Response {
	log.Printf("IPC: Save layout %d", id)
	sum, err := s.handler.Save(id)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to save layout: %v", err))
	}
	resp, _ := NewOKResponse(layoutInfo(sum))
	return resp
}

func (s *Server) handleRestoreLayout(id int) *Response {
	log.Printf("IPC: Restore layout %d", id)
	found, err := s.handler.Restore(id)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to restore layout: %v", err))
	}
	resp, _ := NewOKResponse(RestoreData{ID: id, Found: found})
	return resp
}

func (s *Server) handleListLayouts() *Response {
	sums := s.handler.List()
	data := LayoutsData{Layouts: make([]LayoutInfo, 0, len(sums))}
	for _, sum := range sums {
		data.Layouts = append(data.Layouts, layoutInfo(sum))
	}
	resp, _ := NewOKResponse(data)
	return resp
}

func (s *Server) handleGetLayout(id int) *Response {
	l, err := s.handler.Layout(id)
	if err != nil {
		return notFoundOr(err, id, "Failed to get layout")
	}
	resp, err := NewOKResponse(l)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

func (s *Server) handleDeleteLayout(id int) *Response {
	log.Printf("IPC: Delete layout %d", id)
	if err := s.handler.Delete(id); err != nil {
		return notFoundOr(err, id, "Failed to delete layout")
	}
	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handlePreviewLayout(id int) *Response {
	plan, err := s.handler.Preview(id)
	if err != nil {
		return notFoundOr(err, id, "Failed to preview layout")
	}
	data := PreviewData{ID: id, Entries: make([]PreviewEntry, 0, len(plan))}
	for _, a := range plan {
		b := a.Match.Tile.Bounds
		data.Entries = append(data.Entries, PreviewEntry{
			Handle:  uint32(a.Window.ID),
			Process: a.Window.ProcessName,
			Title:   a.Window.Title,
			Level:   a.Match.Level.String(),
			Mode:    a.Match.Tile.Mode.String(),
			Screen:  b.ScreenName(),
			Left:    b.Left,
			Top:     b.Top,
			Right:   b.Right,
			Bottom:  b.Bottom,
		})
	}
	resp, _ := NewOKResponse(data)
	return resp
}

// handleGetStatus returns current daemon status
func (s *Server) handleGetStatus() *Response {
	st := s.handler.Status()
	resp, _ := NewOKResponse(StatusData{
		Layouts:         st.Layouts,
		WhitelistActive: st.WhitelistActive,
		WhitelistCount:  st.WhitelistCount,
		StorageBackend:  st.StorageBackend,
		UptimeSeconds:   int64(st.Uptime.Seconds()),
		DaemonRunning:   true,
	})
	return resp
}

// handleGetMonitors returns information about all monitors
func (s *Server) handleGetMonitors() *Response {
	displays, err := s.handler.Monitors()
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to get monitors: %v", err))
	}

	monitorInfos := make([]MonitorInfo, len(displays))
	for i, d := range displays {
		monitorInfos[i] = MonitorInfo{
			ID:     d.ID,
			Name:   d.Name,
			X:      d.Bounds.X,
			Y:      d.Bounds.Y,
			Width:  d.Bounds.Width,
			Height: d.Bounds.Height,
		}
	}

	resp, _ := NewOKResponse(MonitorsData{Monitors: monitorInfos})
	return resp
}

func (s *Server) handleToggleWhitelist() *Response {
	res, err := s.handler.ToggleWhitelist()
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to toggle whitelist: %v", err))
	}
	resp, _ := NewOKResponse(WhitelistData{
		Handle:   uint32(res.Window.ID),
		Process:  res.Window.ProcessName,
		Title:    res.Window.Title,
		Selected: res.Selected,
		Count:    res.Count,
	})
	return resp
}

func (s *Server) handleFindWindows(req SearchPayload) *Response {
	found, err := s.handler.FindWindows(req.Query, req.Limit)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to search windows: %v", err))
	}
	data := WindowsData{Query: req.Query, Windows: make([]WindowMatch, 0, len(found))}
	for _, c := range found {
		data.Windows = append(data.Windows, windowMatch(c))
	}
	resp, _ := NewOKResponse(data)
	return resp
}

func (s *Server) handleFocusWindow(req SearchPayload) *Response {
	log.Printf("IPC: Focus window %q", req.Query)
	best, ok, err := s.handler.Focus(req.Query)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to focus window: %v", err))
	}
	data := FocusData{Query: req.Query, Found: ok}
	if ok {
		m := windowMatch(best)
		data.Window = &m
	}
	resp, _ := NewOKResponse(data)
	return resp
}

// handleReload reloads the configuration
func (s *Server) handleReload() *Response {
	log.Println("IPC: Received RELOAD command")

	newCfg, err := s.loadConfig()
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to reload config: %v", err))
	}
	s.handler.UpdateConfig(newCfg)

	// Notify the main daemon via channel (non-blocking)
	select {
	case s.reloadChan <- struct{}{}:
	default:
	}

	log.Println("IPC: Config reloaded successfully")

	resp, _ := NewOKResponse(nil)
	return resp
}

func notFoundOr(err error, id int, msg string) *Response {
	if errors.Is(err, storage.ErrNotFound) {
		return NewErrorResponse(fmt.Sprintf("Unknown layout: %d", id))
	}
	return NewErrorResponse(fmt.Sprintf("%s: %v", msg, err))
}

func layoutInfo(sum daemon.LayoutSummary) LayoutInfo {
	return LayoutInfo{ID: sum.ID, Tiles: sum.Tiles, Windows: sum.Windows, Screens: sum.Screens}
}

func windowMatch(c layout.Candidate) WindowMatch {
	return WindowMatch{
		Handle:  uint32(c.Window.ID),
		PID:     c.Window.PID,
		Process: c.Window.ProcessName,
		Class:   c.Window.AppID,
		Title:   c.Window.Title,
		Score:   c.Score,
	}
}

// sendError sends an error response
func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}
