// Package mcp exposes layout capture and restore as MCP tools. The server is
// a thin client of the running daemon; it never touches the X server itself.
package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/winsnap/internal/ipc"
	"github.com/1broseidon/winsnap/internal/layout"
)

const (
	ServerName    = "winsnap"
	ServerVersion = "0.1.0"
)

// Daemon is the subset of the IPC client the tools need. *ipc.Client
// implements it.
type Daemon interface {
	SaveLayout(id int) (*ipc.LayoutInfo, error)
	RestoreLayout(id int) (*ipc.RestoreData, error)
	ListLayouts() (*ipc.LayoutsData, error)
	GetLayout(id int) (*layout.Layout, error)
	DeleteLayout(id int) error
	GetMonitors() (*ipc.MonitorsData, error)
	FindWindows(query string, limit int) (*ipc.WindowsData, error)
	FocusWindow(query string) (*ipc.FocusData, error)
}

var _ Daemon = (*ipc.Client)(nil)

// Server is the MCP server for winsnap.
type Server struct {
	mcpServer *mcpsdk.Server
	daemon    Daemon
}

// NewServer creates an MCP server that forwards tool calls to the daemon.
func NewServer(d Daemon) *Server {
	s := &Server{daemon: d}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)
	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "save_layout",
		Description: "Capture the position, size and display mode (normal, maximized, minimized, fullscreen) of every open window on the current desktop into a layout slot, replacing what the slot held.",
	}, s.handleSaveLayout)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "restore_layout",
		Description: "Move every open window that matches a window remembered in the layout slot back to its saved position and mode. Windows are matched by process and title, so they survive application restarts. found is false when the slot is empty.",
	}, s.handleRestoreLayout)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_layouts",
		Description: "List stored layout slots with their tile, window and monitor counts.",
	}, s.handleListLayouts)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_layout",
		Description: "Return the full contents of a layout slot: each tile's mode, monitor and bounds relative to the monitor origin, and the windows remembered in it.",
	}, s.handleGetLayout)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "delete_layout",
		Description: "Delete a layout slot from the daemon and from storage.",
	}, s.handleDeleteLayout)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_monitors",
		Description: "List connected monitors with their names and desktop geometry.",
	}, s.handleListMonitors)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "find_windows",
		Description: "Search open windows by process name, title and window class. Results are ranked best first; exact and prefix matches beat substrings, and multi-word queries match words in order.",
	}, s.handleFindWindows)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "focus_window",
		Description: "Bring the best match for a search query to the foreground, un-minimizing it if needed. found is false when no window matches.",
	}, s.handleFocusWindow)
}
