package mcp

import (
	"context"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/winsnap/internal/ipc"
	"github.com/1broseidon/winsnap/internal/layout"
)

func validID(id int) error {
	if id < 0 {
		return fmt.Errorf("id must be non-negative, got %d", id)
	}
	return nil
}

func (s *Server) handleSaveLayout(_ context.Context, _ *mcpsdk.CallToolRequest, args SlotInput) (*mcpsdk.CallToolResult, LayoutSummary, error) {
	if err := validID(args.ID); err != nil {
		return nil, LayoutSummary{}, err
	}
	info, err := s.daemon.SaveLayout(args.ID)
	if err != nil {
		return nil, LayoutSummary{}, fmt.Errorf("save_layout: %w", err)
	}
	return nil, LayoutSummary{ID: info.ID, Tiles: info.Tiles, Windows: info.Windows, Screens: info.Screens}, nil
}

func (s *Server) handleRestoreLayout(_ context.Context, _ *mcpsdk.CallToolRequest, args SlotInput) (*mcpsdk.CallToolResult, RestoreLayoutOutput, error) {
	if err := validID(args.ID); err != nil {
		return nil, RestoreLayoutOutput{}, err
	}
	res, err := s.daemon.RestoreLayout(args.ID)
	if err != nil {
		return nil, RestoreLayoutOutput{}, fmt.Errorf("restore_layout: %w", err)
	}
	return nil, RestoreLayoutOutput{ID: res.ID, Found: res.Found}, nil
}

func (s *Server) handleListLayouts(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListInput) (*mcpsdk.CallToolResult, ListLayoutsOutput, error) {
	data, err := s.daemon.ListLayouts()
	if err != nil {
		return nil, ListLayoutsOutput{}, fmt.Errorf("list_layouts: %w", err)
	}
	out := ListLayoutsOutput{Layouts: make([]LayoutSummary, 0, len(data.Layouts))}
	for _, l := range data.Layouts {
		out.Layouts = append(out.Layouts, LayoutSummary{ID: l.ID, Tiles: l.Tiles, Windows: l.Windows, Screens: l.Screens})
	}
	return nil, out, nil
}

func (s *Server) handleGetLayout(_ context.Context, _ *mcpsdk.CallToolRequest, args SlotInput) (*mcpsdk.CallToolResult, GetLayoutOutput, error) {
	if err := validID(args.ID); err != nil {
		return nil, GetLayoutOutput{}, err
	}
	l, err := s.daemon.GetLayout(args.ID)
	if err != nil {
		return nil, GetLayoutOutput{}, fmt.Errorf("get_layout: %w", err)
	}
	return nil, layoutOutput(l), nil
}

func (s *Server) handleDeleteLayout(_ context.Context, _ *mcpsdk.CallToolRequest, args SlotInput) (*mcpsdk.CallToolResult, DeleteLayoutOutput, error) {
	if err := validID(args.ID); err != nil {
		return nil, DeleteLayoutOutput{}, err
	}
	if err := s.daemon.DeleteLayout(args.ID); err != nil {
		return nil, DeleteLayoutOutput{}, fmt.Errorf("delete_layout: %w", err)
	}
	return nil, DeleteLayoutOutput{ID: args.ID, Deleted: true}, nil
}

func (s *Server) handleListMonitors(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListInput) (*mcpsdk.CallToolResult, ListMonitorsOutput, error) {
	data, err := s.daemon.GetMonitors()
	if err != nil {
		return nil, ListMonitorsOutput{}, fmt.Errorf("list_monitors: %w", err)
	}
	out := ListMonitorsOutput{Monitors: make([]MonitorInfo, 0, len(data.Monitors))}
	for _, m := range data.Monitors {
		out.Monitors = append(out.Monitors, MonitorInfo{ID: m.ID, Name: m.Name, X: m.X, Y: m.Y, Width: m.Width, Height: m.Height})
	}
	return nil, out, nil
}

func validQuery(query string) error {
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("query must not be empty")
	}
	return nil
}

func (s *Server) handleFindWindows(_ context.Context, _ *mcpsdk.CallToolRequest, args FindWindowsInput) (*mcpsdk.CallToolResult, FindWindowsOutput, error) {
	if err := validQuery(args.Query); err != nil {
		return nil, FindWindowsOutput{}, err
	}
	if args.Limit < 0 {
		return nil, FindWindowsOutput{}, fmt.Errorf("limit must be non-negative, got %d", args.Limit)
	}
	data, err := s.daemon.FindWindows(args.Query, args.Limit)
	if err != nil {
		return nil, FindWindowsOutput{}, fmt.Errorf("find_windows: %w", err)
	}
	out := FindWindowsOutput{Query: data.Query, Windows: make([]WindowMatch, 0, len(data.Windows))}
	for _, w := range data.Windows {
		out.Windows = append(out.Windows, windowMatch(w))
	}
	return nil, out, nil
}

func (s *Server) handleFocusWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args FocusWindowInput) (*mcpsdk.CallToolResult, FocusWindowOutput, error) {
	if err := validQuery(args.Query); err != nil {
		return nil, FocusWindowOutput{}, err
	}
	data, err := s.daemon.FocusWindow(args.Query)
	if err != nil {
		return nil, FocusWindowOutput{}, fmt.Errorf("focus_window: %w", err)
	}
	out := FocusWindowOutput{Query: data.Query, Found: data.Found}
	if data.Window != nil {
		out.Window = windowMatch(*data.Window)
	}
	return nil, out, nil
}

func windowMatch(w ipc.WindowMatch) WindowMatch {
	return WindowMatch{Handle: w.Handle, PID: w.PID, Process: w.Process, Class: w.Class, Title: w.Title, Score: w.Score}
}

func layoutOutput(l *layout.Layout) GetLayoutOutput {
	out := GetLayoutOutput{ID: l.ID, Tiles: make([]TileInfo, 0, len(l.Tiles))}
	for _, t := range l.Tiles {
		ti := TileInfo{
			Mode:    t.Mode.String(),
			Screen:  t.Bounds.ScreenName(),
			Left:    t.Bounds.Left,
			Top:     t.Bounds.Top,
			Right:   t.Bounds.Right,
			Bottom:  t.Bounds.Bottom,
			Windows: make([]WindowInfo, 0, len(t.Windows)),
		}
		for _, w := range t.Windows {
			ti.Windows = append(ti.Windows, WindowInfo{
				Title:       w.Title,
				ProcessName: w.ProcessName,
				ProcessID:   w.ProcessID,
				Handle:      uint32(w.Handle),
				ZIndex:      w.ZIndex,
			})
		}
		out.Tiles = append(out.Tiles, ti)
	}
	return out
}
