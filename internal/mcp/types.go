package mcp

// SlotInput addresses a layout slot.
type SlotInput struct {
	ID int `json:"id" jsonschema:"Layout slot id (0-9 map to hotkeys; any non-negative id is accepted)"`
}

// ListInput is the input for list_layouts and list_monitors.
type ListInput struct{}

// LayoutSummary describes a stored layout.
type LayoutSummary struct {
	ID      int      `json:"id"`
	Tiles   int      `json:"tiles"`
	Windows int      `json:"windows"`
	Screens []string `json:"screens,omitempty"`
}

// ListLayoutsOutput is the output for the list_layouts tool.
type ListLayoutsOutput struct {
	Layouts []LayoutSummary `json:"layouts"`
}

// RestoreLayoutOutput is the output for the restore_layout tool.
type RestoreLayoutOutput struct {
	ID    int  `json:"id"`
	Found bool `json:"found"`
}

// WindowInfo is a remembered window inside a tile.
type WindowInfo struct {
	Title       string `json:"title"`
	ProcessName string `json:"process_name"`
	ProcessID   int    `json:"process_id"`
	Handle      uint32 `json:"handle"`
	ZIndex      int    `json:"z_index"`
}

// TileInfo is one (mode, bounds) slot of a layout.
type TileInfo struct {
	Mode    string       `json:"mode"`
	Screen  string       `json:"screen"`
	Left    int          `json:"left"`
	Top     int          `json:"top"`
	Right   int          `json:"right"`
	Bottom  int          `json:"bottom"`
	Windows []WindowInfo `json:"windows"`
}

// GetLayoutOutput is the output for the get_layout tool.
type GetLayoutOutput struct {
	ID    int        `json:"id"`
	Tiles []TileInfo `json:"tiles"`
}

// DeleteLayoutOutput is the output for the delete_layout tool.
type DeleteLayoutOutput struct {
	ID      int  `json:"id"`
	Deleted bool `json:"deleted"`
}

// MonitorInfo describes a connected monitor.
type MonitorInfo struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// ListMonitorsOutput is the output for the list_monitors tool.
type ListMonitorsOutput struct {
	Monitors []MonitorInfo `json:"monitors"`
}

// FindWindowsInput is the input for find_windows.
type FindWindowsInput struct {
	Query string `json:"query" jsonschema:"Text to look for in process names, titles and window classes"`
	Limit int    `json:"limit,omitempty" jsonschema:"Maximum number of results; 0 returns every match"`
}

// FocusWindowInput is the input for focus_window.
type FocusWindowInput struct {
	Query string `json:"query" jsonschema:"Text to look for in process names, titles and window classes"`
}

// WindowMatch is a live window ranked against a query.
type WindowMatch struct {
	Handle  uint32 `json:"handle"`
	PID     int    `json:"pid"`
	Process string `json:"process"`
	Class   string `json:"class"`
	Title   string `json:"title"`
	Score   int    `json:"score"`
}

// FindWindowsOutput is the output for the find_windows tool.
type FindWindowsOutput struct {
	Query   string        `json:"query"`
	Windows []WindowMatch `json:"windows"`
}

// FocusWindowOutput is the output for the focus_window tool. Window is the
// zero value when nothing matched.
type FocusWindowOutput struct {
	Query  string      `json:"query"`
	Found  bool        `json:"found"`
	Window WindowMatch `json:"window"`
}
