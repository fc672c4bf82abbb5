package ipc

import (
	"encoding/json"
	"fmt"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandSaveLayout      CommandType = "SAVE_LAYOUT"
	CommandRestoreLayout   CommandType = "RESTORE_LAYOUT"
	CommandListLayouts     CommandType = "LIST_LAYOUTS"
	CommandGetLayout       CommandType = "GET_LAYOUT"
	CommandDeleteLayout    CommandType = "DELETE_LAYOUT"
	CommandPreviewLayout   CommandType = "PREVIEW_LAYOUT"
	CommandGetStatus       CommandType = "GET_STATUS"
	CommandGetMonitors     CommandType = "GET_MONITORS"
	CommandToggleWhitelist CommandType = "TOGGLE_WHITELIST"
	CommandFindWindows     CommandType = "FIND_WINDOWS"
	CommandFocusWindow     CommandType = "FOCUS_WINDOW"
	CommandReload          CommandType = "RELOAD"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// SlotPayload addresses a layout slot. Used by every *_LAYOUT command
// except LIST_LAYOUTS.
type SlotPayload struct {
	ID int `json:"id"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	Layouts         int    `json:"layouts"`
	WhitelistActive bool   `json:"whitelist_active"`
	WhitelistCount  int    `json:"whitelist_count"`
	StorageBackend  string `json:"storage_backend"`
	UptimeSeconds   int64  `json:"uptime_seconds"`
	DaemonRunning   bool   `json:"daemon_running"`
}

// MonitorInfo represents information about a single monitor
type MonitorInfo struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// MonitorsData represents the data returned by GET_MONITORS
type MonitorsData struct {
	Monitors []MonitorInfo `json:"monitors"`
}

// LayoutInfo summarizes one stored layout.
type LayoutInfo struct {
	ID      int      `json:"id"`
	Tiles   int      `json:"tiles"`
	Windows int      `json:"windows"`
	Screens []string `json:"screens,omitempty"`
}

// LayoutsData represents the data returned by LIST_LAYOUTS
type LayoutsData struct {
	Layouts []LayoutInfo `json:"layouts"`
}

// RestoreData reports whether RESTORE_LAYOUT found the slot.
type RestoreData struct {
	ID    int  `json:"id"`
	Found bool `json:"found"`
}

// PreviewEntry pairs a live window with the remembered window it matches.
type PreviewEntry struct {
	Handle  uint32 `json:"handle"`
	Process string `json:"process"`
	Title   string `json:"title"`
	Level   string `json:"level"`
	Mode    string `json:"mode"`
	Screen  string `json:"screen"`
	Left    int    `json:"left"`
	Top     int    `json:"top"`
	Right   int    `json:"right"`
	Bottom  int    `json:"bottom"`
}

// PreviewData represents the data returned by PREVIEW_LAYOUT
type PreviewData struct {
	ID      int            `json:"id"`
	Entries []PreviewEntry `json:"entries"`
}

// WhitelistData represents the data returned by TOGGLE_WHITELIST
type WhitelistData struct {
	Handle   uint32 `json:"handle"`
	Process  string `json:"process"`
	Title    string `json:"title"`
	Selected bool   `json:"selected"`
	Count    int    `json:"count"`
}

// SearchPayload carries the query for FIND_WINDOWS and FOCUS_WINDOW. Limit
// is ignored by FOCUS_WINDOW.
type SearchPayload struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
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

// WindowsData represents the data returned by FIND_WINDOWS
type WindowsData struct {
	Query   string        `json:"query"`
	Windows []WindowMatch `json:"windows"`
}

// FocusData represents the data returned by FOCUS_WINDOW. Window is unset
// when nothing matched.
type FocusData struct {
	Query  string       `json:"query"`
	Found  bool         `json:"found"`
	Window *WindowMatch `json:"window,omitempty"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
