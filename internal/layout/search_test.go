package layout

import (
	"reflect"
	"testing"

	"github.com/1broseidon/winsnap/internal/platform"
)

func TestScoreSearch(t *testing.T) {
	tests := []struct {
		source string
		query  string
		want   int
	}{
		{"Firefox", "Firefox", 10},
		{"firefox", "fire", 9},
		{"Firefox", "fire", 8},
		{"firefox", "FIREFOX", 8},
		{"Café Central", "cafe", 7},
		{"Firefox", "fox", 6},
		{"Firefox", "FOX", 5},
		{"Crème brûlée recipe", "brulee", 4},
		{"Mozilla Firefox Private Browsing", "Mozilla Private", 3},
		{"Mozilla Firefox Private Browsing", "mozilla private", 2},
		{"Réunion notes draft", "reunion draft", 2},
		{"Mozilla Firefox Private Browsing", "Private Mozilla", 0},
		{"Firefox", "chrome", 0},
		{"Firefox", "", 0},
		{"Firefox", "   ", 0},
		{"", "x", 0},
	}
	for _, tt := range tests {
		if got := ScoreSearch(tt.source, tt.query); got != tt.want {
			t.Errorf("ScoreSearch(%q, %q) = %d, want %d", tt.source, tt.query, got, tt.want)
		}
	}
}

func TestRankWindows(t *testing.T) {
	windows := []platform.Window{
		{ID: 1, ProcessName: "kitty", AppID: "kitty", Title: "vim notes"},
		{ID: 2, ProcessName: "firefox", AppID: "firefox", Title: "Mozilla Firefox"},
		{ID: 3, ProcessName: "code", AppID: "Code", Title: "notes.md - Visual Studio Code"},
	}

	tests := []struct {
		query  string
		ids    []platform.WindowID
		scores []int
	}{
		// title prefix (9*4) beats title substring (6*4)
		{"notes", []platform.WindowID{3, 1}, []int{36, 24}},
		// process prefix, folded title substring and class prefix add up
		{"fire", []platform.WindowID{2}, []int{45 + 20 + 27}},
		{"emacs", []platform.WindowID{}, []int{}},
	}
	for _, tt := range tests {
		got := RankWindows(windows, tt.query)
		ids := make([]platform.WindowID, 0, len(got))
		scores := make([]int, 0, len(got))
		for _, c := range got {
			ids = append(ids, c.Window.ID)
			scores = append(scores, c.Score)
		}
		if !reflect.DeepEqual(ids, tt.ids) || !reflect.DeepEqual(scores, tt.scores) {
			t.Errorf("RankWindows(%q) = ids %v scores %v, want %v %v", tt.query, ids, scores, tt.ids, tt.scores)
		}
	}
}

func TestRankWindowsKeepsStackingOrderOnTies(t *testing.T) {
	windows := []platform.Window{
		{ID: 7, ProcessName: "kitty", AppID: "kitty", Title: "build"},
		{ID: 8, ProcessName: "kitty", AppID: "kitty", Title: "logs"},
	}
	got := RankWindows(windows, "kitty")
	if len(got) != 2 || got[0].Window.ID != 7 || got[1].Window.ID != 8 {
		t.Fatalf("RankWindows() = %+v, want frontmost first", got)
	}
	if got[0].ZIndex != 0 || got[1].ZIndex != 1 {
		t.Fatalf("z indexes = %d,%d", got[0].ZIndex, got[1].ZIndex)
	}
}

func TestFocusUnminimizes(t *testing.T) {
	b := newFakeBackend(display(0, "A", 0, 0, 1920, 1080))
	b.add(platform.Window{ID: 1, PID: 10, ProcessName: "app"}, "A", rect(0, 0, 10, 10), platform.WindowState{Minimized: true, Maximized: true})
	b.add(platform.Window{ID: 2, PID: 11, ProcessName: "app"}, "A", rect(0, 0, 10, 10), normal)
	m := newTestManager(b)

	if err := m.Focus(1); err != nil {
		t.Fatalf("Focus(1): %v", err)
	}
	want := []string{"show:restore", "show:maximize", "topmost:true", "topmost:false", "activate"}
	if got := b.ops(1); !reflect.DeepEqual(got, want) {
		t.Fatalf("ops(1) = %v, want %v", got, want)
	}

	m.SetOptions(Options{Logger: quietLogger()})
	if err := m.Focus(2); err != nil {
		t.Fatalf("Focus(2): %v", err)
	}
	if got := b.ops(2); !reflect.DeepEqual(got, []string{"activate"}) {
		t.Fatalf("ops(2) = %v, want activation only", got)
	}

	if err := m.Focus(99); err == nil {
		t.Fatal("expected error for unknown window")
	}
}
