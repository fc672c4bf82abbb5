package x11

import "testing"

func TestMonitorAt(t *testing.T) {
	monitors := []Monitor{
		{ID: 0, Name: "DP-1", Bounds: Geometry{X: 0, Y: 0, Width: 1920, Height: 1080}},
		{ID: 1, Name: "HDMI-1", Bounds: Geometry{X: 1920, Y: 0, Width: 2560, Height: 1440}},
	}

	tests := []struct {
		name   string
		x, y   int
		want   string
		wantOK bool
	}{
		{"first", 960, 540, "DP-1", true},
		{"left edge of second", 1920, 10, "HDMI-1", true},
		{"below first", 100, 1200, "", false},
		{"negative", -5, 0, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := monitorAt(monitors, tt.x, tt.y)
			if ok != tt.wantOK || got.Name != tt.want {
				t.Errorf("monitorAt(%d,%d) = %q,%v; want %q,%v", tt.x, tt.y, got.Name, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestGeometryIntersect(t *testing.T) {
	mon := Geometry{X: 1920, Y: 0, Width: 1920, Height: 1080}
	work := Geometry{X: 0, Y: 32, Width: 3840, Height: 1048}

	got, ok := mon.intersect(work)
	if !ok {
		t.Fatal("intersect() reported no overlap")
	}
	want := Geometry{X: 1920, Y: 32, Width: 1920, Height: 1048}
	if got != want {
		t.Fatalf("intersect() = %+v, want %+v", got, want)
	}

	if _, ok := mon.intersect(Geometry{X: 0, Y: 0, Width: 100, Height: 100}); ok {
		t.Fatal("disjoint rectangles intersected")
	}
}

func TestParseStates(t *testing.T) {
	tests := []struct {
		name   string
		states []string
		want   WindowFlags
	}{
		{"none", nil, WindowFlags{}},
		{"maximized", []string{stateMaxVert, stateMaxHorz}, WindowFlags{Maximized: true}},
		{"half maximized", []string{stateMaxVert}, WindowFlags{}},
		{"hidden fullscreen", []string{stateHidden, stateFullscreen}, WindowFlags{Hidden: true, Fullscreen: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseStates(tt.states); got != tt.want {
				t.Errorf("parseStates() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
