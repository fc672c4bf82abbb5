package layout

import "testing"

func TestScreenRoundTrip(t *testing.T) {
	screens := []*Screen{
		{Name: "A", X: 0, Y: 0, Width: 1920, Height: 1080},
		{Name: "B", X: 1920, Y: -200, Width: 2560, Height: 1440},
		{Name: "C", X: -1280, Y: 0, Width: 1280, Height: 1024},
	}
	spaces := []Space{
		{X: 0, Y: 0, Width: 800, Height: 600},
		{X: 1950, Y: -150, Width: 1000, Height: 700},
		{X: -1200, Y: 40, Width: 10, Height: 10},
		{X: 5000, Y: 5000, Width: 0, Height: 0},
	}
	for _, s := range screens {
		for _, sp := range spaces {
			got := s.ToDesktop(s.FromDesktop(sp))
			if got != sp {
				t.Errorf("screen %s: ToDesktop(FromDesktop(%+v)) = %+v", s.Name, sp, got)
			}
		}
	}
}

func TestFromDesktopOffsets(t *testing.T) {
	s := &Screen{Name: "B", X: 1920, Y: 100, Width: 1920, Height: 1080}
	b := s.FromDesktop(Space{X: 2020, Y: 150, Width: 800, Height: 600})
	if b.Left != 100 || b.Top != 50 || b.Right != 900 || b.Bottom != 650 {
		t.Fatalf("FromDesktop() = %+v", b)
	}
	if b.Screen != s {
		t.Fatal("FromDesktop() did not keep the screen reference")
	}
}

func TestBoundsEqual(t *testing.T) {
	a1 := &Screen{Name: "A", X: 0, Y: 0, Width: 100, Height: 100}
	a2 := &Screen{Name: "A", X: 500, Y: 0, Width: 100, Height: 100}
	b := &Screen{Name: "B", X: 0, Y: 0, Width: 100, Height: 100}

	tests := []struct {
		name string
		x, y Bounds
		want bool
	}{
		{"same screen same offsets", Bounds{a1, 0, 0, 10, 10}, Bounds{a1, 0, 0, 10, 10}, true},
		{"screen identity is by name", Bounds{a1, 0, 0, 10, 10}, Bounds{a2, 0, 0, 10, 10}, true},
		{"different screen names", Bounds{a1, 0, 0, 10, 10}, Bounds{b, 0, 0, 10, 10}, false},
		{"different offsets", Bounds{a1, 0, 0, 10, 10}, Bounds{a1, 0, 0, 10, 11}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.x.Equal(tt.y); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScreenRegistryObserve(t *testing.T) {
	r := NewScreenRegistry()
	first := r.Observe(display(0, "A", 0, 0, 1920, 1080))
	again := r.Observe(display(0, "A", 0, 0, 1920, 1080))
	if first != again {
		t.Fatal("Observe() created a new screen for unchanged geometry")
	}

	moved := r.Observe(display(0, "A", 1280, 0, 1920, 1080))
	if moved == first {
		t.Fatal("Observe() reused a screen after its geometry changed")
	}
	if first.X != 0 {
		t.Fatalf("Observe() mutated an existing screen: %+v", first)
	}
	got, ok := r.Lookup("A")
	if !ok || got != moved {
		t.Fatalf("Lookup() = %+v, %v; want moved screen", got, ok)
	}
	if n := len(r.Screens()); n != 1 {
		t.Fatalf("Screens() len = %d, want 1", n)
	}
}

func TestScreenRegistryAdopt(t *testing.T) {
	r := NewScreenRegistry()
	live := r.Observe(display(0, "A", 0, 0, 1920, 1080))

	stored := &Screen{Name: "A", X: 10, Y: 10, Width: 1, Height: 1}
	if got := r.Adopt(stored); got != live {
		t.Fatal("Adopt() did not prefer the registered screen")
	}

	other := &Screen{Name: "B"}
	if got := r.Adopt(other); got != other {
		t.Fatal("Adopt() did not register an unknown screen")
	}
	if r.Adopt(nil) != nil {
		t.Fatal("Adopt(nil) != nil")
	}
}
