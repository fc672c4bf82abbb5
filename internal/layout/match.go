package layout

import "github.com/1broseidon/winsnap/internal/platform"

// MatchLevel ranks how well a remembered window matches a live one. Lower is
// stronger.
type MatchLevel int

const (
	// ExactMatch: same pid, process name and handle. Title is ignored.
	ExactMatch MatchLevel = iota
	// GreatMatch: same pid, process name and title; new handle.
	GreatMatch
	// ProcessMatch: same pid and process name.
	ProcessMatch
	// TitleMatch: same title and process name; the process restarted.
	TitleMatch
	// ProgramMatch: same process name only.
	ProgramMatch
	NoMatch
)

func (l MatchLevel) String() string {
	switch l {
	case ExactMatch:
		return "exact"
	case GreatMatch:
		return "great"
	case ProcessMatch:
		return "process"
	case TitleMatch:
		return "title"
	case ProgramMatch:
		return "program"
	default:
		return "none"
	}
}

// Query identifies a live window for matching.
type Query struct {
	ProcessID   int
	ProcessName string
	Handle      platform.WindowID
	Title       string
}

// QueryFor builds a query from a live platform window.
func QueryFor(w platform.Window) Query {
	return Query{
		ProcessID:   w.PID,
		ProcessName: w.ProcessName,
		Handle:      w.ID,
		Title:       w.Title,
	}
}

// Level computes how well w matches q.
func (q Query) Level(w *Window) MatchLevel {
	sameProcess := w.ProcessID == q.ProcessID && w.ProcessName == q.ProcessName
	switch {
	case sameProcess && w.Handle == q.Handle:
		return ExactMatch
	case sameProcess && w.Title == q.Title:
		return GreatMatch
	case sameProcess:
		return ProcessMatch
	case w.Title == q.Title && w.ProcessName == q.ProcessName:
		return TitleMatch
	case w.ProcessName == q.ProcessName:
		return ProgramMatch
	default:
		return NoMatch
	}
}

// Match is the result of a layout search.
type Match struct {
	Level  MatchLevel
	Tile   *Tile
	Window *Window
}

// Find returns the best match for q without modifying the layout. Ties are
// broken by tile order, then window order: the first one encountered wins.
func (l *Layout) Find(q Query) (Match, bool) {
	best := Match{Level: NoMatch}
	for _, t := range l.Tiles {
		for _, w := range t.Windows {
			level := q.Level(w)
			if level >= best.Level {
				continue
			}
			best = Match{Level: level, Tile: t, Window: w}
			if level == ExactMatch {
				return best, true
			}
		}
	}
	return best, best.Level < NoMatch
}

// Search is Find plus a refresh: a non-exact match has its title, pid and
// handle overwritten with the live values so later searches in the same
// session converge on ExactMatch. ProcessName is never rewritten.
func (l *Layout) Search(q Query) (Match, bool) {
	m, ok := l.Find(q)
	if !ok {
		return m, false
	}
	if m.Level != ExactMatch {
		m.Window.Title = q.Title
		m.Window.ProcessID = q.ProcessID
		m.Window.Handle = q.Handle
	}
	return m, true
}
