package layout

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/1broseidon/winsnap/internal/platform"
)

// Field weights for RankWindows. The process name is the strongest signal.
const (
	processWeight = 5
	titleWeight   = 4
	classWeight   = 3
)

// ScoreSearch rates how well source answers query, from 10 down to 0:
//
//	10  identical
//	 9  prefix
//	 8  prefix ignoring case
//	 7  prefix ignoring case and accents
//	 6  substring
//	 5  substring ignoring case
//	 4  substring ignoring case and accents
//	 3  every word of query appears in source, in order
//	 2  the same, ignoring case and accents
//	 0  no match
//
// A blank query scores 0 against everything.
func ScoreSearch(source, query string) int {
	if strings.TrimSpace(query) == "" {
		return 0
	}
	if source == query {
		return 10
	}
	foldedSource, foldedQuery := foldCase(source), foldCase(query)
	plainSource, plainQuery := stripMarks(foldedSource), stripMarks(foldedQuery)

	switch {
	case strings.HasPrefix(source, query):
		return 9
	case strings.HasPrefix(foldedSource, foldedQuery):
		return 8
	case strings.HasPrefix(plainSource, plainQuery):
		return 7
	case strings.Contains(source, query):
		return 6
	case strings.Contains(foldedSource, foldedQuery):
		return 5
	case strings.Contains(plainSource, plainQuery):
		return 4
	case wordsInOrder(source, strings.Fields(query)):
		return 3
	case wordsInOrder(plainSource, strings.Fields(plainQuery)):
		return 2
	default:
		return 0
	}
}

// wordsInOrder reports whether each word occurs in s after the end of the
// previous one.
func wordsInOrder(s string, words []string) bool {
	if len(words) == 0 {
		return false
	}
	cursor := 0
	for _, w := range words {
		i := strings.Index(s[cursor:], w)
		if i < 0 {
			return false
		}
		cursor += i + len(w)
	}
	return true
}

func foldCase(s string) string {
	return cases.Fold().String(s)
}

func stripMarks(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Candidate is a live window ranked against a search query.
type Candidate struct {
	Window platform.Window
	// ZIndex is the window's position in the stacking order, 0 frontmost.
	ZIndex int
	Score  int
}

// RankWindows scores every window against query and returns those that
// match, best first. Equal scores keep stacking order.
func RankWindows(windows []platform.Window, query string) []Candidate {
	out := make([]Candidate, 0, len(windows))
	for z, w := range windows {
		score := processWeight*ScoreSearch(w.ProcessName, query) +
			titleWeight*ScoreSearch(w.Title, query) +
			classWeight*ScoreSearch(w.AppID, query)
		if score == 0 {
			continue
		}
		out = append(out, Candidate{Window: w, ZIndex: z, Score: score})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

// FindWindows ranks the live windows against query.
func (m *Manager) FindWindows(query string) ([]Candidate, error) {
	live, err := m.backend.StackedWindows()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate windows: %w", err)
	}
	return RankWindows(live, query), nil
}

// Focus brings a window to the foreground, un-minimizing it first. A window
// that was maximized before it was minimized comes back maximized.
func (m *Manager) Focus(id platform.WindowID) error {
	state, err := m.backend.WindowState(id)
	if err != nil {
		return fmt.Errorf("failed to read window state: %w", err)
	}
	if state.Minimized {
		if err := m.backend.Show(id, platform.ShowRestore); err != nil {
			return fmt.Errorf("failed to unminimize window: %w", err)
		}
		if state.Maximized {
			if err := m.backend.Show(id, platform.ShowMaximize); err != nil {
				return fmt.Errorf("failed to maximize window: %w", err)
			}
		}
	}
	if m.opts.ForegroundCorrection {
		m.liftTopmost(id)
	}
	if err := m.backend.Activate(id); err != nil {
		return fmt.Errorf("failed to activate window: %w", err)
	}
	m.logger.Debug("window focused", "handle", id)
	return nil
}
