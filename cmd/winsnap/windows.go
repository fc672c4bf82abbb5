package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/1broseidon/winsnap/internal/ipc"
)

// queryArgs joins the remaining arguments into one search query, so
// "winsnap focus mozilla private" needs no quoting.
func queryArgs(fs *flag.FlagSet) (string, error) {
	query := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if query == "" {
		return "", fmt.Errorf("%s requires a search query", fs.Name())
	}
	return query, nil
}

func runFind(args []string) int {
	fs := flag.NewFlagSet("find", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: winsnap find [--json] [--limit N] <query>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Rank open windows against <query> by process name, title and window class.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	jsonOut := fs.Bool("json", false, "Output as JSON")
	limit := fs.Int("limit", 0, "Maximum number of results (0 for all)")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	query, err := queryArgs(fs)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		fs.Usage()
		return 2
	}
	if *limit < 0 {
		fmt.Fprintf(os.Stderr, "limit must be non-negative, got %d\n", *limit)
		return 2
	}

	data, err := ipc.NewClient().FindWindows(query, *limit)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *jsonOut {
		return writeJSON(os.Stdout, data)
	}
	if len(data.Windows) == 0 {
		fmt.Printf("no windows match %q\n", query)
		return 1
	}
	width := 0
	if term.IsTerminal(int(os.Stdout.Fd())) {
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			width = w
		}
	}
	printMatches(os.Stdout, data.Windows, width)
	return 0
}

func runFocus(args []string) int {
	fs := flag.NewFlagSet("focus", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: winsnap focus <query>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Bring the best match for <query> to the front, un-minimizing it if needed.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	query, err := queryArgs(fs)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		fs.Usage()
		return 2
	}

	res, err := ipc.NewClient().FocusWindow(query)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if !res.Found || res.Window == nil {
		fmt.Printf("no windows match %q\n", query)
		return 1
	}
	fmt.Printf("focused %s (%q)\n", res.Window.Process, res.Window.Title)
	return 0
}

func printMatches(w io.Writer, matches []ipc.WindowMatch, width int) {
	for _, m := range matches {
		line := fmt.Sprintf("%4d  0x%08x  %-12s %s", m.Score, m.Handle, m.Process, m.Title)
		fmt.Fprintln(w, truncate(line, width))
	}
}
