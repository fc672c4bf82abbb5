package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/1broseidon/winsnap/internal/ipc"
	"github.com/1broseidon/winsnap/internal/layout"
)

// parseSlotArgs parses the flags in fs and a single non-negative layout id.
func parseSlotArgs(fs *flag.FlagSet, args []string) (int, int) {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0, 0
		}
		return 0, 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "%s requires exactly one layout id\n", fs.Name())
		fs.Usage()
		return 0, 2
	}
	id, err := parseSlot(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 0, 2
	}
	return id, -1
}

func parseSlot(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid layout id %q", s)
	}
	if id < 0 {
		return 0, fmt.Errorf("layout id must be non-negative, got %d", id)
	}
	return id, nil
}

func slotFlagSet(name, usage, help string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: winsnap %s\n", usage)
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, help)
	}
	return fs
}

func runSave(args []string) int {
	fs := slotFlagSet("save", "save <id>", "Capture every window on the current desktop into layout <id>.")
	id, rc := parseSlotArgs(fs, args)
	if rc >= 0 {
		return rc
	}

	info, err := ipc.NewClient().SaveLayout(id)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("saved layout %d: %d windows in %d tiles (%s)\n",
		info.ID, info.Windows, info.Tiles, strings.Join(info.Screens, ", "))
	return 0
}

func runRestore(args []string) int {
	fs := slotFlagSet("restore", "restore <id>", "Move windows back to the positions stored in layout <id>.")
	id, rc := parseSlotArgs(fs, args)
	if rc >= 0 {
		return rc
	}

	res, err := ipc.NewClient().RestoreLayout(id)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if !res.Found {
		fmt.Printf("layout %d is empty\n", id)
		return 0
	}
	fmt.Printf("restored layout %d\n", id)
	return 0
}

func runDelete(args []string) int {
	fs := slotFlagSet("delete", "delete <id>", "Delete layout <id> from the daemon and from storage.")
	id, rc := parseSlotArgs(fs, args)
	if rc >= 0 {
		return rc
	}

	if err := ipc.NewClient().DeleteLayout(id); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("deleted layout %d\n", id)
	return 0
}

func runList(args []string) int {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: winsnap list [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	jsonOut := fs.Bool("json", false, "Output as JSON")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "list takes no arguments")
		fs.Usage()
		return 2
	}

	data, err := ipc.NewClient().ListLayouts()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *jsonOut {
		return writeJSON(os.Stdout, data)
	}
	if len(data.Layouts) == 0 {
		fmt.Println("no layouts saved")
		return 0
	}
	for _, l := range data.Layouts {
		fmt.Printf("%3d  %2d windows  %2d tiles  %s\n", l.ID, l.Windows, l.Tiles, strings.Join(l.Screens, ", "))
	}
	return 0
}

func runShow(args []string) int {
	fs := slotFlagSet("show", "show [--json] <id>", "Print the tiles and windows remembered in layout <id>.\nOutput is JSON when stdout is not a terminal.")
	jsonOut := fs.Bool("json", false, "Output as JSON")
	id, rc := parseSlotArgs(fs, args)
	if rc >= 0 {
		return rc
	}

	l, err := ipc.NewClient().GetLayout(id)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	tty := term.IsTerminal(int(os.Stdout.Fd()))
	if *jsonOut || !tty {
		return writeJSON(os.Stdout, l)
	}
	width := 0
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width = w
	}
	printLayout(os.Stdout, l, width)
	return 0
}

func runPreview(args []string) int {
	fs := slotFlagSet("preview", "preview <id>", "Show which live windows a restore of layout <id> would move, without moving them.")
	id, rc := parseSlotArgs(fs, args)
	if rc >= 0 {
		return rc
	}

	data, err := ipc.NewClient().PreviewLayout(id)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if len(data.Entries) == 0 {
		fmt.Println("no live windows match")
		return 0
	}
	for _, e := range data.Entries {
		fmt.Printf("0x%08x  %-12s %-8s -> %-10s %s (%d,%d)-(%d,%d)\n",
			e.Handle, e.Process, e.Level, e.Mode, e.Screen, e.Left, e.Top, e.Right, e.Bottom)
	}
	return 0
}

func runWhitelist(args []string) int {
	fs := flag.NewFlagSet("whitelist", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: winsnap whitelist")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Toggle the active window in the selection used by the next save.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	res, err := ipc.NewClient().ToggleWhitelist()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	verb := "removed"
	if res.Selected {
		verb = "added"
	}
	fmt.Printf("%s %s (%q); %d windows selected\n", verb, res.Process, res.Title, res.Count)
	return 0
}

func printLayout(w io.Writer, l *layout.Layout, width int) {
	fmt.Fprintf(w, "layout %d\n", l.ID)
	for _, t := range l.Tiles {
		b := t.Bounds
		fmt.Fprintf(w, "  %-10s %s (%d,%d) %dx%d\n",
			t.Mode, b.ScreenName(), b.Left, b.Top, b.Right-b.Left, b.Bottom-b.Top)
		for _, win := range t.Windows {
			line := fmt.Sprintf("    [%d] %s pid=%d 0x%08x %s", win.ZIndex, win.ProcessName, win.ProcessID, uint32(win.Handle), win.Title)
			fmt.Fprintln(w, truncate(line, width))
		}
	}
}

// truncate shortens s to width runes. A width of zero or less disables it.
func truncate(s string, width int) string {
	if width <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 3 {
		return string(r[:width])
	}
	return string(r[:width-3]) + "..."
}

func writeJSON(w io.Writer, v any) int {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
