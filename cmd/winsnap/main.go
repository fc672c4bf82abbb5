package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/1broseidon/winsnap/internal/config"
	"github.com/1broseidon/winsnap/internal/daemon"
	"github.com/1broseidon/winsnap/internal/hotkeys"
	"github.com/1broseidon/winsnap/internal/ipc"
	"github.com/1broseidon/winsnap/internal/platform"
	"github.com/1broseidon/winsnap/internal/storage"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		if len(os.Args) > 2 && (os.Args[2] == "help" || os.Args[2] == "-h" || os.Args[2] == "--help") {
			fmt.Fprintln(os.Stdout, "Usage: winsnap daemon")
			os.Exit(0)
		}
		if len(os.Args) > 2 {
			fmt.Fprintln(os.Stderr, "daemon takes no arguments")
			fmt.Fprintln(os.Stderr, "")
			fmt.Fprintln(os.Stderr, "Usage: winsnap daemon")
			os.Exit(2)
		}
		runDaemon()
	case "save":
		os.Exit(runSave(os.Args[2:]))
	case "restore":
		os.Exit(runRestore(os.Args[2:]))
	case "list":
		os.Exit(runList(os.Args[2:]))
	case "show":
		os.Exit(runShow(os.Args[2:]))
	case "preview":
		os.Exit(runPreview(os.Args[2:]))
	case "delete":
		os.Exit(runDelete(os.Args[2:]))
	case "whitelist":
		os.Exit(runWhitelist(os.Args[2:]))
	case "find":
		os.Exit(runFind(os.Args[2:]))
	case "focus":
		os.Exit(runFocus(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "monitors":
		os.Exit(runMonitors(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: winsnap <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Start the winsnap daemon (foreground)")
	fmt.Fprintln(w, "  status              Show daemon status")
	fmt.Fprintln(w, "  monitors            List connected monitors")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  save <id>           Capture the current windows into a layout slot")
	fmt.Fprintln(w, "  restore <id>        Move windows back to a saved layout")
	fmt.Fprintln(w, "  list                List saved layouts")
	fmt.Fprintln(w, "  show <id>           Show the contents of a layout")
	fmt.Fprintln(w, "  preview <id>        Show which windows a restore would move")
	fmt.Fprintln(w, "  delete <id>         Delete a layout")
	fmt.Fprintln(w, "  whitelist           Toggle the active window for the next save")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  find <query>        Search open windows by process, title and class")
	fmt.Fprintln(w, "  focus <query>       Bring the best matching window to the front")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config explain      Explain where a config value comes from")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'winsnap <command> --help' for command-specific options.")
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: winsnap status")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show daemon status via IPC.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	status, err := client.GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("daemon_running:   %v\n", status.DaemonRunning)
	fmt.Printf("layouts:          %d\n", status.Layouts)
	fmt.Printf("storage_backend:  %s\n", status.StorageBackend)
	fmt.Printf("whitelist_active: %v\n", status.WhitelistActive)
	fmt.Printf("whitelist_count:  %d\n", status.WhitelistCount)
	fmt.Printf("uptime_seconds:   %d\n", status.UptimeSeconds)
	return 0
}

func runMonitors(args []string) int {
	fs := flag.NewFlagSet("monitors", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: winsnap monitors")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	data, err := ipc.NewClient().GetMonitors()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	for _, m := range data.Monitors {
		fmt.Printf("%d  %-10s %dx%d+%d+%d\n", m.ID, m.Name, m.Width, m.Height, m.X, m.Y)
	}
	return 0
}

func runDaemon() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	log.Printf("Configuration loaded (storage: %s, missing_screen: %s)", cfg.Storage.Backend, cfg.MissingScreen)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))

	backend, err := platform.NewLinuxBackendFromDisplay()
	if err != nil {
		log.Fatalf("Failed to connect to display: %v", err)
	}
	defer backend.Disconnect()

	store, err := storage.Open(storage.Options{
		Backend:    cfg.Storage.Backend,
		Dir:        cfg.Storage.Dir,
		SQLitePath: cfg.Storage.SQLitePath,
	})
	if err != nil {
		log.Fatalf("Failed to open layout storage: %v", err)
	}
	defer store.Close()

	service := daemon.NewService(backend, store, cfg, logger)
	if _, err := service.LoadAll(); err != nil {
		log.Printf("Warning: failed to load stored layouts: %v", err)
	}

	log.Println("winsnap daemon started successfully")

	hotkeyHandler := hotkeys.NewHandler(backend, service)
	if err := hotkeyHandler.RegisterAll(cfg); err != nil {
		log.Printf("Warning: %v", err)
	}

	reloadChan := make(chan struct{}, 1)

	ipcServer, err := ipc.NewServer(service, reloadChan)
	if err != nil {
		log.Fatalf("Failed to create IPC server: %v", err)
	}
	if err := ipcServer.Start(); err != nil {
		log.Fatalf("Failed to start IPC server: %v", err)
	}
	defer ipcServer.Stop()

	reconciler := daemon.NewReconciler(daemon.ReconcilerConfig{
		Interval:        5 * time.Second,
		AutoRestoreSlot: cfg.AutoRestoreSlot,
		Logger:          logger,
	}, backend.Displays, service.Restore)

	reconcilerCtx, reconcilerCancel := context.WithCancel(context.Background())
	defer reconcilerCancel()
	go reconciler.Run(reconcilerCtx)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)

	go func() {
		for {
			select {
			case sig := <-sigCh:
				switch sig {
				case syscall.SIGHUP:
					log.Println("Received SIGHUP, reloading config...")
					newCfg, err := config.Load()
					if err != nil {
						log.Printf("Config reload failed: %v", err)
						continue
					}
					service.UpdateConfig(newCfg)
					log.Println("Config reloaded successfully (hotkey and storage changes need a restart)")

				case os.Interrupt, syscall.SIGTERM:
					log.Println("Shutting down winsnap daemon...")
					reconcilerCancel()
					ipcServer.Stop()
					hotkeyHandler.Unregister()
					backend.Quit()
					return
				}

			case <-reloadChan:
				log.Println("Config reloaded via IPC (hotkey and storage changes need a restart)")
			}
		}
	}()

	log.Println("Entering event loop...")
	backend.EventLoop()
}
