package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/vinilo/internal/adapter"
	"github.com/mmcdole/vinilo/internal/di"
	"github.com/mmcdole/vinilo/internal/domain"
	"github.com/mmcdole/vinilo/internal/metrics"
	"github.com/mmcdole/vinilo/internal/tui"
	"github.com/spf13/pflag"
	"golang.org/x/term"
)

// Version is set at build time via -ldflags
var Version = "dev"

// clearSpinnerLine clears the spinner line from the terminal
const clearSpinnerLine = "\r                                    \r"

type options struct {
	configPath string
	syncOnly   bool
	force      bool
	role       string
	clearCache bool
}

func main() {
	var opts options
	var showVersion bool
	pflag.BoolVarP(&showVersion, "version", "v", false, "print version")
	pflag.StringVarP(&opts.configPath, "config", "c", "", "config file (default searches ~/.config/vinilo)")
	pflag.BoolVar(&opts.syncOnly, "sync", false, "refresh the local cache and exit")
	pflag.BoolVar(&opts.force, "force", false, "refresh even when the cache is fresh")
	pflag.StringVar(&opts.role, "role", "", "start as visitor or collector, skipping role selection")
	pflag.BoolVar(&opts.clearCache, "clear-cache", false, "delete the local cache for the configured server and exit")
	pflag.Parse()

	if showVersion {
		fmt.Printf("vinilo %s\n", Version)
		return
	}

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	cfg, err := adapter.LoadConfig(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, closer, err := adapter.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = adapter.NullLogger()
	} else {
		defer closer.Close()
	}
	slog.SetDefault(logger)

	logger.Info("starting vinilo", "version", Version, "server", cfg.Server.URL)

	if opts.clearCache {
		if err := cfg.ClearCache(); err != nil {
			return err
		}
		fmt.Println("Cache cleared")
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, cleanup, err := di.InitApp(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer cleanup()

	if cfg.Metrics.Enabled {
		go metrics.Serve(ctx, cfg.Metrics.Addr, app.Metrics, logger)
	}

	if opts.syncOnly || !term.IsTerminal(int(os.Stdout.Fd())) {
		return runSync(ctx, app, opts.force, os.Stdout)
	}
	return runTUI(ctx, app, opts, logger)
}

// runSync refreshes the cache without the TUI and prints a summary
func runSync(ctx context.Context, app *di.App, force bool, out io.Writer) error {
	done := make(chan struct{})
	if term.IsTerminal(int(os.Stderr.Fd())) {
		go spin(done, "Syncing catalog")
	}

	results, err := app.Sync(ctx, force)
	close(done)
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	offline := 0
	for _, r := range results {
		fmt.Fprintln(out, describe(r))
		if r.RemoteErr != nil {
			offline++
		}
	}
	if offline == len(results) {
		return fmt.Errorf("catalog unreachable at %s", app.Config.Server.URL)
	}
	return nil
}

func describe(r domain.SyncResult) string {
	switch {
	case r.RemoteErr != nil:
		return fmt.Sprintf("✗ %s: %v (kept %d cached)", r.Entity, r.RemoteErr, r.Count)
	case r.FromCache:
		return fmt.Sprintf("· %s: %d cached, still fresh", r.Entity, r.Count)
	default:
		return fmt.Sprintf("✓ %s: %d synced", r.Entity, r.Count)
	}
}

func spin(done <-chan struct{}, label string) {
	frames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for i := 0; ; i++ {
		select {
		case <-done:
			fmt.Fprint(os.Stderr, clearSpinnerLine)
			return
		case <-ticker.C:
			fmt.Fprintf(os.Stderr, "\r%s %s...", frames[i%len(frames)], label)
		}
	}
}

func runTUI(ctx context.Context, app *di.App, opts options, logger *slog.Logger) error {
	roleName := opts.role
	chosen := roleName != ""
	if !chosen {
		roleName = app.Config.UI.DefaultRole
	}
	role, err := domain.ParseRole(roleName)
	if err != nil {
		return err
	}

	state := tui.NewAppState(role, chosen, app.Config.UI.CollectorID, tui.ParseScreen(app.Config.UI.DefaultScreen))
	model := tui.NewModel(ctx, app.Services, state, logger)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	logger.Info("starting TUI", "role", role, "role_chosen", chosen)

	final, err := p.Run()
	if m, ok := final.(tui.Model); ok {
		m.Shutdown()
	}
	if err != nil && ctx.Err() == nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	logger.Info("shutting down")
	return nil
}
