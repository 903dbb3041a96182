package adapter

import (
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"strings"
)

// ErrNoImage is returned when there is nothing to open
var ErrNoImage = errors.New("no image for this item")

// Launcher opens image URLs (album covers, musician portraits) in an
// external viewer
type Launcher struct {
	command string   // configured viewer command, empty for system default
	args    []string // additional arguments for the viewer
	logger  *slog.Logger

	// run starts the process; replaced in tests
	run func(name string, args ...string) error
}

// NewLauncher creates a launcher. An empty command uses the system default
// opener (open, xdg-open or start).
func NewLauncher(command string, args []string, logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Launcher{
		command: strings.TrimSpace(command),
		args:    args,
		logger:  logger,
		run:     startDetached,
	}
}

// Launch opens url without waiting for the viewer to exit
func (l *Launcher) Launch(url string) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return ErrNoImage
	}

	name, args := l.commandFor(url)
	l.logger.Info("opening image", "command", name, "url", url)
	if err := l.run(name, args...); err != nil {
		l.logger.Error("failed to open image", "command", name, "error", err)
		return fmt.Errorf("failed to open image with %s: %w", name, err)
	}
	return nil
}

func (l *Launcher) commandFor(url string) (string, []string) {
	if l.command != "" {
		return l.command, append(append([]string{}, l.args...), url)
	}
	return defaultOpener(runtime.GOOS, url)
}

func defaultOpener(goos, url string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{url}
	case "windows":
		return "cmd", []string{"/c", "start", "", url}
	default:
		return "xdg-open", []string{url}
	}
}

func startDetached(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	// Reap the child in the background
	go cmd.Wait()
	return nil
}
