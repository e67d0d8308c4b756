// Package hostcfg loads the demo host's display configuration and hot
// reloads it when the file changes, so titles and feature toggles can be
// tuned without restarting the host.
package hostcfg

import (
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

const displayFileName = "display.json"

// Display is the host-side presentation config handed to clients: the
// chrome around the demo component, not the component's own data.
type Display struct {
	Title            string `json:"title"`
	Description      string `json:"description"`
	ShowDevControls  bool   `json:"showDevControls"` // expose the fault-injection endpoints
	ShowOperationLog bool   `json:"showOperationLog"`
}

// DefaultDisplay returns the configuration used when no display.json
// exists.
func DefaultDisplay() Display {
	return Display{
		Title:            "Saved State Demo",
		Description:      "Demonstrates register, save, restore and clear against the host state service",
		ShowDevControls:  true,
		ShowOperationLog: true,
	}
}

// Service watches the config directory and serves the current display
// configuration.
type Service struct {
	mu      sync.RWMutex
	path    string
	display Display
	watcher *fsnotify.Watcher
}

// NewService loads display.json from configDir (falling back to defaults
// when absent or unreadable) and starts watching it for changes. A
// watcher that cannot start degrades to static config with a warning.
func NewService(configDir string) *Service {
	s := &Service{
		path:    filepath.Join(configDir, displayFileName),
		display: DefaultDisplay(),
	}
	if err := s.Reload(); err != nil {
		slog.Warn("hostcfg: display config unreadable, using defaults", "path", s.path, "err", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		slog.Warn("hostcfg: file watcher unavailable, display config is static", "err", err)
		return s
	}
	if err := watcher.Add(configDir); err != nil {
		slog.Warn("hostcfg: cannot watch config dir, display config is static", "dir", configDir, "err", err)
		watcher.Close()
		return s
	}
	s.watcher = watcher
	go s.watchLoop()
	return s
}

// Display returns the current configuration.
func (s *Service) Display() Display {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.display
}

// Reload re-reads display.json. A missing file resets to defaults; a
// corrupt one keeps the previous configuration and reports the error.
func (s *Service) Reload() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.mu.Lock()
			s.display = DefaultDisplay()
			s.mu.Unlock()
			return nil
		}
		return err
	}

	var d Display
	if err := json.Unmarshal(data, &d); err != nil {
		return err
	}

	s.mu.Lock()
	s.display = d
	s.mu.Unlock()
	slog.Info("hostcfg: display configuration loaded", "path", s.path, "title", d.Title)
	return nil
}

// Close stops the file watcher.
func (s *Service) Close() {
	if s.watcher != nil {
		s.watcher.Close()
	}
}

func (s *Service) watchLoop() {
	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if event.Name == s.path && (event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
				if err := s.Reload(); err != nil {
					slog.Warn("hostcfg: failed to reload display config", "err", err)
				}
			}
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("hostcfg: watcher error", "err", err)
		}
	}
}
