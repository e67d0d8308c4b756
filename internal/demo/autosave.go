package demo

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// rearmAfterEditLocked decides what an edit does to the auto-save timer:
// arm (or re-arm, so only the window after the last edit counts) while
// the preference is on, release the pending save when the edit turned it
// off.
func (c *Component) rearmAfterEditLocked() {
	if c.data.Preferences.AutoSave {
		c.armAutosaveLocked()
	} else {
		c.stopAutosaveLocked()
	}
}

func (c *Component) armAutosaveLocked() {
	if c.closed {
		return
	}
	if c.autosave != nil {
		c.autosave.Stop()
	}
	c.autosave = time.AfterFunc(c.autosaveDelay, c.autosaveFire)
}

func (c *Component) stopAutosaveLocked() {
	if c.autosave != nil {
		c.autosave.Stop()
		c.autosave = nil
	}
}

// autosaveFire runs when the debounce window elapses with no further
// edits. A save already in flight defers the attempt for a full fresh
// window rather than dropping it.
func (c *Component) autosaveFire() {
	c.mu.Lock()
	if c.closed || !c.data.Preferences.AutoSave {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), autosaveTimeout)
	defer cancel()

	err := c.Save(ctx)
	switch {
	case err == nil:
		slog.Debug("demo: auto-save completed")
	case errors.Is(err, ErrBusy):
		slog.Debug("demo: auto-save deferred, another operation is in flight")
		c.mu.Lock()
		c.armAutosaveLocked()
		c.mu.Unlock()
	case errors.Is(err, ErrClosed):
		// Component shut down between arming and firing.
	default:
		// Already classified and surfaced by Save.
		slog.Debug("demo: auto-save failed", "err", err)
	}
}
