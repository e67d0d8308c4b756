package demo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hostkit/statedemo/internal/models"
	"github.com/hostkit/statedemo/internal/statesvc"
)

// begin admits an operation: closed components and re-entry are
// rejected, the busy flag is set, and any previously surfaced error is
// dropped so the new attempt starts clean.
func (c *Component) begin(op string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if c.busy {
		return ErrBusy
	}
	c.busy = true
	c.lastErr = nil
	c.surface.clear()
	c.log.append(op + " started")
	return nil
}

// fail classifies err, surfaces the record, releases the busy flag, and
// returns the typed operation error.
func (c *Component) fail(op string, err error) error {
	rec := classify(op, err)

	c.mu.Lock()
	c.busy = false
	c.lastErr = &rec
	c.surface.fail()
	c.log.append(op + " failed: " + rec.Message)
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.publish(snap)
	slog.Error("demo: operation failed", "op", op, "category", string(rec.Category), "err", err)
	return &OperationError{Record: rec, err: err}
}

// buildEnvelope wraps the current dataset with optimistically bumped
// counters: the save count the envelope carries is the one this save
// will have once the service accepts it.
func (c *Component) buildEnvelope() models.Envelope {
	c.mu.Lock()
	defer c.mu.Unlock()
	data := c.data
	return models.Envelope{
		DemoData:     &data,
		SaveCount:    c.status.SaveCount + 1,
		RestoreCount: c.status.RestoreCount,
	}
}

// Save validates the dataset, wraps it in an envelope, and hands it to
// the state service. The local counters only advance after the service
// accepts the envelope.
func (c *Component) Save(ctx context.Context) error {
	if err := c.begin("save"); err != nil {
		return err
	}
	if c.svc == nil {
		return c.fail("save", statesvc.ErrUnavailable)
	}

	env := c.buildEnvelope()
	if violations := env.DemoData.Validate(); len(violations) > 0 {
		return c.fail("save", &models.ValidationError{Violations: violations})
	}
	size, err := env.EncodedSize()
	if err != nil {
		return c.fail("save", err)
	}
	if size > c.cfg.MaxBytes {
		return c.fail("save", &statesvc.SizeError{Size: size, Limit: c.cfg.MaxBytes})
	}

	if err := c.svc.SaveState(ctx, env); err != nil {
		return c.fail("save", err)
	}

	c.mu.Lock()
	c.status.SaveCount = env.SaveCount
	now := time.Now()
	c.status.LastSave = &now
	c.busy = false
	c.log.append(fmt.Sprintf("state saved (save #%d)", env.SaveCount))
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.publish(snap)
	return nil
}

// Restore fetches the stored envelope and adopts it: the dataset and
// save count come from the record, the restore count becomes the stored
// one plus this restore. An absent record is a routine outcome, logged
// but never an error.
func (c *Component) Restore(ctx context.Context) error {
	if err := c.begin("restore"); err != nil {
		return err
	}
	if c.svc == nil {
		return c.fail("restore", statesvc.ErrUnavailable)
	}

	env, err := c.svc.GetState(ctx)
	if err != nil {
		return c.fail("restore", err)
	}

	c.mu.Lock()
	if env == nil {
		c.busy = false
		c.log.append("no saved state found")
		snap := c.snapshotLocked()
		c.mu.Unlock()
		c.publish(snap)
		return nil
	}
	if env.DemoData != nil {
		c.data = *env.DemoData
	}
	c.status.SaveCount = env.SaveCount
	c.status.RestoreCount = env.RestoreCount + 1
	now := time.Now()
	c.status.LastRestore = &now
	c.busy = false
	c.log.append(fmt.Sprintf("state restored (restore #%d)", c.status.RestoreCount))
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.publish(snap)
	return nil
}

// Clear drops the stored envelope and resets the component to its
// canonical defaults: fresh dataset, zeroed counters, no operation
// timestamps. The log survives so the clear itself stays visible.
func (c *Component) Clear(ctx context.Context) error {
	if err := c.begin("clear"); err != nil {
		return err
	}
	if c.svc == nil {
		return c.fail("clear", statesvc.ErrUnavailable)
	}

	if err := c.svc.ClearState(ctx); err != nil {
		return c.fail("clear", err)
	}

	c.mu.Lock()
	c.data = models.DefaultDemoData()
	c.status.SaveCount = 0
	c.status.RestoreCount = 0
	c.status.LastSave = nil
	c.status.LastRestore = nil
	c.busy = false
	c.stopAutosaveLocked()
	c.log.append("state cleared, defaults restored")
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.publish(snap)
	return nil
}
