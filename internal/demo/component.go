// Package demo implements the saved-state demo component: the single
// owner of the demo dataset, the save/restore/clear lifecycle against
// the host state service, and the error surface shown to clients.
package demo

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hostkit/statedemo/internal/events"
	"github.com/hostkit/statedemo/internal/models"
	"github.com/hostkit/statedemo/internal/statesvc"
)

const (
	// componentID is the client id declared to the state service.
	componentID = "statedemo"

	// defaultAutosaveDelay is the quiet window after the last edit
	// before an automatic save fires.
	defaultAutosaveDelay = 1000 * time.Millisecond

	// autosaveTimeout bounds the background save triggered by the timer.
	autosaveTimeout = 10 * time.Second
)

// Admission errors. These are rejections, not failures: nothing is
// classified or surfaced for them.
var (
	ErrBusy   = errors.New("operation already in progress")
	ErrClosed = errors.New("demo component closed")
)

// OperationError is returned by a failed operation and carries the
// classified record that was surfaced for it.
type OperationError struct {
	Record models.ErrorRecord
	err    error
}

func (e *OperationError) Error() string { return e.Record.Message }

// Unwrap exposes the underlying cause for errors.Is / errors.As.
func (e *OperationError) Unwrap() error { return e.err }

// Component owns the demo dataset and orchestrates operations against
// the state service. All state lives behind the mutex; calls out to the
// service happen with the mutex released so service notifications can
// call back in without deadlocking.
type Component struct {
	mu  sync.Mutex
	svc statesvc.Service // nil when the host provided none
	bus *events.Bus
	cfg statesvc.Config

	data    models.DemoData
	status  models.OperationStatus
	log     *oplog
	busy    bool
	lastErr *models.ErrorRecord
	surface *errorSurface

	autosaveDelay time.Duration
	autosave      *time.Timer

	unsubs []statesvc.Unsubscribe
	closed bool
}

// Option configures a Component at construction.
type Option func(*Component)

// WithStrategy selects the storage strategy declared at registration.
// The default is persistent storage.
func WithStrategy(s statesvc.Strategy) Option {
	return func(c *Component) { c.cfg.Strategy = s }
}

// WithAutosaveDelay overrides the debounce window armed by edits.
func WithAutosaveDelay(d time.Duration) Option {
	return func(c *Component) {
		if d > 0 {
			c.autosaveDelay = d
		}
	}
}

// WithServiceLimit overrides the size limit declared at registration,
// for hosts that grant less than the default.
func WithServiceLimit(maxBytes int) Option {
	return func(c *Component) {
		if maxBytes > 0 {
			c.cfg.MaxBytes = maxBytes
		}
	}
}

// ServiceConfig is the registration the component declares to the state
// service: its id, the storage strategy, the envelope keys to preserve
// across sessions, a schema with per-key defaults, and the size limit.
func ServiceConfig(strategy statesvc.Strategy) statesvc.Config {
	return statesvc.Config{
		ID:           componentID,
		Strategy:     strategy,
		PreserveKeys: []string{"demoData", "saveCount", "restoreCount"},
		Schema: map[string]statesvc.FieldSpec{
			"demoData":     {Type: "object", Required: true, Default: models.DefaultDemoData()},
			"saveCount":    {Type: "number", Default: 0},
			"restoreCount": {Type: "number", Default: 0},
		},
		MaxBytes: models.MaxEnvelopeBytes,
	}
}

// New creates the component, registers it with the state service, and
// subscribes to the service's lifecycle notifications. A nil service is
// tolerated: the component still runs, and every operation fails with a
// service-category error until one is present.
func New(svc statesvc.Service, bus *events.Bus, opts ...Option) *Component {
	c := &Component{
		svc:           svc,
		bus:           bus,
		cfg:           ServiceConfig(statesvc.StrategyPersistent),
		data:          models.DefaultDemoData(),
		log:           newOplog(models.MaxLogEntries),
		surface:       newErrorSurface(),
		autosaveDelay: defaultAutosaveDelay,
	}
	for _, opt := range opts {
		opt(c)
	}

	if svc == nil {
		slog.Warn("demo: no state service wired, operations will fail until one is present")
		c.log.append("initialized without a state service")
		return c
	}

	svc.Configure(c.cfg)
	c.log.append(fmt.Sprintf("registered with the state service (%s storage)", c.cfg.Strategy))
	c.subscribeHooks()
	return c
}

// subscribeHooks registers the lifecycle notifications. A failed
// registration is logged and skipped, never fatal: the demo works
// without notifications.
func (c *Component) subscribeHooks() {
	hooks := []struct {
		name string
		sub  func() (statesvc.Unsubscribe, error)
	}{
		{"save", func() (statesvc.Unsubscribe, error) { return c.svc.OnSave(c.onServiceSave) }},
		{"restore", func() (statesvc.Unsubscribe, error) { return c.svc.OnRestore(c.onServiceRestore) }},
		{"clear", func() (statesvc.Unsubscribe, error) { return c.svc.OnClear(c.onServiceClear) }},
	}
	for _, h := range hooks {
		unsub, err := h.sub()
		if err != nil {
			slog.Warn("demo: lifecycle hook registration failed", "hook", h.name, "err", err)
			c.log.append(fmt.Sprintf("could not subscribe to %s notifications", h.name))
			continue
		}
		c.unsubs = append(c.unsubs, unsub)
	}
}

// Close tears the component down: the pending auto-save is released,
// every lifecycle hook is unsubscribed, and further operations are
// refused. Each unsubscribe runs isolated so one failure cannot leak
// the rest. Close is idempotent.
func (c *Component) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.stopAutosaveLocked()
	unsubs := c.unsubs
	c.unsubs = nil
	c.mu.Unlock()

	for _, unsub := range unsubs {
		releaseHook(unsub)
	}
	slog.Info("demo: component closed")
}

// releaseHook runs one unsubscribe, converting a panic into a log line.
func releaseHook(fn statesvc.Unsubscribe) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("demo: hook unsubscribe panicked", "panic", r)
		}
	}()
	if fn != nil {
		fn()
	}
}

// Snapshot returns the full component view.
func (c *Component) Snapshot() models.StatusSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Component) snapshotLocked() models.StatusSnapshot {
	status := c.status
	status.Log = c.log.snapshot()
	var rec *models.ErrorRecord
	if c.lastErr != nil {
		cp := *c.lastErr
		rec = &cp
	}
	return models.StatusSnapshot{
		Data:             c.data,
		Status:           status,
		Error:            rec,
		ErrorSurface:     c.surface.current(),
		Busy:             c.busy,
		ServiceAvailable: c.svc != nil,
	}
}

// publish pushes a snapshot to SSE subscribers. Callers pass the
// snapshot they took under the lock.
func (c *Component) publish(snap models.StatusSnapshot) {
	if c.bus != nil {
		c.bus.Publish(snap)
	}
}

// Strategy reports the storage strategy declared at registration.
func (c *Component) Strategy() statesvc.Strategy {
	return c.cfg.Strategy
}

// Registration reports the configuration the state service accepted.
func (c *Component) Registration() (statesvc.Config, bool) {
	if c.svc == nil {
		return statesvc.Config{}, false
	}
	return c.svc.Configuration()
}

// Update applies an edit to the dataset. Only non-nil fields change; the
// timestamp refreshes unless the edit sets one explicitly. With the
// auto-save preference on, the edit (re)arms the debounced save; an edit
// that turns the preference off releases any pending one.
func (c *Component) Update(upd models.DemoDataUpdate) models.StatusSnapshot {
	c.mu.Lock()
	if upd.UserInput != nil {
		c.data.UserInput = *upd.UserInput
	}
	if upd.Counter != nil {
		c.data.Counter = *upd.Counter
	}
	if upd.Preferences != nil {
		if upd.Preferences.AutoSave != nil {
			c.data.Preferences.AutoSave = *upd.Preferences.AutoSave
		}
		if upd.Preferences.ShowDebugInfo != nil {
			c.data.Preferences.ShowDebugInfo = *upd.Preferences.ShowDebugInfo
		}
	}
	if upd.Timestamp != nil {
		c.data.Timestamp = *upd.Timestamp
	} else {
		c.data.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	c.rearmAfterEditLocked()
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.publish(snap)
	return snap
}

// AdjustCounter shifts the counter by delta. Like any edit it refreshes
// the timestamp and re-arms the auto-save. The counter is allowed to
// leave the valid range here; the validator rejects it at save time.
func (c *Component) AdjustCounter(delta int) models.StatusSnapshot {
	c.mu.Lock()
	c.data.Counter += delta
	c.data.Timestamp = time.Now().UTC().Format(time.RFC3339)
	c.rearmAfterEditLocked()
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.publish(snap)
	return snap
}

// ExpandError reveals the details of the surfaced error. Ignored unless
// an error is collapsed.
func (c *Component) ExpandError() models.StatusSnapshot {
	return c.fireSurface(func(s *errorSurface) { s.expand() })
}

// CollapseError folds the expanded error back to its summary.
func (c *Component) CollapseError() models.StatusSnapshot {
	return c.fireSurface(func(s *errorSurface) { s.collapse() })
}

// ClearError dismisses the surfaced error entirely.
func (c *Component) ClearError() models.StatusSnapshot {
	c.mu.Lock()
	c.lastErr = nil
	c.surface.clear()
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.publish(snap)
	return snap
}

func (c *Component) fireSurface(fire func(*errorSurface)) models.StatusSnapshot {
	c.mu.Lock()
	fire(c.surface)
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.publish(snap)
	return snap
}

// ClearLog empties the operation log.
func (c *Component) ClearLog() models.StatusSnapshot {
	c.mu.Lock()
	c.log.clear()
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.publish(snap)
	return snap
}

// Service notification handlers. The service calls these synchronously
// after an operation commits, on whatever goroutine performed it.

func (c *Component) onServiceSave(env models.Envelope) {
	c.mu.Lock()
	c.log.append(fmt.Sprintf("service accepted save #%d", env.SaveCount))
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.publish(snap)
}

func (c *Component) onServiceRestore(models.Envelope) {
	c.mu.Lock()
	c.log.append("service delivered stored state")
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.publish(snap)
}

func (c *Component) onServiceClear() {
	c.mu.Lock()
	c.log.append("service dropped stored state")
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.publish(snap)
}
