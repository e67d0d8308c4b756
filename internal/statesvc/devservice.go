package statesvc

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/hostkit/statedemo/internal/models"
)

const (
	stateFileSuffix = ".json"
	debounceDelay   = 500 * time.Millisecond
)

// DevService is a stand-in for the platform state service, used when the
// demo runs outside a real host. Session records live in memory;
// persistent records are written to an atomic JSON file named after the
// configured client id, with rapid saves debounced into one write.
// Fault injection (offline flag, artificial latency, a write quota)
// exists so the demo's error handling has something real to show.
type DevService struct {
	mu      sync.Mutex
	dataDir string
	cfg     *Config

	record *models.Envelope // authoritative copy for both strategies
	loaded bool             // persistent record has been read from disk

	timer   *time.Timer // pending debounced write
	pending *models.Envelope

	offline bool
	latency time.Duration
	writes  *rate.Limiter

	hooks notifier
}

// DevOption configures a DevService at construction.
type DevOption func(*DevService)

// WithLatency delays every service call by d, simulating a remote host.
func WithLatency(d time.Duration) DevOption {
	return func(s *DevService) { s.latency = d }
}

// WithWriteQuota limits saves to perMinute, rejecting the excess with
// ErrQuotaExceeded the way hosted platforms throttle chatty clients.
func WithWriteQuota(perMinute int) DevOption {
	return func(s *DevService) {
		if perMinute <= 0 {
			return
		}
		s.writes = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
	}
}

// NewDevService creates a development state service storing persistent
// records under dataDir.
func NewDevService(dataDir string, opts ...DevOption) *DevService {
	s := &DevService{dataDir: dataDir}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Configure registers the client. Unknown strategies fall back to
// session storage; a missing size limit falls back to the demo default.
func (s *DevService) Configure(cfg Config) {
	if cfg.Strategy != StrategySession && cfg.Strategy != StrategyPersistent {
		slog.Warn("statesvc: unknown strategy, using session storage", "strategy", string(cfg.Strategy))
		cfg.Strategy = StrategySession
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = models.MaxEnvelopeBytes
	}

	s.mu.Lock()
	// Re-registration by the same client keeps its stored record; only a
	// different client id starts from a clean slate.
	if s.cfg == nil || s.cfg.ID != cfg.ID {
		s.record = nil
		s.loaded = false
	}
	s.cfg = &cfg
	s.mu.Unlock()

	slog.Info("statesvc: client configured",
		"id", cfg.ID,
		"strategy", string(cfg.Strategy),
		"preserveKeys", cfg.PreserveKeys,
		"maxBytes", cfg.MaxBytes)
}

// Configuration reports the current registration, if any.
func (s *DevService) Configuration() (Config, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cfg == nil {
		return Config{}, false
	}
	return *s.cfg, true
}

// SaveState stores the envelope, keeping only the configured preserve
// keys, and notifies save hooks on success.
func (s *DevService) SaveState(ctx context.Context, env models.Envelope) error {
	if err := s.wait(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	if s.offline {
		s.mu.Unlock()
		return ErrOffline
	}
	if s.cfg == nil {
		s.mu.Unlock()
		return ErrNotConfigured
	}
	cfg := *s.cfg
	s.mu.Unlock()

	size, err := env.EncodedSize()
	if err != nil {
		return err
	}
	if size > cfg.MaxBytes {
		return &SizeError{Size: size, Limit: cfg.MaxBytes}
	}
	if s.writes != nil && !s.writes.Allow() {
		return ErrQuotaExceeded
	}

	kept, err := filterKeys(env, cfg.PreserveKeys)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.record = &kept
	s.loaded = true
	if cfg.Strategy == StrategyPersistent {
		s.scheduleWriteLocked(kept)
	}
	s.mu.Unlock()

	s.hooks.notifySave(kept)
	return nil
}

// GetState returns a copy of the stored envelope, or (nil, nil) when no
// record exists. Restore hooks fire when a record is returned.
func (s *DevService) GetState(ctx context.Context) (*models.Envelope, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.offline {
		s.mu.Unlock()
		return nil, ErrOffline
	}
	if s.cfg == nil {
		s.mu.Unlock()
		return nil, ErrNotConfigured
	}
	cfg := *s.cfg
	if !s.loaded && cfg.Strategy == StrategyPersistent {
		s.record = s.readFileLocked()
		s.loaded = true
	}
	var out *models.Envelope
	if s.record != nil {
		cp := *s.record
		out = &cp
	}
	s.mu.Unlock()

	if out == nil {
		return nil, nil
	}
	applySchemaDefaults(out, cfg.Schema)
	s.hooks.notifyRestore(*out)
	return out, nil
}

// ClearState removes the stored record (and its file under the
// persistent strategy) and notifies clear hooks.
func (s *DevService) ClearState(ctx context.Context) error {
	if err := s.wait(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	if s.offline {
		s.mu.Unlock()
		return ErrOffline
	}
	if s.cfg == nil {
		s.mu.Unlock()
		return ErrNotConfigured
	}
	s.record = nil
	s.pending = nil
	s.loaded = true
	var rmErr error
	if s.cfg.Strategy == StrategyPersistent {
		if s.timer != nil {
			s.timer.Stop()
			s.timer = nil
		}
		if err := os.Remove(s.filePathLocked()); err != nil && !errors.Is(err, os.ErrNotExist) {
			rmErr = err
		}
	}
	s.mu.Unlock()

	if rmErr != nil {
		return rmErr
	}
	s.hooks.notifyClear()
	return nil
}

// OnSave registers a hook called after every successful save.
func (s *DevService) OnSave(fn SaveHook) (Unsubscribe, error) {
	return s.hooks.onSave(fn), nil
}

// OnRestore registers a hook called whenever a stored record is read.
func (s *DevService) OnRestore(fn RestoreHook) (Unsubscribe, error) {
	return s.hooks.onRestore(fn), nil
}

// OnClear registers a hook called after every successful clear.
func (s *DevService) OnClear(fn ClearHook) (Unsubscribe, error) {
	return s.hooks.onClear(fn), nil
}

// SetOffline toggles the simulated outage. While offline every call
// fails with ErrOffline.
func (s *DevService) SetOffline(offline bool) {
	s.mu.Lock()
	s.offline = offline
	s.mu.Unlock()
	slog.Info("statesvc: offline toggled", "offline", offline)
}

// Offline reports whether the simulated outage is active.
func (s *DevService) Offline() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.offline
}

// Flush writes any pending persistent record immediately.
func (s *DevService) Flush() error {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	env := s.pending
	s.pending = nil
	path := s.filePathLocked()
	s.mu.Unlock()

	if env == nil {
		return nil
	}
	return writeAtomic(path, *env)
}

// Close flushes pending writes. The service holds no other resources.
func (s *DevService) Close() error { return s.Flush() }

// wait simulates network latency, honoring context cancellation.
func (s *DevService) wait(ctx context.Context) error {
	if s.latency <= 0 {
		return nil
	}
	t := time.NewTimer(s.latency)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// scheduleWriteLocked arms (or re-arms) the debounced disk write. The
// actual write happens after 500ms of no further saves.
func (s *DevService) scheduleWriteLocked(env models.Envelope) {
	s.pending = &env
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(debounceDelay, func() {
		s.mu.Lock()
		pending := s.pending
		s.pending = nil
		path := s.filePathLocked()
		s.mu.Unlock()
		if pending != nil {
			if err := writeAtomic(path, *pending); err != nil {
				slog.Error("statesvc: failed to write state file", "path", path, "err", err)
			}
		}
	})
}

// readFileLocked loads the persisted record. A missing or corrupt file is
// treated as no saved state rather than a failed read.
func (s *DevService) readFileLocked() *models.Envelope {
	path := s.filePathLocked()
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Warn("statesvc: unreadable state file, treating as absent", "path", path, "err", err)
		}
		return nil
	}
	var env models.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		slog.Warn("statesvc: corrupt state file, treating as absent", "path", path, "err", err)
		return nil
	}
	return &env
}

func (s *DevService) filePathLocked() string {
	id := "state"
	if s.cfg != nil && s.cfg.ID != "" {
		id = s.cfg.ID
	}
	return filepath.Join(s.dataDir, id+stateFileSuffix)
}

// filterKeys drops envelope keys outside the preserve list, mirroring
// how the platform only persists declared keys.
func filterKeys(env models.Envelope, keys []string) (models.Envelope, error) {
	if len(keys) == 0 {
		return env, nil
	}
	raw, err := json.Marshal(env)
	if err != nil {
		return models.Envelope{}, err
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return models.Envelope{}, err
	}
	keep := make(map[string]bool, len(keys))
	for _, k := range keys {
		keep[k] = true
	}
	for k := range m {
		if !keep[k] {
			delete(m, k)
		}
	}
	merged, err := json.Marshal(m)
	if err != nil {
		return models.Envelope{}, err
	}
	var kept models.Envelope
	if err := json.Unmarshal(merged, &kept); err != nil {
		return models.Envelope{}, err
	}
	return kept, nil
}

// applySchemaDefaults fills the dataset from the declared default when a
// record carries no demoData key, so clients always see a fully
// populated record. Count keys default to their zero values, which JSON
// decoding already produces.
func applySchemaDefaults(env *models.Envelope, schema map[string]FieldSpec) {
	if env.DemoData != nil {
		return
	}
	spec, ok := schema["demoData"]
	if !ok || spec.Default == nil {
		return
	}
	raw, err := json.Marshal(spec.Default)
	if err != nil {
		return
	}
	var d models.DemoData
	if err := json.Unmarshal(raw, &d); err != nil {
		slog.Warn("statesvc: schema default for demoData does not decode", "err", err)
		return
	}
	env.DemoData = &d
}

// writeAtomic writes the envelope to path via a temp file and rename
// (atomic on Linux), creating the directory if needed.
func writeAtomic(path string, env models.Envelope) error {
	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

// Ensure DevService implements Service.
var _ Service = (*DevService)(nil)
