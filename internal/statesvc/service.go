// Package statesvc defines the host state-service contract the demo codes
// against, plus a development implementation backed by memory or an
// atomic JSON file.
package statesvc

import (
	"context"
	"errors"
	"fmt"

	"github.com/hostkit/statedemo/internal/models"
)

// Strategy selects where the service keeps a client's record.
type Strategy string

const (
	// StrategySession keeps the record in memory for the life of the
	// process.
	StrategySession Strategy = "session"
	// StrategyPersistent writes the record to disk so it survives a
	// restart.
	StrategyPersistent Strategy = "persistent"
)

// FieldSpec describes one top-level envelope key in the declared schema.
type FieldSpec struct {
	Type     string `json:"type"`
	Required bool   `json:"required"`
	Default  any    `json:"default,omitempty"`
}

// Config is the registration a client submits before using the service.
type Config struct {
	ID           string               `json:"id"`
	Strategy     Strategy             `json:"strategy"`
	PreserveKeys []string             `json:"preserveKeys"`
	Schema       map[string]FieldSpec `json:"schema,omitempty"`
	MaxBytes     int                  `json:"maxBytes"`
}

// Lifecycle hook signatures. Hooks run synchronously after the
// triggering operation commits.
type (
	SaveHook    func(env models.Envelope)
	RestoreHook func(env models.Envelope)
	ClearHook   func()
)

// Unsubscribe removes a previously registered hook. Calling it more than
// once is harmless.
type Unsubscribe func()

// Service is the state-service surface the demo component depends on.
type Service interface {
	// Configure registers the client's id, strategy, preserve keys,
	// schema and size limit. A later call replaces the registration.
	Configure(cfg Config)

	// Configuration reports the current registration, if any.
	Configuration() (Config, bool)

	// SaveState stores the envelope under the configured id.
	SaveState(ctx context.Context, env models.Envelope) error

	// GetState returns the stored envelope, or (nil, nil) when nothing
	// has been saved.
	GetState(ctx context.Context) (*models.Envelope, error)

	// ClearState removes the stored envelope. Clearing an absent record
	// is not an error.
	ClearState(ctx context.Context) error

	// OnSave, OnRestore and OnClear register lifecycle hooks and return
	// a function that removes them again.
	OnSave(fn SaveHook) (Unsubscribe, error)
	OnRestore(fn RestoreHook) (Unsubscribe, error)
	OnClear(fn ClearHook) (Unsubscribe, error)
}

// Sentinel errors returned by service implementations. Callers classify
// failures with errors.Is / errors.As on these instead of matching
// message text.
var (
	ErrUnavailable   = errors.New("state service not available")
	ErrNotConfigured = errors.New("state service not configured")
	ErrOffline       = errors.New("network unreachable: state service offline")
	ErrQuotaExceeded = errors.New("save quota exceeded, try again later")
)

// SizeError reports an envelope over the configured size limit.
type SizeError struct {
	Size  int
	Limit int
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("invalid save payload: %d bytes exceeds the %d byte limit", e.Size, e.Limit)
}
