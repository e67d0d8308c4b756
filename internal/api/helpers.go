// Package api implements the demo host's HTTP REST API.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hostkit/statedemo/internal/demo"
	"github.com/hostkit/statedemo/internal/hostcfg"
	"github.com/hostkit/statedemo/internal/models"
	"github.com/hostkit/statedemo/internal/statesvc"
)

// Handlers holds dependencies for all HTTP handlers.
type Handlers struct {
	comp   Component
	host   HostConfig
	dev    DevControls
	events EventBus
	info   Info
}

// Component is the interface the handlers use to drive the demo.
type Component interface {
	Snapshot() models.StatusSnapshot
	Update(upd models.DemoDataUpdate) models.StatusSnapshot
	AdjustCounter(delta int) models.StatusSnapshot
	Save(ctx context.Context) error
	Restore(ctx context.Context) error
	Clear(ctx context.Context) error
	ExpandError() models.StatusSnapshot
	CollapseError() models.StatusSnapshot
	ClearError() models.StatusSnapshot
	ClearLog() models.StatusSnapshot
	Strategy() statesvc.Strategy
	Registration() (statesvc.Config, bool)
}

// HostConfig provides the display configuration shown to clients.
type HostConfig interface {
	Display() hostcfg.Display
}

// DevControls is the fault-injection surface of the development state
// service. Nil when the demo runs against a real host.
type DevControls interface {
	SetOffline(offline bool)
	Offline() bool
}

// EventBus is the interface for subscribing to status snapshots.
type EventBus interface {
	Subscribe(id string) <-chan models.StatusSnapshot
	Unsubscribe(id string)
}

// Info is the static host metadata reported by /api/info.
type Info struct {
	Name     string `json:"name"`
	Version  string `json:"version"`
	Hostname string `json:"hostname"`
}

// operationFailure is the response body for a classified operation
// failure: the standard error envelope plus the classified record so
// clients can drive the error surface from it.
type operationFailure struct {
	models.AppError
	Record models.ErrorRecord `json:"record"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes an AppError as a JSON response.
func writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	if appErr, ok := err.(*models.AppError); ok {
		w.WriteHeader(appErr.Status)
		_ = json.NewEncoder(w).Encode(appErr)
		return
	}
	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(models.ErrInternal(err.Error()))
}

// writeOperationError maps a failed demo operation onto the API error
// shape. Busy rejections become conflicts; classified failures take the
// status of their category and attach the record.
func writeOperationError(w http.ResponseWriter, err error) {
	if errors.Is(err, demo.ErrBusy) {
		writeError(w, models.ErrConflict("operation already in progress"))
		return
	}
	if errors.Is(err, demo.ErrClosed) {
		writeError(w, models.ErrUnavailable("demo component is shut down"))
		return
	}
	var opErr *demo.OperationError
	if errors.As(err, &opErr) {
		app := appErrorForCategory(opErr.Record.Category, opErr.Record.Message)
		writeJSON(w, app.Status, operationFailure{AppError: *app, Record: opErr.Record})
		return
	}
	writeError(w, models.ErrInternal(err.Error()))
}

func appErrorForCategory(cat models.ErrorCategory, msg string) *models.AppError {
	switch cat {
	case models.CategoryService:
		return models.ErrUnavailable(msg)
	case models.CategoryValidation:
		return models.ErrBadRequest(msg)
	case models.CategoryNetwork:
		return models.ErrBadGateway(msg)
	default:
		return models.ErrInternal(msg)
	}
}
