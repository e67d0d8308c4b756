package models

import "time"

// MaxLogEntries bounds the operation log; the oldest entry is dropped
// once the log is full.
const MaxLogEntries = 20

// LogEntry is one line of the operation log.
type LogEntry struct {
	Time    time.Time `json:"time"`
	Message string    `json:"message"`
}

// OperationStatus tracks the lifecycle counters and the bounded log of
// recent operations.
type OperationStatus struct {
	SaveCount    int        `json:"saveCount"`
	RestoreCount int        `json:"restoreCount"`
	LastSave     *time.Time `json:"lastSave,omitempty"`
	LastRestore  *time.Time `json:"lastRestore,omitempty"`
	Log          []LogEntry `json:"log"`
}

// ErrorCategory classifies a failed operation for display.
type ErrorCategory string

// Error categories, in the order the classifier tries them.
const (
	CategoryService    ErrorCategory = "service"
	CategoryValidation ErrorCategory = "validation"
	CategoryNetwork    ErrorCategory = "network"
	CategoryUnknown    ErrorCategory = "unknown"
)

// ErrorRecord is the classified description of a failed operation, kept
// until the next attempt starts or the user dismisses it.
type ErrorRecord struct {
	Category  ErrorCategory `json:"category"`
	Message   string        `json:"message"`
	Details   any           `json:"details,omitempty"`
	Trace     string        `json:"trace,omitempty"`
	Operation string        `json:"operation"`
	Time      time.Time     `json:"time"`
}

// StatusSnapshot is the full component view published to subscribers and
// returned by the API.
type StatusSnapshot struct {
	Data             DemoData        `json:"data"`
	Status           OperationStatus `json:"status"`
	Error            *ErrorRecord    `json:"error,omitempty"`
	ErrorSurface     string          `json:"errorSurface"`
	Busy             bool            `json:"busy"`
	ServiceAvailable bool            `json:"serviceAvailable"`
}
