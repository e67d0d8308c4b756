// Package models defines the data structures for the saved-state demo.
// JSON field names match the host state-service wire format exactly.
package models

import "time"

// Validation limits for the demo dataset.
const (
	MaxUserInputChars = 1000
	CounterMin        = -1000
	CounterMax        = 1000
)

// Preferences are the two demo toggles carried inside the dataset.
type Preferences struct {
	AutoSave      bool `json:"autoSave"`      // arm the debounced auto-save on edits
	ShowDebugInfo bool `json:"showDebugInfo"` // surface the operation log in clients
}

// DemoData is the editable dataset the demo saves and restores.
type DemoData struct {
	UserInput   string      `json:"userInput"`
	Counter     int         `json:"counter"`
	Preferences Preferences `json:"preferences"`
	Timestamp   string      `json:"timestamp"` // RFC 3339; refreshed on every edit
}

// DefaultDemoData returns the canonical fresh dataset: empty input, zero
// counter, both preferences enabled, and a current timestamp.
func DefaultDemoData() DemoData {
	return DemoData{
		UserInput: "",
		Counter:   0,
		Preferences: Preferences{
			AutoSave:      true,
			ShowDebugInfo: true,
		},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}
