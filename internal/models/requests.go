package models

// DemoDataUpdate is the PATCH body for editing the demo dataset. Only
// non-nil fields are applied. The timestamp refreshes automatically on
// any edit unless the body overrides it explicitly.
type DemoDataUpdate struct {
	UserInput   *string            `json:"userInput,omitempty"`
	Counter     *int               `json:"counter,omitempty"`
	Timestamp   *string            `json:"timestamp,omitempty"`
	Preferences *PreferencesUpdate `json:"preferences,omitempty"`
}

// PreferencesUpdate is the nested PATCH body for the preference toggles.
type PreferencesUpdate struct {
	AutoSave      *bool `json:"autoSave,omitempty"`
	ShowDebugInfo *bool `json:"showDebugInfo,omitempty"`
}

// OfflineRequest is the POST body for toggling the development state
// service offline.
type OfflineRequest struct {
	Offline bool `json:"offline"`
}
