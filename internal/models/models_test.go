package models_test

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/hostkit/statedemo/internal/models"
)

func TestDefaultDemoData(t *testing.T) {
	d := models.DefaultDemoData()

	if d.UserInput != "" {
		t.Errorf("UserInput = %q, want empty", d.UserInput)
	}
	if d.Counter != 0 {
		t.Errorf("Counter = %d, want 0", d.Counter)
	}
	if !d.Preferences.AutoSave {
		t.Error("Preferences.AutoSave = false, want true")
	}
	if !d.Preferences.ShowDebugInfo {
		t.Error("Preferences.ShowDebugInfo = false, want true")
	}
	if _, err := time.Parse(time.RFC3339, d.Timestamp); err != nil {
		t.Errorf("Timestamp %q does not parse as RFC 3339: %v", d.Timestamp, err)
	}
}

func TestDemoData_Validate_Valid(t *testing.T) {
	d := models.DefaultDemoData()
	d.UserInput = "hello"
	d.Counter = 42

	if v := d.Validate(); len(v) != 0 {
		t.Errorf("Validate() = %v, want no violations", v)
	}
}

func TestDemoData_Validate_InputLength(t *testing.T) {
	d := models.DefaultDemoData()
	d.UserInput = strings.Repeat("x", models.MaxUserInputChars)
	if v := d.Validate(); len(v) != 0 {
		t.Errorf("input at the limit: Validate() = %v, want none", v)
	}

	d.UserInput = strings.Repeat("x", models.MaxUserInputChars+1)
	v := d.Validate()
	if len(v) != 1 {
		t.Fatalf("input over the limit: Validate() = %v, want 1 violation", v)
	}
	if !strings.Contains(v[0], "1001") {
		t.Errorf("violation %q should mention the measured length", v[0])
	}
}

// Length is counted in characters, not bytes.
func TestDemoData_Validate_InputLengthRunes(t *testing.T) {
	d := models.DefaultDemoData()
	d.UserInput = strings.Repeat("é", models.MaxUserInputChars)

	if v := d.Validate(); len(v) != 0 {
		t.Errorf("multibyte input at the limit: Validate() = %v, want none", v)
	}
}

func TestDemoData_Validate_CounterRange(t *testing.T) {
	cases := []struct {
		counter int
		ok      bool
	}{
		{models.CounterMin, true},
		{models.CounterMax, true},
		{models.CounterMin - 1, false},
		{models.CounterMax + 1, false},
	}
	for _, tc := range cases {
		d := models.DefaultDemoData()
		d.Counter = tc.counter
		v := d.Validate()
		if tc.ok && len(v) != 0 {
			t.Errorf("counter %d: Validate() = %v, want none", tc.counter, v)
		}
		if !tc.ok && len(v) != 1 {
			t.Errorf("counter %d: Validate() = %v, want 1 violation", tc.counter, v)
		}
	}
}

func TestDemoData_Validate_Timestamp(t *testing.T) {
	d := models.DefaultDemoData()
	d.Timestamp = "not-a-date"

	v := d.Validate()
	if len(v) != 1 {
		t.Fatalf("Validate() = %v, want 1 violation", v)
	}
	if !strings.Contains(v[0], "not-a-date") {
		t.Errorf("violation %q should quote the bad timestamp", v[0])
	}
}

// Every rule is checked; a failing input does not mask a failing counter.
func TestDemoData_Validate_AllRulesReported(t *testing.T) {
	d := models.DemoData{
		UserInput: strings.Repeat("a", models.MaxUserInputChars+5),
		Counter:   models.CounterMax + 5,
		Timestamp: "garbage",
	}

	v := d.Validate()
	if len(v) != 3 {
		t.Fatalf("Validate() returned %d violations, want 3: %v", len(v), v)
	}
}

func TestValidationError_JoinsViolations(t *testing.T) {
	err := &models.ValidationError{Violations: []string{"first problem", "second problem"}}

	msg := err.Error()
	if !strings.Contains(msg, "first problem, second problem") {
		t.Errorf("Error() = %q, want comma-joined violations", msg)
	}
	if !strings.Contains(msg, "validation") {
		t.Errorf("Error() = %q, want a message identifying a validation failure", msg)
	}
}

func TestEnvelope_EncodedSize(t *testing.T) {
	d := models.DefaultDemoData()
	env := models.Envelope{DemoData: &d, SaveCount: 1}

	n, err := env.EncodedSize()
	if err != nil {
		t.Fatalf("EncodedSize: %v", err)
	}
	b, _ := json.Marshal(env)
	if n != len(b) {
		t.Errorf("EncodedSize = %d, want marshaled length %d", n, len(b))
	}
}

func TestEnvelope_WireKeys(t *testing.T) {
	d := models.DefaultDemoData()
	env := models.Envelope{DemoData: &d, SaveCount: 2, RestoreCount: 3}

	b, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	for _, key := range []string{"demoData", "saveCount", "restoreCount"} {
		if _, ok := m[key]; !ok {
			t.Errorf("marshaled envelope missing key %q: %s", key, b)
		}
	}
}

// A record without the dataset key must round-trip to a nil DemoData so
// restore can tell "missing" from "zero".
func TestEnvelope_AbsentDemoData(t *testing.T) {
	var env models.Envelope
	if err := json.Unmarshal([]byte(`{"saveCount":4,"restoreCount":1}`), &env); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if env.DemoData != nil {
		t.Errorf("DemoData = %+v, want nil", env.DemoData)
	}
	if env.SaveCount != 4 {
		t.Errorf("SaveCount = %d, want 4", env.SaveCount)
	}
}

func TestAppError_JSON(t *testing.T) {
	appErr := models.ErrNotFound("no saved state found")

	b, err := json.Marshal(appErr)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if m["error"] != "NOT_FOUND" {
		t.Errorf("error code = %v, want NOT_FOUND", m["error"])
	}
	if _, ok := m["status"]; ok {
		t.Error("HTTP status should not be serialized")
	}
}
