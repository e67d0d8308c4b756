package models

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// Validate checks d against the demo's local rules and returns one message
// per violation. Every rule is evaluated even after an earlier one fails,
// so callers see the full list. An empty result means the data is valid.
func (d DemoData) Validate() []string {
	var violations []string
	if n := utf8.RuneCountInString(d.UserInput); n > MaxUserInputChars {
		violations = append(violations, fmt.Sprintf("input text is %d characters, maximum is %d", n, MaxUserInputChars))
	}
	if d.Counter < CounterMin || d.Counter > CounterMax {
		violations = append(violations, fmt.Sprintf("counter %d is outside the range [%d, %d]", d.Counter, CounterMin, CounterMax))
	}
	if _, err := time.Parse(time.RFC3339, d.Timestamp); err != nil {
		violations = append(violations, fmt.Sprintf("timestamp %q is not a valid RFC 3339 instant", d.Timestamp))
	}
	return violations
}
