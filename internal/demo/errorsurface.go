package demo

import "github.com/qmuntal/stateless"

// Error surface states, as reported to clients.
const (
	SurfaceNoError   = "no_error"
	SurfaceCollapsed = "error_collapsed"
	SurfaceExpanded  = "error_expanded"
)

// Triggers driving the surface machine.
const (
	triggerFail     = "fail"
	triggerExpand   = "expand"
	triggerCollapse = "collapse"
	triggerClear    = "clear"
)

// errorSurface tracks what the error banner shows: nothing, a collapsed
// summary, or the expanded details. Triggers that make no sense in the
// current state (expanding when nothing is shown, say) are ignored
// rather than treated as failures.
type errorSurface struct {
	sm *stateless.StateMachine
}

func newErrorSurface() *errorSurface {
	sm := stateless.NewStateMachine(SurfaceNoError)

	sm.Configure(SurfaceNoError).
		Permit(triggerFail, SurfaceCollapsed).
		Ignore(triggerExpand).
		Ignore(triggerCollapse).
		Ignore(triggerClear)

	sm.Configure(SurfaceCollapsed).
		Permit(triggerExpand, SurfaceExpanded).
		Permit(triggerClear, SurfaceNoError).
		PermitReentry(triggerFail).
		Ignore(triggerCollapse)

	// A fresh failure while expanded starts over collapsed.
	sm.Configure(SurfaceExpanded).
		Permit(triggerCollapse, SurfaceCollapsed).
		Permit(triggerClear, SurfaceNoError).
		Permit(triggerFail, SurfaceCollapsed).
		Ignore(triggerExpand)

	return &errorSurface{sm: sm}
}

func (s *errorSurface) fail()     { _ = s.sm.Fire(triggerFail) }
func (s *errorSurface) expand()   { _ = s.sm.Fire(triggerExpand) }
func (s *errorSurface) collapse() { _ = s.sm.Fire(triggerCollapse) }
func (s *errorSurface) clear()    { _ = s.sm.Fire(triggerClear) }

// current returns the surface state name.
func (s *errorSurface) current() string {
	return s.sm.MustState().(string)
}
