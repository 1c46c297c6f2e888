package permissions

import "fmt"

// Cause records why a decision was taken. It is meant for logs and metrics;
// callers see the same generic Reason for every deny.
type Cause string

const (
	CauseGranted       Cause = "granted"
	CauseNotGranted    Cause = "not_granted"
	CauseUnknownModule Cause = "unknown_module"
	CauseUnknownAction Cause = "unknown_action"
	CauseMissingMatrix Cause = "missing_matrix"
)

// Decision is the outcome of Authorize
type Decision struct {
	Allowed bool
	Module  Module
	Action  Action
	Reason  string
	Cause   Cause
}

// Err returns nil when allowed, a *DeniedError otherwise
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return &DeniedError{Module: d.Module, Action: d.Action, Cause: d.Cause}
}

// DeniedError is the error form of a deny decision
type DeniedError struct {
	Module Module
	Action Action
	Cause  Cause
}

func (e *DeniedError) Error() string {
	return denyReason(e.Module, e.Action)
}

func denyReason(module Module, action Action) string {
	return fmt.Sprintf("insufficient permission for module=%s, action=%s", module, action)
}

// Authorize decides whether matrix grants action on module. It only reads the
// flag for the requested action and never infers one action from another.
// A nil matrix, an unknown module or an unknown action is a deny.
func Authorize(matrix Matrix, module Module, action Action) Decision {
	d := Decision{Module: module, Action: action}

	switch {
	case matrix == nil:
		d.Cause = CauseMissingMatrix
	case !module.Valid():
		d.Cause = CauseUnknownModule
	case !action.Valid():
		d.Cause = CauseUnknownAction
	case !matrix.Get(module).Allows(action):
		d.Cause = CauseNotGranted
	default:
		d.Allowed = true
		d.Cause = CauseGranted
		return d
	}

	d.Reason = denyReason(module, action)
	return d
}
