// ============================================================================
// trajexec
// ============================================================================
//
// Package:     errorx
// Description: Error codes used across the trajectory executor's six
//              error kinds (see internal/executil for the kind constructors).
// License:     MIT
// ============================================================================

package errorx

const (
	CodeUnknown           Code = "UNKNOWN"
	CodeConfiguration     Code = "CONFIGURATION_ERROR"
	CodePrecondition      Code = "PRECONDITION_ERROR"
	CodeDispatch          Code = "DISPATCH_ERROR"
	CodeTimeout           Code = "TIMEOUT"
	CodePreempted         Code = "PREEMPTED"
	CodeControllerFailure Code = "CONTROLLER_FAILURE"
)
