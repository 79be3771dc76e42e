// ============================================================================
// trajexec
// ============================================================================
//
// Package:     executil
// Description: Constructors for the six error kinds surfaced to callers of
//              the trajectory executor (spec §7): ConfigurationError,
//              PreconditionError, DispatchError, TimeoutError,
//              PreemptedError and ControllerFailureError. Each is a thin,
//              named wrapper around errorx.Error so call sites and logs can
//              tell the kinds apart without string matching.
// License:     MIT
// ============================================================================

package executil

import (
	"fmt"

	"github.com/msto63/trajexec/internal/telemetry/errorx"
)

// ConfigurationError reports that no controller covers the requested
// joints, that distribution left joints unassigned, or that a trajectory
// has no joints. Returned synchronously from Push.
func ConfigurationError(operation, reason string, details map[string]interface{}) *errorx.Error {
	return errorx.New(fmt.Sprintf("%s: %s", operation, reason)).
		WithCode(errorx.CodeConfiguration).
		WithSeverity(errorx.SeverityLow).
		WithDetails(withOperation(operation, details))
}

// PreconditionError reports that unmanaged required controllers are not
// active, or that start-state validation failed.
func PreconditionError(operation, reason string, details map[string]interface{}) *errorx.Error {
	return errorx.New(fmt.Sprintf("%s: %s", operation, reason)).
		WithCode(errorx.CodePrecondition).
		WithSeverity(errorx.SeverityMedium).
		WithDetails(withOperation(operation, details))
}

// DispatchError reports that acquiring or sending to a controller handle failed.
func DispatchError(operation string, cause error, details map[string]interface{}) *errorx.Error {
	return errorx.Wrap(cause, fmt.Sprintf("%s: dispatch failed", operation)).
		WithCode(errorx.CodeDispatch).
		WithSeverity(errorx.SeverityHigh).
		WithDetails(withOperation(operation, details))
}

// TimeoutError reports that a part's deadline was exceeded before it
// reached a terminal state.
func TimeoutError(operation string, details map[string]interface{}) *errorx.Error {
	return errorx.New(fmt.Sprintf("%s: deadline exceeded", operation)).
		WithCode(errorx.CodeTimeout).
		WithSeverity(errorx.SeverityMedium).
		WithDetails(withOperation(operation, details))
}

// PreemptedError reports that stopExecution was invoked while running.
func PreemptedError(operation string, details map[string]interface{}) *errorx.Error {
	return errorx.New(fmt.Sprintf("%s: preempted by stop request", operation)).
		WithCode(errorx.CodePreempted).
		WithSeverity(errorx.SeverityLow).
		WithDetails(withOperation(operation, details))
}

// ControllerFailureError reports that a handle reported a non-success
// terminal status.
func ControllerFailureError(operation, controller string, details map[string]interface{}) *errorx.Error {
	d := withOperation(operation, details)
	d["controller"] = controller
	return errorx.New(fmt.Sprintf("%s: controller %q reported failure", operation, controller)).
		WithCode(errorx.CodeControllerFailure).
		WithSeverity(errorx.SeverityHigh).
		WithDetails(d)
}

func withOperation(operation string, details map[string]interface{}) map[string]interface{} {
	d := make(map[string]interface{}, len(details)+1)
	for k, v := range details {
		d[k] = v
	}
	d["operation"] = operation
	return d
}
