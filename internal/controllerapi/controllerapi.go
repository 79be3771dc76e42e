// ============================================================================
// trajexec
// ============================================================================
//
// Package:     controllerapi
// Description: The abstract controller-manager collaborator contract of
//              spec §6.3 (Manager) and the ControllerHandle value object of
//              spec §3 (Handle). Kept in their own package, separate from
//              any concrete implementation, so the executor and continuous
//              executor depend only on the contract, not on
//              internal/controllermgr's in-process implementation.
// License:     MIT
// ============================================================================

package controllerapi

import (
	"time"

	"github.com/msto63/trajexec/internal/execstatus"
	"github.com/msto63/trajexec/internal/trajectory"
)

// Handle is the ControllerHandle collaborator of spec §3: an opaque object
// scoped to a single part dispatch.
type Handle interface {
	SendTrajectory(part trajectory.RobotTrajectory) error
	Cancel()
	WaitForExecution(timeout time.Duration) execstatus.Status
	LastExecutionStatus() execstatus.Status
}

// Manager is the controller-manager plugin collaborator of spec §6.3.
type Manager interface {
	List() []string
	Joints(name string) ([]string, bool)
	State(name string) (active, isDefault, ok bool)
	Switch(activate, deactivate []string) bool
	Handle(name string) (Handle, error)
}
