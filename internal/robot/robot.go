// ============================================================================
// trajexec
// ============================================================================
//
// Package:     robot
// Description: The read-only robot-model collaborator interface (spec §6.1):
//              joint names, per-joint type, joint groups, and per-joint
//              bounds. A concrete YAML-backed implementation lives in
//              internal/robotmodel; this package holds only the contract
//              and value types, so the core never imports yaml directly.
// License:     MIT
// ============================================================================

package robot

import "github.com/msto63/trajexec/internal/trajectory"

// Bounds describes the allowed range of a joint's position, and for
// prismatic/revolute joints its velocity and acceleration limits.
type Bounds struct {
	MinPosition     float64
	MaxPosition     float64
	MaxVelocity     float64
	MaxAcceleration float64
}

// Model is the read-only kinematic-description collaborator of spec §6.1.
type Model interface {
	// JointNames returns every actuated joint the model knows about.
	JointNames() []string

	// JointType returns the joint's type and whether the name is known.
	JointType(name string) (trajectory.JointType, bool)

	// Groups returns the names of all declared joint groups.
	Groups() []string

	// GroupJoints returns the joints belonging to a named group, and
	// whether the group name is known.
	GroupJoints(group string) ([]string, bool)

	// Bounds returns the position/velocity/acceleration limits of a
	// joint, and whether the name is known.
	Bounds(name string) (Bounds, bool)
}
