// ============================================================================
// trajexec
// ============================================================================
//
// Package:     trajectory
// Description: The wire-free, in-process trajectory data model: joint
//              trajectories with parallel position/velocity/acceleration
//              rows, and the multi-DOF companion structure used by mobile
//              or floating joints. New to this module; shaped after the
//              RobotTrajectory layout documented in the original header's
//              trajectory_execution_manager, but expressed as plain Go
//              structs rather than ROS messages.
// License:     MIT
// ============================================================================

package trajectory

import "time"

// JointType classifies how a joint's position value behaves, per spec §3.
type JointType int

const (
	Revolute JointType = iota
	Continuous
	Prismatic
	Fixed
)

func (t JointType) String() string {
	switch t {
	case Revolute:
		return "revolute"
	case Continuous:
		return "continuous"
	case Prismatic:
		return "prismatic"
	case Fixed:
		return "fixed"
	default:
		return "unknown"
	}
}

// Waypoint is one row of a JointTrajectory: a point in time with position
// and, optionally, velocity/acceleration/effort values aligned with the
// trajectory's JointNames.
type Waypoint struct {
	TimeFromStart time.Duration
	Positions     []float64
	Velocities    []float64
	Accelerations []float64
	Effort        []float64
}

// JointTrajectory is a single-DOF joint trajectory: an ordered joint-name
// list and a time-ordered sequence of waypoints, each row-aligned with
// JointNames.
type JointTrajectory struct {
	JointNames []string
	Waypoints  []Waypoint
}

// MultiDOFWaypoint is one row of a MultiDOFJointTrajectory, carrying a
// transform per named multi-DOF joint instead of scalar positions.
type MultiDOFWaypoint struct {
	TimeFromStart time.Duration
	Transforms    []Transform
}

// Transform is a minimal rigid transform: translation plus a unit
// quaternion rotation, matching the fields a multi-DOF (e.g. floating
// base) joint needs.
type Transform struct {
	X, Y, Z        float64
	QX, QY, QZ, QW float64
}

// MultiDOFJointTrajectory parallels JointTrajectory for joints whose state
// is not a scalar, e.g. a mobile base's planar or floating joint.
type MultiDOFJointTrajectory struct {
	JointNames []string
	Waypoints  []MultiDOFWaypoint
}

// RobotTrajectory bundles the two parallel sub-structures spec §3
// describes: a single-DOF joint trajectory and a multi-DOF joint
// trajectory. Either may be empty.
type RobotTrajectory struct {
	JointTrajectory         JointTrajectory
	MultiDOFJointTrajectory MultiDOFJointTrajectory
}

// JointNames returns the union of joint names actuated by either
// sub-structure, in JointTrajectory-then-MultiDOFJointTrajectory order.
func (rt RobotTrajectory) JointNames() []string {
	names := make([]string, 0, len(rt.JointTrajectory.JointNames)+len(rt.MultiDOFJointTrajectory.JointNames))
	names = append(names, rt.JointTrajectory.JointNames...)
	names = append(names, rt.MultiDOFJointTrajectory.JointNames...)
	return names
}

// Empty reports whether the trajectory actuates no joints at all.
func (rt RobotTrajectory) Empty() bool {
	return len(rt.JointTrajectory.JointNames) == 0 && len(rt.MultiDOFJointTrajectory.JointNames) == 0
}

// LastWaypointTime returns the TimeFromStart of the trajectory's final
// waypoint across both sub-structures, the expected duration used for
// deadline computation. Zero if the trajectory has no waypoints.
func (rt RobotTrajectory) LastWaypointTime() time.Duration {
	var last time.Duration
	if n := len(rt.JointTrajectory.Waypoints); n > 0 {
		if t := rt.JointTrajectory.Waypoints[n-1].TimeFromStart; t > last {
			last = t
		}
	}
	if n := len(rt.MultiDOFJointTrajectory.Waypoints); n > 0 {
		if t := rt.MultiDOFJointTrajectory.Waypoints[n-1].TimeFromStart; t > last {
			last = t
		}
	}
	return last
}

// FirstJointPositions returns the joint-name-to-position map of the first
// waypoint of the single-DOF sub-structure, used by the start-state
// validator. Returns nil if there are no waypoints.
func (rt RobotTrajectory) FirstJointPositions() map[string]float64 {
	if len(rt.JointTrajectory.Waypoints) == 0 {
		return nil
	}
	first := rt.JointTrajectory.Waypoints[0]
	positions := make(map[string]float64, len(rt.JointTrajectory.JointNames))
	for i, name := range rt.JointTrajectory.JointNames {
		if i < len(first.Positions) {
			positions[name] = first.Positions[i]
		}
	}
	return positions
}

// SingleWaypoint builds a one-waypoint JointTrajectory at time 0 from a
// flat joint-name/position pair, the normalisation spec §4.9 describes for
// pushAndExecute overloads that take a single JointState.
func SingleWaypoint(jointNames []string, positions []float64) RobotTrajectory {
	return RobotTrajectory{
		JointTrajectory: JointTrajectory{
			JointNames: jointNames,
			Waypoints: []Waypoint{
				{TimeFromStart: 0, Positions: positions},
			},
		},
	}
}
