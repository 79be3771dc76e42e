// ============================================================================
// trajexec
// ============================================================================
//
// Package:     validator
// Description: C4 Start-State Validator: compares the first waypoint of
//              each dispatched part against the live robot state within a
//              configurable tolerance. New component; the shortest-angle
//              distance routine has no matching source in original_source
//              (grepped and not found — see DESIGN.md), so it is
//              reimplemented directly from the specification's own
//              description rather than translated from elsewhere.
// License:     MIT
// ============================================================================

package validator

import (
	"fmt"
	"math"
	"sort"

	"github.com/msto63/trajexec/internal/robot"
	"github.com/msto63/trajexec/internal/statemon"
	"github.com/msto63/trajexec/internal/trajectory"
)

// Part is a single controller's slice of a context, paired with the
// controller name it targets, the minimum the validator needs.
type Part struct {
	Controller string
	Trajectory trajectory.RobotTrajectory
}

// Validate compares the first waypoint of every part against state,
// respecting each joint's type. Tolerance = 0 disables the check
// entirely. Returns an error listing every joint exceeding tolerance.
func Validate(parts []Part, state statemon.State, model robot.Model, tolerance float64) error {
	if tolerance == 0 {
		return nil
	}

	var offending []string
	for _, part := range parts {
		positions := part.Trajectory.FirstJointPositions()
		for joint, target := range positions {
			current, ok := state.Positions[joint]
			if !ok {
				offending = append(offending, fmt.Sprintf("%s (no live state)", joint))
				continue
			}
			jointType, known := model.JointType(joint)
			if !known {
				jointType = trajectory.Revolute
			}
			if distance(jointType, current, target) > tolerance {
				offending = append(offending, joint)
			}
		}
	}

	if len(offending) == 0 {
		return nil
	}
	sort.Strings(offending)
	return fmt.Errorf("start-state validation failed for joints: %v", offending)
}

// distance computes the per-joint-type comparison spec §4.4 describes:
// shortest-angle distance for revolute and continuous joints, plain
// absolute difference for prismatic joints, and zero (no constraint) for
// fixed joints.
func distance(jointType trajectory.JointType, current, target float64) float64 {
	switch jointType {
	case trajectory.Revolute, trajectory.Continuous:
		return shortestAngleDistance(current, target)
	case trajectory.Prismatic:
		return math.Abs(current - target)
	default:
		return 0
	}
}

// shortestAngleDistance returns the absolute angular difference between
// two angles, wrapped into [0, pi].
func shortestAngleDistance(a, b float64) float64 {
	diff := math.Mod(b-a, 2*math.Pi)
	if diff > math.Pi {
		diff -= 2 * math.Pi
	} else if diff < -math.Pi {
		diff += 2 * math.Pi
	}
	return math.Abs(diff)
}
