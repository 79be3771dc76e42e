// ============================================================================
// trajexec
// ============================================================================
//
// Package:     distributor
// Description: C3 Trajectory Distributor: splits a RobotTrajectory across
//              the controllers chosen by the selector, one part per
//              controller, each restricted and reindexed to that
//              controller's joints. New component, built directly from the
//              specification (see DESIGN.md) — there is no single teacher
//              file that reshapes row-aligned arrays this way, though the
//              reindexing loop follows the teacher's plain-loop style
//              throughout the codebase rather than introducing a
//              generics-heavy reshape helper.
// License:     MIT
// ============================================================================

package distributor

import (
	"fmt"
	"sort"

	"github.com/msto63/trajexec/internal/registry"
	"github.com/msto63/trajexec/internal/trajectory"
)

// Distribute splits traj across controllers, returning one RobotTrajectory
// per controller name containing only the rows for joints that controller
// actuates. If the input contains a joint no controller covers, it returns
// an error. If two controllers list the same joint, the joint is assigned
// to the smaller controller (ties by name) so no joint is driven twice.
func Distribute(traj trajectory.RobotTrajectory, controllers []*registry.ControllerInfo) (map[string]trajectory.RobotTrajectory, error) {
	owner, err := assignOwners(traj.JointNames(), controllers)
	if err != nil {
		return nil, err
	}

	parts := make(map[string]trajectory.RobotTrajectory, len(controllers))

	singleJoints, singleIndex := partitionJoints(traj.JointTrajectory.JointNames, owner)
	multiJoints, multiIndex := partitionJoints(traj.MultiDOFJointTrajectory.JointNames, owner)

	for _, c := range controllers {
		parts[c.Name] = trajectory.RobotTrajectory{
			JointTrajectory:         sliceJointTrajectory(traj.JointTrajectory, singleJoints[c.Name], singleIndex[c.Name]),
			MultiDOFJointTrajectory: sliceMultiDOFTrajectory(traj.MultiDOFJointTrajectory, multiJoints[c.Name], multiIndex[c.Name]),
		}
	}

	return parts, nil
}

// assignOwners maps every joint in jointNames to exactly one controller
// name: the smallest (by joint-set size, ties by name) controller among
// those selected that actuates it.
func assignOwners(jointNames []string, controllers []*registry.ControllerInfo) (map[string]string, error) {
	owner := make(map[string]string, len(jointNames))

	for _, joint := range jointNames {
		var candidates []*registry.ControllerInfo
		for _, c := range controllers {
			if containsJoint(c.Joints, joint) {
				candidates = append(candidates, c)
			}
		}
		if len(candidates) == 0 {
			return nil, fmt.Errorf("distributor: joint %q is not covered by any selected controller", joint)
		}
		sort.Slice(candidates, func(i, j int) bool {
			if len(candidates[i].Joints) != len(candidates[j].Joints) {
				return len(candidates[i].Joints) < len(candidates[j].Joints)
			}
			return candidates[i].Name < candidates[j].Name
		})
		owner[joint] = candidates[0].Name
	}

	return owner, nil
}

func containsJoint(joints []string, joint string) bool {
	for _, j := range joints {
		if j == joint {
			return true
		}
	}
	return false
}

// partitionJoints groups jointNames by owning controller, returning, per
// controller, the joint names it owns (in original order) and their
// indices into jointNames.
func partitionJoints(jointNames []string, owner map[string]string) (map[string][]string, map[string][]int) {
	joints := make(map[string][]string)
	indices := make(map[string][]int)
	for i, name := range jointNames {
		controller, ok := owner[name]
		if !ok {
			continue
		}
		joints[controller] = append(joints[controller], name)
		indices[controller] = append(indices[controller], i)
	}
	return joints, indices
}

func sliceJointTrajectory(src trajectory.JointTrajectory, joints []string, indices []int) trajectory.JointTrajectory {
	if len(joints) == 0 {
		return trajectory.JointTrajectory{}
	}
	out := trajectory.JointTrajectory{
		JointNames: joints,
		Waypoints:  make([]trajectory.Waypoint, len(src.Waypoints)),
	}
	for i, wp := range src.Waypoints {
		out.Waypoints[i] = trajectory.Waypoint{
			TimeFromStart: wp.TimeFromStart,
			Positions:     pickIndices(wp.Positions, indices),
			Velocities:    pickIndices(wp.Velocities, indices),
			Accelerations: pickIndices(wp.Accelerations, indices),
			Effort:        pickIndices(wp.Effort, indices),
		}
	}
	return out
}

func sliceMultiDOFTrajectory(src trajectory.MultiDOFJointTrajectory, joints []string, indices []int) trajectory.MultiDOFJointTrajectory {
	if len(joints) == 0 {
		return trajectory.MultiDOFJointTrajectory{}
	}
	out := trajectory.MultiDOFJointTrajectory{
		JointNames: joints,
		Waypoints:  make([]trajectory.MultiDOFWaypoint, len(src.Waypoints)),
	}
	for i, wp := range src.Waypoints {
		transforms := make([]trajectory.Transform, 0, len(indices))
		for _, idx := range indices {
			if idx < len(wp.Transforms) {
				transforms = append(transforms, wp.Transforms[idx])
			}
		}
		out.Waypoints[i] = trajectory.MultiDOFWaypoint{
			TimeFromStart: wp.TimeFromStart,
			Transforms:    transforms,
		}
	}
	return out
}

// pickIndices returns a new slice with values[idx] for idx in indices, or
// nil if values is empty (optional velocity/acceleration/effort rows).
func pickIndices(values []float64, indices []int) []float64 {
	if len(values) == 0 {
		return nil
	}
	out := make([]float64, 0, len(indices))
	for _, idx := range indices {
		if idx < len(values) {
			out = append(out, values[idx])
		}
	}
	return out
}
