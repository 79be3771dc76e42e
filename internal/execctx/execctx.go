// ============================================================================
// trajexec
// ============================================================================
//
// Package:     execctx
// Description: TrajectoryContext (spec §3): one pushed trajectory, already
//              split across its selected controllers. Shared by the
//              sequential and continuous executors and the façade that
//              constructs contexts via the selector and distributor.
// License:     MIT
// ============================================================================

package execctx

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/msto63/trajexec/internal/trajectory"
)

// Context is one pushed trajectory: an ordered list of selected controller
// names and a parallel list of per-controller parts. Invariant:
// len(Controllers) == len(Parts); each joint of the original request
// appears in exactly one part.
type Context struct {
	ID          string
	Controllers []string
	Parts       []trajectory.RobotTrajectory
}

// New builds a Context from a controller-ordered parts map, preserving the
// given controller order. ID mirrors the teacher's use of uuid.New() for
// per-request identifiers, here letting logs correlate a batch's dispatch
// and completion lines.
func New(controllers []string, partsByController map[string]trajectory.RobotTrajectory) (*Context, error) {
	parts := make([]trajectory.RobotTrajectory, len(controllers))
	for i, name := range controllers {
		part, ok := partsByController[name]
		if !ok {
			return nil, fmt.Errorf("execctx: missing part for controller %q", name)
		}
		parts[i] = part
	}
	return &Context{ID: uuid.NewString(), Controllers: controllers, Parts: parts}, nil
}
