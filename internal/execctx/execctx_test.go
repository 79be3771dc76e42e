package execctx

import (
	"testing"

	"github.com/msto63/trajexec/internal/trajectory"
)

func TestNew_PreservesControllerOrder(t *testing.T) {
	armPart := trajectory.RobotTrajectory{JointTrajectory: trajectory.JointTrajectory{JointNames: []string{"shoulder"}}}
	gripperPart := trajectory.RobotTrajectory{JointTrajectory: trajectory.JointTrajectory{JointNames: []string{"finger"}}}

	ctx, err := New([]string{"gripper_controller", "arm_controller"}, map[string]trajectory.RobotTrajectory{
		"arm_controller":     armPart,
		"gripper_controller": gripperPart,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if len(ctx.Controllers) != 2 || len(ctx.Parts) != 2 {
		t.Fatalf("New() = %d controllers, %d parts, want 2 and 2", len(ctx.Controllers), len(ctx.Parts))
	}
	if ctx.Controllers[0] != "gripper_controller" || ctx.Parts[0].JointNames()[0] != "finger" {
		t.Errorf("Controllers[0]/Parts[0] = %q/%v, want gripper_controller/[finger]", ctx.Controllers[0], ctx.Parts[0].JointNames())
	}
	if ctx.Controllers[1] != "arm_controller" || ctx.Parts[1].JointNames()[0] != "shoulder" {
		t.Errorf("Controllers[1]/Parts[1] = %q/%v, want arm_controller/[shoulder]", ctx.Controllers[1], ctx.Parts[1].JointNames())
	}
	if ctx.ID == "" {
		t.Error("ID is empty, want a generated identifier")
	}
}

func TestNew_MissingPartErrors(t *testing.T) {
	_, err := New([]string{"arm_controller"}, map[string]trajectory.RobotTrajectory{})
	if err == nil {
		t.Error("New() with a missing part: want error, got nil")
	}
}

func TestNew_GeneratesDistinctIDs(t *testing.T) {
	parts := map[string]trajectory.RobotTrajectory{"c": {}}
	a, err := New([]string{"c"}, parts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	b, err := New([]string{"c"}, parts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if a.ID == b.ID {
		t.Errorf("New() produced identical IDs %q for two distinct contexts", a.ID)
	}
}
