package robotmodel

import (
	"testing"

	"github.com/msto63/trajexec/internal/trajectory"
)

const sampleYAML = `
joints:
  - name: shoulder
    type: revolute
    min_position: -1.0
    max_position: 1.0
    max_velocity: 2.0
    max_acceleration: 3.0
  - name: wrist
    type: continuous
  - name: slider
    type: prismatic
  - name: mount
    type: fixed

groups:
  arm:
    - shoulder
    - wrist
`

func TestParse_JointNamesPreservesOrder(t *testing.T) {
	m, err := Parse([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	want := []string{"shoulder", "wrist", "slider", "mount"}
	got := m.JointNames()
	if len(got) != len(want) {
		t.Fatalf("JointNames() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("JointNames()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestParse_JointType(t *testing.T) {
	m, err := Parse([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	tests := []struct {
		name string
		want trajectory.JointType
	}{
		{"shoulder", trajectory.Revolute},
		{"wrist", trajectory.Continuous},
		{"slider", trajectory.Prismatic},
		{"mount", trajectory.Fixed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := m.JointType(tt.name)
			if !ok {
				t.Fatalf("JointType(%q) not found", tt.name)
			}
			if got != tt.want {
				t.Errorf("JointType(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
	if _, ok := m.JointType("nonexistent"); ok {
		t.Error("JointType(nonexistent) found, want not found")
	}
}

func TestParse_GroupJoints(t *testing.T) {
	m, err := Parse([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	joints, ok := m.GroupJoints("arm")
	if !ok {
		t.Fatal("GroupJoints(arm) not found")
	}
	if len(joints) != 2 || joints[0] != "shoulder" || joints[1] != "wrist" {
		t.Errorf("GroupJoints(arm) = %v, want [shoulder wrist]", joints)
	}
	if _, ok := m.GroupJoints("legs"); ok {
		t.Error("GroupJoints(legs) found, want not found")
	}
}

func TestParse_Bounds(t *testing.T) {
	m, err := Parse([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	bounds, ok := m.Bounds("shoulder")
	if !ok {
		t.Fatal("Bounds(shoulder) not found")
	}
	if bounds.MinPosition != -1.0 || bounds.MaxPosition != 1.0 || bounds.MaxVelocity != 2.0 || bounds.MaxAcceleration != 3.0 {
		t.Errorf("Bounds(shoulder) = %+v, want {-1 1 2 3}", bounds)
	}
}

func TestParse_DuplicateJointErrors(t *testing.T) {
	_, err := Parse([]byte(`
joints:
  - name: shoulder
    type: revolute
  - name: shoulder
    type: revolute
`))
	if err == nil {
		t.Error("Parse() with a duplicate joint name: want error, got nil")
	}
}

func TestLoad_MissingFileErrors(t *testing.T) {
	if _, err := Load("/nonexistent/robot.yaml"); err == nil {
		t.Error("Load() of a nonexistent file: want error, got nil")
	}
}
