// ============================================================================
// trajexec
// ============================================================================
//
// Package:     robotmodel
// Description: A YAML-backed robot.Model implementation: loads joint
//              names/types/groups/bounds from a declarative file, in the
//              same "describe it in YAML, load it with yaml.v3" style the
//              teacher platform uses for its own service configuration.
// License:     MIT
// ============================================================================

package robotmodel

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/msto63/trajexec/internal/robot"
	"github.com/msto63/trajexec/internal/trajectory"
)

// jointSpec is the YAML shape of a single joint entry.
type jointSpec struct {
	Name            string  `yaml:"name"`
	Type            string  `yaml:"type"`
	MinPosition     float64 `yaml:"min_position"`
	MaxPosition     float64 `yaml:"max_position"`
	MaxVelocity     float64 `yaml:"max_velocity"`
	MaxAcceleration float64 `yaml:"max_acceleration"`
}

// document is the YAML shape of a whole robot description file.
type document struct {
	Joints []jointSpec         `yaml:"joints"`
	Groups map[string][]string `yaml:"groups"`
}

// Model is an in-memory robot.Model loaded from a YAML description.
type Model struct {
	joints map[string]jointSpec
	order  []string
	groups map[string][]string
}

// Load reads and parses a robot description from path.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("robotmodel: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse builds a Model from raw YAML bytes.
func Parse(data []byte) (*Model, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("robotmodel: parse: %w", err)
	}

	m := &Model{
		joints: make(map[string]jointSpec, len(doc.Joints)),
		order:  make([]string, 0, len(doc.Joints)),
		groups: make(map[string][]string, len(doc.Groups)),
	}
	for _, j := range doc.Joints {
		if _, exists := m.joints[j.Name]; exists {
			return nil, fmt.Errorf("robotmodel: duplicate joint %q", j.Name)
		}
		m.joints[j.Name] = j
		m.order = append(m.order, j.Name)
	}
	for name, joints := range doc.Groups {
		m.groups[name] = append([]string(nil), joints...)
	}
	return m, nil
}

// JointNames implements robot.Model.
func (m *Model) JointNames() []string {
	return append([]string(nil), m.order...)
}

// JointType implements robot.Model.
func (m *Model) JointType(name string) (trajectory.JointType, bool) {
	j, ok := m.joints[name]
	if !ok {
		return 0, false
	}
	return parseJointType(j.Type), true
}

// Groups implements robot.Model.
func (m *Model) Groups() []string {
	names := make([]string, 0, len(m.groups))
	for name := range m.groups {
		names = append(names, name)
	}
	return names
}

// GroupJoints implements robot.Model.
func (m *Model) GroupJoints(group string) ([]string, bool) {
	joints, ok := m.groups[group]
	if !ok {
		return nil, false
	}
	return append([]string(nil), joints...), true
}

// Bounds implements robot.Model.
func (m *Model) Bounds(name string) (robot.Bounds, bool) {
	j, ok := m.joints[name]
	if !ok {
		return robot.Bounds{}, false
	}
	return robot.Bounds{
		MinPosition:     j.MinPosition,
		MaxPosition:     j.MaxPosition,
		MaxVelocity:     j.MaxVelocity,
		MaxAcceleration: j.MaxAcceleration,
	}, true
}

func parseJointType(s string) trajectory.JointType {
	switch s {
	case "continuous":
		return trajectory.Continuous
	case "prismatic":
		return trajectory.Prismatic
	case "fixed":
		return trajectory.Fixed
	default:
		return trajectory.Revolute
	}
}
