// ============================================================================
// trajexec
// ============================================================================
//
// Package:     config
// Description: Static configuration for the trajectory executor, loaded
//              from TOML (LoadFromEnv takes the file path from the
//              TRAJEXEC_CONFIG environment variable), in the
//              same shape as the teacher platform's per-service config
//              (Config/Load/LoadFromEnv/applyDefaults), narrowed to this
//              module's single top-level section.
// License:     MIT
// ============================================================================

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Configuration holds the tunables a caller sets before calling Execute,
// per spec §3's "Configuration" value object.
type Configuration struct {
	// ManageControllers, when true, allows the executor to activate and
	// deactivate controllers to obtain coverage. When false, the executor
	// requires all needed controllers already active.
	ManageControllers bool `toml:"manage_controllers"`

	// AllowedExecutionDurationScaling multiplies a trajectory's expected
	// duration to obtain a deadline. Must be > 1.0 to leave headroom.
	AllowedExecutionDurationScaling float64 `toml:"allowed_execution_duration_scaling"`

	// AllowedGoalDurationMargin is added, in seconds, after the scaled
	// expected duration, to obtain the final deadline.
	AllowedGoalDurationMargin Duration `toml:"allowed_goal_duration_margin"`

	// PerControllerDurationScaling overrides AllowedExecutionDurationScaling
	// for specific controllers, keyed by controller name.
	PerControllerDurationScaling map[string]float64 `toml:"controller_duration_scaling"`

	// PerControllerGoalMargin overrides AllowedGoalDurationMargin for
	// specific controllers, keyed by controller name.
	PerControllerGoalMargin map[string]Duration `toml:"controller_goal_margin"`

	// AllowedStartTolerance bounds, in radians, how far the live joint
	// state may be from a part's first waypoint before dispatch. Zero
	// disables the check.
	AllowedStartTolerance float64 `toml:"allowed_start_tolerance"`

	// WaitForTrajectoryCompletion, when true, makes the executor poll for
	// the robot coming to rest after a successful execution. A pointer so
	// the TOML zero value (absent key) can be told apart from an explicit
	// "false"; an absent key defaults to true, an explicit false is kept.
	WaitForTrajectoryCompletion *bool `toml:"wait_for_trajectory_completion"`

	// ExecutionDurationMonitoring enables the per-part deadline watchdog.
	// When false, parts run with no timeout.
	ExecutionDurationMonitoring *bool `toml:"execution_duration_monitoring"`

	// RobotStopTimeout bounds how long the robot-stop waiter polls before
	// giving up and retaining SUCCEEDED anyway.
	RobotStopTimeout Duration `toml:"robot_stop_timeout"`

	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
}

// Duration wraps time.Duration so it can be expressed as "1.5s" in TOML,
// mirroring the teacher platform's config.Duration.
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string such as "500ms" or "1s".
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText formats the duration back to its string form.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Load reads a Configuration from a TOML file at path and applies defaults
// for any field left unset.
func Load(path string) (*Configuration, error) {
	path = os.ExpandEnv(path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	var cfg Configuration
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// LoadFromEnv loads a Configuration from the path named by TRAJEXEC_CONFIG,
// falling back to a short list of conventional locations, and finally to
// in-memory defaults if none exist.
func LoadFromEnv() (*Configuration, error) {
	path := os.Getenv("TRAJEXEC_CONFIG")
	if path == "" {
		defaultPaths := []string{
			"./configs/trajexec.toml",
			"./trajexec.toml",
			filepath.Join(os.Getenv("HOME"), ".config/trajexec/trajexec.toml"),
		}
		for _, p := range defaultPaths {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}

	if path == "" {
		cfg := Default()
		return cfg, nil
	}

	return Load(path)
}

// Default returns a Configuration with every field at its documented
// default value.
func Default() *Configuration {
	cfg := &Configuration{}
	cfg.applyDefaults()
	return cfg
}

func (c *Configuration) applyDefaults() {
	if c.AllowedExecutionDurationScaling == 0 {
		c.AllowedExecutionDurationScaling = 1.2
	}
	if c.AllowedGoalDurationMargin.Duration == 0 {
		c.AllowedGoalDurationMargin = Duration{500 * time.Millisecond}
	}
	if c.PerControllerDurationScaling == nil {
		c.PerControllerDurationScaling = make(map[string]float64)
	}
	if c.PerControllerGoalMargin == nil {
		c.PerControllerGoalMargin = make(map[string]Duration)
	}
	if c.RobotStopTimeout.Duration == 0 {
		c.RobotStopTimeout = Duration{1 * time.Second}
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "text"
	}
	if c.WaitForTrajectoryCompletion == nil {
		c.WaitForTrajectoryCompletion = boolPtr(true)
	}
	if c.ExecutionDurationMonitoring == nil {
		c.ExecutionDurationMonitoring = boolPtr(true)
	}
	// ManageControllers has no pointer trick: its zero value, false, is
	// also its documented default (REDESIGN FLAGS).
}

func boolPtr(v bool) *bool { return &v }

// ShouldWaitForCompletion reports whether the robot-stop waiter runs after
// a successful execution.
func (c *Configuration) ShouldWaitForCompletion() bool {
	return c.WaitForTrajectoryCompletion == nil || *c.WaitForTrajectoryCompletion
}

// ShouldMonitorExecutionDuration reports whether the per-part deadline
// watchdog is active.
func (c *Configuration) ShouldMonitorExecutionDuration() bool {
	return c.ExecutionDurationMonitoring == nil || *c.ExecutionDurationMonitoring
}

// DurationScalingFor returns the effective duration-scaling factor for a
// controller, falling back to the global value when no override exists.
func (c *Configuration) DurationScalingFor(controller string) float64 {
	if v, ok := c.PerControllerDurationScaling[controller]; ok {
		return v
	}
	return c.AllowedExecutionDurationScaling
}

// GoalMarginFor returns the effective goal-duration margin for a
// controller, falling back to the global value when no override exists.
func (c *Configuration) GoalMarginFor(controller string) time.Duration {
	if v, ok := c.PerControllerGoalMargin[controller]; ok {
		return v.Duration
	}
	return c.AllowedGoalDurationMargin.Duration
}
