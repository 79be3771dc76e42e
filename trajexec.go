// ============================================================================
// trajexec
// ============================================================================
//
// Package:     trajexec
// Description: C9 Public Façade: push/execute/waitForExecution/
//              pushAndExecute/stopExecution/clear plus the observable
//              status, wiring the nine internal components together over
//              the five external collaborators of spec §6. Grounded on
//              spec §4.9 and original_source's public method list, plus
//              the §4.14 convenience wrappers.
// License:     MIT
// ============================================================================

package trajexec

import (
	"fmt"
	"time"

	"github.com/msto63/trajexec/internal/config"
	"github.com/msto63/trajexec/internal/continuous"
	"github.com/msto63/trajexec/internal/controllerapi"
	"github.com/msto63/trajexec/internal/distributor"
	"github.com/msto63/trajexec/internal/eventadapter"
	"github.com/msto63/trajexec/internal/eventbus"
	"github.com/msto63/trajexec/internal/execctx"
	"github.com/msto63/trajexec/internal/execstatus"
	"github.com/msto63/trajexec/internal/executil"
	"github.com/msto63/trajexec/internal/executor"
	"github.com/msto63/trajexec/internal/registry"
	"github.com/msto63/trajexec/internal/robot"
	"github.com/msto63/trajexec/internal/selector"
	"github.com/msto63/trajexec/internal/statemon"
	"github.com/msto63/trajexec/internal/telemetry"
	"github.com/msto63/trajexec/internal/telemetry/log"
	"github.com/msto63/trajexec/internal/trajectory"
)

// Callback and PartCallback re-export the executor's callback shapes so
// callers never need to import internal/executor directly.
type Callback = executor.Callback
type PartCallback = executor.PartCallback

// Status is the aggregate/terminal outcome of an execute batch.
type Status = execstatus.Status

// Manager is the trajectory execution manager: the public façade over the
// registry, selector, distributor, sequential and continuous executors,
// and the event bus adapter.
type Manager struct {
	cfg        *config.Configuration
	registry   *registry.Registry
	model      robot.Model
	executor   *executor.Executor
	continuous *continuous.Executor
	adapter    *eventadapter.Adapter
	logger     *log.Logger
}

// New wires a Manager from its five external collaborators (spec §6) and
// its configuration.
func New(model robot.Model, monitor statemon.Monitor, manager controllerapi.Manager, topic eventbus.Topic, cfg *config.Configuration) *Manager {
	reg := registry.New(manager)
	reg.Reload()

	m := &Manager{
		cfg:        cfg,
		registry:   reg,
		model:      model,
		executor:   executor.New(reg, manager, monitor, model, cfg),
		continuous: continuous.New(reg, manager, cfg),
		logger:     telemetry.New("trajexec"),
	}
	m.adapter = eventadapter.Subscribe(topic, m.StopExecution)
	m.logger.Info("trajectory execution manager ready", "controllers", len(reg.All()))
	return m
}

// Push configures a new context via the selector and distributor and
// appends it to the sequential queue. controllers, if non-nil, restricts
// selection to that set; nil considers every known controller. Fails if
// the trajectory has no joints, if no cover exists, or if distribution
// leaves joints unassigned. Must not be called while the executor is past
// IDLE.
func (m *Manager) Push(traj trajectory.RobotTrajectory, controllers []string) error {
	ctx, err := m.buildContext(traj, controllers)
	if err != nil {
		return err
	}
	return m.executor.Push(ctx)
}

// PushForGroup checks that group is known to the robot model, then behaves
// as Push with controller selection unrestricted (§4.14). Selection covers
// the trajectory's own joints; the group's joint set is not used for it.
func (m *Manager) PushForGroup(traj trajectory.RobotTrajectory, group string) error {
	if _, ok := m.model.GroupJoints(group); !ok {
		return executil.ConfigurationError("push_for_group", fmt.Sprintf("unknown joint group %q", group), nil)
	}
	return m.Push(traj, nil)
}

// PushAndExecute bypasses the sequential queue and feeds the continuous
// executor. A single-waypoint trajectory built via trajectory.SingleWaypoint
// satisfies the "single JointState becomes a one-waypoint trajectory at
// time 0" normalisation spec §4.9 describes.
func (m *Manager) PushAndExecute(traj trajectory.RobotTrajectory, controllers []string) error {
	ctx, err := m.buildContext(traj, controllers)
	if err != nil {
		return err
	}
	m.continuous.PushAndExecute(ctx)
	return nil
}

// Execute starts the sequential executor on the current queue and returns
// immediately. callback receives the final aggregate status; partCallback
// receives the index of each context that completes successfully.
func (m *Manager) Execute(callback Callback, partCallback PartCallback, autoClear bool) error {
	return m.executor.Execute(callback, partCallback, autoClear)
}

// ExecuteAndWait is Execute followed by WaitForExecution.
func (m *Manager) ExecuteAndWait(autoClear bool) (Status, error) {
	return m.executor.ExecuteAndWait(nil, nil, autoClear)
}

// WaitForExecution blocks until the sequential executor is IDLE and
// returns last_status. Stops the continuous executor if it is active —
// the documented asymmetry of spec §4.6 step 5.
func (m *Manager) WaitForExecution() Status {
	if m.continuous.Active() {
		m.continuous.Stop()
	}
	return m.executor.WaitForExecution()
}

// LastStatus returns the most recently recorded outcome without blocking:
// the continuous executor's status while it is active, otherwise the
// sequential executor's.
func (m *Manager) LastStatus() Status {
	if m.continuous.Active() {
		return m.continuous.LastStatus()
	}
	return m.executor.LastStatus()
}

// StopExecution cancels whichever executor is active. Never returns an
// error; safe to call from the event bus adapter or any other goroutine.
func (m *Manager) StopExecution(autoClear bool) {
	m.executor.StopExecution(autoClear)
	m.continuous.Stop()
}

// Clear deletes the sequential queue. Legal only when the executor is
// IDLE.
func (m *Manager) Clear() error {
	return m.executor.Clear()
}

// GetCurrentExpectedTrajectoryIndex returns (contextIndex, waypointIndex),
// or (-1, -1) if idle or while the continuous executor is driving.
func (m *Manager) GetCurrentExpectedTrajectoryIndex() (int, int) {
	if m.continuous.Active() {
		return -1, -1
	}
	return m.executor.CurrentExpectedTrajectoryIndex()
}

// EnsureActiveController activates a single controller (§4.14).
func (m *Manager) EnsureActiveController(name string) bool {
	return m.EnsureActiveControllers([]string{name})
}

// EnsureActiveControllers activates and/or deactivates controllers so that
// every controller in names is active and no other active controller shares
// a joint with them, per registry policy. Active controllers that share no
// joint with names are left as they are.
func (m *Manager) EnsureActiveControllers(names []string) bool {
	m.registry.RefreshIfOlderThan(time.Second)
	return m.registry.EnsureActive(names, m.cfg.ManageControllers)
}

// EnsureActiveControllersForGroup resolves group via the robot model, then
// ensures active the minimal controller set the selector picks to cover its
// joints (§4.14); other controllers covering those joints are not activated.
func (m *Manager) EnsureActiveControllersForGroup(group string) bool {
	joints, ok := m.model.GroupJoints(group)
	if !ok {
		return false
	}
	available := m.registry.All()
	selected, err := selector.Select(joints, available)
	if err != nil {
		return false
	}
	return m.EnsureActiveControllers(selected)
}

// Shutdown stops both executors and the event adapter. StopExecution(true)
// waits for the sequential executor to return to IDLE; the continuous
// worker is only signalled to exit, and Shutdown does not wait for it.
func (m *Manager) Shutdown() {
	m.StopExecution(true)
	m.continuous.Shutdown()
	m.adapter.Close()
}

func (m *Manager) buildContext(traj trajectory.RobotTrajectory, controllers []string) (*execctx.Context, error) {
	actuatedJoints := traj.JointNames()
	if len(actuatedJoints) == 0 {
		return nil, executil.ConfigurationError("push", "trajectory has no joints", nil)
	}

	m.registry.RefreshIfOlderThan(time.Second)
	available := m.availableControllers(controllers)

	selected, err := selector.Select(actuatedJoints, available)
	if err != nil {
		return nil, executil.ConfigurationError("push", err.Error(), map[string]interface{}{"joints": actuatedJoints})
	}

	selectedInfos := make([]*registry.ControllerInfo, 0, len(selected))
	for _, name := range selected {
		info, ok := m.registry.Get(name)
		if !ok {
			return nil, executil.ConfigurationError("push", fmt.Sprintf("selected controller %q vanished from registry", name), nil)
		}
		selectedInfos = append(selectedInfos, info)
	}

	partsByController, err := distributor.Distribute(traj, selectedInfos)
	if err != nil {
		return nil, executil.ConfigurationError("push", err.Error(), nil)
	}

	return execctx.New(selected, partsByController)
}

func (m *Manager) availableControllers(controllers []string) []*registry.ControllerInfo {
	all := m.registry.All()
	if controllers == nil {
		return all
	}
	wanted := make(map[string]bool, len(controllers))
	for _, name := range controllers {
		wanted[name] = true
	}
	filtered := make([]*registry.ControllerInfo, 0, len(controllers))
	for _, info := range all {
		if wanted[info.Name] {
			filtered = append(filtered, info)
		}
	}
	return filtered
}
