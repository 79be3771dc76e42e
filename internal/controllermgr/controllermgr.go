// ============================================================================
// trajexec
// ============================================================================
//
// Package:     controllermgr
// Description: An in-process controller-manager plugin (spec §6.3):
//              "activating" or "deactivating" a controller flips its active
//              flag, and each dispatched part runs out on its own goroutine
//              as simulated motion over its last-waypoint duration.
//              Adapted from the teacher's internal/russell/procmgr service
//              lifecycle manager (ManagedService/StatusEvent/Subscribe
//              fan-out), narrowed from OS processes to in-process
//              goroutines and from named services to named controllers.
// License:     MIT
// ============================================================================

package controllermgr

import (
	"fmt"
	"sync"
	"time"

	"github.com/msto63/trajexec/internal/controllerapi"
	"github.com/msto63/trajexec/internal/execstatus"
	"github.com/msto63/trajexec/internal/setx"
	"github.com/msto63/trajexec/internal/telemetry"
	"github.com/msto63/trajexec/internal/telemetry/log"
	"github.com/msto63/trajexec/internal/trajectory"
)

// StatusEvent reports an activity change for a single controller, mirroring
// the teacher's procmgr.StatusEvent.
type StatusEvent struct {
	Controller string
	Active     bool
	Timestamp  time.Time
}

type controllerEntry struct {
	joints            []string
	active            bool
	isDefault         bool
	runTimeMultiplier float64
}

// Manager is a concrete, in-process controller-manager plugin implementing
// the operations spec §6.3 names: getControllersList, getControllerJoints,
// getControllerState, switchControllers, getControllerHandle.
type Manager struct {
	mu          sync.RWMutex
	controllers map[string]*controllerEntry

	logger *log.Logger

	statusCh     chan StatusEvent
	subscribers  []chan StatusEvent
	subscriberMu sync.RWMutex
}

// New creates an empty Manager. Controllers are added with Register before
// use.
func New() *Manager {
	m := &Manager{
		controllers: make(map[string]*controllerEntry),
		logger:      telemetry.New("controllermgr"),
		statusCh:    make(chan StatusEvent, 100),
	}
	go m.dispatchEvents()
	return m
}

// Register declares a controller and the joints it actuates. defaultActive
// marks controllers that start already active, mirroring the teacher's
// registerKnownServices seeding and spec's ControllerInfo.Default.
func (m *Manager) Register(name string, joints []string, defaultActive bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.controllers[name] = &controllerEntry{
		joints:            append([]string(nil), joints...),
		active:            defaultActive,
		isDefault:         defaultActive,
		runTimeMultiplier: 1,
	}
}

// SetRunTimeMultiplier scales the simulated run time a future Handle spends
// executing a dispatched part for name, relative to the part's declared
// last-waypoint time. Used to simulate a controller that overruns its
// declared duration, e.g. to exercise deadline handling. Has no effect on
// handles already dispatched.
func (m *Manager) SetRunTimeMultiplier(name string, multiplier float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.controllers[name]; ok {
		c.runTimeMultiplier = multiplier
	}
}

// List implements getControllersList.
func (m *Manager) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.controllers))
	for name := range m.controllers {
		names = append(names, name)
	}
	return names
}

// Joints implements getControllerJoints.
func (m *Manager) Joints(name string) ([]string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.controllers[name]
	if !ok {
		return nil, false
	}
	return append([]string(nil), c.joints...), true
}

// State implements getControllerState.
func (m *Manager) State(name string) (active, isDefault, ok bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, found := m.controllers[name]
	if !found {
		return false, false, false
	}
	return c.active, c.isDefault, true
}

// Switch implements switchControllers: activates every name in activate
// and deactivates every name in deactivate, atomically with respect to
// other Switch calls. Returns false if any named controller is unknown.
func (m *Manager) Switch(activate, deactivate []string) bool {
	m.mu.Lock()
	for _, name := range setx.Union(activate, deactivate) {
		if _, ok := m.controllers[name]; !ok {
			m.mu.Unlock()
			m.logger.Error("switch requested for unknown controller", "controller", name)
			return false
		}
	}
	for _, name := range deactivate {
		c := m.controllers[name]
		if c.active {
			c.active = false
			m.emitEvent(name, false)
		}
	}
	for _, name := range activate {
		c := m.controllers[name]
		if !c.active {
			c.active = true
			m.emitEvent(name, true)
		}
	}
	m.mu.Unlock()
	m.logger.Info("switched controllers", "activate", activate, "deactivate", deactivate)
	return true
}

// Handle implements getControllerHandle: returns a fresh handle for an
// active controller, or an error if the controller is unknown or inactive.
func (m *Manager) Handle(name string) (controllerapi.Handle, error) {
	m.mu.RLock()
	c, ok := m.controllers[name]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("controllermgr: unknown controller %q", name)
	}
	if !c.active {
		return nil, fmt.Errorf("controllermgr: controller %q is not active", name)
	}
	return newHandle(name, c.runTimeMultiplier, m.logger.WithField("controller", name)), nil
}

// Subscribe returns a channel of activity-change events.
func (m *Manager) Subscribe() chan StatusEvent {
	m.subscriberMu.Lock()
	defer m.subscriberMu.Unlock()
	ch := make(chan StatusEvent, 10)
	m.subscribers = append(m.subscribers, ch)
	return ch
}

// Unsubscribe removes a previously subscribed channel.
func (m *Manager) Unsubscribe(ch chan StatusEvent) {
	m.subscriberMu.Lock()
	defer m.subscriberMu.Unlock()
	for i, sub := range m.subscribers {
		if sub == ch {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			close(ch)
			return
		}
	}
}

func (m *Manager) emitEvent(name string, active bool) {
	event := StatusEvent{Controller: name, Active: active, Timestamp: time.Now()}
	select {
	case m.statusCh <- event:
	default:
		m.logger.Warn("status event channel full, dropping event")
	}
}

func (m *Manager) dispatchEvents() {
	for event := range m.statusCh {
		m.subscriberMu.RLock()
		for _, ch := range m.subscribers {
			select {
			case ch <- event:
			default:
			}
		}
		m.subscriberMu.RUnlock()
	}
}

// Close shuts down event dispatch. Not safe to call more than once.
func (m *Manager) Close() {
	close(m.statusCh)
	m.subscriberMu.Lock()
	for _, ch := range m.subscribers {
		close(ch)
	}
	m.subscribers = nil
	m.subscriberMu.Unlock()
}

// Handle is a ControllerHandle (spec §3) backed by a simulated driver
// goroutine: sending a part starts a timer for the part's last waypoint
// time, after which the handle reports Succeeded unless cancelled first.
type Handle struct {
	name       string
	multiplier float64
	logger     *log.Logger

	mu         sync.Mutex
	status     execstatus.Status
	done       chan struct{}
	cancel     chan struct{}
	cancelOnce sync.Once
}

func newHandle(name string, multiplier float64, logger *log.Logger) *Handle {
	return &Handle{
		name:       name,
		multiplier: multiplier,
		logger:     logger,
		status:     execstatus.Running,
		done:       make(chan struct{}),
		cancel:     make(chan struct{}),
	}
}

// SendTrajectory implements sendTrajectory: starts the simulated run.
// Returns an error if called more than once on the same handle.
func (h *Handle) SendTrajectory(part trajectory.RobotTrajectory) error {
	h.mu.Lock()
	if h.status != execstatus.Running {
		h.mu.Unlock()
		return fmt.Errorf("controllermgr: handle for %q already dispatched", h.name)
	}
	h.mu.Unlock()

	runTime := time.Duration(float64(part.LastWaypointTime()) * h.multiplier)
	h.logger.Debug("dispatching part", "duration", runTime)
	go h.run(runTime)
	return nil
}

func (h *Handle) run(runTime time.Duration) {
	timer := time.NewTimer(runTime)
	defer timer.Stop()
	select {
	case <-timer.C:
		h.finish(execstatus.Succeeded)
	case <-h.cancel:
		h.finish(execstatus.Aborted)
	}
}

func (h *Handle) finish(status execstatus.Status) {
	h.mu.Lock()
	if h.status == execstatus.Running {
		h.status = status
		close(h.done)
	}
	h.mu.Unlock()
}

// Cancel implements cancel(): requests the simulated run stop early.
// Idempotent and safe to call concurrently or after completion.
func (h *Handle) Cancel() {
	h.cancelOnce.Do(func() { close(h.cancel) })
}

// WaitForExecution implements waitForExecution(timeout): blocks until the
// handle reaches a terminal state or the timeout elapses, returning the
// status either way.
func (h *Handle) WaitForExecution(timeout time.Duration) execstatus.Status {
	select {
	case <-h.done:
	case <-time.After(timeout):
	}
	return h.LastExecutionStatus()
}

// LastExecutionStatus implements getLastExecutionStatus().
func (h *Handle) LastExecutionStatus() execstatus.Status {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status
}
