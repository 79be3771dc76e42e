// ============================================================================
// trajexec
// ============================================================================
//
// Package:     executor
// Description: C5 Sequential Executor plus C7 Duration Monitor: runs a
//              queued batch of contexts in order, dispatching each
//              context's parts in parallel to their controllers, and
//              cancelling on deadline or stop request. New component;
//              grounded on spec §4.5/§4.7 and original_source's
//              executeThread/execution_state_mutex_ fields. The wait loop
//              uses channels rather than a timed condition-variable wait
//              (Go's sync.Cond has no WaitTimeout) — the one place this
//              module departs from a direct boost::condition_variable
//              translation, documented in DESIGN.md.
// License:     MIT
// ============================================================================

package executor

import (
	"fmt"
	"sync"
	"time"

	"github.com/msto63/trajexec/internal/config"
	"github.com/msto63/trajexec/internal/controllerapi"
	"github.com/msto63/trajexec/internal/execctx"
	"github.com/msto63/trajexec/internal/execstatus"
	"github.com/msto63/trajexec/internal/executil"
	"github.com/msto63/trajexec/internal/registry"
	"github.com/msto63/trajexec/internal/robot"
	"github.com/msto63/trajexec/internal/statemon"
	"github.com/msto63/trajexec/internal/telemetry"
	"github.com/msto63/trajexec/internal/telemetry/log"
	"github.com/msto63/trajexec/internal/trajectory"
	"github.com/msto63/trajexec/internal/validator"
)

const (
	registryFreshness = 1 * time.Second
	stateFreshness    = 500 * time.Millisecond
	pollInterval      = 25 * time.Millisecond
	cancelGrace       = 50 * time.Millisecond
)

// Callback is invoked exactly once per batch with the aggregate status.
type Callback func(status execstatus.Status)

// PartCallback is invoked for the index of each context that completes
// successfully. Not called for failed contexts.
type PartCallback func(contextIndex int)

// Executor is C5: the sequential batch executor.
type Executor struct {
	registry *registry.Registry
	manager  controllerapi.Manager
	monitor  statemon.Monitor
	model    robot.Model
	cfg      *config.Configuration
	logger   *log.Logger

	stateMu       sync.Mutex
	cond          *sync.Cond
	contexts      []*execctx.Context
	currentIndex  int
	activeHandles []controllerapi.Handle
	running       bool
	stopRequested bool
	stopCh        chan struct{}

	statusMu   sync.RWMutex
	timeIndex  []time.Time
	lastStatus execstatus.Status
}

// New creates an idle Executor.
func New(reg *registry.Registry, manager controllerapi.Manager, monitor statemon.Monitor, model robot.Model, cfg *config.Configuration) *Executor {
	e := &Executor{
		registry:     reg,
		manager:      manager,
		monitor:      monitor,
		model:        model,
		cfg:          cfg,
		logger:       telemetry.New("executor"),
		currentIndex: -1,
		lastStatus:   execstatus.Unknown,
	}
	e.cond = sync.NewCond(&e.stateMu)
	return e
}

// Push appends ctx to the sequential queue. Fails if the executor is not
// IDLE.
func (e *Executor) Push(ctx *execctx.Context) error {
	e.stateMu.Lock()
	defer e.stateMu.Unlock()
	if e.running {
		return fmt.Errorf("executor: cannot push while executing")
	}
	e.contexts = append(e.contexts, ctx)
	return nil
}

// Clear deletes the queue. Legal only when IDLE.
func (e *Executor) Clear() error {
	e.stateMu.Lock()
	defer e.stateMu.Unlock()
	if e.running {
		return fmt.Errorf("executor: cannot clear while executing")
	}
	e.contexts = nil
	e.currentIndex = -1
	return nil
}

// IsIdle reports whether the executor is not currently running a batch.
func (e *Executor) IsIdle() bool {
	e.stateMu.Lock()
	defer e.stateMu.Unlock()
	return !e.running
}

// Execute starts the worker on the current queue and returns immediately.
func (e *Executor) Execute(callback Callback, partCallback PartCallback, autoClear bool) error {
	e.stateMu.Lock()
	if e.running {
		e.stateMu.Unlock()
		return fmt.Errorf("executor: already executing")
	}
	if len(e.contexts) == 0 {
		e.stateMu.Unlock()
		return fmt.Errorf("executor: nothing to execute")
	}
	contexts := e.contexts
	e.running = true
	e.stopRequested = false
	e.currentIndex = -1
	stopCh := make(chan struct{})
	e.stopCh = stopCh
	e.stateMu.Unlock()

	go e.run(contexts, stopCh, callback, partCallback, autoClear)
	return nil
}

// ExecuteAndWait starts the batch and blocks until it completes.
func (e *Executor) ExecuteAndWait(callback Callback, partCallback PartCallback, autoClear bool) (execstatus.Status, error) {
	if err := e.Execute(callback, partCallback, autoClear); err != nil {
		return execstatus.Unknown, err
	}
	return e.WaitForExecution(), nil
}

// WaitForExecution blocks until the executor reaches IDLE and returns the
// aggregate status of the batch that just finished.
func (e *Executor) WaitForExecution() execstatus.Status {
	e.stateMu.Lock()
	for e.running {
		e.cond.Wait()
	}
	e.stateMu.Unlock()
	return e.LastStatus()
}

// StopExecution cancels the active batch, if any, and blocks until the
// worker reaches IDLE. Idempotent; never returns an error.
func (e *Executor) StopExecution(autoClear bool) {
	e.stateMu.Lock()
	if !e.running {
		if autoClear {
			e.contexts = nil
		}
		e.stateMu.Unlock()
		return
	}
	if !e.stopRequested {
		e.stopRequested = true
		close(e.stopCh)
		for _, h := range e.activeHandles {
			h.Cancel()
		}
	}
	e.stateMu.Unlock()

	e.stateMu.Lock()
	for e.running {
		e.cond.Wait()
	}
	if autoClear {
		e.contexts = nil
	}
	e.stateMu.Unlock()
}

// LastStatus returns the aggregate status of the most recently finished
// batch.
func (e *Executor) LastStatus() execstatus.Status {
	e.statusMu.RLock()
	defer e.statusMu.RUnlock()
	return e.lastStatus
}

// CurrentExpectedTrajectoryIndex returns (contextIndex, waypointIndex) for
// the context/waypoint expected to be executing right now, or (-1, -1) if
// idle.
func (e *Executor) CurrentExpectedTrajectoryIndex() (int, int) {
	e.stateMu.Lock()
	idx := e.currentIndex
	var contexts []*execctx.Context
	if idx >= 0 {
		contexts = e.contexts
	}
	e.stateMu.Unlock()

	if idx < 0 || idx >= len(contexts) {
		return -1, -1
	}

	e.statusMu.RLock()
	var start time.Time
	if idx < len(e.timeIndex) {
		start = e.timeIndex[idx]
	}
	e.statusMu.RUnlock()

	if start.IsZero() {
		return idx, -1
	}

	ctx := contexts[idx]
	if len(ctx.Parts) == 0 {
		return idx, -1
	}
	waypoints := ctx.Parts[0].JointTrajectory.Waypoints
	return idx, nearestWaypoint(waypoints, time.Since(start))
}

func nearestWaypoint(waypoints []trajectory.Waypoint, elapsed time.Duration) int {
	if len(waypoints) == 0 {
		return -1
	}
	idx := 0
	for i, wp := range waypoints {
		if wp.TimeFromStart > elapsed {
			break
		}
		idx = i
	}
	return idx
}

func (e *Executor) run(contexts []*execctx.Context, stopCh chan struct{}, callback Callback, partCallback PartCallback, autoClear bool) {
	status := execstatus.Succeeded

	for i, ctx := range contexts {
		select {
		case <-stopCh:
			status = execstatus.Preempted
		default:
		}
		if status != execstatus.Succeeded {
			break
		}

		e.stateMu.Lock()
		e.currentIndex = i
		e.stateMu.Unlock()

		e.statusMu.Lock()
		for len(e.timeIndex) <= i {
			e.timeIndex = append(e.timeIndex, time.Time{})
		}
		e.timeIndex[i] = time.Now()
		e.statusMu.Unlock()

		e.registry.RefreshIfOlderThan(registryFreshness)
		if !e.registry.EnsureActive(ctx.Controllers, e.cfg.ManageControllers) {
			err := executil.PreconditionError("execute", "required controllers not active", map[string]interface{}{"controllers": ctx.Controllers})
			e.logger.LogError("failed to ensure controllers active", err, "context", ctx.ID)
			status = execstatus.Aborted
			break
		}

		if err := e.validateStartState(ctx); err != nil {
			wrapped := executil.PreconditionError("execute", err.Error(), map[string]interface{}{"context": ctx.ID})
			e.logger.LogError("start-state validation failed", wrapped, "context", ctx.ID)
			status = execstatus.Aborted
			break
		}

		handles, err := e.dispatch(ctx)
		if err != nil {
			wrapped := executil.DispatchError("execute", err, map[string]interface{}{"context": ctx.ID})
			e.logger.LogError("dispatch failed", wrapped, "context", ctx.ID)
			status = execstatus.Aborted
			break
		}

		e.stateMu.Lock()
		e.activeHandles = handles
		e.stateMu.Unlock()

		deadline := e.computeDeadline(ctx)
		ctxStatus := e.waitForHandles(ctx, handles, deadline, stopCh)

		e.stateMu.Lock()
		e.activeHandles = nil
		e.stateMu.Unlock()

		if ctxStatus != execstatus.Succeeded {
			status = ctxStatus
			break
		}
		if partCallback != nil {
			partCallback(i)
		}
	}

	if status == execstatus.Succeeded && e.cfg.ShouldWaitForCompletion() {
		e.waitForRobotStop()
	}

	e.statusMu.Lock()
	e.lastStatus = status
	e.statusMu.Unlock()

	e.stateMu.Lock()
	e.currentIndex = -1
	e.running = false
	e.stopRequested = false
	if autoClear {
		e.contexts = nil
	}
	e.cond.Broadcast()
	e.stateMu.Unlock()

	e.logger.Info("batch finished", "status", status.String())
	if callback != nil {
		callback(status)
	}
}

// dispatch acquires one fresh handle per controller and sends its part.
// On any failure, it cancels the handles already acquired.
func (e *Executor) dispatch(ctx *execctx.Context) ([]controllerapi.Handle, error) {
	handles := make([]controllerapi.Handle, 0, len(ctx.Controllers))
	for i, name := range ctx.Controllers {
		handle, err := e.manager.Handle(name)
		if err != nil {
			cancelAll(handles)
			return nil, fmt.Errorf("acquire handle for %q: %w", name, err)
		}
		if err := handle.SendTrajectory(ctx.Parts[i]); err != nil {
			handle.Cancel()
			cancelAll(handles)
			return nil, fmt.Errorf("dispatch to %q: %w", name, err)
		}
		handles = append(handles, handle)
	}
	return handles, nil
}

func cancelAll(handles []controllerapi.Handle) {
	for _, h := range handles {
		h.Cancel()
	}
}

// computeDeadline returns the wall-clock deadline for ctx's parts, or the
// zero time if duration monitoring is disabled.
func (e *Executor) computeDeadline(ctx *execctx.Context) time.Time {
	if !e.cfg.ShouldMonitorExecutionDuration() {
		return time.Time{}
	}
	var maxBound time.Duration
	for i, controller := range ctx.Controllers {
		expected := ctx.Parts[i].LastWaypointTime()
		scaled := time.Duration(float64(expected) * e.cfg.DurationScalingFor(controller))
		bound := scaled + e.cfg.GoalMarginFor(controller)
		if bound > maxBound {
			maxBound = bound
		}
	}
	return time.Now().Add(maxBound)
}

// waitForHandles implements spec §4.5 steps 5-6: poll each handle until
// all are terminal, cancelling and returning TIMED_OUT if deadline
// elapses first, or PREEMPTED if stopCh closes first.
func (e *Executor) waitForHandles(ctx *execctx.Context, handles []controllerapi.Handle, deadline time.Time, stopCh chan struct{}) execstatus.Status {
	for {
		select {
		case <-stopCh:
			cancelAll(handles)
			e.logPreempted(ctx)
			return execstatus.Preempted
		default:
		}

		statuses := make([]execstatus.Status, len(handles))
		allTerminal := true
		for i, h := range handles {
			s := h.LastExecutionStatus()
			statuses[i] = s
			if !s.Terminal() {
				allTerminal = false
			}
		}
		if allTerminal {
			aggregate := execstatus.Aggregate(statuses)
			if aggregate != execstatus.Succeeded {
				e.logControllerFailure(ctx, statuses, aggregate)
			}
			return aggregate
		}

		if !deadline.IsZero() && !time.Now().Before(deadline) {
			cancelAll(handles)
			time.Sleep(cancelGrace)
			err := executil.TimeoutError("execute", map[string]interface{}{"context": ctx.ID, "controllers": ctx.Controllers})
			e.logger.LogError("execution deadline exceeded", err, "context", ctx.ID)
			return execstatus.TimedOut
		}

		wait := pollInterval
		if !deadline.IsZero() {
			if remaining := time.Until(deadline); remaining < wait {
				wait = remaining
			}
		}
		if wait < 0 {
			wait = 0
		}

		select {
		case <-stopCh:
			cancelAll(handles)
			e.logPreempted(ctx)
			return execstatus.Preempted
		case <-time.After(wait):
		}
	}
}

func (e *Executor) logPreempted(ctx *execctx.Context) {
	err := executil.PreemptedError("execute", map[string]interface{}{"context": ctx.ID})
	e.logger.LogError("execution preempted by stop request", err, "context", ctx.ID)
}

// logControllerFailure identifies the first controller whose terminal
// status matches the batch aggregate and logs a ControllerFailureError
// for it.
func (e *Executor) logControllerFailure(ctx *execctx.Context, statuses []execstatus.Status, aggregate execstatus.Status) {
	controller := "unknown"
	for i, s := range statuses {
		if s == aggregate && i < len(ctx.Controllers) {
			controller = ctx.Controllers[i]
			break
		}
	}
	err := executil.ControllerFailureError("execute", controller, map[string]interface{}{"context": ctx.ID, "status": aggregate.String()})
	e.logger.LogError("controller reported a non-success terminal status", err, "context", ctx.ID)
}

func (e *Executor) validateStartState(ctx *execctx.Context) error {
	if e.cfg.AllowedStartTolerance == 0 {
		return nil
	}
	state, fresh := e.monitor.CurrentState(stateFreshness)
	if !fresh {
		return nil
	}
	parts := make([]validator.Part, len(ctx.Controllers))
	for i, name := range ctx.Controllers {
		parts[i] = validator.Part{Controller: name, Trajectory: ctx.Parts[i]}
	}
	return validator.Validate(parts, state, e.model, e.cfg.AllowedStartTolerance)
}

// waitForRobotStop polls the live state and returns once joint velocities
// remain below a threshold for a short sustained interval, or its timeout
// elapses (SUCCEEDED is retained regardless; this is best-effort).
func (e *Executor) waitForRobotStop() {
	const (
		threshold    = 0.01
		sustainedFor = 150 * time.Millisecond
		pollEvery    = 20 * time.Millisecond
	)

	deadline := time.Now().Add(e.cfg.RobotStopTimeout.Duration)
	var stillSince time.Time
	for time.Now().Before(deadline) {
		if e.monitor.VelocitiesBelow(threshold, stateFreshness) {
			if stillSince.IsZero() {
				stillSince = time.Now()
			} else if time.Since(stillSince) >= sustainedFor {
				return
			}
		} else {
			stillSince = time.Time{}
		}
		time.Sleep(pollEvery)
	}
	e.logger.Debug("robot-stop wait timed out, retaining SUCCEEDED")
}
