// ============================================================================
// trajexec
// ============================================================================
//
// Package:     continuous
// Description: C6 Continuous Executor: a second worker servicing a FIFO
//              queue of push-and-execute contexts, coalescing with any
//              active handles on shared controllers while letting parts on
//              disjoint controllers overlap. Grounded on spec §4.6 and
//              original_source's continuousExecutionThread /
//              continuous_execution_queue_.
// License:     MIT
// ============================================================================

package continuous

import (
	"sync"
	"time"

	"github.com/msto63/trajexec/internal/config"
	"github.com/msto63/trajexec/internal/controllerapi"
	"github.com/msto63/trajexec/internal/execctx"
	"github.com/msto63/trajexec/internal/execstatus"
	"github.com/msto63/trajexec/internal/registry"
	"github.com/msto63/trajexec/internal/telemetry"
	"github.com/msto63/trajexec/internal/telemetry/log"
)

// forever stands in for "no deadline": C7's duration monitor is wired only
// into C5 (spec §4.7); the continuous executor waits on handles until they
// finish naturally or are cancelled by Stop.
const forever = 365 * 24 * time.Hour

// Executor is C6: the continuously-queued executor.
type Executor struct {
	registry *registry.Registry
	manager  controllerapi.Manager
	cfg      *config.Configuration
	logger   *log.Logger

	mu            sync.Mutex
	cond          *sync.Cond
	queue         []*execctx.Context
	shutdown      bool
	stopRequested bool
	activeHandles map[string]controllerapi.Handle

	statusMu   sync.RWMutex
	lastStatus execstatus.Status
}

// New creates a continuous executor and starts its worker goroutine.
func New(reg *registry.Registry, manager controllerapi.Manager, cfg *config.Configuration) *Executor {
	e := &Executor{
		registry:      reg,
		manager:       manager,
		cfg:           cfg,
		logger:        telemetry.New("continuous"),
		activeHandles: make(map[string]controllerapi.Handle),
		lastStatus:    execstatus.Unknown,
	}
	e.cond = sync.NewCond(&e.mu)
	go e.run()
	return e
}

// PushAndExecute enqueues ctx and wakes the worker.
func (e *Executor) PushAndExecute(ctx *execctx.Context) {
	e.mu.Lock()
	e.queue = append(e.queue, ctx)
	e.cond.Signal()
	e.mu.Unlock()
}

// Active reports whether the continuous executor has queued work or
// in-flight handles, the condition under which waitForExecution's
// documented asymmetry (§4.6 step 5) applies.
func (e *Executor) Active() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.queue) > 0 || len(e.activeHandles) > 0
}

// Stop implements step 3 of §4.6: cancels current handles, clears the
// queue, and blocks until the worker has acknowledged the request.
func (e *Executor) Stop() {
	e.mu.Lock()
	if len(e.queue) == 0 && len(e.activeHandles) == 0 {
		e.mu.Unlock()
		return
	}
	e.stopRequested = true
	e.cond.Signal()
	for e.stopRequested {
		e.cond.Wait()
	}
	e.mu.Unlock()
}

// Shutdown stops the worker goroutine permanently. Not safe to call more
// than once.
func (e *Executor) Shutdown() {
	e.mu.Lock()
	e.shutdown = true
	e.cond.Signal()
	e.mu.Unlock()
}

// LastStatus returns the most recently recorded context outcome. No
// per-context callback is invoked (spec §4.6 step 4: fire-and-forget).
func (e *Executor) LastStatus() execstatus.Status {
	e.statusMu.RLock()
	defer e.statusMu.RUnlock()
	return e.lastStatus
}

func (e *Executor) setLastStatus(status execstatus.Status) {
	e.statusMu.Lock()
	e.lastStatus = status
	e.statusMu.Unlock()
}

func (e *Executor) run() {
	for {
		e.mu.Lock()
		for len(e.queue) == 0 && !e.shutdown && !e.stopRequested {
			e.cond.Wait()
		}
		if e.shutdown {
			e.queue = nil
			e.mu.Unlock()
			return
		}
		if e.stopRequested {
			for name, h := range e.activeHandles {
				h.Cancel()
				delete(e.activeHandles, name)
			}
			e.queue = nil
			e.stopRequested = false
			e.cond.Broadcast()
			e.mu.Unlock()
			continue
		}

		ctx := e.queue[0]
		e.queue = e.queue[1:]
		e.mu.Unlock()

		e.executeContext(ctx)
	}
}

// executeContext dispatches ctx's parts, one goroutine per controller, each
// waiting only for that controller's own prior handle if it is still busy
// (spec §4.6 step 4) — a free controller is never delayed behind a busy
// one sharing the same context. Returns without waiting for the new
// handles to finish; completion is tracked in the background so the
// worker can pick up the next queued context immediately.
func (e *Executor) executeContext(ctx *execctx.Context) {
	e.registry.RefreshIfOlderThan(1 * time.Second)
	if !e.registry.EnsureActive(ctx.Controllers, e.cfg.ManageControllers) {
		e.logger.Error("failed to ensure controllers active", "context", ctx.ID)
		e.setLastStatus(execstatus.Aborted)
		return
	}

	handles := make([]controllerapi.Handle, len(ctx.Controllers))
	failed := make([]bool, len(ctx.Controllers))
	var wg sync.WaitGroup
	for i, name := range ctx.Controllers {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()

			e.mu.Lock()
			existing, busy := e.activeHandles[name]
			e.mu.Unlock()
			if busy {
				existing.WaitForExecution(forever)
			}

			handle, err := e.manager.Handle(name)
			if err != nil {
				e.logger.Error("failed to acquire handle", "controller", name, "error", err)
				failed[i] = true
				return
			}
			if err := handle.SendTrajectory(ctx.Parts[i]); err != nil {
				handle.Cancel()
				e.logger.Error("failed to dispatch part", "controller", name, "error", err)
				failed[i] = true
				return
			}

			e.mu.Lock()
			e.activeHandles[name] = handle
			e.mu.Unlock()
			handles[i] = handle
		}(i, name)
	}
	wg.Wait()

	for _, f := range failed {
		if f {
			cancelAll(handles)
			e.setLastStatus(execstatus.Aborted)
			return
		}
	}

	go e.trackCompletion(ctx, handles)
}

func (e *Executor) trackCompletion(ctx *execctx.Context, handles []controllerapi.Handle) {
	statuses := make([]execstatus.Status, len(handles))
	for i, h := range handles {
		statuses[i] = h.WaitForExecution(forever)
	}
	e.setLastStatus(execstatus.Aggregate(statuses))

	e.mu.Lock()
	for i, name := range ctx.Controllers {
		if i < len(handles) && e.activeHandles[name] == handles[i] {
			delete(e.activeHandles, name)
		}
	}
	e.mu.Unlock()
}

func cancelAll(handles []controllerapi.Handle) {
	for _, h := range handles {
		if h != nil {
			h.Cancel()
		}
	}
}
