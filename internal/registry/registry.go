// ============================================================================
// trajexec
// ============================================================================
//
// Package:     registry
// Description: C1 Controller Registry: tracks known controllers, their
//              actuated-joint sets, activity state and overlap graph,
//              refreshed from the controller-manager collaborator with a
//              max-age policy. Grounded on the teacher's procmgr registry
//              (map of named entities guarded by a single mutex, refreshed
//              from an external source) narrowed to a read-mostly cache
//              instead of an owning process table.
// License:     MIT
// ============================================================================

package registry

import (
	"sort"
	"sync"
	"time"

	"github.com/msto63/trajexec/internal/setx"
	"github.com/msto63/trajexec/internal/telemetry"
	"github.com/msto63/trajexec/internal/telemetry/log"
)

// ControllerManager is the subset of the controller-manager collaborator
// (spec §6.3) the registry needs to stay in sync.
type ControllerManager interface {
	List() []string
	Joints(name string) ([]string, bool)
	State(name string) (active, isDefault, ok bool)
	Switch(activate, deactivate []string) bool
}

// ControllerInfo is one known controller, per spec §3. Ordered by |joints|
// ascending then name ascending for selector determinism.
type ControllerInfo struct {
	Name                   string
	Joints                 []string
	OverlappingControllers []string
	Active                 bool
	Default                bool
	LastUpdate             time.Time
}

// Registry is C1: the controller cache.
type Registry struct {
	mu          sync.RWMutex
	controllers map[string]*ControllerInfo
	manager     ControllerManager
	logger      *log.Logger
}

// New creates a Registry backed by manager. It starts empty; call Reload
// before first use.
func New(manager ControllerManager) *Registry {
	return &Registry{
		controllers: make(map[string]*ControllerInfo),
		manager:     manager,
		logger:      telemetry.New("registry"),
	}
}

// Reload queries the collaborator for the full controller list and rebuilds
// the overlap graph in O(n^2) over controllers by joint-set intersection.
func (r *Registry) Reload() {
	names := r.manager.List()

	fresh := make(map[string]*ControllerInfo, len(names))
	now := time.Now()
	for _, name := range names {
		joints, ok := r.manager.Joints(name)
		if !ok {
			continue
		}
		active, isDefault, ok := r.manager.State(name)
		if !ok {
			continue
		}
		fresh[name] = &ControllerInfo{
			Name:       name,
			Joints:     joints,
			Active:     active,
			Default:    isDefault,
			LastUpdate: now,
		}
	}

	for _, a := range fresh {
		for _, b := range fresh {
			if a.Name == b.Name {
				continue
			}
			if setx.Overlaps(a.Joints, b.Joints) {
				a.OverlappingControllers = append(a.OverlappingControllers, b.Name)
			}
		}
		sort.Strings(a.OverlappingControllers)
	}

	r.mu.Lock()
	r.controllers = fresh
	r.mu.Unlock()

	r.logger.Debug("reloaded controller registry", "count", len(fresh))
}

// RefreshIfOlderThan reloads the whole registry if its oldest entry is
// older than age, the sole freshness constant of spec §4.1.
func (r *Registry) RefreshIfOlderThan(age time.Duration) {
	r.mu.RLock()
	stale := len(r.controllers) == 0
	oldest := time.Now()
	for _, c := range r.controllers {
		if c.LastUpdate.Before(oldest) {
			oldest = c.LastUpdate
		}
	}
	r.mu.RUnlock()

	if stale || time.Since(oldest) > age {
		r.Reload()
	}
}

// RefreshOne reloads the whole registry if the named controller's entry is
// older than age or unknown. It does not refresh that entry on its own:
// every entry is re-read.
func (r *Registry) RefreshOne(name string, age time.Duration) {
	r.mu.RLock()
	c, ok := r.controllers[name]
	stale := !ok || time.Since(c.LastUpdate) > age
	r.mu.RUnlock()

	if stale {
		r.Reload()
	}
}

// All returns every known ControllerInfo, ordered by |joints| ascending
// then name ascending.
func (r *Registry) All() []*ControllerInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	infos := make([]*ControllerInfo, 0, len(r.controllers))
	for _, c := range r.controllers {
		infos = append(infos, c)
	}
	sortControllers(infos)
	return infos
}

// Get returns a single controller's info by name.
func (r *Registry) Get(name string) (*ControllerInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.controllers[name]
	return c, ok
}

// IsActive reports a single controller's activity state.
func (r *Registry) IsActive(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.controllers[name]
	return ok && c.Active
}

// AreActive reports whether every named controller is active and known.
func (r *Registry) AreActive(names []string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, name := range names {
		c, ok := r.controllers[name]
		if !ok || !c.Active {
			return false
		}
	}
	return true
}

// EnsureActive implements the §4.1 policy: when manageControllers is
// false, succeeds iff every requested controller is already active.
// Otherwise it reloads the cache if a requested controller is not in it,
// fails if a requested controller is still unknown, and computes the currently-active controllers that overlap any
// requested controller's joints but are not themselves requested, and
// issues a single atomic switch to activate the requested\active set and
// deactivate the conflicting set.
func (r *Registry) EnsureActive(names []string, manageControllers bool) bool {
	if !manageControllers {
		return r.AreActive(names)
	}

	for _, n := range names {
		if _, ok := r.Get(n); !ok {
			r.Reload()
			break
		}
	}

	r.mu.RLock()
	requested := make(map[string]bool, len(names))
	for _, n := range names {
		requested[n] = true
	}

	var toActivate []string
	var conflicting []string
	requestedJoints := make([]string, 0)
	for _, n := range names {
		c, ok := r.controllers[n]
		if !ok {
			r.mu.RUnlock()
			r.logger.Error("requested controller unknown", "controller", n)
			return false
		}
		requestedJoints = setx.Union(requestedJoints, c.Joints)
		if !c.Active {
			toActivate = append(toActivate, n)
		}
	}
	for name, c := range r.controllers {
		if requested[name] || !c.Active {
			continue
		}
		if setx.Overlaps(c.Joints, requestedJoints) {
			conflicting = append(conflicting, name)
		}
	}
	r.mu.RUnlock()

	sort.Strings(toActivate)
	sort.Strings(conflicting)

	if len(toActivate) == 0 && len(conflicting) == 0 {
		return true
	}

	ok := r.manager.Switch(toActivate, conflicting)
	if !ok {
		r.logger.Error("controller switch failed", "activate", toActivate, "deactivate", conflicting)
		return false
	}

	r.Reload()
	return true
}

func sortControllers(infos []*ControllerInfo) {
	sort.Slice(infos, func(i, j int) bool {
		if len(infos[i].Joints) != len(infos[j].Joints) {
			return len(infos[i].Joints) < len(infos[j].Joints)
		}
		return infos[i].Name < infos[j].Name
	})
}
