package registry

import (
	"testing"
	"time"
)

// fakeManager is a minimal in-memory ControllerManager test double.
type fakeManager struct {
	joints      map[string][]string
	active      map[string]bool
	defaults    map[string]bool
	switchCalls int
	switchOK    bool
}

func newFakeManager() *fakeManager {
	return &fakeManager{
		joints:   make(map[string][]string),
		active:   make(map[string]bool),
		defaults: make(map[string]bool),
		switchOK: true,
	}
}

func (f *fakeManager) add(name string, joints []string, active bool) {
	f.joints[name] = joints
	f.active[name] = active
}

func (f *fakeManager) List() []string {
	names := make([]string, 0, len(f.joints))
	for name := range f.joints {
		names = append(names, name)
	}
	return names
}

func (f *fakeManager) Joints(name string) ([]string, bool) {
	joints, ok := f.joints[name]
	return joints, ok
}

func (f *fakeManager) State(name string) (active, isDefault, ok bool) {
	active, ok = f.active[name]
	return active, f.defaults[name], ok
}

func (f *fakeManager) Switch(activate, deactivate []string) bool {
	f.switchCalls++
	if !f.switchOK {
		return false
	}
	for _, name := range activate {
		f.active[name] = true
	}
	for _, name := range deactivate {
		f.active[name] = false
	}
	return true
}

func TestReload_PopulatesAndOrders(t *testing.T) {
	fm := newFakeManager()
	fm.add("gripper", []string{"finger"}, true)
	fm.add("arm", []string{"shoulder", "elbow"}, true)

	r := New(fm)
	r.Reload()

	all := r.All()
	if len(all) != 2 {
		t.Fatalf("All() = %v, want 2 entries", all)
	}
	if all[0].Name != "gripper" {
		t.Errorf("All()[0].Name = %q, want %q (fewer joints first)", all[0].Name, "gripper")
	}
}

func TestReload_ComputesOverlap(t *testing.T) {
	fm := newFakeManager()
	fm.add("arm", []string{"shoulder", "elbow"}, true)
	fm.add("arm_alt", []string{"elbow", "wrist"}, false)
	fm.add("gripper", []string{"finger"}, true)

	r := New(fm)
	r.Reload()

	arm, ok := r.Get("arm")
	if !ok {
		t.Fatal("Get(arm) not found")
	}
	if len(arm.OverlappingControllers) != 1 || arm.OverlappingControllers[0] != "arm_alt" {
		t.Errorf("arm.OverlappingControllers = %v, want [arm_alt]", arm.OverlappingControllers)
	}

	gripper, _ := r.Get("gripper")
	if len(gripper.OverlappingControllers) != 0 {
		t.Errorf("gripper.OverlappingControllers = %v, want none", gripper.OverlappingControllers)
	}
}

func TestRefreshIfOlderThan_SkipsWhenFresh(t *testing.T) {
	fm := newFakeManager()
	fm.add("arm", []string{"shoulder"}, true)

	r := New(fm)
	r.Reload()
	fm.add("gripper", []string{"finger"}, true) // won't be seen unless reloaded

	r.RefreshIfOlderThan(time.Hour)
	if _, ok := r.Get("gripper"); ok {
		t.Error("RefreshIfOlderThan() reloaded despite fresh data")
	}
}

func TestRefreshIfOlderThan_ReloadsWhenStale(t *testing.T) {
	fm := newFakeManager()
	fm.add("arm", []string{"shoulder"}, true)

	r := New(fm)
	r.Reload()
	fm.add("gripper", []string{"finger"}, true)

	r.RefreshIfOlderThan(0)
	if _, ok := r.Get("gripper"); !ok {
		t.Error("RefreshIfOlderThan(0) did not reload")
	}
}

func TestAreActive(t *testing.T) {
	fm := newFakeManager()
	fm.add("arm", []string{"shoulder"}, true)
	fm.add("gripper", []string{"finger"}, false)

	r := New(fm)
	r.Reload()

	if !r.AreActive([]string{"arm"}) {
		t.Error("AreActive([arm]) = false, want true")
	}
	if r.AreActive([]string{"arm", "gripper"}) {
		t.Error("AreActive([arm gripper]) = true, want false (gripper inactive)")
	}
	if r.AreActive([]string{"unknown"}) {
		t.Error("AreActive([unknown]) = true, want false")
	}
}

func TestEnsureActive_UnmanagedRequiresAlreadyActive(t *testing.T) {
	fm := newFakeManager()
	fm.add("arm", []string{"shoulder"}, false)

	r := New(fm)
	r.Reload()

	if r.EnsureActive([]string{"arm"}, false) {
		t.Error("EnsureActive(unmanaged) = true for an inactive controller, want false")
	}
	if fm.switchCalls != 0 {
		t.Errorf("EnsureActive(unmanaged) called Switch %d times, want 0", fm.switchCalls)
	}
}

func TestEnsureActive_ManagedActivatesAndDeactivatesConflicts(t *testing.T) {
	fm := newFakeManager()
	fm.add("arm", []string{"shoulder", "elbow"}, false)
	fm.add("arm_alt", []string{"elbow", "wrist"}, true) // overlaps arm, currently active
	fm.add("gripper", []string{"finger"}, true)         // unrelated, should stay untouched

	r := New(fm)
	r.Reload()

	if !r.EnsureActive([]string{"arm"}, true) {
		t.Fatal("EnsureActive(managed) = false, want true")
	}
	if !r.IsActive("arm") {
		t.Error("arm not active after EnsureActive")
	}
	if r.IsActive("arm_alt") {
		t.Error("arm_alt still active after EnsureActive, want deactivated (overlap)")
	}
	if !r.IsActive("gripper") {
		t.Error("gripper deactivated by EnsureActive, want untouched")
	}
}

func TestEnsureActive_AlreadySatisfiedSkipsSwitch(t *testing.T) {
	fm := newFakeManager()
	fm.add("arm", []string{"shoulder"}, true)

	r := New(fm)
	r.Reload()

	if !r.EnsureActive([]string{"arm"}, true) {
		t.Fatal("EnsureActive() = false, want true")
	}
	if fm.switchCalls != 0 {
		t.Errorf("EnsureActive() called Switch %d times when already satisfied, want 0", fm.switchCalls)
	}
}

func TestEnsureActive_SwitchFailurePropagates(t *testing.T) {
	fm := newFakeManager()
	fm.add("arm", []string{"shoulder"}, false)
	fm.switchOK = false

	r := New(fm)
	r.Reload()

	if r.EnsureActive([]string{"arm"}, true) {
		t.Error("EnsureActive() = true despite Switch failure, want false")
	}
}
