package statemon

import (
	"testing"
	"time"
)

func TestCurrentState_NoDataYet(t *testing.T) {
	c := NewChannel()
	if _, fresh := c.CurrentState(time.Second); fresh {
		t.Error("CurrentState() on an empty channel reported fresh, want not fresh")
	}
}

func TestCurrentState_FreshAfterPublish(t *testing.T) {
	c := NewChannel()
	c.Publish(State{Positions: map[string]float64{"a": 1}, Timestamp: time.Now()})

	state, fresh := c.CurrentState(time.Second)
	if !fresh {
		t.Fatal("CurrentState() reported stale right after Publish")
	}
	if state.Positions["a"] != 1 {
		t.Errorf("CurrentState().Positions[a] = %v, want 1", state.Positions["a"])
	}
}

func TestCurrentState_StaleBeyondMaxAge(t *testing.T) {
	c := NewChannel()
	c.Publish(State{Timestamp: time.Now().Add(-time.Second)})

	if _, fresh := c.CurrentState(10 * time.Millisecond); fresh {
		t.Error("CurrentState() with an old timestamp reported fresh, want stale")
	}
}

func TestCurrentState_ZeroMaxAgeDisablesFreshnessCheck(t *testing.T) {
	c := NewChannel()
	c.Publish(State{Timestamp: time.Now().Add(-time.Hour)})

	if _, fresh := c.CurrentState(0); !fresh {
		t.Error("CurrentState(0) reported stale, want maxAge=0 to disable the check")
	}
}

func TestVelocitiesBelow(t *testing.T) {
	c := NewChannel()
	c.Publish(State{Velocities: map[string]float64{"a": 0.001, "b": -0.002}, Timestamp: time.Now()})

	if !c.VelocitiesBelow(0.01, time.Second) {
		t.Error("VelocitiesBelow(0.01) = false, want true")
	}
	if c.VelocitiesBelow(0.0001, time.Second) {
		t.Error("VelocitiesBelow(0.0001) = true, want false")
	}
}

func TestVelocitiesBelow_NoFreshState(t *testing.T) {
	c := NewChannel()
	if c.VelocitiesBelow(1, time.Second) {
		t.Error("VelocitiesBelow() with no published state = true, want false")
	}
}
