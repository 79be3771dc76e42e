package eventadapter

import (
	"sync"
	"testing"
	"time"

	"github.com/msto63/trajexec/internal/eventbus"
)

func TestSubscribe_StopMessageInvokesStopFunc(t *testing.T) {
	topic := eventbus.New()

	var mu sync.Mutex
	var autoClearSeen bool
	calls := 0
	done := make(chan struct{})

	adapter := Subscribe(topic, func(autoClear bool) {
		mu.Lock()
		calls++
		autoClearSeen = autoClear
		mu.Unlock()
		close(done)
	})
	defer adapter.Close()

	topic.Publish("stop")

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("stop message did not trigger the stop function within 1s")
	}

	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Errorf("stop function called %d times, want 1", calls)
	}
	if !autoClearSeen {
		t.Error("stop function called with autoClear=false, want true")
	}
}

func TestSubscribe_UnknownMessageIgnored(t *testing.T) {
	topic := eventbus.New()

	called := make(chan struct{}, 1)
	adapter := Subscribe(topic, func(autoClear bool) {
		called <- struct{}{}
	})
	defer adapter.Close()

	topic.Publish("something_else")
	topic.Publish("stop")

	select {
	case <-called:
	case <-time.After(time.Second):
		t.Fatal("expected the stop message to eventually trigger the stop function")
	}

	select {
	case <-called:
		t.Error("stop function invoked more than once for one stop message")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestClose_StopsDelivery(t *testing.T) {
	topic := eventbus.New()

	calls := make(chan struct{}, 10)
	adapter := Subscribe(topic, func(autoClear bool) {
		calls <- struct{}{}
	})
	adapter.Close()

	time.Sleep(20 * time.Millisecond)
	topic.Publish("stop")

	select {
	case <-calls:
		t.Error("stop function invoked after Close()")
	case <-time.After(100 * time.Millisecond):
	}
}
