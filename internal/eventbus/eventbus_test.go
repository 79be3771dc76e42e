package eventbus

import (
	"testing"
	"time"
)

func TestInProcess_PublishReachesSubscriber(t *testing.T) {
	topic := New()
	ch, cancel := topic.Subscribe()
	defer cancel()

	topic.Publish("stop")

	select {
	case msg := <-ch:
		if msg != "stop" {
			t.Errorf("received %q, want %q", msg, "stop")
		}
	case <-time.After(time.Second):
		t.Fatal("Publish() did not reach the subscriber within 1s")
	}
}

func TestInProcess_PublishWithNoSubscribersDoesNotBlock(t *testing.T) {
	topic := New()
	done := make(chan struct{})
	go func() {
		topic.Publish("nobody listening")
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish() with no subscribers blocked")
	}
}

func TestInProcess_PublishToFullSubscriberDropsRatherThanBlocks(t *testing.T) {
	topic := New()
	_, cancel := topic.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			topic.Publish("message")
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish() into a full subscriber channel blocked instead of dropping")
	}
}

func TestInProcess_CancelStopsDelivery(t *testing.T) {
	topic := New()
	ch, cancel := topic.Subscribe()
	cancel()

	topic.Publish("after cancel")

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("received a message on a cancelled subscription")
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("cancelled subscription channel was not closed")
	}
}

func TestInProcess_MultipleSubscribersAllReceive(t *testing.T) {
	topic := New()
	chA, cancelA := topic.Subscribe()
	defer cancelA()
	chB, cancelB := topic.Subscribe()
	defer cancelB()

	topic.Publish("broadcast")

	for _, ch := range []<-chan string{chA, chB} {
		select {
		case msg := <-ch:
			if msg != "broadcast" {
				t.Errorf("received %q, want %q", msg, "broadcast")
			}
		case <-time.After(time.Second):
			t.Fatal("one subscriber did not receive the broadcast")
		}
	}
}
