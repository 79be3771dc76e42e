// ============================================================================
// trajexec
// ============================================================================
//
// Package:     eventbus
// Description: The event-topic collaborator (spec §6.4): an in-process
//              pub/sub broadcast of opaque text messages. The core
//              subscribes to a single well-known topic name and reacts to
//              the literal message "stop" (§4.8); everything else is
//              logged and ignored.
// License:     MIT
// ============================================================================

package eventbus

import "sync"

// ExecutionEventTopic is the conventional name of the execution event
// topic. The core is handed a Topic value directly and does not look
// topics up by this name.
const ExecutionEventTopic = "execution_events"

// Topic is a string-valued broadcast channel collaborator.
type Topic interface {
	// Publish broadcasts msg to every current subscriber. Non-blocking:
	// slow or full subscribers drop the message rather than stall the
	// publisher.
	Publish(msg string)

	// Subscribe returns a channel of future messages and a function that
	// unsubscribes and closes it.
	Subscribe() (<-chan string, func())
}

// InProcess is the default Topic: broadcast over Go channels with no
// external transport.
type InProcess struct {
	mu          sync.RWMutex
	subscribers map[chan string]struct{}
}

// New creates an empty in-process topic.
func New() *InProcess {
	return &InProcess{subscribers: make(map[chan string]struct{})}
}

// Publish implements Topic.
func (t *InProcess) Publish(msg string) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for ch := range t.subscribers {
		select {
		case ch <- msg:
		default:
		}
	}
}

// Subscribe implements Topic.
func (t *InProcess) Subscribe() (<-chan string, func()) {
	ch := make(chan string, 8)
	t.mu.Lock()
	t.subscribers[ch] = struct{}{}
	t.mu.Unlock()

	cancel := func() {
		t.mu.Lock()
		if _, ok := t.subscribers[ch]; ok {
			delete(t.subscribers, ch)
			close(ch)
		}
		t.mu.Unlock()
	}
	return ch, cancel
}
