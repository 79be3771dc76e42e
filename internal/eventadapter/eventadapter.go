// ============================================================================
// trajexec
// ============================================================================
//
// Package:     eventadapter
// Description: C8 Event Bus Adapter: subscribes to the event topic and
//              maps the literal message "stop" to stopExecution; anything
//              else is logged and ignored. Grounded on spec §4.8 and
//              original_source's receiveEvent.
// License:     MIT
// ============================================================================

package eventadapter

import (
	"github.com/msto63/trajexec/internal/eventbus"
	"github.com/msto63/trajexec/internal/telemetry"
	"github.com/msto63/trajexec/internal/telemetry/log"
)

const stopMessage = "stop"

// StopFunc stops whichever executor is active, per the façade's
// stopExecution(autoClear).
type StopFunc func(autoClear bool)

// Adapter subscribes to a Topic and calls Stop on "stop" messages.
type Adapter struct {
	logger *log.Logger
	cancel func()
}

// Subscribe starts listening on topic and returns an Adapter whose Close
// unsubscribes. stop is invoked synchronously for each "stop" message,
// with auto_clear=true per spec §4.8.
func Subscribe(topic eventbus.Topic, stop StopFunc) *Adapter {
	ch, cancel := topic.Subscribe()
	a := &Adapter{
		logger: telemetry.New("eventadapter"),
		cancel: cancel,
	}

	go func() {
		for msg := range ch {
			a.handle(msg, stop)
		}
	}()

	return a
}

func (a *Adapter) handle(msg string, stop StopFunc) {
	switch msg {
	case stopMessage:
		a.logger.Info("received stop event")
		stop(true)
	default:
		a.logger.Debug("ignoring unknown event", "message", msg)
	}
}

// Close unsubscribes from the topic.
func (a *Adapter) Close() {
	a.cancel()
}
