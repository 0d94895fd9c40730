// Package eventbus carries report lifecycle notifications between the
// analysis service and its observers. Subscriptions are synchronous: by the
// time Publish returns, every handler has run.
package eventbus

import (
	evbus "github.com/asaskevich/EventBus"
)

// New creates an event bus instance. Services receive their own bus so tests
// can observe events without global state.
func New() evbus.Bus {
	return evbus.New()
}
