// Package runtime handles change-event propagation and subscription
// lifecycle. It orchestrates the live-update path without containing
// business logic or domain rules.
package runtime

import (
	"swapchat/contract"
	"swapchat/domain/event"
	"sync"
)

type subscription struct {
	scope contract.Scope
	sink  contract.EventSink
}

// Registry holds the active live-update subscriptions. A subscription is
// keyed by a caller-chosen subscriber id (typically one per mounted view),
// and registering the same id again replaces the previous entry. That
// last-write-wins rule is what re-subscribing on identity change relies
// on: a stale subscription bound to a previous user can never survive.
type Registry struct {
	mu   sync.RWMutex
	subs map[string]subscription
}

var _ contract.IRegistry = (*Registry)(nil)

func NewRegistry() *Registry {
	return &Registry{subs: make(map[string]subscription)}
}

func (r *Registry) Subscribe(subscriberID string, scope contract.Scope, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs[subscriberID] = subscription{scope: scope, sink: sink}
}

func (r *Registry) Unsubscribe(subscriberID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.subs, subscriberID)
}

// SinksFor returns every sink whose scope matches the event. Order is
// unspecified; sinks must not rely on delivery order across subscribers.
func (r *Registry) SinksFor(e event.ChangeEvent) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var matched []contract.EventSink
	for _, sub := range r.subs {
		if sub.scope.Matches(e) {
			matched = append(matched, sub.sink)
		}
	}
	return matched
}

// Len reports the number of active subscriptions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs)
}
