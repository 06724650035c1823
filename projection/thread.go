// Package projection builds local views from gateway snapshots and
// observed change events. Handles ordering, deduplication, and derived
// aggregates. Does not emit events or interact with UI directly.
package projection

import (
	"context"
	"sort"
	"swapchat/domain"
	"swapchat/domain/event"
	"sync"

	"github.com/google/uuid"
)

// Thread is the in-memory ordered view of one conversation. It is seeded
// from a gateway snapshot via Reset and kept fresh by merging change
// events. Every merge is idempotent and keyed by message id, so
// duplicated or out-of-order deliveries for different rows are harmless.
type Thread struct {
	mu       sync.RWMutex
	selfID   string
	otherID  string
	messages []domain.Message // CreatedAt ascending, ties by id
}

func NewThread(selfID, otherID string) *Thread {
	return &Thread{selfID: selfID, otherID: otherID}
}

// Reset replaces the whole view with a freshly fetched snapshot.
func (t *Thread) Reset(messages []domain.Message) {
	sorted := append([]domain.Message(nil), messages...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })
	t.mu.Lock()
	t.messages = sorted
	t.mu.Unlock()
}

// Consume merges one change event into the view. Events outside this
// thread's pair are ignored. A stale insert echo for an id the view
// already knows is dropped: the known row may carry a later update, and
// last full row wins by content, not by arrival order.
func (t *Thread) Consume(_ context.Context, e event.ChangeEvent) error {
	a, b := e.Pair()
	if domain.PairKey(a, b) != domain.PairKey(t.selfID, t.otherID) {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	switch evt := e.(type) {
	case event.MessageInserted:
		if t.indexOf(evt.Message.ID) >= 0 {
			return nil
		}
		t.insertSorted(evt.Message)
	case event.MessageUpdated:
		if i := t.indexOf(evt.Message.ID); i >= 0 {
			t.messages[i] = evt.Message
		} else {
			// Update arrived before its insert echo; treat as first sight.
			t.insertSorted(evt.Message)
		}
	case event.MessageDeleted:
		if i := t.indexOf(evt.ID); i >= 0 {
			t.messages = append(t.messages[:i], t.messages[i+1:]...)
		}
	}
	return nil
}

func (t *Thread) indexOf(id uuid.UUID) int {
	for i, m := range t.messages {
		if m.ID == id {
			return i
		}
	}
	return -1
}

func (t *Thread) insertSorted(m domain.Message) {
	at := sort.Search(len(t.messages), func(i int) bool { return m.Before(t.messages[i]) })
	t.messages = append(t.messages, domain.Message{})
	copy(t.messages[at+1:], t.messages[at:])
	t.messages[at] = m
}

// Messages returns a copy of the ordered view.
func (t *Thread) Messages() []domain.Message {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]domain.Message(nil), t.messages...)
}

func (t *Thread) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.messages)
}
