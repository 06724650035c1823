// Package presence implements the ephemeral typing-state channels.
// Presence is a last-write-wins map keyed by participant id within a
// channel. Nothing here is persisted; state disappears when the
// participant leaves.
package presence

import (
	"log/slog"
	"swapchat/domain"
	"sync"
)

// Hub hands out broadcast channels keyed by conversation key (the sorted
// join of both participant ids, so either side addresses the same one).
type Hub struct {
	mu       sync.Mutex
	log      *slog.Logger
	channels map[string]*Channel
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{log: log, channels: make(map[string]*Channel)}
}

// Channel returns the channel for key, creating it on first use.
func (h *Hub) Channel(key string) *Channel {
	h.mu.Lock()
	defer h.mu.Unlock()
	ch, ok := h.channels[key]
	if !ok {
		ch = newChannel(key, h)
		h.channels[key] = ch
	}
	return ch
}

// drop removes an emptied channel so abandoned conversations don't
// accumulate in the map.
func (h *Hub) drop(key string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.channels, key)
}

// Channel carries typing heartbeats for one conversation. Track
// overwrites the caller's previous state (last-write-wins per user), and
// every state change fans out a sync signal to the registered watchers.
type Channel struct {
	mu       sync.Mutex
	key      string
	hub      *Hub
	states   map[string]domain.TypingStatus
	watchers map[int]func()
	nextID   int
}

func newChannel(key string, hub *Hub) *Channel {
	return &Channel{
		key:      key,
		hub:      hub,
		states:   make(map[string]domain.TypingStatus),
		watchers: make(map[int]func()),
	}
}

// Track publishes a participant's latest typing state. An older
// heartbeat never replaces a newer one.
func (c *Channel) Track(status domain.TypingStatus) {
	c.mu.Lock()
	if prev, ok := c.states[status.UserID]; ok && prev.Supersedes(status) {
		c.mu.Unlock()
		return
	}
	c.states[status.UserID] = status
	watchers := c.snapshotWatchers()
	c.mu.Unlock()
	for _, notify := range watchers {
		notify()
	}
}

// Leave removes the participant's presence entirely, as a disconnect
// does. The channel itself is dropped once nobody is tracked or watching.
func (c *Channel) Leave(userID string) {
	c.mu.Lock()
	delete(c.states, userID)
	watchers := c.snapshotWatchers()
	empty := len(c.states) == 0 && len(c.watchers) == 0
	c.mu.Unlock()
	for _, notify := range watchers {
		notify()
	}
	if empty {
		c.hub.drop(c.key)
	}
}

// OnSync registers a callback invoked after every presence change.
// The returned cancel detaches it.
func (c *Channel) OnSync(fn func()) (cancel func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.watchers[id] = fn
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		delete(c.watchers, id)
		c.mu.Unlock()
	}
}

// OtherTyping reports whether any participant other than selfID currently
// publishes isTyping=true. A user's own state never counts.
func (c *Channel) OtherTyping(selfID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for userID, status := range c.states {
		if userID == selfID {
			continue
		}
		if status.IsTyping {
			return true
		}
	}
	return false
}

func (c *Channel) snapshotWatchers() []func() {
	watchers := make([]func(), 0, len(c.watchers))
	for _, fn := range c.watchers {
		watchers = append(watchers, fn)
	}
	return watchers
}
