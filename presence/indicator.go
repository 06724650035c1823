package presence

import (
	"strings"
	"swapchat/domain"
	"sync"
	"time"
)

// Indicator is one participant's session on a conversation's typing
// channel. It drives the {not-typing} -> {typing} -> {not-typing} state
// machine from input activity and exposes whether the counterpart is
// typing right now.
type Indicator struct {
	channel *Channel
	selfID  string
	cancel  func()
	now     func() time.Time

	mu          sync.Mutex
	typing      bool
	otherTyping bool
	closed      bool
}

// NewIndicator joins the typing channel for the userA<->userB
// conversation on behalf of selfID.
func NewIndicator(hub *Hub, userA, userB, selfID string) *Indicator {
	ind := &Indicator{
		channel: hub.Channel(domain.PairKey(userA, userB)),
		selfID:  selfID,
		now:     func() time.Time { return time.Now().UTC() },
	}
	ind.cancel = ind.channel.OnSync(ind.onSync)
	ind.onSync()
	return ind
}

// onSync recomputes the counterpart flag after every presence change.
func (i *Indicator) onSync() {
	other := i.channel.OtherTyping(i.selfID)
	i.mu.Lock()
	i.otherTyping = other
	i.mu.Unlock()
}

// SetTyping publishes the caller's typing state, overwriting the
// previous heartbeat.
func (i *Indicator) SetTyping(isTyping bool) {
	i.mu.Lock()
	if i.closed || i.typing == isTyping {
		i.mu.Unlock()
		return
	}
	i.typing = isTyping
	i.mu.Unlock()
	i.channel.Track(domain.TypingStatus{
		UserID:    i.selfID,
		IsTyping:  isTyping,
		Timestamp: i.now(),
	})
}

// UpdateInput derives typing state from the current input box content:
// non-empty means typing, cleared means not.
func (i *Indicator) UpdateInput(text string) {
	i.SetTyping(strings.TrimSpace(text) != "")
}

// MessageSent stops the typing indicator after a successful send.
func (i *Indicator) MessageSent() { i.SetTyping(false) }

// Blur stops the typing indicator when the input loses focus.
func (i *Indicator) Blur() { i.SetTyping(false) }

// OtherUserTyping reports whether the counterpart's latest heartbeat
// says they are typing. The caller's own state is never considered.
func (i *Indicator) OtherUserTyping() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.otherTyping
}

// Close leaves the channel, erasing this participant's presence, and
// detaches the sync watcher. Idempotent.
func (i *Indicator) Close() {
	i.mu.Lock()
	if i.closed {
		i.mu.Unlock()
		return
	}
	i.closed = true
	i.typing = false
	i.mu.Unlock()
	i.cancel()
	i.channel.Leave(i.selfID)
}
