package domain

import "time"

// TypingStatus is an ephemeral presence heartbeat. It only exists as the
// latest published state per user within a conversation channel and is
// never persisted.
type TypingStatus struct {
	UserID    string
	IsTyping  bool
	Timestamp time.Time
}

// Supersedes reports whether this heartbeat is newer than other.
// Presence is last-write-wins per user.
func (t TypingStatus) Supersedes(other TypingStatus) bool {
	return t.Timestamp.After(other.Timestamp)
}
