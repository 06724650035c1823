package domain

import (
	"sort"
	"time"
)

// Conversation is the derived inbox entry for one counterpart: it is never
// stored, only recomputed from the message set.
type Conversation struct {
	UserID      string
	UserName    string
	LastMessage Message
	UnreadCount int
}

// LastActivity is the timestamp conversations are sorted by.
func (c Conversation) LastActivity() time.Time {
	return c.LastMessage.CreatedAt
}

// PairKey returns the canonical channel key for two participants:
// the sorted join of both ids, so either side addresses the same channel
// regardless of role.
func PairKey(a, b string) string {
	ids := []string{a, b}
	sort.Strings(ids)
	return ids[0] + "|" + ids[1]
}
