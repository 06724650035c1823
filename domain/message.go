// Package domain contains core concepts of the direct-messaging system.
// This file defines the Message entity and its invariants.
// No runtime, network, or UI logic should be added here.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// EditRecord is one superseded version of a message's text.
// The history is append-only: the most recent entry always holds the
// text that was overwritten by the edit that produced it.
type EditRecord struct {
	Text     string
	EditedAt time.Time
}

// Message is a directed, timestamped text communication between two users.
// ID, SenderID, ReceiverID and CreatedAt are immutable after creation.
// Read is monotonic: false -> true only, and only the receiver flips it.
type Message struct {
	ID          uuid.UUID
	SenderID    string
	ReceiverID  string
	Text        string
	CreatedAt   time.Time
	Read        bool
	EditedAt    *time.Time
	EditHistory []EditRecord
}

// Counterpart returns the other participant relative to userID.
func (m Message) Counterpart(userID string) string {
	if m.SenderID == userID {
		return m.ReceiverID
	}
	return m.SenderID
}

// Involves reports whether userID is sender or receiver.
func (m Message) Involves(userID string) bool {
	return m.SenderID == userID || m.ReceiverID == userID
}

// Between reports whether the message belongs to the a<->b thread,
// in either direction.
func (m Message) Between(a, b string) bool {
	return (m.SenderID == a && m.ReceiverID == b) ||
		(m.SenderID == b && m.ReceiverID == a)
}

// Before orders messages by CreatedAt ascending, ties broken by id order
// so that two clients always agree on the display order.
func (m Message) Before(other Message) bool {
	if m.CreatedAt.Equal(other.CreatedAt) {
		return m.ID.String() < other.ID.String()
	}
	return m.CreatedAt.Before(other.CreatedAt)
}
