package event

import (
	"swapchat/domain"
	"time"

	"github.com/google/uuid"
)

// ChangeEvent is a push notification describing an insert, update or
// delete on the message relation. Delivery is at-least-once; consumers
// must treat every event as an idempotent merge keyed by message id,
// never as a sequential patch.
type ChangeEvent interface {
	MessageID() uuid.UUID
	Pair() (senderID, receiverID string)
	OccurredAt() time.Time
}

// Involves reports whether the event concerns a message sent or received
// by userID.
func Involves(e ChangeEvent, userID string) bool {
	a, b := e.Pair()
	return a == userID || b == userID
}

type MessageInserted struct {
	Message domain.Message
	At      time.Time
}

func (e MessageInserted) MessageID() uuid.UUID   { return e.Message.ID }
func (e MessageInserted) Pair() (string, string) { return e.Message.SenderID, e.Message.ReceiverID }
func (e MessageInserted) OccurredAt() time.Time  { return e.At }

type MessageUpdated struct {
	Message domain.Message
	At      time.Time
}

func (e MessageUpdated) MessageID() uuid.UUID   { return e.Message.ID }
func (e MessageUpdated) Pair() (string, string) { return e.Message.SenderID, e.Message.ReceiverID }
func (e MessageUpdated) OccurredAt() time.Time  { return e.At }

// MessageDeleted keeps the participant pair so scoped subscriptions can
// still route it after the row is gone.
type MessageDeleted struct {
	ID         uuid.UUID
	SenderID   string
	ReceiverID string
	At         time.Time
}

func (e MessageDeleted) MessageID() uuid.UUID   { return e.ID }
func (e MessageDeleted) Pair() (string, string) { return e.SenderID, e.ReceiverID }
func (e MessageDeleted) OccurredAt() time.Time  { return e.At }
