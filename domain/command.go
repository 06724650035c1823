package domain

import "github.com/google/uuid"

// SendMessageCommand carries a validated outbound message.
// Sending to self is not a supported scenario, hence nefield.
type SendMessageCommand struct {
	SenderID   string `validate:"required"`
	ReceiverID string `validate:"required,nefield=SenderID"`
	Text       string `validate:"required"`
}

// EditMessageCommand replaces the text of an already-sent message.
type EditMessageCommand struct {
	EditorID  string    `validate:"required"`
	MessageID uuid.UUID `validate:"required"`
	NewText   string    `validate:"required"`
}
