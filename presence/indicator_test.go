package presence

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIndicator_InputDrivesTypingState(t *testing.T) {
	req := require.New(t)
	hub := NewHub(slog.Default())

	alice := NewIndicator(hub, "alice", "bob", "alice")
	bob := NewIndicator(hub, "bob", "alice", "bob")
	defer alice.Close()
	defer bob.Close()

	req.False(bob.OtherUserTyping())

	alice.UpdateInput("hel")
	req.True(bob.OtherUserTyping())
	req.False(alice.OtherUserTyping(), "alice never sees her own indicator")

	alice.UpdateInput("   ")
	req.False(bob.OtherUserTyping(), "cleared input stops the indicator")

	alice.UpdateInput("hello bob")
	req.True(bob.OtherUserTyping())

	alice.MessageSent()
	req.False(bob.OtherUserTyping())

	alice.UpdateInput("one more thing")
	alice.Blur()
	req.False(bob.OtherUserTyping())
}

func TestIndicator_CloseErasesPresence(t *testing.T) {
	req := require.New(t)
	hub := NewHub(slog.Default())

	alice := NewIndicator(hub, "alice", "bob", "alice")
	bob := NewIndicator(hub, "bob", "alice", "bob")
	defer bob.Close()

	alice.UpdateInput("typing...")
	req.True(bob.OtherUserTyping())

	// Closing mid-keystroke must clear the indicator on the other side,
	// exactly like a disconnect.
	alice.Close()
	req.False(bob.OtherUserTyping())

	// Closed indicators ignore further input. Close is idempotent.
	alice.UpdateInput("ghost")
	req.False(bob.OtherUserTyping())
	alice.Close()
}
