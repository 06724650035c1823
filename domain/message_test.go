package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestPairKey_SymmetricAndStable(t *testing.T) {
	req := require.New(t)
	req.Equal(PairKey("alice", "bob"), PairKey("bob", "alice"))
	req.Equal("alice|bob", PairKey("bob", "alice"))
	req.NotEqual(PairKey("alice", "bob"), PairKey("alice", "carol"))
}

func TestMessage_Before_TiesBrokenByID(t *testing.T) {
	req := require.New(t)
	at := time.Now().UTC()
	a := Message{ID: uuid.MustParse("00000000-0000-0000-0000-000000000001"), CreatedAt: at}
	b := Message{ID: uuid.MustParse("00000000-0000-0000-0000-000000000002"), CreatedAt: at}

	// Two clients must agree on display order even for identical timestamps.
	req.True(a.Before(b))
	req.False(b.Before(a))

	later := Message{ID: a.ID, CreatedAt: at.Add(time.Nanosecond)}
	req.True(a.Before(later))
	req.False(later.Before(a))
}

func TestMessage_CounterpartAndBetween(t *testing.T) {
	req := require.New(t)
	m := Message{SenderID: "alice", ReceiverID: "bob"}

	req.Equal("bob", m.Counterpart("alice"))
	req.Equal("alice", m.Counterpart("bob"))

	req.True(m.Involves("alice"))
	req.False(m.Involves("carol"))

	req.True(m.Between("bob", "alice"))
	req.False(m.Between("alice", "carol"))
}

func TestTypingStatus_Supersedes(t *testing.T) {
	req := require.New(t)
	now := time.Now().UTC()
	older := TypingStatus{UserID: "alice", IsTyping: true, Timestamp: now}
	newer := TypingStatus{UserID: "alice", IsTyping: false, Timestamp: now.Add(time.Second)}

	req.True(newer.Supersedes(older))
	req.False(older.Supersedes(newer))
	req.False(older.Supersedes(older), "equal timestamps never supersede")
}

func TestProfile_DisplayName(t *testing.T) {
	req := require.New(t)
	req.Equal("Alice", Profile{ID: "alice", Name: "Alice"}.DisplayName())
	req.Equal(FallbackName, Profile{ID: "alice"}.DisplayName())
}
