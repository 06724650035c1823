package search

import (
	"context"
	"log/slog"
	"swapchat/domain"
	"swapchat/domain/event"
	"swapchat/observability"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func openTestIndex(t *testing.T) (*Index, *observability.Stats) {
	t.Helper()
	stats := observability.NewStats()
	ix, err := Open(t.TempDir(), slog.Default(), stats)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ix.Close() })
	return ix, stats
}

func indexed(t *testing.T, ix *Index, sender, receiver, text string) domain.Message {
	t.Helper()
	m := domain.Message{
		ID:         uuid.New(),
		SenderID:   sender,
		ReceiverID: receiver,
		Text:       text,
		CreatedAt:  time.Now().UTC(),
	}
	require.NoError(t, ix.Consume(context.Background(), event.MessageInserted{Message: m, At: m.CreatedAt}))
	return m
}

func TestIndex_SearchScopedToUser(t *testing.T) {
	req := require.New(t)
	ix, stats := openTestIndex(t)
	ctx := context.Background()

	mine := indexed(t, ix, "alice", "bob", "selling a blue bicycle")
	indexed(t, ix, "carol", "dave", "another blue bicycle here")
	time.Sleep(50 * time.Millisecond)

	hits, err := ix.Search(ctx, "alice", "bicycle", 10)
	req.NoError(err)
	req.Len(hits, 1, "other users' threads must never leak into results")
	req.Equal(mine.ID.String(), hits[0].MessageID)
	req.Equal("selling a blue bicycle", hits[0].Text)

	// The receiver finds it too.
	hits, err = ix.Search(ctx, "bob", "bicycle", 10)
	req.NoError(err)
	req.Len(hits, 1)

	hits, err = ix.Search(ctx, "alice", "nonexistent", 10)
	req.NoError(err)
	req.Empty(hits)

	req.Equal(uint64(3), stats.Snapshot().SearchQueries)
}

func TestIndex_EditAndDeleteStayConsistent(t *testing.T) {
	req := require.New(t)
	ix, _ := openTestIndex(t)
	ctx := context.Background()

	m := indexed(t, ix, "alice", "bob", "meet at the station")

	m.Text = "meet at the harbour"
	req.NoError(ix.Consume(ctx, event.MessageUpdated{Message: m, At: time.Now().UTC()}))
	time.Sleep(50 * time.Millisecond)

	hits, err := ix.Search(ctx, "alice", "station", 10)
	req.NoError(err)
	req.Empty(hits, "the old text must be unsearchable after an edit")

	hits, err = ix.Search(ctx, "alice", "harbour", 10)
	req.NoError(err)
	req.Len(hits, 1)

	req.NoError(ix.Consume(ctx, event.MessageDeleted{
		ID: m.ID, SenderID: m.SenderID, ReceiverID: m.ReceiverID, At: time.Now().UTC(),
	}))
	time.Sleep(50 * time.Millisecond)

	hits, err = ix.Search(ctx, "alice", "harbour", 10)
	req.NoError(err)
	req.Empty(hits)
}

func TestIndex_ReindexHealsMissedRows(t *testing.T) {
	req := require.New(t)
	ix, _ := openTestIndex(t)
	ctx := context.Background()

	// Rows written while the feed was down never hit Consume.
	missed := []domain.Message{
		{ID: uuid.New(), SenderID: "alice", ReceiverID: "bob", Text: "lost in transit", CreatedAt: time.Now().UTC()},
		{ID: uuid.New(), SenderID: "bob", ReceiverID: "alice", Text: "also lost", CreatedAt: time.Now().UTC()},
	}
	req.NoError(ix.Reindex(missed))
	time.Sleep(50 * time.Millisecond)

	hits, err := ix.Search(ctx, "alice", "lost", 10)
	req.NoError(err)
	req.Len(hits, 2)
}
