// Package search maintains a full-text index over message text, fed by
// the change feed so edits and deletes stay consistent with the store.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"swapchat/contract"
	"swapchat/domain"
	"swapchat/domain/event"
	"swapchat/observability"

	"github.com/blugelabs/bluge"
)

// Hit is one search result: enough to open the owning thread and show a
// preview.
type Hit struct {
	MessageID  string
	SenderID   string
	ReceiverID string
	Text       string
}

// Index wraps a bluge writer. It consumes change events as a permanent
// sink; Update is used for both inserts and edits so replayed events stay
// idempotent per message id.
type Index struct {
	log    *slog.Logger
	writer *bluge.Writer
	stats  *observability.Stats
}

var _ contract.EventSink = (*Index)(nil)

func Open(path string, log *slog.Logger, stats *observability.Stats) (*Index, error) {
	writer, err := bluge.OpenWriter(bluge.DefaultConfig(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open bluge writer: %w", err)
	}
	return &Index{log: log, writer: writer, stats: stats}, nil
}

func (ix *Index) Close() error {
	return ix.writer.Close()
}

func (ix *Index) Consume(_ context.Context, e event.ChangeEvent) error {
	switch evt := e.(type) {
	case event.MessageInserted:
		return ix.index(evt.Message.ID.String(), evt.Message.SenderID, evt.Message.ReceiverID, evt.Message.Text)
	case event.MessageUpdated:
		return ix.index(evt.Message.ID.String(), evt.Message.SenderID, evt.Message.ReceiverID, evt.Message.Text)
	case event.MessageDeleted:
		return ix.writer.Delete(bluge.NewDocument(evt.ID.String()).ID())
	}
	return nil
}

func (ix *Index) index(id, senderID, receiverID, text string) error {
	doc := bluge.NewDocument(id).
		AddField(bluge.NewTextField("text", text).StoreValue()).
		AddField(bluge.NewKeywordField("sender", senderID).StoreValue()).
		AddField(bluge.NewKeywordField("receiver", receiverID).StoreValue())
	return ix.writer.Update(doc.ID(), doc)
}

// Reindex replays stored messages into the index. Run at startup so rows
// written while the feed was down (or dropped under backpressure) are
// searchable again.
func (ix *Index) Reindex(messages []domain.Message) error {
	for _, m := range messages {
		if err := ix.index(m.ID.String(), m.SenderID, m.ReceiverID, m.Text); err != nil {
			return err
		}
	}
	return nil
}

// Search returns up to limit messages matching terms among those the
// user sent or received. Other users' threads never leak into results.
func (ix *Index) Search(ctx context.Context, userID, terms string, limit int) ([]Hit, error) {
	if ix.stats != nil {
		ix.stats.IncrSearchQueries()
	}
	reader, err := ix.writer.Reader()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := reader.Close(); err != nil {
			ix.log.Warn("Failed to close index reader", "error", err)
		}
	}()

	involved := bluge.NewBooleanQuery()
	involved.AddShould(bluge.NewTermQuery(userID).SetField("sender"))
	involved.AddShould(bluge.NewTermQuery(userID).SetField("receiver"))
	involved.SetMinShould(1)

	query := bluge.NewBooleanQuery()
	query.AddMust(bluge.NewMatchQuery(terms).SetField("text"))
	query.AddMust(involved)

	iterator, err := reader.Search(ctx, bluge.NewTopNSearch(limit, query))
	if err != nil {
		return nil, err
	}

	var hits []Hit
	for {
		match, err := iterator.Next()
		if err != nil {
			return nil, err
		}
		if match == nil {
			break
		}
		var hit Hit
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			switch field {
			case "_id":
				hit.MessageID = string(value)
			case "sender":
				hit.SenderID = string(value)
			case "receiver":
				hit.ReceiverID = string(value)
			case "text":
				hit.Text = string(value)
			}
			return true
		})
		if err != nil {
			return nil, err
		}
		hits = append(hits, hit)
	}
	return hits, nil
}
