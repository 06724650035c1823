package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"swapchat/contract"
	"swapchat/domain"
	"swapchat/domain/event"
	localerr "swapchat/errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

// MessagePrefix is the key prefix of primary message rows.
const MessagePrefix = "msg:"

// Key layout:
//
//	msg:{pairKey}:{timestamp_padded}:{uuid}  -> message row (CBOR)
//	id:{uuid}                                -> primary key
//	usr:{userID}:{timestamp_padded}:{uuid}   -> primary key (one per participant)
//
// The 19-digit zero-padded UnixNano makes lexicographic order equal
// chronological order within a prefix, and the trailing UUID both breaks
// same-nanosecond collisions and settles display-order ties by id.
type MessageStore struct {
	db   *badger.DB
	log  *slog.Logger
	feed contract.EventPublisher
	now  func() time.Time
}

var _ contract.MessageStore = (*MessageStore)(nil)

// NewMessageStore builds the badger-backed gateway. feed may be nil when
// no live-update engine is attached (e.g. offline tooling).
func NewMessageStore(db *badger.DB, log *slog.Logger, feed contract.EventPublisher) *MessageStore {
	return &MessageStore{db: db, log: log, feed: feed, now: func() time.Time { return time.Now().UTC() }}
}

func primaryKey(m domain.Message) []byte {
	return []byte(fmt.Sprintf("%s%s:%019d:%s",
		MessagePrefix, domain.PairKey(m.SenderID, m.ReceiverID), m.CreatedAt.UnixNano(), m.ID))
}

func idKey(id uuid.UUID) []byte {
	return []byte("id:" + id.String())
}

func userKey(userID string, m domain.Message) []byte {
	return []byte(fmt.Sprintf("usr:%s:%019d:%s", userID, m.CreatedAt.UnixNano(), m.ID))
}

func (s *MessageStore) publish(e event.ChangeEvent) {
	if s.feed != nil {
		s.feed.Publish(e)
	}
}

// Insert persists the message and announces it on the change feed once
// the transaction has committed. The new row only becomes visible to
// views through that feed, never through optimistic local mutation.
func (s *MessageStore) Insert(ctx context.Context, m domain.Message) (domain.Message, error) {
	if err := ctx.Err(); err != nil {
		return domain.Message{}, err
	}
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = s.now()
	}
	// A message is always born unread and unedited.
	m.Read = false
	m.EditedAt = nil
	m.EditHistory = nil

	value, err := encodeMessage(m)
	if err != nil {
		return domain.Message{}, err
	}
	pk := primaryKey(m)
	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(pk, value); err != nil {
			return err
		}
		if err := txn.Set(idKey(m.ID), pk); err != nil {
			return err
		}
		if err := txn.Set(userKey(m.SenderID, m), pk); err != nil {
			return err
		}
		return txn.Set(userKey(m.ReceiverID, m), pk)
	})
	if err != nil {
		return domain.Message{}, err
	}
	s.publish(event.MessageInserted{Message: m, At: s.now()})
	return m, nil
}

func (s *MessageStore) Get(ctx context.Context, id uuid.UUID) (domain.Message, error) {
	if err := ctx.Err(); err != nil {
		return domain.Message{}, err
	}
	var m domain.Message
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		m, _, err = getByID(txn, id)
		return err
	})
	return m, err
}

func getByID(txn *badger.Txn, id uuid.UUID) (domain.Message, []byte, error) {
	item, err := txn.Get(idKey(id))
	if err == badger.ErrKeyNotFound {
		return domain.Message{}, nil, localerr.ErrMessageNotFound
	}
	if err != nil {
		return domain.Message{}, nil, err
	}
	pk, err := item.ValueCopy(nil)
	if err != nil {
		return domain.Message{}, nil, err
	}
	row, err := txn.Get(pk)
	if err == badger.ErrKeyNotFound {
		return domain.Message{}, nil, localerr.ErrMessageNotFound
	}
	if err != nil {
		return domain.Message{}, nil, err
	}
	value, err := row.ValueCopy(nil)
	if err != nil {
		return domain.Message{}, nil, err
	}
	m, err := DecodeMessage(value)
	return m, pk, err
}

// Update re-reads the freshest stored row and applies mutate to it inside
// one transaction. That read-before-write is what protects the edit
// history from being clobbered by a concurrent edit seen only in stale
// local state. Immutable fields and read-flag monotonicity are enforced
// here regardless of what mutate does.
func (s *MessageStore) Update(ctx context.Context, id uuid.UUID, mutate func(m *domain.Message) error) (domain.Message, error) {
	if err := ctx.Err(); err != nil {
		return domain.Message{}, err
	}
	var updated domain.Message
	err := s.db.Update(func(txn *badger.Txn) error {
		stored, pk, err := getByID(txn, id)
		if err != nil {
			return err
		}
		work := stored
		work.EditHistory = append([]domain.EditRecord(nil), stored.EditHistory...)
		if err := mutate(&work); err != nil {
			return err
		}
		work.ID = stored.ID
		work.SenderID = stored.SenderID
		work.ReceiverID = stored.ReceiverID
		work.CreatedAt = stored.CreatedAt
		if stored.Read {
			work.Read = true
		}
		value, err := encodeMessage(work)
		if err != nil {
			return err
		}
		updated = work
		return txn.Set(pk, value)
	})
	if err == localerr.ErrNoChange {
		// Aborted by the mutator: nothing written, nothing announced.
		return domain.Message{}, err
	}
	if err != nil {
		return domain.Message{}, err
	}
	s.publish(event.MessageUpdated{Message: updated, At: s.now()})
	return updated, nil
}

// MarkThreadRead flips read=true on every unread message from senderID to
// receiverID in one transaction. Idempotent: a second call finds nothing
// unread and emits nothing.
func (s *MessageStore) MarkThreadRead(ctx context.Context, senderID, receiverID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var flipped []domain.Message
	prefix := []byte(MessagePrefix + domain.PairKey(senderID, receiverID) + ":")
	err := s.db.Update(func(txn *badger.Txn) error {
		flipped = flipped[:0]
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			m, err := DecodeMessage(value)
			if err != nil {
				return err
			}
			if m.SenderID != senderID || m.ReceiverID != receiverID || m.Read {
				continue
			}
			m.Read = true
			encoded, err := encodeMessage(m)
			if err != nil {
				return err
			}
			if err := txn.Set(item.KeyCopy(nil), encoded); err != nil {
				return err
			}
			flipped = append(flipped, m)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	for _, m := range flipped {
		s.publish(event.MessageUpdated{Message: m, At: s.now()})
	}
	return len(flipped), nil
}

// Delete permanently removes the row and all its index entries.
func (s *MessageStore) Delete(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var removed domain.Message
	err := s.db.Update(func(txn *badger.Txn) error {
		stored, pk, err := getByID(txn, id)
		if err != nil {
			return err
		}
		removed = stored
		if err := txn.Delete(pk); err != nil {
			return err
		}
		if err := txn.Delete(idKey(id)); err != nil {
			return err
		}
		if err := txn.Delete(userKey(stored.SenderID, stored)); err != nil {
			return err
		}
		return txn.Delete(userKey(stored.ReceiverID, stored))
	})
	if err != nil {
		return err
	}
	s.publish(event.MessageDeleted{
		ID:         removed.ID,
		SenderID:   removed.SenderID,
		ReceiverID: removed.ReceiverID,
		At:         s.now(),
	})
	return nil
}

// Thread scans the pair prefix. The padded timestamp in the key makes the
// result naturally sorted by time, oldest first.
func (s *MessageStore) Thread(ctx context.Context, userA, userB string) ([]domain.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var messages []domain.Message
	prefix := []byte(MessagePrefix + domain.PairKey(userA, userB) + ":")
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			value, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			m, err := DecodeMessage(value)
			if err != nil {
				return err
			}
			messages = append(messages, m)
		}
		return nil
	})
	return messages, err
}

// All scans every primary message row. Offline tooling and index rebuilds
// only; views go through Thread or MessagesInvolving.
func (s *MessageStore) All(ctx context.Context) ([]domain.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var messages []domain.Message
	prefix := []byte(MessagePrefix)
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			value, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			m, err := DecodeMessage(value)
			if err != nil {
				return err
			}
			messages = append(messages, m)
		}
		return nil
	})
	return messages, err
}

// MessagesInvolving resolves the user index to primary rows. Used by the
// conversation aggregator, which recomputes its view from the full set.
func (s *MessageStore) MessagesInvolving(ctx context.Context, userID string) ([]domain.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var messages []domain.Message
	prefix := []byte("usr:" + userID + ":")
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			pk, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			row, err := txn.Get(pk)
			if err == badger.ErrKeyNotFound {
				// Index entry outlived its row; skip rather than fail the scan.
				s.log.Warn("dangling user index entry", "key", string(it.Item().Key()))
				continue
			}
			if err != nil {
				return err
			}
			value, err := row.ValueCopy(nil)
			if err != nil {
				return err
			}
			m, err := DecodeMessage(value)
			if err != nil {
				return err
			}
			messages = append(messages, m)
		}
		return nil
	})
	return messages, err
}
