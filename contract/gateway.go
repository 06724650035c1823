package contract

import (
	"context"
	"swapchat/domain"

	"github.com/google/uuid"
)

// MessageStore is the persistence gateway for the message relation.
// All calls are synchronous from the caller's point of view and must not
// mutate any caller-visible state on failure.
type MessageStore interface {
	// Thread returns every message exchanged between the two users,
	// ordered by CreatedAt ascending (ties by id order).
	Thread(ctx context.Context, userA, userB string) ([]domain.Message, error)

	// MessagesInvolving returns every message where userID is sender or
	// receiver, ordered by CreatedAt ascending.
	MessagesInvolving(ctx context.Context, userID string) ([]domain.Message, error)

	Get(ctx context.Context, id uuid.UUID) (domain.Message, error)

	// Insert persists a new message and emits MessageInserted on the feed.
	// A zero ID or CreatedAt is assigned by the store.
	Insert(ctx context.Context, m domain.Message) (domain.Message, error)

	// Update applies mutate to the freshest stored row inside a single
	// transaction and emits MessageUpdated. Returning errors.ErrNoChange
	// from mutate aborts without a write or an event.
	Update(ctx context.Context, id uuid.UUID, mutate func(m *domain.Message) error) (domain.Message, error)

	// MarkThreadRead flips read=true on every unread message from senderID
	// to receiverID, emitting one MessageUpdated per flipped row. Returns
	// the number of rows changed; zero when nothing was unread.
	MarkThreadRead(ctx context.Context, senderID, receiverID string) (int, error)

	// Delete permanently removes the message and emits MessageDeleted.
	// No tombstone, no soft delete.
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProfileStore resolves user display names. Read-mostly from the
// messaging core's perspective.
type ProfileStore interface {
	Get(ctx context.Context, id string) (domain.Profile, error)
	GetMany(ctx context.Context, ids []string) (map[string]domain.Profile, error)
	Put(ctx context.Context, p domain.Profile) error
}
