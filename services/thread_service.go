package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"swapchat/contract"
	"swapchat/domain"
	localerr "swapchat/errors"
	"swapchat/moderation"
	"swapchat/observability"
	"time"

	"github.com/abadojack/whatlanggo"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New()

// ThreadService exposes the message operations scoped to one
// (currentUser, otherUser) pair. Local state is never mutated here: every
// successful mutation becomes visible through the live-update path once
// the gateway has acknowledged it.
type ThreadService struct {
	log       *slog.Logger
	store     contract.MessageStore
	moderator *moderation.Moderator
	stats     *observability.Stats
	selfID    string
	otherID   string
}

// NewThreadService builds a service for the self<->other pair.
// moderator and stats are optional.
func NewThreadService(log *slog.Logger, store contract.MessageStore,
	moderator *moderation.Moderator, stats *observability.Stats,
	selfID, otherID string) *ThreadService {
	return &ThreadService{
		log:       log,
		store:     store,
		moderator: moderator,
		stats:     stats,
		selfID:    selfID,
		otherID:   otherID,
	}
}

// Load fetches the full ordered thread. No pagination: thread sizes are
// bounded by practical conversation lengths.
func (s *ThreadService) Load(ctx context.Context) ([]domain.Message, error) {
	return s.store.Thread(ctx, s.selfID, s.otherID)
}

// Send validates, censors and inserts a new outbound message. The text is
// trimmed and must be non-empty; sending to self is rejected by
// validation. Nothing is added to any local view before the insert is
// acknowledged.
func (s *ThreadService) Send(ctx context.Context, text string) (domain.Message, error) {
	cmd := domain.SendMessageCommand{
		SenderID:   s.selfID,
		ReceiverID: s.otherID,
		Text:       strings.TrimSpace(text),
	}
	if err := validate.Struct(cmd); err != nil {
		return domain.Message{}, fmt.Errorf("invalid message: %w", err)
	}

	outbound := cmd.Text
	if s.moderator != nil {
		censored, hits := s.moderator.Censor(outbound)
		if len(hits) > 0 {
			info := whatlanggo.Detect(outbound)
			s.log.Warn("Outbound message censored",
				"sender", s.selfID,
				"hits", len(hits),
				"lang", info.Lang.Iso6391())
			outbound = censored
		}
	}

	sent, err := s.store.Insert(ctx, domain.Message{
		SenderID:   cmd.SenderID,
		ReceiverID: cmd.ReceiverID,
		Text:       outbound,
	})
	if err != nil {
		return domain.Message{}, fmt.Errorf("send failed: %w", err)
	}
	if s.stats != nil {
		s.stats.IncrMessagesSent()
	}
	return sent, nil
}

// MarkAllRead flips every unread inbound message in this thread. Called
// on thread open and again whenever an inbound event arrives while the
// thread is open; repeat calls with nothing unread are no-ops.
func (s *ThreadService) MarkAllRead(ctx context.Context) (int, error) {
	return s.store.MarkThreadRead(ctx, s.otherID, s.selfID)
}

// Edit replaces a message's text and appends the overwritten version to
// its history. No-op (without error) when the new text is empty or equal
// to the current text. The prior text is read fresh inside the store's
// transaction, so a concurrent edit from another session cannot clobber
// the history.
func (s *ThreadService) Edit(ctx context.Context, messageID uuid.UUID, newText string) (domain.Message, bool, error) {
	trimmed := strings.TrimSpace(newText)
	if trimmed == "" {
		return domain.Message{}, false, nil
	}
	cmd := domain.EditMessageCommand{EditorID: s.selfID, MessageID: messageID, NewText: trimmed}
	if err := validate.Struct(cmd); err != nil {
		return domain.Message{}, false, fmt.Errorf("invalid edit: %w", err)
	}

	updated, err := s.store.Update(ctx, cmd.MessageID, func(m *domain.Message) error {
		if m.SenderID != s.selfID {
			return localerr.ErrNotSender
		}
		if m.Text == trimmed {
			return localerr.ErrNoChange
		}
		now := time.Now().UTC()
		m.EditHistory = append(m.EditHistory, domain.EditRecord{Text: m.Text, EditedAt: now})
		m.Text = trimmed
		m.EditedAt = &now
		return nil
	})
	if err == localerr.ErrNoChange {
		return domain.Message{}, false, nil
	}
	if err != nil {
		return domain.Message{}, false, fmt.Errorf("edit failed: %w", err)
	}
	return updated, true, nil
}

// Delete permanently removes a message. The UI only offers this for the
// user's own messages; authoritative enforcement is the gateway's access
// rules, not a client-side check here.
func (s *ThreadService) Delete(ctx context.Context, messageID uuid.UUID) error {
	if err := s.store.Delete(ctx, messageID); err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	return nil
}
