package projection

import (
	"context"
	"log/slog"
	"sort"
	"swapchat/contract"
	"swapchat/domain"
	"swapchat/domain/event"

	"github.com/samber/lo"
)

// SoftError surfaces a recoverable aggregation problem (typically an
// unresolvable profile) to the UI layer without failing the whole pass.
type SoftError func(msg string)

// Aggregator derives the per-user inbox: one conversation per
// counterpart, with preview and unread count. It is pure computation over
// fetched data; freshness comes from recomputing on refresh signals, not
// from incremental patching.
type Aggregator struct {
	log      *slog.Logger
	messages contract.MessageStore
	profiles contract.ProfileStore
	onError  SoftError
}

func NewAggregator(log *slog.Logger, messages contract.MessageStore,
	profiles contract.ProfileStore, onError SoftError) *Aggregator {
	return &Aggregator{log: log, messages: messages, profiles: profiles, onError: onError}
}

// Conversations recomputes the inbox for userID, ordered by most recent
// message descending. A counterpart whose profile cannot be resolved is
// excluded and reported as a soft error, never a hard failure.
func (a *Aggregator) Conversations(ctx context.Context, userID string) ([]domain.Conversation, error) {
	messages, err := a.messages.MessagesInvolving(ctx, userID)
	if err != nil {
		return nil, err
	}

	byCounterpart := lo.GroupBy(messages, func(m domain.Message) string {
		return m.Counterpart(userID)
	})
	counterparts := lo.Keys(byCounterpart)

	profiles, err := a.profiles.GetMany(ctx, counterparts)
	if err != nil {
		return nil, err
	}

	conversations := make([]domain.Conversation, 0, len(byCounterpart))
	for counterpartID, thread := range byCounterpart {
		profile, ok := profiles[counterpartID]
		if !ok {
			a.log.Warn("Profile missing, conversation excluded", "user_id", counterpartID)
			if a.onError != nil {
				a.onError("Could not load a conversation partner's profile")
			}
			continue
		}
		last := lo.MaxBy(thread, func(m, max domain.Message) bool { return max.Before(m) })
		unread := lo.CountBy(thread, func(m domain.Message) bool {
			return m.ReceiverID == userID && !m.Read
		})
		conversations = append(conversations, domain.Conversation{
			UserID:      counterpartID,
			UserName:    profile.DisplayName(),
			LastMessage: last,
			UnreadCount: unread,
		})
	}

	sort.SliceStable(conversations, func(i, j int) bool {
		return conversations[j].LastActivity().Before(conversations[i].LastActivity())
	})
	return conversations, nil
}

// InboxRefresher is the sink behind the "any message addressed to me"
// subscription: every matching change event triggers a recompute signal.
type InboxRefresher struct {
	userID  string
	refresh func(ctx context.Context) error
}

func NewInboxRefresher(userID string, refresh func(ctx context.Context) error) *InboxRefresher {
	return &InboxRefresher{userID: userID, refresh: refresh}
}

func (r *InboxRefresher) Consume(ctx context.Context, e event.ChangeEvent) error {
	if !event.Involves(e, r.userID) {
		return nil
	}
	return r.refresh(ctx)
}
