package runtime

import (
	"context"
	"swapchat/contract"
	"swapchat/domain"
	"swapchat/domain/event"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	consumed []event.ChangeEvent
}

func (s *recordingSink) Consume(_ context.Context, e event.ChangeEvent) error {
	s.consumed = append(s.consumed, e)
	return nil
}

func insertedBetween(sender, receiver string) event.MessageInserted {
	return event.MessageInserted{
		Message: domain.Message{
			ID:         uuid.New(),
			SenderID:   sender,
			ReceiverID: receiver,
			Text:       "hi",
			CreatedAt:  time.Now().UTC(),
		},
		At: time.Now().UTC(),
	}
}

func TestRegistry_SinksFor_ScopeMatching(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	all := &recordingSink{}
	aliceInbox := &recordingSink{}
	aliceBobThread := &recordingSink{}

	registry.Subscribe("all", contract.AllScope(), all)
	registry.Subscribe("inbox:alice", contract.UserScope("alice"), aliceInbox)
	registry.Subscribe("thread:alice:bob", contract.PairScope("alice", "bob"), aliceBobThread)

	// alice -> bob reaches everyone.
	req.Len(registry.SinksFor(insertedBetween("alice", "bob")), 3)
	// bob -> alice too: pair scope matches either direction.
	req.Len(registry.SinksFor(insertedBetween("bob", "alice")), 3)
	// carol -> alice skips the pair subscription.
	req.Len(registry.SinksFor(insertedBetween("carol", "alice")), 2)
	// carol -> dave only reaches the unscoped sink.
	req.Len(registry.SinksFor(insertedBetween("carol", "dave")), 1)
}

func TestRegistry_Subscribe_LastWriteWinsPerID(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	first := &recordingSink{}
	second := &recordingSink{}

	// Identity change on the same view: re-subscribing under the same id
	// must fully replace the previous scope and sink.
	registry.Subscribe("inbox", contract.UserScope("alice"), first)
	registry.Subscribe("inbox", contract.UserScope("bob"), second)
	req.Equal(1, registry.Len())

	sinks := registry.SinksFor(insertedBetween("carol", "bob"))
	req.Len(sinks, 1)
	req.Same(second, sinks[0])

	req.Empty(registry.SinksFor(insertedBetween("carol", "alice")),
		"a subscription bound to the previous user must not survive")
}

func TestRegistry_Unsubscribe(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	registry.Subscribe("inbox", contract.UserScope("alice"), &recordingSink{})
	req.Equal(1, registry.Len())

	registry.Unsubscribe("inbox")
	req.Equal(0, registry.Len())
	req.Empty(registry.SinksFor(insertedBetween("bob", "alice")))

	// Unknown ids are a no-op.
	registry.Unsubscribe("inbox")
}
