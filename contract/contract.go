//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"
	"swapchat/domain"
	"swapchat/domain/event"
)

// EventSink consumes change events pushed through the live-update path.
// Consume must be idempotent per message id: duplicates and stale echoes
// of already-known rows may arrive in any order.
type EventSink interface {
	Consume(ctx context.Context, e event.ChangeEvent) error
}

// EventPublisher is the gateway's side of the change feed.
type EventPublisher interface {
	Publish(e event.ChangeEvent)
}

// Worker doesn't protect itself.
// Can be silly, focused.
type Worker interface {
	Run(ctx context.Context) error
}

type WorkerName string

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker
// initialization or lifecycle events, avoiding the need for manual naming
// in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// ScopeKind selects how a subscription filters change events.
type ScopeKind int

const (
	// ScopeAll receives every event (permanent sinks: search index, stats).
	ScopeAll ScopeKind = iota
	// ScopeUser receives events on any message involving one user
	// (inbox refresh and notification dispatch).
	ScopeUser
	// ScopePair receives events on the thread between two users,
	// in either direction.
	ScopePair
)

// Scope is the filter attached to a live-update subscription.
type Scope struct {
	Kind    ScopeKind
	UserID  string
	OtherID string
}

func AllScope() Scope               { return Scope{Kind: ScopeAll} }
func UserScope(userID string) Scope { return Scope{Kind: ScopeUser, UserID: userID} }
func PairScope(a, b string) Scope   { return Scope{Kind: ScopePair, UserID: a, OtherID: b} }

// Matches reports whether an event falls inside the scope.
func (s Scope) Matches(e event.ChangeEvent) bool {
	switch s.Kind {
	case ScopeUser:
		return event.Involves(e, s.UserID)
	case ScopePair:
		a, b := e.Pair()
		return domain.PairKey(a, b) == domain.PairKey(s.UserID, s.OtherID)
	default:
		return true
	}
}

// IRegistry routes change events to the sinks whose scope matches.
// Subscriptions are last-write-wins per subscriber id: re-subscribing
// under the same id replaces the previous scope and sink, which is how
// identity changes are handled without leaking stale subscriptions.
type IRegistry interface {
	Subscribe(subscriberID string, scope Scope, sink EventSink)
	Unsubscribe(subscriberID string)
	SinksFor(e event.ChangeEvent) []EventSink
}
