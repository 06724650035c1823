package runtime

import (
	"context"
	"log/slog"
	"math/rand"
	"swapchat/contract"
	"swapchat/domain/event"
	"swapchat/errors"
	"sync"
	"time"
)

// Broker is the part of the engine a view subscriber needs.
type Broker interface {
	Subscribe(subscriberID string, scope contract.Scope, sink contract.EventSink)
	Unsubscribe(subscriberID string)
}

// ResyncFunc reloads the owning view's state from the gateway. It runs
// before the subscription is (re)attached so the view starts from a
// consistent snapshot and lets the feed keep it fresh afterwards.
type ResyncFunc func(ctx context.Context) error

// Subscriber ties one mounted view to the change feed. It resyncs by
// fetch with jittered exponential backoff, then registers itself as the
// sink so it can guard against events that arrive after Close: in-flight
// deliveries completing after teardown must not mutate a dead view.
type Subscriber struct {
	log       *slog.Logger
	broker    Broker
	id        string
	scope     contract.Scope
	sink      contract.EventSink
	resync    ResyncFunc
	baseDelay time.Duration
	maxDelay  time.Duration

	mu   sync.Mutex
	open bool
}

var _ contract.EventSink = (*Subscriber)(nil)

func NewSubscriber(log *slog.Logger, broker Broker, id string,
	scope contract.Scope, sink contract.EventSink, resync ResyncFunc) *Subscriber {
	return &Subscriber{
		log:       log,
		broker:    broker,
		id:        id,
		scope:     scope,
		sink:      sink,
		resync:    resync,
		baseDelay: 200 * time.Millisecond,
		maxDelay:  30 * time.Second,
	}
}

// Open resyncs the view and attaches the subscription. Failed resyncs are
// retried with exponential backoff plus jitter until ctx is canceled.
func (s *Subscriber) Open(ctx context.Context) error {
	s.mu.Lock()
	if s.open {
		s.mu.Unlock()
		return errors.ErrSubscriberOpen
	}
	s.mu.Unlock()

	delay := s.baseDelay
	for {
		err := s.resync(ctx)
		if err == nil {
			break
		}
		s.log.Warn("Resync failed, backing off", "subscriber", s.id, "delay", delay, "error", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(jitter(delay)):
		}
		delay *= 2
		if delay > s.maxDelay {
			delay = s.maxDelay
		}
	}

	s.mu.Lock()
	s.open = true
	s.mu.Unlock()
	s.broker.Subscribe(s.id, s.scope, s)
	return nil
}

// Reopen tears the subscription down and opens it again. Used when the
// session identity changes: the registry entry is replaced, never leaked.
func (s *Subscriber) Reopen(ctx context.Context, scope contract.Scope) error {
	s.Close()
	s.mu.Lock()
	s.scope = scope
	s.mu.Unlock()
	return s.Open(ctx)
}

// Consume forwards to the view sink while the subscription is live and
// silently drops events delivered after Close.
func (s *Subscriber) Consume(ctx context.Context, e event.ChangeEvent) error {
	s.mu.Lock()
	open := s.open
	s.mu.Unlock()
	if !open {
		return nil
	}
	return s.sink.Consume(ctx, e)
}

// Close detaches the subscription. Idempotent.
func (s *Subscriber) Close() {
	s.mu.Lock()
	wasOpen := s.open
	s.open = false
	s.mu.Unlock()
	if wasOpen {
		s.broker.Unsubscribe(s.id)
	}
}

// jitter spreads retries over [d/2, d) so reconnecting subscribers don't
// stampede the gateway in lockstep.
func jitter(d time.Duration) time.Duration {
	half := d / 2
	return half + time.Duration(rand.Int63n(int64(half)+1))
}
