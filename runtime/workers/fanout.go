package workers

import (
	"context"
	"log/slog"
	"swapchat/contract"
	"swapchat/domain/event"
	"swapchat/observability"
	"time"
)

// EventFanout broadcasts change events to permanent sinks and to every
// registry subscription whose scope matches.
//
// It provides best-effort fan-out with no guarantees regarding delivery,
// ordering across rows, durability, or retries. Sinks are expected to
// merge idempotently by message id, so duplicates are harmless.
//
// EventFanout is safe for concurrent use by multiple goroutines.
type EventFanout struct {
	log         *slog.Logger
	registry    contract.IRegistry
	permanent   []contract.EventSink
	events      <-chan event.ChangeEvent
	stats       *observability.Stats
	sinkTimeout time.Duration
}

var _ contract.Worker = (*EventFanout)(nil)

func NewEventFanout(log *slog.Logger, registry contract.IRegistry,
	permanent []contract.EventSink, events <-chan event.ChangeEvent,
	stats *observability.Stats, sinkTimeout time.Duration) *EventFanout {
	return &EventFanout{
		log:       log,
		registry:  registry,
		permanent: permanent,
		events:    events, stats: stats, sinkTimeout: sinkTimeout,
	}
}

func (w *EventFanout) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping fanout")
			return nil
		case evt, ok := <-w.events:
			if !ok {
				return nil
			}
			w.Fanout(ctx, evt)
		}
	}
}

// Fanout delivers one event to every matching sink. A slow or failing
// sink is bounded by sinkTimeout and logged, never propagated: one
// subscriber must not stall the feed for the others.
func (w *EventFanout) Fanout(ctx context.Context, evt event.ChangeEvent) {
	sinks := append([]contract.EventSink(nil), w.permanent...)
	sinks = append(sinks, w.registry.SinksFor(evt)...)
	for _, sink := range sinks {
		sinkCtx, cancel := context.WithTimeout(ctx, w.sinkTimeout)
		if err := sink.Consume(sinkCtx, evt); err != nil {
			if w.stats != nil {
				w.stats.IncrSinkErrors()
			}
			w.log.Warn("Sink failed to consume event",
				"message_id", evt.MessageID(), "error", err)
		}
		cancel()
	}
	if w.stats != nil {
		w.stats.IncrEventsFanned()
	}
}
