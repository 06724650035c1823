package runtime

import (
	"context"
	"log/slog"
	"swapchat/contract"
	"swapchat/domain/event"
	"swapchat/observability"
	"swapchat/runtime/workers"
	"time"
)

// Engine is the live-update hub: the gateway publishes change events into
// it, and the fanout worker pushes them to permanent sinks (search index,
// notification dispatcher) and to scoped view subscriptions.
type Engine struct {
	log               *slog.Logger
	supervisor        contract.ISupervisor
	registry          contract.IRegistry
	stats             *observability.Stats
	events            chan event.ChangeEvent
	permanentSinks    []contract.EventSink
	sinkTimeout       time.Duration
	heartbeatInterval time.Duration
}

var _ contract.EventPublisher = (*Engine)(nil)

func NewEngine(log *slog.Logger, supervisor contract.ISupervisor,
	registry contract.IRegistry, stats *observability.Stats,
	bufferSize int, sinkTimeout, heartbeatInterval time.Duration) *Engine {
	return &Engine{
		log:               log,
		supervisor:        supervisor,
		registry:          registry,
		stats:             stats,
		events:            make(chan event.ChangeEvent, bufferSize),
		sinkTimeout:       sinkTimeout,
		heartbeatInterval: heartbeatInterval,
	}
}

// AddPermanentSinks registers sinks that receive every event regardless
// of scope. Must be called before Start.
func (e *Engine) AddPermanentSinks(sinks ...contract.EventSink) {
	e.permanentSinks = append(e.permanentSinks, sinks...)
}

// Publish puts a change event on the feed. Non-blocking: when the buffer
// is full the event is dropped and counted, since views recover by
// resync-by-fetch rather than by replaying a backlog.
func (e *Engine) Publish(evt event.ChangeEvent) {
	select {
	case e.events <- evt:
	default:
		e.stats.IncrEventsDropped()
		e.log.Warn("Change feed buffer full, dropping event", "message_id", evt.MessageID())
	}
}

// Subscribe attaches a scoped sink under the given subscriber id,
// replacing any previous subscription with that id.
func (e *Engine) Subscribe(subscriberID string, scope contract.Scope, sink contract.EventSink) {
	e.registry.Subscribe(subscriberID, scope, sink)
}

func (e *Engine) Unsubscribe(subscriberID string) {
	e.registry.Unsubscribe(subscriberID)
}

// Start registers the fanout and heartbeat workers and runs the
// supervisor until ctx is canceled or Stop is called. Blocking.
func (e *Engine) Start(ctx context.Context) error {
	fanout := workers.NewEventFanout(e.log, e.registry, e.permanentSinks,
		e.events, e.stats, e.sinkTimeout)
	heartbeat := workers.NewHeartbeatWorker(e.log, e.stats, e.heartbeatInterval)

	e.supervisor.Add(fanout)
	e.supervisor.Add(heartbeat)

	e.log.Info("Starting engine and all supervised workers")
	e.supervisor.Run(ctx)
	return nil
}

// Stop initiates a graceful shutdown of the supervised workers.
func (e *Engine) Stop() {
	e.log.Info("Requesting engine shutdown")
	e.supervisor.Stop()
}
