// Package observability aggregates engine counters for the heartbeat log.
package observability

import "sync/atomic"

// Stats counts what the messaging engine has done since start.
// All counters are atomic; Snapshot is safe from any goroutine.
type Stats struct {
	messagesSent       atomic.Uint64
	eventsFanned       atomic.Uint64
	eventsDropped      atomic.Uint64
	sinkErrors         atomic.Uint64
	notificationsShown atomic.Uint64
	searchQueries      atomic.Uint64
}

type Snapshot struct {
	MessagesSent       uint64
	EventsFanned       uint64
	EventsDropped      uint64
	SinkErrors         uint64
	NotificationsShown uint64
	SearchQueries      uint64
}

func NewStats() *Stats { return &Stats{} }

func (s *Stats) IncrMessagesSent()       { s.messagesSent.Add(1) }
func (s *Stats) IncrEventsFanned()       { s.eventsFanned.Add(1) }
func (s *Stats) IncrEventsDropped()      { s.eventsDropped.Add(1) }
func (s *Stats) IncrSinkErrors()         { s.sinkErrors.Add(1) }
func (s *Stats) IncrNotificationsShown() { s.notificationsShown.Add(1) }
func (s *Stats) IncrSearchQueries()      { s.searchQueries.Add(1) }

func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		MessagesSent:       s.messagesSent.Load(),
		EventsFanned:       s.eventsFanned.Load(),
		EventsDropped:      s.eventsDropped.Load(),
		SinkErrors:         s.sinkErrors.Load(),
		NotificationsShown: s.notificationsShown.Load(),
		SearchQueries:      s.searchQueries.Load(),
	}
}
