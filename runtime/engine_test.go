package runtime

import (
	"context"
	"log/slog"
	"swapchat/contract"
	"swapchat/observability"
	"swapchat/runtime/workers"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEngine_Publish_DropsWhenBufferFull(t *testing.T) {
	req := require.New(t)
	stats := observability.NewStats()
	registry := NewRegistry()
	sup := workers.NewSupervisor(slog.Default(), time.Second)
	// Engine not started: nothing drains the buffer.
	engine := NewEngine(slog.Default(), sup, registry, stats, 1, time.Second, time.Minute)

	engine.Publish(insertedBetween("alice", "bob"))
	engine.Publish(insertedBetween("alice", "bob"))

	req.Equal(uint64(1), stats.Snapshot().EventsDropped,
		"a full buffer must drop, never block the publisher")
}

func TestEngine_DeliversToScopedSubscription(t *testing.T) {
	req := require.New(t)
	stats := observability.NewStats()
	registry := NewRegistry()
	sup := workers.NewSupervisor(slog.Default(), time.Second)
	engine := NewEngine(slog.Default(), sup, registry, stats, 16, time.Second, time.Minute)

	sink := &recordingSink{}
	engine.Subscribe("thread:alice:bob", contract.PairScope("alice", "bob"), sink)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = engine.Start(ctx)
		close(done)
	}()

	engine.Publish(insertedBetween("alice", "bob"))
	engine.Publish(insertedBetween("carol", "dave"))

	req.Eventually(func() bool {
		return stats.Snapshot().EventsFanned == 2
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		req.Fail("engine did not stop on context cancel")
	}

	req.Len(sink.consumed, 1, "only the matching event reaches the scoped sink")
}
