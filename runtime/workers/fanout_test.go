package workers

import (
	"context"
	"fmt"
	"log/slog"
	"swapchat/contract"
	"swapchat/domain"
	"swapchat/domain/event"
	"swapchat/mocks"
	"swapchat/observability"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func changeEvent() event.MessageInserted {
	return event.MessageInserted{
		Message: domain.Message{
			ID:         uuid.New(),
			SenderID:   "alice",
			ReceiverID: "bob",
			Text:       "hi",
			CreatedAt:  time.Now().UTC(),
		},
		At: time.Now().UTC(),
	}
}

func TestEventFanout_DeliversToPermanentAndScopedSinks(t *testing.T) {
	req := require.New(t)
	log := slog.Default()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	evt := changeEvent()
	stats := observability.NewStats()

	permanentSink := mocks.NewMockEventSink(ctrl)
	scopedSink := mocks.NewMockEventSink(ctrl)
	registry := mocks.NewMockIRegistry(ctrl)

	registry.EXPECT().SinksFor(evt).Return([]contract.EventSink{scopedSink})
	permanentSink.EXPECT().Consume(gomock.Any(), evt).Return(nil)
	scopedSink.EXPECT().Consume(gomock.Any(), evt).Return(nil)

	fanout := NewEventFanout(log, registry,
		[]contract.EventSink{permanentSink}, nil, stats, time.Second)
	fanout.Fanout(context.Background(), evt)

	req.Equal(uint64(1), stats.Snapshot().EventsFanned)
	req.Equal(uint64(0), stats.Snapshot().SinkErrors)
}

func TestEventFanout_SinkFailureDoesNotStopOthers(t *testing.T) {
	req := require.New(t)
	log := slog.Default()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	evt := changeEvent()
	stats := observability.NewStats()

	failing := mocks.NewMockEventSink(ctrl)
	healthy := mocks.NewMockEventSink(ctrl)
	registry := mocks.NewMockIRegistry(ctrl)

	registry.EXPECT().SinksFor(evt).Return(nil)
	failing.EXPECT().Consume(gomock.Any(), evt).Return(fmt.Errorf("sink down"))
	healthy.EXPECT().Consume(gomock.Any(), evt).Return(nil)

	fanout := NewEventFanout(log, registry,
		[]contract.EventSink{failing, healthy}, nil, stats, time.Second)
	fanout.Fanout(context.Background(), evt)

	req.Equal(uint64(1), stats.Snapshot().SinkErrors)
	req.Equal(uint64(1), stats.Snapshot().EventsFanned)
}

func TestEventFanout_RunDrainsChannelUntilCancel(t *testing.T) {
	req := require.New(t)
	log := slog.Default()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	evt := changeEvent()
	stats := observability.NewStats()

	sink := mocks.NewMockEventSink(ctrl)
	registry := mocks.NewMockIRegistry(ctrl)
	registry.EXPECT().SinksFor(evt).Return(nil).AnyTimes()
	sink.EXPECT().Consume(gomock.Any(), evt).Return(nil).Times(2)

	events := make(chan event.ChangeEvent, 4)
	fanout := NewEventFanout(log, registry,
		[]contract.EventSink{sink}, events, stats, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- fanout.Run(ctx) }()

	events <- evt
	events <- evt

	req.Eventually(func() bool {
		return stats.Snapshot().EventsFanned == 2
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		req.NoError(err)
	case <-time.After(time.Second):
		req.Fail("fanout should stop on context cancel")
	}
}
