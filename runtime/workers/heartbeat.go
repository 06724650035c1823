package workers

import (
	"context"
	"log/slog"
	"os"
	"swapchat/contract"
	"swapchat/observability"
	"time"

	"github.com/shirou/gopsutil/process"
)

// HeartbeatWorker periodically logs engine counters together with the
// process's own resource usage (RSS, CPU).
type HeartbeatWorker struct {
	log      *slog.Logger
	stats    *observability.Stats
	interval time.Duration
}

var _ contract.Worker = (*HeartbeatWorker)(nil)

func NewHeartbeatWorker(log *slog.Logger, stats *observability.Stats, interval time.Duration) *HeartbeatWorker {
	return &HeartbeatWorker{log: log, stats: stats, interval: interval}
}

func (w *HeartbeatWorker) Run(ctx context.Context) error {
	w.log.Info("Starting engine heartbeat worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			rss, cpu, err := selfStats(p)
			if err != nil {
				w.log.Error("Failed to collect self stats", "err", err)
				continue
			}
			snap := w.stats.Snapshot()
			w.log.Info("Engine heartbeat",
				"messages_sent", snap.MessagesSent,
				"events_fanned", snap.EventsFanned,
				"events_dropped", snap.EventsDropped,
				"sink_errors", snap.SinkErrors,
				"notifications_shown", snap.NotificationsShown,
				"search_queries", snap.SearchQueries,
				"ram_bytes", rss,
				"cpu_percent", cpu,
			)
		}
	}
}

// selfStats retrieves memory and CPU usage for the given process.
func selfStats(p *process.Process) (uint64, float64, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, err
	}
	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return 0, 0, err
	}
	return memInfo.RSS, cpuPercent, nil
}
