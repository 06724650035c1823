package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"swapchat/contract"
	"swapchat/gateway"
	"swapchat/notify"
	"swapchat/observability"
	"swapchat/runtime"
	"swapchat/runtime/workers"
	"swapchat/search"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the node lifecycle, and centralizes
// error reporting. Keeping main() thin ensures every defer (database and
// index cleanup) executes before the process exits.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.INFO))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Engine & Stores
	stats := observability.NewStats()
	sup := workers.NewSupervisor(log, config.RestartInterval)
	registry := runtime.NewRegistry()
	engine := runtime.NewEngine(log, sup, registry, stats,
		config.BufferSize, config.SinkTimeout, config.HeartbeatInterval)

	messages := gateway.NewMessageStore(db, log, engine)
	profiles := gateway.NewProfileStore(db, log)

	// 4. Full-text index, fed by the change feed
	index, err := search.Open(config.BlugeFilepath, log, stats)
	if err != nil {
		return fmt.Errorf("search index opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing search index...")
		_ = index.Close()
	}()
	engine.AddPermanentSinks(index)

	// Heal the index from the store before going live: rows written while
	// the node was down never reached the feed.
	stored, err := messages.All(context.Background())
	if err != nil {
		return fmt.Errorf("message scan failed: %w", err)
	}
	if err := index.Reindex(stored); err != nil {
		return fmt.Errorf("index rebuild failed: %w", err)
	}
	log.Info("Search index rebuilt", "messages", len(stored))

	// 5. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 6. Optional desktop notifications for a local user
	if config.NotifyUserID != "" {
		dispatcher := notify.NewDispatcher(ctx, log, profiles, stats,
			config.NotifyUserID,
			func() bool { return false }, // headless node, always backgrounded
			notify.BeeepSounder{}, notify.BeeepNotifier{}, notify.LogToaster{Log: log},
			nil, notify.PermissionGranted)
		engine.Subscribe("notify:"+config.NotifyUserID,
			contract.UserScope(config.NotifyUserID), dispatcher)
		log.Info("Desktop notifications enabled", "user", config.NotifyUserID)
	}

	// 7. Start the Engine (blocking until shutdown)
	errChan := make(chan error, 1)
	go func() {
		errChan <- engine.Start(ctx)
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("engine error: %w", err)
		}
	}

	// 8. Final Cleanup
	engine.Stop()
	log.Info("Program stopped cleanly")

	return nil
}
