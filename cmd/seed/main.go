// Command seed fills an empty database with two profiles and a short
// conversation, so the node and the inspect tool have something to show.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"swapchat/domain"
	"swapchat/gateway"
	"swapchat/moderation"
	"swapchat/services"

	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/mama165/sdk-go/logs"
)

type config struct {
	BadgerFilepath string `envconfig:"BADGER_FILEPATH" required:"true"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()
	var cfg config
	if err := envconfig.Process("", &cfg); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromLevel(slog.LevelInfo)

	db, err := badger.Open(badger.DefaultOptions(cfg.BadgerFilepath).
		WithLoggingLevel(badger.ERROR))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer db.Close()

	ctx := context.Background()
	profiles := gateway.NewProfileStore(db, log)
	messages := gateway.NewMessageStore(db, log, nil)

	alice := domain.Profile{ID: "11111111-1111-1111-1111-111111111111", Name: "Alice"}
	bob := domain.Profile{ID: "22222222-2222-2222-2222-222222222222", Name: "Bob"}
	for _, p := range []domain.Profile{alice, bob} {
		if err := profiles.Put(ctx, p); err != nil {
			return fmt.Errorf("profile seed failed: %w", err)
		}
	}

	moderator, err := moderation.NewModerator([]string{"scam"}, '*')
	if err != nil {
		return fmt.Errorf("moderator setup failed: %w", err)
	}

	fromAlice := services.NewThreadService(log, messages, moderator, nil, alice.ID, bob.ID)
	fromBob := services.NewThreadService(log, messages, moderator, nil, bob.ID, alice.ID)

	script := []struct {
		svc  *services.ThreadService
		text string
	}{
		{fromAlice, "Hi! Is the blue bike still available?"},
		{fromBob, "Hey, yes it is. Want to come see it this week?"},
		{fromAlice, "Thursday evening works for me."},
		{fromBob, "Thursday it is, I'll send you the address."},
	}
	for _, step := range script {
		if _, err := step.svc.Send(ctx, step.text); err != nil {
			return fmt.Errorf("message seed failed: %w", err)
		}
	}

	log.Info("Seeded database", "profiles", 2, "messages", len(script))
	return nil
}
