package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"

	"github.com/YUGESHKARAN/web-socket.io/infrastructure/ws"
	"github.com/YUGESHKARAN/web-socket.io/repositories"
	"github.com/YUGESHKARAN/web-socket.io/runtime"
	"github.com/YUGESHKARAN/web-socket.io/runtime/workers"
	"github.com/YUGESHKARAN/web-socket.io/services"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and centralizes error reporting.
// This pattern is preferred over calling os.Exit or panic directly because:
// 1. It ensures all 'defer' statements (like database cleanup) are executed before the program exits.
// 2. It improves testability by decoupling the initialization logic from the main entry point.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := newLogger(config.LogLevel)

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	// Defer will be executed before run() returned anything to main()
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Core state & dispatch pipeline
	// Presence and rooms are constructed once per process and passed by
	// reference into every connection handler; no ambient globals.
	presence := runtime.NewPresenceTable()
	rooms := runtime.NewRegistry()
	store := repositories.NewAuthorRepository(db)
	dispatcher := runtime.NewDispatcher(log, store, presence, rooms)
	relay := services.NewRelayService(log, presence, rooms, dispatcher)

	// 4. Transport gateway & maintenance workers under supervision
	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	gateway := ws.NewGateway(log, relay, address, splitOrigins(config.AllowedOrigins),
		config.ConnectionBufferSize, config.WriteTimeout)
	gc := workers.NewValueLogGC(log, db, config.GCInterval)

	sup := workers.NewSupervisor(log, config.RestartInterval)
	sup.Add(gateway, gc)

	// 5. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 6. Block until shutdown; the supervisor drains its workers before returning
	sup.Run(ctx)
	log.Info("Program stopped cleanly")

	return nil
}

func newLogger(level string) *slog.Logger {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}

func splitOrigins(origins string) []string {
	if origins == "" {
		return nil
	}
	var out []string
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
