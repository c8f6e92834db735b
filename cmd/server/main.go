/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the tableNest dining engine server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env file, TABLENEST_* environment, flags)
  2. Build the JSON logger
  3. Initialize SQLite store
  4. Connect the notifier (RabbitMQ when configured, log otherwise)
  5. Create the dining service, authenticator and API handler
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -env     .env file to load (default: .env, missing file is ignored)
  -port    HTTP server port, overrides TABLENEST_PORT
  -db      SQLite database path, overrides TABLENEST_DB_PATH
           Use ":memory:" for in-memory database

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Wait for pending notifications
  4. Close notifier and database connection
  5. Exit

EXAMPLES:
  # Run with file database
  TABLENEST_JWT_SECRET=dev ./server -db="./data/tablenest.db"

  # Run with in-memory database on a different port
  TABLENEST_JWT_SECRET=dev ./server -db=":memory:" -port=3000

SEE ALSO:
  - config/config.go: Environment keys
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tablenest/dining-engine/api"
	"github.com/tablenest/dining-engine/auth"
	"github.com/tablenest/dining-engine/config"
	"github.com/tablenest/dining-engine/dining"
	"github.com/tablenest/dining-engine/logging"
	"github.com/tablenest/dining-engine/notify"
	"github.com/tablenest/dining-engine/store/sqlite"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Flags
	envFile := flag.String("env", ".env", "environment file to load")
	port := flag.Int("port", 0, "HTTP server port")
	dbPath := flag.String("db", "", "SQLite database path")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		return err
	}
	if *port != 0 {
		cfg.Port = *port
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := logging.New("dining-engine", cfg.LogLevel)
	slog.SetDefault(logger)

	// Initialize store
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer store.Close()

	// Initialize notifier
	var notifier dining.Notifier = notify.NewLogNotifier(logger)
	if cfg.AMQPURL != "" {
		publisher, err := notify.DialAMQP(cfg.AMQPURL, cfg.AMQPExchange, logger)
		if err != nil {
			return err
		}
		defer publisher.Close()
		notifier = publisher
		logger.Info("publishing notifications", slog.String("exchange", cfg.AMQPExchange))
	}

	authenticator, err := auth.New(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return err
	}

	svc := dining.NewService(store, notifier, logger)
	svc.Location = cfg.Timezone
	defer svc.Wait()

	router := api.NewRouter(api.NewHandler(svc, authenticator, logger))

	// Create server
	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", slog.String("addr", server.Addr), slog.String("db", cfg.DBPath))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	}

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
