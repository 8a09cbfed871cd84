/*
main.go - Application entry point

STARTUP SEQUENCE:
  1. Load environment configuration (.env + ROOMRENTAL_* variables)
  2. Apply command-line flag overrides
  3. Open the SQLite store
  4. Build the ledger with policy, metrics observer, and logger
  5. Start the HTTP server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (overrides ROOMRENTAL_PORT)
  -db      SQLite database path (overrides ROOMRENTAL_DATABASE_PATH)
           Use ":memory:" for an in-memory database

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM: stop accepting connections, wait up to 30s for active
  requests, close the database, exit.
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/openlease/roomrental/api"
	"github.com/openlease/roomrental/config"
	"github.com/openlease/roomrental/ledger"
	"github.com/openlease/roomrental/metrics"
	"github.com/openlease/roomrental/store/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	port := flag.Int("port", cfg.Port, "HTTP server port")
	dbPath := flag.String("db", cfg.DatabasePath, "SQLite database path")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))

	store, err := sqlite.New(*dbPath)
	if err != nil {
		logger.Error("failed to initialize database", "path", *dbPath, "err", err)
		os.Exit(1)
	}
	defer store.Close()

	l := ledger.New(store,
		ledger.WithPolicy(ledger.Policy{RequireLogin: cfg.RequireLogin}),
		ledger.WithLogger(logger),
		ledger.WithObserver(metrics.Observer),
	)

	router := api.NewRouter(api.NewHandler(l), cfg.CORSOrigins)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", *port, "db", *dbPath, "require_login", cfg.RequireLogin)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", "err", err)
	}
}
