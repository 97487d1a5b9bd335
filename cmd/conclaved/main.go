// Command conclaved is the meeting orchestration server: it loads
// configuration, applies pending migrations, wires the repository gateway,
// event bus, LLM router, background runner, and webhook dispatcher, then
// serves the HTTP/WebSocket API until interrupted.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/conclave-run/conclave/pkg/api"
	"github.com/conclave-run/conclave/pkg/config"
	"github.com/conclave-run/conclave/pkg/events"
	"github.com/conclave-run/conclave/pkg/llmclient"
	"github.com/conclave-run/conclave/pkg/repo"
	"github.com/conclave-run/conclave/pkg/runner"
	"github.com/conclave-run/conclave/pkg/webhook"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	configDir := flag.String("config-dir", getEnv("CONFIG_DIR", "./deploy/config"), "Path to configuration directory")
	migrationsDir := flag.String("migrations-dir", getEnv("MIGRATIONS_DIR", "./migrations"), "Path to SQL migrations directory")
	flag.Parse()

	cfg, err := config.Load(*configDir)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := repo.Migrate(cfg.DatabaseURL, *migrationsDir); err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}

	ctx := context.Background()
	gateway, err := repo.NewPgGateway(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer gateway.Close()

	catchup := events.NewRepoCatchupAdapter(gateway)
	connManager := events.NewConnectionManager(catchup, 10*time.Second)

	var bus interface{ Broadcast(channel string, event []byte) }
	bus = events.NewLocalBroadcaster(connManager)
	if cfg.Events.Backend == config.EventsBackendBroker {
		listener := events.NewNotifyListener(cfg.DatabaseURL, connManager)
		if err := listener.Start(ctx); err != nil {
			log.Fatalf("Failed to start NOTIFY listener: %v", err)
		}
		connManager.SetListener(listener)
		bus = events.NewBrokerBroadcaster(gateway.Pool())
	}

	publisher := events.NewEventPublisher(gateway, bus)
	llmRouter := llmclient.NewRouter(cfg.LLMProviders, int(cfg.LLM.CallTimeout.Seconds()), cfg.LLM.RetryMax)
	webhooks := webhook.NewDispatcher(gateway, 5*time.Second)

	runnerMgr := runner.NewManager(gateway, llmRouter, publisher, webhooks, cfg.Context.BudgetChars)
	connManager.SetRunActionHandler(runner.NewWSAdapter(runnerMgr))

	if err := runnerMgr.Sweep(ctx); err != nil {
		slog.Warn("startup sweep failed", "error", err)
	}

	server := api.NewServer(cfg, gateway, runnerMgr, connManager)
	server.SetDBPinger(gateway)

	go func() {
		slog.Info("conclaved listening", "port", cfg.Server.Port)
		if err := server.Start(":" + cfg.Server.Port); err != nil {
			slog.Error("server stopped", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
}
