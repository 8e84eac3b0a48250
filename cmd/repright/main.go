package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/claude/repright/internal/coach"
	"github.com/claude/repright/internal/config"
	"github.com/claude/repright/internal/device"
	"github.com/claude/repright/internal/events"
	"github.com/claude/repright/internal/kv"
	"github.com/claude/repright/internal/mcp"
	"github.com/claude/repright/internal/schedule"
	"github.com/claude/repright/internal/server"
	"github.com/joho/godotenv"
	"tailscale.com/tsnet"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("RepRight starting", "version", Version)

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn("failed to read .env", "error", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if *migrateOnly {
		if cfg.Store.Driver != config.DriverPostgres {
			log.Info("migrate-only: nothing to migrate", "driver", cfg.Store.Driver)
			return
		}
		if err := kv.RunMigrations(cfg.Store.Postgres.DSN()); err != nil {
			log.Error("migration failed", "error", err)
			os.Exit(1)
		}
		log.Info("migrations applied, exiting")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Error("failed to open store", "driver", cfg.Store.Driver, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	var publisher events.Publisher = events.Noop{}
	if len(cfg.Events.Brokers) > 0 {
		publisher = events.NewKafka(cfg.Events.Brokers, cfg.Events.Topic, log)
		log.Info("publishing workout events", "brokers", cfg.Events.Brokers, "topic", cfg.Events.Topic)
	}
	defer publisher.Close()

	loc, err := cfg.Location()
	if err != nil {
		log.Error("invalid timezone", "timezone", cfg.Timezone, "error", err)
		os.Exit(1)
	}
	registry := device.NewRegistry(store, publisher, log, device.WithLocation(loc))

	// Catch up on days that passed while the server was down.
	registry.RolloverAll(ctx)
	midnight := schedule.NewMidnight(loc, registry.RolloverAll, log)
	midnight.Start(ctx)
	defer midnight.Stop()

	coachClient := coach.New(coach.Config{
		BaseURL: cfg.AI.BaseURL,
		APIKey:  cfg.AI.APIKey,
		Model:   cfg.AI.Model,
		Timeout: cfg.AI.Timeout,
	}, log)
	if !coachClient.Configured() {
		log.Warn("no AI API key configured, plan generation and form analysis are disabled")
	}

	srv := server.New(registry, coachClient, cfg.Auth.APIKey, log)
	srv.SetMCP(mcp.NewHTTPHandler(mcp.New(mcp.NewRegistrySource(registry), Version, log)))

	// Listen on the tailnet or plain TCP
	var listener net.Listener
	var tsServer *tsnet.Server

	if cfg.Tailscale.Enabled {
		tsServer = &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			log.Error("tsnet start failed", "error", err)
			os.Exit(1)
		}
		defer tsServer.Close()

		lc, err := tsServer.LocalClient()
		if err != nil {
			log.Error("tsnet local client failed", "error", err)
			os.Exit(1)
		}
		srv.SetTailscale(lc)

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			log.Error("tsnet listen failed", "error", err)
			os.Exit(1)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("listen failed", "addr", addr, "error", err)
			os.Exit(1)
		}
		log.Info("server starting", "addr", addr, "timezone", loc.String())
	}

	httpSrv := &http.Server{Handler: srv, ReadHeaderTimeout: 10 * time.Second}

	serveErr := make(chan error, 1)
	go func() {
		if err := httpSrv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-serveErr:
		log.Error("server error", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
}

func openStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (kv.Store, error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		dsn := cfg.Store.Postgres.DSN()
		if err := kv.RunMigrations(dsn); err != nil {
			return nil, fmt.Errorf("migrations: %w", err)
		}
		log.Info("migrations applied")
		store, err := kv.NewPostgres(ctx, dsn)
		if err != nil {
			return nil, err
		}
		log.Info("database connected", "host", cfg.Store.Postgres.Host)
		return store, nil
	default:
		store, err := kv.OpenSQLite(cfg.Store.Path)
		if err != nil {
			return nil, err
		}
		log.Info("sqlite store opened", "path", cfg.Store.Path)
		return store, nil
	}
}
