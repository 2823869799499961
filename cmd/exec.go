package cmd

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ticket-marketplace/config"
	"ticket-marketplace/models"
	"ticket-marketplace/monitoring"
	"ticket-marketplace/notify"
	"ticket-marketplace/services"
	"ticket-marketplace/snapshot"
	"ticket-marketplace/utils"
)

// Start wires the marketplace to its collaborators: the Redis snapshot
// store, the PubNub activity publisher and the metrics endpoint. Request
// transport is the hosting layer's concern and is not wired here.
func Start() error {
	cfg := config.LoadConfig()

	redisClient, err := utils.NewRedisClient(cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	snapshotStore := snapshot.NewStore(redisClient, cfg.SnapshotKey)
	market := services.NewMarketplace(models.Principal(cfg.PlatformOwner))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Pick up where the last run left off, if a snapshot exists.
	state, revision, err := snapshotStore.Load(ctx)
	switch {
	case err == nil:
		if err := market.RestoreState(state); err != nil {
			return err
		}
		slog.Info("restored marketplace snapshot", "revision", revision, "supply", market.TotalSupply())
	case errors.Is(err, snapshot.ErrNoSnapshot):
		slog.Info("no snapshot found, starting empty")
	default:
		return err
	}

	if cfg.PubNubPublishKey != "" && cfg.PubNubSubscribeKey != "" {
		market.SetNotifier(notify.NewPublisher(cfg.PubNubPublishKey, cfg.PubNubSubscribeKey, cfg.PubNubUserID))
		slog.Info("ticket activity notifications enabled")
	}

	if cfg.EnableMetrics {
		monitor := monitoring.NewMonitor(market, cfg.MetricsInterval)
		defer monitor.Stop()
		market.SetRecorder(monitor)

		metricsServer := monitoring.StartMetricsServer(cfg.MetricsPort)
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			metricsServer.Shutdown(shutdownCtx)
		}()
		slog.Info("metrics server started", "port", cfg.MetricsPort)
	}

	go snapshotLoop(ctx, market, snapshotStore, cfg.SnapshotInterval)
	go handleShutdown(cancel)

	slog.Info("marketplace host running",
		"environment", cfg.Environment,
		"platform_owner", cfg.PlatformOwner,
		"snapshot_interval", cfg.SnapshotInterval,
	)

	<-ctx.Done()

	// Final snapshot before exit.
	saveCtx, saveCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer saveCancel()
	if revision, err := snapshotStore.Save(saveCtx, market.ExportState()); err != nil {
		slog.Error("final snapshot failed", "error", err)
	} else {
		slog.Info("final snapshot saved", "revision", revision)
	}

	return nil
}

// snapshotLoop persists the full store on an interval. Each save is one
// atomic write; a failed save is retried on the next tick.
func snapshotLoop(ctx context.Context, market *services.Marketplace, store *snapshot.Store, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			revision, err := store.Save(ctx, market.ExportState())
			if err != nil {
				slog.Error("snapshot save failed", "error", err)
				continue
			}
			slog.Info("snapshot saved", "revision", revision, "supply", market.TotalSupply())
		case <-ctx.Done():
			return
		}
	}
}

func handleShutdown(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	slog.Info("shutdown signal received, cleaning up")
	cancel()
}
