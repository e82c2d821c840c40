package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/rickgao/rail-data/internal/config"
	"github.com/rickgao/rail-data/internal/database"
	"github.com/rickgao/rail-data/internal/feed"
	"github.com/rickgao/rail-data/internal/gtfsrt"
	"github.com/rickgao/rail-data/internal/live"
	"github.com/rickgao/rail-data/internal/metrics"
	"github.com/rickgao/rail-data/internal/poller"
	"github.com/rickgao/rail-data/internal/render"
	"github.com/rickgao/rail-data/internal/snapshot"
	"github.com/rickgao/rail-data/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/gatherer.yaml", "path to config file")
	envPath := flag.String("env", ".env", "dotenv file loaded before the config is expanded")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	// Set up structured logging
	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	logger.Info("starting gatherer", append(version.LogAttrs(), "config", *configPath)...)

	if err := godotenv.Load(*envPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Error("failed to load env file", "path", *envPath, "error", err)
		os.Exit(1)
	}

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"instance_id", cfg.Instance.ID,
		"feed_url", cfg.Feed.PositionsURL(),
		"snapshot_dir", cfg.Snapshots.Dir,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	client := feed.NewClient(
		cfg.Feed.BaseURL,
		cfg.Feed.PositionsPath,
		feed.WithLogger(logger),
		feed.WithTimeout(cfg.Feed.Timeout),
	)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	handlers := []poller.SnapshotHandler{
		snapshot.NewWriter(cfg.Snapshots.Dir, logger),
		m,
	}

	if cfg.Database.Enabled {
		db := cfg.Database.Postgres
		logger.Info("connecting to database",
			"host", db.Host,
			"port", db.Port,
			"database", db.Name,
		)
		pool, err := database.Connect(ctx, db)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		store := database.NewPositionStore(pool, logger)
		if err := store.EnsureSchema(ctx); err != nil {
			logger.Error("failed to prepare database", "error", err)
			os.Exit(1)
		}
		handlers = append(handlers, store)
		logger.Info("database connected")
	}

	if cfg.Export.GTFSRTPath != "" {
		handlers = append(handlers, gtfsrt.NewExporter(cfg.Export.GTFSRTPath, logger))
		logger.Info("gtfs-rt export enabled", "path", cfg.Export.GTFSRTPath)
	}

	var server *live.Server
	if cfg.Server.Enabled {
		hub := live.NewHub(logger)
		handlers = append(handlers, hub)
		server = live.NewServer(cfg.Server.Port, hub, m.Handler(), logger,
			live.WithMetricsPath(cfg.Server.MetricsPath),
			live.WithMiddleware(m.Middleware),
		)
	}

	collector := poller.NewCollector(client, handlers,
		poller.WithObserver(m),
		poller.WithLogger(logger),
	)

	start := time.Now()
	sched := poller.Schedule{
		End:   cfg.Schedule.End(start),
		Every: cfg.Schedule.Interval(),
		Unit:  cfg.Schedule.Unit,
	}

	// The server runs only as long as the collection window.
	windowCtx, closeWindow := context.WithCancel(ctx)
	defer closeWindow()
	g, gctx := errgroup.WithContext(windowCtx)

	if server != nil {
		g.Go(func() error {
			return server.Run(gctx)
		})
	}

	var stats poller.Stats
	g.Go(func() error {
		defer closeWindow()
		var err error
		stats, err = poller.Run(gctx, sched, collector.Poll, logger)
		return err
	})

	err = g.Wait()
	var cfgErr *poller.ConfigError
	switch {
	case errors.As(err, &cfgErr):
		logger.Error("invalid schedule", "error", err)
		os.Exit(1)
	case ctx.Err() != nil:
		logger.Info("collection interrupted", "fires", stats.Fires, "failures", stats.Failures)
		return
	case err != nil && !errors.Is(err, context.Canceled):
		logger.Error("collection failed", "error", err)
		os.Exit(1)
	}

	logger.Info("collection finished",
		"fires", stats.Fires,
		"failures", stats.Failures,
		"elapsed", time.Since(start),
	)

	if cfg.Render.Enabled {
		if err := renderAll(cfg, logger); err != nil {
			logger.Error("failed to render", "error", err)
			os.Exit(1)
		}
	}

	logger.Info("gatherer stopped")
}

// renderAll aggregates the snapshot directory and renders every region.
func renderAll(cfg *config.GathererConfig, logger *slog.Logger) error {
	ds, err := snapshot.Aggregate(cfg.Snapshots.Dir, snapshot.WithLogger(logger))
	if err != nil {
		return err
	}
	renderer, err := render.NewRenderer(cfg.Render, logger)
	if err != nil {
		return err
	}
	_, err = renderer.RenderAll(ds)
	return err
}
