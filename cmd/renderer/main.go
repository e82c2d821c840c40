package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/rickgao/rail-data/internal/config"
	"github.com/rickgao/rail-data/internal/render"
	"github.com/rickgao/rail-data/internal/snapshot"
	"github.com/rickgao/rail-data/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/gatherer.yaml", "path to config file")
	dir := flag.String("dir", "", "snapshot directory (overrides snapshots.dir)")
	region := flag.String("region", "", "render only this region (ireland, dublin, cork)")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	logger.Info("starting renderer", append(version.LogAttrs(), "config", *configPath)...)

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *dir != "" {
		cfg.Snapshots.Dir = *dir
	}

	ds, err := snapshot.Aggregate(cfg.Snapshots.Dir, snapshot.WithLogger(logger))
	if err != nil {
		logger.Error("failed to aggregate snapshots", "error", err)
		os.Exit(1)
	}
	logger.Info("snapshots aggregated",
		"dir", cfg.Snapshots.Dir,
		"records", ds.Len(),
		"timestamps", len(ds.Timestamps()),
		"skipped", len(ds.Skipped),
	)

	renderer, err := render.NewRenderer(cfg.Render, logger)
	if err != nil {
		logger.Error("failed to create renderer", "error", err)
		os.Exit(1)
	}

	if *region == "" {
		if _, err := renderer.RenderAll(ds); err != nil {
			logger.Error("failed to render", "error", err)
			os.Exit(1)
		}
		return
	}

	r := config.Region(*region)
	if !r.Valid() {
		logger.Error("unknown region", "region", *region)
		os.Exit(1)
	}
	known := ds.KnownPositions()
	known.SortByTime()
	if _, err := renderer.RenderRegion(known, r, render.NewPalette(known.TrainCodes())); err != nil {
		logger.Error("failed to render", "region", r, "error", err)
		os.Exit(1)
	}
}
