package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ganot/ticklink/internal/config"
	"github.com/ganot/ticklink/internal/domain/activity"
	"github.com/ganot/ticklink/internal/domain/cache"
	"github.com/ganot/ticklink/internal/engine"
	"github.com/ganot/ticklink/internal/graphql"
	"github.com/ganot/ticklink/internal/link"
	"github.com/ganot/ticklink/internal/sqlite"
	"github.com/ganot/ticklink/internal/tick"
)

// runtime holds the wired components shared by every command.
type runtime struct {
	cfg    config.Config
	logger *slog.Logger

	db       *sqlite.DB
	ticks    *tick.Source
	parser   *graphql.Parser
	schema   *engine.Schema
	link     *link.Link
	cache    *cache.Service
	activity *activity.Service
}

// openRuntime opens the database, restores the cache and starts the tick
// source. Close must be called to stop it.
func openRuntime(ctx context.Context, cfg config.Config, logger *slog.Logger) (*runtime, error) {
	if err := ensureDir(cfg.DB.Path); err != nil {
		return nil, fmt.Errorf("prepare database path: %w", err)
	}
	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.RunMigrations(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	rt := &runtime{cfg: cfg, logger: logger, db: db}
	rt.activity = activity.NewService(sqlite.NewActivityRepository(db), logger)
	rt.cache = cache.NewService(sqlite.NewCacheRepository(db), logger)
	if err := rt.cache.Restore(ctx, cache.Snapshot(cfg.Cache.Restore)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("restore cache: %w", err)
	}

	rt.parser, err = graphql.NewParser(cfg.Cache.DocumentCacheSize)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	policy, err := link.ParsePollErrorPolicy(cfg.Link.PollErrorPolicy)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	rt.ticks = tick.New(nil, cfg.Tick.Interval, logger.With("component", "tick"))
	rt.schema = engine.NewTickSchema(rt.ticks)
	rt.link, err = link.New(link.Config{
		Executor:        engine.New(rt.schema, rt.parser, logger.With("component", "engine")),
		Classifier:      rt.parser,
		StartupDelay:    cfg.Link.StartupDelay,
		PollInterval:    cfg.Link.PollInterval,
		PollErrorPolicy: policy,
		Activity:        rt.activity,
		Logger:          logger.With("component", "link"),
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := rt.ticks.Start(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.Info("runtime started",
		"db", cfg.DB.Path,
		"tick_interval", cfg.Tick.Interval,
		"startup_delay", cfg.Link.StartupDelay,
		"poll_interval", cfg.Link.PollInterval,
		"poll_error_policy", policy,
	)
	return rt, nil
}

func (rt *runtime) Close() {
	rt.ticks.Stop()
	if err := rt.db.Close(); err != nil {
		rt.logger.Warn("close database", "error", err)
	}
}
