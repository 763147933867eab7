package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"liquidityCore/internal/config"
	"liquidityCore/internal/engine"
	"liquidityCore/internal/model"
	"liquidityCore/internal/replay"
	"liquidityCore/internal/storage"
	"liquidityCore/internal/storage/postgres"
)

func runReplay(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadReplay(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Ops == "" {
		return fmt.Errorf("ops path is required")
	}
	if cfg.FeeManager == "" || cfg.Pauser == "" {
		return fmt.Errorf("fee-manager and pauser addresses are required")
	}

	feeManager, err := model.ParseAddress(cfg.FeeManager)
	if err != nil {
		return fmt.Errorf("parse fee-manager: %w", err)
	}
	pauser, err := model.ParseAddress(cfg.Pauser)
	if err != nil {
		return fmt.Errorf("parse pauser: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eng := engine.New(engine.Config{
		FeeManager:     feeManager,
		Pauser:         pauser,
		VolatileFeeBps: cfg.VolatileFeeBps,
		StableFeeBps:   cfg.StableFeeBps,
	}, logger)

	var store *postgres.Store
	if cfg.PGDSN != "" {
		store, err = postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
	}

	runner := replay.NewRunner(replay.RunConfig{
		OpsPath:           cfg.Ops,
		BatchSize:         cfg.BatchSize,
		CheckpointPath:    cfg.Checkpoint,
		CheckpointEnabled: cfg.CheckpointEnabled,
		MaxRetries:        cfg.MaxRetries,
		RetryBackoff:      cfg.RetryBackoff,
	}, eng, storage.NewJsonlSink(cfg.EventsOut), store, logger)

	logger.Info("replay start",
		zap.String("ops", cfg.Ops),
		zap.String("events_out", cfg.EventsOut),
		zap.Bool("checkpoint_enabled", cfg.CheckpointEnabled),
		zap.String("checkpoint", cfg.Checkpoint),
		zap.Int("batch_size", cfg.BatchSize),
		zap.Bool("postgres", store != nil),
	)

	return runner.Run(ctx)
}
