package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"liquidityCore/internal/config"
	"liquidityCore/internal/model"
	"liquidityCore/internal/report"
	"liquidityCore/internal/storage/postgres"
)

func runReport(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadReport(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Input == "" {
		return fmt.Errorf("input path is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store *postgres.Store
	if cfg.PGDSN != "" {
		store, err = postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
	}

	logger.Info("report start",
		zap.String("in", cfg.Input),
		zap.Bool("postgres", store != nil),
	)

	totals, err := report.NewReporter(store, logger).Run(ctx, cfg.Input)
	if err != nil {
		return err
	}

	return writeTotals(cfg.Out, totals)
}

func writeTotals(path string, totals []model.PoolTotals) error {
	out := os.Stdout
	if path != "" {
		dir := filepath.Dir(path)
		if dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
		}
		file, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer file.Close()
		out = file
	}

	writer := bufio.NewWriter(out)
	encoder := json.NewEncoder(writer)
	for _, t := range totals {
		if err := encoder.Encode(t); err != nil {
			return fmt.Errorf("encode totals: %w", err)
		}
	}
	return writer.Flush()
}
