package report

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"go.uber.org/zap"

	"liquidityCore/internal/model"
	"liquidityCore/internal/storage/postgres"
)

// Reporter folds an event journal into per-pool lifetime totals.
type Reporter struct {
	store  *postgres.Store
	logger *zap.Logger
}

// NewReporter builds a Reporter. The store may be nil; totals are then only
// returned to the caller.
func NewReporter(store *postgres.Store, logger *zap.Logger) *Reporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reporter{store: store, logger: logger}
}

// Run reads an event journal and returns per-pool totals ordered by pool id,
// upserting them to Postgres when a store is configured.
func (r *Reporter) Run(ctx context.Context, inputPath string) ([]model.PoolTotals, error) {
	file, err := os.Open(inputPath)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	accumulators := make(map[string]*Accumulator)
	var total, failed int

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		total++

		var record model.EventRecord
		if err := json.Unmarshal(line, &record); err != nil {
			failed++
			r.logger.Warn("decode event record", zap.Error(err))
			continue
		}

		acc := accumulators[record.PoolID]
		if acc == nil {
			acc = NewAccumulator(record.PoolID)
			accumulators[record.PoolID] = acc
		}
		if err := acc.AddEvent(record); err != nil {
			failed++
			r.logger.Warn("accumulate event", zap.Error(err), zap.String("pool", record.PoolID), zap.String("type", record.Type))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan input: %w", err)
	}

	ids := make([]string, 0, len(accumulators))
	for id := range accumulators {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	totals := make([]model.PoolTotals, 0, len(ids))
	for _, id := range ids {
		totals = append(totals, accumulators[id].Totals())
	}

	if r.store != nil {
		if err := r.store.UpsertPoolTotals(ctx, totals); err != nil {
			return nil, fmt.Errorf("upsert totals: %w", err)
		}
	}

	r.logger.Info("report complete",
		zap.Int("events", total),
		zap.Int("failed", failed),
		zap.Int("pools", len(totals)),
	)

	return totals, nil
}
