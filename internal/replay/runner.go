package replay

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"liquidityCore/internal/curve"
	"liquidityCore/internal/engine"
	"liquidityCore/internal/model"
	"liquidityCore/internal/storage"
	"liquidityCore/internal/storage/postgres"
)

// replayStateName keys the replay_state row when a store is configured.
const replayStateName = "replay"

// RunConfig holds runtime settings for a journal replay.
type RunConfig struct {
	OpsPath           string
	BatchSize         int
	CheckpointPath    string
	CheckpointEnabled bool
	MaxRetries        int
	RetryBackoff      time.Duration
}

// Runner streams an operation journal through the engine, appends the
// emitted events to a sink, and upserts pool snapshots to Postgres when a
// store is configured. Operations the engine rejects are counted and
// skipped; the journal is allowed to contain invalid submissions.
//
// On restart the runner resumes from the highest sequence recorded in the
// file checkpoint or the store's replay state. Ops at or below that
// sequence still run through the engine to rebuild its state, but their
// events are discarded instead of persisted a second time.
type Runner struct {
	cfg        RunConfig
	engine     *engine.Engine
	sink       storage.Sink
	store      *postgres.Store
	logger     *zap.Logger
	checkpoint *CheckpointStore
}

// NewRunner builds a Runner with its dependencies. The store may be nil.
func NewRunner(cfg RunConfig, eng *engine.Engine, sink storage.Sink, store *postgres.Store, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		cfg:        cfg,
		engine:     eng,
		sink:       sink,
		store:      store,
		logger:     logger,
		checkpoint: NewCheckpointStore(cfg.CheckpointPath, cfg.CheckpointEnabled),
	}
}

// Run executes the replay loop.
func (r *Runner) Run(ctx context.Context) error {
	if r.engine == nil {
		return fmt.Errorf("engine is nil")
	}
	if r.cfg.OpsPath == "" {
		return fmt.Errorf("ops path is required")
	}
	if r.cfg.BatchSize <= 0 {
		r.cfg.BatchSize = 1000
	}

	var fromSeq uint64
	if r.checkpoint != nil {
		cp, ok, err := r.checkpoint.Load()
		if err != nil {
			return err
		}
		if ok {
			fromSeq = cp.LastAppliedSeq
			r.logger.Info("resume from checkpoint", zap.Uint64("last_applied", fromSeq))
		}
	}
	if r.store != nil {
		seq, ok, err := r.store.LoadReplayState(ctx, replayStateName)
		if err != nil {
			return fmt.Errorf("load replay state: %w", err)
		}
		if ok && seq > fromSeq {
			fromSeq = seq
			r.logger.Info("resume from store state", zap.Uint64("last_applied", fromSeq))
		}
	}

	file, err := os.Open(r.cfg.OpsPath)
	if err != nil {
		return fmt.Errorf("open ops: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	var total, applied, rejected, rehydrated, failed int
	var lastSeq uint64
	sinceFlush := 0

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		total++

		var record model.OpRecord
		if err := json.Unmarshal(line, &record); err != nil {
			failed++
			r.logger.Warn("decode op record", zap.Error(err))
			continue
		}

		if record.Seq <= fromSeq {
			// The checkpoint outlives the engine, so ops behind it are
			// re-applied to rebuild in-memory state. Their outcomes repeat
			// deterministically: rejections reject again, and the
			// regenerated events are dropped rather than re-persisted.
			_ = r.apply(record)
			r.engine.TakeEvents()
			rehydrated++
			continue
		}

		if err := r.apply(record); err != nil {
			rejected++
			r.logger.Warn("op rejected",
				zap.Uint64("seq", record.Seq),
				zap.String("op", record.Op),
				zap.Error(err),
			)
		} else {
			applied++
		}
		lastSeq = record.Seq
		sinceFlush++

		if sinceFlush >= r.cfg.BatchSize {
			if err := r.flush(ctx, lastSeq); err != nil {
				return err
			}
			sinceFlush = 0
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan ops: %w", err)
	}

	if lastSeq > 0 {
		if err := r.flush(ctx, lastSeq); err != nil {
			return err
		}
	}

	r.logger.Info("replay complete",
		zap.Int("total", total),
		zap.Int("applied", applied),
		zap.Int("rejected", rejected),
		zap.Int("rehydrated", rehydrated),
		zap.Int("failed", failed),
	)

	return nil
}

// flush drains engine events into the sink and store, upserts snapshots,
// and checkpoints progress.
func (r *Runner) flush(ctx context.Context, lastSeq uint64) error {
	events := r.engine.TakeEvents()

	if r.sink != nil && len(events) > 0 {
		if err := r.sink.PutEventBatch(events); err != nil {
			return fmt.Errorf("store events: %w", err)
		}
	}

	if r.store != nil {
		if len(events) > 0 {
			err := withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
				return r.store.InsertEvents(ctx, events)
			})
			if err != nil {
				return fmt.Errorf("insert events: %w", err)
			}
		}

		snapshots := r.engine.Snapshots()
		err := withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
			return r.store.UpsertPoolSnapshots(ctx, snapshots)
		})
		if err != nil {
			return fmt.Errorf("upsert snapshots: %w", err)
		}

		err = withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
			return r.store.SaveReplayState(ctx, replayStateName, lastSeq)
		})
		if err != nil {
			return fmt.Errorf("save replay state: %w", err)
		}
	}

	if r.checkpoint != nil {
		if err := r.checkpoint.Save(lastSeq); err != nil {
			return err
		}
	}

	return nil
}

// apply dispatches one op record to the engine.
func (r *Runner) apply(record model.OpRecord) error {
	switch record.Op {
	case model.OpCreatePool:
		tokenA, err := model.ParseAddress(record.TokenA)
		if err != nil {
			return err
		}
		tokenB, err := model.ParseAddress(record.TokenB)
		if err != nil {
			return err
		}
		_, err = r.engine.CreatePool(tokenA, tokenB, curveTypeOf(record.Stable))
		return err

	case model.OpMint:
		poolID, err := model.ParsePoolID(record.PoolID)
		if err != nil {
			return err
		}
		holder, err := model.ParseAddress(record.Caller)
		if err != nil {
			return err
		}
		amountA, err := model.ParseAmount(record.AmountA)
		if err != nil {
			return err
		}
		amountB, err := model.ParseAmount(record.AmountB)
		if err != nil {
			return err
		}
		_, err = r.engine.Mint(poolID, holder, amountA, amountB)
		return err

	case model.OpBurn:
		poolID, err := model.ParsePoolID(record.PoolID)
		if err != nil {
			return err
		}
		holder, err := model.ParseAddress(record.Caller)
		if err != nil {
			return err
		}
		shares, err := model.ParseAmount(record.Shares)
		if err != nil {
			return err
		}
		_, _, err = r.engine.Burn(poolID, holder, shares)
		return err

	case model.OpSwap:
		poolID, err := model.ParsePoolID(record.PoolID)
		if err != nil {
			return err
		}
		tokenIn, err := model.ParseAddress(record.TokenIn)
		if err != nil {
			return err
		}
		amountIn, err := model.ParseAmount(record.AmountIn)
		if err != nil {
			return err
		}
		_, err = r.engine.Swap(poolID, tokenIn, amountIn)
		return err

	case model.OpTransfer:
		poolID, err := model.ParsePoolID(record.PoolID)
		if err != nil {
			return err
		}
		from, err := model.ParseAddress(record.From)
		if err != nil {
			return err
		}
		to, err := model.ParseAddress(record.To)
		if err != nil {
			return err
		}
		shares, err := model.ParseAmount(record.Shares)
		if err != nil {
			return err
		}
		return r.engine.TransferShares(poolID, from, to, shares)

	case model.OpClaim:
		poolID, err := model.ParsePoolID(record.PoolID)
		if err != nil {
			return err
		}
		holder, err := model.ParseAddress(record.Caller)
		if err != nil {
			return err
		}
		_, _, err = r.engine.ClaimFees(poolID, holder)
		return err

	case model.OpSetPause:
		caller, err := model.ParseAddress(record.Caller)
		if err != nil {
			return err
		}
		return r.engine.SetPaused(caller, record.Paused)

	case model.OpSetFeeRate:
		caller, err := model.ParseAddress(record.Caller)
		if err != nil {
			return err
		}
		return r.engine.SetFeeRate(caller, curveTypeOf(record.Stable), record.FeeBps)

	case model.OpProposeAdmin:
		caller, err := model.ParseAddress(record.Caller)
		if err != nil {
			return err
		}
		candidate, err := model.ParseAddress(record.To)
		if err != nil {
			return err
		}
		return r.engine.ProposeAdmin(caller, engine.Role(record.Role), candidate)

	case model.OpAcceptAdmin:
		caller, err := model.ParseAddress(record.Caller)
		if err != nil {
			return err
		}
		return r.engine.AcceptAdmin(caller, engine.Role(record.Role))

	default:
		return fmt.Errorf("unknown op %q", record.Op)
	}
}

func curveTypeOf(stable bool) curve.Type {
	if stable {
		return curve.Stable
	}
	return curve.Volatile
}
