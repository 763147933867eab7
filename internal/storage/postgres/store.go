package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"liquidityCore/internal/model"
)

// Store provides Postgres persistence for pool state and engine events.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// UpsertPoolSnapshots inserts or updates pool state rows.
func (s *Store) UpsertPoolSnapshots(ctx context.Context, snapshots []model.PoolSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, snap := range snapshots {
		batch.Queue(`
			INSERT INTO pools (
				pool_id, token0, token1, stable, fee_bps,
				reserve0, reserve1, fees0, fees1, total_fees0, total_fees1,
				total_supply, created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,now(),now())
			ON CONFLICT (pool_id)
			DO UPDATE SET
				reserve0 = EXCLUDED.reserve0,
				reserve1 = EXCLUDED.reserve1,
				fees0 = EXCLUDED.fees0,
				fees1 = EXCLUDED.fees1,
				total_fees0 = EXCLUDED.total_fees0,
				total_fees1 = EXCLUDED.total_fees1,
				total_supply = EXCLUDED.total_supply,
				updated_at = now()
		`,
			snap.PoolID,
			snap.Token0,
			snap.Token1,
			snap.Stable,
			snap.FeeBps,
			snap.Reserve0,
			snap.Reserve1,
			snap.Fees0,
			snap.Fees1,
			snap.TotalFees0,
			snap.TotalFees1,
			snap.TotalSupply,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range snapshots {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// InsertEvents appends event records. Rows are append-only; a replayed
// sequence number is skipped rather than rewritten.
func (s *Store) InsertEvents(ctx context.Context, events []model.EventRecord) error {
	if len(events) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, event := range events {
		batch.Queue(`
			INSERT INTO engine_events (seq, event_type, pool_id, data, emitted_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (seq) DO NOTHING
		`,
			int64(event.Seq),
			event.Type,
			event.PoolID,
			[]byte(event.Data),
			event.EmittedAt,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range events {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// UpsertPoolTotals inserts or updates lifetime per-pool activity summaries.
func (s *Store) UpsertPoolTotals(ctx context.Context, totals []model.PoolTotals) error {
	if len(totals) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, t := range totals {
		batch.Queue(`
			INSERT INTO pool_totals (
				pool_id, swap_count, mint_count, burn_count,
				volume0, volume1, fees0, fees1, created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,now(),now())
			ON CONFLICT (pool_id)
			DO UPDATE SET
				swap_count = EXCLUDED.swap_count,
				mint_count = EXCLUDED.mint_count,
				burn_count = EXCLUDED.burn_count,
				volume0 = EXCLUDED.volume0,
				volume1 = EXCLUDED.volume1,
				fees0 = EXCLUDED.fees0,
				fees1 = EXCLUDED.fees1,
				updated_at = now()
		`,
			t.PoolID,
			int64(t.SwapCount),
			int64(t.MintCount),
			int64(t.BurnCount),
			t.Volume0,
			t.Volume1,
			t.Fees0,
			t.Fees1,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range totals {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// LoadReplayState returns the last applied operation sequence for a name.
func (s *Store) LoadReplayState(ctx context.Context, name string) (uint64, bool, error) {
	if name == "" {
		return 0, false, fmt.Errorf("state name required")
	}
	var seq uint64
	row := s.pool.QueryRow(ctx, `SELECT last_applied_seq FROM replay_state WHERE name=$1`, name)
	if err := row.Scan(&seq); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return seq, true, nil
}

// SaveReplayState upserts the last applied operation sequence for a name.
func (s *Store) SaveReplayState(ctx context.Context, name string, seq uint64) error {
	if name == "" {
		return fmt.Errorf("state name required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO replay_state (name, last_applied_seq, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE
		SET last_applied_seq = EXCLUDED.last_applied_seq, updated_at = now()
	`, name, seq)
	return err
}
