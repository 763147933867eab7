package replay

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"liquidityCore/internal/curve"
	"liquidityCore/internal/engine"
	"liquidityCore/internal/model"
	"liquidityCore/internal/storage"
)

var (
	testAdmin  = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	testTokenA = common.HexToAddress("0x1111111111111111111111111111111111111111")
	testTokenB = common.HexToAddress("0x2222222222222222222222222222222222222222")
	testHolder = common.HexToAddress("0x3333333333333333333333333333333333333333")
)

func writeOps(t *testing.T, path string, ops []model.OpRecord) {
	t.Helper()
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create ops file: %v", err)
	}
	defer file.Close()
	for _, op := range ops {
		line, err := json.Marshal(op)
		if err != nil {
			t.Fatalf("marshal op: %v", err)
		}
		if _, err := file.Write(append(line, '\n')); err != nil {
			t.Fatalf("write op: %v", err)
		}
	}
}

func readEvents(t *testing.T, path string) []model.EventRecord {
	t.Helper()
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open events: %v", err)
	}
	defer file.Close()

	var events []model.EventRecord
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var rec model.EventRecord
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			t.Fatalf("decode event: %v", err)
		}
		events = append(events, rec)
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan events: %v", err)
	}
	return events
}

func TestRunnerAppliesJournal(t *testing.T) {
	dir := t.TempDir()
	opsPath := filepath.Join(dir, "ops.jsonl")
	eventsPath := filepath.Join(dir, "events.jsonl")
	checkpointPath := filepath.Join(dir, "checkpoint.json")

	poolID := engine.PoolKey(testTokenA, testTokenB, curve.Volatile)
	writeOps(t, opsPath, []model.OpRecord{
		{Seq: 1, Op: model.OpCreatePool, TokenA: testTokenA.Hex(), TokenB: testTokenB.Hex()},
		{Seq: 2, Op: model.OpMint, PoolID: poolID.Hex(), Caller: testHolder.Hex(), AmountA: "1000000", AmountB: "1000000"},
		{Seq: 3, Op: model.OpSwap, PoolID: poolID.Hex(), TokenIn: testTokenA.Hex(), AmountIn: "10000"},
		// The engine rejects this one; the replay must carry on.
		{Seq: 4, Op: model.OpSwap, PoolID: poolID.Hex(), TokenIn: testTokenA.Hex(), AmountIn: "0"},
		{Seq: 5, Op: model.OpClaim, PoolID: poolID.Hex(), Caller: testHolder.Hex()},
	})

	eng := engine.New(engine.DefaultConfig(testAdmin), nil)
	runner := NewRunner(RunConfig{
		OpsPath:           opsPath,
		BatchSize:         2,
		CheckpointPath:    checkpointPath,
		CheckpointEnabled: true,
	}, eng, storage.NewJsonlSink(eventsPath), nil, nil)

	if err := runner.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	r0, r1, err := eng.PoolReserves(poolID)
	if err != nil {
		t.Fatalf("reserves: %v", err)
	}
	// 10000 in at 30 bps: fee 30, net 9970, out floor(9970*1e6/1009970).
	if r0.Int64() != 1_009_970 {
		t.Fatalf("reserve0: %s", r0)
	}
	if r1.Int64() != 1_000_000-9871 {
		t.Fatalf("reserve1: %s", r1)
	}

	events := readEvents(t, eventsPath)
	types := make([]string, 0, len(events))
	for _, ev := range events {
		types = append(types, ev.Type)
	}
	want := []string{
		model.EventPoolCreated,
		model.EventMintExecuted,
		model.EventSwapExecuted,
		model.EventFeesClaimed,
	}
	if len(types) != len(want) {
		t.Fatalf("event types %v, want %v", types, want)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Fatalf("event %d is %s, want %s", i, types[i], want[i])
		}
	}

	cp, ok, err := NewCheckpointStore(checkpointPath, true).Load()
	if err != nil {
		t.Fatalf("load checkpoint: %v", err)
	}
	if !ok || cp.LastAppliedSeq != 5 {
		t.Fatalf("checkpoint: %+v ok=%v", cp, ok)
	}
}

func TestRunnerResumesWithFreshEngine(t *testing.T) {
	dir := t.TempDir()
	opsPath := filepath.Join(dir, "ops.jsonl")
	eventsPath := filepath.Join(dir, "events.jsonl")
	checkpointPath := filepath.Join(dir, "checkpoint.json")

	poolID := engine.PoolKey(testTokenA, testTokenB, curve.Volatile)
	ops := []model.OpRecord{
		{Seq: 1, Op: model.OpCreatePool, TokenA: testTokenA.Hex(), TokenB: testTokenB.Hex()},
		{Seq: 2, Op: model.OpMint, PoolID: poolID.Hex(), Caller: testHolder.Hex(), AmountA: "1000000", AmountB: "1000000"},
	}
	writeOps(t, opsPath, ops)

	cfg := RunConfig{
		OpsPath:           opsPath,
		CheckpointPath:    checkpointPath,
		CheckpointEnabled: true,
	}

	first := engine.New(engine.DefaultConfig(testAdmin), nil)
	if err := NewRunner(cfg, first, storage.NewJsonlSink(eventsPath), nil, nil).Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}

	// Simulate a process restart: the journal grows by a swap and a fresh
	// engine resumes from the checkpoint. The pre-checkpoint ops must
	// rebuild the pool so the swap lands on real reserves.
	ops = append(ops, model.OpRecord{Seq: 3, Op: model.OpSwap, PoolID: poolID.Hex(), TokenIn: testTokenA.Hex(), AmountIn: "10000"})
	writeOps(t, opsPath, ops)

	second := engine.New(engine.DefaultConfig(testAdmin), nil)
	if err := NewRunner(cfg, second, storage.NewJsonlSink(eventsPath), nil, nil).Run(context.Background()); err != nil {
		t.Fatalf("second run: %v", err)
	}

	r0, r1, err := second.PoolReserves(poolID)
	if err != nil {
		t.Fatalf("reserves after resume: %v", err)
	}
	if r0.Int64() != 1_009_970 {
		t.Fatalf("reserve0 after resume: %s", r0)
	}
	if r1.Int64() != 1_000_000-9871 {
		t.Fatalf("reserve1 after resume: %s", r1)
	}

	// Only the swap's event is appended; the rebuilt ops do not re-emit.
	events := readEvents(t, eventsPath)
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	last := events[len(events)-1]
	if last.Type != model.EventSwapExecuted || last.Seq != 3 {
		t.Fatalf("last event %s seq %d", last.Type, last.Seq)
	}

	cp, ok, err := NewCheckpointStore(checkpointPath, true).Load()
	if err != nil {
		t.Fatalf("load checkpoint: %v", err)
	}
	if !ok || cp.LastAppliedSeq != 3 {
		t.Fatalf("checkpoint: %+v ok=%v", cp, ok)
	}
}

func TestRunnerResumeIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	opsPath := filepath.Join(dir, "ops.jsonl")
	checkpointPath := filepath.Join(dir, "checkpoint.json")

	writeOps(t, opsPath, []model.OpRecord{
		{Seq: 1, Op: model.OpCreatePool, TokenA: testTokenA.Hex(), TokenB: testTokenB.Hex()},
	})

	cfg := RunConfig{
		OpsPath:           opsPath,
		CheckpointPath:    checkpointPath,
		CheckpointEnabled: true,
	}

	eng := engine.New(engine.DefaultConfig(testAdmin), nil)
	if err := NewRunner(cfg, eng, nil, nil, nil).Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if got := len(eng.Pools()); got != 1 {
		t.Fatalf("expected 1 pool, got %d", got)
	}

	// A second run over the same journal re-applies the create during
	// rebuild; the duplicate rejection is swallowed and state is unchanged.
	if err := NewRunner(cfg, eng, nil, nil, nil).Run(context.Background()); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if got := len(eng.Pools()); got != 1 {
		t.Fatalf("pool count changed on resume: %d", got)
	}
}

func TestRunnerRequiresOpsPath(t *testing.T) {
	eng := engine.New(engine.DefaultConfig(testAdmin), nil)
	if err := NewRunner(RunConfig{}, eng, nil, nil, nil).Run(context.Background()); err == nil {
		t.Fatalf("expected error for missing ops path")
	}
}
