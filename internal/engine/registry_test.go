package engine

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"liquidityCore/internal/curve"
)

var (
	admin   = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	tokenA  = common.HexToAddress("0x1111111111111111111111111111111111111111")
	tokenB  = common.HexToAddress("0x2222222222222222222222222222222222222222")
	holder1 = common.HexToAddress("0x3333333333333333333333333333333333333333")
	holder2 = common.HexToAddress("0x4444444444444444444444444444444444444444")
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	return New(DefaultConfig(admin), nil)
}

func TestPoolKeyOrderIndependent(t *testing.T) {
	ab := PoolKey(tokenA, tokenB, curve.Volatile)
	ba := PoolKey(tokenB, tokenA, curve.Volatile)
	if ab != ba {
		t.Fatalf("pool key depends on argument order: %s != %s", ab.Hex(), ba.Hex())
	}

	stable := PoolKey(tokenA, tokenB, curve.Stable)
	if ab == stable {
		t.Fatalf("volatile and stable pools share a key")
	}
}

func TestCreatePool(t *testing.T) {
	e := newTestEngine(t)

	id, err := e.CreatePool(tokenA, tokenB, curve.Volatile)
	if err != nil {
		t.Fatalf("create pool: %v", err)
	}
	if id != PoolKey(tokenA, tokenB, curve.Volatile) {
		t.Fatalf("pool id mismatch")
	}

	if _, err := e.CreatePool(tokenB, tokenA, curve.Volatile); !errors.Is(err, ErrPoolExists) {
		t.Fatalf("expected ErrPoolExists, got %v", err)
	}
	if _, err := e.CreatePool(tokenA, tokenA, curve.Volatile); !errors.Is(err, ErrIdenticalAssets) {
		t.Fatalf("expected ErrIdenticalAssets, got %v", err)
	}

	// Same pair with the other curve type is a distinct pool.
	if _, err := e.CreatePool(tokenA, tokenB, curve.Stable); err != nil {
		t.Fatalf("create stable pool: %v", err)
	}
	if got := len(e.Pools()); got != 2 {
		t.Fatalf("expected 2 pools, got %d", got)
	}
}

func TestCreatePoolUsesCurveFeeDefaults(t *testing.T) {
	e := newTestEngine(t)

	volatileID, err := e.CreatePool(tokenA, tokenB, curve.Volatile)
	if err != nil {
		t.Fatalf("create pool: %v", err)
	}
	stableID, err := e.CreatePool(tokenA, tokenB, curve.Stable)
	if err != nil {
		t.Fatalf("create pool: %v", err)
	}

	volatileSnap, err := e.Snapshot(volatileID)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	stableSnap, err := e.Snapshot(stableID)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	if volatileSnap.FeeBps != 30 || stableSnap.FeeBps != 5 {
		t.Fatalf("unexpected fee defaults: volatile=%d stable=%d", volatileSnap.FeeBps, stableSnap.FeeBps)
	}
}

func TestSetPausedRequiresPauser(t *testing.T) {
	e := newTestEngine(t)

	if err := e.SetPaused(holder1, true); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if err := e.SetPaused(admin, true); err != nil {
		t.Fatalf("set paused: %v", err)
	}
	if !e.Paused() {
		t.Fatalf("pause flag not set")
	}
}

func TestSetFeeRate(t *testing.T) {
	e := newTestEngine(t)

	if err := e.SetFeeRate(holder1, curve.Volatile, 25); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if err := e.SetFeeRate(admin, curve.Volatile, 0); !errors.Is(err, ErrInvalidFeeRate) {
		t.Fatalf("expected ErrInvalidFeeRate for 0, got %v", err)
	}
	if err := e.SetFeeRate(admin, curve.Volatile, MaxFeeBps+1); !errors.Is(err, ErrInvalidFeeRate) {
		t.Fatalf("expected ErrInvalidFeeRate above cap, got %v", err)
	}
	if err := e.SetFeeRate(admin, curve.Volatile, 25); err != nil {
		t.Fatalf("set fee rate: %v", err)
	}

	id, err := e.CreatePool(tokenA, tokenB, curve.Volatile)
	if err != nil {
		t.Fatalf("create pool: %v", err)
	}
	snap, err := e.Snapshot(id)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.FeeBps != 25 {
		t.Fatalf("new pool did not pick up fee rate: %d", snap.FeeBps)
	}
}

func TestAdminHandoffTwoPhase(t *testing.T) {
	e := newTestEngine(t)
	candidate := holder1

	// Only the holder may propose, only the candidate may accept.
	if err := e.ProposeAdmin(holder2, RolePauser, candidate); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if err := e.AcceptAdmin(candidate, RolePauser); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized before proposal, got %v", err)
	}

	if err := e.ProposeAdmin(admin, RolePauser, candidate); err != nil {
		t.Fatalf("propose: %v", err)
	}
	// Proposal alone transfers nothing.
	if err := e.SetPaused(candidate, true); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("candidate got role before accepting: %v", err)
	}
	if err := e.AcceptAdmin(holder2, RolePauser); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for wrong acceptor, got %v", err)
	}

	if err := e.AcceptAdmin(candidate, RolePauser); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if err := e.SetPaused(candidate, true); err != nil {
		t.Fatalf("new pauser rejected: %v", err)
	}
	if err := e.SetPaused(admin, false); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("old pauser kept role: %v", err)
	}

	// Fee manager handoff is independent.
	if err := e.ProposeAdmin(admin, RoleFeeManager, holder2); err != nil {
		t.Fatalf("propose fee manager: %v", err)
	}
	if err := e.AcceptAdmin(holder2, RoleFeeManager); err != nil {
		t.Fatalf("accept fee manager: %v", err)
	}
	if err := e.SetFeeRate(holder2, curve.Stable, 10); err != nil {
		t.Fatalf("new fee manager rejected: %v", err)
	}
}
