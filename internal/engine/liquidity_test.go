package engine

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"liquidityCore/internal/curve"
)

func mustCreatePool(t *testing.T, e *Engine, curveType curve.Type) common.Hash {
	t.Helper()
	id, err := e.CreatePool(tokenA, tokenB, curveType)
	if err != nil {
		t.Fatalf("create pool: %v", err)
	}
	return id
}

func mustMint(t *testing.T, e *Engine, id common.Hash, holder common.Address, amount0, amount1 int64) *big.Int {
	t.Helper()
	shares, err := e.Mint(id, holder, big.NewInt(amount0), big.NewInt(amount1))
	if err != nil {
		t.Fatalf("mint %d/%d: %v", amount0, amount1, err)
	}
	return shares
}

func TestMintSequence(t *testing.T) {
	e := newTestEngine(t)
	id := mustCreatePool(t, e, curve.Volatile)

	shares := mustMint(t, e, id, holder1, 100000, 200000)

	// floor(sqrt(100000*200000)) - 1000 locked
	want := big.NewInt(141421 - MinLockedShares)
	if shares.Cmp(want) != 0 {
		t.Fatalf("initial shares mismatch: got %s want %s", shares, want)
	}

	r0, r1, err := e.PoolReserves(id)
	if err != nil {
		t.Fatalf("reserves: %v", err)
	}
	if r0.Int64() != 100000 || r1.Int64() != 200000 {
		t.Fatalf("reserves after first mint: (%s, %s)", r0, r1)
	}

	supply, err := e.TotalShares(id)
	if err != nil {
		t.Fatalf("total shares: %v", err)
	}
	if supply.Int64() != 141421 {
		t.Fatalf("supply after first mint: %s", supply)
	}

	// Ratio-mismatched second deposit takes the smaller proportional count
	// and keeps both full amounts.
	shares2 := mustMint(t, e, id, holder2, 100000, 100000)
	want2 := big.NewInt(141421 / 2)
	if shares2.Cmp(want2) != 0 {
		t.Fatalf("second shares mismatch: got %s want %s", shares2, want2)
	}

	r0, r1, err = e.PoolReserves(id)
	if err != nil {
		t.Fatalf("reserves: %v", err)
	}
	if r0.Int64() != 200000 || r1.Int64() != 300000 {
		t.Fatalf("reserves after second mint: (%s, %s)", r0, r1)
	}
}

func TestMintRejectsZeroAmounts(t *testing.T) {
	e := newTestEngine(t)
	id := mustCreatePool(t, e, curve.Volatile)

	if _, err := e.Mint(id, holder1, big.NewInt(0), big.NewInt(100)); !errors.Is(err, ErrZeroAmount) {
		t.Fatalf("expected ErrZeroAmount, got %v", err)
	}
	if _, err := e.Mint(id, holder1, big.NewInt(100), big.NewInt(0)); !errors.Is(err, ErrZeroAmount) {
		t.Fatalf("expected ErrZeroAmount, got %v", err)
	}
}

func TestMintRejectsTinyInitialDeposit(t *testing.T) {
	e := newTestEngine(t)
	id := mustCreatePool(t, e, curve.Volatile)

	// sqrt(100*100) = 100 <= MinLockedShares
	if _, err := e.Mint(id, holder1, big.NewInt(100), big.NewInt(100)); !errors.Is(err, ErrInsufficientSharesMinted) {
		t.Fatalf("expected ErrInsufficientSharesMinted, got %v", err)
	}

	// Nothing may have been committed by the failed mint.
	supply, err := e.TotalShares(id)
	if err != nil {
		t.Fatalf("total shares: %v", err)
	}
	if supply.Sign() != 0 {
		t.Fatalf("failed mint left supply %s", supply)
	}
}

func TestBurnProportional(t *testing.T) {
	e := newTestEngine(t)
	id := mustCreatePool(t, e, curve.Volatile)
	shares := mustMint(t, e, id, holder1, 1_000_000, 1_000_000)

	half := new(big.Int).Quo(shares, big.NewInt(2))
	amount0, amount1, err := e.Burn(id, holder1, half)
	if err != nil {
		t.Fatalf("burn: %v", err)
	}

	// supply is 1_000_000 (999000 held + 1000 locked); half = 499500
	if amount0.Int64() != 499500 || amount1.Int64() != 499500 {
		t.Fatalf("burn amounts: (%s, %s)", amount0, amount1)
	}

	r0, r1, err := e.PoolReserves(id)
	if err != nil {
		t.Fatalf("reserves: %v", err)
	}
	if r0.Int64() != 500500 || r1.Int64() != 500500 {
		t.Fatalf("reserves after burn: (%s, %s)", r0, r1)
	}
}

func TestMintBurnRoundTripNeverProfits(t *testing.T) {
	e := newTestEngine(t)
	id := mustCreatePool(t, e, curve.Volatile)
	mustMint(t, e, id, holder1, 1_000_000, 2_000_000)

	deposit0, deposit1 := int64(33333), int64(66667)
	shares := mustMint(t, e, id, holder2, deposit0, deposit1)

	amount0, amount1, err := e.Burn(id, holder2, shares)
	if err != nil {
		t.Fatalf("burn: %v", err)
	}
	if amount0.Int64() > deposit0 || amount1.Int64() > deposit1 {
		t.Fatalf("round trip produced value: deposited (%d, %d), redeemed (%s, %s)",
			deposit0, deposit1, amount0, amount1)
	}
}

func TestBurnRejectsBadInputs(t *testing.T) {
	e := newTestEngine(t)
	id := mustCreatePool(t, e, curve.Volatile)
	shares := mustMint(t, e, id, holder1, 1_000_000, 1_000_000)

	if _, _, err := e.Burn(id, holder1, big.NewInt(0)); !errors.Is(err, ErrZeroAmount) {
		t.Fatalf("expected ErrZeroAmount, got %v", err)
	}

	tooMany := new(big.Int).Add(shares, big.NewInt(1))
	if _, _, err := e.Burn(id, holder1, tooMany); !errors.Is(err, ErrInsufficientShares) {
		t.Fatalf("expected ErrInsufficientShares, got %v", err)
	}

	if _, _, err := e.Burn(id, holder2, big.NewInt(10)); !errors.Is(err, ErrInsufficientShares) {
		t.Fatalf("expected ErrInsufficientShares for non-holder, got %v", err)
	}
}

func TestBurnRejectsZeroRedemption(t *testing.T) {
	e := newTestEngine(t)
	id := mustCreatePool(t, e, curve.Volatile)

	// Skew the reserves so one share is worth less than one unit of token0.
	mustMint(t, e, id, holder1, 2_000, 2_000_000_000)

	if _, _, err := e.Burn(id, holder1, big.NewInt(1)); !errors.Is(err, ErrInsufficientRedemption) {
		t.Fatalf("expected ErrInsufficientRedemption, got %v", err)
	}
}

func TestLockedSharesCannotBeRedeemed(t *testing.T) {
	e := newTestEngine(t)
	id := mustCreatePool(t, e, curve.Volatile)
	shares := mustMint(t, e, id, holder1, 1_000_000, 1_000_000)

	supply, err := e.TotalShares(id)
	if err != nil {
		t.Fatalf("total shares: %v", err)
	}
	locked := new(big.Int).Sub(supply, shares)
	if locked.Int64() != MinLockedShares {
		t.Fatalf("locked shares: %s", locked)
	}

	// The holder cannot burn past their own balance into the locked stake.
	if _, _, err := e.Burn(id, holder1, supply); !errors.Is(err, ErrInsufficientShares) {
		t.Fatalf("expected ErrInsufficientShares, got %v", err)
	}
}
