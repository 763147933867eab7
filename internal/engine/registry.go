package engine

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"liquidityCore/internal/curve"
	"liquidityCore/internal/model"
)

// CreatePool registers a pool for the asset pair and curve type and returns
// its deterministic identity. The pair is canonically ordered, so argument
// order does not matter. Fails if a pool with the same key already exists.
func (e *Engine) CreatePool(tokenA, tokenB common.Address, curveType curve.Type) (common.Hash, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if tokenA == tokenB {
		return common.Hash{}, ErrIdenticalAssets
	}

	id := PoolKey(tokenA, tokenB, curveType)
	if _, exists := e.pools[id]; exists {
		return common.Hash{}, ErrPoolExists
	}

	feeBps := e.volatileFeeBps
	if curveType == curve.Stable {
		feeBps = e.stableFeeBps
	}

	token0, token1 := SortTokens(tokenA, tokenB)
	p := newPool(id, token0, token1, curveType, feeBps)
	e.pools[id] = p
	e.poolIDs = append(e.poolIDs, id)

	e.logger.Info("pool created",
		zap.String("pool_id", id.Hex()),
		zap.String("token0", token0.Hex()),
		zap.String("token1", token1.Hex()),
		zap.String("curve", curveType.String()),
		zap.Uint32("fee_bps", feeBps),
	)

	e.emit(model.EventPoolCreated, id, model.PoolCreatedData{
		Token0: token0.Hex(),
		Token1: token1.Hex(),
		Stable: curveType == curve.Stable,
		FeeBps: feeBps,
	})

	return id, nil
}

// Pools returns every pool identity in creation order.
func (e *Engine) Pools() []common.Hash {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]common.Hash, len(e.poolIDs))
	copy(out, e.poolIDs)
	return out
}

// PoolReserves returns the current reserve balances in canonical token order.
func (e *Engine) PoolReserves(poolID common.Hash) (*big.Int, *big.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	p, err := e.pool(poolID)
	if err != nil {
		return nil, nil, err
	}
	return new(big.Int).Set(p.reserve0), new(big.Int).Set(p.reserve1), nil
}

// Snapshot returns the storable view of one pool.
func (e *Engine) Snapshot(poolID common.Hash) (model.PoolSnapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	p, err := e.pool(poolID)
	if err != nil {
		return model.PoolSnapshot{}, err
	}
	return snapshotOf(p), nil
}

// Snapshots returns the storable views of all pools in creation order.
func (e *Engine) Snapshots() []model.PoolSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]model.PoolSnapshot, 0, len(e.poolIDs))
	for _, id := range e.poolIDs {
		out = append(out, snapshotOf(e.pools[id]))
	}
	return out
}

func snapshotOf(p *Pool) model.PoolSnapshot {
	return model.PoolSnapshot{
		PoolID:      p.id.Hex(),
		Token0:      p.token0.Hex(),
		Token1:      p.token1.Hex(),
		Stable:      p.curveType == curve.Stable,
		FeeBps:      p.feeBps,
		Reserve0:    p.reserve0.String(),
		Reserve1:    p.reserve1.String(),
		Fees0:       p.fees0.String(),
		Fees1:       p.fees1.String(),
		TotalFees0:  p.totalFees0.String(),
		TotalFees1:  p.totalFees1.String(),
		TotalSupply: p.totalSupply.String(),
	}
}

// SetPaused sets the global pause flag. Pauser only.
func (e *Engine) SetPaused(caller common.Address, paused bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if caller != e.pauser {
		return fmt.Errorf("%w: set pause", ErrUnauthorized)
	}
	e.paused = paused
	e.logger.Info("pause flag changed", zap.Bool("paused", paused))
	return nil
}

// Paused reports the global pause flag.
func (e *Engine) Paused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.paused
}

// SetFeeRate changes the default swap fee for new pools of the given curve
// type. Fee manager only. Existing pools keep the rate captured at creation.
func (e *Engine) SetFeeRate(caller common.Address, curveType curve.Type, bps uint32) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if caller != e.feeManager {
		return fmt.Errorf("%w: set fee rate", ErrUnauthorized)
	}
	if bps == 0 || bps > MaxFeeBps {
		return fmt.Errorf("%w: %d bps", ErrInvalidFeeRate, bps)
	}
	if curveType == curve.Stable {
		e.stableFeeBps = bps
	} else {
		e.volatileFeeBps = bps
	}
	e.logger.Info("fee rate changed", zap.String("curve", curveType.String()), zap.Uint32("bps", bps))
	return nil
}

// ProposeAdmin starts the two-phase handoff of a role. Only the current
// holder may propose; the handoff completes when the candidate accepts.
func (e *Engine) ProposeAdmin(caller common.Address, role Role, candidate common.Address) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch role {
	case RoleFeeManager:
		if caller != e.feeManager {
			return fmt.Errorf("%w: propose %s", ErrUnauthorized, role)
		}
		c := candidate
		e.pendingManager = &c
	case RolePauser:
		if caller != e.pauser {
			return fmt.Errorf("%w: propose %s", ErrUnauthorized, role)
		}
		c := candidate
		e.pendingPauser = &c
	default:
		return fmt.Errorf("unknown role %q", role)
	}

	e.logger.Info("admin proposed", zap.String("role", string(role)), zap.String("candidate", candidate.Hex()))
	return nil
}

// AcceptAdmin completes a pending role handoff. Only the proposed candidate
// may accept.
func (e *Engine) AcceptAdmin(caller common.Address, role Role) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch role {
	case RoleFeeManager:
		if e.pendingManager == nil || caller != *e.pendingManager {
			return fmt.Errorf("%w: accept %s", ErrUnauthorized, role)
		}
		e.feeManager = caller
		e.pendingManager = nil
	case RolePauser:
		if e.pendingPauser == nil || caller != *e.pendingPauser {
			return fmt.Errorf("%w: accept %s", ErrUnauthorized, role)
		}
		e.pauser = caller
		e.pendingPauser = nil
	default:
		return fmt.Errorf("unknown role %q", role)
	}

	e.logger.Info("admin accepted", zap.String("role", string(role)), zap.String("holder", caller.Hex()))
	return nil
}
