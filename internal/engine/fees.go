package engine

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"liquidityCore/internal/model"
)

// syncHolder reconciles a holder's fee entitlement with the pool's lifetime
// fee totals. It must run before any change to the holder's share balance
// and before any entitlement read; the last-seen snapshots advance
// unconditionally so a holder who re-acquires shares later cannot collect
// fees from the gap.
func (p *Pool) syncHolder(holder common.Address) {
	pos := p.positionFor(holder)
	bal := p.balanceOf(holder)

	if bal.Sign() > 0 && p.totalSupply.Sign() > 0 {
		pos.claimable0.Add(pos.claimable0, accrued(p.totalFees0, pos.lastSeenFees0, bal, p.totalSupply))
		pos.claimable1.Add(pos.claimable1, accrued(p.totalFees1, pos.lastSeenFees1, bal, p.totalSupply))
	}

	pos.lastSeenFees0.Set(p.totalFees0)
	pos.lastSeenFees1.Set(p.totalFees1)
}

// accrued computes floor((total - lastSeen) * shares / supply).
func accrued(total, lastSeen, shares, supply *big.Int) *big.Int {
	delta := new(big.Int).Sub(total, lastSeen)
	if delta.Sign() <= 0 {
		return big.NewInt(0)
	}
	delta.Mul(delta, shares)
	return delta.Quo(delta, supply)
}

// ClaimFees syncs the holder and pays out their accrued fee entitlement
// from the pool's fee stores. The reserves are never touched.
func (e *Engine) ClaimFees(poolID common.Hash, holder common.Address) (*big.Int, *big.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, err := e.pool(poolID)
	if err != nil {
		return nil, nil, err
	}

	p.syncHolder(holder)
	pos := p.positionFor(holder)

	amount0 := new(big.Int).Set(pos.claimable0)
	amount1 := new(big.Int).Set(pos.claimable1)
	pos.claimable0.SetInt64(0)
	pos.claimable1.SetInt64(0)
	p.fees0.Sub(p.fees0, amount0)
	p.fees1.Sub(p.fees1, amount1)

	if amount0.Sign() > 0 || amount1.Sign() > 0 {
		e.logger.Debug("fees claimed",
			zap.String("pool_id", poolID.Hex()),
			zap.String("holder", holder.Hex()),
			zap.String("amount0", amount0.String()),
			zap.String("amount1", amount1.String()),
		)
		e.emit(model.EventFeesClaimed, poolID, model.FeesClaimedData{
			Holder:  holder.Hex(),
			Amount0: amount0.String(),
			Amount1: amount1.String(),
		})
	}

	return amount0, amount1, nil
}

// ClaimableFees reports what a claim would pay out right now, without
// mutating any accounting state.
func (e *Engine) ClaimableFees(poolID common.Hash, holder common.Address) (*big.Int, *big.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, err := e.pool(poolID)
	if err != nil {
		return nil, nil, err
	}

	amount0 := big.NewInt(0)
	amount1 := big.NewInt(0)
	if pos, ok := p.positions[holder]; ok {
		amount0.Set(pos.claimable0)
		amount1.Set(pos.claimable1)
	}

	bal := p.balanceOf(holder)
	if bal.Sign() > 0 && p.totalSupply.Sign() > 0 {
		pos := p.positionFor(holder)
		amount0.Add(amount0, accrued(p.totalFees0, pos.lastSeenFees0, bal, p.totalSupply))
		amount1.Add(amount1, accrued(p.totalFees1, pos.lastSeenFees1, bal, p.totalSupply))
	}

	return amount0, amount1, nil
}

// PoolFees returns the current withdrawable fee store balances in canonical
// token order.
func (e *Engine) PoolFees(poolID common.Hash) (*big.Int, *big.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	p, err := e.pool(poolID)
	if err != nil {
		return nil, nil, err
	}
	return new(big.Int).Set(p.fees0), new(big.Int).Set(p.fees1), nil
}
