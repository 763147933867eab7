package engine

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"liquidityCore/internal/model"
)

// Mint deposits amount0/amount1 (in canonical token order) into the pool and
// mints proportional shares to the holder. The first deposit prices shares
// at sqrt(amount0*amount1) and permanently locks MinLockedShares; later
// deposits receive the smaller of the two proportional share counts, so
// ratio-mismatched deposits donate the excess to the pool.
func (e *Engine) Mint(poolID common.Hash, holder common.Address, amount0, amount1 *big.Int) (*big.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, err := e.pool(poolID)
	if err != nil {
		return nil, err
	}
	if amount0 == nil || amount0.Sign() <= 0 || amount1 == nil || amount1.Sign() <= 0 {
		return nil, ErrZeroAmount
	}

	var shares *big.Int
	if p.totalSupply.Sign() == 0 {
		shares = new(big.Int).Mul(amount0, amount1)
		shares.Sqrt(shares)
		shares.Sub(shares, big.NewInt(MinLockedShares))
		if shares.Sign() <= 0 {
			return nil, fmt.Errorf("%w: initial deposit below minimum liquidity", ErrInsufficientSharesMinted)
		}
		p.creditShares(lockAddress, big.NewInt(MinLockedShares))
	} else {
		byAmount0 := new(big.Int).Mul(amount0, p.totalSupply)
		byAmount0.Quo(byAmount0, p.reserve0)
		byAmount1 := new(big.Int).Mul(amount1, p.totalSupply)
		byAmount1.Quo(byAmount1, p.reserve1)
		shares = byAmount0
		if byAmount1.Cmp(byAmount0) < 0 {
			shares = byAmount1
		}
		if shares.Sign() <= 0 {
			return nil, ErrInsufficientSharesMinted
		}
	}

	p.creditShares(holder, shares)
	p.reserve0.Add(p.reserve0, amount0)
	p.reserve1.Add(p.reserve1, amount1)

	e.logger.Debug("liquidity minted",
		zap.String("pool_id", poolID.Hex()),
		zap.String("holder", holder.Hex()),
		zap.String("shares", shares.String()),
	)

	e.emit(model.EventMintExecuted, poolID, model.MintExecutedData{
		Holder:  holder.Hex(),
		Amount0: amount0.String(),
		Amount1: amount1.String(),
		Shares:  shares.String(),
	})

	return new(big.Int).Set(shares), nil
}

// Burn redeems shares for a proportional slice of both reserves. Either
// redeemed amount rounding to zero aborts the burn.
func (e *Engine) Burn(poolID common.Hash, holder common.Address, shares *big.Int) (*big.Int, *big.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, err := e.pool(poolID)
	if err != nil {
		return nil, nil, err
	}
	if shares == nil || shares.Sign() <= 0 {
		return nil, nil, ErrZeroAmount
	}
	if p.balanceOf(holder).Cmp(shares) < 0 {
		return nil, nil, ErrInsufficientShares
	}

	amount0 := new(big.Int).Mul(shares, p.reserve0)
	amount0.Quo(amount0, p.totalSupply)
	amount1 := new(big.Int).Mul(shares, p.reserve1)
	amount1.Quo(amount1, p.totalSupply)
	if amount0.Sign() == 0 || amount1.Sign() == 0 {
		return nil, nil, ErrInsufficientRedemption
	}

	p.debitShares(holder, shares)
	p.reserve0.Sub(p.reserve0, amount0)
	p.reserve1.Sub(p.reserve1, amount1)

	e.logger.Debug("liquidity burned",
		zap.String("pool_id", poolID.Hex()),
		zap.String("holder", holder.Hex()),
		zap.String("shares", shares.String()),
	)

	e.emit(model.EventBurnExecuted, poolID, model.BurnExecutedData{
		Holder:  holder.Hex(),
		Shares:  shares.String(),
		Amount0: amount0.String(),
		Amount1: amount1.String(),
	})

	return amount0, amount1, nil
}

// SharesOf returns the holder's current share balance.
func (e *Engine) SharesOf(poolID common.Hash, holder common.Address) (*big.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	p, err := e.pool(poolID)
	if err != nil {
		return nil, err
	}
	return new(big.Int).Set(p.balanceOf(holder)), nil
}

// TotalShares returns the pool's share supply.
func (e *Engine) TotalShares(poolID common.Hash) (*big.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	p, err := e.pool(poolID)
	if err != nil {
		return nil, err
	}
	return new(big.Int).Set(p.totalSupply), nil
}

// creditShares syncs the holder's fee accounting and then adds shares to
// their balance and the supply. Sync must come first so the new shares do
// not accrue fees deposited before this moment.
func (p *Pool) creditShares(holder common.Address, shares *big.Int) {
	p.syncHolder(holder)
	bal, ok := p.balances[holder]
	if !ok {
		bal = big.NewInt(0)
		p.balances[holder] = bal
	}
	bal.Add(bal, shares)
	p.totalSupply.Add(p.totalSupply, shares)
}

// debitShares syncs the holder's fee accounting and then removes shares.
// The caller has already checked the balance.
func (p *Pool) debitShares(holder common.Address, shares *big.Int) {
	p.syncHolder(holder)
	p.balances[holder].Sub(p.balances[holder], shares)
	p.totalSupply.Sub(p.totalSupply, shares)
}
