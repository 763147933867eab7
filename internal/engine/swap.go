package engine

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"liquidityCore/internal/curve"
	"liquidityCore/internal/model"
)

// Quote prices a trade of amountIn units of tokenIn against the pool
// without touching state. It returns the output amount and the fee that
// would be extracted from the input.
func (e *Engine) Quote(poolID common.Hash, tokenIn common.Address, amountIn *big.Int) (*big.Int, *big.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	p, err := e.pool(poolID)
	if err != nil {
		return nil, nil, err
	}
	return e.quote(p, tokenIn, amountIn)
}

// quote computes (amountOut, fee) with the engine lock held. The fee comes
// off the input first; only the net input is priced against the curve.
func (e *Engine) quote(p *Pool, tokenIn common.Address, amountIn *big.Int) (*big.Int, *big.Int, error) {
	if amountIn == nil || amountIn.Sign() <= 0 {
		return nil, nil, ErrZeroAmount
	}

	reserveIn, reserveOut, _, _, ok := p.orient(tokenIn)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrUnsupportedAsset, tokenIn.Hex())
	}
	if reserveIn.Sign() == 0 || reserveOut.Sign() == 0 {
		return nil, nil, ErrEmptyPool
	}

	fee := new(big.Int).Mul(amountIn, big.NewInt(int64(p.feeBps)))
	fee.Quo(fee, big.NewInt(feeDenominator))
	net := new(big.Int).Sub(amountIn, fee)

	out, err := curve.AmountOut(reserveIn, reserveOut, net, p.curveType)
	if err != nil {
		return nil, nil, err
	}
	return out, fee, nil
}

// Swap executes a trade: the net input joins the input reserve, the fee
// joins that asset's fee store, and the output leaves the opposite reserve.
// The post-trade invariant must not fall below the pre-trade value;
// violation aborts the whole operation.
func (e *Engine) Swap(poolID common.Hash, tokenIn common.Address, amountIn *big.Int) (*big.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.paused {
		return nil, ErrPaused
	}

	p, err := e.pool(poolID)
	if err != nil {
		return nil, err
	}

	out, fee, err := e.quote(p, tokenIn, amountIn)
	if err != nil {
		return nil, err
	}

	net := new(big.Int).Sub(amountIn, fee)
	reserveIn, reserveOut, feeStore, feeTotal, _ := p.orient(tokenIn)

	kBefore := curve.K(reserveIn, reserveOut, p.curveType)
	newIn := new(big.Int).Add(reserveIn, net)
	newOut := new(big.Int).Sub(reserveOut, out)
	kAfter := curve.K(newIn, newOut, p.curveType)
	if kAfter.Cmp(kBefore) < 0 {
		return nil, fmt.Errorf("%w: k %s -> %s", ErrInvariantViolated, kBefore, kAfter)
	}

	reserveIn.Set(newIn)
	reserveOut.Set(newOut)
	feeStore.Add(feeStore, fee)
	feeTotal.Add(feeTotal, fee)

	e.logger.Debug("swap executed",
		zap.String("pool_id", poolID.Hex()),
		zap.String("token_in", tokenIn.Hex()),
		zap.String("amount_in", amountIn.String()),
		zap.String("amount_out", out.String()),
		zap.String("fee", fee.String()),
	)

	e.emit(model.EventSwapExecuted, poolID, model.SwapExecutedData{
		TokenIn:   tokenIn.Hex(),
		AmountIn:  amountIn.String(),
		AmountOut: out.String(),
		Fee:       fee.String(),
	})

	return out, nil
}
