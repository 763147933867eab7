package engine

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"liquidityCore/internal/model"
)

// TransferShares moves pool shares between holders. This is the only path
// that changes holder balances outside mint/burn; both parties are synced
// first so fees accrued up to this moment stay with the sender and the
// receiver starts accruing only from here on.
func (e *Engine) TransferShares(poolID common.Hash, from, to common.Address, shares *big.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, err := e.pool(poolID)
	if err != nil {
		return err
	}
	if shares == nil || shares.Sign() <= 0 {
		return ErrZeroAmount
	}
	if p.balanceOf(from).Cmp(shares) < 0 {
		return ErrInsufficientShares
	}

	p.syncHolder(from)
	p.syncHolder(to)

	p.balances[from].Sub(p.balances[from], shares)
	bal, ok := p.balances[to]
	if !ok {
		bal = big.NewInt(0)
		p.balances[to] = bal
	}
	bal.Add(bal, shares)

	e.logger.Debug("shares transferred",
		zap.String("pool_id", poolID.Hex()),
		zap.String("from", from.Hex()),
		zap.String("to", to.Hex()),
		zap.String("shares", shares.String()),
	)

	e.emit(model.EventSharesTransferred, poolID, model.SharesTransferredData{
		From:   from.Hex(),
		To:     to.Hex(),
		Shares: shares.String(),
	})

	return nil
}
