package report

import (
	"encoding/json"
	"fmt"
	"math/big"

	"liquidityCore/internal/model"
)

// Accumulator holds lifetime totals for one pool.
type Accumulator struct {
	PoolID    string
	Token0    string
	Token1    string
	SwapCount uint64
	MintCount uint64
	BurnCount uint64
	Volume0   *big.Int
	Volume1   *big.Int
	Fees0     *big.Int
	Fees1     *big.Int
}

func NewAccumulator(poolID string) *Accumulator {
	return &Accumulator{
		PoolID:  poolID,
		Volume0: big.NewInt(0),
		Volume1: big.NewInt(0),
		Fees0:   big.NewInt(0),
		Fees1:   big.NewInt(0),
	}
}

// AddEvent folds one engine event into the totals.
func (a *Accumulator) AddEvent(record model.EventRecord) error {
	switch record.Type {
	case model.EventPoolCreated:
		var created model.PoolCreatedData
		if err := json.Unmarshal(record.Data, &created); err != nil {
			return fmt.Errorf("decode pool_created: %w", err)
		}
		a.Token0 = created.Token0
		a.Token1 = created.Token1
		return nil
	case model.EventSwapExecuted:
		var swap model.SwapExecutedData
		if err := json.Unmarshal(record.Data, &swap); err != nil {
			return fmt.Errorf("decode swap_executed: %w", err)
		}
		return a.applySwap(swap)
	case model.EventMintExecuted:
		a.MintCount++
		return nil
	case model.EventBurnExecuted:
		a.BurnCount++
		return nil
	default:
		return nil
	}
}

func (a *Accumulator) applySwap(swap model.SwapExecutedData) error {
	amountIn, err := model.ParseAmount(swap.AmountIn)
	if err != nil {
		return err
	}
	fee, err := model.ParseAmount(swap.Fee)
	if err != nil {
		return err
	}

	switch swap.TokenIn {
	case a.Token0:
		a.Volume0.Add(a.Volume0, amountIn)
		a.Fees0.Add(a.Fees0, fee)
	case a.Token1:
		a.Volume1.Add(a.Volume1, amountIn)
		a.Fees1.Add(a.Fees1, fee)
	default:
		return fmt.Errorf("swap input %s not in pool %s", swap.TokenIn, a.PoolID)
	}

	a.SwapCount++
	return nil
}

// Totals returns the storable view of the accumulator.
func (a *Accumulator) Totals() model.PoolTotals {
	return model.PoolTotals{
		PoolID:    a.PoolID,
		SwapCount: a.SwapCount,
		MintCount: a.MintCount,
		BurnCount: a.BurnCount,
		Volume0:   a.Volume0.String(),
		Volume1:   a.Volume1.String(),
		Fees0:     a.Fees0.String(),
		Fees1:     a.Fees1.String(),
	}
}
