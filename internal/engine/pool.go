package engine

import (
	"bytes"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"liquidityCore/internal/curve"
)

// MinLockedShares is minted to the lock address on the first deposit into a
// pool and can never be redeemed. It prevents the share supply from being
// rounded down to nothing on tiny pools.
const MinLockedShares = 1000

// lockAddress permanently holds the minimum locked shares.
var lockAddress = common.Address{}

// Pool holds the per-pair state: two reserves, two fee stores, the share
// supply, and per-holder positions. Fee balances are held apart from the
// reserves and never priced into the curve. All fields are private; the
// Engine methods are the only mutation paths.
type Pool struct {
	id        common.Hash
	token0    common.Address
	token1    common.Address
	curveType curve.Type
	feeBps    uint32

	reserve0 *big.Int
	reserve1 *big.Int

	// fees0/fees1 are the withdrawable fee stores; totalFees0/totalFees1
	// are lifetime cumulative deposits and only ever grow.
	fees0      *big.Int
	fees1      *big.Int
	totalFees0 *big.Int
	totalFees1 *big.Int

	totalSupply *big.Int
	balances    map[common.Address]*big.Int
	positions   map[common.Address]*position
}

// position is a holder's fee-accounting state within one pool.
type position struct {
	lastSeenFees0 *big.Int
	lastSeenFees1 *big.Int
	claimable0    *big.Int
	claimable1    *big.Int
}

// PoolKey derives the deterministic pool identity for an asset pair and
// curve type. The pair is canonically ordered first, so the key does not
// depend on argument order.
func PoolKey(tokenA, tokenB common.Address, curveType curve.Type) common.Hash {
	lo, hi := SortTokens(tokenA, tokenB)
	buf := make([]byte, 0, 2*common.AddressLength+1)
	buf = append(buf, lo.Bytes()...)
	buf = append(buf, hi.Bytes()...)
	buf = append(buf, byte(curveType))
	return crypto.Keccak256Hash(buf)
}

// SortTokens returns the pair in canonical (byte-wise ascending) order.
func SortTokens(tokenA, tokenB common.Address) (common.Address, common.Address) {
	if bytes.Compare(tokenB.Bytes(), tokenA.Bytes()) < 0 {
		return tokenB, tokenA
	}
	return tokenA, tokenB
}

func newPool(id common.Hash, token0, token1 common.Address, curveType curve.Type, feeBps uint32) *Pool {
	return &Pool{
		id:          id,
		token0:      token0,
		token1:      token1,
		curveType:   curveType,
		feeBps:      feeBps,
		reserve0:    big.NewInt(0),
		reserve1:    big.NewInt(0),
		fees0:       big.NewInt(0),
		fees1:       big.NewInt(0),
		totalFees0:  big.NewInt(0),
		totalFees1:  big.NewInt(0),
		totalSupply: big.NewInt(0),
		balances:    make(map[common.Address]*big.Int),
		positions:   make(map[common.Address]*position),
	}
}

// positionFor returns the holder's position, creating it lazily. A fresh
// position snapshots the current fee totals: the holder held no shares
// before this moment, so nothing already accrued belongs to them.
func (p *Pool) positionFor(holder common.Address) *position {
	pos, ok := p.positions[holder]
	if !ok {
		pos = &position{
			lastSeenFees0: new(big.Int).Set(p.totalFees0),
			lastSeenFees1: new(big.Int).Set(p.totalFees1),
			claimable0:    big.NewInt(0),
			claimable1:    big.NewInt(0),
		}
		p.positions[holder] = pos
	}
	return pos
}

func (p *Pool) balanceOf(holder common.Address) *big.Int {
	if bal, ok := p.balances[holder]; ok {
		return bal
	}
	return big.NewInt(0)
}

// orient maps an input asset onto (reserveIn, reserveOut, feeIn,
// totalFeesIn) views of the pool. The returned pointers alias pool state.
func (p *Pool) orient(tokenIn common.Address) (reserveIn, reserveOut, feeStore, feeTotal *big.Int, ok bool) {
	switch tokenIn {
	case p.token0:
		return p.reserve0, p.reserve1, p.fees0, p.totalFees0, true
	case p.token1:
		return p.reserve1, p.reserve0, p.fees1, p.totalFees1, true
	default:
		return nil, nil, nil, nil, false
	}
}
