package model

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Operation names accepted by the replay runner.
const (
	OpCreatePool   = "create_pool"
	OpMint         = "mint"
	OpBurn         = "burn"
	OpSwap         = "swap"
	OpTransfer     = "transfer"
	OpClaim        = "claim"
	OpSetPause     = "set_pause"
	OpSetFeeRate   = "set_fee_rate"
	OpProposeAdmin = "propose_admin"
	OpAcceptAdmin  = "accept_admin"
)

// OpRecord is one journaled operation against the engine. Fields beyond
// seq/op apply per operation and are omitted otherwise. Amounts are decimal
// strings so arbitrarily large values survive JSON.
type OpRecord struct {
	Seq    uint64 `json:"seq"`
	Op     string `json:"op"`
	Caller string `json:"caller,omitempty"`

	TokenA string `json:"token_a,omitempty"`
	TokenB string `json:"token_b,omitempty"`
	Stable bool   `json:"stable,omitempty"`

	PoolID   string `json:"pool_id,omitempty"`
	TokenIn  string `json:"token_in,omitempty"`
	AmountIn string `json:"amount_in,omitempty"`
	AmountA  string `json:"amount_a,omitempty"`
	AmountB  string `json:"amount_b,omitempty"`
	Shares   string `json:"shares,omitempty"`
	From     string `json:"from,omitempty"`
	To       string `json:"to,omitempty"`

	Paused bool   `json:"paused,omitempty"`
	Role   string `json:"role,omitempty"`
	FeeBps uint32 `json:"fee_bps,omitempty"`
}

// ParseAmount parses a positive-or-zero decimal amount string.
func ParseAmount(value string) (*big.Int, error) {
	if value == "" {
		return big.NewInt(0), nil
	}
	parsed, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount: %s", value)
	}
	if parsed.Sign() < 0 {
		return nil, fmt.Errorf("negative amount: %s", value)
	}
	return parsed, nil
}

// ParseAddress parses a hex asset or holder identity.
func ParseAddress(value string) (common.Address, error) {
	if !common.IsHexAddress(value) {
		return common.Address{}, fmt.Errorf("invalid address: %s", value)
	}
	return common.HexToAddress(value), nil
}

// ParsePoolID parses a 0x-prefixed 32-byte hex pool identity.
func ParsePoolID(value string) (common.Hash, error) {
	b, err := hexutil.Decode(value)
	if err != nil || len(b) != common.HashLength {
		return common.Hash{}, fmt.Errorf("invalid pool id: %s", value)
	}
	return common.BytesToHash(b), nil
}
