package model

import "encoding/json"

// Event types emitted by the settlement engine.
const (
	EventPoolCreated       = "pool_created"
	EventSwapExecuted      = "swap_executed"
	EventMintExecuted      = "mint_executed"
	EventBurnExecuted      = "burn_executed"
	EventFeesClaimed       = "fees_claimed"
	EventSharesTransferred = "shares_transferred"
)

// EventRecord is the JSON representation of one engine event for the journal.
type EventRecord struct {
	Seq       uint64          `json:"seq"`
	Type      string          `json:"type"`
	PoolID    string          `json:"pool_id"`
	Data      json.RawMessage `json:"data"`
	EmittedAt string          `json:"emitted_at"`
}

// PoolCreatedData is the pool_created event payload.
type PoolCreatedData struct {
	Token0 string `json:"token0"`
	Token1 string `json:"token1"`
	Stable bool   `json:"stable"`
	FeeBps uint32 `json:"fee_bps"`
}

// SwapExecutedData is the swap_executed event payload.
type SwapExecutedData struct {
	TokenIn   string `json:"token_in"`
	AmountIn  string `json:"amount_in"`
	AmountOut string `json:"amount_out"`
	Fee       string `json:"fee"`
}

// MintExecutedData is the mint_executed event payload.
type MintExecutedData struct {
	Holder  string `json:"holder"`
	Amount0 string `json:"amount0"`
	Amount1 string `json:"amount1"`
	Shares  string `json:"shares"`
}

// BurnExecutedData is the burn_executed event payload.
type BurnExecutedData struct {
	Holder  string `json:"holder"`
	Shares  string `json:"shares"`
	Amount0 string `json:"amount0"`
	Amount1 string `json:"amount1"`
}

// FeesClaimedData is the fees_claimed event payload.
type FeesClaimedData struct {
	Holder  string `json:"holder"`
	Amount0 string `json:"amount0"`
	Amount1 string `json:"amount1"`
}

// SharesTransferredData is the shares_transferred event payload.
type SharesTransferredData struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Shares string `json:"shares"`
}
