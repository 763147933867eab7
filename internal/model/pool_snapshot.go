package model

// PoolSnapshot is the storable view of one pool's state.
type PoolSnapshot struct {
	PoolID      string `json:"pool_id"`
	Token0      string `json:"token0"`
	Token1      string `json:"token1"`
	Stable      bool   `json:"stable"`
	FeeBps      uint32 `json:"fee_bps"`
	Reserve0    string `json:"reserve0"`
	Reserve1    string `json:"reserve1"`
	Fees0       string `json:"fees0"`
	Fees1       string `json:"fees1"`
	TotalFees0  string `json:"total_fees0"`
	TotalFees1  string `json:"total_fees1"`
	TotalSupply string `json:"total_supply"`
}

// PoolTotals is the lifetime per-pool activity summary the report command
// derives from an event journal.
type PoolTotals struct {
	PoolID    string `json:"pool_id"`
	SwapCount uint64 `json:"swap_count"`
	MintCount uint64 `json:"mint_count"`
	BurnCount uint64 `json:"burn_count"`
	Volume0   string `json:"volume0"`
	Volume1   string `json:"volume1"`
	Fees0     string `json:"fees0"`
	Fees1     string `json:"fees1"`
}
