package engine

import "errors"

var (
	// ErrZeroAmount rejects any operation given a zero quantity where a
	// positive quantity is required.
	ErrZeroAmount = errors.New("amount must be positive")
	// ErrInsufficientShares means a holder balance is smaller than the
	// shares an operation needs to move or burn.
	ErrInsufficientShares = errors.New("insufficient share balance")
	// ErrInsufficientSharesMinted means rounding drove a mint to zero shares.
	ErrInsufficientSharesMinted = errors.New("minted shares round to zero")
	// ErrInsufficientRedemption means rounding drove a redeemed amount to zero.
	ErrInsufficientRedemption = errors.New("redeemed amount rounds to zero")
	// ErrInvariantViolated means a swap would decrease the pool invariant.
	// This is fatal and indicates a pricing or rounding bug; it is never
	// retried.
	ErrInvariantViolated = errors.New("pool invariant decreased")
	// ErrUnauthorized means the caller does not hold the role a gated
	// operation requires.
	ErrUnauthorized = errors.New("caller does not hold the required role")
	// ErrPaused means the registry pause flag is set.
	ErrPaused = errors.New("swaps are paused")
	// ErrUnsupportedAsset means the presented asset does not belong to the pool.
	ErrUnsupportedAsset = errors.New("asset does not belong to the pool")

	ErrPoolExists      = errors.New("pool already exists")
	ErrPoolNotFound    = errors.New("pool not found")
	ErrIdenticalAssets = errors.New("pool assets must differ")
	ErrEmptyPool       = errors.New("pool has no reserves")
	ErrInvalidFeeRate  = errors.New("fee rate out of range")
)
