package engine

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"liquidityCore/internal/model"
)

// MaxFeeBps caps configurable swap fees at 10%.
const MaxFeeBps = 1000

// feeDenominator converts basis points to fractions.
const feeDenominator = 10000

// Role names the two admin roles the registry tracks.
type Role string

const (
	// RoleFeeManager may change default fee rates.
	RoleFeeManager Role = "fee_manager"
	// RolePauser may set and clear the global pause flag.
	RolePauser Role = "pauser"
)

// Config seeds a fresh engine.
type Config struct {
	FeeManager     common.Address
	Pauser         common.Address
	VolatileFeeBps uint32
	StableFeeBps   uint32
}

// DefaultConfig returns the standard fee schedule: 30 bps volatile, 5 bps
// stable, with both admin roles held by the given address.
func DefaultConfig(admin common.Address) Config {
	return Config{
		FeeManager:     admin,
		Pauser:         admin,
		VolatileFeeBps: 30,
		StableFeeBps:   5,
	}
}

// Engine is the process-wide settlement engine: the pool registry plus every
// pool's state. Each public operation runs as one atomic unit under the
// engine lock; a failed precondition aborts with no state change.
type Engine struct {
	mu     sync.Mutex
	logger *zap.Logger

	pools   map[common.Hash]*Pool
	poolIDs []common.Hash

	paused         bool
	feeManager     common.Address
	pauser         common.Address
	pendingManager *common.Address
	pendingPauser  *common.Address

	volatileFeeBps uint32
	stableFeeBps   uint32

	seq    uint64
	events []model.EventRecord
}

// New builds an engine from the given config.
func New(cfg Config, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.VolatileFeeBps == 0 {
		cfg.VolatileFeeBps = 30
	}
	if cfg.StableFeeBps == 0 {
		cfg.StableFeeBps = 5
	}
	return &Engine{
		logger:         logger,
		pools:          make(map[common.Hash]*Pool),
		feeManager:     cfg.FeeManager,
		pauser:         cfg.Pauser,
		volatileFeeBps: cfg.VolatileFeeBps,
		stableFeeBps:   cfg.StableFeeBps,
	}
}

// TakeEvents drains and returns the events emitted since the last call, in
// emission order. Events are only recorded for operations that committed.
func (e *Engine) TakeEvents() []model.EventRecord {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := e.events
	e.events = nil
	return out
}

// emit appends an event record. Called with the engine lock held, after all
// state for the operation is committed.
func (e *Engine) emit(eventType string, poolID common.Hash, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		e.logger.Warn("marshal event payload", zap.String("type", eventType), zap.Error(err))
		return
	}
	e.seq++
	e.events = append(e.events, model.EventRecord{
		Seq:       e.seq,
		Type:      eventType,
		PoolID:    poolID.Hex(),
		Data:      data,
		EmittedAt: time.Now().UTC().Format(time.RFC3339Nano),
	})
}

func (e *Engine) pool(id common.Hash) (*Pool, error) {
	p, ok := e.pools[id]
	if !ok {
		return nil, ErrPoolNotFound
	}
	return p, nil
}
