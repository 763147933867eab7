package storage

import "liquidityCore/internal/model"

// Sink defines a destination for engine event records.
type Sink interface {
	PutEventBatch(events []model.EventRecord) error
}
