package domain

import "context"

// FeedWorker defines the interface for market-data feed connectors
type FeedWorker interface {
	Connect(ctx context.Context) error
	Disconnect()
	IsConnected() bool
}

// CrossRepository defines how priced cross decisions, order audits and
// engine checkpoints are persisted.
type CrossRepository interface {
	SaveCross(rec *CrossRecord) error
	SaveOrder(rec *OrderRecord) error
	RecentCrosses(symbol string, limit int) ([]CrossRecord, error)
	SaveCheckpoint(seq uint64) error
}
