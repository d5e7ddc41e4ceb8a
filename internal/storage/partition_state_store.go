package storage

import "context"

// PartitionState records the inputs an asset partition was last built from.
type PartitionState struct {
	AssetID          string // asset identifier
	RunID            string // run that wrote the partition
	InputFingerprint string // hash of owner source, event and price inputs
	UpdatedAtMs      int64  // when the partition was replaced (ms)
}

// PartitionStateStore provides persistence for per-asset build state.
// This enables unchanged partitions to be skipped on the next run.
type PartitionStateStore interface {
	// Get returns the state of an asset. Returns ErrNotFound if the asset was never built.
	Get(ctx context.Context, assetID string) (*PartitionState, error)

	// Set saves the state of an asset, replacing any previous state.
	Set(ctx context.Context, state *PartitionState) error
}
