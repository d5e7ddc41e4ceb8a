package postgres

import (
	"context"
	"fmt"

	"coin-wallet-ledger/internal/storage"
)

// PartitionStateStore implements storage.PartitionStateStore using PostgreSQL.
type PartitionStateStore struct {
	pool *Pool
}

// NewPartitionStateStore creates a new PartitionStateStore.
func NewPartitionStateStore(pool *Pool) *PartitionStateStore {
	return &PartitionStateStore{pool: pool}
}

// Compile-time interface check.
var _ storage.PartitionStateStore = (*PartitionStateStore)(nil)

// Get returns the state of an asset. Returns ErrNotFound if the asset was never built.
func (s *PartitionStateStore) Get(ctx context.Context, assetID string) (*storage.PartitionState, error) {
	query := `
		SELECT asset_id, run_id, input_fingerprint, updated_at_ms
		FROM partition_state
		WHERE asset_id = $1
	`

	var st storage.PartitionState
	err := s.pool.QueryRow(ctx, query, assetID).Scan(
		&st.AssetID,
		&st.RunID,
		&st.InputFingerprint,
		&st.UpdatedAtMs,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get partition state: %w", err)
	}
	return &st, nil
}

// Set saves the state of an asset, replacing any previous state.
func (s *PartitionStateStore) Set(ctx context.Context, st *storage.PartitionState) error {
	if st == nil || st.AssetID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO partition_state (asset_id, run_id, input_fingerprint, updated_at_ms)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (asset_id) DO UPDATE SET
			run_id = EXCLUDED.run_id,
			input_fingerprint = EXCLUDED.input_fingerprint,
			updated_at_ms = EXCLUDED.updated_at_ms
	`

	if _, err := s.pool.Exec(ctx, query, st.AssetID, st.RunID, st.InputFingerprint, st.UpdatedAtMs); err != nil {
		return fmt.Errorf("set partition state: %w", err)
	}
	return nil
}
