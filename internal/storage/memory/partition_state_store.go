package memory

import (
	"context"
	"sync"

	"coin-wallet-ledger/internal/storage"
)

// PartitionStateStore is an in-memory implementation of storage.PartitionStateStore.
type PartitionStateStore struct {
	mu     sync.RWMutex
	states map[string]storage.PartitionState
}

// NewPartitionStateStore creates a new in-memory partition state store.
func NewPartitionStateStore() *PartitionStateStore {
	return &PartitionStateStore{
		states: make(map[string]storage.PartitionState),
	}
}

// Get returns the state of an asset. Returns ErrNotFound if the asset was never built.
func (s *PartitionStateStore) Get(_ context.Context, assetID string) (*storage.PartitionState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.states[assetID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &st, nil
}

// Set saves the state of an asset, replacing any previous state.
func (s *PartitionStateStore) Set(_ context.Context, state *storage.PartitionState) error {
	if state == nil || state.AssetID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.states[state.AssetID] = *state
	return nil
}

var _ storage.PartitionStateStore = (*PartitionStateStore)(nil)
