package memory

import (
	"context"
	"sort"
	"sync"

	"coin-wallet-ledger/internal/domain"
	"coin-wallet-ledger/internal/storage"
)

// AssetStore is an in-memory implementation of storage.AssetStore.
type AssetStore struct {
	mu        sync.RWMutex
	byID      map[string]*domain.Asset          // keyed by asset_id
	byAddress map[domain.AssetKey]*domain.Asset // keyed by (chain, address), unique
}

// NewAssetStore creates a new in-memory asset store.
func NewAssetStore() *AssetStore {
	return &AssetStore{
		byID:      make(map[string]*domain.Asset),
		byAddress: make(map[domain.AssetKey]*domain.Asset),
	}
}

// Insert adds a new asset. The address is normalized per chain before storing.
// Returns ErrDuplicateKey if asset_id or (chain, address) already exists.
func (s *AssetStore) Insert(_ context.Context, a *domain.Asset) error {
	if a == nil || a.AssetID == "" || a.Chain == "" || a.Address == "" {
		return storage.ErrInvalidInput
	}

	n := a.Normalized()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[n.AssetID]; exists {
		return storage.ErrDuplicateKey
	}
	key := n.Key()
	if _, exists := s.byAddress[key]; exists {
		return storage.ErrDuplicateKey
	}

	s.byID[n.AssetID] = &n
	s.byAddress[key] = &n
	return nil
}

// GetByID retrieves an asset by its ID. Returns ErrNotFound if not exists.
func (s *AssetStore) GetByID(_ context.Context, assetID string) (*domain.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, exists := s.byID[assetID]
	if !exists {
		return nil, storage.ErrNotFound
	}
	assetCopy := *a
	return &assetCopy, nil
}

// GetByAddress retrieves an asset by chain and address. Returns ErrNotFound if not exists.
func (s *AssetStore) GetByAddress(_ context.Context, chain, address string) (*domain.Asset, error) {
	key := domain.Asset{Chain: chain, Address: address}.Key()

	s.mu.RLock()
	defer s.mu.RUnlock()

	a, exists := s.byAddress[key]
	if !exists {
		return nil, storage.ErrNotFound
	}
	assetCopy := *a
	return &assetCopy, nil
}

// GetAll retrieves all assets, ordered by asset_id ASC.
func (s *AssetStore) GetAll(_ context.Context) ([]*domain.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Asset, 0, len(s.byID))
	for _, a := range s.byID {
		assetCopy := *a
		result = append(result, &assetCopy)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].AssetID < result[j].AssetID
	})
	return result, nil
}

var _ storage.AssetStore = (*AssetStore)(nil)
