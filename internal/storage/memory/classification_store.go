package memory

import (
	"context"
	"sort"
	"sync"

	"coin-wallet-ledger/internal/domain"
	"coin-wallet-ledger/internal/storage"
)

// ClassificationStore is an in-memory implementation of storage.ClassificationStore.
type ClassificationStore struct {
	mu   sync.RWMutex
	data map[domain.CategoryMembership]struct{}
}

// NewClassificationStore creates a new in-memory classification store.
func NewClassificationStore() *ClassificationStore {
	return &ClassificationStore{
		data: make(map[domain.CategoryMembership]struct{}),
	}
}

// InsertBulk adds memberships. Existing pairs are ignored.
func (s *ClassificationStore) InsertBulk(_ context.Context, memberships []domain.CategoryMembership) error {
	for _, m := range memberships {
		if m.AssetID == "" || m.Category == "" {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range memberships {
		s.data[m] = struct{}{}
	}
	return nil
}

// GetAll retrieves all memberships, ordered by (asset_id, category) ASC.
func (s *ClassificationStore) GetAll(_ context.Context) ([]domain.CategoryMembership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.CategoryMembership, 0, len(s.data))
	for m := range s.data {
		result = append(result, m)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].AssetID != result[j].AssetID {
			return result[i].AssetID < result[j].AssetID
		}
		return result[i].Category < result[j].Category
	})
	return result, nil
}

var _ storage.ClassificationStore = (*ClassificationStore)(nil)
