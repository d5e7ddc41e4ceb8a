package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"coin-wallet-ledger/internal/domain"
	"coin-wallet-ledger/internal/storage"
)

type priceKey struct {
	assetID string
	date    time.Time
}

// PriceStore is an in-memory implementation of storage.PriceStore.
type PriceStore struct {
	mu   sync.RWMutex
	data map[priceKey]*domain.PricePoint // keyed by (asset_id, date)
}

// NewPriceStore creates a new in-memory price store.
func NewPriceStore() *PriceStore {
	return &PriceStore{
		data: make(map[priceKey]*domain.PricePoint),
	}
}

// InsertBulk adds multiple points. Dates are truncated to the UTC day.
// Fails entire batch on duplicate (asset_id, date).
func (s *PriceStore) InsertBulk(_ context.Context, points []*domain.PricePoint) error {
	if len(points) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Track keys in this batch to detect intra-batch duplicates
	batchKeys := make(map[priceKey]struct{}, len(points))

	for _, p := range points {
		if p == nil || p.AssetID == "" || p.Date.IsZero() {
			return storage.ErrInvalidInput
		}
		key := priceKey{assetID: p.AssetID, date: domain.TruncateDay(p.Date)}
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, p := range points {
		pointCopy := *p
		pointCopy.Date = domain.TruncateDay(p.Date)
		s.data[priceKey{assetID: p.AssetID, date: pointCopy.Date}] = &pointCopy
	}
	return nil
}

// GetByAsset retrieves all points for an asset, ordered by date ASC.
func (s *PriceStore) GetByAsset(_ context.Context, assetID string) ([]*domain.PricePoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.PricePoint
	for k, p := range s.data {
		if k.assetID == assetID {
			pointCopy := *p
			result = append(result, &pointCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})
	return result, nil
}

var _ storage.PriceStore = (*PriceStore)(nil)
