package memory

import (
	"context"
	"sort"

	"coin-wallet-ledger/internal/domain"
	"coin-wallet-ledger/internal/storage"
)

// ProfitStore is an in-memory implementation of storage.ProfitStore.
type ProfitStore struct {
	parts *partitions[domain.ProfitRecord]
}

// NewProfitStore creates a new in-memory profit store.
func NewProfitStore() *ProfitStore {
	return &ProfitStore{parts: newPartitions[domain.ProfitRecord]()}
}

// ReplaceAsset replaces every record of the asset.
// Returns ErrInvalidInput if a record belongs to another asset.
func (s *ProfitStore) ReplaceAsset(_ context.Context, assetID string, records []*domain.ProfitRecord) error {
	for _, r := range records {
		if r == nil || r.AssetID != assetID {
			return storage.ErrInvalidInput
		}
	}
	sorted := append([]*domain.ProfitRecord(nil), records...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Wallet != sorted[j].Wallet {
			return sorted[i].Wallet < sorted[j].Wallet
		}
		return sorted[i].Date.Before(sorted[j].Date)
	})
	s.parts.replace(assetID, sorted)
	return nil
}

// GetByAsset retrieves records for an asset, ordered by (wallet, date) ASC.
func (s *ProfitStore) GetByAsset(_ context.Context, assetID string) ([]*domain.ProfitRecord, error) {
	return s.parts.get(assetID, nil), nil
}

// GetByWallet retrieves records for one (asset, wallet), ordered by date ASC.
func (s *ProfitStore) GetByWallet(_ context.Context, assetID, wallet string) ([]*domain.ProfitRecord, error) {
	return s.parts.get(assetID, func(r *domain.ProfitRecord) bool { return r.Wallet == wallet }), nil
}

var _ storage.ProfitStore = (*ProfitStore)(nil)
