package memory

import (
	"context"
	"sort"

	"coin-wallet-ledger/internal/domain"
	"coin-wallet-ledger/internal/storage"
)

// BalanceStore is an in-memory implementation of storage.BalanceStore.
type BalanceStore struct {
	parts *partitions[domain.BalanceRecord]
}

// NewBalanceStore creates a new in-memory balance store.
func NewBalanceStore() *BalanceStore {
	return &BalanceStore{parts: newPartitions[domain.BalanceRecord]()}
}

// ReplaceAsset replaces every record of the asset.
// Returns ErrInvalidInput if a record belongs to another asset.
func (s *BalanceStore) ReplaceAsset(_ context.Context, assetID string, records []*domain.BalanceRecord) error {
	for _, r := range records {
		if r == nil || r.AssetID != assetID {
			return storage.ErrInvalidInput
		}
	}
	sorted := append([]*domain.BalanceRecord(nil), records...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Wallet != sorted[j].Wallet {
			return sorted[i].Wallet < sorted[j].Wallet
		}
		return sorted[i].TransferSequence < sorted[j].TransferSequence
	})
	s.parts.replace(assetID, sorted)
	return nil
}

// GetByAsset retrieves records for an asset, ordered by (wallet, transfer_sequence) ASC.
func (s *BalanceStore) GetByAsset(_ context.Context, assetID string) ([]*domain.BalanceRecord, error) {
	return s.parts.get(assetID, nil), nil
}

// GetByWallet retrieves records for one (asset, wallet), ordered by transfer_sequence ASC.
func (s *BalanceStore) GetByWallet(_ context.Context, assetID, wallet string) ([]*domain.BalanceRecord, error) {
	return s.parts.get(assetID, func(r *domain.BalanceRecord) bool { return r.Wallet == wallet }), nil
}

var _ storage.BalanceStore = (*BalanceStore)(nil)
