package memory

import (
	"context"
	"sort"

	"coin-wallet-ledger/internal/domain"
	"coin-wallet-ledger/internal/storage"
)

// NetTransferStore is an in-memory implementation of storage.NetTransferStore.
type NetTransferStore struct {
	parts *partitions[domain.NetTransferRecord]
}

// NewNetTransferStore creates a new in-memory net transfer store.
func NewNetTransferStore() *NetTransferStore {
	return &NetTransferStore{parts: newPartitions[domain.NetTransferRecord]()}
}

// ReplaceAsset replaces every record of the asset.
// Returns ErrInvalidInput if a record belongs to another asset.
func (s *NetTransferStore) ReplaceAsset(_ context.Context, assetID string, records []*domain.NetTransferRecord) error {
	for _, r := range records {
		if r == nil || r.AssetID != assetID {
			return storage.ErrInvalidInput
		}
	}
	sorted := append([]*domain.NetTransferRecord(nil), records...)
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
func (s *NetTransferStore) GetByAsset(_ context.Context, assetID string) ([]*domain.NetTransferRecord, error) {
	return s.parts.get(assetID, nil), nil
}

var _ storage.NetTransferStore = (*NetTransferStore)(nil)
