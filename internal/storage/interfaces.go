package storage

import (
	"context"
	"time"

	"coin-wallet-ledger/internal/domain"
)

// AssetStore provides access to assets storage.
type AssetStore interface {
	// Insert adds a new asset. Returns ErrDuplicateKey if asset_id or (chain, address) exists.
	Insert(ctx context.Context, a *domain.Asset) error

	// GetByID retrieves an asset by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, assetID string) (*domain.Asset, error)

	// GetByAddress retrieves an asset by chain and address. Returns ErrNotFound if not exists.
	GetByAddress(ctx context.Context, chain, address string) (*domain.Asset, error)

	// GetAll retrieves all assets, ordered by asset_id ASC.
	GetAll(ctx context.Context) ([]*domain.Asset, error)
}

// ClassificationStore provides access to asset_categories storage.
type ClassificationStore interface {
	// InsertBulk adds memberships. Existing (asset_id, category) pairs are ignored.
	InsertBulk(ctx context.Context, memberships []domain.CategoryMembership) error

	// GetAll retrieves all memberships, ordered by (asset_id, category) ASC.
	GetAll(ctx context.Context) ([]domain.CategoryMembership, error)
}

// TransferEventStore provides access to transfer_events storage.
type TransferEventStore interface {
	// InsertBulk adds multiple events atomically.
	// Fails entire batch on duplicate (source, asset_id, tx_hash, log_index).
	InsertBulk(ctx context.Context, events []*domain.TransferEvent) error

	// GetByAsset retrieves events of one source for an asset, ordered by (timestamp_ms, tx_hash, log_index) ASC.
	GetByAsset(ctx context.Context, source, assetID string) ([]*domain.TransferEvent, error)

	// ListAssets returns the asset IDs a source has events for, ordered ASC.
	ListAssets(ctx context.Context, source string) ([]string, error)
}

// PriceStore provides access to price_points storage.
type PriceStore interface {
	// InsertBulk adds multiple points. Fails entire batch on duplicate (asset_id, date).
	InsertBulk(ctx context.Context, points []*domain.PricePoint) error

	// GetByAsset retrieves all points for an asset, ordered by date ASC.
	GetByAsset(ctx context.Context, assetID string) ([]*domain.PricePoint, error)
}

// NetTransferStore provides access to net_transfers storage.
type NetTransferStore interface {
	// ReplaceAsset replaces every record of the asset with records.
	ReplaceAsset(ctx context.Context, assetID string, records []*domain.NetTransferRecord) error

	// GetByAsset retrieves records for an asset, ordered by (wallet, date) ASC.
	GetByAsset(ctx context.Context, assetID string) ([]*domain.NetTransferRecord, error)
}

// BalanceStore provides access to balances storage.
type BalanceStore interface {
	// ReplaceAsset replaces every record of the asset with records.
	ReplaceAsset(ctx context.Context, assetID string, records []*domain.BalanceRecord) error

	// GetByAsset retrieves records for an asset, ordered by (wallet, transfer_sequence) ASC.
	GetByAsset(ctx context.Context, assetID string) ([]*domain.BalanceRecord, error)

	// GetByWallet retrieves records for one (asset, wallet), ordered by transfer_sequence ASC.
	GetByWallet(ctx context.Context, assetID, wallet string) ([]*domain.BalanceRecord, error)
}

// ProfitStore provides access to profits storage.
type ProfitStore interface {
	// ReplaceAsset replaces every record of the asset with records.
	ReplaceAsset(ctx context.Context, assetID string, records []*domain.ProfitRecord) error

	// GetByAsset retrieves records for an asset, ordered by (wallet, date) ASC.
	GetByAsset(ctx context.Context, assetID string) ([]*domain.ProfitRecord, error)

	// GetByWallet retrieves records for one (asset, wallet), ordered by date ASC.
	GetByWallet(ctx context.Context, assetID, wallet string) ([]*domain.ProfitRecord, error)
}

// ExclusionCache caches computed exclusion sets keyed by classification fingerprint.
type ExclusionCache interface {
	// Get returns the cached set. Returns ErrNotFound on miss.
	Get(ctx context.Context, fingerprint string) (*domain.ExclusionSet, error)

	// Put stores the set for ttl. A zero ttl keeps it until evicted.
	Put(ctx context.Context, fingerprint string, set *domain.ExclusionSet, ttl time.Duration) error
}
