package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"coin-wallet-ledger/internal/domain"
	"coin-wallet-ledger/internal/storage"
)

// AssetStore implements storage.AssetStore using PostgreSQL.
type AssetStore struct {
	pool *Pool
}

// NewAssetStore creates a new AssetStore.
func NewAssetStore(pool *Pool) *AssetStore {
	return &AssetStore{pool: pool}
}

// Compile-time interface check.
var _ storage.AssetStore = (*AssetStore)(nil)

const assetColumns = `asset_id, chain, address, symbol, decimals, total_supply, rank`

// Insert adds a new asset with its address normalized per chain.
// Returns ErrDuplicateKey if asset_id or (chain, address) exists.
func (s *AssetStore) Insert(ctx context.Context, a *domain.Asset) error {
	if a == nil || a.AssetID == "" || a.Chain == "" || a.Address == "" {
		return storage.ErrInvalidInput
	}
	n := a.Normalized()

	query := `
		INSERT INTO assets (` + assetColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := s.pool.Exec(ctx, query,
		n.AssetID,
		n.Chain,
		n.Address,
		n.Symbol,
		n.Decimals,
		n.TotalSupply,
		n.Rank,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert asset: %w", err)
	}
	return nil
}

// GetByID retrieves an asset by its ID. Returns ErrNotFound if not exists.
func (s *AssetStore) GetByID(ctx context.Context, assetID string) (*domain.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets WHERE asset_id = $1`

	a, err := scanAsset(s.pool.QueryRow(ctx, query, assetID))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get asset by id: %w", err)
	}
	return a, nil
}

// GetByAddress retrieves an asset by chain and address. Returns ErrNotFound if not exists.
func (s *AssetStore) GetByAddress(ctx context.Context, chain, address string) (*domain.Asset, error) {
	key := domain.Asset{Chain: chain, Address: address}.Key()
	query := `SELECT ` + assetColumns + ` FROM assets WHERE chain = $1 AND address = $2`

	a, err := scanAsset(s.pool.QueryRow(ctx, query, key.Chain, key.Address))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get asset by address: %w", err)
	}
	return a, nil
}

// GetAll retrieves all assets, ordered by asset_id ASC.
func (s *AssetStore) GetAll(ctx context.Context) ([]*domain.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets ORDER BY asset_id ASC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all assets: %w", err)
	}
	defer rows.Close()

	var assets []*domain.Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		assets = append(assets, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assets: %w", err)
	}
	return assets, nil
}

// scanAsset scans a single row into Asset.
func scanAsset(row pgx.Row) (*domain.Asset, error) {
	var a domain.Asset
	err := row.Scan(
		&a.AssetID,
		&a.Chain,
		&a.Address,
		&a.Symbol,
		&a.Decimals,
		&a.TotalSupply,
		&a.Rank,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
