package clickhouse

import (
	"context"
	"fmt"

	"coin-wallet-ledger/internal/domain"
	"coin-wallet-ledger/internal/storage"
)

// BalanceStore implements storage.BalanceStore using ClickHouse.
type BalanceStore struct {
	conn *Conn
}

// NewBalanceStore creates a new BalanceStore.
func NewBalanceStore(conn *Conn) *BalanceStore {
	return &BalanceStore{conn: conn}
}

// Compile-time interface check.
var _ storage.BalanceStore = (*BalanceStore)(nil)

const balanceColumns = `asset_id, wallet, date, net_transfers, balance, transfer_sequence`

// ReplaceAsset deletes the asset's rows and inserts records in one batch.
// Returns ErrInvalidInput if a record belongs to another asset.
func (s *BalanceStore) ReplaceAsset(ctx context.Context, assetID string, records []*domain.BalanceRecord) error {
	for _, r := range records {
		if r == nil || r.AssetID != assetID {
			return storage.ErrInvalidInput
		}
	}

	if err := s.conn.deleteAsset(ctx, "balances", assetID); err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `INSERT INTO balances (`+balanceColumns+`)`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, r := range records {
		err := batch.Append(
			r.AssetID, r.Wallet, r.Date,
			r.NetTransfers, r.Balance, uint64(r.TransferSequence),
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetByAsset retrieves records for an asset, ordered by (wallet, transfer_sequence) ASC.
func (s *BalanceStore) GetByAsset(ctx context.Context, assetID string) ([]*domain.BalanceRecord, error) {
	query := `
		SELECT ` + balanceColumns + `
		FROM balances
		WHERE asset_id = ?
		ORDER BY wallet ASC, transfer_sequence ASC
	`

	rows, err := s.conn.Query(ctx, query, assetID)
	if err != nil {
		return nil, fmt.Errorf("query balances by asset: %w", err)
	}
	defer rows.Close()

	return scanBalances(rows)
}

// GetByWallet retrieves records for one (asset, wallet), ordered by transfer_sequence ASC.
func (s *BalanceStore) GetByWallet(ctx context.Context, assetID, wallet string) ([]*domain.BalanceRecord, error) {
	query := `
		SELECT ` + balanceColumns + `
		FROM balances
		WHERE asset_id = ? AND wallet = ?
		ORDER BY transfer_sequence ASC
	`

	rows, err := s.conn.Query(ctx, query, assetID, wallet)
	if err != nil {
		return nil, fmt.Errorf("query balances by wallet: %w", err)
	}
	defer rows.Close()

	return scanBalances(rows)
}

// scanBalances scans multiple rows.
func scanBalances(rows chRows) ([]*domain.BalanceRecord, error) {
	var records []*domain.BalanceRecord

	for rows.Next() {
		var r domain.BalanceRecord
		var seq uint64
		err := rows.Scan(&r.AssetID, &r.Wallet, &r.Date, &r.NetTransfers, &r.Balance, &seq)
		if err != nil {
			return nil, fmt.Errorf("scan balance row: %w", err)
		}
		r.Date = domain.TruncateDay(r.Date)
		r.TransferSequence = int64(seq)
		records = append(records, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate balance rows: %w", err)
	}
	return records, nil
}
