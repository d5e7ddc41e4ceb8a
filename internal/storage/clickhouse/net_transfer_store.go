package clickhouse

import (
	"context"
	"fmt"

	"coin-wallet-ledger/internal/domain"
	"coin-wallet-ledger/internal/storage"
)

// NetTransferStore implements storage.NetTransferStore using ClickHouse.
type NetTransferStore struct {
	conn *Conn
}

// NewNetTransferStore creates a new NetTransferStore.
func NewNetTransferStore(conn *Conn) *NetTransferStore {
	return &NetTransferStore{conn: conn}
}

// Compile-time interface check.
var _ storage.NetTransferStore = (*NetTransferStore)(nil)

// ReplaceAsset deletes the asset's rows and inserts records in one batch.
// Returns ErrInvalidInput if a record belongs to another asset.
func (s *NetTransferStore) ReplaceAsset(ctx context.Context, assetID string, records []*domain.NetTransferRecord) error {
	for _, r := range records {
		if r == nil || r.AssetID != assetID {
			return storage.ErrInvalidInput
		}
	}

	if err := s.conn.deleteAsset(ctx, "net_transfers", assetID); err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO net_transfers (asset_id, wallet, date, source, amount)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, r := range records {
		if err := batch.Append(r.AssetID, r.Wallet, r.Date, r.Source, r.Amount); err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetByAsset retrieves records for an asset, ordered by (wallet, date) ASC.
func (s *NetTransferStore) GetByAsset(ctx context.Context, assetID string) ([]*domain.NetTransferRecord, error) {
	query := `
		SELECT asset_id, wallet, date, source, amount
		FROM net_transfers
		WHERE asset_id = ?
		ORDER BY wallet ASC, date ASC
	`

	rows, err := s.conn.Query(ctx, query, assetID)
	if err != nil {
		return nil, fmt.Errorf("query net transfers: %w", err)
	}
	defer rows.Close()

	return scanNetTransfers(rows)
}

// scanNetTransfers scans multiple rows.
func scanNetTransfers(rows chRows) ([]*domain.NetTransferRecord, error) {
	var records []*domain.NetTransferRecord

	for rows.Next() {
		var r domain.NetTransferRecord
		if err := rows.Scan(&r.AssetID, &r.Wallet, &r.Date, &r.Source, &r.Amount); err != nil {
			return nil, fmt.Errorf("scan net transfer row: %w", err)
		}
		r.Date = domain.TruncateDay(r.Date)
		records = append(records, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate net transfer rows: %w", err)
	}
	return records, nil
}
