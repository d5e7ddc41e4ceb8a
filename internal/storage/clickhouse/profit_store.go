package clickhouse

import (
	"context"
	"fmt"

	"coin-wallet-ledger/internal/domain"
	"coin-wallet-ledger/internal/storage"
)

// ProfitStore implements storage.ProfitStore using ClickHouse.
type ProfitStore struct {
	conn *Conn
}

// NewProfitStore creates a new ProfitStore.
func NewProfitStore(conn *Conn) *ProfitStore {
	return &ProfitStore{conn: conn}
}

// Compile-time interface check.
var _ storage.ProfitStore = (*ProfitStore)(nil)

const profitColumns = `asset_id, wallet, date, transfer_sequence, price,
	net_transfer_tokens, balance_tokens, usd_net_transfers, usd_balance,
	profits_change, profits_cumulative, usd_inflows, usd_inflows_cumulative,
	total_return, imputed`

// ReplaceAsset deletes the asset's rows and inserts records in one batch.
// Returns ErrInvalidInput if a record belongs to another asset.
func (s *ProfitStore) ReplaceAsset(ctx context.Context, assetID string, records []*domain.ProfitRecord) error {
	for _, r := range records {
		if r == nil || r.AssetID != assetID {
			return storage.ErrInvalidInput
		}
	}

	if err := s.conn.deleteAsset(ctx, "profits", assetID); err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `INSERT INTO profits (`+profitColumns+`)`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, r := range records {
		err := batch.Append(
			r.AssetID, r.Wallet, r.Date, uint64(r.TransferSequence), r.Price,
			r.NetTransferTokens, r.BalanceTokens, r.UsdNetTransfers, r.UsdBalance,
			r.ProfitsChange, r.ProfitsCumulative, r.UsdInflows, r.UsdInflowsCumulative,
			r.TotalReturn, r.Imputed,
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

// GetByAsset retrieves records for an asset, ordered by (wallet, date) ASC.
func (s *ProfitStore) GetByAsset(ctx context.Context, assetID string) ([]*domain.ProfitRecord, error) {
	query := `
		SELECT ` + profitColumns + `
		FROM profits
		WHERE asset_id = ?
		ORDER BY wallet ASC, date ASC, transfer_sequence ASC
	`

	rows, err := s.conn.Query(ctx, query, assetID)
	if err != nil {
		return nil, fmt.Errorf("query profits by asset: %w", err)
	}
	defer rows.Close()

	return scanProfits(rows)
}

// GetByWallet retrieves records for one (asset, wallet), ordered by date ASC.
func (s *ProfitStore) GetByWallet(ctx context.Context, assetID, wallet string) ([]*domain.ProfitRecord, error) {
	query := `
		SELECT ` + profitColumns + `
		FROM profits
		WHERE asset_id = ? AND wallet = ?
		ORDER BY date ASC, transfer_sequence ASC
	`

	rows, err := s.conn.Query(ctx, query, assetID, wallet)
	if err != nil {
		return nil, fmt.Errorf("query profits by wallet: %w", err)
	}
	defer rows.Close()

	return scanProfits(rows)
}

// scanProfits scans multiple rows.
func scanProfits(rows chRows) ([]*domain.ProfitRecord, error) {
	var records []*domain.ProfitRecord

	for rows.Next() {
		var r domain.ProfitRecord
		var seq uint64
		err := rows.Scan(
			&r.AssetID, &r.Wallet, &r.Date, &seq, &r.Price,
			&r.NetTransferTokens, &r.BalanceTokens, &r.UsdNetTransfers, &r.UsdBalance,
			&r.ProfitsChange, &r.ProfitsCumulative, &r.UsdInflows, &r.UsdInflowsCumulative,
			&r.TotalReturn, &r.Imputed,
		)
		if err != nil {
			return nil, fmt.Errorf("scan profit row: %w", err)
		}
		r.Date = domain.TruncateDay(r.Date)
		r.TransferSequence = int64(seq)
		records = append(records, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate profit rows: %w", err)
	}
	return records, nil
}
