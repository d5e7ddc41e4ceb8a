package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"coin-wallet-ledger/internal/domain"
	"coin-wallet-ledger/internal/storage"
)

// TransferEventStore implements storage.TransferEventStore using PostgreSQL.
type TransferEventStore struct {
	pool *Pool
}

// NewTransferEventStore creates a new TransferEventStore.
func NewTransferEventStore(pool *Pool) *TransferEventStore {
	return &TransferEventStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TransferEventStore = (*TransferEventStore)(nil)

// InsertBulk adds multiple events atomically. Fails entire batch on any duplicate.
func (s *TransferEventStore) InsertBulk(ctx context.Context, events []*domain.TransferEvent) error {
	if len(events) == 0 {
		return nil
	}

	// Amounts travel as text to keep full NUMERIC precision.
	query := `
		INSERT INTO transfer_events (
			source, asset_id, tx_hash, log_index, timestamp_ms, sender, receiver, amount
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8::numeric)
	`

	return s.pool.withTx(ctx, func(tx pgx.Tx) error {
		for _, e := range events {
			if e == nil || e.AssetID == "" || e.Source == "" || e.TxHash == "" {
				return storage.ErrInvalidInput
			}
			_, err := tx.Exec(ctx, query,
				e.Source,
				e.AssetID,
				e.TxHash,
				e.LogIndex,
				e.TimestampMs,
				e.Sender,
				e.Receiver,
				e.Amount.String(),
			)
			if err != nil {
				return insertError(err, "transfer event")
			}
		}
		return nil
	})
}

// GetByAsset retrieves events of one source for an asset, ordered by (timestamp_ms, tx_hash, log_index) ASC.
func (s *TransferEventStore) GetByAsset(ctx context.Context, source, assetID string) ([]*domain.TransferEvent, error) {
	query := `
		SELECT source, asset_id, tx_hash, log_index, timestamp_ms, sender, receiver, amount::text
		FROM transfer_events
		WHERE source = $1 AND asset_id = $2
		ORDER BY timestamp_ms ASC, tx_hash ASC, log_index ASC
	`

	rows, err := s.pool.Query(ctx, query, source, assetID)
	if err != nil {
		return nil, fmt.Errorf("get transfer events by asset: %w", err)
	}
	defer rows.Close()

	return scanTransferEvents(rows)
}

// ListAssets returns the asset IDs a source has events for, ordered ASC.
func (s *TransferEventStore) ListAssets(ctx context.Context, source string) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT DISTINCT asset_id FROM transfer_events
		WHERE source = $1
		ORDER BY asset_id ASC
	`, source)
	if err != nil {
		return nil, fmt.Errorf("list transfer assets: %w", err)
	}
	defer rows.Close()

	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("collect transfer assets: %w", err)
	}
	return ids, nil
}

// scanTransferEvents scans multiple rows into a slice.
func scanTransferEvents(rows pgx.Rows) ([]*domain.TransferEvent, error) {
	var events []*domain.TransferEvent

	for rows.Next() {
		var e domain.TransferEvent
		var amount string
		err := rows.Scan(
			&e.Source,
			&e.AssetID,
			&e.TxHash,
			&e.LogIndex,
			&e.TimestampMs,
			&e.Sender,
			&e.Receiver,
			&amount,
		)
		if err != nil {
			return nil, fmt.Errorf("scan transfer event: %w", err)
		}
		if e.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("parse amount of %s/%d: %w", e.TxHash, e.LogIndex, err)
		}
		events = append(events, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transfer events: %w", err)
	}
	return events, nil
}
