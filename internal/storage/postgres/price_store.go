package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"coin-wallet-ledger/internal/domain"
	"coin-wallet-ledger/internal/storage"
)

// PriceStore implements storage.PriceStore using PostgreSQL.
type PriceStore struct {
	pool *Pool
}

// NewPriceStore creates a new PriceStore.
func NewPriceStore(pool *Pool) *PriceStore {
	return &PriceStore{pool: pool}
}

// Compile-time interface check.
var _ storage.PriceStore = (*PriceStore)(nil)

// InsertBulk adds multiple points atomically. Fails entire batch on duplicate (asset_id, date).
func (s *PriceStore) InsertBulk(ctx context.Context, points []*domain.PricePoint) error {
	if len(points) == 0 {
		return nil
	}

	query := `
		INSERT INTO price_points (asset_id, date, price, market_cap, imputed, days_imputed)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	return s.pool.withTx(ctx, func(tx pgx.Tx) error {
		for _, p := range points {
			if p == nil || p.AssetID == "" {
				return storage.ErrInvalidInput
			}
			_, err := tx.Exec(ctx, query,
				p.AssetID,
				domain.TruncateDay(p.Date),
				p.Price,
				p.MarketCap,
				p.Imputed,
				p.DaysImputed,
			)
			if err != nil {
				return insertError(err, "price point")
			}
		}
		return nil
	})
}

// GetByAsset retrieves all points for an asset, ordered by date ASC.
func (s *PriceStore) GetByAsset(ctx context.Context, assetID string) ([]*domain.PricePoint, error) {
	query := `
		SELECT asset_id, date, price, market_cap, imputed, days_imputed
		FROM price_points
		WHERE asset_id = $1
		ORDER BY date ASC
	`

	rows, err := s.pool.Query(ctx, query, assetID)
	if err != nil {
		return nil, fmt.Errorf("get price points by asset: %w", err)
	}
	defer rows.Close()

	return scanPricePoints(rows)
}

// scanPricePoints scans multiple rows into a slice.
func scanPricePoints(rows pgx.Rows) ([]*domain.PricePoint, error) {
	var points []*domain.PricePoint

	for rows.Next() {
		var p domain.PricePoint
		err := rows.Scan(
			&p.AssetID,
			&p.Date,
			&p.Price,
			&p.MarketCap,
			&p.Imputed,
			&p.DaysImputed,
		)
		if err != nil {
			return nil, fmt.Errorf("scan price point: %w", err)
		}
		p.Date = domain.TruncateDay(p.Date)
		points = append(points, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate price points: %w", err)
	}
	return points, nil
}
