package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"coin-wallet-ledger/internal/domain"
	"coin-wallet-ledger/internal/storage"
)

// ClassificationStore implements storage.ClassificationStore using PostgreSQL.
type ClassificationStore struct {
	pool *Pool
}

// NewClassificationStore creates a new ClassificationStore.
func NewClassificationStore(pool *Pool) *ClassificationStore {
	return &ClassificationStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ClassificationStore = (*ClassificationStore)(nil)

// InsertBulk adds memberships atomically. Existing (asset_id, category) pairs are ignored.
func (s *ClassificationStore) InsertBulk(ctx context.Context, memberships []domain.CategoryMembership) error {
	if len(memberships) == 0 {
		return nil
	}

	query := `
		INSERT INTO asset_categories (asset_id, category)
		VALUES ($1, $2)
		ON CONFLICT (asset_id, category) DO NOTHING
	`

	return s.pool.withTx(ctx, func(tx pgx.Tx) error {
		for _, m := range memberships {
			if m.AssetID == "" || m.Category == "" {
				return storage.ErrInvalidInput
			}
			if _, err := tx.Exec(ctx, query, m.AssetID, m.Category); err != nil {
				return insertError(err, "category membership")
			}
		}
		return nil
	})
}

// GetAll retrieves all memberships, ordered by (asset_id, category) ASC.
func (s *ClassificationStore) GetAll(ctx context.Context) ([]domain.CategoryMembership, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT asset_id, category FROM asset_categories
		ORDER BY asset_id ASC, category ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("get all categories: %w", err)
	}
	defer rows.Close()

	var out []domain.CategoryMembership
	for rows.Next() {
		var m domain.CategoryMembership
		if err := rows.Scan(&m.AssetID, &m.Category); err != nil {
			return nil, fmt.Errorf("scan category membership: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return out, nil
}
