package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"stakehouse/database"
	"stakehouse/models"
)

// BalanceHistoryRepository implements the BalanceHistoryRepository interface
type BalanceHistoryRepository struct {
	q queryable
}

// NewBalanceHistoryRepository creates a new balance history repository
func NewBalanceHistoryRepository(db *database.DB) *BalanceHistoryRepository {
	return &BalanceHistoryRepository{q: db.Pool}
}

// newBalanceHistoryRepositoryWithTx creates a new balance history repository with a transaction
func newBalanceHistoryRepositoryWithTx(tx queryable) *BalanceHistoryRepository {
	return &BalanceHistoryRepository{q: tx}
}

// Record creates a new balance history entry
func (r *BalanceHistoryRepository) Record(ctx context.Context, entry *models.BalanceEntry) error {
	metadataJSON, err := json.Marshal(entry.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal entry metadata: %w", err)
	}

	query := `
		INSERT INTO balance_history
		(address, balance_before, balance_after, change_amount, entry_type, metadata, related_id, related_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`

	err = r.q.QueryRow(ctx, query,
		entry.Address,
		entry.BalanceBefore,
		entry.BalanceAfter,
		entry.ChangeAmount,
		entry.EntryType,
		metadataJSON,
		entry.RelatedID,
		entry.RelatedType,
	).Scan(&entry.ID, &entry.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to record balance history for %s: %w", entry.Address, err)
	}

	return nil
}

// GetByAddress returns the most recent balance history for an address
func (r *BalanceHistoryRepository) GetByAddress(ctx context.Context, address string, limit int) ([]*models.BalanceEntry, error) {
	query := `
		SELECT id, address, balance_before, balance_after, change_amount,
		       entry_type, metadata, related_id, related_type, created_at
		FROM balance_history
		WHERE address = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, address, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance history for %s: %w", address, err)
	}
	defer rows.Close()

	var entries []*models.BalanceEntry
	for rows.Next() {
		var entry models.BalanceEntry
		var metadataJSON []byte

		err := rows.Scan(
			&entry.ID,
			&entry.Address,
			&entry.BalanceBefore,
			&entry.BalanceAfter,
			&entry.ChangeAmount,
			&entry.EntryType,
			&metadataJSON,
			&entry.RelatedID,
			&entry.RelatedType,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan balance history: %w", err)
		}

		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &entry.Metadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal entry metadata: %w", err)
			}
		}

		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate balance history: %w", err)
	}

	return entries, nil
}
