package repository

import (
	"context"
	"errors"
	"fmt"

	"stakehouse/database"
	"stakehouse/models"

	"github.com/jackc/pgx/v5"
)

// BonusRepository implements the BonusRepository interface
type BonusRepository struct {
	q queryable
}

// NewBonusRepository creates a new bonus repository
func NewBonusRepository(db *database.DB) *BonusRepository {
	return &BonusRepository{q: db.Pool}
}

// newBonusRepositoryWithTx creates a new bonus repository with a transaction
func newBonusRepositoryWithTx(tx queryable) *BonusRepository {
	return &BonusRepository{q: tx}
}

// GetByAddress retrieves a bonus entry by address, returning nil if none exists
func (r *BonusRepository) GetByAddress(ctx context.Context, address string) (*models.BonusEntry, error) {
	query := `
		SELECT address, amount, created_at, updated_at
		FROM bonuses
		WHERE address = $1
	`

	var entry models.BonusEntry
	err := r.q.QueryRow(ctx, query, address).Scan(
		&entry.Address,
		&entry.Amount,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bonus for %s: %w", address, err)
	}

	return &entry, nil
}

// AddAmount adds to an address's accrued bonus, creating the entry if needed.
// Repeated grants accumulate rather than overwrite.
func (r *BonusRepository) AddAmount(ctx context.Context, address string, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive")
	}

	query := `
		INSERT INTO bonuses (address, amount)
		VALUES ($1, $2)
		ON CONFLICT (address) DO UPDATE
		SET amount = bonuses.amount + EXCLUDED.amount, updated_at = NOW()
	`

	_, err := r.q.Exec(ctx, query, address, amount)
	if err != nil {
		return fmt.Errorf("failed to add bonus for %s: %w", address, err)
	}

	return nil
}

// Zero resets an address's bonus to zero and returns the prior amount.
// The read and reset happen in one statement so a concurrent claim cannot
// observe the same balance.
func (r *BonusRepository) Zero(ctx context.Context, address string) (int64, error) {
	query := `
		UPDATE bonuses b
		SET amount = 0, updated_at = NOW()
		FROM (SELECT address, amount FROM bonuses WHERE address = $1 FOR UPDATE) old
		WHERE b.address = old.address AND old.amount > 0
		RETURNING old.amount
	`

	var amount int64
	err := r.q.QueryRow(ctx, query, address).Scan(&amount)

	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to zero bonus for %s: %w", address, err)
	}

	return amount, nil
}

// GetAllPositive returns all addresses with an unclaimed bonus
func (r *BonusRepository) GetAllPositive(ctx context.Context) ([]*models.BonusEntry, error) {
	query := `
		SELECT address, amount, created_at, updated_at
		FROM bonuses
		WHERE amount > 0
		ORDER BY amount DESC
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get positive bonuses: %w", err)
	}
	defer rows.Close()

	var entries []*models.BonusEntry
	for rows.Next() {
		var entry models.BonusEntry
		err := rows.Scan(
			&entry.Address,
			&entry.Amount,
			&entry.CreatedAt,
			&entry.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bonus: %w", err)
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bonuses: %w", err)
	}

	return entries, nil
}
