package repository

import (
	"context"
	"errors"
	"fmt"

	"stakehouse/database"
	"stakehouse/models"

	"github.com/jackc/pgx/v5"
)

// WalletRepository implements the WalletRepository interface
type WalletRepository struct {
	q queryable
}

// NewWalletRepository creates a new wallet repository
func NewWalletRepository(db *database.DB) *WalletRepository {
	return &WalletRepository{q: db.Pool}
}

// newWalletRepositoryWithTx creates a new wallet repository with a transaction
func newWalletRepositoryWithTx(tx queryable) *WalletRepository {
	return &WalletRepository{q: tx}
}

// GetByAddress retrieves a wallet by address, returning nil if none exists
func (r *WalletRepository) GetByAddress(ctx context.Context, address string) (*models.Wallet, error) {
	query := `
		SELECT address, balance, created_at, updated_at
		FROM wallets
		WHERE address = $1
	`

	var wallet models.Wallet
	err := r.q.QueryRow(ctx, query, address).Scan(
		&wallet.Address,
		&wallet.Balance,
		&wallet.CreatedAt,
		&wallet.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet for %s: %w", address, err)
	}

	return &wallet, nil
}

// GetOrCreate retrieves a wallet, creating an empty one if it does not exist
func (r *WalletRepository) GetOrCreate(ctx context.Context, address string) (*models.Wallet, error) {
	query := `
		INSERT INTO wallets (address, balance)
		VALUES ($1, 0)
		ON CONFLICT (address) DO UPDATE SET address = EXCLUDED.address
		RETURNING address, balance, created_at, updated_at
	`

	var wallet models.Wallet
	err := r.q.QueryRow(ctx, query, address).Scan(
		&wallet.Address,
		&wallet.Balance,
		&wallet.CreatedAt,
		&wallet.UpdatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to get or create wallet for %s: %w", address, err)
	}

	return &wallet, nil
}

// AddBalance adds to a wallet's balance atomically
func (r *WalletRepository) AddBalance(ctx context.Context, address string, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive")
	}

	query := `
		UPDATE wallets
		SET balance = balance + $1, updated_at = NOW()
		WHERE address = $2
	`

	result, err := r.q.Exec(ctx, query, amount, address)
	if err != nil {
		return fmt.Errorf("failed to add balance for %s: %w", address, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("wallet for %s not found", address)
	}

	return nil
}

// DeductBalance deducts from a wallet's balance atomically, failing with
// models.ErrInsufficientBalance if the wallet cannot cover the amount
func (r *WalletRepository) DeductBalance(ctx context.Context, address string, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive")
	}

	query := `
		UPDATE wallets
		SET balance = balance - $1, updated_at = NOW()
		WHERE address = $2 AND balance >= $1
	`

	result, err := r.q.Exec(ctx, query, amount, address)
	if err != nil {
		return fmt.Errorf("failed to deduct balance for %s: %w", address, err)
	}

	if result.RowsAffected() == 0 {
		wallet, err := r.GetByAddress(ctx, address)
		if err != nil {
			return fmt.Errorf("failed to check wallet: %w", err)
		}
		if wallet == nil {
			return fmt.Errorf("%w: wallet for %s not found", models.ErrInsufficientBalance, address)
		}
		return fmt.Errorf("%w: have %d, need %d", models.ErrInsufficientBalance, wallet.Balance, amount)
	}

	return nil
}
