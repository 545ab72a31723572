package repository

import (
	"context"
	"errors"
	"fmt"

	"stakehouse/database"
	"stakehouse/models"

	"github.com/jackc/pgx/v5"
)

// SettingsRepository implements the SettingsRepository interface
type SettingsRepository struct {
	q queryable
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *database.DB) *SettingsRepository {
	return &SettingsRepository{q: db.Pool}
}

// newSettingsRepositoryWithTx creates a new settings repository with a transaction
func newSettingsRepositoryWithTx(tx queryable) *SettingsRepository {
	return &SettingsRepository{q: tx}
}

// Get retrieves the platform settings, returning nil if not yet bootstrapped
func (r *SettingsRepository) Get(ctx context.Context) (*models.PlatformSettings, error) {
	query := `
		SELECT owner_address, fee_wallet, fee_rate_bps, max_bonus, bonus_account, updated_at
		FROM platform_settings
		WHERE id = 1
	`

	var settings models.PlatformSettings
	err := r.q.QueryRow(ctx, query).Scan(
		&settings.Owner,
		&settings.FeeWallet,
		&settings.FeeRateBps,
		&settings.MaxBonus,
		&settings.BonusAccount,
		&settings.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get platform settings: %w", err)
	}

	return &settings, nil
}

// GetOrCreate retrieves the platform settings, seeding the row from defaults
// on first use. An existing row is returned untouched.
func (r *SettingsRepository) GetOrCreate(ctx context.Context, defaults *models.PlatformSettings) (*models.PlatformSettings, error) {
	query := `
		INSERT INTO platform_settings (id, owner_address, fee_wallet, fee_rate_bps, max_bonus, bonus_account)
		VALUES (1, $1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET id = EXCLUDED.id
		RETURNING owner_address, fee_wallet, fee_rate_bps, max_bonus, bonus_account, updated_at
	`

	var settings models.PlatformSettings
	err := r.q.QueryRow(ctx, query,
		defaults.Owner,
		defaults.FeeWallet,
		defaults.FeeRateBps,
		defaults.MaxBonus,
		defaults.BonusAccount,
	).Scan(
		&settings.Owner,
		&settings.FeeWallet,
		&settings.FeeRateBps,
		&settings.MaxBonus,
		&settings.BonusAccount,
		&settings.UpdatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to get or create platform settings: %w", err)
	}

	return &settings, nil
}

// Update persists the platform settings
func (r *SettingsRepository) Update(ctx context.Context, settings *models.PlatformSettings) error {
	query := `
		UPDATE platform_settings
		SET owner_address = $1, fee_wallet = $2, fee_rate_bps = $3, max_bonus = $4, bonus_account = $5, updated_at = NOW()
		WHERE id = 1
	`

	result, err := r.q.Exec(ctx, query,
		settings.Owner,
		settings.FeeWallet,
		settings.FeeRateBps,
		settings.MaxBonus,
		settings.BonusAccount,
	)
	if err != nil {
		return fmt.Errorf("failed to update platform settings: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("platform settings not initialized")
	}

	return nil
}
