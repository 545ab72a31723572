package service

import (
	"context"
	"fmt"

	"stakehouse/models"

	log "github.com/sirupsen/logrus"
)

type settingsService struct {
	uowFactory UnitOfWorkFactory
	authorizer Authorizer
}

// NewSettingsService creates a new settings service
func NewSettingsService(uowFactory UnitOfWorkFactory, authorizer Authorizer) SettingsService {
	return &settingsService{
		uowFactory: uowFactory,
		authorizer: authorizer,
	}
}

// EnsureSettings bootstraps the settings row on first run. Subsequent calls
// return the stored settings unchanged.
func (s *settingsService) EnsureSettings(ctx context.Context, defaults *models.PlatformSettings) (*models.PlatformSettings, error) {
	if defaults.Owner == "" {
		return nil, fmt.Errorf("owner address cannot be empty")
	}
	if !models.ValidFeeRate(defaults.FeeRateBps) {
		return nil, fmt.Errorf("rate %d: %w", defaults.FeeRateBps, models.ErrInvalidFeeRate)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	settings, err := uow.SettingsRepository().GetOrCreate(ctx, defaults)
	if err != nil {
		return nil, fmt.Errorf("failed to bootstrap settings: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return settings, nil
}

// GetSettings retrieves the current platform settings.
func (s *settingsService) GetSettings(ctx context.Context) (*models.PlatformSettings, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	settings, err := uow.SettingsRepository().Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	return settings, nil
}

// SetPlatformFee sets the fee rate in basis points. The range is enforced
// here, at the setter; payout paths trust the stored snapshot.
func (s *settingsService) SetPlatformFee(ctx context.Context, actor string, bps int32) error {
	if !models.ValidFeeRate(bps) {
		return fmt.Errorf("rate %d: %w", bps, models.ErrInvalidFeeRate)
	}

	return s.update(ctx, actor, "platform fee", func(settings *models.PlatformSettings) error {
		settings.FeeRateBps = bps
		return nil
	})
}

// SetFeeWallet sets the address receiving platform fees.
func (s *settingsService) SetFeeWallet(ctx context.Context, actor, wallet string) error {
	if wallet == "" {
		return fmt.Errorf("fee wallet cannot be empty")
	}

	return s.update(ctx, actor, "fee wallet", func(settings *models.PlatformSettings) error {
		settings.FeeWallet = wallet
		return nil
	})
}

// SetMaxBonus sets the per-grant bonus ceiling. No upper bound is enforced
// beyond owner trust.
func (s *settingsService) SetMaxBonus(ctx context.Context, actor string, amount int64) error {
	if amount < 0 {
		return fmt.Errorf("max bonus cannot be negative")
	}

	return s.update(ctx, actor, "max bonus", func(settings *models.PlatformSettings) error {
		settings.MaxBonus = amount
		return nil
	})
}

// SetBonusAccount sets the address trusted to credit wallet bonuses.
func (s *settingsService) SetBonusAccount(ctx context.Context, actor, address string) error {
	if address == "" {
		return fmt.Errorf("bonus account cannot be empty")
	}

	return s.update(ctx, actor, "bonus account", func(settings *models.PlatformSettings) error {
		settings.BonusAccount = address
		return nil
	})
}

// TransferOwnership hands the owner identity to a new address.
func (s *settingsService) TransferOwnership(ctx context.Context, actor, newOwner string) error {
	if newOwner == "" {
		return fmt.Errorf("new owner cannot be empty")
	}

	return s.update(ctx, actor, "ownership", func(settings *models.PlatformSettings) error {
		settings.Owner = newOwner
		return nil
	})
}

// update runs an owner-authorized mutation of the settings row in a single
// transaction.
func (s *settingsService) update(ctx context.Context, actor, what string, mutate func(*models.PlatformSettings) error) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	settings, err := uow.SettingsRepository().Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	if err := s.authorizer.Authorize(actor, settings); err != nil {
		return err
	}

	if err := mutate(settings); err != nil {
		return err
	}

	if err := uow.SettingsRepository().Update(ctx, settings); err != nil {
		return fmt.Errorf("failed to update settings: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"setting": what,
		"actor":   actor,
	}).Info("Platform settings updated")

	return nil
}
