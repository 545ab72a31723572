package service

import (
	"context"
	"fmt"

	"stakehouse/events"
	"stakehouse/models"
	"stakehouse/token"

	log "github.com/sirupsen/logrus"
)

type bonusService struct {
	uowFactory  UnitOfWorkFactory
	tokenLedger token.Client
	authorizer  Authorizer
	custody     string
}

// NewBonusService creates a new bonus service
func NewBonusService(uowFactory UnitOfWorkFactory, tokenLedger token.Client, authorizer Authorizer, custody string) BonusService {
	return &bonusService{
		uowFactory:  uowFactory,
		tokenLedger: tokenLedger,
		authorizer:  authorizer,
		custody:     custody,
	}
}

// GrantBonuses additively credits each user's accrual. The whole call fails
// if the sequences differ in length or any single amount exceeds the max
// bonus ceiling; no entry is touched on failure.
func (s *bonusService) GrantBonuses(ctx context.Context, actor string, addresses []string, amounts []int64) error {
	if len(addresses) != len(amounts) {
		return fmt.Errorf("%d users, %d amounts: %w", len(addresses), len(amounts), models.ErrUnequalArrayLength)
	}
	if len(addresses) == 0 {
		return fmt.Errorf("no grants given")
	}

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

	// Validate every grant before applying any; a grant batch is
	// all-or-nothing.
	for i, amount := range amounts {
		if amount <= 0 {
			return fmt.Errorf("grant for %s must be positive", addresses[i])
		}
		if amount > settings.MaxBonus {
			return fmt.Errorf("grant of %d for %s exceeds cap %d: %w",
				amount, addresses[i], settings.MaxBonus, models.ErrMaxBonusExceeded)
		}
	}

	for i, address := range addresses {
		if err := uow.BonusRepository().AddAmount(ctx, address, amounts[i]); err != nil {
			return fmt.Errorf("failed to grant bonus to %s: %w", address, err)
		}
	}

	uow.EventBus().Publish(events.BonusGrantedEvent{
		Addresses: addresses,
		Amounts:   amounts,
	})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"recipients": len(addresses),
	}).Info("Bonuses granted")

	return nil
}

// Claim converts the caller's full accrual into an external token transfer.
// The entry is zeroed before the transfer, so a repeated claim inside the
// same window finds nothing to pay out.
func (s *bonusService) Claim(ctx context.Context, address string) (int64, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	amount, err := uow.BonusRepository().Zero(ctx, address)
	if err != nil {
		return 0, fmt.Errorf("failed to zero bonus: %w", err)
	}
	if amount == 0 {
		return 0, fmt.Errorf("address %q: %w", address, models.ErrNoBonus)
	}

	if err := s.tokenLedger.Transfer(ctx, address, amount); err != nil {
		return 0, fmt.Errorf("%w: %v", models.ErrTransferFailed, err)
	}

	uow.EventBus().Publish(events.BonusClaimedEvent{
		Address: address,
		Amount:  amount,
	})

	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"address": address,
		"amount":  amount,
	}).Info("Bonus claimed")

	return amount, nil
}

// GetBonus retrieves a user's accrual.
func (s *bonusService) GetBonus(ctx context.Context, address string) (*models.BonusEntry, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	entry, err := uow.BonusRepository().GetByAddress(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("failed to get bonus: %w", err)
	}

	return entry, nil
}

// Sweep recovers the service's full external token balance to the owner.
// Escape hatch for stuck or excess funds, not part of normal flow.
func (s *bonusService) Sweep(ctx context.Context, actor string) (int64, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	settings, err := uow.SettingsRepository().Get(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get settings: %w", err)
	}
	if err := s.authorizer.Authorize(actor, settings); err != nil {
		return 0, err
	}

	balance, err := s.tokenLedger.BalanceOf(ctx, s.custody)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", models.ErrTransferFailed, err)
	}

	if balance > 0 {
		if err := s.tokenLedger.Transfer(ctx, settings.Owner, balance); err != nil {
			return 0, fmt.Errorf("%w: %v", models.ErrTransferFailed, err)
		}
	}

	uow.EventBus().Publish(events.TokenSweptEvent{
		Owner:  settings.Owner,
		Amount: balance,
	})

	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"owner":  settings.Owner,
		"amount": balance,
	}).Warn("Custody token balance swept")

	return balance, nil
}
