package service

import (
	"context"
	"fmt"

	"stakehouse/models"
	"stakehouse/token"

	log "github.com/sirupsen/logrus"
)

type walletService struct {
	uowFactory  UnitOfWorkFactory
	tokenLedger token.Client
	custody     string
}

// NewWalletService creates a new wallet service. custody is the address the
// service holds escrowed tokens under on the external ledger.
func NewWalletService(uowFactory UnitOfWorkFactory, tokenLedger token.Client, custody string) WalletService {
	return &walletService{
		uowFactory:  uowFactory,
		tokenLedger: tokenLedger,
		custody:     custody,
	}
}

// Deposit pulls amount from the user's external token balance into custody
// and credits the internal wallet by the same amount.
func (s *walletService) Deposit(ctx context.Context, address string, amount int64) (*models.Wallet, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("deposit amount must be positive")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	wallet, err := uow.WalletRepository().GetOrCreate(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	// Take custody on the external ledger before the internal credit is
	// committed; a failed pull aborts the whole operation.
	if err := s.tokenLedger.TransferFrom(ctx, address, s.custody, amount); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrTransferFailed, err)
	}

	if err := uow.WalletRepository().AddBalance(ctx, address, amount); err != nil {
		return nil, fmt.Errorf("failed to credit wallet: %w", err)
	}

	entry := &models.BalanceEntry{
		Address:       address,
		BalanceBefore: wallet.Balance,
		BalanceAfter:  wallet.Balance + amount,
		ChangeAmount:  amount,
		EntryType:     models.EntryTypeDeposit,
	}
	if err := RecordBalanceChange(ctx, uow, entry); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"address": address,
		"amount":  amount,
	}).Info("Deposit completed")

	wallet.Balance += amount
	return wallet, nil
}

// Withdraw debits the internal wallet and pushes amount back to the user on
// the external ledger. The debit commits only if the external push succeeds.
func (s *walletService) Withdraw(ctx context.Context, address string, amount int64) (*models.Wallet, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("withdraw amount must be positive")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	wallet, err := uow.WalletRepository().GetByAddress(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	if wallet == nil || !wallet.HasSufficientBalance(amount) {
		var have int64
		if wallet != nil {
			have = wallet.Balance
		}
		return nil, fmt.Errorf("have %d, need %d: %w", have, amount, models.ErrInsufficientBalance)
	}

	if err := uow.WalletRepository().DeductBalance(ctx, address, amount); err != nil {
		return nil, fmt.Errorf("failed to debit wallet: %w", err)
	}

	entry := &models.BalanceEntry{
		Address:       address,
		BalanceBefore: wallet.Balance,
		BalanceAfter:  wallet.Balance - amount,
		ChangeAmount:  -amount,
		EntryType:     models.EntryTypeWithdraw,
	}
	if err := RecordBalanceChange(ctx, uow, entry); err != nil {
		return nil, err
	}

	if err := s.tokenLedger.Transfer(ctx, address, amount); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrTransferFailed, err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"address": address,
		"amount":  amount,
	}).Info("Withdrawal completed")

	wallet.Balance -= amount
	return wallet, nil
}

// CreditBonus credits a wallet without an external transfer; the bonus
// account has already taken custody of the tokens. The caller identity is
// authenticated against the configured bonus account, never assumed.
func (s *walletService) CreditBonus(ctx context.Context, caller, address string, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("bonus credit amount must be positive")
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
	if settings == nil || caller == "" || caller != settings.BonusAccount {
		return fmt.Errorf("address %q: %w", caller, models.ErrNotBonusAccount)
	}

	wallet, err := uow.WalletRepository().GetOrCreate(ctx, address)
	if err != nil {
		return fmt.Errorf("failed to get wallet: %w", err)
	}

	if err := uow.WalletRepository().AddBalance(ctx, address, amount); err != nil {
		return fmt.Errorf("failed to credit wallet: %w", err)
	}

	entry := &models.BalanceEntry{
		Address:       address,
		BalanceBefore: wallet.Balance,
		BalanceAfter:  wallet.Balance + amount,
		ChangeAmount:  amount,
		EntryType:     models.EntryTypeBonusCredit,
		RelatedType:   relatedTypePtr(models.RelatedTypeBonus),
	}
	if err := RecordBalanceChange(ctx, uow, entry); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetWallet retrieves a wallet by address.
func (s *walletService) GetWallet(ctx context.Context, address string) (*models.Wallet, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	wallet, err := uow.WalletRepository().GetByAddress(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	return wallet, nil
}

// GetHistory returns the audit trail for an address, newest first.
func (s *walletService) GetHistory(ctx context.Context, address string, limit int) ([]*models.BalanceEntry, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	history, err := uow.BalanceHistoryRepository().GetByAddress(ctx, address, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance history: %w", err)
	}

	return history, nil
}
