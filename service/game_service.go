package service

import (
	"context"
	"fmt"
	"time"

	"stakehouse/events"
	"stakehouse/models"
	"stakehouse/token"

	log "github.com/sirupsen/logrus"
)

type gameService struct {
	uowFactory  UnitOfWorkFactory
	tokenLedger token.Client
	authorizer  Authorizer
}

// NewGameService creates a new game service
func NewGameService(uowFactory UnitOfWorkFactory, tokenLedger token.Client, authorizer Authorizer) GameService {
	return &gameService{
		uowFactory:  uowFactory,
		tokenLedger: tokenLedger,
		authorizer:  authorizer,
	}
}

// OpenGame locks both players' stakes and records a new game. The current
// platform fee rate is snapshotted into the record so later rate changes
// never alter an open game's payout.
func (s *gameService) OpenGame(ctx context.Context, actor, id, player1, player2 string, deposit int64) (*models.Game, error) {
	if id == "" {
		return nil, fmt.Errorf("game id cannot be empty")
	}
	if deposit <= 0 {
		return nil, fmt.Errorf("deposit must be positive")
	}
	if deposit > models.MaxDeposit {
		return nil, fmt.Errorf("deposit exceeds maximum stake of %d", models.MaxDeposit)
	}
	if player1 == player2 {
		return nil, fmt.Errorf("players must be distinct")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	settings, err := uow.SettingsRepository().Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	if err := s.authorizer.Authorize(actor, settings); err != nil {
		return nil, err
	}

	existing, err := uow.GameRepository().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to check game id: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("id %q: %w", id, models.ErrDuplicateGameID)
	}

	// Balance checks are made per player so the caller learns which side
	// is short.
	wallet1, err := uow.WalletRepository().GetByAddress(ctx, player1)
	if err != nil {
		return nil, fmt.Errorf("failed to get player 1 wallet: %w", err)
	}
	if wallet1 == nil || !wallet1.HasSufficientBalance(deposit) {
		return nil, models.ErrInsufficientBalancePlayer1
	}

	wallet2, err := uow.WalletRepository().GetByAddress(ctx, player2)
	if err != nil {
		return nil, fmt.Errorf("failed to get player 2 wallet: %w", err)
	}
	if wallet2 == nil || !wallet2.HasSufficientBalance(deposit) {
		return nil, models.ErrInsufficientBalancePlayer2
	}

	game := &models.Game{
		ID:         id,
		Player1:    player1,
		Player2:    player2,
		Deposit:    deposit,
		FeeRateBps: settings.FeeRateBps,
		Status:     models.GameStatusInitial,
	}
	if err := uow.GameRepository().Create(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	if err := s.lockStake(ctx, uow, game, player1, wallet1.Balance); err != nil {
		return nil, err
	}
	if err := s.lockStake(ctx, uow, game, player2, wallet2.Balance); err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.GameOpenedEvent{
		GameID:     game.ID,
		Player1:    player1,
		Player2:    player2,
		Deposit:    deposit,
		FeeRateBps: game.FeeRateBps,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"gameId":  game.ID,
		"deposit": deposit,
		"feeBps":  game.FeeRateBps,
	}).Info("Game opened")

	return game, nil
}

// lockStake debits one player's wallet by the game deposit and records the
// audit entry (called within the open transaction).
func (s *gameService) lockStake(ctx context.Context, uow UnitOfWork, game *models.Game, player string, balanceBefore int64) error {
	if err := uow.WalletRepository().DeductBalance(ctx, player, game.Deposit); err != nil {
		return fmt.Errorf("failed to lock stake for %s: %w", player, err)
	}

	entry := &models.BalanceEntry{
		Address:       player,
		BalanceBefore: balanceBefore,
		BalanceAfter:  balanceBefore - game.Deposit,
		ChangeAmount:  -game.Deposit,
		EntryType:     models.EntryTypeGameLock,
		Metadata: map[string]any{
			"opponent": game.Opponent(player),
		},
		RelatedID:   &game.ID,
		RelatedType: relatedTypePtr(models.RelatedTypeGame),
	}
	return RecordBalanceChange(ctx, uow, entry)
}

// CompleteGame declares a winner and releases the escrowed pool: the payout
// is credited to the winner's wallet and the fee, computed from the rate
// snapshot taken at open time, goes to the fee wallet on the external ledger.
func (s *gameService) CompleteGame(ctx context.Context, actor, id, winner string) (*models.GameResult, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	settings, err := uow.SettingsRepository().Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	if err := s.authorizer.Authorize(actor, settings); err != nil {
		return nil, err
	}

	game, err := s.getOpenGame(ctx, uow, id)
	if err != nil {
		return nil, err
	}
	if !game.IsParticipant(winner) {
		return nil, fmt.Errorf("address %q: %w", winner, models.ErrNotParticipant)
	}

	fee, payout := models.SplitPool(game.Deposit, game.FeeRateBps)

	winnerWallet, err := uow.WalletRepository().GetOrCreate(ctx, winner)
	if err != nil {
		return nil, fmt.Errorf("failed to get winner wallet: %w", err)
	}

	if err := uow.WalletRepository().AddBalance(ctx, winner, payout); err != nil {
		return nil, fmt.Errorf("failed to credit winner: %w", err)
	}

	entry := &models.BalanceEntry{
		Address:       winner,
		BalanceBefore: winnerWallet.Balance,
		BalanceAfter:  winnerWallet.Balance + payout,
		ChangeAmount:  payout,
		EntryType:     models.EntryTypeGamePayout,
		Metadata: map[string]any{
			"fee":      fee,
			"fee_bps":  game.FeeRateBps,
			"opponent": game.Opponent(winner),
		},
		RelatedID:   &game.ID,
		RelatedType: relatedTypePtr(models.RelatedTypeGame),
	}
	if err := RecordBalanceChange(ctx, uow, entry); err != nil {
		return nil, err
	}

	if fee > 0 {
		if err := s.tokenLedger.Transfer(ctx, settings.FeeWallet, fee); err != nil {
			return nil, fmt.Errorf("%w: %v", models.ErrTransferFailed, err)
		}
	}

	now := time.Now()
	game.Status = models.GameStatusCompleted
	game.Winner = &winner
	game.ResolvedAt = &now
	if err := uow.GameRepository().Update(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to update game: %w", err)
	}

	uow.EventBus().Publish(events.GameCompletedEvent{
		GameID: game.ID,
		Winner: winner,
		Payout: payout,
		Fee:    fee,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"gameId": game.ID,
		"winner": winner,
		"payout": payout,
		"fee":    fee,
	}).Info("Game completed")

	return &models.GameResult{
		Game:   game,
		Winner: winner,
		Payout: payout,
		Fee:    fee,
	}, nil
}

// MutualQuit cancels a game and returns both stakes unchanged. No fee is
// charged.
func (s *gameService) MutualQuit(ctx context.Context, actor, id string) (*models.Game, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	settings, err := uow.SettingsRepository().Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	if err := s.authorizer.Authorize(actor, settings); err != nil {
		return nil, err
	}

	game, err := s.getOpenGame(ctx, uow, id)
	if err != nil {
		return nil, err
	}

	for _, player := range []string{game.Player1, game.Player2} {
		wallet, err := uow.WalletRepository().GetOrCreate(ctx, player)
		if err != nil {
			return nil, fmt.Errorf("failed to get wallet for %s: %w", player, err)
		}
		if err := uow.WalletRepository().AddBalance(ctx, player, game.Deposit); err != nil {
			return nil, fmt.Errorf("failed to refund %s: %w", player, err)
		}

		entry := &models.BalanceEntry{
			Address:       player,
			BalanceBefore: wallet.Balance,
			BalanceAfter:  wallet.Balance + game.Deposit,
			ChangeAmount:  game.Deposit,
			EntryType:     models.EntryTypeGameRefund,
			RelatedID:     &game.ID,
			RelatedType:   relatedTypePtr(models.RelatedTypeGame),
		}
		if err := RecordBalanceChange(ctx, uow, entry); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	game.Status = models.GameStatusMutualQuit
	game.ResolvedAt = &now
	if err := uow.GameRepository().Update(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to update game: %w", err)
	}

	uow.EventBus().Publish(events.GameMutualQuitEvent{
		GameID:  game.ID,
		Player1: game.Player1,
		Player2: game.Player2,
		Deposit: game.Deposit,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"gameId": game.ID,
	}).Info("Game mutually quit")

	return game, nil
}

// getOpenGame loads a game and checks it is still in the initial state
// (called within a transaction).
func (s *gameService) getOpenGame(ctx context.Context, uow UnitOfWork, id string) (*models.Game, error) {
	game, err := uow.GameRepository().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	if game == nil {
		return nil, fmt.Errorf("id %q: %w", id, models.ErrGameNotFound)
	}
	if game.Status != models.GameStatusInitial {
		return nil, fmt.Errorf("id %q has status %q: %w", id, game.Status, models.ErrGameNotInitial)
	}
	return game, nil
}

// GetGame retrieves a game record by id.
func (s *gameService) GetGame(ctx context.Context, id string) (*models.Game, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	game, err := uow.GameRepository().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return game, nil
}
