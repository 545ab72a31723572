package testutil

import (
	"time"

	"stakehouse/models"
)

// CreateTestGame creates a game in the open state with default stakes
func CreateTestGame(id, player1, player2 string) *models.Game {
	return &models.Game{
		ID:         id,
		Player1:    player1,
		Player2:    player2,
		Deposit:    100000,
		FeeRateBps: 500,
		Status:     models.GameStatusInitial,
	}
}

// CreateTestGameWithDeposit creates a game with a specific deposit
func CreateTestGameWithDeposit(id, player1, player2 string, deposit int64) *models.Game {
	game := CreateTestGame(id, player1, player2)
	game.Deposit = deposit
	return game
}

// CreateTestBalanceEntry creates a balance history entry with default amounts
func CreateTestBalanceEntry(address string, entryType models.EntryType) *models.BalanceEntry {
	return &models.BalanceEntry{
		Address:       address,
		BalanceBefore: 100000,
		BalanceAfter:  90000,
		ChangeAmount:  -10000,
		EntryType:     entryType,
		Metadata: map[string]any{
			"test": true,
		},
		CreatedAt: time.Now(),
	}
}

// CreateTestSettings creates platform settings with sane defaults
func CreateTestSettings(owner string) *models.PlatformSettings {
	return &models.PlatformSettings{
		Owner:        owner,
		FeeWallet:    "addr_fee_wallet",
		FeeRateBps:   500,
		MaxBonus:     1000000,
		BonusAccount: "addr_bonus_account",
	}
}
