package models

import (
	"time"
)

// EntryType represents the kind of wallet balance change
type EntryType string

const (
	EntryTypeDeposit     EntryType = "deposit"
	EntryTypeWithdraw    EntryType = "withdraw"
	EntryTypeGameLock    EntryType = "game_lock"
	EntryTypeGamePayout  EntryType = "game_payout"
	EntryTypeGameRefund  EntryType = "game_refund"
	EntryTypeBonusCredit EntryType = "bonus_credit"
)

// RelatedType represents what entity a balance entry refers to
type RelatedType string

const (
	RelatedTypeGame  RelatedType = "game"
	RelatedTypeBonus RelatedType = "bonus"
)

// BalanceEntry is the audit record for a wallet mutation. Every internal
// balance change writes exactly one entry in the same transaction.
type BalanceEntry struct {
	ID            int64          `db:"id"`
	Address       string         `db:"address"`
	BalanceBefore int64          `db:"balance_before"`
	BalanceAfter  int64          `db:"balance_after"`
	ChangeAmount  int64          `db:"change_amount"`
	EntryType     EntryType      `db:"entry_type"`
	Metadata      map[string]any `db:"metadata"`
	RelatedID     *string        `db:"related_id"`
	RelatedType   *RelatedType   `db:"related_type"`
	CreatedAt     time.Time      `db:"created_at"`
}
