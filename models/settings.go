package models

import (
	"time"
)

// PlatformSettings holds the owner-managed configuration. A single row,
// mutated only through owner-authorized operations.
type PlatformSettings struct {
	Owner        string    `db:"owner_address"`
	FeeWallet    string    `db:"fee_wallet"`
	FeeRateBps   int32     `db:"fee_rate_bps"`
	MaxBonus     int64     `db:"max_bonus"`
	BonusAccount string    `db:"bonus_account"`
	UpdatedAt    time.Time `db:"updated_at"`
}
