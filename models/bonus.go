package models

import (
	"time"
)

// BonusEntry represents a user's accrued bonus credit. Grants accumulate;
// a claim zeroes the entry atomically with the outbound token transfer.
type BonusEntry struct {
	Address   string    `db:"address"`
	Amount    int64     `db:"amount"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// BonusGrant pairs a recipient address with a granted amount.
type BonusGrant struct {
	Address string
	Amount  int64
}
