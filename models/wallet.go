package models

import (
	"time"
)

// Wallet represents a user's internal balance against custody funds,
// denominated in the external token's smallest unit. It is distinct from the
// user's balance on the external token ledger.
type Wallet struct {
	Address   string    `db:"address"`
	Balance   int64     `db:"balance"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// HasSufficientBalance checks if the wallet can cover an amount.
func (w *Wallet) HasSufficientBalance(amount int64) bool {
	return w.Balance >= amount
}
