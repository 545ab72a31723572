package models

import (
	"errors"
	"fmt"
)

// Domain errors. Services return these (wrapped with context) so callers can
// distinguish failure modes with errors.Is.
var (
	// ErrUnauthorized indicates the acting address is not the owner.
	ErrUnauthorized = errors.New("caller is not the owner")

	// ErrNotBonusAccount indicates a wallet bonus credit from an address
	// other than the configured bonus account.
	ErrNotBonusAccount = errors.New("caller is not the bonus account")

	// ErrInvalidFeeRate indicates a platform fee outside 0-10000 basis points.
	ErrInvalidFeeRate = errors.New("fee rate out of range")

	// ErrDuplicateGameID indicates an attempt to reuse a game id.
	ErrDuplicateGameID = errors.New("game id already exists")

	// ErrGameNotFound indicates an unknown game id.
	ErrGameNotFound = errors.New("game does not exist")

	// ErrGameNotInitial indicates a terminal operation on a game that has
	// already been completed or mutually quit.
	ErrGameNotInitial = errors.New("game not in initial state")

	// ErrNotParticipant indicates a declared winner that is neither player.
	ErrNotParticipant = errors.New("winner is not a participant")

	// ErrInsufficientBalance indicates a wallet debit exceeding the balance.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrUnequalArrayLength indicates a bonus grant with mismatched
	// users/amounts sequences.
	ErrUnequalArrayLength = errors.New("users and amounts differ in length")

	// ErrMaxBonusExceeded indicates a single grant above the max bonus cap.
	ErrMaxBonusExceeded = errors.New("bonus amount exceeds max permissible bonus")

	// ErrNoBonus indicates a claim with zero accrued bonus.
	ErrNoBonus = errors.New("no bonus for user")

	// ErrTransferFailed indicates the external token ledger rejected a
	// transfer or transferFrom.
	ErrTransferFailed = errors.New("external token transfer failed")
)

// Per-player insufficient balance failures at game open. Both match
// ErrInsufficientBalance under errors.Is so generic handling still works.
var (
	ErrInsufficientBalancePlayer1 = fmt.Errorf("player 1: %w", ErrInsufficientBalance)
	ErrInsufficientBalancePlayer2 = fmt.Errorf("player 2: %w", ErrInsufficientBalance)
)
