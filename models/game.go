package models

import (
	"time"
)

// GameStatus represents the state of an escrowed game
type GameStatus string

const (
	GameStatusInitial    GameStatus = "initial"
	GameStatusCompleted  GameStatus = "completed"
	GameStatusMutualQuit GameStatus = "mutual_quit"
)

// Game represents an escrowed two-player game. Both players stake the same
// deposit; the platform fee rate is snapshotted at open time so later rate
// changes never affect an open game's payout.
type Game struct {
	ID         string     `db:"id"`
	Player1    string     `db:"player1"`
	Player2    string     `db:"player2"`
	Deposit    int64      `db:"deposit"`
	FeeRateBps int32      `db:"fee_rate_bps"`
	Winner     *string    `db:"winner"`
	Status     GameStatus `db:"status"`
	CreatedAt  time.Time  `db:"created_at"`
	ResolvedAt *time.Time `db:"resolved_at"`
}

// IsParticipant checks if an address is one of the two players.
func (g *Game) IsParticipant(address string) bool {
	return g.Player1 == address || g.Player2 == address
}

// Opponent returns the other player's address for a given participant, or
// the empty string for a non-participant.
func (g *Game) Opponent(address string) string {
	if g.Player1 == address {
		return g.Player2
	}
	if g.Player2 == address {
		return g.Player1
	}
	return ""
}

// IsTerminal reports whether the game has reached a terminal state.
func (g *Game) IsTerminal() bool {
	return g.Status == GameStatusCompleted || g.Status == GameStatusMutualQuit
}

// Pool returns the total escrowed amount for the game.
func (g *Game) Pool() int64 {
	return g.Deposit * 2
}

// GameResult represents the outcome of a completed game.
type GameResult struct {
	Game   *Game
	Winner string
	Payout int64
	Fee    int64
}
