package repository

import (
	"context"
	"errors"
	"fmt"

	"stakehouse/database"
	"stakehouse/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// GameRepository implements the GameRepository interface
type GameRepository struct {
	q queryable
}

// NewGameRepository creates a new game repository
func NewGameRepository(db *database.DB) *GameRepository {
	return &GameRepository{q: db.Pool}
}

// newGameRepositoryWithTx creates a new game repository with a transaction
func newGameRepositoryWithTx(tx queryable) *GameRepository {
	return &GameRepository{q: tx}
}

// Create inserts a new game, failing with models.ErrDuplicateGameID if the
// identifier has ever been used
func (r *GameRepository) Create(ctx context.Context, game *models.Game) error {
	query := `
		INSERT INTO games (id, player1, player2, deposit, fee_rate_bps, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	err := r.q.QueryRow(ctx, query,
		game.ID,
		game.Player1,
		game.Player2,
		game.Deposit,
		game.FeeRateBps,
		game.Status,
	).Scan(&game.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: %s", models.ErrDuplicateGameID, game.ID)
		}
		return fmt.Errorf("failed to create game %s: %w", game.ID, err)
	}

	return nil
}

// GetByID retrieves a game by its identifier, returning nil if unknown
func (r *GameRepository) GetByID(ctx context.Context, id string) (*models.Game, error) {
	query := `
		SELECT id, player1, player2, deposit, fee_rate_bps, winner, status, created_at, resolved_at
		FROM games
		WHERE id = $1
	`

	var game models.Game
	err := r.q.QueryRow(ctx, query, id).Scan(
		&game.ID,
		&game.Player1,
		&game.Player2,
		&game.Deposit,
		&game.FeeRateBps,
		&game.Winner,
		&game.Status,
		&game.CreatedAt,
		&game.ResolvedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game %s: %w", id, err)
	}

	return &game, nil
}

// Update persists a game's resolution fields
func (r *GameRepository) Update(ctx context.Context, game *models.Game) error {
	query := `
		UPDATE games
		SET winner = $1, status = $2, resolved_at = $3
		WHERE id = $4
	`

	result, err := r.q.Exec(ctx, query, game.Winner, game.Status, game.ResolvedAt, game.ID)
	if err != nil {
		return fmt.Errorf("failed to update game %s: %w", game.ID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("game %s not found", game.ID)
	}

	return nil
}

// GetByStatus returns all games in a given status, oldest first
func (r *GameRepository) GetByStatus(ctx context.Context, status models.GameStatus) ([]*models.Game, error) {
	query := `
		SELECT id, player1, player2, deposit, fee_rate_bps, winner, status, created_at, resolved_at
		FROM games
		WHERE status = $1
		ORDER BY created_at ASC
	`

	rows, err := r.q.Query(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("failed to get games with status %s: %w", status, err)
	}
	defer rows.Close()

	return scanGames(rows)
}

// GetByPlayer returns a player's most recent games
func (r *GameRepository) GetByPlayer(ctx context.Context, address string, limit int) ([]*models.Game, error) {
	query := `
		SELECT id, player1, player2, deposit, fee_rate_bps, winner, status, created_at, resolved_at
		FROM games
		WHERE player1 = $1 OR player2 = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, address, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get games for player %s: %w", address, err)
	}
	defer rows.Close()

	return scanGames(rows)
}

func scanGames(rows pgx.Rows) ([]*models.Game, error) {
	var games []*models.Game
	for rows.Next() {
		var game models.Game
		err := rows.Scan(
			&game.ID,
			&game.Player1,
			&game.Player2,
			&game.Deposit,
			&game.FeeRateBps,
			&game.Winner,
			&game.Status,
			&game.CreatedAt,
			&game.ResolvedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		games = append(games, &game)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate games: %w", err)
	}

	return games, nil
}
