package repository

import (
	"context"
	"testing"
	"time"

	"stakehouse/models"
	"stakehouse/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGameRepository_Create(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewGameRepository(testDB.DB)
	ctx := context.Background()

	t.Run("successful creation", func(t *testing.T) {
		game := testutil.CreateTestGame("game-1", "addr_p1", "addr_p2")
		err := repo.Create(ctx, game)
		require.NoError(t, err)
		assert.False(t, game.CreatedAt.IsZero())
	})

	t.Run("duplicate id rejected", func(t *testing.T) {
		game := testutil.CreateTestGame("game-dup", "addr_p1", "addr_p2")
		err := repo.Create(ctx, game)
		require.NoError(t, err)

		again := testutil.CreateTestGame("game-dup", "addr_p3", "addr_p4")
		err = repo.Create(ctx, again)
		require.Error(t, err)
		assert.ErrorIs(t, err, models.ErrDuplicateGameID)
	})

	t.Run("id stays used after resolution", func(t *testing.T) {
		game := testutil.CreateTestGame("game-done", "addr_p1", "addr_p2")
		err := repo.Create(ctx, game)
		require.NoError(t, err)

		winner := "addr_p1"
		now := time.Now()
		game.Winner = &winner
		game.Status = models.GameStatusCompleted
		game.ResolvedAt = &now
		err = repo.Update(ctx, game)
		require.NoError(t, err)

		// Resolved games still block reuse of the identifier
		again := testutil.CreateTestGame("game-done", "addr_p1", "addr_p2")
		err = repo.Create(ctx, again)
		assert.ErrorIs(t, err, models.ErrDuplicateGameID)
	})
}

func TestGameRepository_GetByID(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewGameRepository(testDB.DB)
	ctx := context.Background()

	t.Run("unknown id returns nil", func(t *testing.T) {
		game, err := repo.GetByID(ctx, "no-such-game")
		require.NoError(t, err)
		assert.Nil(t, game)
	})

	t.Run("round trips fee rate snapshot", func(t *testing.T) {
		game := testutil.CreateTestGameWithDeposit("game-snap", "addr_p1", "addr_p2", 250000)
		game.FeeRateBps = 750
		err := repo.Create(ctx, game)
		require.NoError(t, err)

		got, err := repo.GetByID(ctx, "game-snap")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, int64(250000), got.Deposit)
		assert.Equal(t, int32(750), got.FeeRateBps)
		assert.Equal(t, models.GameStatusInitial, got.Status)
		assert.Nil(t, got.Winner)
		assert.Nil(t, got.ResolvedAt)
	})
}

func TestGameRepository_Update(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewGameRepository(testDB.DB)
	ctx := context.Background()

	game := testutil.CreateTestGame("game-upd", "addr_p1", "addr_p2")
	err := repo.Create(ctx, game)
	require.NoError(t, err)

	t.Run("records resolution", func(t *testing.T) {
		winner := "addr_p2"
		now := time.Now()
		game.Winner = &winner
		game.Status = models.GameStatusCompleted
		game.ResolvedAt = &now

		err := repo.Update(ctx, game)
		require.NoError(t, err)

		got, err := repo.GetByID(ctx, "game-upd")
		require.NoError(t, err)
		require.NotNil(t, got.Winner)
		assert.Equal(t, "addr_p2", *got.Winner)
		assert.Equal(t, models.GameStatusCompleted, got.Status)
		assert.NotNil(t, got.ResolvedAt)
	})

	t.Run("unknown game", func(t *testing.T) {
		missing := testutil.CreateTestGame("game-missing", "a", "b")
		err := repo.Update(ctx, missing)
		assert.Error(t, err)
	})
}

func TestGameRepository_GetByStatus(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewGameRepository(testDB.DB)
	ctx := context.Background()

	for _, id := range []string{"open-1", "open-2"} {
		err := repo.Create(ctx, testutil.CreateTestGame(id, "addr_p1", "addr_p2"))
		require.NoError(t, err)
	}

	resolved := testutil.CreateTestGame("quit-1", "addr_p1", "addr_p2")
	err := repo.Create(ctx, resolved)
	require.NoError(t, err)
	now := time.Now()
	resolved.Status = models.GameStatusMutualQuit
	resolved.ResolvedAt = &now
	require.NoError(t, repo.Update(ctx, resolved))

	open, err := repo.GetByStatus(ctx, models.GameStatusInitial)
	require.NoError(t, err)
	assert.Len(t, open, 2)

	quit, err := repo.GetByStatus(ctx, models.GameStatusMutualQuit)
	require.NoError(t, err)
	require.Len(t, quit, 1)
	assert.Equal(t, "quit-1", quit[0].ID)
}

func TestGameRepository_GetByPlayer(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewGameRepository(testDB.DB)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testutil.CreateTestGame("g1", "addr_a", "addr_b")))
	require.NoError(t, repo.Create(ctx, testutil.CreateTestGame("g2", "addr_c", "addr_a")))
	require.NoError(t, repo.Create(ctx, testutil.CreateTestGame("g3", "addr_c", "addr_d")))

	games, err := repo.GetByPlayer(ctx, "addr_a", 10)
	require.NoError(t, err)
	assert.Len(t, games, 2)

	games, err = repo.GetByPlayer(ctx, "addr_a", 1)
	require.NoError(t, err)
	assert.Len(t, games, 1)
}
