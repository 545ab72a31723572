package repository

import (
	"context"
	"testing"

	"stakehouse/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBonusRepository_AddAmount(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewBonusRepository(testDB.DB)
	ctx := context.Background()

	t.Run("creates entry on first grant", func(t *testing.T) {
		err := repo.AddAmount(ctx, "addr_alice", 1000)
		require.NoError(t, err)

		entry, err := repo.GetByAddress(ctx, "addr_alice")
		require.NoError(t, err)
		require.NotNil(t, entry)
		assert.Equal(t, int64(1000), entry.Amount)
	})

	t.Run("repeated grants accumulate", func(t *testing.T) {
		err := repo.AddAmount(ctx, "addr_bob", 500)
		require.NoError(t, err)
		err = repo.AddAmount(ctx, "addr_bob", 700)
		require.NoError(t, err)

		entry, err := repo.GetByAddress(ctx, "addr_bob")
		require.NoError(t, err)
		assert.Equal(t, int64(1200), entry.Amount)
	})

	t.Run("non-positive amount rejected", func(t *testing.T) {
		err := repo.AddAmount(ctx, "addr_carol", 0)
		assert.Error(t, err)
	})
}

func TestBonusRepository_Zero(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewBonusRepository(testDB.DB)
	ctx := context.Background()

	t.Run("returns prior amount and resets", func(t *testing.T) {
		require.NoError(t, repo.AddAmount(ctx, "addr_dave", 2500))

		amount, err := repo.Zero(ctx, "addr_dave")
		require.NoError(t, err)
		assert.Equal(t, int64(2500), amount)

		entry, err := repo.GetByAddress(ctx, "addr_dave")
		require.NoError(t, err)
		require.NotNil(t, entry)
		assert.Equal(t, int64(0), entry.Amount)
	})

	t.Run("second claim yields zero", func(t *testing.T) {
		require.NoError(t, repo.AddAmount(ctx, "addr_eve", 100))

		amount, err := repo.Zero(ctx, "addr_eve")
		require.NoError(t, err)
		assert.Equal(t, int64(100), amount)

		amount, err = repo.Zero(ctx, "addr_eve")
		require.NoError(t, err)
		assert.Equal(t, int64(0), amount)
	})

	t.Run("no entry yields zero", func(t *testing.T) {
		amount, err := repo.Zero(ctx, "addr_ghost")
		require.NoError(t, err)
		assert.Equal(t, int64(0), amount)
	})
}

func TestBonusRepository_GetAllPositive(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewBonusRepository(testDB.DB)
	ctx := context.Background()

	require.NoError(t, repo.AddAmount(ctx, "addr_a", 300))
	require.NoError(t, repo.AddAmount(ctx, "addr_b", 900))
	require.NoError(t, repo.AddAmount(ctx, "addr_c", 50))

	// Claimed bonuses drop out of the listing
	_, err := repo.Zero(ctx, "addr_c")
	require.NoError(t, err)

	entries, err := repo.GetAllPositive(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "addr_b", entries[0].Address)
	assert.Equal(t, "addr_a", entries[1].Address)
}

func TestSettingsRepository(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewSettingsRepository(testDB.DB)
	ctx := context.Background()

	t.Run("get before bootstrap returns nil", func(t *testing.T) {
		settings, err := repo.Get(ctx)
		require.NoError(t, err)
		assert.Nil(t, settings)
	})

	t.Run("get or create seeds defaults once", func(t *testing.T) {
		defaults := testutil.CreateTestSettings("addr_owner")
		settings, err := repo.GetOrCreate(ctx, defaults)
		require.NoError(t, err)
		assert.Equal(t, "addr_owner", settings.Owner)
		assert.Equal(t, int32(500), settings.FeeRateBps)

		// Second call with different defaults does not overwrite
		other := testutil.CreateTestSettings("addr_impostor")
		settings, err = repo.GetOrCreate(ctx, other)
		require.NoError(t, err)
		assert.Equal(t, "addr_owner", settings.Owner)
	})

	t.Run("update persists", func(t *testing.T) {
		settings, err := repo.Get(ctx)
		require.NoError(t, err)
		require.NotNil(t, settings)

		settings.FeeRateBps = 250
		settings.MaxBonus = 42
		err = repo.Update(ctx, settings)
		require.NoError(t, err)

		got, err := repo.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, int32(250), got.FeeRateBps)
		assert.Equal(t, int64(42), got.MaxBonus)
	})
}
