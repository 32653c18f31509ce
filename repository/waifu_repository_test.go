package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yureien/PinocchioBot/repository/testutil"
)

func TestWaifuRepository_Get(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewWaifuRepository(testDB.DB)
	ctx := context.Background()

	testutil.SeedWaifu(t, testDB.DB, 1, "Rem", "Re:Zero", 11000)
	testutil.SeedWaifu(t, testDB.DB, 2, "Megumin", "Konosuba", 9000)
	testutil.SeedWaifu(t, testDB.DB, 3, "Holo", "Spice and Wolf", 12000)

	t.Run("by id", func(t *testing.T) {
		waifu, err := repo.GetByID(ctx, 2)
		require.NoError(t, err)
		require.NotNil(t, waifu)
		assert.Equal(t, "Megumin", waifu.Name)
		assert.Equal(t, int64(9000), waifu.Price)
	})

	t.Run("absent id returns nil", func(t *testing.T) {
		waifu, err := repo.GetByID(ctx, 99)
		require.NoError(t, err)
		assert.Nil(t, waifu)
	})

	t.Run("by ids ordered", func(t *testing.T) {
		waifus, err := repo.GetByIDs(ctx, []int64{3, 1})
		require.NoError(t, err)
		require.Len(t, waifus, 2)
		assert.Equal(t, int64(1), waifus[0].ID)
		assert.Equal(t, int64(3), waifus[1].ID)
	})

	t.Run("all ordered", func(t *testing.T) {
		waifus, err := repo.GetAll(ctx)
		require.NoError(t, err)
		require.Len(t, waifus, 3)
		assert.Equal(t, int64(1), waifus[0].ID)
		assert.Equal(t, int64(3), waifus[2].ID)
	})
}

func TestWaifuRepository_GetRandom(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewWaifuRepository(testDB.DB)
	ctx := context.Background()

	t.Run("empty catalog returns nil", func(t *testing.T) {
		waifu, err := repo.GetRandom(ctx)
		require.NoError(t, err)
		assert.Nil(t, waifu)
	})

	t.Run("draws from the catalog", func(t *testing.T) {
		testutil.SeedWaifu(t, testDB.DB, 1, "Rem", "Re:Zero", 11000)
		testutil.SeedWaifu(t, testDB.DB, 2, "Megumin", "Konosuba", 9000)

		waifu, err := repo.GetRandom(ctx)
		require.NoError(t, err)
		require.NotNil(t, waifu)
		assert.Contains(t, []int64{1, 2}, waifu.ID)
	})
}
