package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yureien/PinocchioBot/models"
	"github.com/Yureien/PinocchioBot/repository/testutil"
)

func TestGuildRepository_CreateAndGet(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewGuildRepository(testDB.DB)
	ctx := context.Background()

	t.Run("absent guild returns nil", func(t *testing.T) {
		guild, err := repo.GetByDiscordID(ctx, 777)
		require.NoError(t, err)
		assert.Nil(t, guild)
	})

	t.Run("create with defaults", func(t *testing.T) {
		guild, err := repo.Create(ctx, 777)
		require.NoError(t, err)
		require.NotNil(t, guild)
		assert.Equal(t, int64(777), guild.DiscordID)
		assert.False(t, guild.CoinDrops)
		assert.NotEmpty(t, guild.WelcomeText)
	})

	t.Run("create is idempotent", func(t *testing.T) {
		guild, err := repo.Create(ctx, 777)
		require.NoError(t, err)
		assert.NotNil(t, guild)
	})
}

func TestGuildRepository_UpdateSettings(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewGuildRepository(testDB.DB)
	ctx := context.Background()

	_, err := repo.Create(ctx, 777)
	require.NoError(t, err)

	coinDrops := true
	channel := int64(12345)
	err = repo.UpdateSettings(ctx, 777, models.GuildSettingsUpdate{
		CoinDrops:        &coinDrops,
		JoinLeaveChannel: &channel,
	})
	require.NoError(t, err)

	guild, err := repo.GetByDiscordID(ctx, 777)
	require.NoError(t, err)
	assert.True(t, guild.CoinDrops)
	require.NotNil(t, guild.JoinLeaveChannel)
	assert.Equal(t, int64(12345), *guild.JoinLeaveChannel)

	// Nil fields stay untouched
	welcome := "Welcome aboard!"
	err = repo.UpdateSettings(ctx, 777, models.GuildSettingsUpdate{
		WelcomeText: &welcome,
	})
	require.NoError(t, err)

	guild, err = repo.GetByDiscordID(ctx, 777)
	require.NoError(t, err)
	assert.True(t, guild.CoinDrops)
	assert.Equal(t, "Welcome aboard!", guild.WelcomeText)
}
