package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Yureien/PinocchioBot/models"
)

func newGuildFixture(ctx context.Context) (GuildService, *MockGuildRepository, *MockUnitOfWork) {
	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockGuildRepo := new(MockGuildRepository)

	mockUoW.SetRepositories(new(MockMemberRepository), mockGuildRepo, new(MockWaifuRepository), new(MockPurchasedWaifuRepository), new(MockRollWindowRepository))

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	return NewGuildService(mockFactory), mockGuildRepo, mockUoW
}

func TestGuildService_GetOrCreateGuild_Existing(t *testing.T) {
	ctx := context.Background()
	service, guildRepo, _ := newGuildFixture(ctx)

	existing := &models.Guild{ID: 1, DiscordID: 9000, CoinDrops: true}
	guildRepo.On("GetByDiscordID", ctx, int64(9000)).Return(existing, nil)

	guild, err := service.GetOrCreateGuild(ctx, 9000)
	require.NoError(t, err)
	assert.True(t, guild.CoinDrops)
	guildRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestGuildService_GetOrCreateGuild_LazyCreate(t *testing.T) {
	ctx := context.Background()
	service, guildRepo, uow := newGuildFixture(ctx)

	created := &models.Guild{ID: 3, DiscordID: 9000}
	guildRepo.On("GetByDiscordID", ctx, int64(9000)).Return(nil, nil)
	guildRepo.On("Create", ctx, int64(9000)).Return(created, nil)

	guild, err := service.GetOrCreateGuild(ctx, 9000)
	require.NoError(t, err)
	assert.Equal(t, int64(3), guild.ID)
	uow.AssertCalled(t, "Commit")
}

func TestGuildService_UpdateSettings(t *testing.T) {
	ctx := context.Background()
	service, guildRepo, uow := newGuildFixture(ctx)

	coinDrops := true
	update := models.GuildSettingsUpdate{CoinDrops: &coinDrops}

	existing := &models.Guild{ID: 1, DiscordID: 9000}
	updated := &models.Guild{ID: 1, DiscordID: 9000, CoinDrops: true}

	guildRepo.On("GetByDiscordID", ctx, int64(9000)).Return(existing, nil).Once()
	guildRepo.On("UpdateSettings", ctx, int64(9000), update).Return(nil)
	guildRepo.On("GetByDiscordID", ctx, int64(9000)).Return(updated, nil).Once()

	guild, err := service.UpdateSettings(ctx, 9000, update)
	require.NoError(t, err)
	assert.True(t, guild.CoinDrops)
	uow.AssertCalled(t, "Commit")
}

func TestGuildService_UpdateSettings_CreatesMissingGuild(t *testing.T) {
	ctx := context.Background()
	service, guildRepo, _ := newGuildFixture(ctx)

	welcome := "hello"
	update := models.GuildSettingsUpdate{WelcomeText: &welcome}

	created := &models.Guild{ID: 4, DiscordID: 9000}
	updated := &models.Guild{ID: 4, DiscordID: 9000, WelcomeText: "hello"}

	guildRepo.On("GetByDiscordID", ctx, int64(9000)).Return(nil, nil).Once()
	guildRepo.On("Create", ctx, int64(9000)).Return(created, nil)
	guildRepo.On("UpdateSettings", ctx, int64(9000), update).Return(nil)
	guildRepo.On("GetByDiscordID", ctx, int64(9000)).Return(updated, nil).Once()

	guild, err := service.UpdateSettings(ctx, 9000, update)
	require.NoError(t, err)
	assert.Equal(t, "hello", guild.WelcomeText)
}
