package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Yureien/PinocchioBot/config"
	"github.com/Yureien/PinocchioBot/models"
)

type rewardFixture struct {
	service    RewardService
	memberRepo *MockMemberRepository
	rollRepo   *MockRollWindowRepository
	uow        *MockUnitOfWork
}

func newRewardFixture(ctx context.Context) *rewardFixture {
	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockMemberRepo := new(MockMemberRepository)
	mockRollRepo := new(MockRollWindowRepository)

	mockUoW.SetRepositories(mockMemberRepo, new(MockGuildRepository), new(MockWaifuRepository), new(MockPurchasedWaifuRepository), mockRollRepo)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	return &rewardFixture{
		service:    NewRewardService(mockFactory),
		memberRepo: mockMemberRepo,
		rollRepo:   mockRollRepo,
		uow:        mockUoW,
	}
}

func TestTierMultiplier(t *testing.T) {
	assert.Equal(t, int64(1), TierMultiplier(models.RewardDaily, 0))
	assert.Equal(t, int64(2), TierMultiplier(models.RewardDaily, 1))
	assert.Equal(t, int64(4), TierMultiplier(models.RewardDaily, 2))
	assert.Equal(t, int64(1), TierMultiplier(models.RewardHourly, 1))
	assert.Equal(t, int64(2), TierMultiplier(models.RewardHourly, 2))
	assert.Equal(t, int64(2), TierMultiplier(models.RewardVote, 1))
	assert.Equal(t, int64(4), TierMultiplier(models.RewardVote, 2))
	// Dev tier gets the top multiplier
	assert.Equal(t, int64(4), TierMultiplier(models.RewardDaily, 5))
}

func TestTotalRolls(t *testing.T) {
	assert.Equal(t, 10, TotalRolls(0))
	assert.Equal(t, 30, TotalRolls(1))
	assert.Equal(t, 90, TotalRolls(2))
	assert.Equal(t, 10800, TotalRolls(5))
}

func TestRewardService_ClaimDaily_Success(t *testing.T) {
	ctx := context.Background()
	f := newRewardFixture(ctx)

	member := &models.Member{ID: 1, DiscordID: 123456, Wallet: 100}
	f.memberRepo.On("GetByDiscordID", ctx, int64(123456)).Return(member, nil)
	f.memberRepo.On("ClaimReward", ctx, int64(123456), models.RewardDaily, DailyInterval).Return(true, nil)

	// Amount is either the base or the 10x jackpot
	f.memberRepo.On("AddBalance", ctx, int64(123456), mock.MatchedBy(func(amount int64) bool {
		return amount == 300 || amount == 3000
	})).Return(int64(400), nil)

	result, err := f.service.ClaimDaily(ctx, 123456)
	require.NoError(t, err)
	assert.Equal(t, models.RewardDaily, result.Kind)
	if result.Jackpot {
		assert.Equal(t, int64(3000), result.Amount)
	} else {
		assert.Equal(t, int64(300), result.Amount)
	}
	assert.Equal(t, int64(400), result.NewBalance)

	f.uow.AssertCalled(t, "Commit")
}

func TestRewardService_ClaimDaily_LazyCreatesMember(t *testing.T) {
	ctx := context.Background()
	f := newRewardFixture(ctx)

	created := &models.Member{ID: 7, DiscordID: 123456}
	f.memberRepo.On("GetByDiscordID", ctx, int64(123456)).Return(nil, nil)
	f.memberRepo.On("Create", ctx, int64(123456)).Return(created, nil)
	f.memberRepo.On("ClaimReward", ctx, int64(123456), models.RewardDaily, DailyInterval).Return(true, nil)
	f.memberRepo.On("AddBalance", ctx, int64(123456), mock.AnythingOfType("int64")).Return(int64(300), nil)

	_, err := f.service.ClaimDaily(ctx, 123456)
	require.NoError(t, err)
	f.memberRepo.AssertCalled(t, "Create", ctx, int64(123456))
}

func TestRewardService_ClaimDaily_OnCooldown(t *testing.T) {
	ctx := context.Background()
	f := newRewardFixture(ctx)

	lastClaimed := time.Now().Add(-2 * time.Hour)
	member := &models.Member{ID: 1, DiscordID: 123456, LastDailies: &lastClaimed}
	f.memberRepo.On("GetByDiscordID", ctx, int64(123456)).Return(member, nil)
	f.memberRepo.On("ClaimReward", ctx, int64(123456), models.RewardDaily, DailyInterval).Return(false, nil)

	result, err := f.service.ClaimDaily(ctx, 123456)
	assert.Nil(t, result)

	var cooldown *CooldownError
	require.ErrorAs(t, err, &cooldown)
	assert.Equal(t, "daily", cooldown.Kind)
	// 24h interval minus 2h elapsed, with slack for test runtime
	assert.InDelta(t, (22 * time.Hour).Seconds(), cooldown.Remaining.Seconds(), 5)

	f.memberRepo.AssertNotCalled(t, "AddBalance", mock.Anything, mock.Anything, mock.Anything)
	f.uow.AssertNotCalled(t, "Commit")
}

func TestRewardService_ClaimHourly_RequiresTier(t *testing.T) {
	ctx := context.Background()
	f := newRewardFixture(ctx)

	member := &models.Member{ID: 1, DiscordID: 123456, Tier: 0}
	f.memberRepo.On("GetByDiscordID", ctx, int64(123456)).Return(member, nil)

	result, err := f.service.ClaimHourly(ctx, 123456)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrTierTooLow)
	f.memberRepo.AssertNotCalled(t, "ClaimReward", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRewardService_ClaimHourly_Tier2Doubles(t *testing.T) {
	ctx := context.Background()
	f := newRewardFixture(ctx)

	member := &models.Member{ID: 1, DiscordID: 123456, Tier: 2}
	f.memberRepo.On("GetByDiscordID", ctx, int64(123456)).Return(member, nil)
	f.memberRepo.On("ClaimReward", ctx, int64(123456), models.RewardHourly, HourlyInterval).Return(true, nil)
	f.memberRepo.On("AddBalance", ctx, int64(123456), int64(300)).Return(int64(300), nil)

	result, err := f.service.ClaimHourly(ctx, 123456)
	require.NoError(t, err)
	assert.Equal(t, int64(300), result.Amount)
	assert.Equal(t, int64(2), result.Multiplier)
}

func TestRewardService_ClaimVote_WeekendDoubles(t *testing.T) {
	ctx := context.Background()
	f := newRewardFixture(ctx)

	member := &models.Member{ID: 1, DiscordID: 123456, Tier: 1}
	f.memberRepo.On("GetByDiscordID", ctx, int64(123456)).Return(member, nil)
	f.memberRepo.On("ClaimReward", ctx, int64(123456), models.RewardVote, VoteInterval).Return(true, nil)

	// 500 base, x2 weekend, x2 tier 1
	f.memberRepo.On("AddBalance", ctx, int64(123456), int64(2000)).Return(int64(2000), nil)

	result, err := f.service.ClaimVote(ctx, 123456, true)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), result.Amount)
}

func TestRewardService_NextClaim(t *testing.T) {
	ctx := context.Background()
	f := newRewardFixture(ctx)

	lastClaimed := time.Now().Add(-30 * time.Minute)
	member := &models.Member{ID: 1, DiscordID: 123456, Tier: 1, LastHourlies: &lastClaimed}
	f.memberRepo.On("GetByDiscordID", ctx, int64(123456)).Return(member, nil)

	remaining, err := f.service.NextClaim(ctx, 123456, models.RewardHourly)
	require.NoError(t, err)
	assert.InDelta(t, (30 * time.Minute).Seconds(), remaining.Seconds(), 5)
}

func TestRewardService_NextClaim_NeverClaimed(t *testing.T) {
	ctx := context.Background()
	f := newRewardFixture(ctx)

	member := &models.Member{ID: 1, DiscordID: 123456}
	f.memberRepo.On("GetByDiscordID", ctx, int64(123456)).Return(member, nil)

	remaining, err := f.service.NextClaim(ctx, 123456, models.RewardDaily)
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), remaining)
}

func TestRewardService_ConsumeRoll_Success(t *testing.T) {
	ctx := context.Background()
	f := newRewardFixture(ctx)

	member := &models.Member{ID: 1, DiscordID: 123456, Tier: 0}
	f.memberRepo.On("GetByDiscordID", ctx, int64(123456)).Return(member, nil)
	f.rollRepo.On("ConsumeRoll", ctx, int64(777), int64(123456), 10, config.Get().RollInterval).Return(true, nil)

	err := f.service.ConsumeRoll(ctx, 777, 123456)
	require.NoError(t, err)
	f.uow.AssertCalled(t, "Commit")
}

func TestRewardService_ConsumeRoll_Exhausted(t *testing.T) {
	ctx := context.Background()
	f := newRewardFixture(ctx)

	member := &models.Member{ID: 1, DiscordID: 123456, Tier: 0}
	window := &RollWindow{
		GuildID:     777,
		MemberID:    123456,
		RollsUsed:   10,
		WindowStart: time.Now().Add(-time.Hour),
	}
	f.memberRepo.On("GetByDiscordID", ctx, int64(123456)).Return(member, nil)
	f.rollRepo.On("ConsumeRoll", ctx, int64(777), int64(123456), 10, config.Get().RollInterval).Return(false, nil)
	f.rollRepo.On("Get", ctx, int64(777), int64(123456)).Return(window, nil)

	err := f.service.ConsumeRoll(ctx, 777, 123456)

	var limitErr *RollLimitError
	require.ErrorAs(t, err, &limitErr)
	// 3h window minus 1h elapsed
	assert.InDelta(t, (2 * time.Hour).Seconds(), limitErr.ResetIn.Seconds(), 5)
	f.uow.AssertNotCalled(t, "Commit")
}

func TestRewardService_RollsLeft_FreshWindow(t *testing.T) {
	ctx := context.Background()
	f := newRewardFixture(ctx)

	member := &models.Member{ID: 1, DiscordID: 123456, Tier: 1}
	f.memberRepo.On("GetByDiscordID", ctx, int64(123456)).Return(member, nil)
	f.rollRepo.On("Get", ctx, int64(777), int64(123456)).Return(nil, nil)

	status, err := f.service.RollsLeft(ctx, 777, 123456)
	require.NoError(t, err)
	assert.Equal(t, 30, status.Total)
	assert.Equal(t, 30, status.Remaining)
	assert.Equal(t, 0, status.Used)
}

func TestRewardService_RollsLeft_ExpiredWindowResets(t *testing.T) {
	ctx := context.Background()
	f := newRewardFixture(ctx)

	member := &models.Member{ID: 1, DiscordID: 123456, Tier: 0}
	window := &RollWindow{
		GuildID:     777,
		MemberID:    123456,
		RollsUsed:   10,
		WindowStart: time.Now().Add(-4 * time.Hour),
	}
	f.memberRepo.On("GetByDiscordID", ctx, int64(123456)).Return(member, nil)
	f.rollRepo.On("Get", ctx, int64(777), int64(123456)).Return(window, nil)

	status, err := f.service.RollsLeft(ctx, 777, 123456)
	require.NoError(t, err)
	assert.Equal(t, 10, status.Remaining)
	assert.Equal(t, 0, status.Used)
}
