package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yureien/PinocchioBot/models"
	"github.com/Yureien/PinocchioBot/repository/testutil"
	"github.com/Yureien/PinocchioBot/service"
)

func TestMemberRepository_CreateAndGet(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewMemberRepository(testDB.DB)
	ctx := context.Background()

	t.Run("absent member returns nil", func(t *testing.T) {
		member, err := repo.GetByDiscordID(ctx, 123456)
		require.NoError(t, err)
		assert.Nil(t, member)
	})

	t.Run("create and retrieve", func(t *testing.T) {
		created, err := repo.Create(ctx, 123456)
		require.NoError(t, err)
		assert.NotZero(t, created.ID)
		assert.Equal(t, int64(123456), created.DiscordID)
		assert.Equal(t, int64(0), created.Wallet)
		assert.Nil(t, created.LastDailies)

		member, err := repo.GetByDiscordID(ctx, 123456)
		require.NoError(t, err)
		require.NotNil(t, member)
		assert.Equal(t, created.ID, member.ID)
	})

	t.Run("duplicate discord ID rejected", func(t *testing.T) {
		_, err := repo.Create(ctx, 123456)
		assert.Error(t, err)
	})
}

func TestMemberRepository_Balances(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewMemberRepository(testDB.DB)
	ctx := context.Background()

	testutil.SeedMember(t, testDB.DB, 111, 500)

	t.Run("add balance", func(t *testing.T) {
		newBalance, err := repo.AddBalance(ctx, 111, 300)
		require.NoError(t, err)
		assert.Equal(t, int64(800), newBalance)
	})

	t.Run("deduct balance", func(t *testing.T) {
		newBalance, err := repo.DeductBalance(ctx, 111, 200)
		require.NoError(t, err)
		assert.Equal(t, int64(600), newBalance)
	})

	t.Run("deduct more than wallet", func(t *testing.T) {
		_, err := repo.DeductBalance(ctx, 111, 10000)
		assert.ErrorIs(t, err, service.ErrInsufficientFunds)

		member, err := repo.GetByDiscordID(ctx, 111)
		require.NoError(t, err)
		assert.Equal(t, int64(600), member.Wallet)
	})

	t.Run("deduct from unknown member", func(t *testing.T) {
		_, err := repo.DeductBalance(ctx, 999, 10)
		assert.ErrorIs(t, err, service.ErrUnknownMember)
	})

	t.Run("add to unknown member", func(t *testing.T) {
		_, err := repo.AddBalance(ctx, 999, 10)
		assert.ErrorIs(t, err, service.ErrUnknownMember)
	})
}

func TestMemberRepository_ConcurrentDebits(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewMemberRepository(testDB.DB)
	ctx := context.Background()

	// 10 debits of 100 against a wallet of 500: exactly 5 may succeed
	testutil.SeedMember(t, testDB.DB, 111, 500)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.DeductBalance(ctx, 111, 100); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, succeeded)

	member, err := repo.GetByDiscordID(ctx, 111)
	require.NoError(t, err)
	assert.Equal(t, int64(0), member.Wallet)
}

func TestMemberRepository_ClaimReward(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewMemberRepository(testDB.DB)
	ctx := context.Background()

	testutil.SeedMember(t, testDB.DB, 111, 0)

	t.Run("first claim succeeds", func(t *testing.T) {
		claimed, err := repo.ClaimReward(ctx, 111, models.RewardDaily, 24*time.Hour)
		require.NoError(t, err)
		assert.True(t, claimed)

		member, err := repo.GetByDiscordID(ctx, 111)
		require.NoError(t, err)
		require.NotNil(t, member.LastDailies)
	})

	t.Run("second claim inside interval fails", func(t *testing.T) {
		claimed, err := repo.ClaimReward(ctx, 111, models.RewardDaily, 24*time.Hour)
		require.NoError(t, err)
		assert.False(t, claimed)
	})

	t.Run("claim after interval elapses", func(t *testing.T) {
		// Shrink the interval instead of waiting a day
		time.Sleep(1100 * time.Millisecond)
		claimed, err := repo.ClaimReward(ctx, 111, models.RewardDaily, time.Second)
		require.NoError(t, err)
		assert.True(t, claimed)
	})

	t.Run("reward kinds are independent", func(t *testing.T) {
		claimed, err := repo.ClaimReward(ctx, 111, models.RewardHourly, time.Hour)
		require.NoError(t, err)
		assert.True(t, claimed)

		claimed, err = repo.ClaimReward(ctx, 111, models.RewardVote, 12*time.Hour)
		require.NoError(t, err)
		assert.True(t, claimed)
	})

	t.Run("unknown member", func(t *testing.T) {
		_, err := repo.ClaimReward(ctx, 999, models.RewardDaily, 24*time.Hour)
		assert.ErrorIs(t, err, service.ErrUnknownMember)
	})
}

func TestMemberRepository_ConcurrentClaims(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewMemberRepository(testDB.DB)
	ctx := context.Background()

	testutil.SeedMember(t, testDB.DB, 111, 0)

	var wg sync.WaitGroup
	var mu sync.Mutex
	claims := 0

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			claimed, err := repo.ClaimReward(ctx, 111, models.RewardDaily, 24*time.Hour)
			if err == nil && claimed {
				mu.Lock()
				claims++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, claims)
}

func TestMemberRepository_SetTier(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewMemberRepository(testDB.DB)
	ctx := context.Background()

	testutil.SeedMember(t, testDB.DB, 111, 0)

	err := repo.SetTier(ctx, 111, 2)
	require.NoError(t, err)

	member, err := repo.GetByDiscordID(ctx, 111)
	require.NoError(t, err)
	assert.Equal(t, int16(2), member.Tier)

	err = repo.SetTier(ctx, 999, 1)
	assert.ErrorIs(t, err, service.ErrUnknownMember)
}
