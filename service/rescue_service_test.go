package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newRescueFixture(ctx context.Context) (RescueService, *MockPurchasedWaifuRepository, *MockUnitOfWork) {
	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockPurchasedRepo := new(MockPurchasedWaifuRepository)

	mockUoW.SetRepositories(new(MockMemberRepository), new(MockGuildRepository), new(MockWaifuRepository), mockPurchasedRepo, new(MockRollWindowRepository))

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	return NewRescueService(mockFactory), mockPurchasedRepo, mockUoW
}

func TestRescueService_Rescue(t *testing.T) {
	ctx := context.Background()
	service, purchasedRepo, uow := newRescueFixture(ctx)

	// Members 111 and 222 own waifus; only 111 is still in the guild
	purchasedRepo.On("ListOwnerIDs", ctx, int64(777)).Return([]int64{111, 222}, nil)
	purchasedRepo.On("DeleteByGuildAndMembers", ctx, int64(777), []int64{222}).Return(int64(3), nil)

	deleted, err := service.Rescue(ctx, 777, []int64{111, 333})
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)
	uow.AssertCalled(t, "Commit")
}

func TestRescueService_Rescue_NoDepartedOwners(t *testing.T) {
	ctx := context.Background()
	service, purchasedRepo, uow := newRescueFixture(ctx)

	purchasedRepo.On("ListOwnerIDs", ctx, int64(777)).Return([]int64{111}, nil)

	deleted, err := service.Rescue(ctx, 777, []int64{111})
	require.NoError(t, err)
	assert.Equal(t, int64(0), deleted)
	purchasedRepo.AssertNotCalled(t, "DeleteByGuildAndMembers", mock.Anything, mock.Anything, mock.Anything)
	uow.AssertNotCalled(t, "Commit")
}

func TestRescueService_Divorce_SingleMember(t *testing.T) {
	ctx := context.Background()
	service, purchasedRepo, _ := newRescueFixture(ctx)

	purchasedRepo.On("DeleteByGuildAndMember", ctx, int64(777), int64(111)).Return(int64(2), nil)

	deleted, err := service.Divorce(ctx, 777, TargetMember(111))
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
}

func TestRescueService_Divorce_WholeGuild(t *testing.T) {
	ctx := context.Background()
	service, purchasedRepo, _ := newRescueFixture(ctx)

	purchasedRepo.On("DeleteByGuild", ctx, int64(777)).Return(int64(10), nil)

	deleted, err := service.Divorce(ctx, 777, TargetAll())
	require.NoError(t, err)
	assert.Equal(t, int64(10), deleted)
	purchasedRepo.AssertNotCalled(t, "DeleteByGuildAndMember", mock.Anything, mock.Anything, mock.Anything)
}
