package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Yureien/PinocchioBot/models"
)

func newMemberFixture(ctx context.Context) (MemberService, *MockMemberRepository, *MockUnitOfWork) {
	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockMemberRepo := new(MockMemberRepository)

	mockUoW.SetRepositories(mockMemberRepo, new(MockGuildRepository), new(MockWaifuRepository), new(MockPurchasedWaifuRepository), new(MockRollWindowRepository))

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	return NewMemberService(mockFactory), mockMemberRepo, mockUoW
}

func TestMemberService_GetOrCreateMember_Existing(t *testing.T) {
	ctx := context.Background()
	service, memberRepo, _ := newMemberFixture(ctx)

	existing := &models.Member{ID: 1, DiscordID: 123456, Wallet: 500}
	memberRepo.On("GetByDiscordID", ctx, int64(123456)).Return(existing, nil)

	member, err := service.GetOrCreateMember(ctx, 123456)
	require.NoError(t, err)
	assert.Equal(t, int64(500), member.Wallet)
	memberRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestMemberService_GetOrCreateMember_LazyCreate(t *testing.T) {
	ctx := context.Background()
	service, memberRepo, uow := newMemberFixture(ctx)

	created := &models.Member{ID: 7, DiscordID: 123456}
	memberRepo.On("GetByDiscordID", ctx, int64(123456)).Return(nil, nil)
	memberRepo.On("Create", ctx, int64(123456)).Return(created, nil)

	member, err := service.GetOrCreateMember(ctx, 123456)
	require.NoError(t, err)
	assert.Equal(t, int64(7), member.ID)
	uow.AssertCalled(t, "Commit")
}

func TestMemberService_Wallet_UnknownMember(t *testing.T) {
	ctx := context.Background()
	service, memberRepo, _ := newMemberFixture(ctx)

	memberRepo.On("GetByDiscordID", ctx, int64(123456)).Return(nil, nil)

	_, err := service.Wallet(ctx, 123456)
	assert.ErrorIs(t, err, ErrUnknownMember)
}

func TestMemberService_Transfer(t *testing.T) {
	ctx := context.Background()
	service, memberRepo, uow := newMemberFixture(ctx)

	sender := &models.Member{ID: 1, DiscordID: 111, Wallet: 1000}
	recipient := &models.Member{ID: 2, DiscordID: 222}

	memberRepo.On("GetByDiscordID", ctx, int64(111)).Return(sender, nil)
	memberRepo.On("GetByDiscordID", ctx, int64(222)).Return(recipient, nil)
	memberRepo.On("DeductBalance", ctx, int64(111), int64(400)).Return(int64(600), nil)
	memberRepo.On("AddBalance", ctx, int64(222), int64(400)).Return(int64(400), nil)

	err := service.Transfer(ctx, 111, 222, 400)
	require.NoError(t, err)
	uow.AssertCalled(t, "Commit")
}

func TestMemberService_Transfer_InsufficientFunds(t *testing.T) {
	ctx := context.Background()
	service, memberRepo, uow := newMemberFixture(ctx)

	sender := &models.Member{ID: 1, DiscordID: 111, Wallet: 100}
	recipient := &models.Member{ID: 2, DiscordID: 222}

	memberRepo.On("GetByDiscordID", ctx, int64(111)).Return(sender, nil)
	memberRepo.On("GetByDiscordID", ctx, int64(222)).Return(recipient, nil)
	memberRepo.On("DeductBalance", ctx, int64(111), int64(400)).Return(int64(0), ErrInsufficientFunds)

	err := service.Transfer(ctx, 111, 222, 400)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	memberRepo.AssertNotCalled(t, "AddBalance", ctx, int64(222), int64(400))
	uow.AssertNotCalled(t, "Commit")
}
