package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yureien/PinocchioBot/models"
)

func newExchangeFixture(ctx context.Context, partner ExchangePartner) (ExchangeService, *MockMemberRepository, *MockUnitOfWork) {
	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockMemberRepo := new(MockMemberRepository)

	mockUoW.SetRepositories(mockMemberRepo, new(MockGuildRepository), new(MockWaifuRepository), new(MockPurchasedWaifuRepository), new(MockRollWindowRepository))

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	return NewExchangeService(mockFactory, partner), mockMemberRepo, mockUoW
}

func TestExchangeService_Success(t *testing.T) {
	ctx := context.Background()
	partner := new(MockExchangePartner)
	service, memberRepo, _ := newExchangeFixture(ctx, partner)

	member := &models.Member{ID: 1, DiscordID: 123456, Wallet: 1000}
	receipt := &models.ExchangeReceipt{TransactionID: "tx-1", Currency: "DTS", Amount: 500}

	memberRepo.On("GetByDiscordID", ctx, int64(123456)).Return(member, nil)
	memberRepo.On("DeductBalance", ctx, int64(123456), int64(500)).Return(int64(500), nil)
	partner.On("CreateTransaction", ctx, "DTS", int64(500), int64(123456)).Return(receipt, nil)

	got, err := service.Exchange(ctx, 123456, "DTS", 500)
	require.NoError(t, err)
	assert.Equal(t, "tx-1", got.TransactionID)
	memberRepo.AssertNotCalled(t, "AddBalance", ctx, int64(123456), int64(500))
}

func TestExchangeService_PartnerFailureRefunds(t *testing.T) {
	ctx := context.Background()
	partner := new(MockExchangePartner)
	service, memberRepo, _ := newExchangeFixture(ctx, partner)

	member := &models.Member{ID: 1, DiscordID: 123456, Wallet: 1000}

	memberRepo.On("GetByDiscordID", ctx, int64(123456)).Return(member, nil)
	memberRepo.On("DeductBalance", ctx, int64(123456), int64(500)).Return(int64(500), nil)
	partner.On("CreateTransaction", ctx, "DTS", int64(500), int64(123456)).Return(nil, errors.New("service unavailable"))

	// The compensating refund
	memberRepo.On("AddBalance", ctx, int64(123456), int64(500)).Return(int64(1000), nil)

	got, err := service.Exchange(ctx, 123456, "DTS", 500)
	assert.Nil(t, got)

	var extErr *ExternalServiceError
	require.ErrorAs(t, err, &extErr)
	assert.Equal(t, "discoin", extErr.Service)

	memberRepo.AssertCalled(t, "AddBalance", ctx, int64(123456), int64(500))
}

func TestExchangeService_InsufficientFunds(t *testing.T) {
	ctx := context.Background()
	partner := new(MockExchangePartner)
	service, memberRepo, uow := newExchangeFixture(ctx, partner)

	member := &models.Member{ID: 1, DiscordID: 123456, Wallet: 100}

	memberRepo.On("GetByDiscordID", ctx, int64(123456)).Return(member, nil)
	memberRepo.On("DeductBalance", ctx, int64(123456), int64(500)).Return(int64(0), ErrInsufficientFunds)

	got, err := service.Exchange(ctx, 123456, "DTS", 500)
	assert.Nil(t, got)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	partner.AssertNotCalled(t, "CreateTransaction", ctx, "DTS", int64(500), int64(123456))
	uow.AssertNotCalled(t, "Commit")
}
