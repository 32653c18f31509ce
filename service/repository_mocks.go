package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/Yureien/PinocchioBot/events"
	"github.com/Yureien/PinocchioBot/models"
)

// MockMemberRepository is a mock implementation of MemberRepository
type MockMemberRepository struct {
	mock.Mock
}

func (m *MockMemberRepository) GetByDiscordID(ctx context.Context, discordID int64) (*models.Member, error) {
	args := m.Called(ctx, discordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Member), args.Error(1)
}

func (m *MockMemberRepository) Create(ctx context.Context, discordID int64) (*models.Member, error) {
	args := m.Called(ctx, discordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Member), args.Error(1)
}

func (m *MockMemberRepository) AddBalance(ctx context.Context, discordID int64, amount int64) (int64, error) {
	args := m.Called(ctx, discordID, amount)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMemberRepository) DeductBalance(ctx context.Context, discordID int64, amount int64) (int64, error) {
	args := m.Called(ctx, discordID, amount)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMemberRepository) ClaimReward(ctx context.Context, discordID int64, kind models.RewardKind, interval time.Duration) (bool, error) {
	args := m.Called(ctx, discordID, kind, interval)
	return args.Bool(0), args.Error(1)
}

func (m *MockMemberRepository) SetTier(ctx context.Context, discordID int64, tier int16) error {
	args := m.Called(ctx, discordID, tier)
	return args.Error(0)
}

// MockGuildRepository is a mock implementation of GuildRepository
type MockGuildRepository struct {
	mock.Mock
}

func (m *MockGuildRepository) GetByDiscordID(ctx context.Context, discordID int64) (*models.Guild, error) {
	args := m.Called(ctx, discordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Guild), args.Error(1)
}

func (m *MockGuildRepository) Create(ctx context.Context, discordID int64) (*models.Guild, error) {
	args := m.Called(ctx, discordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Guild), args.Error(1)
}

func (m *MockGuildRepository) UpdateSettings(ctx context.Context, discordID int64, update models.GuildSettingsUpdate) error {
	args := m.Called(ctx, discordID, update)
	return args.Error(0)
}

// MockWaifuRepository is a mock implementation of WaifuRepository
type MockWaifuRepository struct {
	mock.Mock
}

func (m *MockWaifuRepository) GetByID(ctx context.Context, id int64) (*models.Waifu, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Waifu), args.Error(1)
}

func (m *MockWaifuRepository) GetByIDs(ctx context.Context, ids []int64) ([]*models.Waifu, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Waifu), args.Error(1)
}

func (m *MockWaifuRepository) GetAll(ctx context.Context) ([]*models.Waifu, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Waifu), args.Error(1)
}

func (m *MockWaifuRepository) GetRandom(ctx context.Context) (*models.Waifu, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Waifu), args.Error(1)
}

// MockPurchasedWaifuRepository is a mock implementation of PurchasedWaifuRepository
type MockPurchasedWaifuRepository struct {
	mock.Mock
}

func (m *MockPurchasedWaifuRepository) Create(ctx context.Context, pw *models.PurchasedWaifu) error {
	args := m.Called(ctx, pw)
	return args.Error(0)
}

func (m *MockPurchasedWaifuRepository) FindByGuildAndWaifu(ctx context.Context, guildID, waifuID int64) (*models.PurchasedWaifu, error) {
	args := m.Called(ctx, guildID, waifuID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PurchasedWaifu), args.Error(1)
}

func (m *MockPurchasedWaifuRepository) FindByGuildMemberAndWaifu(ctx context.Context, guildID, memberDiscordID, waifuID int64) (*models.PurchasedWaifu, error) {
	args := m.Called(ctx, guildID, memberDiscordID, waifuID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PurchasedWaifu), args.Error(1)
}

func (m *MockPurchasedWaifuRepository) ListByGuildAndMember(ctx context.Context, guildID, memberDiscordID int64) ([]*models.PurchasedWaifu, error) {
	args := m.Called(ctx, guildID, memberDiscordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PurchasedWaifu), args.Error(1)
}

func (m *MockPurchasedWaifuRepository) ListOwnerIDs(ctx context.Context, guildID int64) ([]int64, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockPurchasedWaifuRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPurchasedWaifuRepository) DeleteByIDs(ctx context.Context, ids []int64) (int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPurchasedWaifuRepository) DeleteByGuild(ctx context.Context, guildID int64) (int64, error) {
	args := m.Called(ctx, guildID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPurchasedWaifuRepository) DeleteByGuildAndMember(ctx context.Context, guildID, memberDiscordID int64) (int64, error) {
	args := m.Called(ctx, guildID, memberDiscordID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPurchasedWaifuRepository) DeleteByGuildAndMembers(ctx context.Context, guildID int64, memberDiscordIDs []int64) (int64, error) {
	args := m.Called(ctx, guildID, memberDiscordIDs)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPurchasedWaifuRepository) SetFavorite(ctx context.Context, id int64, favorite bool) error {
	args := m.Called(ctx, id, favorite)
	return args.Error(0)
}

func (m *MockPurchasedWaifuRepository) TransferOwnership(ctx context.Context, id int64, newMemberID, newMemberDiscordID, purchasedFor int64) error {
	args := m.Called(ctx, id, newMemberID, newMemberDiscordID, purchasedFor)
	return args.Error(0)
}

// MockRollWindowRepository is a mock implementation of RollWindowRepository
type MockRollWindowRepository struct {
	mock.Mock
}

func (m *MockRollWindowRepository) Get(ctx context.Context, guildID, memberID int64) (*RollWindow, error) {
	args := m.Called(ctx, guildID, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*RollWindow), args.Error(1)
}

func (m *MockRollWindowRepository) ConsumeRoll(ctx context.Context, guildID, memberID int64, limit int, interval time.Duration) (bool, error) {
	args := m.Called(ctx, guildID, memberID, limit, interval)
	return args.Bool(0), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// NoopEventPublisher swallows events in tests that do not assert on them
type NoopEventPublisher struct{}

func (NoopEventPublisher) Publish(events.Event) {}

// MockUnitOfWork is a mock implementation of UnitOfWork
type MockUnitOfWork struct {
	mock.Mock

	memberRepo         MemberRepository
	guildRepo          GuildRepository
	waifuRepo          WaifuRepository
	purchasedWaifuRepo PurchasedWaifuRepository
	rollWindowRepo     RollWindowRepository
	eventBus           EventPublisher
}

// SetRepositories configures which repository mocks the unit of work hands out
func (m *MockUnitOfWork) SetRepositories(
	memberRepo MemberRepository,
	guildRepo GuildRepository,
	waifuRepo WaifuRepository,
	purchasedWaifuRepo PurchasedWaifuRepository,
	rollWindowRepo RollWindowRepository,
) {
	m.memberRepo = memberRepo
	m.guildRepo = guildRepo
	m.waifuRepo = waifuRepo
	m.purchasedWaifuRepo = purchasedWaifuRepo
	m.rollWindowRepo = rollWindowRepo
	m.eventBus = NoopEventPublisher{}
}

// SetEventBus overrides the event publisher for tests asserting on events
func (m *MockUnitOfWork) SetEventBus(bus EventPublisher) {
	m.eventBus = bus
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) MemberRepository() MemberRepository {
	return m.memberRepo
}

func (m *MockUnitOfWork) GuildRepository() GuildRepository {
	return m.guildRepo
}

func (m *MockUnitOfWork) WaifuRepository() WaifuRepository {
	return m.waifuRepo
}

func (m *MockUnitOfWork) PurchasedWaifuRepository() PurchasedWaifuRepository {
	return m.purchasedWaifuRepo
}

func (m *MockUnitOfWork) RollWindowRepository() RollWindowRepository {
	return m.rollWindowRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	return m.eventBus
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}

// MockExchangePartner is a mock implementation of ExchangePartner
type MockExchangePartner struct {
	mock.Mock
}

func (m *MockExchangePartner) CreateTransaction(ctx context.Context, currency string, amount int64, memberID int64) (*models.ExchangeReceipt, error) {
	args := m.Called(ctx, currency, amount, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ExchangeReceipt), args.Error(1)
}
