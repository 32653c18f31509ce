package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yureien/PinocchioBot/events"
	"github.com/Yureien/PinocchioBot/repository/testutil"
	"github.com/Yureien/PinocchioBot/service"
)

func TestUnitOfWork_CommitAndRollback(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	factory := NewUnitOfWorkFactory(testDB.DB, events.NewBus())
	ctx := context.Background()

	t.Run("committed work is visible", func(t *testing.T) {
		uow := factory.Create()
		require.NoError(t, uow.Begin(ctx))

		_, err := uow.MemberRepository().Create(ctx, 111)
		require.NoError(t, err)
		require.NoError(t, uow.Commit())

		member, err := NewMemberRepository(testDB.DB).GetByDiscordID(ctx, 111)
		require.NoError(t, err)
		assert.NotNil(t, member)
	})

	t.Run("rolled back work is discarded", func(t *testing.T) {
		uow := factory.Create()
		require.NoError(t, uow.Begin(ctx))

		_, err := uow.MemberRepository().Create(ctx, 222)
		require.NoError(t, err)
		require.NoError(t, uow.Rollback())

		member, err := NewMemberRepository(testDB.DB).GetByDiscordID(ctx, 222)
		require.NoError(t, err)
		assert.Nil(t, member)
	})

	t.Run("rollback after commit is a no-op", func(t *testing.T) {
		uow := factory.Create()
		require.NoError(t, uow.Begin(ctx))
		_, err := uow.MemberRepository().Create(ctx, 333)
		require.NoError(t, err)
		require.NoError(t, uow.Commit())
		require.NoError(t, uow.Rollback())
	})
}

// Full wallet lifecycle through the service layer against a real database:
// credit, purchase, depreciated sale.
func TestEconomy_EndToEnd(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	factory := NewUnitOfWorkFactory(testDB.DB, events.NewBus())
	members := service.NewMemberService(factory)
	waifus := service.NewWaifuService(factory)
	ctx := context.Background()

	testutil.SeedWaifu(t, testDB.DB, 42, "Holo", "Spice and Wolf", 250)

	// Credit 300 into a fresh wallet
	balance, err := members.Credit(ctx, 111, 300, "admin_grant")
	require.NoError(t, err)
	assert.Equal(t, int64(300), balance)

	// Buy at 250, leaving 50
	purchase, err := waifus.Purchase(ctx, 777, 111, 42, 250)
	require.NoError(t, err)
	assert.Equal(t, int64(50), purchase.NewBalance)

	// Nobody else can buy her now
	_, err = waifus.Purchase(ctx, 777, 222, 42, 250)
	assert.ErrorIs(t, err, service.ErrAlreadyOwned)

	// Sell back at 60% of the purchase price: 50 + 150 = 200
	sale, err := waifus.Sell(ctx, 777, 111, 42)
	require.NoError(t, err)
	assert.Equal(t, int64(150), sale.Refund)
	assert.Equal(t, int64(200), sale.NewBalance)

	// She is claimable again
	owner, err := waifus.Owner(ctx, 777, 42)
	require.NoError(t, err)
	assert.Nil(t, owner)

	balance, err = members.Wallet(ctx, 111)
	require.NoError(t, err)
	assert.Equal(t, int64(200), balance)
}
