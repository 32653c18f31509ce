package repository

import (
	"context"
	"fmt"

	"github.com/Yureien/PinocchioBot/database"
	"github.com/Yureien/PinocchioBot/events"
	"github.com/Yureien/PinocchioBot/service"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// queryable abstracts over a pgx pool and a pgx transaction
type queryable interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// unitOfWork implements the UnitOfWork interface
type unitOfWork struct {
	db               *database.DB
	tx               pgx.Tx
	ctx              context.Context
	transactionalBus *events.TransactionalBus
	memberRepo       service.MemberRepository
	guildRepo        service.GuildRepository
	waifuRepo        service.WaifuRepository
	purchasedRepo    service.PurchasedWaifuRepository
	rollWindowRepo   service.RollWindowRepository
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory
func NewUnitOfWorkFactory(db *database.DB, eventBus *events.Bus) service.UnitOfWorkFactory {
	return &unitOfWorkFactory{
		db:       db,
		eventBus: eventBus,
	}
}

type unitOfWorkFactory struct {
	db       *database.DB
	eventBus *events.Bus
}

func (f *unitOfWorkFactory) Create() service.UnitOfWork {
	return &unitOfWork{
		db:               f.db,
		transactionalBus: events.NewTransactionalBus(f.eventBus),
	}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	// Create repositories with the transaction
	u.memberRepo = newMemberRepositoryWithTx(tx)
	u.guildRepo = newGuildRepositoryWithTx(tx)
	u.waifuRepo = newWaifuRepositoryWithTx(tx)
	u.purchasedRepo = newPurchasedWaifuRepositoryWithTx(tx)
	u.rollWindowRepo = newRollWindowRepositoryWithTx(tx)

	return nil
}

// Commit commits the transaction
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	err := u.tx.Commit(u.ctx)
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	u.tx = nil

	// Flush pending events after successful commit
	if u.transactionalBus != nil {
		u.transactionalBus.Flush(u.ctx)
	}

	return nil
}

// Rollback rolls back the transaction
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil // Nothing to rollback
	}

	err := u.tx.Rollback(u.ctx)
	if err != nil && err != pgx.ErrTxClosed {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	u.tx = nil

	// Discard pending events on rollback
	if u.transactionalBus != nil {
		u.transactionalBus.Discard()
	}

	return nil
}

// MemberRepository returns the member repository for this unit of work
func (u *unitOfWork) MemberRepository() service.MemberRepository {
	if u.memberRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.memberRepo
}

// GuildRepository returns the guild repository for this unit of work
func (u *unitOfWork) GuildRepository() service.GuildRepository {
	if u.guildRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.guildRepo
}

// WaifuRepository returns the waifu catalog repository for this unit of work
func (u *unitOfWork) WaifuRepository() service.WaifuRepository {
	if u.waifuRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.waifuRepo
}

// PurchasedWaifuRepository returns the ownership repository for this unit of work
func (u *unitOfWork) PurchasedWaifuRepository() service.PurchasedWaifuRepository {
	if u.purchasedRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.purchasedRepo
}

// RollWindowRepository returns the roll window repository for this unit of work
func (u *unitOfWork) RollWindowRepository() service.RollWindowRepository {
	if u.rollWindowRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.rollWindowRepo
}

// EventBus returns the transactional event bus for this unit of work
func (u *unitOfWork) EventBus() service.EventPublisher {
	if u.transactionalBus == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.transactionalBus
}
