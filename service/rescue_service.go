package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// rescueService implements the RescueService interface
type rescueService struct {
	uowFactory UnitOfWorkFactory
}

// NewRescueService creates a new rescue service
func NewRescueService(uowFactory UnitOfWorkFactory) RescueService {
	return &rescueService{
		uowFactory: uowFactory,
	}
}

// Rescue deletes ownership rows whose owner has left the guild. Deletion
// never touches the ledger; departed members keep their money.
func (s *rescueService) Rescue(ctx context.Context, guildID int64, presentMemberIDs []int64) (int64, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	owners, err := uow.PurchasedWaifuRepository().ListOwnerIDs(ctx, guildID)
	if err != nil {
		return 0, fmt.Errorf("failed to list owners: %w", err)
	}

	present := make(map[int64]struct{}, len(presentMemberIDs))
	for _, id := range presentMemberIDs {
		present[id] = struct{}{}
	}

	var departed []int64
	for _, owner := range owners {
		if _, ok := present[owner]; !ok {
			departed = append(departed, owner)
		}
	}
	if len(departed) == 0 {
		return 0, nil
	}

	deleted, err := uow.PurchasedWaifuRepository().DeleteByGuildAndMembers(ctx, guildID, departed)
	if err != nil {
		return 0, fmt.Errorf("failed to delete ownerships: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"guild_id":        guildID,
		"departed_owners": len(departed),
		"waifus_rescued":  deleted,
	}).Info("Rescued waifus from departed members")

	return deleted, nil
}

// Divorce deletes ownership rows for one member or the whole guild
func (s *rescueService) Divorce(ctx context.Context, guildID int64, target Target) (int64, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	var deleted int64
	var err error
	if target.All() {
		deleted, err = uow.PurchasedWaifuRepository().DeleteByGuild(ctx, guildID)
	} else {
		deleted, err = uow.PurchasedWaifuRepository().DeleteByGuildAndMember(ctx, guildID, target.MemberID())
	}
	if err != nil {
		return 0, fmt.Errorf("failed to delete ownerships: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return deleted, nil
}
