package service

import (
	"context"
	"fmt"

	"github.com/Yureien/PinocchioBot/events"
	"github.com/Yureien/PinocchioBot/models"
)

// tradeService implements the TradeService interface
type tradeService struct {
	uowFactory UnitOfWorkFactory
}

// NewTradeService creates a new trade service
func NewTradeService(uowFactory UnitOfWorkFactory) TradeService {
	return &tradeService{
		uowFactory: uowFactory,
	}
}

func getOrCreateMember(ctx context.Context, repo MemberRepository, discordID int64) (*models.Member, error) {
	member, err := repo.GetByDiscordID(ctx, discordID)
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	if member == nil {
		member, err = repo.Create(ctx, discordID)
		if err != nil {
			return nil, fmt.Errorf("failed to create member: %w", err)
		}
	}
	return member, nil
}

// TradeForMoney transfers the sender's waifu to the receiver for the agreed
// price. The receiver's debit, the ownership rewrite and the sender's credit
// commit together. A traded waifu carries no resale value, so the ownership
// row is rewritten with a zero purchase price.
func (s *tradeService) TradeForMoney(ctx context.Context, guildID, senderID, receiverID, waifuID, price int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	owned, err := uow.PurchasedWaifuRepository().FindByGuildMemberAndWaifu(ctx, guildID, senderID, waifuID)
	if err != nil {
		return fmt.Errorf("failed to check ownership: %w", err)
	}
	if owned == nil {
		return ErrNotOwned
	}

	receiver, err := getOrCreateMember(ctx, uow.MemberRepository(), receiverID)
	if err != nil {
		return err
	}

	if price > 0 {
		if _, err := uow.MemberRepository().DeductBalance(ctx, receiverID, price); err != nil {
			return err
		}
	}

	err = uow.PurchasedWaifuRepository().TransferOwnership(ctx, owned.ID, receiver.ID, receiverID, 0)
	if err != nil {
		return fmt.Errorf("failed to transfer ownership: %w", err)
	}

	if price > 0 {
		if _, err := uow.MemberRepository().AddBalance(ctx, senderID, price); err != nil {
			return fmt.Errorf("failed to credit sender: %w", err)
		}
	}

	uow.EventBus().Publish(events.WaifuTradedEvent{
		GuildID:    guildID,
		SenderID:   senderID,
		ReceiverID: receiverID,
		WaifuIDs:   []int64{waifuID},
		Price:      price,
	})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// TradeWaifus swaps two waifus between sender and receiver. Both ownerships
// are re-validated inside the transaction and both rewrites commit together.
func (s *tradeService) TradeWaifus(ctx context.Context, guildID, senderID, receiverID, senderWaifuID, receiverWaifuID int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	senderOwned, err := uow.PurchasedWaifuRepository().FindByGuildMemberAndWaifu(ctx, guildID, senderID, senderWaifuID)
	if err != nil {
		return fmt.Errorf("failed to check sender ownership: %w", err)
	}
	if senderOwned == nil {
		return ErrNotOwned
	}

	receiverOwned, err := uow.PurchasedWaifuRepository().FindByGuildMemberAndWaifu(ctx, guildID, receiverID, receiverWaifuID)
	if err != nil {
		return fmt.Errorf("failed to check receiver ownership: %w", err)
	}
	if receiverOwned == nil {
		return ErrNotOwned
	}

	err = uow.PurchasedWaifuRepository().TransferOwnership(ctx, senderOwned.ID, receiverOwned.MemberID, receiverID, 0)
	if err != nil {
		return fmt.Errorf("failed to transfer sender waifu: %w", err)
	}

	err = uow.PurchasedWaifuRepository().TransferOwnership(ctx, receiverOwned.ID, senderOwned.MemberID, senderID, 0)
	if err != nil {
		return fmt.Errorf("failed to transfer receiver waifu: %w", err)
	}

	uow.EventBus().Publish(events.WaifuTradedEvent{
		GuildID:    guildID,
		SenderID:   senderID,
		ReceiverID: receiverID,
		WaifuIDs:   []int64{senderWaifuID, receiverWaifuID},
	})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
