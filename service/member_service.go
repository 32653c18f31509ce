package service

import (
	"context"
	"fmt"

	"github.com/Yureien/PinocchioBot/events"
	"github.com/Yureien/PinocchioBot/models"
)

// memberService implements the MemberService interface
type memberService struct {
	uowFactory UnitOfWorkFactory
}

// NewMemberService creates a new member service
func NewMemberService(uowFactory UnitOfWorkFactory) MemberService {
	return &memberService{
		uowFactory: uowFactory,
	}
}

// GetOrCreateMember retrieves an existing member or lazily creates a profile
// with an empty wallet
func (s *memberService) GetOrCreateMember(ctx context.Context, discordID int64) (*models.Member, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	member, err := uow.MemberRepository().GetByDiscordID(ctx, discordID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing member: %w", err)
	}

	if member != nil {
		return member, nil
	}

	// Database unique constraint on the Discord ID prevents duplicate profiles
	member, err = uow.MemberRepository().Create(ctx, discordID)
	if err != nil {
		return nil, fmt.Errorf("failed to create member: %w", err)
	}

	uow.EventBus().Publish(events.MemberCreatedEvent{
		MemberID:  member.ID,
		DiscordID: member.DiscordID,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return member, nil
}

// Wallet returns a member's balance
func (s *memberService) Wallet(ctx context.Context, discordID int64) (int64, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	member, err := uow.MemberRepository().GetByDiscordID(ctx, discordID)
	if err != nil {
		return 0, fmt.Errorf("failed to get member: %w", err)
	}
	if member == nil {
		return 0, ErrUnknownMember
	}

	return member.Wallet, nil
}

// Credit adds to a member's wallet, creating the member row if absent
func (s *memberService) Credit(ctx context.Context, discordID int64, amount int64, reason string) (int64, error) {
	if amount < 0 {
		return 0, fmt.Errorf("credit amount must not be negative")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	member, err := uow.MemberRepository().GetByDiscordID(ctx, discordID)
	if err != nil {
		return 0, fmt.Errorf("failed to get member: %w", err)
	}
	if member == nil {
		member, err = uow.MemberRepository().Create(ctx, discordID)
		if err != nil {
			return 0, fmt.Errorf("failed to create member: %w", err)
		}
	}

	newBalance, err := uow.MemberRepository().AddBalance(ctx, discordID, amount)
	if err != nil {
		return 0, fmt.Errorf("failed to credit member: %w", err)
	}

	uow.EventBus().Publish(events.WalletChangeEvent{
		MemberID:     discordID,
		OldBalance:   member.Wallet,
		NewBalance:   newBalance,
		ChangeAmount: amount,
		Reason:       reason,
	})

	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return newBalance, nil
}

// Transfer moves money between two members atomically: the debit and the
// credit commit together or not at all
func (s *memberService) Transfer(ctx context.Context, fromDiscordID, toDiscordID, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("transfer amount must be positive")
	}
	if fromDiscordID == toDiscordID {
		return fmt.Errorf("cannot transfer to yourself")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	toMember, err := uow.MemberRepository().GetByDiscordID(ctx, toDiscordID)
	if err != nil {
		return fmt.Errorf("failed to get recipient: %w", err)
	}
	if toMember == nil {
		if _, err := uow.MemberRepository().Create(ctx, toDiscordID); err != nil {
			return fmt.Errorf("failed to create recipient: %w", err)
		}
	}

	newFromBalance, err := uow.MemberRepository().DeductBalance(ctx, fromDiscordID, amount)
	if err != nil {
		return err
	}

	newToBalance, err := uow.MemberRepository().AddBalance(ctx, toDiscordID, amount)
	if err != nil {
		return fmt.Errorf("failed to credit recipient: %w", err)
	}

	uow.EventBus().Publish(events.WalletChangeEvent{
		MemberID:     fromDiscordID,
		OldBalance:   newFromBalance + amount,
		NewBalance:   newFromBalance,
		ChangeAmount: -amount,
		Reason:       "transfer_out",
	})
	uow.EventBus().Publish(events.WalletChangeEvent{
		MemberID:     toDiscordID,
		OldBalance:   newToBalance - amount,
		NewBalance:   newToBalance,
		ChangeAmount: amount,
		Reason:       "transfer_in",
	})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
