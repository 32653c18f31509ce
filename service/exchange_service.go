package service

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/Yureien/PinocchioBot/events"
	"github.com/Yureien/PinocchioBot/models"
)

// exchangeService implements the ExchangeService interface
type exchangeService struct {
	uowFactory UnitOfWorkFactory
	partner    ExchangePartner
}

// NewExchangeService creates a new exchange service
func NewExchangeService(uowFactory UnitOfWorkFactory, partner ExchangePartner) ExchangeService {
	return &exchangeService{
		uowFactory: uowFactory,
		partner:    partner,
	}
}

// Exchange debits the member locally and then creates the partner
// transaction. The partner call sits outside the local transaction, so a
// partner failure is compensated by refunding the debit.
func (s *exchangeService) Exchange(ctx context.Context, discordID int64, currency string, amount int64) (*models.ExchangeReceipt, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	member, err := uow.MemberRepository().GetByDiscordID(ctx, discordID)
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	if member == nil {
		return nil, ErrUnknownMember
	}

	newBalance, err := uow.MemberRepository().DeductBalance(ctx, discordID, amount)
	if err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.WalletChangeEvent{
		MemberID:     discordID,
		OldBalance:   newBalance + amount,
		NewBalance:   newBalance,
		ChangeAmount: -amount,
		Reason:       "exchange_out",
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	receipt, err := s.partner.CreateTransaction(ctx, currency, amount, discordID)
	if err != nil {
		s.refund(ctx, discordID, amount)
		return nil, &ExternalServiceError{Service: "discoin", Err: err}
	}

	return receipt, nil
}

func (s *exchangeService) refund(ctx context.Context, discordID, amount int64) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		log.WithError(err).WithField("member_id", discordID).Error("Failed to begin refund transaction")
		return
	}
	defer uow.Rollback()

	newBalance, err := uow.MemberRepository().AddBalance(ctx, discordID, amount)
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"member_id": discordID,
			"amount":    amount,
		}).Error("Failed to refund exchange debit")
		return
	}

	uow.EventBus().Publish(events.WalletChangeEvent{
		MemberID:     discordID,
		OldBalance:   newBalance - amount,
		NewBalance:   newBalance,
		ChangeAmount: amount,
		Reason:       "exchange_refund",
	})

	if err := uow.Commit(); err != nil {
		log.WithError(err).WithField("member_id", discordID).Error("Failed to commit exchange refund")
	}
}
