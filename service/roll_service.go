package service

import (
	"context"
	"fmt"
	"math"

	"github.com/Yureien/PinocchioBot/config"
	"github.com/Yureien/PinocchioBot/models"
)

// rollService implements the RollService interface
type rollService struct {
	uowFactory    UnitOfWorkFactory
	rewardService RewardService
	waifuService  WaifuService
}

// NewRollService creates a new roll service
func NewRollService(uowFactory UnitOfWorkFactory, rewardService RewardService, waifuService WaifuService) RollService {
	return &rollService{
		uowFactory:    uowFactory,
		rewardService: rewardService,
		waifuService:  waifuService,
	}
}

// RollPrice computes the discounted price of a rolled waifu
func RollPrice(catalogPrice int64) int64 {
	return int64(math.Floor(float64(catalogPrice) * config.Get().PriceCut))
}

// Draw spends a roll from the roller's quota and draws a random catalog
// entry at the discounted price. The draw itself is not reserved; whoever
// claims first wins.
func (s *rollService) Draw(ctx context.Context, guildID, rollerID int64) (*RollDraw, error) {
	if err := s.rewardService.ConsumeRoll(ctx, guildID, rollerID); err != nil {
		return nil, err
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	waifu, err := uow.WaifuRepository().GetRandom(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to draw waifu: %w", err)
	}
	if waifu == nil {
		return nil, ErrWaifuNotFound
	}

	owner, err := uow.PurchasedWaifuRepository().FindByGuildAndWaifu(ctx, guildID, waifu.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check ownership: %w", err)
	}

	return &RollDraw{
		Waifu: waifu,
		Price: RollPrice(waifu.Price),
		Owner: owner,
	}, nil
}

// Claim purchases a drawn waifu for the claimer at the drawn price. The
// ownership constraint decides concurrent claimers.
func (s *rollService) Claim(ctx context.Context, guildID, claimerID, waifuID, price int64) (*models.PurchaseResult, error) {
	return s.waifuService.Purchase(ctx, guildID, claimerID, waifuID, price)
}
