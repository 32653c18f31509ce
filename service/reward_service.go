package service

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/Yureien/PinocchioBot/config"
	"github.com/Yureien/PinocchioBot/events"
	"github.com/Yureien/PinocchioBot/models"
)

// Claim intervals per reward kind
const (
	DailyInterval  = 24 * time.Hour
	HourlyInterval = time.Hour
	VoteInterval   = 12 * time.Hour
)

// JackpotChance is the probability of a 10x daily jackpot
const JackpotChance = 0.10

// rewardService implements the RewardService interface
type rewardService struct {
	uowFactory UnitOfWorkFactory
}

// NewRewardService creates a new reward service
func NewRewardService(uowFactory UnitOfWorkFactory) RewardService {
	return &rewardService{
		uowFactory: uowFactory,
	}
}

func rewardInterval(kind models.RewardKind) time.Duration {
	switch kind {
	case models.RewardDaily:
		return DailyInterval
	case models.RewardHourly:
		return HourlyInterval
	default:
		return VoteInterval
	}
}

// TierMultiplier returns the donator payout multiplier for a reward kind.
// Dailies and vote rewards pay 4x at tier 2 and 2x at tier 1; hourlies pay
// 2x at tier 2.
func TierMultiplier(kind models.RewardKind, tier int16) int64 {
	cfg := config.Get()
	switch {
	case tier >= cfg.DonatorTier2:
		if kind == models.RewardHourly {
			return 2
		}
		return 4
	case tier >= cfg.DonatorTier1:
		if kind == models.RewardHourly {
			return 1
		}
		return 2
	default:
		return 1
	}
}

// TotalRolls returns the roll quota for a tier within one roll window
func TotalRolls(tier int16) int {
	cfg := config.Get()
	switch {
	case tier >= cfg.DevTier:
		// Effectively unlimited
		return 3 * 3600
	case tier >= cfg.DonatorTier2:
		return 90
	case tier >= cfg.DonatorTier1:
		return 30
	default:
		return 10
	}
}

// ClaimDaily claims the daily reward
func (s *rewardService) ClaimDaily(ctx context.Context, discordID int64) (*models.RewardResult, error) {
	jackpot := rand.Float64() < JackpotChance
	return s.claim(ctx, discordID, models.RewardDaily, config.Get().DailiesAmount, jackpot, false)
}

// ClaimHourly claims the hourly reward; donators only
func (s *rewardService) ClaimHourly(ctx context.Context, discordID int64) (*models.RewardResult, error) {
	return s.claim(ctx, discordID, models.RewardHourly, config.Get().HourliesAmount, false, false)
}

// ClaimVote claims the vote reward
func (s *rewardService) ClaimVote(ctx context.Context, discordID int64, weekend bool) (*models.RewardResult, error) {
	return s.claim(ctx, discordID, models.RewardVote, config.Get().VoteReward, false, weekend)
}

func (s *rewardService) claim(ctx context.Context, discordID int64, kind models.RewardKind, base int64, jackpot, weekend bool) (*models.RewardResult, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	member, err := uow.MemberRepository().GetByDiscordID(ctx, discordID)
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	if member == nil {
		member, err = uow.MemberRepository().Create(ctx, discordID)
		if err != nil {
			return nil, fmt.Errorf("failed to create member: %w", err)
		}
	}

	if kind == models.RewardHourly && member.Tier < config.Get().DonatorTier1 {
		return nil, ErrTierTooLow
	}

	interval := rewardInterval(kind)
	claimed, err := uow.MemberRepository().ClaimReward(ctx, discordID, kind, interval)
	if err != nil {
		return nil, fmt.Errorf("failed to claim %s reward: %w", kind, err)
	}
	if !claimed {
		return nil, &CooldownError{
			Kind:      string(kind),
			Remaining: remainingCooldown(member, kind, interval),
		}
	}

	amount := base
	if jackpot {
		amount *= 10
	}
	if weekend {
		amount *= 2
	}
	multiplier := TierMultiplier(kind, member.Tier)
	amount *= multiplier

	newBalance, err := uow.MemberRepository().AddBalance(ctx, discordID, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to credit reward: %w", err)
	}

	uow.EventBus().Publish(events.RewardClaimedEvent{
		MemberID: discordID,
		Kind:     string(kind),
		Amount:   amount,
	})
	uow.EventBus().Publish(events.WalletChangeEvent{
		MemberID:     discordID,
		OldBalance:   newBalance - amount,
		NewBalance:   newBalance,
		ChangeAmount: amount,
		Reason:       string(kind) + "_reward",
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.RewardResult{
		Kind:       kind,
		Amount:     amount,
		Jackpot:    jackpot,
		Multiplier: multiplier,
		NewBalance: newBalance,
	}, nil
}

func lastClaim(member *models.Member, kind models.RewardKind) *time.Time {
	switch kind {
	case models.RewardDaily:
		return member.LastDailies
	case models.RewardHourly:
		return member.LastHourlies
	default:
		return member.LastReward
	}
}

func remainingCooldown(member *models.Member, kind models.RewardKind, interval time.Duration) time.Duration {
	last := lastClaim(member, kind)
	if last == nil {
		return 0
	}
	remaining := time.Until(last.Add(interval))
	if remaining < 0 {
		return 0
	}
	return remaining
}

// NextClaim reports how long until the given reward can be claimed again
func (s *rewardService) NextClaim(ctx context.Context, discordID int64, kind models.RewardKind) (time.Duration, error) {
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

	return remainingCooldown(member, kind, rewardInterval(kind)), nil
}

// ConsumeRoll spends one roll from the member's per-guild quota
func (s *rewardService) ConsumeRoll(ctx context.Context, guildID, memberID int64) error {
	cfg := config.Get()

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	member, err := uow.MemberRepository().GetByDiscordID(ctx, memberID)
	if err != nil {
		return fmt.Errorf("failed to get member: %w", err)
	}
	if member == nil {
		member, err = uow.MemberRepository().Create(ctx, memberID)
		if err != nil {
			return fmt.Errorf("failed to create member: %w", err)
		}
	}

	limit := TotalRolls(member.Tier)
	consumed, err := uow.RollWindowRepository().ConsumeRoll(ctx, guildID, memberID, limit, cfg.RollInterval)
	if err != nil {
		return fmt.Errorf("failed to consume roll: %w", err)
	}

	if !consumed {
		window, err := uow.RollWindowRepository().Get(ctx, guildID, memberID)
		if err != nil {
			return fmt.Errorf("failed to get roll window: %w", err)
		}
		resetIn := time.Duration(0)
		if window != nil {
			resetIn = time.Until(window.WindowStart.Add(cfg.RollInterval))
			if resetIn < 0 {
				resetIn = 0
			}
		}
		return &RollLimitError{ResetIn: resetIn}
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// RollsLeft reports the member's remaining rolls and window reset time
func (s *rewardService) RollsLeft(ctx context.Context, guildID, memberID int64) (*models.RollsStatus, error) {
	cfg := config.Get()

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	member, err := uow.MemberRepository().GetByDiscordID(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	if member == nil {
		return nil, ErrUnknownMember
	}

	total := TotalRolls(member.Tier)

	window, err := uow.RollWindowRepository().Get(ctx, guildID, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to get roll window: %w", err)
	}

	status := &models.RollsStatus{Total: total, Remaining: total}
	if window != nil {
		elapsed := time.Since(window.WindowStart)
		if elapsed <= cfg.RollInterval {
			status.Used = window.RollsUsed
			status.Remaining = total - window.RollsUsed
			if status.Remaining < 0 {
				status.Remaining = 0
			}
			status.ResetIn = cfg.RollInterval - elapsed
		}
	}

	return status, nil
}
