package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Yureien/PinocchioBot/database"
	"github.com/Yureien/PinocchioBot/models"
	"github.com/Yureien/PinocchioBot/service"
	"github.com/jackc/pgx/v5"
)

// MemberRepository implements the service.MemberRepository interface
type MemberRepository struct {
	q queryable
}

// NewMemberRepository creates a new member repository
func NewMemberRepository(db *database.DB) *MemberRepository {
	return &MemberRepository{q: db.Pool}
}

// newMemberRepositoryWithTx creates a new member repository with a transaction
func newMemberRepositoryWithTx(tx queryable) *MemberRepository {
	return &MemberRepository{q: tx}
}

// GetByDiscordID retrieves a member by their Discord ID
func (r *MemberRepository) GetByDiscordID(ctx context.Context, discordID int64) (*models.Member, error) {
	query := `
		SELECT id, member, wallet, last_dailies, last_hourlies, last_reward, tier
		FROM members
		WHERE member = $1
	`

	var member models.Member
	err := r.q.QueryRow(ctx, query, discordID).Scan(
		&member.ID,
		&member.DiscordID,
		&member.Wallet,
		&member.LastDailies,
		&member.LastHourlies,
		&member.LastReward,
		&member.Tier,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member by discord ID %d: %w", discordID, err)
	}

	return &member, nil
}

// Create creates a new member row with a zero wallet
func (r *MemberRepository) Create(ctx context.Context, discordID int64) (*models.Member, error) {
	query := `
		INSERT INTO members (member, wallet)
		VALUES ($1, 0)
		RETURNING id, member, wallet, last_dailies, last_hourlies, last_reward, tier
	`

	var member models.Member
	err := r.q.QueryRow(ctx, query, discordID).Scan(
		&member.ID,
		&member.DiscordID,
		&member.Wallet,
		&member.LastDailies,
		&member.LastHourlies,
		&member.LastReward,
		&member.Tier,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create member with discord ID %d: %w", discordID, err)
	}

	return &member, nil
}

// AddBalance credits a member's wallet atomically and returns the new balance
func (r *MemberRepository) AddBalance(ctx context.Context, discordID int64, amount int64) (int64, error) {
	if amount < 0 {
		return 0, fmt.Errorf("amount must not be negative")
	}

	query := `
		UPDATE members
		SET wallet = wallet + $1
		WHERE member = $2
		RETURNING wallet
	`

	var newBalance int64
	err := r.q.QueryRow(ctx, query, amount, discordID).Scan(&newBalance)
	if err == pgx.ErrNoRows {
		return 0, service.ErrUnknownMember
	}
	if err != nil {
		return 0, fmt.Errorf("failed to add balance for member %d: %w", discordID, err)
	}

	return newBalance, nil
}

// DeductBalance debits a member's wallet atomically, failing if the wallet
// cannot cover the amount. The balance check and the decrement are a single
// statement so the wallet can never go negative under concurrent debits.
func (r *MemberRepository) DeductBalance(ctx context.Context, discordID int64, amount int64) (int64, error) {
	if amount < 0 {
		return 0, fmt.Errorf("amount must not be negative")
	}

	query := `
		UPDATE members
		SET wallet = wallet - $1
		WHERE member = $2 AND wallet >= $1
		RETURNING wallet
	`

	var newBalance int64
	err := r.q.QueryRow(ctx, query, amount, discordID).Scan(&newBalance)
	if err == pgx.ErrNoRows {
		// Either the member does not exist or the wallet is short
		member, getErr := r.GetByDiscordID(ctx, discordID)
		if getErr != nil {
			return 0, fmt.Errorf("failed to check member %d: %w", discordID, getErr)
		}
		if member == nil {
			return 0, service.ErrUnknownMember
		}
		return 0, service.ErrInsufficientFunds
	}
	if err != nil {
		return 0, fmt.Errorf("failed to deduct balance for member %d: %w", discordID, err)
	}

	return newBalance, nil
}

// rewardColumns maps reward kinds to their timestamp columns
var rewardColumns = map[models.RewardKind]string{
	models.RewardDaily:  "last_dailies",
	models.RewardHourly: "last_hourlies",
	models.RewardVote:   "last_reward",
}

// ClaimReward updates the reward timestamp for the given kind only if the
// interval has elapsed since the previous claim. Eligibility check and
// timestamp update are one statement; concurrent claims cannot both succeed.
func (r *MemberRepository) ClaimReward(ctx context.Context, discordID int64, kind models.RewardKind, interval time.Duration) (bool, error) {
	column, ok := rewardColumns[kind]
	if !ok {
		return false, fmt.Errorf("unknown reward kind %q", kind)
	}

	query := fmt.Sprintf(`
		UPDATE members
		SET %s = NOW()
		WHERE member = $1
		  AND (%s IS NULL OR %s <= NOW() - make_interval(secs => $2))
	`, column, column, column)

	result, err := r.q.Exec(ctx, query, discordID, interval.Seconds())
	if err != nil {
		return false, fmt.Errorf("failed to claim %s reward for member %d: %w", kind, discordID, err)
	}

	if result.RowsAffected() == 0 {
		member, getErr := r.GetByDiscordID(ctx, discordID)
		if getErr != nil {
			return false, fmt.Errorf("failed to check member %d: %w", discordID, getErr)
		}
		if member == nil {
			return false, service.ErrUnknownMember
		}
		return false, nil
	}

	return true, nil
}

// SetTier updates a member's donator tier
func (r *MemberRepository) SetTier(ctx context.Context, discordID int64, tier int16) error {
	query := `
		UPDATE members
		SET tier = $1
		WHERE member = $2
	`

	result, err := r.q.Exec(ctx, query, tier, discordID)
	if err != nil {
		return fmt.Errorf("failed to set tier for member %d: %w", discordID, err)
	}

	if result.RowsAffected() == 0 {
		return service.ErrUnknownMember
	}

	return nil
}
