package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Yureien/PinocchioBot/database"
	"github.com/Yureien/PinocchioBot/service"
	"github.com/jackc/pgx/v5"
)

// RollWindowRepository implements the service.RollWindowRepository interface.
// Counters are durable so roll quotas survive restarts.
type RollWindowRepository struct {
	q queryable
}

// NewRollWindowRepository creates a new roll window repository
func NewRollWindowRepository(db *database.DB) *RollWindowRepository {
	return &RollWindowRepository{q: db.Pool}
}

// newRollWindowRepositoryWithTx creates a new roll window repository with a transaction
func newRollWindowRepositoryWithTx(tx queryable) *RollWindowRepository {
	return &RollWindowRepository{q: tx}
}

// Get returns the current window for a member in a guild
func (r *RollWindowRepository) Get(ctx context.Context, guildID, memberID int64) (*service.RollWindow, error) {
	query := `
		SELECT guild, member, rolls_used, window_start
		FROM roll_windows
		WHERE guild = $1 AND member = $2
	`

	var window service.RollWindow
	err := r.q.QueryRow(ctx, query, guildID, memberID).Scan(
		&window.GuildID,
		&window.MemberID,
		&window.RollsUsed,
		&window.WindowStart,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get roll window for member %d in guild %d: %w", memberID, guildID, err)
	}

	return &window, nil
}

// ConsumeRoll increments the member's roll counter, resetting the window
// first when it has expired. The quota check, the reset and the increment are
// one statement; concurrent rolls serialize on the row and cannot exceed the
// limit. Returns false when the quota is exhausted.
func (r *RollWindowRepository) ConsumeRoll(ctx context.Context, guildID, memberID int64, limit int, interval time.Duration) (bool, error) {
	query := `
		INSERT INTO roll_windows (guild, member, rolls_used, window_start)
		VALUES ($1, $2, 1, NOW())
		ON CONFLICT (guild, member) DO UPDATE
		SET rolls_used = CASE
		        WHEN roll_windows.window_start <= NOW() - make_interval(secs => $4) THEN 1
		        ELSE roll_windows.rolls_used + 1
		    END,
		    window_start = CASE
		        WHEN roll_windows.window_start <= NOW() - make_interval(secs => $4) THEN NOW()
		        ELSE roll_windows.window_start
		    END
		WHERE roll_windows.rolls_used < $3
		   OR roll_windows.window_start <= NOW() - make_interval(secs => $4)
		RETURNING rolls_used
	`

	var rollsUsed int
	err := r.q.QueryRow(ctx, query, guildID, memberID, limit, interval.Seconds()).Scan(&rollsUsed)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to consume roll for member %d in guild %d: %w", memberID, guildID, err)
	}

	return true, nil
}
