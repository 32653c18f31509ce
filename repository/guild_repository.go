package repository

import (
	"context"
	"fmt"

	"github.com/Yureien/PinocchioBot/database"
	"github.com/Yureien/PinocchioBot/models"
	"github.com/Yureien/PinocchioBot/service"
	"github.com/jackc/pgx/v5"
)

// GuildRepository implements the service.GuildRepository interface
type GuildRepository struct {
	q queryable
}

// NewGuildRepository creates a new guild repository
func NewGuildRepository(db *database.DB) *GuildRepository {
	return &GuildRepository{q: db.Pool}
}

// newGuildRepositoryWithTx creates a new guild repository with a transaction
func newGuildRepositoryWithTx(tx queryable) *GuildRepository {
	return &GuildRepository{q: tx}
}

const guildColumns = `id, guild, music_enabled, coin_drops, join_leave_channel, welcome_str, leave_str, custom_role`

func scanGuild(row pgx.Row) (*models.Guild, error) {
	var guild models.Guild
	err := row.Scan(
		&guild.ID,
		&guild.DiscordID,
		&guild.MusicEnabled,
		&guild.CoinDrops,
		&guild.JoinLeaveChannel,
		&guild.WelcomeText,
		&guild.LeaveText,
		&guild.CustomRole,
	)
	if err != nil {
		return nil, err
	}
	return &guild, nil
}

// GetByDiscordID retrieves a guild by its Discord ID
func (r *GuildRepository) GetByDiscordID(ctx context.Context, discordID int64) (*models.Guild, error) {
	query := fmt.Sprintf(`SELECT %s FROM guilds WHERE guild = $1`, guildColumns)

	guild, err := scanGuild(r.q.QueryRow(ctx, query, discordID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get guild by discord ID %d: %w", discordID, err)
	}

	return guild, nil
}

// Create creates a new guild row with default settings
func (r *GuildRepository) Create(ctx context.Context, discordID int64) (*models.Guild, error) {
	query := fmt.Sprintf(`
		INSERT INTO guilds (guild)
		VALUES ($1)
		ON CONFLICT (guild) DO NOTHING
		RETURNING %s
	`, guildColumns)

	guild, err := scanGuild(r.q.QueryRow(ctx, query, discordID))
	if err == pgx.ErrNoRows {
		// Lost a creation race; the row exists now
		return r.GetByDiscordID(ctx, discordID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create guild with discord ID %d: %w", discordID, err)
	}

	return guild, nil
}

// UpdateSettings applies the non-nil fields of the update
func (r *GuildRepository) UpdateSettings(ctx context.Context, discordID int64, update models.GuildSettingsUpdate) error {
	query := `
		UPDATE guilds
		SET coin_drops = COALESCE($1, coin_drops),
		    join_leave_channel = COALESCE($2, join_leave_channel),
		    welcome_str = COALESCE($3, welcome_str),
		    leave_str = COALESCE($4, leave_str),
		    custom_role = COALESCE($5, custom_role)
		WHERE guild = $6
	`

	result, err := r.q.Exec(ctx, query,
		update.CoinDrops,
		update.JoinLeaveChannel,
		update.WelcomeText,
		update.LeaveText,
		update.CustomRole,
		discordID,
	)
	if err != nil {
		return fmt.Errorf("failed to update settings for guild %d: %w", discordID, err)
	}

	if result.RowsAffected() == 0 {
		return service.ErrUnknownGuild
	}

	return nil
}
