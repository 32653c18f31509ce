package service

import (
	"context"
	"fmt"

	"github.com/Yureien/PinocchioBot/models"
)

// guildService implements the GuildService interface
type guildService struct {
	uowFactory UnitOfWorkFactory
}

// NewGuildService creates a new guild service
func NewGuildService(uowFactory UnitOfWorkFactory) GuildService {
	return &guildService{
		uowFactory: uowFactory,
	}
}

// GetOrCreateGuild retrieves an existing guild or lazily creates a row with
// default settings
func (s *guildService) GetOrCreateGuild(ctx context.Context, discordID int64) (*models.Guild, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	guild, err := uow.GuildRepository().GetByDiscordID(ctx, discordID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing guild: %w", err)
	}

	if guild != nil {
		return guild, nil
	}

	guild, err = uow.GuildRepository().Create(ctx, discordID)
	if err != nil {
		return nil, fmt.Errorf("failed to create guild: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return guild, nil
}

// UpdateSettings applies the non-nil fields of the update, creating the guild
// row first if it does not exist yet
func (s *guildService) UpdateSettings(ctx context.Context, discordID int64, update models.GuildSettingsUpdate) (*models.Guild, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	guild, err := uow.GuildRepository().GetByDiscordID(ctx, discordID)
	if err != nil {
		return nil, fmt.Errorf("failed to get guild: %w", err)
	}
	if guild == nil {
		if _, err := uow.GuildRepository().Create(ctx, discordID); err != nil {
			return nil, fmt.Errorf("failed to create guild: %w", err)
		}
	}

	if err := uow.GuildRepository().UpdateSettings(ctx, discordID, update); err != nil {
		return nil, fmt.Errorf("failed to update guild settings: %w", err)
	}

	guild, err = uow.GuildRepository().GetByDiscordID(ctx, discordID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload guild: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return guild, nil
}
