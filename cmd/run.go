package cmd

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/Yureien/PinocchioBot/bot"
	"github.com/Yureien/PinocchioBot/config"
	"github.com/Yureien/PinocchioBot/database"
	"github.com/Yureien/PinocchioBot/discoin"
	"github.com/Yureien/PinocchioBot/events"
	"github.com/Yureien/PinocchioBot/repository"
	"github.com/Yureien/PinocchioBot/service"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Info("Starting PinocchioBot...")

	// Load configuration
	cfg := config.Get()
	if cfg.Environment == "development" {
		log.SetLevel(log.DebugLevel)
	}

	// Initialize database connection
	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("Database connection established successfully")

	// Apply pending schema migrations
	if err := database.RunMigrationsWithURL(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Initialize event bus
	log.Info("Initializing event bus...")
	eventBus := events.NewBus()

	// Initialize unit of work factory
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	// Initialize services
	log.Info("Initializing services...")
	lockManager := service.NewLockManager()
	memberService := service.NewMemberService(uowFactory)
	guildService := service.NewGuildService(uowFactory)
	rewardService := service.NewRewardService(uowFactory)
	waifuService := service.NewWaifuService(uowFactory)
	tradeService := service.NewTradeService(uowFactory)
	rollService := service.NewRollService(uowFactory, rewardService, waifuService)
	searchService := service.NewSearchService(uowFactory)
	rescueService := service.NewRescueService(uowFactory)

	// The exchange partner is feature-flagged on its token
	var exchangeService service.ExchangeService
	if cfg.DiscoinToken != "" {
		partner := discoin.NewClient(cfg.DiscoinToken, cfg.DiscoinCurrency)
		exchangeService = service.NewExchangeService(uowFactory, partner)
		log.Info("Discoin exchange enabled")
	}
	log.Info("Services initialized successfully")

	// Initialize Discord bot
	log.Info("Initializing Discord bot...")
	botConfig := bot.Config{
		Token:        cfg.DiscordToken,
		GuildID:      cfg.DiscordGuildID,
		CoinDropRate: cfg.FreeMoneySpawnRate,
		DBLToken:     cfg.DBLToken,
	}
	services := bot.Services{
		Member:   memberService,
		Guild:    guildService,
		Reward:   rewardService,
		Waifu:    waifuService,
		Trade:    tradeService,
		Roll:     rollService,
		Search:   searchService,
		Rescue:   rescueService,
		Exchange: exchangeService,
	}
	discordBot, err := bot.New(botConfig, services, lockManager, eventBus)
	if err != nil {
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}
	log.Info("Discord bot initialized successfully")

	// Wait for context cancellation
	log.Infof("Bot is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	// Cleanup resources
	log.Info("Shutting down bot...")

	if err := discordBot.Close(); err != nil {
		log.Errorf("Error closing Discord bot: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	log.Info("Closing database connection...")
	db.Close()

	select {
	case <-shutdownCtx.Done():
		log.Info("Shutdown timeout exceeded")
	case <-time.After(1 * time.Second):
		log.Info("Shutdown completed")
	}

	return nil
}
