package bot

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"github.com/Yureien/PinocchioBot/bot/common"
	"github.com/Yureien/PinocchioBot/bot/features/admin"
	"github.com/Yureien/PinocchioBot/bot/features/bank"
	"github.com/Yureien/PinocchioBot/bot/features/waifus"
	"github.com/Yureien/PinocchioBot/events"
	"github.com/Yureien/PinocchioBot/service"
)

// Config holds bot configuration
type Config struct {
	Token string
	// GuildID scopes slash command registration to one guild when set;
	// empty registers globally
	GuildID string
	// CoinDropRate is the 1-in-N chance of a coin drop per message
	CoinDropRate int
	// DBLToken enables the top.gg vote gate when set
	DBLToken string
}

// Services bundles the collaborators the bot dispatches into
type Services struct {
	Member   service.MemberService
	Guild    service.GuildService
	Reward   service.RewardService
	Waifu    service.WaifuService
	Trade    service.TradeService
	Roll     service.RollService
	Search   service.SearchService
	Rescue   service.RescueService
	Exchange service.ExchangeService // nil when the exchange partner is disabled
}

type Bot struct {
	config   Config
	session  *discordgo.Session
	awaiter  *common.Awaiter
	eventBus *events.Bus

	memberService service.MemberService
	guildService  service.GuildService

	bankFeature  *bank.Feature
	waifuFeature *waifus.Feature
	adminFeature *admin.Feature

	passive *passiveEconomy
}

func New(config Config, services Services, locks *service.LockManager, eventBus *events.Bus) (*Bot, error) {
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsAll

	awaiter := common.NewAwaiter()

	bot := &Bot{
		config:        config,
		session:       dg,
		awaiter:       awaiter,
		eventBus:      eventBus,
		memberService: services.Member,
		guildService:  services.Guild,
		bankFeature:   bank.New(services.Member, services.Reward, services.Exchange, locks),
		waifuFeature:  waifus.New(services.Member, services.Waifu, services.Trade, services.Roll, services.Search, services.Reward, locks, awaiter),
		adminFeature:  admin.New(services.Guild, services.Rescue, awaiter),
		passive:       newPassiveEconomy(services.Member, services.Guild, config.CoinDropRate, awaiter),
	}

	// Register slash command handlers
	dg.AddHandler(bot.handleCommands)

	// Interactive flows suspend on messages and reactions
	dg.AddHandler(awaiter.HandleMessageCreate)
	dg.AddHandler(awaiter.HandleReactionAdd)

	// Passive economy and lazy row creation
	dg.AddHandler(bot.handleMessageCreate)
	dg.AddHandler(bot.handleGuildCreate)
	dg.AddHandler(bot.handleGuildMemberAdd)
	dg.AddHandler(bot.handleGuildMemberRemove)

	// Log new ledger profiles as they appear
	eventBus.Subscribe(events.EventTypeMemberCreated, func(ctx context.Context, event events.Event) {
		if e, ok := event.(events.MemberCreatedEvent); ok {
			log.Infof("Created wallet for member %d", e.DiscordID)
		}
	})

	// Open websocket connection
	if err := dg.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	// Register slash commands with Discord
	if err := bot.registerCommands(); err != nil {
		dg.Close()
		return nil, fmt.Errorf("error registering commands: %w", err)
	}

	// The vote checker needs the bot's own ID, known only after Open
	if config.DBLToken != "" {
		bot.bankFeature.SetVoteChecker(bank.NewTopGGClient(config.DBLToken, dg.State.User.ID))
	}

	return bot, nil
}

func (b *Bot) Close() error {
	return b.session.Close()
}

// handleCommands dispatches each slash command on its own goroutine so
// confirmation waits never stall gateway event processing
func (b *Bot) handleCommands(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	switch i.ApplicationCommandData().Name {
	case "wallet", "daily", "hourly", "vote", "transfer", "exchange":
		go b.bankFeature.HandleCommand(s, i)
	case "search", "details", "harem", "favorite", "unfavorite",
		"buywaifu", "sellwaifu", "sellharem", "trade", "roll", "rollsleft":
		go b.waifuFeature.HandleCommand(s, i)
	case "settings", "rescuewaifus", "divorcewaifus":
		go b.adminFeature.HandleCommand(s, i)
	}
}
