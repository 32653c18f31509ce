package waifus

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/Yureien/PinocchioBot/bot/common"
	"github.com/Yureien/PinocchioBot/models"
	"github.com/Yureien/PinocchioBot/service"
)

const (
	confirmTimeout = 60 * time.Second
	claimWindow    = 10 * time.Second
	claimEmoji     = "🎉"

	searchResultLimit = 10
)

// Feature handles the collectible commands: search, harem management,
// purchase, sale, trade and rolls
type Feature struct {
	memberService service.MemberService
	waifuService  service.WaifuService
	tradeService  service.TradeService
	rollService   service.RollService
	searchService service.SearchService
	rewardService service.RewardService
	locks         *service.LockManager
	awaiter       *common.Awaiter
}

// New creates a new waifus feature instance
func New(memberService service.MemberService, waifuService service.WaifuService, tradeService service.TradeService, rollService service.RollService, searchService service.SearchService, rewardService service.RewardService, locks *service.LockManager, awaiter *common.Awaiter) *Feature {
	return &Feature{
		memberService: memberService,
		waifuService:  waifuService,
		tradeService:  tradeService,
		rollService:   rollService,
		searchService: searchService,
		rewardService: rewardService,
		locks:         locks,
		awaiter:       awaiter,
	}
}

// HandleCommand routes collectible commands to their handlers
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.ApplicationCommandData().Name {
	case "search":
		f.handleSearch(s, i)
	case "details":
		f.handleDetails(s, i)
	case "harem":
		f.handleHarem(s, i)
	case "favorite":
		f.handleFavorite(s, i, true)
	case "unfavorite":
		f.handleFavorite(s, i, false)
	case "buywaifu":
		f.handleBuy(s, i)
	case "sellwaifu":
		f.handleSell(s, i)
	case "sellharem":
		f.handleSellHarem(s, i)
	case "trade":
		f.handleTrade(s, i)
	case "roll":
		f.handleRoll(s, i)
	case "rollsleft":
		f.handleRollsLeft(s, i)
	}
}

// interactionIDs parses the invoking member and guild snowflakes
func interactionIDs(i *discordgo.InteractionCreate) (memberID, guildID int64, err error) {
	if i.Member == nil || i.Member.User == nil {
		return 0, 0, fmt.Errorf("interaction outside a guild")
	}
	memberID, err = strconv.ParseInt(i.Member.User.ID, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid member snowflake %q: %w", i.Member.User.ID, err)
	}
	guildID, err = strconv.ParseInt(i.GuildID, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid guild snowflake %q: %w", i.GuildID, err)
	}
	return memberID, guildID, nil
}

// resolveWaifu looks up a catalog entry by ID or fuzzy name
func (f *Feature) resolveWaifu(ctx context.Context, query string) (*models.Waifu, error) {
	matches, err := f.searchService.Search(ctx, query, 1)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, service.ErrWaifuNotFound
	}
	return matches[0], nil
}

// lockHeldMessage names the flow blocking the member, when known
func (f *Feature) lockHeldMessage(guildID, memberID int64) string {
	if flow, ok := f.locks.Held(guildID, memberID); ok {
		return fmt.Sprintf("You have a pending %s in progress. Finish or cancel it first.", flow)
	}
	return "You have another operation in progress. Finish or cancel it first."
}
