package waifus

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"github.com/Yureien/PinocchioBot/bot/common"
	"github.com/Yureien/PinocchioBot/service"
)

const haremPageSize = 20

func (f *Feature) handleHarem(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	_, guildID, err := interactionIDs(i)
	if err != nil {
		common.RespondWithError(s, i, "This command only works inside a server.")
		return
	}

	targetUser := i.Member.User
	filter := service.HaremFilter{SortKey: "name"}
	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case "user":
			targetUser = opt.UserValue(s)
		case "sort":
			filter.SortKey = opt.StringValue()
		case "order":
			filter.Descending = opt.StringValue() == "desc"
		case "gender":
			filter.Gender = opt.StringValue()
		}
	}

	targetID, err := strconv.ParseInt(targetUser.ID, 10, 64)
	if err != nil {
		log.Errorf("Error parsing Discord ID %s: %v", targetUser.ID, err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	entries, err := f.waifuService.Harem(ctx, guildID, targetID, filter)
	if err != nil {
		log.Errorf("Error listing harem for %d in guild %d: %v", targetID, guildID, err)
		common.RespondWithError(s, i, "Unable to list the harem. Please try again.")
		return
	}
	if len(entries) == 0 {
		common.RespondWithError(s, i, fmt.Sprintf("%s does not own any waifus here yet.",
			common.GetDisplayName(s, i.GuildID, targetUser.ID)))
		return
	}

	var total int64
	var lines strings.Builder
	for idx, entry := range entries {
		total += entry.Purchased.PurchasedFor
		if idx >= haremPageSize {
			continue
		}
		marker := ""
		if entry.Purchased.Favorite {
			marker = "⭐ "
		}
		fmt.Fprintf(&lines, "%s`%d` **%s** • %s • bought for %s\n",
			marker, entry.Waifu.ID, entry.Waifu.Name, entry.Waifu.FromAnime,
			common.FormatBalance(entry.Purchased.PurchasedFor))
	}
	if len(entries) > haremPageSize {
		fmt.Fprintf(&lines, "…and %d more\n", len(entries)-haremPageSize)
	}

	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%s's harem (%d waifus)", common.GetDisplayName(s, i.GuildID, targetUser.ID), len(entries)),
		Description: lines.String(),
		Color:       0xF2994A,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Total spent: %s coins", common.FormatBalance(total)),
		},
	}
	if err := common.RespondWithEmbed(s, i, embed, false); err != nil {
		log.Errorf("Error responding to harem command: %v", err)
	}
}

func (f *Feature) handleFavorite(s *discordgo.Session, i *discordgo.InteractionCreate, favorite bool) {
	ctx := context.Background()

	memberID, guildID, err := interactionIDs(i)
	if err != nil {
		common.RespondWithError(s, i, "This command only works inside a server.")
		return
	}

	var query string
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "waifu" {
			query = opt.StringValue()
		}
	}

	waifu, err := f.resolveWaifu(ctx, query)
	if err != nil {
		if errors.Is(err, service.ErrWaifuNotFound) {
			common.RespondWithError(s, i, fmt.Sprintf("No waifu found matching `%s`.", query))
			return
		}
		log.Errorf("Error resolving waifu %q: %v", query, err)
		common.RespondWithError(s, i, "Unable to look that up. Please try again.")
		return
	}

	if err := f.waifuService.SetFavorite(ctx, guildID, memberID, waifu.ID, favorite); err != nil {
		if errors.Is(err, service.ErrNotOwned) {
			common.RespondWithError(s, i, fmt.Sprintf("You do not own **%s** here.", waifu.Name))
			return
		}
		log.Errorf("Error setting favorite on waifu %d for %d: %v", waifu.ID, memberID, err)
		common.RespondWithError(s, i, "Unable to update favorite. Please try again.")
		return
	}

	verb := "added to"
	if !favorite {
		verb = "removed from"
	}
	if err := common.RespondWithSuccess(s, i, fmt.Sprintf("**%s** %s your favorites.", waifu.Name, verb), false); err != nil {
		log.Errorf("Error responding to favorite command: %v", err)
	}
}
