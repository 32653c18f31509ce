package waifus

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"github.com/Yureien/PinocchioBot/bot/common"
	"github.com/Yureien/PinocchioBot/service"
)

func (f *Feature) handleSearch(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	var query string
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "query" {
			query = opt.StringValue()
		}
	}

	matches, err := f.searchService.Search(ctx, query, searchResultLimit)
	if err != nil {
		log.Errorf("Error searching waifus for %q: %v", query, err)
		common.RespondWithError(s, i, "Unable to search. Please try again.")
		return
	}
	if len(matches) == 0 {
		common.RespondWithError(s, i, fmt.Sprintf("No waifus found matching `%s`.", query))
		return
	}

	var lines strings.Builder
	for _, waifu := range matches {
		fmt.Fprintf(&lines, "`%d` **%s** • %s • %s coins\n",
			waifu.ID, waifu.Name, waifu.FromAnime, common.FormatBalance(waifu.Price))
	}

	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Search results for \"%s\"", query),
		Description: lines.String(),
		Color:       0xF2994A,
	}
	if err := common.RespondWithEmbed(s, i, embed, false); err != nil {
		log.Errorf("Error responding to search command: %v", err)
	}
}

func (f *Feature) handleDetails(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

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

	embed := &discordgo.MessageEmbed{
		Title: waifu.Name,
		Color: 0xF2994A,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Series", Value: waifu.FromAnime, Inline: true},
			{Name: "Price", Value: common.FormatBalance(waifu.Price) + " coins", Inline: true},
			{Name: "ID", Value: fmt.Sprintf("%d", waifu.ID), Inline: true},
		},
	}
	if waifu.Description != nil && *waifu.Description != "" {
		embed.Description = *waifu.Description
	}
	if images := waifu.Images(); len(images) > 0 {
		embed.Image = &discordgo.MessageEmbedImage{URL: images[0]}
	}

	// Ownership is per guild; only shown when invoked inside one
	if _, guildID, err := interactionIDs(i); err == nil {
		owner, err := f.waifuService.Owner(ctx, guildID, waifu.ID)
		if err != nil {
			log.Errorf("Error looking up owner of waifu %d: %v", waifu.ID, err)
		} else if owner != nil {
			embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
				Name:   "Owned by",
				Value:  common.GetDisplayNameInt64(s, i.GuildID, owner.MemberDiscID),
				Inline: true,
			})
		}
	}

	if err := common.RespondWithEmbed(s, i, embed, false); err != nil {
		log.Errorf("Error responding to details command: %v", err)
	}
}
