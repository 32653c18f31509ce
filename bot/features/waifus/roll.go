package waifus

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"github.com/Yureien/PinocchioBot/bot/common"
	"github.com/Yureien/PinocchioBot/service"
)

// handleRoll draws a random discounted waifu and opens a public claim
// window. The ownership constraint in the store picks the single winner if
// several members react at once.
func (f *Feature) handleRoll(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	memberID, guildID, err := interactionIDs(i)
	if err != nil {
		common.RespondWithError(s, i, "This command only works inside a server.")
		return
	}

	draw, err := f.rollService.Draw(ctx, guildID, memberID)
	if err != nil {
		var limit *service.RollLimitError
		if errors.As(err, &limit) {
			common.RespondWithError(s, i, fmt.Sprintf("You are out of rolls. Your quota resets in %s.",
				common.FormatDuration(limit.ResetIn)))
			return
		}
		log.Errorf("Error rolling for %d in guild %d: %v", memberID, guildID, err)
		common.RespondWithError(s, i, "Unable to roll. Please try again.")
		return
	}

	embed := &discordgo.MessageEmbed{
		Title: draw.Waifu.Name,
		Color: 0xF2994A,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Series", Value: draw.Waifu.FromAnime, Inline: true},
			{Name: "Roll price", Value: common.FormatBalance(draw.Price) + " coins", Inline: true},
		},
	}
	if images := draw.Waifu.Images(); len(images) > 0 {
		embed.Image = &discordgo.MessageEmbedImage{URL: images[0]}
	}

	if draw.Owner != nil {
		embed.Description = fmt.Sprintf("Already owned by %s.",
			common.GetDisplayNameInt64(s, i.GuildID, draw.Owner.MemberDiscID))
		if err := common.RespondWithEmbed(s, i, embed, false); err != nil {
			log.Errorf("Error responding to roll command: %v", err)
		}
		return
	}

	embed.Description = fmt.Sprintf("React %s within 10 seconds to claim for **%s coins**!",
		claimEmoji, common.FormatBalance(draw.Price))
	if err := common.RespondWithEmbed(s, i, embed, false); err != nil {
		log.Errorf("Error responding to roll command: %v", err)
		return
	}

	message, err := s.InteractionResponse(i.Interaction)
	if err != nil {
		log.Errorf("Error fetching roll message: %v", err)
		return
	}
	if err := s.MessageReactionAdd(message.ChannelID, message.ID, claimEmoji); err != nil {
		log.Errorf("Error seeding claim reaction: %v", err)
	}

	claimerUserID, err := f.awaiter.AwaitReaction(message.ID, claimEmoji, claimWindow)
	if err != nil {
		if _, err := common.FollowUpWithMessage(s, i, fmt.Sprintf("No one claimed **%s**.", draw.Waifu.Name)); err != nil {
			log.Errorf("Error responding to unclaimed roll: %v", err)
		}
		return
	}

	claimerID, err := strconv.ParseInt(claimerUserID, 10, 64)
	if err != nil {
		log.Errorf("Error parsing Discord ID %s: %v", claimerUserID, err)
		return
	}

	result, err := f.rollService.Claim(ctx, guildID, claimerID, draw.Waifu.ID, draw.Price)
	if err != nil {
		claimerName := common.GetDisplayName(s, i.GuildID, claimerUserID)
		switch {
		case errors.Is(err, service.ErrAlreadyOwned):
			common.FollowUpWithError(s, i, fmt.Sprintf("**%s** was snatched before %s could claim.", draw.Waifu.Name, claimerName))
		case errors.Is(err, service.ErrInsufficientFunds):
			common.FollowUpWithError(s, i, fmt.Sprintf("%s cannot afford **%s coins**.", claimerName, common.FormatBalance(draw.Price)))
		default:
			log.Errorf("Error claiming rolled waifu %d for %d: %v", draw.Waifu.ID, claimerID, err)
			common.FollowUpWithError(s, i, "Unable to complete the claim. Please try again.")
		}
		return
	}

	message2 := fmt.Sprintf("💍 %s claimed **%s** for **%s coins**!",
		common.GetDisplayName(s, i.GuildID, claimerUserID), result.Waifu.Name, common.FormatBalance(draw.Price))
	if _, err := common.FollowUpWithMessage(s, i, message2); err != nil {
		log.Errorf("Error responding to claimed roll: %v", err)
	}
}

func (f *Feature) handleRollsLeft(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	memberID, guildID, err := interactionIDs(i)
	if err != nil {
		common.RespondWithError(s, i, "This command only works inside a server.")
		return
	}

	status, err := f.rewardService.RollsLeft(ctx, guildID, memberID)
	if err != nil {
		log.Errorf("Error getting rolls left for %d in guild %d: %v", memberID, guildID, err)
		common.RespondWithError(s, i, "Unable to check your rolls. Please try again.")
		return
	}

	message := fmt.Sprintf("You have **%d** of **%d** rolls left.", status.Remaining, status.Total)
	if status.Used > 0 && status.ResetIn > 0 {
		message += fmt.Sprintf(" Your quota resets %s.",
			common.FormatDiscordTimestamp(time.Now().Add(status.ResetIn), "R"))
	}
	if err := common.RespondWithMessage(s, i, message); err != nil {
		log.Errorf("Error responding to rollsleft command: %v", err)
	}
}
