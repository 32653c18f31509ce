package admin

import (
	"context"
	"fmt"
	"strconv"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"github.com/Yureien/PinocchioBot/bot/common"
	"github.com/Yureien/PinocchioBot/models"
	"github.com/Yureien/PinocchioBot/service"
)

func (f *Feature) handleSettings(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !common.IsUserAdmin(i) {
		common.RespondWithError(s, i, "You need administrator permissions to use this command.")
		return
	}

	guildID, err := strconv.ParseInt(i.GuildID, 10, 64)
	if err != nil {
		common.RespondWithError(s, i, "This command only works inside a server.")
		return
	}

	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		return
	}

	var update models.GuildSettingsUpdate
	switch options[0].Name {
	case "coindrops":
		enabled := options[0].Options[0].BoolValue()
		update.CoinDrops = &enabled
	case "welcomechannel":
		channel := options[0].Options[0].ChannelValue(s)
		channelID, err := strconv.ParseInt(channel.ID, 10, 64)
		if err != nil {
			common.RespondWithError(s, i, "Invalid channel selected.")
			return
		}
		update.JoinLeaveChannel = &channelID
	case "welcometext":
		text := options[0].Options[0].StringValue()
		update.WelcomeText = &text
	case "leavetext":
		text := options[0].Options[0].StringValue()
		update.LeaveText = &text
	case "customrole":
		role := options[0].Options[0].RoleValue(s, i.GuildID)
		roleID, err := strconv.ParseInt(role.ID, 10, 64)
		if err != nil {
			common.RespondWithError(s, i, "Invalid role selected.")
			return
		}
		update.CustomRole = &roleID
	default:
		return
	}

	ctx := context.Background()
	if _, err := f.guildService.UpdateSettings(ctx, guildID, update); err != nil {
		log.Errorf("Error updating settings for guild %d: %v", guildID, err)
		common.RespondWithError(s, i, "Unable to update settings. Please try again.")
		return
	}

	if err := common.RespondWithSuccess(s, i, "Settings updated.", true); err != nil {
		log.Errorf("Error responding to settings command: %v", err)
	}
}

// handleRescue deletes ownership rows whose owner has left the guild. The
// roster comes from the gateway; the deletion itself has no ledger effect.
func (f *Feature) handleRescue(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !common.IsUserAdmin(i) {
		common.RespondWithError(s, i, "You need administrator permissions to use this command.")
		return
	}

	guildID, err := strconv.ParseInt(i.GuildID, 10, 64)
	if err != nil {
		common.RespondWithError(s, i, "This command only works inside a server.")
		return
	}

	prompt := fmt.Sprintf("Free all waifus owned by members who left this server? Reply `yes` or `no` within %d seconds.",
		int(bulkConfirmTimeout.Seconds()))
	if err := common.RespondWithMessage(s, i, prompt); err != nil {
		log.Errorf("Error sending rescue prompt: %v", err)
		return
	}

	confirmed, err := f.awaiter.AwaitConfirm(s, i.ChannelID, i.Member.User.ID, bulkConfirmTimeout)
	if err != nil || !confirmed {
		common.FollowUpWithError(s, i, "Rescue cancelled.")
		return
	}

	roster, err := guildRoster(s, i.GuildID)
	if err != nil {
		log.Errorf("Error listing members of guild %d: %v", guildID, err)
		common.FollowUpWithError(s, i, "Unable to read the member list. Please try again.")
		return
	}

	ctx := context.Background()
	rescued, err := f.rescueService.Rescue(ctx, guildID, roster)
	if err != nil {
		log.Errorf("Error rescuing waifus in guild %d: %v", guildID, err)
		common.FollowUpWithError(s, i, "Unable to rescue waifus. Please try again.")
		return
	}

	message := fmt.Sprintf("🕊️ Rescued **%d** waifus from departed members.", rescued)
	if _, err := common.FollowUpWithMessage(s, i, message); err != nil {
		log.Errorf("Error responding to rescue command: %v", err)
	}
}

// handleDivorce deletes ownership rows for one member, or for the whole
// guild when no member is given
func (f *Feature) handleDivorce(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !common.IsUserAdmin(i) {
		common.RespondWithError(s, i, "You need administrator permissions to use this command.")
		return
	}

	guildID, err := strconv.ParseInt(i.GuildID, 10, 64)
	if err != nil {
		common.RespondWithError(s, i, "This command only works inside a server.")
		return
	}

	var targetUser *discordgo.User
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "user" {
			targetUser = opt.UserValue(s)
		}
	}

	target := service.TargetAll()
	scope := "**every member's** harem in this server"
	if targetUser != nil {
		targetID, err := strconv.ParseInt(targetUser.ID, 10, 64)
		if err != nil {
			log.Errorf("Error parsing Discord ID %s: %v", targetUser.ID, err)
			common.RespondWithError(s, i, "Unable to process request. Please try again.")
			return
		}
		target = service.TargetMember(targetID)
		scope = fmt.Sprintf("%s's harem", common.GetDisplayName(s, i.GuildID, targetUser.ID))
	}

	prompt := fmt.Sprintf("Dissolve %s? This cannot be undone. Reply `yes` or `no` within %d seconds.",
		scope, int(bulkConfirmTimeout.Seconds()))
	if err := common.RespondWithMessage(s, i, prompt); err != nil {
		log.Errorf("Error sending divorce prompt: %v", err)
		return
	}

	confirmed, err := f.awaiter.AwaitConfirm(s, i.ChannelID, i.Member.User.ID, bulkConfirmTimeout)
	if err != nil || !confirmed {
		common.FollowUpWithError(s, i, "Divorce cancelled.")
		return
	}

	ctx := context.Background()
	divorced, err := f.rescueService.Divorce(ctx, guildID, target)
	if err != nil {
		log.Errorf("Error divorcing waifus in guild %d: %v", guildID, err)
		common.FollowUpWithError(s, i, "Unable to dissolve the harem. Please try again.")
		return
	}

	message := fmt.Sprintf("💔 Dissolved **%d** ownerships.", divorced)
	if _, err := common.FollowUpWithMessage(s, i, message); err != nil {
		log.Errorf("Error responding to divorce command: %v", err)
	}
}

// guildRoster pages through the guild member list and returns the present
// members' Discord IDs
func guildRoster(s *discordgo.Session, guildID string) ([]int64, error) {
	var roster []int64
	after := ""
	for {
		members, err := s.GuildMembers(guildID, after, 1000)
		if err != nil {
			return nil, err
		}
		if len(members) == 0 {
			return roster, nil
		}
		for _, member := range members {
			if member.User == nil {
				continue
			}
			id, err := strconv.ParseInt(member.User.ID, 10, 64)
			if err != nil {
				continue
			}
			roster = append(roster, id)
		}
		after = members[len(members)-1].User.ID
	}
}
