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
	"github.com/Yureien/PinocchioBot/models"
	"github.com/Yureien/PinocchioBot/service"
)

const priceRetries = 3

func (f *Feature) handleTrade(s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		return
	}

	switch options[0].Name {
	case "money":
		f.handleMoneyTrade(s, i, options[0].Options)
	case "waifu":
		f.handleWaifuTrade(s, i, options[0].Options)
	}
}

// handleMoneyTrade runs the sell-to-a-member flow: the receiver names a
// price, the sender confirms, then both legs commit together.
func (f *Feature) handleMoneyTrade(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	senderID, guildID, err := interactionIDs(i)
	if err != nil {
		common.RespondWithError(s, i, "This command only works inside a server.")
		return
	}

	var receiver *discordgo.User
	var query string
	for _, opt := range options {
		switch opt.Name {
		case "user":
			receiver = opt.UserValue(s)
		case "waifu":
			query = opt.StringValue()
		}
	}

	receiverID, waifu, ok := f.validateTradeParties(ctx, s, i, senderID, receiver, query)
	if !ok {
		return
	}

	owned, err := f.waifuService.Owner(ctx, guildID, waifu.ID)
	if err != nil {
		log.Errorf("Error looking up owner of waifu %d: %v", waifu.ID, err)
		common.RespondWithError(s, i, "Unable to start the trade. Please try again.")
		return
	}
	if owned == nil || owned.MemberDiscID != senderID {
		common.RespondWithError(s, i, fmt.Sprintf("You do not own **%s** here.", waifu.Name))
		return
	}

	releaseSender, err := f.locks.Acquire(guildID, senderID, "trade")
	if err != nil {
		common.RespondWithError(s, i, f.lockHeldMessage(guildID, senderID))
		return
	}
	defer releaseSender()

	releaseReceiver, err := f.locks.Acquire(guildID, receiverID, "trade")
	if err != nil {
		common.RespondWithError(s, i, fmt.Sprintf("%s has another operation in progress. Try again later.",
			common.GetDisplayName(s, i.GuildID, receiver.ID)))
		return
	}
	defer releaseReceiver()

	prompt := fmt.Sprintf("<@%s>, %s offers you **%s**. Reply with your price in coins (or `exit` to decline).",
		receiver.ID, common.GetDisplayName(s, i.GuildID, i.Member.User.ID), waifu.Name)
	if err := common.RespondWithMessage(s, i, prompt); err != nil {
		log.Errorf("Error sending trade prompt: %v", err)
		return
	}

	price, ok := f.awaitPrice(s, i, receiver.ID)
	if !ok {
		return
	}

	confirmPrompt := fmt.Sprintf("<@%s>, sell **%s** to %s for **%s coins**? Reply `yes` or `no`.",
		i.Member.User.ID, waifu.Name, common.GetDisplayName(s, i.GuildID, receiver.ID), common.FormatBalance(price))
	if _, err := s.ChannelMessageSend(i.ChannelID, confirmPrompt); err != nil {
		log.Errorf("Error sending trade confirmation prompt: %v", err)
		return
	}

	confirmed, err := f.awaiter.AwaitConfirm(s, i.ChannelID, i.Member.User.ID, confirmTimeout)
	if err != nil {
		common.FollowUpWithError(s, i, "Trade timed out. Nothing was exchanged.")
		return
	}
	if !confirmed {
		common.FollowUpWithError(s, i, "Trade cancelled.")
		return
	}

	if err := f.tradeService.TradeForMoney(ctx, guildID, senderID, receiverID, waifu.ID, price); err != nil {
		switch {
		case errors.Is(err, service.ErrNotOwned):
			common.FollowUpWithError(s, i, fmt.Sprintf("You no longer own **%s**.", waifu.Name))
		case errors.Is(err, service.ErrInsufficientFunds):
			common.FollowUpWithError(s, i, fmt.Sprintf("%s cannot afford **%s coins**.",
				common.GetDisplayName(s, i.GuildID, receiver.ID), common.FormatBalance(price)))
		default:
			log.Errorf("Error trading waifu %d from %d to %d: %v", waifu.ID, senderID, receiverID, err)
			common.FollowUpWithError(s, i, "Unable to complete the trade. Please try again.")
		}
		return
	}

	message := fmt.Sprintf("🤝 **%s** now belongs to %s. %s received **%s coins**.",
		waifu.Name, common.GetDisplayName(s, i.GuildID, receiver.ID),
		common.GetDisplayName(s, i.GuildID, i.Member.User.ID), common.FormatBalance(price))
	if _, err := common.FollowUpWithMessage(s, i, message); err != nil {
		log.Errorf("Error responding to trade command: %v", err)
	}
}

// handleWaifuTrade runs the swap flow: both parties must own their side and
// the receiver confirms before the swap commits.
func (f *Feature) handleWaifuTrade(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	senderID, guildID, err := interactionIDs(i)
	if err != nil {
		common.RespondWithError(s, i, "This command only works inside a server.")
		return
	}

	var receiver *discordgo.User
	var mineQuery, theirsQuery string
	for _, opt := range options {
		switch opt.Name {
		case "user":
			receiver = opt.UserValue(s)
		case "mine":
			mineQuery = opt.StringValue()
		case "theirs":
			theirsQuery = opt.StringValue()
		}
	}

	receiverID, mine, ok := f.validateTradeParties(ctx, s, i, senderID, receiver, mineQuery)
	if !ok {
		return
	}

	theirs, err := f.resolveWaifu(ctx, theirsQuery)
	if err != nil {
		if errors.Is(err, service.ErrWaifuNotFound) {
			common.RespondWithError(s, i, fmt.Sprintf("No waifu found matching `%s`.", theirsQuery))
			return
		}
		log.Errorf("Error resolving waifu %q: %v", theirsQuery, err)
		common.RespondWithError(s, i, "Unable to look that up. Please try again.")
		return
	}

	for _, check := range []struct {
		waifu   *models.Waifu
		ownerID int64
		message string
	}{
		{mine, senderID, fmt.Sprintf("You do not own **%s** here.", mine.Name)},
		{theirs, receiverID, fmt.Sprintf("%s does not own **%s** here.", common.GetDisplayName(s, i.GuildID, receiver.ID), theirs.Name)},
	} {
		owned, err := f.waifuService.Owner(ctx, guildID, check.waifu.ID)
		if err != nil {
			log.Errorf("Error looking up owner of waifu %d: %v", check.waifu.ID, err)
			common.RespondWithError(s, i, "Unable to start the trade. Please try again.")
			return
		}
		if owned == nil || owned.MemberDiscID != check.ownerID {
			common.RespondWithError(s, i, check.message)
			return
		}
	}

	releaseSender, err := f.locks.Acquire(guildID, senderID, "trade")
	if err != nil {
		common.RespondWithError(s, i, f.lockHeldMessage(guildID, senderID))
		return
	}
	defer releaseSender()

	releaseReceiver, err := f.locks.Acquire(guildID, receiverID, "trade")
	if err != nil {
		common.RespondWithError(s, i, fmt.Sprintf("%s has another operation in progress. Try again later.",
			common.GetDisplayName(s, i.GuildID, receiver.ID)))
		return
	}
	defer releaseReceiver()

	prompt := fmt.Sprintf("<@%s>, trade your **%s** for %s's **%s**? Reply `yes` or `no`.",
		receiver.ID, theirs.Name, common.GetDisplayName(s, i.GuildID, i.Member.User.ID), mine.Name)
	if err := common.RespondWithMessage(s, i, prompt); err != nil {
		log.Errorf("Error sending swap prompt: %v", err)
		return
	}

	confirmed, err := f.awaiter.AwaitConfirm(s, i.ChannelID, receiver.ID, confirmTimeout)
	if err != nil {
		common.FollowUpWithError(s, i, "Trade timed out. Nothing was exchanged.")
		return
	}
	if !confirmed {
		common.FollowUpWithError(s, i, "Trade declined.")
		return
	}

	if err := f.tradeService.TradeWaifus(ctx, guildID, senderID, receiverID, mine.ID, theirs.ID); err != nil {
		if errors.Is(err, service.ErrNotOwned) {
			common.FollowUpWithError(s, i, "One of the waifus changed hands during the trade. Nothing was exchanged.")
			return
		}
		log.Errorf("Error swapping waifus %d/%d between %d and %d: %v", mine.ID, theirs.ID, senderID, receiverID, err)
		common.FollowUpWithError(s, i, "Unable to complete the trade. Please try again.")
		return
	}

	message := fmt.Sprintf("🤝 Swap complete: **%s** ↔ **%s**.", mine.Name, theirs.Name)
	if _, err := common.FollowUpWithMessage(s, i, message); err != nil {
		log.Errorf("Error responding to trade command: %v", err)
	}
}

// validateTradeParties rejects self-trades and bot counterparties, then
// resolves the offered waifu
func (f *Feature) validateTradeParties(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, senderID int64, receiver *discordgo.User, query string) (int64, *models.Waifu, bool) {
	if receiver == nil {
		common.RespondWithError(s, i, "Please pick a user to trade with.")
		return 0, nil, false
	}
	if receiver.Bot {
		common.RespondWithError(s, i, "Bots do not trade waifus.")
		return 0, nil, false
	}

	receiverID, err := strconv.ParseInt(receiver.ID, 10, 64)
	if err != nil {
		log.Errorf("Error parsing Discord ID %s: %v", receiver.ID, err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return 0, nil, false
	}
	if receiverID == senderID {
		common.RespondWithError(s, i, "You cannot trade with yourself.")
		return 0, nil, false
	}

	waifu, err := f.resolveWaifu(ctx, query)
	if err != nil {
		if errors.Is(err, service.ErrWaifuNotFound) {
			common.RespondWithError(s, i, fmt.Sprintf("No waifu found matching `%s`.", query))
			return 0, nil, false
		}
		log.Errorf("Error resolving waifu %q: %v", query, err)
		common.RespondWithError(s, i, "Unable to look that up. Please try again.")
		return 0, nil, false
	}

	return receiverID, waifu, true
}

// awaitPrice reads the receiver's price offer, re-prompting on unparseable
// input up to the retry budget. A timeout or exit word cancels the trade.
func (f *Feature) awaitPrice(s *discordgo.Session, i *discordgo.InteractionCreate, responderID string) (int64, bool) {
	for attempt := 0; attempt < priceRetries; attempt++ {
		content, err := f.awaiter.AwaitMessage(i.ChannelID, responderID, confirmTimeout)
		if err != nil {
			common.FollowUpWithError(s, i, "Trade timed out. Nothing was exchanged.")
			return 0, false
		}

		content = strings.ToLower(strings.TrimSpace(content))
		switch content {
		case "exit", "quit", "cancel", "no":
			common.FollowUpWithError(s, i, "Trade declined.")
			return 0, false
		}

		price, err := strconv.ParseInt(content, 10, 64)
		if err == nil && price >= 0 {
			return price, true
		}

		if attempt < priceRetries-1 {
			if _, err := s.ChannelMessageSend(i.ChannelID, "Please reply with a whole number of coins (or `exit` to decline)."); err != nil {
				log.Errorf("Error sending price re-prompt: %v", err)
			}
		}
	}

	common.FollowUpWithError(s, i, "Trade cancelled.")
	return 0, false
}
