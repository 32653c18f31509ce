package waifus

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"github.com/Yureien/PinocchioBot/bot/common"
	"github.com/Yureien/PinocchioBot/service"
)

func (f *Feature) handleBuy(s *discordgo.Session, i *discordgo.InteractionCreate) {
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

	// Fail fast on owned waifus and empty wallets before taking the lock;
	// the purchase itself re-validates inside its transaction.
	owner, err := f.waifuService.Owner(ctx, guildID, waifu.ID)
	if err != nil {
		log.Errorf("Error looking up owner of waifu %d: %v", waifu.ID, err)
		common.RespondWithError(s, i, "Unable to process purchase. Please try again.")
		return
	}
	if owner != nil {
		common.RespondWithError(s, i, fmt.Sprintf(
			"**%s** is already owned by %s. If they have left the server, an admin can free her with `/rescuewaifus`.",
			waifu.Name, common.GetDisplayNameInt64(s, i.GuildID, owner.MemberDiscID)))
		return
	}

	member, err := f.memberService.GetOrCreateMember(ctx, memberID)
	if err != nil {
		log.Errorf("Error getting member %d: %v", memberID, err)
		common.RespondWithError(s, i, "Unable to process purchase. Please try again.")
		return
	}
	if member.Wallet < waifu.Price {
		common.RespondWithError(s, i, fmt.Sprintf("**%s** costs **%s coins**; you need **%s** more.",
			waifu.Name, common.FormatBalance(waifu.Price), common.FormatBalance(waifu.Price-member.Wallet)))
		return
	}

	release, err := f.locks.Acquire(guildID, memberID, "buywaifu")
	if err != nil {
		common.RespondWithError(s, i, f.lockHeldMessage(guildID, memberID))
		return
	}
	defer release()

	prompt := fmt.Sprintf("Buy **%s** from *%s* for **%s coins**? Reply `yes` or `no`.",
		waifu.Name, waifu.FromAnime, common.FormatBalance(waifu.Price))
	if err := common.RespondWithMessage(s, i, prompt); err != nil {
		log.Errorf("Error sending purchase prompt: %v", err)
		return
	}

	confirmed, err := f.awaiter.AwaitConfirm(s, i.ChannelID, i.Member.User.ID, confirmTimeout)
	if err != nil {
		common.FollowUpWithError(s, i, "Purchase timed out. Nothing was bought.")
		return
	}
	if !confirmed {
		common.FollowUpWithError(s, i, "Purchase cancelled.")
		return
	}

	result, err := f.waifuService.Purchase(ctx, guildID, memberID, waifu.ID, waifu.Price)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAlreadyOwned):
			common.FollowUpWithError(s, i, fmt.Sprintf("Someone bought **%s** while you were deciding.", waifu.Name))
		case errors.Is(err, service.ErrInsufficientFunds):
			common.FollowUpWithError(s, i, "You no longer have enough coins for that purchase.")
		default:
			log.Errorf("Error purchasing waifu %d for %d: %v", waifu.ID, memberID, err)
			common.FollowUpWithError(s, i, "Unable to process purchase. Please try again.")
		}
		return
	}

	message := fmt.Sprintf("💍 **%s** is now yours! New balance: **%s coins**.",
		result.Waifu.Name, common.FormatBalance(result.NewBalance))
	if _, err := common.FollowUpWithMessage(s, i, message); err != nil {
		log.Errorf("Error responding to buy command: %v", err)
	}
}

func (f *Feature) handleSell(s *discordgo.Session, i *discordgo.InteractionCreate) {
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

	owned, err := f.waifuService.Owner(ctx, guildID, waifu.ID)
	if err != nil {
		log.Errorf("Error looking up owner of waifu %d: %v", waifu.ID, err)
		common.RespondWithError(s, i, "Unable to process sale. Please try again.")
		return
	}
	if owned == nil || owned.MemberDiscID != memberID {
		common.RespondWithError(s, i, fmt.Sprintf("You do not own **%s** here.", waifu.Name))
		return
	}

	release, err := f.locks.Acquire(guildID, memberID, "sellwaifu")
	if err != nil {
		common.RespondWithError(s, i, f.lockHeldMessage(guildID, memberID))
		return
	}
	defer release()

	refund := service.SellRefund(owned.PurchasedFor)
	prompt := fmt.Sprintf("Sell **%s** back for **%s coins**? Reply `yes` or `no`.",
		waifu.Name, common.FormatBalance(refund))
	if err := common.RespondWithMessage(s, i, prompt); err != nil {
		log.Errorf("Error sending sale prompt: %v", err)
		return
	}

	confirmed, err := f.awaiter.AwaitConfirm(s, i.ChannelID, i.Member.User.ID, confirmTimeout)
	if err != nil {
		common.FollowUpWithError(s, i, "Sale timed out. Nothing was sold.")
		return
	}
	if !confirmed {
		common.FollowUpWithError(s, i, "Sale cancelled.")
		return
	}

	result, err := f.waifuService.Sell(ctx, guildID, memberID, waifu.ID)
	if err != nil {
		if errors.Is(err, service.ErrNotOwned) {
			common.FollowUpWithError(s, i, fmt.Sprintf("You no longer own **%s**.", waifu.Name))
			return
		}
		log.Errorf("Error selling waifu %d for %d: %v", waifu.ID, memberID, err)
		common.FollowUpWithError(s, i, "Unable to process sale. Please try again.")
		return
	}

	message := fmt.Sprintf("💔 Sold **%s** for **%s coins**. New balance: **%s coins**.",
		result.Waifu.Name, common.FormatBalance(result.Refund), common.FormatBalance(result.NewBalance))
	if _, err := common.FollowUpWithMessage(s, i, message); err != nil {
		log.Errorf("Error responding to sell command: %v", err)
	}
}

func (f *Feature) handleSellHarem(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	memberID, guildID, err := interactionIDs(i)
	if err != nil {
		common.RespondWithError(s, i, "This command only works inside a server.")
		return
	}

	entries, err := f.waifuService.Harem(ctx, guildID, memberID, service.HaremFilter{})
	if err != nil {
		log.Errorf("Error listing harem for %d in guild %d: %v", memberID, guildID, err)
		common.RespondWithError(s, i, "Unable to process sale. Please try again.")
		return
	}
	if len(entries) == 0 {
		common.RespondWithError(s, i, "You do not own any waifus here.")
		return
	}

	var refund int64
	for _, entry := range entries {
		refund += service.SellRefund(entry.Purchased.PurchasedFor)
	}

	release, err := f.locks.Acquire(guildID, memberID, "sellharem")
	if err != nil {
		common.RespondWithError(s, i, f.lockHeldMessage(guildID, memberID))
		return
	}
	defer release()

	prompt := fmt.Sprintf("Sell your **entire harem** (%d waifus) for **%s coins**? This cannot be undone. Reply `yes` or `no`.",
		len(entries), common.FormatBalance(refund))
	if err := common.RespondWithMessage(s, i, prompt); err != nil {
		log.Errorf("Error sending harem sale prompt: %v", err)
		return
	}

	confirmed, err := f.awaiter.AwaitConfirm(s, i.ChannelID, i.Member.User.ID, confirmTimeout)
	if err != nil {
		common.FollowUpWithError(s, i, "Sale timed out. Nothing was sold.")
		return
	}
	if !confirmed {
		common.FollowUpWithError(s, i, "Sale cancelled.")
		return
	}

	result, err := f.waifuService.SellHarem(ctx, guildID, memberID)
	if err != nil {
		if errors.Is(err, service.ErrEmptyHarem) {
			common.FollowUpWithError(s, i, "You no longer own any waifus here.")
			return
		}
		log.Errorf("Error selling harem for %d in guild %d: %v", memberID, guildID, err)
		common.FollowUpWithError(s, i, "Unable to process sale. Please try again.")
		return
	}

	message := fmt.Sprintf("💔 Sold **%d waifus** for **%s coins**. New balance: **%s coins**.",
		result.WaifusSold, common.FormatBalance(result.Refund), common.FormatBalance(result.NewBalance))
	if _, err := common.FollowUpWithMessage(s, i, message); err != nil {
		log.Errorf("Error responding to sellharem command: %v", err)
	}
}
