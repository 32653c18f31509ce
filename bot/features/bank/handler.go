package bank

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"github.com/Yureien/PinocchioBot/bot/common"
	"github.com/Yureien/PinocchioBot/models"
	"github.com/Yureien/PinocchioBot/service"
)

func (f *Feature) handleWallet(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	caller := interactionUser(i)
	if caller == nil {
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	targetUser := caller
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "user" {
			targetUser = opt.UserValue(s)
		}
	}

	discordID, err := strconv.ParseInt(targetUser.ID, 10, 64)
	if err != nil {
		log.Errorf("Error parsing Discord ID %s: %v", targetUser.ID, err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	var balance int64
	if targetUser.ID == caller.ID {
		// Looking at your own wallet creates it on first use
		member, err := f.memberService.GetOrCreateMember(ctx, discordID)
		if err != nil {
			log.Errorf("Error getting member %d: %v", discordID, err)
			common.RespondWithError(s, i, "Unable to retrieve wallet. Please try again.")
			return
		}
		balance = member.Wallet
	} else {
		balance, err = f.memberService.Wallet(ctx, discordID)
		if errors.Is(err, service.ErrUnknownMember) {
			common.RespondWithError(s, i, "That user does not have a wallet yet.")
			return
		}
		if err != nil {
			log.Errorf("Error getting wallet for %d: %v", discordID, err)
			common.RespondWithError(s, i, "Unable to retrieve wallet. Please try again.")
			return
		}
	}

	displayName := common.GetDisplayName(s, i.GuildID, targetUser.ID)
	message := fmt.Sprintf("%s has **%s coins**.", displayName, common.FormatBalance(balance))
	if err := common.RespondWithMessage(s, i, message); err != nil {
		log.Errorf("Error responding to wallet command: %v", err)
	}
}

func (f *Feature) handleDaily(s *discordgo.Session, i *discordgo.InteractionCreate) {
	f.claimReward(s, i, func(ctx context.Context, discordID int64) (*models.RewardResult, error) {
		return f.rewardService.ClaimDaily(ctx, discordID)
	})
}

func (f *Feature) handleHourly(s *discordgo.Session, i *discordgo.InteractionCreate) {
	f.claimReward(s, i, func(ctx context.Context, discordID int64) (*models.RewardResult, error) {
		return f.rewardService.ClaimHourly(ctx, discordID)
	})
}

func (f *Feature) handleVote(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	caller := interactionUser(i)
	if caller == nil {
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	weekend := isWeekend(time.Now())
	if f.votes != nil {
		discordID, err := strconv.ParseInt(caller.ID, 10, 64)
		if err != nil {
			log.Errorf("Error parsing Discord ID %s: %v", caller.ID, err)
			common.RespondWithError(s, i, "Unable to process request. Please try again.")
			return
		}

		voted, err := f.votes.HasVoted(ctx, discordID)
		if err != nil {
			log.Errorf("Error checking vote for %d: %v", discordID, err)
			common.RespondWithError(s, i, "Unable to reach the bot list right now. Please try again.")
			return
		}
		if !voted {
			common.RespondWithError(s, i, "Vote for the bot on top.gg first, then claim your reward!")
			return
		}

		if listWeekend, err := f.votes.IsWeekend(ctx); err == nil {
			weekend = listWeekend
		}
	}

	f.claimReward(s, i, func(ctx context.Context, discordID int64) (*models.RewardResult, error) {
		return f.rewardService.ClaimVote(ctx, discordID, weekend)
	})
}

// claimReward runs a reward claim and translates the outcome for the user
func (f *Feature) claimReward(s *discordgo.Session, i *discordgo.InteractionCreate, claim func(ctx context.Context, discordID int64) (*models.RewardResult, error)) {
	ctx := context.Background()

	caller := interactionUser(i)
	if caller == nil {
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	discordID, err := strconv.ParseInt(caller.ID, 10, 64)
	if err != nil {
		log.Errorf("Error parsing Discord ID %s: %v", caller.ID, err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	result, err := claim(ctx, discordID)
	if err != nil {
		var cooldown *service.CooldownError
		switch {
		case errors.As(err, &cooldown):
			common.RespondWithError(s, i, fmt.Sprintf("You already claimed your %s reward. Try again in %s.",
				cooldown.Kind, common.FormatDuration(cooldown.Remaining)))
		case errors.Is(err, service.ErrTierTooLow):
			common.RespondWithError(s, i, "Hourly rewards are a donator perk. Check out the support page to unlock them!")
		default:
			log.Errorf("Error claiming reward for %d: %v", discordID, err)
			common.RespondWithError(s, i, "Unable to claim reward. Please try again.")
		}
		return
	}

	message := fmt.Sprintf("You claimed your %s reward of **%s coins**! New balance: **%s coins**.",
		result.Kind, common.FormatBalance(result.Amount), common.FormatBalance(result.NewBalance))
	if result.Jackpot {
		message = "🎰 **JACKPOT!** " + message
	}
	if err := common.RespondWithMessage(s, i, message); err != nil {
		log.Errorf("Error responding to reward claim: %v", err)
	}
}

func (f *Feature) handleTransfer(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	var amount int64
	var recipient *discordgo.User
	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case "amount":
			amount = opt.IntValue()
		case "user":
			recipient = opt.UserValue(s)
		}
	}

	if recipient == nil || amount <= 0 {
		common.RespondWithError(s, i, "Please provide a positive amount and a recipient.")
		return
	}
	if recipient.Bot {
		common.RespondWithError(s, i, "Bots have no use for coins.")
		return
	}

	sender := interactionUser(i)
	if sender == nil {
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	senderID, err := strconv.ParseInt(sender.ID, 10, 64)
	if err != nil {
		log.Errorf("Error parsing Discord ID %s: %v", sender.ID, err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}
	recipientID, err := strconv.ParseInt(recipient.ID, 10, 64)
	if err != nil {
		log.Errorf("Error parsing Discord ID %s: %v", recipient.ID, err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	if senderID == recipientID {
		common.RespondWithError(s, i, "You cannot transfer coins to yourself.")
		return
	}

	// Sender row must exist before the debit
	if _, err := f.memberService.GetOrCreateMember(ctx, senderID); err != nil {
		log.Errorf("Error getting member %d: %v", senderID, err)
		common.RespondWithError(s, i, "Unable to process transfer. Please try again.")
		return
	}

	if err := f.memberService.Transfer(ctx, senderID, recipientID, amount); err != nil {
		if errors.Is(err, service.ErrInsufficientFunds) {
			common.RespondWithError(s, i, "You do not have enough coins for that transfer.")
			return
		}
		log.Errorf("Error transferring %d coins from %d to %d: %v", amount, senderID, recipientID, err)
		common.RespondWithError(s, i, "Unable to process transfer. Please try again.")
		return
	}

	message := fmt.Sprintf("Transferred **%s coins** to %s.",
		common.FormatBalance(amount), common.GetDisplayName(s, i.GuildID, recipient.ID))
	if err := common.RespondWithSuccess(s, i, message, false); err != nil {
		log.Errorf("Error responding to transfer command: %v", err)
	}
}

func (f *Feature) handleExchange(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	if f.exchangeService == nil {
		common.RespondWithError(s, i, "Currency exchange is not enabled on this bot.")
		return
	}

	var currency string
	var amount int64
	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case "currency":
			currency = opt.StringValue()
		case "amount":
			amount = opt.IntValue()
		}
	}

	if currency == "" || amount <= 0 {
		common.RespondWithError(s, i, "Please provide a currency code and a positive amount.")
		return
	}

	caller := interactionUser(i)
	if caller == nil {
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	discordID, err := strconv.ParseInt(caller.ID, 10, 64)
	if err != nil {
		log.Errorf("Error parsing Discord ID %s: %v", caller.ID, err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}
	guildID, err := strconv.ParseInt(i.GuildID, 10, 64)
	if err != nil {
		common.RespondWithError(s, i, "This command only works inside a server.")
		return
	}

	release, err := f.locks.Acquire(guildID, discordID, "exchange")
	if err != nil {
		common.RespondWithError(s, i, lockHeldMessage(f.locks, guildID, discordID))
		return
	}
	defer release()

	// The partner call can take a while
	if err := common.DeferResponse(s, i, false); err != nil {
		log.Errorf("Error deferring exchange response: %v", err)
		return
	}

	receipt, err := f.exchangeService.Exchange(ctx, discordID, currency, amount)
	if err != nil {
		var external *service.ExternalServiceError
		switch {
		case errors.Is(err, service.ErrUnknownMember):
			common.FollowUpWithError(s, i, "You do not have a wallet yet. Claim a reward first!")
		case errors.Is(err, service.ErrInsufficientFunds):
			common.FollowUpWithError(s, i, "You do not have enough coins for that exchange.")
		case errors.As(err, &external):
			common.FollowUpWithError(s, i, "The exchange service rejected the transaction. Your coins were refunded.")
		default:
			log.Errorf("Error exchanging %d coins for %d: %v", amount, discordID, err)
			common.FollowUpWithError(s, i, "Unable to process exchange. Please try again.")
		}
		return
	}

	embed := &discordgo.MessageEmbed{
		Title: "✅ Exchange complete",
		Color: 0x27AE60,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Sent", Value: common.FormatBalance(receipt.Amount) + " coins", Inline: true},
			{Name: "Received", Value: fmt.Sprintf("%.2f %s", receipt.Payout, receipt.Currency), Inline: true},
			{Name: "Transaction", Value: fmt.Sprintf("`%s`", receipt.TransactionID), Inline: false},
		},
	}
	if _, err := common.FollowUpWithEmbed(s, i, embed, false); err != nil {
		log.Errorf("Error responding to exchange command: %v", err)
	}
}

func isWeekend(t time.Time) bool {
	day := t.UTC().Weekday()
	return day == time.Saturday || day == time.Sunday
}

// lockHeldMessage names the flow blocking the member, when known
func lockHeldMessage(locks *service.LockManager, guildID, memberID int64) string {
	if flow, ok := locks.Held(guildID, memberID); ok {
		return fmt.Sprintf("You have a pending %s in progress. Finish or cancel it first.", flow)
	}
	return "You have another operation in progress. Finish or cancel it first."
}
