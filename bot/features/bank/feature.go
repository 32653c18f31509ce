package bank

import (
	"github.com/bwmarrin/discordgo"

	"github.com/Yureien/PinocchioBot/service"
)

// Feature handles wallet, reward and exchange commands
type Feature struct {
	memberService   service.MemberService
	rewardService   service.RewardService
	exchangeService service.ExchangeService // nil when the exchange partner is disabled
	locks           *service.LockManager
	votes           VoteChecker // nil when the bot list integration is disabled
}

// SetVoteChecker wires the bot list integration; the bot's own ID is only
// known once the gateway session is open
func (f *Feature) SetVoteChecker(votes VoteChecker) {
	f.votes = votes
}

// New creates a new bank feature instance
func New(memberService service.MemberService, rewardService service.RewardService, exchangeService service.ExchangeService, locks *service.LockManager) *Feature {
	return &Feature{
		memberService:   memberService,
		rewardService:   rewardService,
		exchangeService: exchangeService,
		locks:           locks,
	}
}

// interactionUser returns the invoking user. Guild interactions carry it in
// Member; direct messages carry it in User with Member unset.
func interactionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

// HandleCommand routes bank commands to their handlers
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.ApplicationCommandData().Name {
	case "wallet":
		f.handleWallet(s, i)
	case "daily":
		f.handleDaily(s, i)
	case "hourly":
		f.handleHourly(s, i)
	case "vote":
		f.handleVote(s, i)
	case "transfer":
		f.handleTransfer(s, i)
	case "exchange":
		f.handleExchange(s, i)
	}
}
