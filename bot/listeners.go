package bot

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"github.com/Yureien/PinocchioBot/bot/common"
	"github.com/Yureien/PinocchioBot/service"
)

const (
	passiveInterval  = time.Minute
	coinDropWindow   = 20 * time.Second
	coinDropCodeLen  = 4
	coinDropCodeset  = "ABCDEFGHJKLMNPQRSTUVWXYZ"
	passiveMaxCoins  = 5
	coinDropMinCoins = 10
	coinDropMaxCoins = 100
)

// passiveEconomy credits small amounts of money for chatting and runs the
// random coin drops
type passiveEconomy struct {
	memberService service.MemberService
	guildService  service.GuildService
	dropRate      int // 1-in-N chance per message; 0 disables drops
	awaiter       *common.Awaiter

	mu         sync.Mutex
	lastCredit map[string]time.Time // keyed guildID:userID
}

func newPassiveEconomy(memberService service.MemberService, guildService service.GuildService, dropRate int, awaiter *common.Awaiter) *passiveEconomy {
	return &passiveEconomy{
		memberService: memberService,
		guildService:  guildService,
		dropRate:      dropRate,
		awaiter:       awaiter,
		lastCredit:    make(map[string]time.Time),
	}
}

// handleMessageCreate feeds the passive economy on every guild message
func (b *Bot) handleMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}

	b.passive.creditChatter(m)

	if b.passive.shouldDrop() {
		go b.passive.runCoinDrop(s, m.GuildID, m.ChannelID)
	}
}

// creditChatter pays at most once per member-minute
func (p *passiveEconomy) creditChatter(m *discordgo.MessageCreate) {
	key := m.GuildID + ":" + m.Author.ID
	now := time.Now()

	p.mu.Lock()
	if last, ok := p.lastCredit[key]; ok && now.Sub(last) < passiveInterval {
		p.mu.Unlock()
		return
	}
	p.lastCredit[key] = now
	p.mu.Unlock()

	discordID, err := strconv.ParseInt(m.Author.ID, 10, 64)
	if err != nil {
		return
	}

	amount := rand.Int63n(passiveMaxCoins) + 1
	if _, err := p.memberService.Credit(context.Background(), discordID, amount, "passive"); err != nil {
		log.Errorf("Error crediting passive money to %d: %v", discordID, err)
	}
}

func (p *passiveEconomy) shouldDrop() bool {
	return p.dropRate > 0 && rand.Intn(p.dropRate) == 0
}

// runCoinDrop posts a claim code and pays the first member to type it back
func (p *passiveEconomy) runCoinDrop(s *discordgo.Session, guildID, channelID string) {
	ctx := context.Background()

	guildDiscordID, err := strconv.ParseInt(guildID, 10, 64)
	if err != nil {
		return
	}

	guild, err := p.guildService.GetOrCreateGuild(ctx, guildDiscordID)
	if err != nil {
		log.Errorf("Error loading guild %d for coin drop: %v", guildDiscordID, err)
		return
	}
	if !guild.CoinDrops {
		return
	}

	code := randomCode(coinDropCodeLen)
	amount := rand.Int63n(coinDropMaxCoins-coinDropMinCoins+1) + coinDropMinCoins

	announce := fmt.Sprintf("💰 A pouch of **%s coins** appeared! Type `%s` within %d seconds to grab it.",
		common.FormatBalance(amount), code, int(coinDropWindow.Seconds()))
	if _, err := s.ChannelMessageSend(channelID, announce); err != nil {
		log.Errorf("Error announcing coin drop: %v", err)
		return
	}

	claim, err := p.awaiter.AwaitChannelMessage(channelID, func(m *discordgo.MessageCreate) bool {
		return strings.EqualFold(strings.TrimSpace(m.Content), code)
	}, coinDropWindow)
	if err != nil {
		if _, err := s.ChannelMessageSend(channelID, "The pouch vanished. Too slow!"); err != nil {
			log.Errorf("Error announcing expired coin drop: %v", err)
		}
		return
	}

	winnerID, err := strconv.ParseInt(claim.Author.ID, 10, 64)
	if err != nil {
		return
	}
	if _, err := p.memberService.Credit(ctx, winnerID, amount, "coin_drop"); err != nil {
		log.Errorf("Error crediting coin drop to %d: %v", winnerID, err)
		return
	}

	result := fmt.Sprintf("💰 %s grabbed **%s coins**!",
		common.GetDisplayName(s, guildID, claim.Author.ID), common.FormatBalance(amount))
	if _, err := s.ChannelMessageSend(channelID, result); err != nil {
		log.Errorf("Error announcing coin drop winner: %v", err)
	}
}

func randomCode(n int) string {
	code := make([]byte, n)
	for i := range code {
		code[i] = coinDropCodeset[rand.Intn(len(coinDropCodeset))]
	}
	return string(code)
}

// handleGuildCreate lazily creates the guild settings row
func (b *Bot) handleGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	guildID, err := strconv.ParseInt(g.ID, 10, 64)
	if err != nil {
		return
	}
	if _, err := b.guildService.GetOrCreateGuild(context.Background(), guildID); err != nil {
		log.Errorf("Error creating guild row for %d: %v", guildID, err)
	}
}

// handleGuildMemberAdd creates the member's ledger row and posts the welcome
// message when a join/leave channel is configured
func (b *Bot) handleGuildMemberAdd(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
	if m.User == nil || m.User.Bot {
		return
	}
	ctx := context.Background()

	if discordID, err := strconv.ParseInt(m.User.ID, 10, 64); err == nil {
		if _, err := b.memberService.GetOrCreateMember(ctx, discordID); err != nil {
			log.Errorf("Error creating member row for %d: %v", discordID, err)
		}
	}

	guildID, err := strconv.ParseInt(m.GuildID, 10, 64)
	if err != nil {
		return
	}
	guild, err := b.guildService.GetOrCreateGuild(ctx, guildID)
	if err != nil {
		return
	}

	if guild.CustomRole != nil {
		roleID := strconv.FormatInt(*guild.CustomRole, 10)
		if err := s.GuildMemberRoleAdd(m.GuildID, m.User.ID, roleID); err != nil {
			log.Errorf("Error assigning custom role in guild %d: %v", guildID, err)
		}
	}

	if guild.JoinLeaveChannel == nil {
		return
	}

	channelID := strconv.FormatInt(*guild.JoinLeaveChannel, 10)
	text := strings.ReplaceAll(guild.WelcomeText, "{mention}", m.User.Mention())
	message := fmt.Sprintf("%s %s", m.User.Mention(), text)
	if text != guild.WelcomeText {
		message = text
	}
	if _, err := s.ChannelMessageSend(channelID, message); err != nil {
		log.Errorf("Error sending welcome message in guild %d: %v", guildID, err)
	}
}

// handleGuildMemberRemove posts the leave message when configured
func (b *Bot) handleGuildMemberRemove(s *discordgo.Session, m *discordgo.GuildMemberRemove) {
	if m.User == nil || m.User.Bot {
		return
	}

	guildID, err := strconv.ParseInt(m.GuildID, 10, 64)
	if err != nil {
		return
	}
	guild, err := b.guildService.GetOrCreateGuild(context.Background(), guildID)
	if err != nil || guild.JoinLeaveChannel == nil {
		return
	}

	channelID := strconv.FormatInt(*guild.JoinLeaveChannel, 10)
	text := strings.ReplaceAll(guild.LeaveText, "{name}", m.User.Username)
	message := fmt.Sprintf("**%s** left. %s", m.User.Username, text)
	if text != guild.LeaveText {
		message = text
	}
	if _, err := s.ChannelMessageSend(channelID, message); err != nil {
		log.Errorf("Error sending leave message in guild %d: %v", guildID, err)
	}
}
