package admin

import (
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/Yureien/PinocchioBot/bot/common"
	"github.com/Yureien/PinocchioBot/service"
)

// Destructive bulk actions get a short confirmation window on purpose.
const bulkConfirmTimeout = 15 * time.Second

// Feature handles guild settings and administrative bulk divestment
type Feature struct {
	guildService  service.GuildService
	rescueService service.RescueService
	awaiter       *common.Awaiter
}

// New creates a new admin feature instance
func New(guildService service.GuildService, rescueService service.RescueService, awaiter *common.Awaiter) *Feature {
	return &Feature{
		guildService:  guildService,
		rescueService: rescueService,
		awaiter:       awaiter,
	}
}

// HandleCommand routes admin commands to their handlers
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.ApplicationCommandData().Name {
	case "settings":
		f.handleSettings(s, i)
	case "rescuewaifus":
		f.handleRescue(s, i)
	case "divorcewaifus":
		f.handleDivorce(s, i)
	}
}
