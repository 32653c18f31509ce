package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// registerCommands registers all slash commands with Discord
func (b *Bot) registerCommands() error {
	sortChoices := []*discordgo.ApplicationCommandOptionChoice{
		{Name: "Name", Value: "name"},
		{Name: "Series", Value: "series"},
		{Name: "Price paid", Value: "price"},
		{Name: "ID", Value: "id"},
	}
	genderChoices := []*discordgo.ApplicationCommandOptionChoice{
		{Name: "Female", Value: "f"},
		{Name: "Male", Value: "m"},
	}

	commands := []*discordgo.ApplicationCommand{
		{
			Name:        "wallet",
			Description: "Check a wallet balance",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "User to check (defaults to you)",
					Required:    false,
				},
			},
		},
		{
			Name:        "daily",
			Description: "Claim your daily reward",
		},
		{
			Name:        "hourly",
			Description: "Claim your hourly reward (donator perk)",
		},
		{
			Name:        "vote",
			Description: "Claim your vote reward",
		},
		{
			Name:        "transfer",
			Description: "Transfer coins to another member",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "amount",
					Description: "Amount of coins to transfer",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "Member to transfer to",
					Required:    true,
				},
			},
		},
		{
			Name:        "exchange",
			Description: "Exchange coins to another bot's currency via Discoin",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "currency",
					Description: "Destination currency code",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "amount",
					Description: "Amount of coins to exchange",
					Required:    true,
				},
			},
		},
		{
			Name:        "search",
			Description: "Search the waifu catalog",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "query",
					Description: "Name, series, or ID to search for",
					Required:    true,
				},
			},
		},
		{
			Name:        "details",
			Description: "Show details of a waifu",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "waifu",
					Description: "Waifu name or ID",
					Required:    true,
				},
			},
		},
		{
			Name:        "harem",
			Description: "List a member's waifus",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "Member to list (defaults to you)",
					Required:    false,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "sort",
					Description: "Sort key",
					Required:    false,
					Choices:     sortChoices,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "order",
					Description: "Sort order",
					Required:    false,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "Ascending", Value: "asc"},
						{Name: "Descending", Value: "desc"},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "gender",
					Description: "Filter by gender",
					Required:    false,
					Choices:     genderChoices,
				},
			},
		},
		{
			Name:        "favorite",
			Description: "Mark one of your waifus as a favorite",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "waifu",
					Description: "Waifu name or ID",
					Required:    true,
				},
			},
		},
		{
			Name:        "unfavorite",
			Description: "Remove a favorite mark",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "waifu",
					Description: "Waifu name or ID",
					Required:    true,
				},
			},
		},
		{
			Name:        "buywaifu",
			Description: "Buy a waifu from the catalog",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "waifu",
					Description: "Waifu name or ID",
					Required:    true,
				},
			},
		},
		{
			Name:        "sellwaifu",
			Description: "Sell one of your waifus back",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "waifu",
					Description: "Waifu name or ID",
					Required:    true,
				},
			},
		},
		{
			Name:        "sellharem",
			Description: "Sell your entire harem",
		},
		{
			Name:        "trade",
			Description: "Trade waifus with another member",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "money",
					Description: "Sell one of your waifus to another member",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionUser,
							Name:        "user",
							Description: "Member to trade with",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "waifu",
							Description: "Your waifu to offer",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "waifu",
					Description: "Swap waifus with another member",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionUser,
							Name:        "user",
							Description: "Member to trade with",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "mine",
							Description: "Your waifu to give",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "theirs",
							Description: "Their waifu to receive",
							Required:    true,
						},
					},
				},
			},
		},
		{
			Name:        "roll",
			Description: "Roll a random discounted waifu",
		},
		{
			Name:        "rollsleft",
			Description: "Check how many rolls you have left",
		},
		{
			Name:        "settings",
			Description: "Configure the bot for this server (admin only)",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "coindrops",
					Description: "Enable or disable random coin drops",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionBoolean,
							Name:        "enabled",
							Description: "Whether coin drops are enabled",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "welcomechannel",
					Description: "Set the channel for welcome and leave messages",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionChannel,
							Name:        "channel",
							Description: "Channel to post in",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "welcometext",
					Description: "Set the welcome message template",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "text",
							Description: "Template; {mention} is replaced with the new member",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "leavetext",
					Description: "Set the leave message template",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "text",
							Description: "Template; {name} is replaced with the departed member",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "customrole",
					Description: "Set the custom member role",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionRole,
							Name:        "role",
							Description: "Role to assign",
							Required:    true,
						},
					},
				},
			},
		},
		{
			Name:        "rescuewaifus",
			Description: "Free waifus owned by members who left (admin only)",
		},
		{
			Name:        "divorcewaifus",
			Description: "Dissolve a member's harem, or every harem (admin only)",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "Member whose harem to dissolve (omit for everyone)",
					Required:    false,
				},
			},
		},
	}

	for _, cmd := range commands {
		_, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, b.config.GuildID, cmd)
		if err != nil {
			return fmt.Errorf("cannot create '%s' command: %w", cmd.Name, err)
		}
	}

	return nil
}
