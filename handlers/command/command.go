package command

import (
	"context"

	"guild-tickets/db"
	"guild-tickets/types"

	"github.com/bwmarrin/discordgo"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var Handlers = map[string]func(s *discordgo.Session, i *discordgo.Interaction, data discordgo.ApplicationCommandInteractionData, config *types.Config, database *db.Database, ctx context.Context, logger *zap.Logger, rediscli *redis.Client) error{}

func AddHandler(name string, handler func(s *discordgo.Session, i *discordgo.Interaction, data discordgo.ApplicationCommandInteractionData, config *types.Config, database *db.Database, ctx context.Context, logger *zap.Logger, rediscli *redis.Client) error) {
	Handlers[name] = handler
}

func init() {
	AddHandler("setup-ticket-panel", setupTicketPanel)
	AddHandler("claim", claimCmd)
	AddHandler("unclaim", unclaimCmd)
	AddHandler("close", closeCmd)
	AddHandler("transcript", transcriptCmd)
	AddHandler("rename", renameCmd)
	AddHandler("add", addCmd)
	AddHandler("remove", removeCmd)
}

func channelOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionChannel,
		Name:        "channel",
		Description: "Ticket channel (defaults to the current channel)",
		Required:    false,
		ChannelTypes: []discordgo.ChannelType{
			discordgo.ChannelTypeGuildText,
		},
	}
}

// Commands returns the slash command set registered at startup.
func Commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "setup-ticket-panel",
			Description: "Post the ticket panel in this channel",
		},
		{
			Name:        "claim",
			Description: "Claim a ticket",
			Options:     []*discordgo.ApplicationCommandOption{channelOption()},
		},
		{
			Name:        "unclaim",
			Description: "Release a claimed ticket",
			Options:     []*discordgo.ApplicationCommandOption{channelOption()},
		},
		{
			Name:        "close",
			Description: "Close a ticket and archive its transcript",
			Options:     []*discordgo.ApplicationCommandOption{channelOption()},
		},
		{
			Name:        "transcript",
			Description: "Generate a transcript without closing the ticket",
			Options:     []*discordgo.ApplicationCommandOption{channelOption()},
		},
		{
			Name:        "rename",
			Description: "Rename the ticket channel",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "name",
					Description: "New channel name",
					Required:    true,
				},
			},
		},
		{
			Name:        "add",
			Description: "Add a user to the ticket",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "User to add",
					Required:    true,
				},
			},
		},
		{
			Name:        "remove",
			Description: "Remove a user from the ticket",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "User to remove",
					Required:    true,
				},
			},
		},
	}
}

// targetChannel resolves the channel a command acts on, defaulting to the
// invoking channel when the option is omitted.
func targetChannel(i *discordgo.Interaction, data discordgo.ApplicationCommandInteractionData) string {
	for _, opt := range data.Options {
		if opt.Name == "channel" {
			return opt.ChannelValue(nil).ID
		}
	}

	return i.ChannelID
}
