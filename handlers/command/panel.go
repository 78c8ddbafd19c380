package command

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"guild-tickets/db"
	"guild-tickets/tickets"
	"guild-tickets/types"
	"guild-tickets/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// setupTicketPanel posts the category panel into the invoking channel: an
// embed plus a single-select menu over the configured catalog, with the
// optional local panel image attached.
func setupTicketPanel(s *discordgo.Session, i *discordgo.Interaction, data discordgo.ApplicationCommandInteractionData, config *types.Config, database *db.Database, ctx context.Context, logger *zap.Logger, rediscli *redis.Client) error {
	if ok, err := tickets.RequireStaff(s, config, i, logger); !ok {
		return err
	}

	var options []discordgo.SelectMenuOption

	for _, cat := range config.Categories {
		options = append(options, discordgo.SelectMenuOption{
			Label:       cat.Name,
			Value:       cat.Name,
			Description: cat.Description,
			Emoji: discordgo.ComponentEmoji{
				Name: cat.Emoji,
			},
		})
	}

	embed := &discordgo.MessageEmbed{
		Title:       config.Panel.Title,
		Type:        discordgo.EmbedTypeRich,
		Description: config.Panel.Description,
	}

	msg := &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{embed},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					&discordgo.SelectMenu{
						CustomID:    "category",
						Placeholder: "How can we help you",
						Options:     options,
					},
				},
			},
		},
	}

	if config.Panel.Image != "" {
		f, err := os.Open(config.Panel.Image)

		if err != nil {
			logger.Error("Error opening panel image", zap.Error(err), zap.String("path", config.Panel.Image))
		} else {
			defer f.Close()

			name := filepath.Base(config.Panel.Image)

			msg.Files = []*discordgo.File{
				{
					Name:   name,
					Reader: f,
				},
			}

			embed.Image = &discordgo.MessageEmbedImage{
				URL: "attachment://" + name,
			}
		}
	}

	_, err := s.ChannelMessageSendComplex(i.ChannelID, msg)

	if err != nil {
		return fmt.Errorf("error posting ticket panel: %w", err)
	}

	logger.Info("Posted ticket panel", zap.String("channelId", i.ChannelID), zap.String("userId", i.Member.User.ID))

	return utils.Ephemeral(s, i, "Ticket panel posted.")
}
