package tickets

import (
	"context"
	"fmt"

	"guild-tickets/db"
	"guild-tickets/naming"
	"guild-tickets/perms"
	"guild-tickets/types"
	"guild-tickets/utils"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

func _rollbackCreate(ctx context.Context, database *db.Database, s *discordgo.Session, channelID string, tikID int64) error {
	err := database.DeleteTicket(ctx, tikID)

	if err != nil {
		return fmt.Errorf("error deleting ticket from database: %w", err)
	}

	_, err = s.ChannelDelete(channelID)

	if err != nil {
		return fmt.Errorf("error deleting ticket channel: %w", err)
	}

	return nil
}

// Create opens a new ticket for the interaction's member: a private
// channel hidden from the guild, visible to the requester and the staff
// role, backed by a persisted record, with an intro message carrying the
// four lifecycle buttons.
func Create(ctx context.Context, s *discordgo.Session, database *db.Database, config *types.Config, logger *zap.Logger, i *discordgo.Interaction, category, topic string) error {
	err := s.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: "Creating ticket.\n\nPlease wait...",
			Flags:   discordgo.MessageFlagsEphemeral,
			AllowedMentions: &discordgo.MessageAllowedMentions{
				Parse: []discordgo.AllowedMentionType{},
			},
		},
	})

	if err != nil {
		return fmt.Errorf("error sending create response: %w", err)
	}

	staffRoleID, err := perms.StaffRoleID(s, i.GuildID, config.Roles.StaffRole)

	if err != nil {
		return fmt.Errorf("error resolving staff role: %w", err)
	}

	channels, err := s.GuildChannels(i.GuildID)

	if err != nil {
		return fmt.Errorf("error listing guild channels: %w", err)
	}

	name := naming.ChannelName(category, i.Member.User.Username, i.Member.Nick, func(candidate string) bool {
		for _, ch := range channels {
			if ch.Name == candidate {
				return true
			}
		}
		return false
	})

	channel, err := s.GuildChannelCreateComplex(i.GuildID, discordgo.GuildChannelCreateData{
		Name:                 name,
		Type:                 discordgo.ChannelTypeGuildText,
		Topic:                topic,
		PermissionOverwrites: perms.TicketOverwrites(i.GuildID, i.Member.User.ID, staffRoleID, s.State.User.ID),
	})

	if err != nil {
		return fmt.Errorf("error creating ticket channel: %w", err)
	}

	tikID, err := database.CreateTicket(ctx, i.GuildID, channel.ID, i.Member.User.ID, category, topic)

	if err != nil {
		logger.Error("Error inserting ticket into database", zap.Error(err), zap.String("category", category), zap.String("channelId", channel.ID))

		if _, derr := s.ChannelDelete(channel.ID); derr != nil {
			logger.Error("Error deleting ticket channel", zap.Error(derr), zap.String("channelId", channel.ID))
		}

		return fmt.Errorf("error inserting ticket into database: %w", err)
	}

	var description string

	if topic != "" {
		description = "**Topic**\n" + topic
	} else {
		description = "No topic was provided."
	}

	_, err = s.ChannelMessageSendComplex(channel.ID, &discordgo.MessageSend{
		Content: i.Member.User.Mention(),
		Embeds: []*discordgo.MessageEmbed{
			{
				Title:       fmt.Sprintf("Ticket #%d — %s", tikID, category),
				Description: description,
				Fields: []*discordgo.MessageEmbedField{
					{
						Name:   "Opened By",
						Value:  i.Member.User.Mention(),
						Inline: false,
					},
					{
						Name:   "Category",
						Value:  category,
						Inline: false,
					},
				},
			},
		},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						Label:    "Claim",
						Style:    discordgo.PrimaryButton,
						CustomID: fmt.Sprintf("claim:%d", tikID),
					},
					discordgo.Button{
						Label:    "Unclaim",
						Style:    discordgo.SecondaryButton,
						CustomID: fmt.Sprintf("unclaim:%d", tikID),
					},
					discordgo.Button{
						Label:    "Close",
						Style:    discordgo.DangerButton,
						CustomID: fmt.Sprintf("close:%d", tikID),
					},
					discordgo.Button{
						Label:    "Transcript",
						Style:    discordgo.SecondaryButton,
						CustomID: fmt.Sprintf("transcript:%d", tikID),
					},
				},
			},
		},
		AllowedMentions: &discordgo.MessageAllowedMentions{
			Users: []string{i.Member.User.ID},
		},
	})

	if err != nil {
		logger.Error("Error sending intro message", zap.Error(err), zap.String("channelId", channel.ID), zap.Int64("ticketId", tikID))

		if rerr := _rollbackCreate(ctx, database, s, channel.ID, tikID); rerr != nil {
			logger.Error("Error rolling back ticket", zap.Error(rerr), zap.Int64("ticketId", tikID))
		}

		return fmt.Errorf("error sending intro message: %w", err)
	}

	logger.Info("Created ticket", zap.Int64("ticketId", tikID), zap.String("channelId", channel.ID), zap.String("userId", i.Member.User.ID), zap.String("category", category))

	s.InteractionResponseEdit(i, &discordgo.WebhookEdit{
		Content: utils.Stringp("Your ticket has been created! You can view it here: https://discord.com/channels/" + i.GuildID + "/" + channel.ID),
	})

	return nil
}
