// Package tickets implements the ticket lifecycle operations. Both the
// in-channel buttons and the slash commands dispatch into these functions
// so the two surfaces cannot drift apart.
package tickets

import (
	"context"
	"errors"
	"fmt"

	"guild-tickets/db"
	"guild-tickets/perms"
	"guild-tickets/types"
	"guild-tickets/utils"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// Find resolves the ticket for a channel, answering the interaction with
// a rejection when there is none. A nil ticket with a nil error means the
// rejection was already delivered.
func Find(ctx context.Context, s *discordgo.Session, database *db.Database, i *discordgo.Interaction, channelID string) (*types.Ticket, error) {
	tik, err := database.TicketByChannel(ctx, channelID)

	if errors.Is(err, db.ErrNotFound) {
		return nil, utils.Ephemeral(s, i, "There is no ticket associated with this channel.")
	}

	if err != nil {
		return nil, fmt.Errorf("error looking up ticket for channel %s: %w", channelID, err)
	}

	return tik, nil
}

// RequireStaff checks staff capability for the acting member, answering
// the interaction with a rejection when it is missing. The role lookup
// happens on every action on purpose: capability is never cached.
func RequireStaff(s *discordgo.Session, config *types.Config, i *discordgo.Interaction, logger *zap.Logger) (bool, error) {
	if i.Member == nil {
		return false, utils.Ephemeral(s, i, "Tickets can only be managed from inside a server.")
	}

	roleID, err := perms.StaffRoleID(s, i.GuildID, config.Roles.StaffRole)

	if err != nil {
		logger.Error("Error resolving staff role", zap.Error(err), zap.String("guildId", i.GuildID), zap.String("role", config.Roles.StaffRole))
	}

	if !perms.IsStaff(i.Member, roleID) {
		return false, utils.Ephemeral(s, i, "You need the "+config.Roles.StaffRole+" role to do that.")
	}

	return true, nil
}

// notice posts a non-ephemeral update into the ticket channel, with
// mention parsing disabled.
func notice(s *discordgo.Session, logger *zap.Logger, channelID, content string) {
	_, err := s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content: content,
		AllowedMentions: &discordgo.MessageAllowedMentions{
			Parse: []discordgo.AllowedMentionType{},
		},
	})

	if err != nil {
		logger.Error("Error posting ticket notice", zap.Error(err), zap.String("channelId", channelID))
	}
}
