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

// Rename changes the ticket channel's name. The persisted record is
// untouched; the name is only a channel property.
func Rename(ctx context.Context, s *discordgo.Session, database *db.Database, config *types.Config, logger *zap.Logger, i *discordgo.Interaction, tik *types.Ticket, name string) error {
	if ok, err := RequireStaff(s, config, i, logger); !ok {
		return err
	}

	slug := naming.Slugify(name)

	if slug == "" {
		return utils.Ephemeral(s, i, "That name has no usable characters in it.")
	}

	if _, err := s.ChannelEdit(tik.ChannelID, &discordgo.ChannelEdit{Name: slug}); err != nil {
		return fmt.Errorf("error renaming channel %s: %w", tik.ChannelID, err)
	}

	logger.Info("Renamed ticket channel", zap.Int64("ticketId", tik.ID), zap.String("name", slug), zap.String("userId", i.Member.User.ID))

	return utils.Ephemeral(s, i, "Ticket channel renamed to `"+slug+"`.")
}

// AddMember grants a user visibility of the ticket channel.
func AddMember(ctx context.Context, s *discordgo.Session, database *db.Database, config *types.Config, logger *zap.Logger, i *discordgo.Interaction, tik *types.Ticket, user *discordgo.User) error {
	if ok, err := RequireStaff(s, config, i, logger); !ok {
		return err
	}

	if err := perms.MemberOverwrite(s, tik.ChannelID, user.ID); err != nil {
		return fmt.Errorf("error adding %s to channel %s: %w", user.ID, tik.ChannelID, err)
	}

	logger.Info("Added user to ticket", zap.Int64("ticketId", tik.ID), zap.String("targetId", user.ID), zap.String("userId", i.Member.User.ID))

	notice(s, logger, tik.ChannelID, fmt.Sprintf("%s has been added to the ticket.", user.Mention()))

	return utils.Ephemeral(s, i, "Added "+user.Mention()+" to the ticket.")
}

// RemoveMember revokes a user's visibility of the ticket channel.
func RemoveMember(ctx context.Context, s *discordgo.Session, database *db.Database, config *types.Config, logger *zap.Logger, i *discordgo.Interaction, tik *types.Ticket, user *discordgo.User) error {
	if ok, err := RequireStaff(s, config, i, logger); !ok {
		return err
	}

	if err := perms.RemoveMemberOverwrite(s, tik.ChannelID, user.ID); err != nil {
		return fmt.Errorf("error removing %s from channel %s: %w", user.ID, tik.ChannelID, err)
	}

	logger.Info("Removed user from ticket", zap.Int64("ticketId", tik.ID), zap.String("targetId", user.ID), zap.String("userId", i.Member.User.ID))

	notice(s, logger, tik.ChannelID, fmt.Sprintf("%s has been removed from the ticket.", user.Mention()))

	return utils.Ephemeral(s, i, "Removed "+user.Mention()+" from the ticket.")
}
