package tickets

import (
	"context"
	"fmt"

	"guild-tickets/db"
	"guild-tickets/types"
	"guild-tickets/utils"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// CanClaim checks the claim preconditions for a ticket. The returned
// message is suitable for an ephemeral rejection.
func CanClaim(tik *types.Ticket) (string, bool) {
	if !tik.Open() {
		return "This ticket is already closed.", false
	}

	if tik.Claimed() {
		return "This ticket is already claimed by <@" + tik.ClaimedBy.String + ">.", false
	}

	return "", true
}

// CanUnclaim is the exact inverse precondition of CanClaim.
func CanUnclaim(tik *types.Ticket) (string, bool) {
	if !tik.Open() {
		return "This ticket is already closed.", false
	}

	if !tik.Claimed() {
		return "This ticket is not claimed by anyone.", false
	}

	return "", true
}

// Claim marks the acting staff member as responsible for the ticket.
func Claim(ctx context.Context, s *discordgo.Session, database *db.Database, config *types.Config, logger *zap.Logger, i *discordgo.Interaction, tik *types.Ticket) error {
	if ok, err := RequireStaff(s, config, i, logger); !ok {
		return err
	}

	if msg, ok := CanClaim(tik); !ok {
		return utils.Ephemeral(s, i, msg)
	}

	if err := database.SetClaim(ctx, tik.ID, i.Member.User.ID); err != nil {
		return fmt.Errorf("error claiming ticket %d: %w", tik.ID, err)
	}

	logger.Info("Claimed ticket", zap.Int64("ticketId", tik.ID), zap.String("userId", i.Member.User.ID))

	notice(s, logger, tik.ChannelID, fmt.Sprintf("Ticket #%d is now claimed by %s.", tik.ID, i.Member.Mention()))

	return utils.Ephemeral(s, i, fmt.Sprintf("You have claimed ticket #%d.", tik.ID))
}

// Unclaim releases the ticket back to the unclaimed pool.
func Unclaim(ctx context.Context, s *discordgo.Session, database *db.Database, config *types.Config, logger *zap.Logger, i *discordgo.Interaction, tik *types.Ticket) error {
	if ok, err := RequireStaff(s, config, i, logger); !ok {
		return err
	}

	if msg, ok := CanUnclaim(tik); !ok {
		return utils.Ephemeral(s, i, msg)
	}

	if err := database.SetClaim(ctx, tik.ID, ""); err != nil {
		return fmt.Errorf("error unclaiming ticket %d: %w", tik.ID, err)
	}

	logger.Info("Unclaimed ticket", zap.Int64("ticketId", tik.ID), zap.String("userId", i.Member.User.ID))

	notice(s, logger, tik.ChannelID, fmt.Sprintf("Ticket #%d is no longer claimed.", tik.ID))

	return utils.Ephemeral(s, i, fmt.Sprintf("You have unclaimed ticket #%d.", tik.ID))
}
