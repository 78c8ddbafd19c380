package msgcomponent

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"guild-tickets/db"
	"guild-tickets/tickets"
	"guild-tickets/types"
	"guild-tickets/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ticketFromCustomID parses the ticket id out of an "action:id" custom id
// and loads the row. Malformed ids and missing rows are answered with an
// ephemeral rejection; both return a nil ticket with a nil error.
func ticketFromCustomID(ctx context.Context, s *discordgo.Session, database *db.Database, logger *zap.Logger, i *discordgo.Interaction, customID string) (*types.Ticket, error) {
	parts := strings.Split(customID, ":")

	if len(parts) != 2 {
		logger.Error("Malformed button custom id", zap.String("customId", customID), zap.String("userId", i.Member.User.ID))
		return nil, utils.Ephemeral(s, i, "This button is malformed. Please contact our support team about this!")
	}

	tikID, err := strconv.ParseInt(parts[1], 10, 64)

	if err != nil {
		logger.Error("Malformed ticket id in custom id", zap.String("customId", customID), zap.String("userId", i.Member.User.ID))
		return nil, utils.Ephemeral(s, i, "This button is malformed. Please contact our support team about this!")
	}

	tik, err := database.Ticket(ctx, tikID)

	if errors.Is(err, db.ErrNotFound) {
		return nil, utils.Ephemeral(s, i, "This ticket no longer exists.")
	}

	if err != nil {
		return nil, err
	}

	return tik, nil
}

func claim(s *discordgo.Session, i *discordgo.Interaction, data discordgo.MessageComponentInteractionData, config *types.Config, database *db.Database, ctx context.Context, logger *zap.Logger, rediscli *redis.Client) error {
	tik, err := ticketFromCustomID(ctx, s, database, logger, i, data.CustomID)

	if tik == nil {
		return err
	}

	return tickets.Claim(ctx, s, database, config, logger, i, tik)
}

func unclaim(s *discordgo.Session, i *discordgo.Interaction, data discordgo.MessageComponentInteractionData, config *types.Config, database *db.Database, ctx context.Context, logger *zap.Logger, rediscli *redis.Client) error {
	tik, err := ticketFromCustomID(ctx, s, database, logger, i, data.CustomID)

	if tik == nil {
		return err
	}

	return tickets.Unclaim(ctx, s, database, config, logger, i, tik)
}

func closeTicket(s *discordgo.Session, i *discordgo.Interaction, data discordgo.MessageComponentInteractionData, config *types.Config, database *db.Database, ctx context.Context, logger *zap.Logger, rediscli *redis.Client) error {
	tik, err := ticketFromCustomID(ctx, s, database, logger, i, data.CustomID)

	if tik == nil {
		return err
	}

	return tickets.Close(ctx, s, database, config, logger, i, tik)
}

func sendTranscript(s *discordgo.Session, i *discordgo.Interaction, data discordgo.MessageComponentInteractionData, config *types.Config, database *db.Database, ctx context.Context, logger *zap.Logger, rediscli *redis.Client) error {
	tik, err := ticketFromCustomID(ctx, s, database, logger, i, data.CustomID)

	if tik == nil {
		return err
	}

	return tickets.SendTranscript(ctx, s, database, config, logger, i, tik)
}
