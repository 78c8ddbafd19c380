package modal

import (
	"context"

	"guild-tickets/db"
	"guild-tickets/pending"
	"guild-tickets/tickets"
	"guild-tickets/types"
	"guild-tickets/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// topicModal consumes the pending category selection and creates the
// ticket. A missing or expired selection is terminal for this submission;
// the user has to pick a category again.
func topicModal(s *discordgo.Session, i *discordgo.Interaction, data discordgo.ModalSubmitInteractionData, config *types.Config, database *db.Database, ctx context.Context, logger *zap.Logger, rediscli *redis.Client) error {
	category, ok := pending.Selections.Take(i.Member.User.ID)

	if !ok {
		logger.Error("No pending category for modal submit", zap.String("userId", i.Member.User.ID))
		return utils.Ephemeral(s, i, "Your category selection expired. Please pick a category from the panel again.")
	}

	var topic string

	for _, value := range data.Components {
		input := value.(*discordgo.ActionsRow).Components[0].(*discordgo.TextInput)

		if input.CustomID == "topic" {
			topic = input.Value
		}
	}

	return tickets.Create(ctx, s, database, config, logger, i, category, topic)
}
