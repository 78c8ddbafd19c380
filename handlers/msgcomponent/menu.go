package msgcomponent

import (
	"context"
	"fmt"
	"time"

	"guild-tickets/db"
	"guild-tickets/pending"
	"guild-tickets/types"

	"github.com/bwmarrin/discordgo"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// category handles a pick from the panel's select menu: it records the
// choice for the user and opens the optional topic modal. The persisted
// ticket is only created once the modal is submitted.
func category(s *discordgo.Session, i *discordgo.Interaction, data discordgo.MessageComponentInteractionData, config *types.Config, database *db.Database, ctx context.Context, logger *zap.Logger, rediscli *redis.Client) error {
	// Reset the select menu so the panel stays reusable
	_, err := s.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Embeds:     i.Message.Embeds,
		Components: i.Message.Components,
		ID:         i.Message.ID,
		Channel:    i.Message.ChannelID,
	})

	if err != nil {
		logger.Error("Error resetting select menu", zap.Error(err), zap.String("channelId", i.Message.ChannelID), zap.String("userId", i.Member.User.ID))
	}

	name := data.Values[0]

	cat, ok := config.Category(name)

	if !ok {
		logger.Error("Invalid category", zap.String("category", name), zap.String("userId", i.Member.User.ID))
		return fmt.Errorf("category not found: %s", name)
	}

	// Check cooldown from redis
	cooldownKey := "ticket_cooldown:" + i.Member.User.ID

	cooldown := rediscli.TTL(ctx, cooldownKey).Val()

	if cooldown == -2 || cooldown == -1 {
		err = rediscli.Set(ctx, cooldownKey, "0", 10*time.Second).Err()

		if err != nil {
			logger.Error("Error setting cooldown", zap.Error(err), zap.String("userId", i.Member.User.ID))
			return fmt.Errorf("error setting cooldown: %w", err)
		}
	} else {
		logger.Info("User is on cooldown", zap.String("userId", i.Member.User.ID), zap.Duration("cooldown", cooldown))

		s.InteractionRespond(i, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Content: "You are on cooldown. Please wait ``" + cooldown.String() + "`` before creating another ticket.",
				Flags:   discordgo.MessageFlagsEphemeral,
				AllowedMentions: &discordgo.MessageAllowedMentions{
					Parse: []discordgo.AllowedMentionType{},
				},
			},
		})
		return nil
	}

	logger.Info("Category selected", zap.String("category", cat.Name), zap.String("userId", i.Member.User.ID))

	pending.Selections.Put(i.Member.User.ID, cat.Name)

	err = s.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: "topicmodal",
			Title:    cat.Name,
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						&discordgo.TextInput{
							Label:       "Topic",
							Placeholder: "Briefly describe your issue (optional)",
							MaxLength:   1000,
							CustomID:    "topic",
							Required:    false,
							Style:       discordgo.TextInputShort,
						},
					},
				},
			},
		},
	})

	if err != nil {
		logger.Error("Error opening topic modal", zap.Error(err), zap.String("userId", i.Member.User.ID))
		return fmt.Errorf("error opening topic modal: %w", err)
	}

	return nil
}
