package command

import (
	"context"

	"guild-tickets/db"
	"guild-tickets/tickets"
	"guild-tickets/types"

	"github.com/bwmarrin/discordgo"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func claimCmd(s *discordgo.Session, i *discordgo.Interaction, data discordgo.ApplicationCommandInteractionData, config *types.Config, database *db.Database, ctx context.Context, logger *zap.Logger, rediscli *redis.Client) error {
	tik, err := tickets.Find(ctx, s, database, i, targetChannel(i, data))

	if tik == nil {
		return err
	}

	return tickets.Claim(ctx, s, database, config, logger, i, tik)
}

func unclaimCmd(s *discordgo.Session, i *discordgo.Interaction, data discordgo.ApplicationCommandInteractionData, config *types.Config, database *db.Database, ctx context.Context, logger *zap.Logger, rediscli *redis.Client) error {
	tik, err := tickets.Find(ctx, s, database, i, targetChannel(i, data))

	if tik == nil {
		return err
	}

	return tickets.Unclaim(ctx, s, database, config, logger, i, tik)
}

func closeCmd(s *discordgo.Session, i *discordgo.Interaction, data discordgo.ApplicationCommandInteractionData, config *types.Config, database *db.Database, ctx context.Context, logger *zap.Logger, rediscli *redis.Client) error {
	tik, err := tickets.Find(ctx, s, database, i, targetChannel(i, data))

	if tik == nil {
		return err
	}

	return tickets.Close(ctx, s, database, config, logger, i, tik)
}

func transcriptCmd(s *discordgo.Session, i *discordgo.Interaction, data discordgo.ApplicationCommandInteractionData, config *types.Config, database *db.Database, ctx context.Context, logger *zap.Logger, rediscli *redis.Client) error {
	tik, err := tickets.Find(ctx, s, database, i, targetChannel(i, data))

	if tik == nil {
		return err
	}

	return tickets.SendTranscript(ctx, s, database, config, logger, i, tik)
}
