package command

import (
	"context"
	"fmt"

	"guild-tickets/db"
	"guild-tickets/tickets"
	"guild-tickets/types"

	"github.com/bwmarrin/discordgo"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func renameCmd(s *discordgo.Session, i *discordgo.Interaction, data discordgo.ApplicationCommandInteractionData, config *types.Config, database *db.Database, ctx context.Context, logger *zap.Logger, rediscli *redis.Client) error {
	tik, err := tickets.Find(ctx, s, database, i, i.ChannelID)

	if tik == nil {
		return err
	}

	var name string

	for _, opt := range data.Options {
		if opt.Name == "name" {
			name = opt.StringValue()
		}
	}

	if name == "" {
		return fmt.Errorf("rename invoked without a name option")
	}

	return tickets.Rename(ctx, s, database, config, logger, i, tik, name)
}

func addCmd(s *discordgo.Session, i *discordgo.Interaction, data discordgo.ApplicationCommandInteractionData, config *types.Config, database *db.Database, ctx context.Context, logger *zap.Logger, rediscli *redis.Client) error {
	tik, err := tickets.Find(ctx, s, database, i, i.ChannelID)

	if tik == nil {
		return err
	}

	user := userOption(data)

	if user == nil {
		return fmt.Errorf("add invoked without a user option")
	}

	return tickets.AddMember(ctx, s, database, config, logger, i, tik, user)
}

func removeCmd(s *discordgo.Session, i *discordgo.Interaction, data discordgo.ApplicationCommandInteractionData, config *types.Config, database *db.Database, ctx context.Context, logger *zap.Logger, rediscli *redis.Client) error {
	tik, err := tickets.Find(ctx, s, database, i, i.ChannelID)

	if tik == nil {
		return err
	}

	user := userOption(data)

	if user == nil {
		return fmt.Errorf("remove invoked without a user option")
	}

	return tickets.RemoveMember(ctx, s, database, config, logger, i, tik, user)
}

func userOption(data discordgo.ApplicationCommandInteractionData) *discordgo.User {
	for _, opt := range data.Options {
		if opt.Name == "user" {
			return opt.UserValue(nil)
		}
	}

	return nil
}
