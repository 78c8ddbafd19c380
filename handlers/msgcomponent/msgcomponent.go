package msgcomponent

import (
	"context"

	"guild-tickets/db"
	"guild-tickets/types"

	"github.com/bwmarrin/discordgo"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var Handlers = map[string]func(s *discordgo.Session, i *discordgo.Interaction, data discordgo.MessageComponentInteractionData, config *types.Config, database *db.Database, ctx context.Context, logger *zap.Logger, rediscli *redis.Client) error{}

func AddHandler(name string, handler func(s *discordgo.Session, i *discordgo.Interaction, data discordgo.MessageComponentInteractionData, config *types.Config, database *db.Database, ctx context.Context, logger *zap.Logger, rediscli *redis.Client) error) {
	Handlers[name] = handler
}

func init() {
	AddHandler("category", category)
	AddHandler("claim", claim)
	AddHandler("unclaim", unclaim)
	AddHandler("close", closeTicket)
	AddHandler("transcript", sendTranscript)
}
