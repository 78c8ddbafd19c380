package main

import (
	"context"
	"net/http"
	"os"
	"strings"

	"guild-tickets/db"
	"guild-tickets/handlers/command"
	"guild-tickets/handlers/modal"
	"guild-tickets/handlers/msgcomponent"
	"guild-tickets/tickets"
	"guild-tickets/types"
	"guild-tickets/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/infinitybotlist/eureka/proxy"
	"github.com/infinitybotlist/eureka/snippets"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var (
	config *types.Config

	secrets types.Secrets

	discord *discordgo.Session

	database *db.Database

	rediscli *redis.Client

	ctx = context.Background()

	logger *zap.Logger
)

func loadSecrets() types.Secrets {
	// Missing .env is fine, the variables may come from the environment
	godotenv.Load()

	s := types.Secrets{
		Token:         os.Getenv("DISCORD_TOKEN"),
		ApplicationID: os.Getenv("APPLICATION_ID"),
		GuildID:       os.Getenv("GUILD_ID"),
	}

	if s.Token == "" {
		panic("DISCORD_TOKEN is not set")
	}

	if s.ApplicationID == "" {
		panic("APPLICATION_ID is not set")
	}

	return s
}

func main() {
	logger = snippets.CreateZap()

	f, err := os.Open("config.yaml")

	if err != nil {
		panic(err)
	}

	err = yaml.NewDecoder(f).Decode(&config)

	if err != nil {
		panic(err)
	}

	f.Close()

	if len(config.Categories) == 0 {
		panic("config.yaml has no categories")
	}

	if config.Roles.StaffRole == "" {
		panic("config.yaml has no staff role")
	}

	if config.Database.Sqlite == "" {
		config.Database.Sqlite = "tickets.db"
	}

	if config.Transcripts.Dir == "" {
		config.Transcripts.Dir = "transcripts"
	}

	secrets = loadSecrets()

	database, err = db.Open(config.Database.Sqlite)

	if err != nil {
		panic(err)
	}

	rOptions, err := redis.ParseURL(config.Database.Redis)

	if err != nil {
		panic(err)
	}

	rediscli = redis.NewClient(rOptions)

	discord, err = discordgo.New("Bot " + secrets.Token)

	if err != nil {
		panic(err)
	}

	if config.ProxyHost != "" {
		discord.Client.Transport = proxy.NewHostRewriter(config.ProxyHost, http.DefaultTransport, func(s string) {
			logger.Info("[PROXY]", zap.String("note", s))
		})
	}

	discord.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentsGuildMembers

	discord.AddHandler(func(s *discordgo.Session, i *discordgo.Ready) {
		logger.Info("Bot is ready", zap.String("username", i.User.Username), zap.String("userId", i.User.ID))

		_, err := s.ApplicationCommandBulkOverwrite(secrets.ApplicationID, secrets.GuildID, command.Commands())

		if err != nil {
			logger.Error("Error registering commands", zap.Error(err))
		}

		// Finish any close that a restart interrupted
		go tickets.Reconcile(ctx, s, database, config, logger)
	})

	discord.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		switch i.Type {
		case discordgo.InteractionApplicationCommand:
			data := i.ApplicationCommandData()

			fn, ok := command.Handlers[data.Name]

			if !ok {
				logger.Error("Invalid command handler", zap.String("command", data.Name))
				utils.Ephemeral(s, i.Interaction, "An error occurred while handling this command. Please contact our support team about this!")
				return
			}

			err := fn(s, i.Interaction, data, config, database, ctx, logger, rediscli)

			if err != nil {
				logger.Error("Error handling command", zap.Error(err), zap.String("command", data.Name))
				s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
					Content: utils.Stringp("An error occurred while handling this command. Please contact our support team about this!"),
				})
				return
			}
		case discordgo.InteractionMessageComponent:
			data := i.MessageComponentData()

			fn, ok := msgcomponent.Handlers[strings.Split(data.CustomID, ":")[0]]

			if !ok {
				logger.Error("Invalid component handler", zap.String("customId", data.CustomID), zap.String("userId", i.Member.User.ID))
				utils.Ephemeral(s, i.Interaction, "An error occurred while handling this component. Please contact our support team about this!")
				return
			}

			err := fn(s, i.Interaction, data, config, database, ctx, logger, rediscli)

			if err != nil {
				logger.Error("Error handling component", zap.Error(err), zap.String("customId", data.CustomID), zap.String("userId", i.Member.User.ID))
				s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
					Content: utils.Stringp("An error occurred while handling this component. Please contact our support team about this!"),
				})
				return
			}
		case discordgo.InteractionModalSubmit:
			data := i.ModalSubmitData()

			fn, ok := modal.Handlers[strings.Split(data.CustomID, ":")[0]]

			if !ok {
				logger.Error("Invalid modal handler", zap.String("customId", data.CustomID), zap.String("userId", i.Member.User.ID))
				utils.Ephemeral(s, i.Interaction, "An error occurred while handling this modal. Please contact our support team about this!")
				return
			}

			err := fn(s, i.Interaction, data, config, database, ctx, logger, rediscli)

			if err != nil {
				logger.Error("Error handling modal", zap.Error(err), zap.String("customId", data.CustomID), zap.String("userId", i.Member.User.ID))
				s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
					Content: utils.Stringp("An error occurred while handling this modal. Please contact our support team about this!"),
				})
				return
			}
		}
	})

	err = discord.Open()

	if err != nil {
		panic(err)
	}

	select {}
}
