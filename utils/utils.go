package utils

import (
	"github.com/bwmarrin/discordgo"
)

func Stringp(s string) *string {
	return &s
}

// Ephemeral sends an ephemeral interaction response with mentions
// suppressed, the shape every rejection in this bot uses.
func Ephemeral(s *discordgo.Session, i *discordgo.Interaction, content string) error {
	return s.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
			AllowedMentions: &discordgo.MessageAllowedMentions{
				Parse: []discordgo.AllowedMentionType{},
			},
		},
	})
}
