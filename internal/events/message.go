package events

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/PancyStudios/VeilleBot/internal/pipeline"
	"github.com/PancyStudios/VeilleBot/pkg/discord"
	"github.com/PancyStudios/VeilleBot/pkg/errors"
	"github.com/PancyStudios/VeilleBot/pkg/logger"
)

// RegisterMessageEvents registers the message and reaction handlers
func RegisterMessageEvents(client *discord.ExtendedClient, p *pipeline.Pipeline) {
	client.EventHandler.OnMessageCreate(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		defer errors.RecoverMiddleware()()
		p.HandleMessage(s, selfID(s), m.Message)
	})

	client.EventHandler.OnMessageReactionAdd(func(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
		defer errors.RecoverMiddleware()()
		if _, err := p.HandleReactionAdd(s, selfID(s), r.MessageReaction); err != nil {
			logger.Error(fmt.Sprintf("XP not saved for %s: %v", r.UserID, err), "Reaction")
		}
	})
}
