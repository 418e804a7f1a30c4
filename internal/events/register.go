// Package events connects Discord gateway events to the bot's pipeline.
package events

import (
	"github.com/bwmarrin/discordgo"

	"github.com/PancyStudios/VeilleBot/internal/pipeline"
	"github.com/PancyStudios/VeilleBot/pkg/discord"
	"github.com/PancyStudios/VeilleBot/pkg/logger"
)

// RegisterAll registers all events with the Discord client
func RegisterAll(client *discord.ExtendedClient, p *pipeline.Pipeline) {
	logger.System("Registering bot events...", "Events")

	RegisterReadyEvent(client)
	RegisterMemberEvents(client, p)
	RegisterMessageEvents(client, p)

	logger.Success("All events registered", "Events")
}

// selfID returns the bot's own user id, empty before Ready.
func selfID(s *discordgo.Session) string {
	if s.State == nil || s.State.User == nil {
		return ""
	}
	return s.State.User.ID
}
