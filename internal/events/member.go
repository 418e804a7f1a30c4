package events

import (
	"github.com/bwmarrin/discordgo"

	"github.com/PancyStudios/VeilleBot/internal/pipeline"
	"github.com/PancyStudios/VeilleBot/pkg/discord"
	"github.com/PancyStudios/VeilleBot/pkg/errors"
)

// RegisterMemberEvents registers the member join handler
func RegisterMemberEvents(client *discord.ExtendedClient, p *pipeline.Pipeline) {
	client.EventHandler.OnGuildMemberAdd(func(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
		defer errors.RecoverMiddleware()()
		p.HandleMemberJoin(s, m.Member)
	})
}
