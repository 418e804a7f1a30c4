package events

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/PancyStudios/VeilleBot/pkg/discord"
	"github.com/PancyStudios/VeilleBot/pkg/logger"
)

// Presence is the game status shown under the bot's name.
const Presence = "surveiller la veille 🕵️"

// RegisterReadyEvent registers the ready event handler
func RegisterReadyEvent(client *discord.ExtendedClient) {
	client.EventHandler.OnReady(onReady)
}

// onReady is called when the bot successfully connects to Discord
func onReady(s *discordgo.Session, r *discordgo.Ready) {
	logger.Success(fmt.Sprintf("Bot connected as %s", r.User.Username), "Ready")
	logger.Info(fmt.Sprintf("Connected to %d servers", len(r.Guilds)), "Ready")

	if err := s.UpdateGameStatus(0, Presence); err != nil {
		logger.Error(fmt.Sprintf("Error setting presence: %v", err), "Ready")
		return
	}

	logger.Debug("Presence set", "Ready")
}
