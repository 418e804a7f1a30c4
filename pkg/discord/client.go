// Package discord provides the Discord bot client and related structures.
// It wraps discordgo with a prefix command table and event registration.
package discord

import (
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/PancyStudios/VeilleBot/pkg/logger"
)

// discordgo.Logger is a package-level function, not an interface.
func init() {
	discordgo.Logger = func(msgL int, caller int, format string, a ...interface{}) {
		msg := fmt.Sprintf(format, a...)
		switch msgL {
		case discordgo.LogError:
			logger.Error(msg, "DiscordGo")
		case discordgo.LogWarning:
			logger.Warn(msg, "DiscordGo")
		case discordgo.LogDebug:
			logger.Debug(msg, "DiscordGo")
		default:
			logger.Info(msg, "DiscordGo")
		}
	}
}

// Intents the bot needs: member joins, message content, and reactions.
const Intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMessages |
	discordgo.IntentsGuildMembers |
	discordgo.IntentsGuildMessageReactions |
	discordgo.IntentsMessageContent

// ExtendedClient wraps discordgo.Session with additional functionality
type ExtendedClient struct {
	Session        *discordgo.Session
	CommandHandler *CommandHandler
	EventHandler   *EventHandler
	StartTime      time.Time
	mu             sync.RWMutex
	isReady        bool
}

// NewClient creates a new ExtendedClient
func NewClient(token, prefix string) (*ExtendedClient, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, err
	}

	session.Identify.Intents = Intents

	// Configure session
	session.ShardCount = 1
	session.SyncEvents = false
	session.StateEnabled = true
	session.LogLevel = discordgo.LogWarning

	c := &ExtendedClient{
		Session:        session,
		CommandHandler: NewCommandHandler(prefix),
		isReady:        false,
	}
	c.EventHandler = NewEventHandler(c)

	return c, nil
}

// Commands returns the command table
func (c *ExtendedClient) Commands() *CommandCollection {
	return c.CommandHandler.Commands()
}

// Start opens the gateway connection
func (c *ExtendedClient) Start() error {
	c.Session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		c.mu.Lock()
		c.isReady = true
		c.mu.Unlock()

		logger.Success("Bot connected as: "+r.User.Username, "Client")
	})

	c.StartTime = time.Now()

	return c.Session.Open()
}

// Stop stops the bot and closes the session
func (c *ExtendedClient) Stop() error {
	c.mu.Lock()
	c.isReady = false
	c.mu.Unlock()

	if c.Session != nil {
		return c.Session.Close()
	}
	return nil
}

// IsReady returns true if the bot is ready
func (c *ExtendedClient) IsReady() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isReady
}

// Uptime returns how long the client has been started
func (c *ExtendedClient) Uptime() time.Duration {
	if c.StartTime.IsZero() {
		return 0
	}
	return time.Since(c.StartTime)
}

// GuildCount returns the number of guilds the bot is in
func (c *ExtendedClient) GuildCount() int {
	if c.Session == nil || c.Session.State == nil {
		return 0
	}
	c.Session.State.RLock()
	defer c.Session.State.RUnlock()
	return len(c.Session.State.Guilds)
}

// BotUserID returns the bot's own user id once connected
func (c *ExtendedClient) BotUserID() string {
	if c.Session == nil || c.Session.State == nil || c.Session.State.User == nil {
		return ""
	}
	return c.Session.State.User.ID
}

// Latency returns the last measured gateway heartbeat latency
func (c *ExtendedClient) Latency() time.Duration {
	if c.Session == nil {
		return 0
	}
	return c.Session.HeartbeatLatency()
}
