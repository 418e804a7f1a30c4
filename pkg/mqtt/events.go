package mqtt

import (
	"fmt"
	"time"

	"github.com/PancyStudios/VeilleBot/pkg/logger"
)

// Event topics
const (
	TopicLevelUp  = "veille/events/levelup"
	TopicCensored = "veille/events/censored"
)

// LevelUpEvent is published when a reader reaches a new level.
type LevelUpEvent struct {
	GuildID string    `json:"guildId"`
	UserID  string    `json:"userId"`
	Points  int       `json:"points"`
	Level   int       `json:"level"`
	At      time.Time `json:"at"`
}

// CensoredEvent is published when a message is removed by the profanity filter.
type CensoredEvent struct {
	GuildID   string    `json:"guildId"`
	ChannelID string    `json:"channelId"`
	UserID    string    `json:"userId"`
	Redacted  string    `json:"redacted"`
	At        time.Time `json:"at"`
}

// Publisher sends bot events to the broker. A nil *Publisher, or one without
// a communicator, drops every event.
type Publisher struct {
	mc *MqttCommunicator
}

// NewPublisher wraps mc. mc may be nil when MQTT is disabled.
func NewPublisher(mc *MqttCommunicator) *Publisher {
	return &Publisher{mc: mc}
}

// Enabled reports whether events actually leave the process
func (p *Publisher) Enabled() bool {
	return p != nil && p.mc != nil
}

// PublishLevelUp publishes ev on TopicLevelUp
func (p *Publisher) PublishLevelUp(ev LevelUpEvent) {
	p.publish(TopicLevelUp, ev)
}

// PublishCensored publishes ev on TopicCensored
func (p *Publisher) PublishCensored(ev CensoredEvent) {
	p.publish(TopicCensored, ev)
}

func (p *Publisher) publish(topic string, payload interface{}) {
	if !p.Enabled() {
		return
	}
	if err := p.mc.Publish(topic, payload); err != nil {
		logger.Warn(fmt.Sprintf("Could not publish on %s: %v", topic, err), "MQTT")
	}
}
