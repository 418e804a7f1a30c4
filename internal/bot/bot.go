// Package bot holds the service object that owns the bot's state: XP
// totals, warn ledger, banned-word filter and the external collaborators.
package bot

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PancyStudios/VeilleBot/internal/moderation"
	"github.com/PancyStudios/VeilleBot/internal/pipeline"
	"github.com/PancyStudios/VeilleBot/internal/xp"
	"github.com/PancyStudios/VeilleBot/pkg/censor"
	"github.com/PancyStudios/VeilleBot/pkg/config"
	"github.com/PancyStudios/VeilleBot/pkg/database"
	"github.com/PancyStudios/VeilleBot/pkg/errors"
	"github.com/PancyStudios/VeilleBot/pkg/logger"
	"github.com/PancyStudios/VeilleBot/pkg/models"
	"github.com/PancyStudios/VeilleBot/pkg/mqtt"
	"github.com/PancyStudios/VeilleBot/pkg/scraper"
)

// Bot is created once at startup and passed to every handler.
type Bot struct {
	Config    *config.Config
	XP        *xp.Tracker
	Warns     *moderation.Ledger
	Filter    *censor.Filter
	Archive   database.Archive
	Scraper   *scraper.Runner
	Publisher *mqtt.Publisher
	StartTime time.Time

	archive   *database.SQLiteArchive
	mqtt      *mqtt.MqttCommunicator
	closeOnce sync.Once
}

// New loads both stores and opens the collaborators cfg enables. An archive
// that cannot be opened is logged and left disabled.
func New(cfg *config.Config) (*Bot, error) {
	if cfg.XPPerLevel <= 0 {
		return nil, errors.Errorf(errors.KindInvalid, "bot.new", "XP per level must be positive, got %d", cfg.XPPerLevel)
	}

	b := &Bot{
		Config:    cfg,
		XP:        xp.NewTracker(database.NewFileStore[int]("xp", cfg.XPFile), cfg.XPPerLevel),
		Warns:     moderation.NewLedger(database.NewFileStore[[]models.WarnRecord]("warns", cfg.WarnsFile)),
		Filter:    censor.New(cfg.BannedWords),
		Scraper:   scraper.NewRunner(cfg.ScraperCommand, cfg.ScraperTimeout),
		StartTime: time.Now(),
	}
	logger.Success(fmt.Sprintf("XP data loaded for %d users", b.XP.Count()), "Bot")
	logger.Info(fmt.Sprintf("%d warns loaded, %d banned words", b.Warns.Count(), b.Filter.Len()), "Bot")

	if cfg.ArchivePath != "" {
		archive, err := database.OpenArchive(cfg.ArchivePath)
		if err != nil {
			logger.Warn("Article archive disabled: "+err.Error(), "Bot")
		} else {
			b.archive = archive
			b.Archive = archive
		}
	}

	if cfg.MQTTEnabled() {
		b.mqtt = mqtt.NewMqttCommunicator(cfg.MQTTHost, cfg.MQTTPort, cfg.MQTTUser, cfg.MQTTPassword, cfg.ClientID())
		b.registerMQTTHandlers()
	}
	b.Publisher = mqtt.NewPublisher(b.mqtt)

	return b, nil
}

// PipelineConfig maps the configuration onto the event pipeline's settings.
func (b *Bot) PipelineConfig() pipeline.Config {
	return pipeline.Config{
		IntakeChannelID:   b.Config.IntakeChannelID,
		AnnounceChannelID: b.Config.AnnounceChannelID,
		WelcomeChannelID:  b.Config.WelcomeChannelID,
		ReaderRoleName:    b.Config.ReaderRoleName,
		ValidationEmoji:   b.Config.ValidationEmoji,
		XPPerClick:        b.Config.XPPerClick,
		NoticeTTL:         b.Config.CensorNoticeTTL,
	}
}

// Pipeline builds the event pipeline over the bot's state.
func (b *Bot) Pipeline(dispatcher pipeline.Dispatcher) *pipeline.Pipeline {
	return pipeline.New(b.PipelineConfig(), b.Filter, b.XP, dispatcher, b.Publisher)
}

// UserXP answers the xp/get MQTT request.
func (b *Bot) UserXP(payload map[string]interface{}) (interface{}, error) {
	id, _ := payload["userId"].(string)
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.Errorf(errors.KindInvalid, "bot.userxp", "userId is required")
	}
	points := b.XP.Points(id)
	return xp.Entry{UserID: id, Points: points, Level: b.XP.Level(id)}, nil
}

func (b *Bot) registerMQTTHandlers() {
	b.mqtt.On("xp/get", b.UserXP)
}

// Close flushes both mappings and releases the collaborators. It is safe to
// call more than once.
func (b *Bot) Close() error {
	var firstErr error
	b.closeOnce.Do(func() {
		logger.System("Flushing data before shutdown...", "Bot")
		if err := b.XP.Flush(); err != nil {
			logger.Error("XP flush failed: "+err.Error(), "Bot")
			firstErr = err
		}
		if err := b.Warns.Flush(); err != nil {
			logger.Error("Warns flush failed: "+err.Error(), "Bot")
			if firstErr == nil {
				firstErr = err
			}
		}
		if b.archive != nil {
			if err := b.archive.Close(); err != nil {
				logger.Warn("Archive close failed: "+err.Error(), "Bot")
			}
		}
		if b.mqtt != nil {
			b.mqtt.Destroy()
		}
	})
	return firstErr
}
