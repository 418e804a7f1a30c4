// Package pipeline runs the per-event chains of the bot: censor, command
// dispatch and auto-reaction for messages; XP and level-up notices for
// reactions; role and welcome message for new members.
package pipeline

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/PancyStudios/VeilleBot/internal/xp"
	"github.com/PancyStudios/VeilleBot/pkg/censor"
	"github.com/PancyStudios/VeilleBot/pkg/discord"
	"github.com/PancyStudios/VeilleBot/pkg/logger"
	"github.com/PancyStudios/VeilleBot/pkg/metrics"
	"github.com/PancyStudios/VeilleBot/pkg/mqtt"
)

// Session is what the pipeline needs from the Discord session.
type Session interface {
	discord.Session
	MessageReactionAdd(channelID, messageID, emojiID string, options ...discordgo.RequestOption) error
	GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	GuildRoles(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Role, error)
}

var _ Session = (*discordgo.Session)(nil)

// Dispatcher runs the text command a message invokes, if any.
type Dispatcher interface {
	Dispatch(s discord.Session, m *discordgo.Message) bool
}

// Publisher receives the events other services may want to see.
type Publisher interface {
	PublishLevelUp(ev mqtt.LevelUpEvent)
	PublishCensored(ev mqtt.CensoredEvent)
}

// Config is the community layout the pipeline works against.
type Config struct {
	IntakeChannelID   string
	AnnounceChannelID string
	WelcomeChannelID  string
	ReaderRoleName    string
	ValidationEmoji   string
	XPPerClick        int
	NoticeTTL         time.Duration
}

// Pipeline wires the filters together. It holds no state of its own.
type Pipeline struct {
	cfg        Config
	filter     *censor.Filter
	xp         *xp.Tracker
	dispatcher Dispatcher
	publisher  Publisher
	afterFunc  func(time.Duration, func())
	now        func() time.Time
}

// New builds a pipeline. publisher may be nil.
func New(cfg Config, filter *censor.Filter, tracker *xp.Tracker, dispatcher Dispatcher, publisher Publisher) *Pipeline {
	return &Pipeline{
		cfg:        cfg,
		filter:     filter,
		xp:         tracker,
		dispatcher: dispatcher,
		publisher:  publisher,
		afterFunc: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
		now: time.Now,
	}
}

// MessageOutcome tells which stages a message went through.
type MessageOutcome struct {
	Censored bool
	Command  bool
	Reacted  bool
}

// HandleMessage runs censor, command dispatch and auto-reaction, in that
// order. A censored message stops the chain.
func (p *Pipeline) HandleMessage(s Session, selfID string, m *discordgo.Message) MessageOutcome {
	var out MessageOutcome
	if m == nil || m.Author == nil {
		return out
	}

	if m.Author.ID != selfID {
		if res := p.filter.Censor(m.Content); res.Triggered {
			out.Censored = true
			p.handleCensored(s, m, res)
			return out
		}
	}

	if p.dispatcher != nil {
		out.Command = p.dispatcher.Dispatch(s, m)
	}

	if m.ChannelID == p.cfg.IntakeChannelID && m.Author.ID != selfID {
		if err := s.MessageReactionAdd(m.ChannelID, m.ID, p.cfg.ValidationEmoji); err != nil {
			logger.Warn(fmt.Sprintf("Auto-reaction failed on %s: %v", m.ID, err), "Pipeline")
		} else {
			out.Reacted = true
			logger.Debug("Auto-reaction added on a new article", "Pipeline")
		}
	}

	return out
}

func (p *Pipeline) handleCensored(s Session, m *discordgo.Message, res censor.Result) {
	if err := s.ChannelMessageDelete(m.ChannelID, m.ID); err != nil {
		logger.Error(fmt.Sprintf("Could not delete censored message %s: %v", m.ID, err), "Pipeline")
		metrics.EventErrors.WithLabelValues("censor").Inc()
		return
	}

	repost := fmt.Sprintf("🤐 **%s** : %s", discord.DisplayName(m.Author), res.Redacted)
	if _, err := s.ChannelMessageSend(m.ChannelID, repost); err != nil {
		logger.Warn(fmt.Sprintf("Could not repost censored message: %v", err), "Pipeline")
	}

	notice, err := s.ChannelMessageSend(m.ChannelID, fmt.Sprintf("⚠️ <@%s>, surveille ton langage !", m.Author.ID))
	if err != nil {
		logger.Warn(fmt.Sprintf("Could not send language notice: %v", err), "Pipeline")
	} else if notice != nil {
		channelID, noticeID := notice.ChannelID, notice.ID
		if channelID == "" {
			channelID = m.ChannelID
		}
		p.afterFunc(p.cfg.NoticeTTL, func() {
			if err := s.ChannelMessageDelete(channelID, noticeID); err != nil {
				logger.Debug(fmt.Sprintf("Language notice %s already gone: %v", noticeID, err), "Pipeline")
			}
		})
	}

	metrics.MessagesCensored.Inc()
	if p.publisher != nil {
		p.publisher.PublishCensored(mqtt.CensoredEvent{
			GuildID:   m.GuildID,
			ChannelID: m.ChannelID,
			UserID:    m.Author.ID,
			Redacted:  res.Redacted,
			At:        p.now(),
		})
	}
	logger.Info(fmt.Sprintf("Censored a message from %s in %s", m.Author.ID, m.ChannelID), "Pipeline")
}

// ReactionOutcome tells what a reaction led to.
type ReactionOutcome struct {
	Applied   bool
	Points    int
	LeveledUp bool
	NewLevel  int
	Notified  bool
}

// HandleReactionAdd awards XP for a validation reaction in the intake
// channel and announces level-ups. The error is non-nil only when the new
// total could not be persisted.
func (p *Pipeline) HandleReactionAdd(s Session, selfID string, r *discordgo.MessageReaction) (ReactionOutcome, error) {
	var out ReactionOutcome
	if r == nil || !p.isValidation(r, selfID) {
		return out, nil
	}

	gain, err := p.xp.Award(r.UserID, p.cfg.XPPerClick)
	if err != nil {
		metrics.EventErrors.WithLabelValues("reaction").Inc()
		return out, err
	}

	out.Applied = true
	out.Points = gain.NewPoints
	out.LeveledUp = gain.LeveledUp
	out.NewLevel = gain.NewLevel
	metrics.XPAwarded.Add(float64(p.cfg.XPPerClick))
	logger.Info(fmt.Sprintf("User %s: %d -> %d XP", r.UserID, gain.NewPoints-p.cfg.XPPerClick, gain.NewPoints), "Pipeline")

	if !gain.LeveledUp {
		return out, nil
	}

	metrics.LevelUps.Inc()
	if p.publisher != nil {
		p.publisher.PublishLevelUp(mqtt.LevelUpEvent{
			GuildID: r.GuildID,
			UserID:  r.UserID,
			Points:  gain.NewPoints,
			Level:   gain.NewLevel,
			At:      p.now(),
		})
	}

	out.Notified = p.announceLevelUp(s, r, gain.NewLevel)
	return out, nil
}

func (p *Pipeline) isValidation(r *discordgo.MessageReaction, selfID string) bool {
	if r.ChannelID != p.cfg.IntakeChannelID || r.UserID == selfID {
		return false
	}
	return r.Emoji.Name == p.cfg.ValidationEmoji || r.Emoji.MessageFormat() == p.cfg.ValidationEmoji
}

// announceLevelUp posts the level-up message. A member that cannot be
// resolved skips the notice silently.
func (p *Pipeline) announceLevelUp(s Session, r *discordgo.MessageReaction, level int) bool {
	if r.GuildID == "" || p.cfg.AnnounceChannelID == "" {
		return false
	}
	member, err := s.GuildMember(r.GuildID, r.UserID)
	if err != nil || member == nil || member.User == nil {
		logger.Debug(fmt.Sprintf("Member %s not found, skipping level-up notice", r.UserID), "Pipeline")
		return false
	}

	msg := fmt.Sprintf("🎉 **LEVEL UP !** Bravo %s, tu passes **Niveau %d** en Veille Techno ! 🧠", member.Mention(), level)
	if _, err := s.ChannelMessageSend(p.cfg.AnnounceChannelID, msg); err != nil {
		logger.Warn(fmt.Sprintf("Could not announce level-up: %v", err), "Pipeline")
		return false
	}
	return true
}

// JoinOutcome tells what a member join led to.
type JoinOutcome struct {
	RoleAssigned bool
	Welcomed     bool
}

// HandleMemberJoin gives the reader role and posts the welcome message.
// Failures are logged and never escalated.
func (p *Pipeline) HandleMemberJoin(s Session, m *discordgo.Member) JoinOutcome {
	var out JoinOutcome
	if m == nil || m.User == nil || m.User.Bot {
		return out
	}
	logger.Info("New member: "+m.User.Username, "Pipeline")

	if roleID := p.findRole(s, m.GuildID); roleID != "" {
		if err := s.GuildMemberRoleAdd(m.GuildID, m.User.ID, roleID); err != nil {
			logger.Warn(fmt.Sprintf("Could not give role %s to %s: %v", p.cfg.ReaderRoleName, m.User.ID, err), "Pipeline")
		} else {
			out.RoleAssigned = true
			logger.Info(fmt.Sprintf("Role %s given to %s", p.cfg.ReaderRoleName, m.User.Username), "Pipeline")
		}
	}

	if p.cfg.WelcomeChannelID == "" {
		return out
	}

	msg := fmt.Sprintf("Bienvenue %s ! 🎓\n", m.Mention())
	if out.RoleAssigned {
		msg += fmt.Sprintf("Tu as reçu le rôle **%s**. ", p.cfg.ReaderRoleName)
	}
	if p.cfg.IntakeChannelID != "" {
		msg += fmt.Sprintf("Va vite voir <#%s> pour commencer ta veille !", p.cfg.IntakeChannelID)
	}
	if _, err := s.ChannelMessageSend(p.cfg.WelcomeChannelID, msg); err != nil {
		logger.Warn(fmt.Sprintf("Could not send welcome message: %v", err), "Pipeline")
	} else {
		out.Welcomed = true
	}
	return out
}

func (p *Pipeline) findRole(s Session, guildID string) string {
	if p.cfg.ReaderRoleName == "" {
		return ""
	}
	roles, err := s.GuildRoles(guildID)
	if err != nil {
		logger.Warn(fmt.Sprintf("Could not list roles of %s: %v", guildID, err), "Pipeline")
		return ""
	}
	for _, r := range roles {
		if r.Name == p.cfg.ReaderRoleName {
			return r.ID
		}
	}
	logger.Warn(fmt.Sprintf("Role %q not found in %s", p.cfg.ReaderRoleName, guildID), "Pipeline")
	return ""
}
