// Package cmdtest provides a recording discord.Session and a throwaway bot
// for command tests.
package cmdtest

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/PancyStudios/VeilleBot/internal/bot"
	"github.com/PancyStudios/VeilleBot/pkg/config"
	"github.com/PancyStudios/VeilleBot/pkg/discord"
)

// Session records everything a command sends.
type Session struct {
	mu sync.Mutex

	Sent    []string
	Embeds  []*discordgo.MessageEmbed
	Files   map[string]string
	Deleted []string

	// History is returned by ChannelMessages, newest first.
	History []*discordgo.Message
	// Perms is returned for every user unless PermsByUser has an entry.
	Perms       int64
	PermsByUser map[string]int64
	// BulkErr fails ChannelMessagesBulkDelete when set.
	BulkErr error
}

var _ discord.Session = (*Session)(nil)

func (s *Session) ChannelMessageSend(channelID string, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Sent = append(s.Sent, content)
	return &discordgo.Message{ID: "sent" + strconv.Itoa(len(s.Sent)), ChannelID: channelID, Content: content}, nil
}

func (s *Session) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Embeds = append(s.Embeds, embed)
	return &discordgo.Message{ChannelID: channelID}, nil
}

func (s *Session) ChannelMessageDelete(_, messageID string, _ ...discordgo.RequestOption) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Deleted = append(s.Deleted, messageID)
	return nil
}

func (s *Session) ChannelMessages(_ string, limit int, _, _, _ string, _ ...discordgo.RequestOption) ([]*discordgo.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit > len(s.History) {
		limit = len(s.History)
	}
	return s.History[:limit], nil
}

func (s *Session) ChannelMessagesBulkDelete(_ string, messages []string, _ ...discordgo.RequestOption) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.BulkErr != nil {
		return s.BulkErr
	}
	s.Deleted = append(s.Deleted, messages...)
	return nil
}

func (s *Session) ChannelFileSend(_, name string, r io.Reader, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Files == nil {
		s.Files = make(map[string]string)
	}
	s.Files[name] = string(b)
	return &discordgo.Message{}, nil
}

func (s *Session) UserChannelPermissions(userID, _ string, _ ...discordgo.RequestOption) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.PermsByUser[userID]; ok {
		return p, nil
	}
	return s.Perms, nil
}

func (s *Session) GuildMember(_, userID string, _ ...discordgo.RequestOption) (*discordgo.Member, error) {
	return &discordgo.Member{User: &discordgo.User{ID: userID, Username: "user" + userID}}, nil
}

// LastSent returns the most recent plain message, or "" when none was sent.
func (s *Session) LastSent() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Sent) == 0 {
		return ""
	}
	return s.Sent[len(s.Sent)-1]
}

// LastEmbed returns the most recent embed, or nil.
func (s *Session) LastEmbed() *discordgo.MessageEmbed {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Embeds) == 0 {
		return nil
	}
	return s.Embeds[len(s.Embeds)-1]
}

// NewBot builds a bot whose data files live in a test temp dir. The archive
// and MQTT are disabled.
func NewBot(t *testing.T) *bot.Bot {
	t.Helper()
	dir := t.TempDir()
	b, err := bot.New(&config.Config{
		BotToken:        "token",
		Prefix:          "!",
		XPPerClick:      10,
		XPPerLevel:      100,
		CensorNoticeTTL: time.Second,
		XPFile:          filepath.Join(dir, "xp_data.json"),
		WarnsFile:       filepath.Join(dir, "warns_data.json"),
	})
	if err != nil {
		t.Fatalf("bot.New: %v", err)
	}
	t.Cleanup(func() { _ = b.Close() })
	return b
}

// Message builds a guild message from author with the given content.
// Each id in mentions is added to the message's mention list.
func Message(author, content string, mentions ...string) *discordgo.Message {
	m := &discordgo.Message{
		ID:        "cmd",
		ChannelID: "c1",
		GuildID:   "g1",
		Content:   content,
		Author:    &discordgo.User{ID: author, Username: "user" + author},
	}
	for _, id := range mentions {
		m.Mentions = append(m.Mentions, &discordgo.User{ID: id, Username: "user" + id})
	}
	return m
}

// History returns n messages with ids h1..hn.
func History(n int) []*discordgo.Message {
	out := make([]*discordgo.Message, n)
	for i := range out {
		out[i] = &discordgo.Message{ID: fmt.Sprintf("h%d", i+1)}
	}
	return out
}

// Now is a fixed timestamp for records created in tests.
func Now() time.Time {
	return time.Date(2026, 1, 20, 14, 30, 0, 0, time.UTC)
}
